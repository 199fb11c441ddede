package main

import (
	"errors"
	"testing"
	"time"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{
			name: "defaults",
			args: nil,
			want: options{seed: true, timeout: time.Minute},
		},
		{
			name: "drop without seed",
			args: []string{"--drop", "--seed=false"},
			want: options{drop: true, seed: false, timeout: time.Minute},
		},
		{
			name: "seed file and timeout",
			args: []string{"--seed-file", "seed.yaml", "--timeout", "5s"},
			want: options{seed: true, seedFile: "seed.yaml", timeout: 5 * time.Second},
		},
		{name: "stray argument", args: []string{"extra"}, wantErr: true},
		{name: "unknown flag", args: []string{"--bogus"}, wantErr: true},
		{name: "zero timeout", args: []string{"--timeout", "0s"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFlags: %v", err)
			}
			if got != tt.want {
				t.Fatalf("parseFlags(%v) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseFlagsHelp(t *testing.T) {
	if _, err := parseFlags([]string{"--help"}); !errors.Is(err, errHelp) {
		t.Fatalf("expected errHelp, got %v", err)
	}
}
