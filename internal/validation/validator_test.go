package validation

import (
	"errors"
	"testing"
)

type sample struct {
	Name  string   `validate:"required" label:"Name"`
	Score *float64 `validate:"required,gte=0,lte=10" label:"Score"`
	Year  *int     `validate:"omitempty,gte=1880,lte=2100" label:"Release year"`
	Link  *string  `validate:"omitempty,url"`
}

func ptr[T any](v T) *T { return &v }

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     sample
		wantField string
		wantMsg   string
	}{
		{"valid", sample{Name: "a", Score: ptr(5.0)}, "", ""},
		{"valid with optionals", sample{Name: "a", Score: ptr(0.0), Year: ptr(1880), Link: ptr("https://example.com/p.jpg")}, "", ""},
		{"missing name", sample{Score: ptr(1.0)}, "Name", "Name is required."},
		{"missing score", sample{Name: "a"}, "Score", "Score is required."},
		{"score below range", sample{Name: "a", Score: ptr(-1.0)}, "Score", "Score must be at least 0."},
		{"score above range", sample{Name: "a", Score: ptr(10.01)}, "Score", "Score must be at most 10."},
		{"year below range", sample{Name: "a", Score: ptr(1.0), Year: ptr(1700)}, "Year", "Release year must be at least 1880."},
		{"bad url", sample{Name: "a", Score: ptr(1.0), Link: ptr("not a url")}, "Link", "Link must be a valid URL."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("error = %v, want validation.Errors", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Fatalf("field = %s, want %s", verrs[0].Field, tt.wantField)
			}
			if verrs.First() != tt.wantMsg {
				t.Fatalf("message = %q, want %q", verrs.First(), tt.wantMsg)
			}
		})
	}
}

func TestErrorsJoinMessages(t *testing.T) {
	err := ValidateStruct(&sample{})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "Name is required. Score is required." {
		t.Fatalf("Error() = %q", got)
	}
}

func TestErrorsField(t *testing.T) {
	errs := Errors{
		{Field: "UserID", Tag: "required", Message: "User ID is required."},
		{Field: "Value", Tag: "lte", Message: "Rating must be at most 10."},
	}
	if fe, ok := errs.Field("Value"); !ok || fe.Tag != "lte" {
		t.Fatalf("Field(Value) = %+v, %v", fe, ok)
	}
	if _, ok := errs.Field("Title"); ok {
		t.Fatal("Field(Title) should not be found")
	}
	if _, ok := Errors(nil).Field("UserID"); ok {
		t.Fatal("nil Errors should have no fields")
	}
}
