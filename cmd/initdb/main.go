// Command initdb provisions the movies and ratings collections: schema
// validators, indexes and optional sample data. Run it once before serving.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"movie-ratings/internal/config"
	"movie-ratings/internal/database"
	"movie-ratings/internal/logger"

	"github.com/spf13/pflag"
)

type options struct {
	drop     bool
	seed     bool
	seedFile string
	timeout  time.Duration
}

var errHelp = errors.New("help requested")

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, errHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options

	flagSet := pflag.NewFlagSet("initdb", pflag.ContinueOnError)
	flagSet.BoolVar(&opts.drop, "drop", false, "drop both collections, and all their documents, before provisioning")
	flagSet.BoolVar(&opts.seed, "seed", true, "insert sample data when the movies collection is empty")
	flagSet.StringVar(&opts.seedFile, "seed-file", "", "YAML seed file (default: bundled sample data)")
	flagSet.DurationVar(&opts.timeout, "timeout", time.Minute, "overall time limit")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: initdb [flags]\n\nCreates the movies and ratings collections with schema validation and indexes.\nConnection settings come from MONGO_URI and MONGO_DB.\n\nFlags:\n%s", flagSet.FlagUsages())
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return opts, errHelp
		}
		return opts, err
	}
	if help, _ := flagSet.GetBool("help"); help {
		flagSet.Usage()
		return opts, errHelp
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if opts.timeout <= 0 {
		return opts, fmt.Errorf("--timeout must be positive")
	}
	return opts, nil
}

func run(opts options) error {
	log := logger.New()

	config.LoadEnvFile(log)
	cfg := config.Load()

	var data *database.SeedData
	if opts.seed {
		var err error
		if data, err = database.LoadSeedData(opts.seedFile); err != nil {
			return err
		}
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Errorf("Error closing database connection: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	if err := database.Provision(ctx, db, database.ProvisionOptions{Drop: opts.drop}, log); err != nil {
		return err
	}

	if data != nil {
		if _, _, err := database.Seed(ctx, db, data, log); err != nil {
			return err
		}
	}

	log.WithField("database", cfg.Database.Name).Info("Database initialized")
	return nil
}
