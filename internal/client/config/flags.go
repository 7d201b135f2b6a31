package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   base URL of the backend
//	-d string   credentials database path
//	-e          keep credentials in memory only
//	-t int      request timeout (seconds)
//	-l int      refresh leeway (seconds)
//	-v string   log level
//
// Only the flags above are looked at; everything else in args is ignored.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-e", "-t", "-l", "-v"})

	fs := flag.NewFlagSet("fintrack", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the backend")
	fs.StringVar(&cfg.CredentialsDB, "d", cfg.CredentialsDB, "credentials database path")
	fs.BoolVar(&cfg.Ephemeral, "e", cfg.Ephemeral, "keep credentials in memory only")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	leeway := fs.Int("l", int(cfg.RefreshLeeway.Seconds()), "refresh leeway (in seconds)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.RefreshLeeway = time.Duration(*leeway) * time.Second
	return nil
}
