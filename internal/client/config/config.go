package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the fintrack client.
//
// Fields:
//   - ServerURL: base URL of the REST backend (the /auth/* endpoints live under it).
//   - CredentialsDB: path of the SQLite file that keeps the access/refresh pair.
//   - Ephemeral: keep credentials in memory only; nothing survives a restart.
//   - RequestTimeout: upper bound for a single HTTP exchange.
//   - RefreshLeeway: an access token with less lifetime left than this is
//     treated as expired. Zero keeps renewal purely reactive.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL      string
	CredentialsDB  string
	Ephemeral      bool
	RequestTimeout time.Duration
	RefreshLeeway  time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.CredentialsDB = "fintrack.db"
	c.Ephemeral = false
	c.RequestTimeout = 15 * time.Second
	c.RefreshLeeway = 0
	c.LogLevel = "info"
}

// LoadConfig constructs a Config from os.Args; see Load.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load applies defaults, then overlays values from JSON (if a file is named)
// and command-line flags. Later sources take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
