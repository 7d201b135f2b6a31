// Package config loads runtime configuration for the fintrack client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c / -config or $FINTRACK_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend
//	-d string   credentials database path
//	-e          keep credentials in memory only
//	-t int      request timeout (seconds)
//	-l int      refresh leeway (seconds)
//	-v string   log level
//
// # JSON schema
//
// Durations accept strings like "15s" or integer nanoseconds:
//
//	{
//	  "server_url": "https://fin.example.com",
//	  "credentials_db": "/home/me/.fintrack.db",
//	  "request_timeout": "15s",
//	  "refresh_leeway": "30s",
//	  "log_level": "debug"
//	}
package config
