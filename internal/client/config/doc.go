// Package config loads runtime configuration for the teamhub CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables (see parseEnv), optionally seeded from a dotenv
//     file given with -e or -env, or ./.env when it exists.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   API base URL
//	-t int      request timeout (seconds)
//	-s int      session length (minutes)
//	-w int      session warning threshold (seconds)
//	-d string   client database path
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:8080/api",
//	  "request_timeout": "10s",
//	  "session_length": "15m",
//	  "session_warning": "30s",
//	  "db_path": "teamhub.db",
//	  "log_level": "info",
//	  "log_backend": "zap"
//	}
//
// Malformed input (unreadable file, bad JSON, non-numeric env or flag
// values) panics at startup.
package config
