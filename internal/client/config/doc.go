// Package config loads runtime configuration for the family organizer CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A dotenv file: the path given with -env, else ./.env when present.
//  3. Process environment variables, which win over the dotenv file.
//  4. Optional JSON or YAML file selected via -c or -config. Files ending
//     in .yaml or .yml are read as YAML, anything else as JSON.
//  5. Command-line flags, which override everything above.
//
// Environment variables
//
//	FAMORG_API_BASE_URL                    REST API root
//	FAMORG_WEATHER_API_KEY                 weather widget key (unused)
//	FAMORG_TOKEN_DB                        token database path
//	FAMORG_EPHEMERAL                       keep the token in memory only
//	FAMORG_REQUEST_TIMEOUT                 e.g. "10s"
//	FAMORG_CACHE_STALE_TIME                e.g. "30s"
//	FAMORG_KEEP_SESSION_ON_NETWORK_ERROR   keep token when offline at startup
//	FAMORG_LOG_LEVEL                       debug, info, warn, error
//	FAMORG_LOG_FORMAT                      text, json, zap
//
// Supported flags
//
//	-a string   REST API base URL
//	-t int      request timeout (seconds)
//	-db string  token database path
//
// File schema
//
// Durations use timex.Duration, so they can be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8080/api",
//	  "request_timeout": "10s",
//	  "cache_stale_time": "30s"
//	}
package config
