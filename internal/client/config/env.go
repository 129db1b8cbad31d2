package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/familyorganizer/internal/flagx"
)

const (
	EnvAPIBaseURL                = "FAMORG_API_BASE_URL"
	EnvWeatherAPIKey             = "FAMORG_WEATHER_API_KEY"
	EnvTokenDB                   = "FAMORG_TOKEN_DB"
	EnvEphemeral                 = "FAMORG_EPHEMERAL"
	EnvRequestTimeout            = "FAMORG_REQUEST_TIMEOUT"
	EnvCacheStaleTime            = "FAMORG_CACHE_STALE_TIME"
	EnvKeepSessionOnNetworkError = "FAMORG_KEEP_SESSION_ON_NETWORK_ERROR"
	EnvLogLevel                  = "FAMORG_LOG_LEVEL"
	EnvLogFormat                 = "FAMORG_LOG_FORMAT"

	defaultEnvFile = ".env"
)

// environment merges the dotenv file with the process environment; the
// process environment wins. The process environment is not modified.
func environment() (map[string]string, error) {
	path := flagx.EnvFileFlag()
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	env, err := godotenv.Read(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read env file %s: %w", path, err)
		}
		env = map[string]string{}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "FAMORG_") {
			env[k] = v
		}
	}
	return env, nil
}

// parseEnv overlays cfg with the FAMORG_* variables present in env.
func parseEnv(cfg *Config, env map[string]string) error {
	str := func(key string, dst *string) {
		if v, ok := env[key]; ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := env[key]
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = d
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := env[key]
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str(EnvAPIBaseURL, &cfg.APIBaseURL)
	str(EnvWeatherAPIKey, &cfg.WeatherAPIKey)
	str(EnvTokenDB, &cfg.TokenDB)
	str(EnvLogLevel, &cfg.LogLevel)
	str(EnvLogFormat, &cfg.LogFormat)

	return errors.Join(
		boolean(EnvEphemeral, &cfg.Ephemeral),
		boolean(EnvKeepSessionOnNetworkError, &cfg.KeepSessionOnNetworkError),
		dur(EnvRequestTimeout, &cfg.RequestTimeout),
		dur(EnvCacheStaleTime, &cfg.CacheStaleTime),
	)
}
