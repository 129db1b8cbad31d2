package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/familyorganizer/internal/flagx"
	"github.com/dmitrijs2005/familyorganizer/internal/timex"
)

// FileConfig is a DTO used exclusively for decoding the config file.
// Pointer fields distinguish "absent" from zero values so that a file only
// overrides what it mentions.
type FileConfig struct {
	APIBaseURL                *string         `json:"api_base_url" yaml:"api_base_url"`
	WeatherAPIKey             *string         `json:"weather_api_key" yaml:"weather_api_key"`
	TokenDB                   *string         `json:"token_db" yaml:"token_db"`
	Ephemeral                 *bool           `json:"ephemeral" yaml:"ephemeral"`
	RequestTimeout            *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	CacheStaleTime            *timex.Duration `json:"cache_stale_time" yaml:"cache_stale_time"`
	KeepSessionOnNetworkError *bool           `json:"keep_session_on_network_error" yaml:"keep_session_on_network_error"`
	LogLevel                  *string         `json:"log_level" yaml:"log_level"`
	LogFormat                 *string         `json:"log_format" yaml:"log_format"`
}

// parseFile overlays cfg with the file named by -c/-config, if any.
func parseFile(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	fc, err := decodeFile(path, data)
	if err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	fc.apply(cfg)
	return nil
}

func decodeFile(path string, data []byte) (*FileConfig, error) {
	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, err
		}
	}
	return &fc, nil
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.APIBaseURL != nil {
		cfg.APIBaseURL = *fc.APIBaseURL
	}
	if fc.WeatherAPIKey != nil {
		cfg.WeatherAPIKey = *fc.WeatherAPIKey
	}
	if fc.TokenDB != nil {
		cfg.TokenDB = *fc.TokenDB
	}
	if fc.Ephemeral != nil {
		cfg.Ephemeral = *fc.Ephemeral
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.CacheStaleTime != nil {
		cfg.CacheStaleTime = fc.CacheStaleTime.Duration
	}
	if fc.KeepSessionOnNetworkError != nil {
		cfg.KeepSessionOnNetworkError = *fc.KeepSessionOnNetworkError
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
}
