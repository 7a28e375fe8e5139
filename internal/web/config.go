package web

import (
	"github.com/namelink/internal/config"
)

// Config represents the web server configuration
type Config struct {
	Server   ServerConfig  `json:"server"`
	Auth     AuthConfig    `json:"auth"`
	Features FeatureConfig `json:"features"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	APIKey string `json:"-"`
}

// FeatureConfig contains feature toggles
type FeatureConfig struct {
	ResolveEnabled  bool `json:"resolve_enabled"`
	RunsEnabled     bool `json:"runs_enabled"`
	BirthYearOffset int  `json:"birth_year_offset"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Features: FeatureConfig{
			ResolveEnabled:  true,
			BirthYearOffset: 17,
		},
	}
}

// ConfigFromSettings derives the server configuration from run settings.
// The API key comes from NAMELINK_API_KEY only so it never lands in a
// settings file.
func ConfigFromSettings(s *config.Settings) *Config {
	cfg := DefaultConfig()
	cfg.Server.Host = s.Server.Host
	cfg.Server.Port = s.Server.Port
	cfg.Auth.APIKey = config.GetEnv("NAMELINK_API_KEY", "")
	cfg.Features.RunsEnabled = s.Database.Driver != ""
	cfg.Features.BirthYearOffset = s.Matching.BirthYearOffset
	return cfg
}
