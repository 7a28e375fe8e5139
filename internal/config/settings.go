package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/namelink/internal/match"
	"github.com/namelink/internal/normalize"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Settings is the full tunable surface of a namelink run
type Settings struct {
	Matching MatchingSettings `yaml:"matching"`
	Cache    CacheSettings    `yaml:"cache"`
	Database DatabaseSettings `yaml:"database"`
	Server   ServerSettings   `yaml:"server"`
	Debug    bool             `yaml:"debug"`
}

// MatchingSettings controls blocking, similarity and classification
type MatchingSettings struct {
	ResolutionWindow int              `yaml:"resolution_window" validate:"min=1"`
	LookupWindow     int              `yaml:"lookup_window" validate:"min=1"`
	Metric           string           `yaml:"metric" validate:"oneof=ratio levenshtein jaro_winkler"`
	AcceptanceFloor  float64          `yaml:"acceptance_floor" validate:"gte=0,lt=1"`
	Tiers            match.MatchTiers `yaml:"tiers"`
	BirthMin         int              `yaml:"birth_min"`
	BirthMax         int              `yaml:"birth_max" validate:"gtefield=BirthMin"`
	BirthYearOffset  int              `yaml:"birth_year_offset" validate:"gte=0,lte=100"`
	Workers          int              `yaml:"workers" validate:"gte=0"`
}

// CacheSettings configures the result cache
type CacheSettings struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir" validate:"required_if=Enabled true"`
}

// DatabaseSettings configures the run store
type DatabaseSettings struct {
	Driver string `yaml:"driver" validate:"omitempty,oneof=postgres sqlite"`
	DSN    string `yaml:"dsn" validate:"required_with=Driver"`
}

// ServerSettings configures the HTTP API
type ServerSettings struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
}

// DefaultSettings returns the standard operating point
func DefaultSettings() *Settings {
	return &Settings{
		Matching: MatchingSettings{
			ResolutionWindow: match.ResolutionWindow,
			LookupWindow:     match.LookupWindow,
			Metric:           string(match.MetricRatio),
			AcceptanceFloor:  match.DefaultAcceptanceFloor,
			Tiers:            *match.DefaultTiers(),
			BirthMin:         match.DefaultBirthWindow().Min,
			BirthMax:         match.DefaultBirthWindow().Max,
			BirthYearOffset:  normalize.DefaultBirthYearOffset,
			Workers:          runtime.NumCPU(),
		},
		Cache: CacheSettings{
			Dir: ".namelink-cache",
		},
		Server: ServerSettings{
			Host: "0.0.0.0",
			Port: 8080,
		},
	}
}

// LoadSettings reads a YAML settings file over the defaults, applies
// NAMELINK_* environment overrides and validates the result. An empty path or
// a missing file yields the defaults with overrides applied.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, settings); err != nil {
				return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
		}
	}

	settings.applyEnv()

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Settings) applyEnv() {
	m := &s.Matching
	m.ResolutionWindow = GetEnvInt("NAMELINK_RESOLUTION_WINDOW", m.ResolutionWindow)
	m.LookupWindow = GetEnvInt("NAMELINK_LOOKUP_WINDOW", m.LookupWindow)
	m.Metric = GetEnv("NAMELINK_METRIC", m.Metric)
	m.AcceptanceFloor = GetEnvFloat("NAMELINK_ACCEPTANCE_FLOOR", m.AcceptanceFloor)
	m.Tiers.Matched = GetEnvFloat("NAMELINK_MATCHED_THRESHOLD", m.Tiers.Matched)
	m.Tiers.Ambiguous = GetEnvFloat("NAMELINK_AMBIGUOUS_THRESHOLD", m.Tiers.Ambiguous)
	m.BirthYearOffset = GetEnvInt("NAMELINK_BIRTH_YEAR_OFFSET", m.BirthYearOffset)
	m.Workers = GetEnvInt("NAMELINK_WORKERS", m.Workers)

	s.Cache.Enabled = GetEnvBool("NAMELINK_CACHE", s.Cache.Enabled)
	s.Cache.Dir = GetEnv("NAMELINK_CACHE_DIR", s.Cache.Dir)
	s.Database.Driver = GetEnv("NAMELINK_DB_DRIVER", s.Database.Driver)
	s.Database.DSN = GetEnv("NAMELINK_DB_DSN", s.Database.DSN)
	s.Server.Host = GetEnv("NAMELINK_HOST", s.Server.Host)
	s.Server.Port = GetEnvInt("NAMELINK_PORT", s.Server.Port)
	s.Debug = GetEnvBool("NAMELINK_DEBUG", s.Debug)
}

// Validate checks field constraints and the tier ordering.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msg := "invalid settings:"
			for _, fe := range verrs {
				msg += fmt.Sprintf("\n • %s: rule '%s' expected '%s', got '%v'", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
			}
			return errors.New(msg)
		}
		return err
	}
	return nil
}

// EngineConfig converts the matching settings into an engine configuration.
func (s *Settings) EngineConfig() match.EngineConfig {
	tiers := s.Matching.Tiers
	return match.EngineConfig{
		ResolutionWindow: s.Matching.ResolutionWindow,
		LookupWindow:     s.Matching.LookupWindow,
		Metric:           match.Metric(s.Matching.Metric),
		AcceptanceFloor:  s.Matching.AcceptanceFloor,
		Tiers:            &tiers,
		Birth:            match.BirthWindow{Min: s.Matching.BirthMin, Max: s.Matching.BirthMax},
		Workers:          s.Matching.Workers,
		Debug:            s.Debug,
	}
}
