// Package config loads the guardian configuration file.
//
// The file is TOML. Every key is optional: keys that are present replace
// the defaults, absent keys keep them, and unknown keys produce warnings
// rather than errors.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nixlim/game-guardian/internal/alerts"
	"github.com/nixlim/game-guardian/internal/logging"
	"github.com/nixlim/game-guardian/internal/validation"
)

type Config struct {
	Rules   alerts.RuleConfig
	Logging logging.Config
}

// RuleConfig returns the classifier policy, including the rating scale.
func (c Config) RuleConfig() alerts.RuleConfig {
	return c.Rules
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Rules: alerts.DefaultRuleConfig(),
		Logging: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

// DefaultPath is ~/.config/game-guardian/config.toml, or "" when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "game-guardian", "config.toml")
}

func Load() (*LoadResult, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads the file at path. A missing file yields the defaults.
func LoadFrom(path string) (*LoadResult, error) {
	if path == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &LoadResult{Config: DefaultConfig()}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	result, err := parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

func LoadFromString(data string) (*LoadResult, error) {
	return parse(data)
}

type tomlFile struct {
	Rules   *alerts.RuleConfig   `toml:"rules"`
	Ratings []alerts.RatingLevel `toml:"ratings"`
	Logging *logging.Config      `toml:"logging"`
}

var knownKeys = map[string]map[string]bool{
	"rules": {
		"pattern_detection":           true,
		"quiet_hours_start":           true,
		"quiet_hours_end":             true,
		"rapid_friends_threshold":     true,
		"rapid_friends_window_hours":  true,
		"out_of_age_min_duration_min": true,
		"risk_keywords":               true,
		"late_night_enabled":          true,
		"out_of_age_enabled":          true,
		"rapid_friends_enabled":       true,
		"risky_group_enabled":         true,
	},
	"ratings": nil,
	"logging": {
		"level":  true,
		"format": true,
	},
}

func parse(data string) (*LoadResult, error) {
	result := &LoadResult{Config: DefaultConfig()}
	if strings.TrimSpace(data) == "" {
		return result, nil
	}

	var raw map[string]any
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	result.Warnings = unknownKeys(raw)

	var tf tomlFile
	if _, err := toml.Decode(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	mergeFromRaw(&result.Config, &tf, raw)

	if err := validate(&result.Config); err != nil {
		return nil, err
	}
	return result, nil
}

func unknownKeys(raw map[string]any) []string {
	var warnings []string
	for key, val := range raw {
		fields, known := knownKeys[key]
		if !known {
			warnings = append(warnings, fmt.Sprintf("unknown config key: %q", key))
			continue
		}
		section, ok := val.(map[string]any)
		if !ok || fields == nil {
			continue
		}
		for field := range section {
			if !fields[field] {
				warnings = append(warnings, fmt.Sprintf("unknown config key: %q", key+"."+field))
			}
		}
	}
	sort.Strings(warnings)
	return warnings
}

func mergeFromRaw(cfg *Config, tf *tomlFile, raw map[string]any) {
	if tf.Rules != nil {
		if section, ok := rawSection(raw, "rules"); ok {
			if _, exists := section["pattern_detection"]; exists {
				cfg.Rules.PatternDetection = tf.Rules.PatternDetection
			}
			if _, exists := section["quiet_hours_start"]; exists {
				cfg.Rules.QuietHoursStart = tf.Rules.QuietHoursStart
			}
			if _, exists := section["quiet_hours_end"]; exists {
				cfg.Rules.QuietHoursEnd = tf.Rules.QuietHoursEnd
			}
			if _, exists := section["rapid_friends_threshold"]; exists {
				cfg.Rules.RapidFriendsThreshold = tf.Rules.RapidFriendsThreshold
			}
			if _, exists := section["rapid_friends_window_hours"]; exists {
				cfg.Rules.RapidFriendsWindowHours = tf.Rules.RapidFriendsWindowHours
			}
			if _, exists := section["out_of_age_min_duration_min"]; exists {
				cfg.Rules.OutOfAgeMinDurationMin = tf.Rules.OutOfAgeMinDurationMin
			}
			if _, exists := section["risk_keywords"]; exists {
				cfg.Rules.RiskKeywords = tf.Rules.RiskKeywords
			}
			if _, exists := section["late_night_enabled"]; exists {
				cfg.Rules.LateNightEnabled = tf.Rules.LateNightEnabled
			}
			if _, exists := section["out_of_age_enabled"]; exists {
				cfg.Rules.OutOfAgeEnabled = tf.Rules.OutOfAgeEnabled
			}
			if _, exists := section["rapid_friends_enabled"]; exists {
				cfg.Rules.RapidFriendsEnabled = tf.Rules.RapidFriendsEnabled
			}
			if _, exists := section["risky_group_enabled"]; exists {
				cfg.Rules.RiskyGroupEnabled = tf.Rules.RiskyGroupEnabled
			}
		}
	}

	// A [[ratings]] list replaces the whole scale; entries are not merged
	// with the defaults.
	if _, exists := raw["ratings"]; exists {
		cfg.Rules.RatingScale = tf.Ratings
	}

	if tf.Logging != nil {
		if section, ok := rawSection(raw, "logging"); ok {
			if _, exists := section["level"]; exists {
				cfg.Logging.Level = tf.Logging.Level
			}
			if _, exists := section["format"]; exists {
				cfg.Logging.Format = tf.Logging.Format
			}
		}
	}
}

// Encode writes cfg in the file format LoadFrom reads.
func Encode(w io.Writer, cfg Config) error {
	rules := cfg.Rules
	rules.RatingScale = nil
	logCfg := cfg.Logging
	tf := tomlFile{
		Rules:   &rules,
		Ratings: cfg.Rules.RatingScale,
		Logging: &logCfg,
	}
	if err := toml.NewEncoder(w).Encode(tf); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

func rawSection(raw map[string]any, key string) (map[string]any, bool) {
	v, ok := raw[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// validate reports every problem in one error wrapping
// alerts.ErrInvalidConfiguration.
func validate(cfg *Config) error {
	var errs []string

	if err := cfg.Rules.Validate(); err != nil {
		msg := strings.TrimPrefix(err.Error(), alerts.ErrInvalidConfiguration.Error()+": ")
		errs = append(errs, msg)
	}
	if err := validation.Struct(cfg.Logging); err != nil {
		errs = append(errs, "logging: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation error: %s: %w", strings.Join(errs, "; "), alerts.ErrInvalidConfiguration)
	}
	return nil
}
