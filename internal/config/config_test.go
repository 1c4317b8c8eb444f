package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nixlim/game-guardian/internal/alerts"
)

func TestConfigParser_Defaults(t *testing.T) {
	result, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing config file, got: %v", err)
	}

	cfg := result.Config
	rules := cfg.Rules

	if !rules.PatternDetection {
		t.Error("default pattern_detection: want true, got false")
	}
	if rules.QuietHoursStart != "00:00" || rules.QuietHoursEnd != "05:59" {
		t.Errorf("default quiet hours: want 00:00-05:59, got %s-%s", rules.QuietHoursStart, rules.QuietHoursEnd)
	}
	if rules.RapidFriendsThreshold != 3 {
		t.Errorf("default rapid_friends_threshold: want 3, got %d", rules.RapidFriendsThreshold)
	}
	if rules.RapidFriendsWindowHours != 24 {
		t.Errorf("default rapid_friends_window_hours: want 24, got %d", rules.RapidFriendsWindowHours)
	}
	if rules.OutOfAgeMinDurationMin != 10 {
		t.Errorf("default out_of_age_min_duration_min: want 10, got %d", rules.OutOfAgeMinDurationMin)
	}
	if len(rules.RiskKeywords) != 3 {
		t.Errorf("default risk_keywords: want 3 entries, got %v", rules.RiskKeywords)
	}
	if !rules.LateNightEnabled || !rules.OutOfAgeEnabled || !rules.RapidFriendsEnabled || !rules.RiskyGroupEnabled {
		t.Errorf("default rule switches: want all enabled, got %+v", rules)
	}
	if !reflect.DeepEqual(rules.RatingScale, alerts.DefaultRatingScale()) {
		t.Errorf("default ratings: want %v, got %v", alerts.DefaultRatingScale(), rules.RatingScale)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("default logging: want info/console, got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
	if !reflect.DeepEqual(cfg.RuleConfig(), alerts.DefaultRuleConfig()) {
		t.Errorf("RuleConfig() = %+v, want the default policy", cfg.RuleConfig())
	}
}

func TestConfigParser_PartialConfig(t *testing.T) {
	data := `
[rules]
quiet_hours_start = "22:00"
quiet_hours_end = "06:00"
rapid_friends_enabled = false

[logging]
level = "debug"
`
	result, err := LoadFromString(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rules := result.Config.Rules

	if rules.QuietHoursStart != "22:00" || rules.QuietHoursEnd != "06:00" {
		t.Errorf("quiet hours: want 22:00-06:00, got %s-%s", rules.QuietHoursStart, rules.QuietHoursEnd)
	}
	if rules.RapidFriendsEnabled {
		t.Error("rapid_friends_enabled: want false, got true")
	}
	// Keys that were not set keep their defaults.
	if !rules.PatternDetection {
		t.Error("pattern_detection: want default true, got false")
	}
	if !rules.LateNightEnabled {
		t.Error("late_night_enabled: want default true, got false")
	}
	if rules.RapidFriendsThreshold != 3 {
		t.Errorf("rapid_friends_threshold: want default 3, got %d", rules.RapidFriendsThreshold)
	}
	if len(rules.RiskKeywords) != 3 {
		t.Errorf("risk_keywords: want defaults, got %v", rules.RiskKeywords)
	}
	if result.Config.Logging.Level != "debug" {
		t.Errorf("logging level: want debug, got %s", result.Config.Logging.Level)
	}
	if result.Config.Logging.Format != "console" {
		t.Errorf("logging format: want default console, got %s", result.Config.Logging.Format)
	}
}

func TestConfigParser_PatternDetectionOff(t *testing.T) {
	result, err := LoadFromString("[rules]\npattern_detection = false\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Config.Rules.PatternDetection {
		t.Error("pattern_detection: want false, got true")
	}
}

func TestConfigParser_Ratings(t *testing.T) {
	data := `
[[ratings]]
label = "E"
min_age = 0

[[ratings]]
label = "T"
min_age = 13

[[ratings]]
label = "M"
min_age = 17
`
	result, err := LoadFromString(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []alerts.RatingLevel{{Label: "E", MinAge: 0}, {Label: "T", MinAge: 13}, {Label: "M", MinAge: 17}}
	if got := result.Config.Rules.RatingScale; !reflect.DeepEqual(got, want) {
		t.Errorf("ratings: want %v, got %v", want, got)
	}
}

func TestConfigParser_InvalidValue(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{
			name:    "negative threshold",
			data:    "[rules]\nrapid_friends_threshold = -1\n",
			wantMsg: "rapid_friends_threshold must be at least 0",
		},
		{
			name:    "bad clock",
			data:    "[rules]\nquiet_hours_start = \"9pm\"\n",
			wantMsg: "quiet_hours_start",
		},
		{
			name:    "zero window",
			data:    "[rules]\nrapid_friends_window_hours = 0\n",
			wantMsg: "rapid_friends_window_hours must be positive",
		},
		{
			name:    "unsorted ratings",
			data:    "[[ratings]]\nlabel = \"Teen\"\nmin_age = 13\n\n[[ratings]]\nlabel = \"Kids\"\nmin_age = 6\n",
			wantMsg: `"Kids" (min_age 6) is listed after "Teen"`,
		},
		{
			name:    "bad log level",
			data:    "[logging]\nlevel = \"loud\"\n",
			wantMsg: "logging:",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFromString(tc.data)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, alerts.ErrInvalidConfiguration) {
				t.Errorf("error = %v, want ErrInvalidConfiguration", err)
			}
			if !strings.Contains(err.Error(), "config validation error") {
				t.Errorf("error = %q, want config validation error prefix", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tc.wantMsg)
			}
		})
	}
}

func TestConfigParser_MultipleErrorsReportedTogether(t *testing.T) {
	data := "[rules]\nrapid_friends_threshold = -1\nout_of_age_min_duration_min = -5\n"
	_, err := LoadFromString(data)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	for _, want := range []string{"rapid_friends_threshold", "out_of_age_min_duration_min"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %q, want it to mention %s", err, want)
		}
	}
}

func TestConfigParser_UnknownKey(t *testing.T) {
	data := `
bedtime = "20:00"

[rules]
quiet_hours_begin = "21:00"

[ratings_extra]
x = 1
`
	result, err := LoadFromString(data)
	if err != nil {
		t.Fatalf("unknown keys should not cause an error, got: %v", err)
	}

	want := []string{
		`unknown config key: "bedtime"`,
		`unknown config key: "ratings_extra"`,
		`unknown config key: "rules.quiet_hours_begin"`,
	}
	if !reflect.DeepEqual(result.Warnings, want) {
		t.Errorf("warnings: want %v, got %v", want, result.Warnings)
	}
	if result.Config.Rules.QuietHoursStart != "00:00" {
		t.Errorf("quiet_hours_start: want default 00:00, got %s", result.Config.Rules.QuietHoursStart)
	}
}

func TestConfigParser_MalformedTOML(t *testing.T) {
	_, err := LoadFromString("[rules\nquiet_hours_start = ")
	if err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("error = %v, want parsing config error", err)
	}
}

func TestConfigParser_FileLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	data := "[rules]\nrisk_keywords = [\"free robux\", \"gift card\"]\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	result, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error loading file: %v", err)
	}
	want := []string{"free robux", "gift card"}
	if !reflect.DeepEqual(result.Config.Rules.RiskKeywords, want) {
		t.Errorf("risk_keywords: want %v, got %v", want, result.Config.Rules.RiskKeywords)
	}
}

func TestConfigParser_FileLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[rules]\nrapid_friends_threshold = -3\n"), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error = %q, want it to name %s", err, path)
	}
}

func TestConfigParser_EmptyString(t *testing.T) {
	result, err := LoadFromString("")
	if err != nil {
		t.Fatalf("unexpected error for empty config: %v", err)
	}
	if !reflect.DeepEqual(result.Config, DefaultConfig()) {
		t.Errorf("empty config: want defaults, got %+v", result.Config)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.QuietHoursStart = "21:30"
	cfg.Rules.RiskyGroupEnabled = false
	cfg.Rules.RatingScale = []alerts.RatingLevel{{Label: "E", MinAge: 0}, {Label: "T", MinAge: 13}}
	cfg.Logging.Level = "warn"

	var buf bytes.Buffer
	if err := Encode(&buf, cfg); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(buf.String(), "[[rules.ratings]]") {
		t.Errorf("ratings encoded under [rules]:\n%s", buf.String())
	}

	result, err := LoadFromString(buf.String())
	if err != nil {
		t.Fatalf("LoadFromString: %v\n%s", err, buf.String())
	}
	if len(result.Warnings) != 0 {
		t.Errorf("round trip produced warnings: %v", result.Warnings)
	}
	if !reflect.DeepEqual(result.Config, cfg) {
		t.Errorf("round trip = %+v, want %+v", result.Config, cfg)
	}
}
