package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

const (
	configFileBase = "scheduler_config"

	// DatabaseURLEnv overrides databaseURL from the file
	DatabaseURLEnv = "DATABASE_URL"
)

// Fairness is the inclusive range of matches each player plays
type Fairness struct {
	Min int `yaml:"min" validate:"min=0"`
	Max int `yaml:"max" validate:"gtefield=Min"`
}

// RulesConfig toggles the optional constraint families
type RulesConfig struct {
	NoRepeat     string `yaml:"noRepeat,omitempty" validate:"omitempty,oneof=all same-gender off"`
	StreakLength *int   `yaml:"streakLength,omitempty" validate:"omitempty,min=0"`
}

// Accommodation limits one player, written as M3 or W2, to the listed slots
type Accommodation struct {
	Player string   `yaml:"player" validate:"required"`
	Slots  []string `yaml:"slots" validate:"required,min=1,dive,required"`
}

// Config represents the scheduler configuration
type Config struct {
	Courts       int      `yaml:"courts,omitempty" validate:"omitempty,min=1"`
	TimeSlots    []string `yaml:"timeSlots,omitempty" validate:"omitempty,unique,dive,required"`
	TimeSlotRule string   `yaml:"timeSlotRule,omitempty"`

	Fairness           *Fairness `yaml:"fairness,omitempty"`
	ImbalanceThreshold *int      `yaml:"imbalanceThreshold,omitempty" validate:"omitempty,min=0"`

	Mode             string      `yaml:"mode,omitempty" validate:"omitempty,oneof=plain townCourt"`
	TownCourtMax     int         `yaml:"townCourtMax,omitempty" validate:"omitempty,min=1"`
	CourtModel       string      `yaml:"courtModel,omitempty" validate:"omitempty,oneof=slotCapacity explicit"`
	AllowEmptyCourts bool        `yaml:"allowEmptyCourts,omitempty"`
	Rules            RulesConfig `yaml:"rules,omitempty"`
	Objective        string      `yaml:"objective,omitempty" validate:"omitempty,oneof=lateness none"`
	AcceptFeasible   bool        `yaml:"acceptFeasible,omitempty"`

	TrialTimeout time.Duration `yaml:"trialTimeout,omitempty"`
	Parallelism  int           `yaml:"parallelism,omitempty" validate:"omitempty,min=1"`

	Accommodations []Accommodation `yaml:"accommodations,omitempty" validate:"dive"`

	OutputDir   string `yaml:"outputDir,omitempty"`
	DatabaseURL string `yaml:"databaseURL,omitempty"`
	MetricsFile string `yaml:"metricsFile,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration used when no file is found
func Default() *Config {
	return &Config{OutputDir: "."}
}

// Load loads the configuration from scheduler_config.yaml, or the defaults when
// the file is absent. It looks in the current directory first, then in the user's
// home directory.
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads scheduler_config.<env>.yaml, or scheduler_config.yaml when env
// is empty, then applies environment overrides
func LoadWithEnv(env string) (*Config, error) {
	fileName := configFileBase + ".yaml"
	if env != "" {
		fileName = fmt.Sprintf("%s.%s.yaml", configFileBase, env)
	}

	cfg := Default()
	configPath, err := findConfigFile(fileName)
	switch {
	case err == nil:
		cfg, err = LoadFromPath(configPath)
		if err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults
	default:
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	// a missing .env is fine
	_ = godotenv.Load()
	ApplyEnv(cfg)

	return cfg, nil
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides file settings from the process environment
func ApplyEnv(cfg *Config) {
	if url := os.Getenv(DatabaseURLEnv); url != "" {
		cfg.DatabaseURL = url
	}
}

// Validate validates the configuration struct and checks the slot settings
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.TrialTimeout < 0 {
		return fmt.Errorf("config validation failed: trialTimeout must not be negative")
	}
	if len(cfg.TimeSlots) > 0 && cfg.TimeSlotRule != "" {
		return fmt.Errorf("config validation failed: set timeSlots or timeSlotRule, not both")
	}
	if cfg.TimeSlotRule != "" {
		labels, err := ExpandSlotRule(cfg.TimeSlotRule)
		if err != nil {
			return err
		}
		if len(labels) == 0 {
			return fmt.Errorf("timeSlotRule %q yields no time slots", cfg.TimeSlotRule)
		}
	}

	return nil
}

// SlotLabels returns the configured slot sequence, or nil to use the default day
func (cfg *Config) SlotLabels() ([]string, error) {
	if cfg.TimeSlotRule != "" {
		return ExpandSlotRule(cfg.TimeSlotRule)
	}
	return cfg.TimeSlots, nil
}

// ExpandSlotRule turns an RRULE over one day into slot labels such as 9am or 10:30am.
// The rule starts at midnight UTC of a fixed day and only that day's occurrences count.
func ExpandSlotRule(rule string) ([]string, error) {
	if strings.Contains(strings.ToUpper(rule), "DTSTART") {
		return nil, fmt.Errorf("invalid rrule in timeSlotRule: DTSTART is fixed and must not be set")
	}

	dayStart := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	r, err := rrule.StrToRRule("DTSTART=" + dayStart.Format("20060102T150405Z") + ";" + rule)
	if err != nil {
		return nil, fmt.Errorf("invalid rrule in timeSlotRule: %w", err)
	}

	var labels []string
	for _, occurrence := range r.Between(dayStart, dayStart.Add(24*time.Hour-time.Second), true) {
		labels = append(labels, slotLabel(occurrence))
	}
	return labels, nil
}

func slotLabel(t time.Time) string {
	if t.Minute() == 0 {
		return t.Format("3pm")
	}
	return t.Format("3:04pm")
}

// findConfigFile searches for fileName in current directory and home directory.
// The returned error wraps os.ErrNotExist when the file is in neither.
func findConfigFile(fileName string) (string, error) {
	// Check current directory
	if _, err := os.Stat(fileName); err == nil {
		return fileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, fileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory: %w", fileName, os.ErrNotExist)
}
