package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/Oliverngu/roster-advisor/pkg/core/timeutil"
)

// DayHoursConfig overrides opening hours for a single weekday
type DayHoursConfig struct {
	OpeningTime string `yaml:"openingTime,omitempty"`
	ClosingTime string `yaml:"closingTime,omitempty"`
}

// CoverageOverride defines a recurring minimum-coverage requirement. The rrule
// selects the dates it applies to; dates outside the analyzed week are ignored.
type CoverageOverride struct {
	PositionID string `yaml:"positionID" validate:"required"`
	RRule      string `yaml:"rrule" validate:"required"`
	StartTime  string `yaml:"startTime" validate:"required"`
	EndTime    string `yaml:"endTime" validate:"required"`
	MinCount   int    `yaml:"minCount" validate:"min=1"`
}

// Config represents the application configuration
type Config struct {
	DefaultUnitID        string                    `yaml:"defaultUnitID" validate:"required"`
	BucketMinutes        int                       `yaml:"bucketMinutes,omitempty"`
	SignatureMode        string                    `yaml:"signatureMode,omitempty" validate:"omitempty,oneof=strict lenient"`
	OpeningTime          string                    `yaml:"openingTime,omitempty"`
	ClosingTime          string                    `yaml:"closingTime,omitempty"`
	ClosingOffsetMinutes int                       `yaml:"closingOffsetMinutes,omitempty"`
	WeekdayHours         map[string]DayHoursConfig `yaml:"weekdayHours,omitempty"`
	MaxHoursPerDay       *float64                  `yaml:"maxHoursPerDay,omitempty" validate:"omitempty,gt=0"`
	MinRestHours         *float64                  `yaml:"minRestHours,omitempty" validate:"omitempty,gt=0"`
	Coverage             []CoverageOverride        `yaml:"coverage,omitempty" validate:"dive"`
	RosterSheetID        string                    `yaml:"rosterSheetID,omitempty"`
	RosterSheetTab       string                    `yaml:"rosterSheetTab,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from roster_advisor.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, the clock times and the rrule
// syntax of each coverage override
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := validateClockTime("openingTime", cfg.OpeningTime); err != nil {
		return err
	}
	if err := validateClockTime("closingTime", cfg.ClosingTime); err != nil {
		return err
	}
	for day, hours := range cfg.WeekdayHours {
		if err := validateClockTime("weekdayHours."+day+".openingTime", hours.OpeningTime); err != nil {
			return err
		}
		if err := validateClockTime("weekdayHours."+day+".closingTime", hours.ClosingTime); err != nil {
			return err
		}
	}

	for i, override := range cfg.Coverage {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in coverage[%d]: %w", i, err)
		}
		if err := validateClockTime(fmt.Sprintf("coverage[%d].startTime", i), override.StartTime); err != nil {
			return err
		}
		if err := validateClockTime(fmt.Sprintf("coverage[%d].endTime", i), override.EndTime); err != nil {
			return err
		}
	}

	return nil
}

// validateClockTime accepts an empty value; required fields are enforced by
// struct tags
func validateClockTime(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := timeutil.ParseTimeToMinutes(value); err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	return nil
}

// findConfigFile searches for roster_advisor.yaml in current directory and home directory
func findConfigFile() (string, error) {
	return searchCwdThenHome("roster_advisor.yaml")
}

// searchCwdThenHome looks for a configuration file in the working directory
// first, then in the user's home directory
func searchCwdThenHome(filename string) (string, error) {
	if _, err := os.Stat(filename); err == nil {
		return filename, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, filename)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", filename)
}
