// Package config loads the reallocation policy: line capacities,
// mobility rules and thresholds.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/rebalance/pkg/application/services/reallocation"
	"github.com/vsinha/rebalance/pkg/domain/entities"
	"github.com/vsinha/rebalance/pkg/domain/services"
)

//go:embed default.yaml
var defaultConfigYAML []byte

// MobilityRule is one entry of mobility_rules
type MobilityRule struct {
	Marker        string   `yaml:"marker"`
	Class         string   `yaml:"class"`
	Lines         []string `yaml:"lines,omitempty"`
	ExcludedLines []string `yaml:"excluded_lines,omitempty"`
}

// ProposerConfig configures the external proposer command. Without Args
// the command is split on whitespace; with Args it is the program path
// as written and each arg is passed unchanged.
type ProposerConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	Timeout string   `yaml:"timeout"`
}

// Config models the configuration file
type Config struct {
	Lines                 map[string]int64 `yaml:"lines"`
	MobilityRules         []MobilityRule   `yaml:"mobility_rules"`
	HorizonWorkdays       int              `yaml:"horizon_workdays"`
	WorkdayPolicy         string           `yaml:"workday_policy"`
	OKThresholdPct        float64          `yaml:"ok_threshold_pct"`
	DefaultUtilizationPct float64          `yaml:"default_utilization_pct"`
	Proposer              ProposerConfig   `yaml:"proposer"`
}

// Default returns the built-in configuration
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}
	return &cfg, nil
}

// Load reads a configuration file over the defaults. Supplying lines
// replaces the default lines and rules, since the default rules name
// the default lines. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entities.ErrInvalidConfig, path, err)
	}
	cfg.overlay(&file)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlay(file *Config) {
	if file.Lines != nil {
		c.Lines = file.Lines
		c.MobilityRules = nil
	}
	if file.MobilityRules != nil {
		c.MobilityRules = file.MobilityRules
	}
	if file.HorizonWorkdays != 0 {
		c.HorizonWorkdays = file.HorizonWorkdays
	}
	if file.WorkdayPolicy != "" {
		c.WorkdayPolicy = file.WorkdayPolicy
	}
	if file.OKThresholdPct != 0 {
		c.OKThresholdPct = file.OKThresholdPct
	}
	if file.DefaultUtilizationPct != 0 {
		c.DefaultUtilizationPct = file.DefaultUtilizationPct
	}
	if file.Proposer.Command != "" {
		c.Proposer.Command = file.Proposer.Command
		c.Proposer.Args = file.Proposer.Args
	}
	if file.Proposer.Timeout != "" {
		c.Proposer.Timeout = file.Proposer.Timeout
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", entities.ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if len(c.Lines) == 0 {
		return invalid("at least one line is required")
	}
	for line, capacity := range c.Lines {
		if line == "" {
			return invalid("line name cannot be empty")
		}
		if capacity <= 0 {
			return invalid("capacity of line %s must be positive, got %d", line, capacity)
		}
	}

	for i, rule := range c.MobilityRules {
		if rule.Marker == "" {
			return invalid("mobility rule %d has no marker", i+1)
		}
		if _, err := entities.ParseMobilityClass(rule.Class); err != nil {
			return invalid("mobility rule %s: %v", rule.Marker, err)
		}
		for _, line := range append(append([]string{}, rule.Lines...), rule.ExcludedLines...) {
			if _, ok := c.Lines[line]; !ok {
				return invalid("mobility rule %s names unknown line %s", rule.Marker, line)
			}
		}
	}

	if c.HorizonWorkdays < 0 {
		return invalid("horizon_workdays cannot be negative, got %d", c.HorizonWorkdays)
	}
	if _, err := services.ParseWorkdayPolicy(c.WorkdayPolicy); err != nil {
		return invalid("%v", err)
	}
	if c.OKThresholdPct <= 0 || c.OKThresholdPct > 100 {
		return invalid("ok_threshold_pct must be in (0, 100], got %g", c.OKThresholdPct)
	}
	if c.DefaultUtilizationPct <= 0 || c.DefaultUtilizationPct > 100 {
		return invalid("default_utilization_pct must be in (0, 100], got %g", c.DefaultUtilizationPct)
	}
	if c.Proposer.Timeout != "" {
		if d, err := time.ParseDuration(c.Proposer.Timeout); err != nil || d <= 0 {
			return invalid("proposer timeout %q is not a positive duration", c.Proposer.Timeout)
		}
	}
	return nil
}

// Capacities returns the configured line capacities
func (c *Config) Capacities() entities.LineCapacity {
	capacities := make(entities.LineCapacity, len(c.Lines))
	for line, capacity := range c.Lines {
		capacities[entities.LineID(line)] = entities.Quantity(capacity)
	}
	return capacities
}

// Rules converts the mobility rules for the classifier
func (c *Config) Rules() ([]services.MobilityRule, error) {
	rules := make([]services.MobilityRule, 0, len(c.MobilityRules))
	for _, rule := range c.MobilityRules {
		class, err := entities.ParseMobilityClass(rule.Class)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrInvalidConfig, err)
		}
		rules = append(rules, services.MobilityRule{
			Marker:        rule.Marker,
			Class:         class,
			Lines:         toLines(rule.Lines),
			ExcludedLines: toLines(rule.ExcludedLines),
		})
	}
	return rules, nil
}

// EngineConfig converts the configuration for the reallocation engine
func (c *Config) EngineConfig() (reallocation.EngineConfig, error) {
	if err := c.Validate(); err != nil {
		return reallocation.EngineConfig{}, err
	}
	rules, err := c.Rules()
	if err != nil {
		return reallocation.EngineConfig{}, err
	}
	policy, err := services.ParseWorkdayPolicy(c.WorkdayPolicy)
	if err != nil {
		return reallocation.EngineConfig{}, fmt.Errorf("%w: %v", entities.ErrInvalidConfig, err)
	}

	return reallocation.EngineConfig{
		Capacities:            c.Capacities(),
		Rules:                 rules,
		HorizonWorkdays:       c.HorizonWorkdays,
		WorkdayPolicy:         policy,
		OKThresholdPct:        decimal.NewFromFloat(c.OKThresholdPct),
		DefaultUtilizationPct: decimal.NewFromFloat(c.DefaultUtilizationPct),
	}, nil
}

// ProposerTimeout returns the proposer timeout, zero when unset
func (c *Config) ProposerTimeout() time.Duration {
	d, err := time.ParseDuration(c.Proposer.Timeout)
	if err != nil {
		return 0
	}
	return d
}

func toLines(names []string) []entities.LineID {
	if len(names) == 0 {
		return nil
	}
	lines := make([]entities.LineID, len(names))
	for i, name := range names {
		lines[i] = entities.LineID(name)
	}
	return lines
}
