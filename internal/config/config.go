//-------------------------------------------------------------------------
//
// Retail ETL
//
// Copyright (c) 2025 - 2026, Ecomlab
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for retail-etl.
// Configuration is loaded from config files and CLI flags (no environment
// variables). CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for retail-etl.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// Input is the path to the raw transaction extract (CSV).
	Input string `mapstructure:"input"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Clean holds cleaning-stage bounds.
	Clean CleanConfig `mapstructure:"clean"`

	// Load holds batch-loading configuration.
	Load LoadConfig `mapstructure:"load"`

	// Report holds reporting thresholds.
	Report ReportConfig `mapstructure:"report"`

	// Sample holds configuration for the sample extract generator.
	Sample SampleConfig `mapstructure:"sample"`
}

// CleanConfig holds the outlier bounds applied during record filtering.
// Rows exceeding any bound are treated as data-entry errors and dropped.
type CleanConfig struct {
	// MaxQuantity is the largest plausible line quantity.
	MaxQuantity int `mapstructure:"max_quantity"`

	// MaxUnitPrice is the largest plausible unit price.
	MaxUnitPrice float64 `mapstructure:"max_unit_price"`

	// MaxLineRevenue is the largest plausible line revenue
	// (quantity times unit price).
	MaxLineRevenue float64 `mapstructure:"max_line_revenue"`
}

// LoadConfig holds chunk sizes for the batch loader. Each entity set is
// written in chunks of this many rows per INSERT.
type LoadConfig struct {
	CustomerChunkSize  int `mapstructure:"customer_chunk_size"`
	ProductChunkSize   int `mapstructure:"product_chunk_size"`
	OrderChunkSize     int `mapstructure:"order_chunk_size"`
	OrderLineChunkSize int `mapstructure:"order_line_chunk_size"`

	// Truncate clears the target tables before loading so reruns are
	// idempotent. Disable to append to an existing load.
	Truncate bool `mapstructure:"truncate"`
}

// ReportConfig holds the cumulative-revenue thresholds that assign
// customers to value segments in the summary view.
type ReportConfig struct {
	PlatinumRevenue float64 `mapstructure:"platinum_revenue"`
	GoldRevenue     float64 `mapstructure:"gold_revenue"`
	SilverRevenue   float64 `mapstructure:"silver_revenue"`
}

// SampleConfig holds configuration for the sample extract generator.
type SampleConfig struct {
	// Rows is the number of raw rows to generate.
	Rows int `mapstructure:"rows"`

	// Output is the path of the generated CSV.
	Output string `mapstructure:"output"`

	// Seed makes generation reproducible when non-zero.
	Seed uint64 `mapstructure:"seed"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Clean: CleanConfig{
			MaxQuantity:    10000,
			MaxUnitPrice:   1000,
			MaxLineRevenue: 50000,
		},
		Load: LoadConfig{
			CustomerChunkSize:  2000,
			ProductChunkSize:   1000,
			OrderChunkSize:     3000,
			OrderLineChunkSize: 5000,
			Truncate:           true,
		},
		Report: ReportConfig{
			PlatinumRevenue: 5000,
			GoldRevenue:     1000,
			SilverRevenue:   500,
		},
		Sample: SampleConfig{
			Rows:   5000,
			Output: "raw_extract.csv",
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./retail-etl.yaml
// 3. ~/.config/retail-etl/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("retail-etl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "retail-etl"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateRun checks configuration required for the run command.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Input == "" {
		return fmt.Errorf("input extract path is required")
	}
	if c.Clean.MaxQuantity < 1 {
		return fmt.Errorf("clean.max_quantity must be at least 1")
	}
	if c.Clean.MaxUnitPrice <= 0 {
		return fmt.Errorf("clean.max_unit_price must be positive")
	}
	if c.Clean.MaxLineRevenue <= 0 {
		return fmt.Errorf("clean.max_line_revenue must be positive")
	}
	for name, size := range map[string]int{
		"customer_chunk_size":   c.Load.CustomerChunkSize,
		"product_chunk_size":    c.Load.ProductChunkSize,
		"order_chunk_size":      c.Load.OrderChunkSize,
		"order_line_chunk_size": c.Load.OrderLineChunkSize,
	} {
		if size < 1 {
			return fmt.Errorf("load.%s must be at least 1", name)
		}
	}
	return nil
}

// ValidateInit checks configuration required for the init command.
func (c *Config) ValidateInit() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.validateThresholds()
}

// ValidateReport checks configuration required for the report command.
func (c *Config) ValidateReport() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.validateThresholds()
}

// ValidateSample checks configuration required for the sample command.
func (c *Config) ValidateSample() error {
	if c.Sample.Rows < 1 {
		return fmt.Errorf("sample.rows must be at least 1")
	}
	if c.Sample.Output == "" {
		return fmt.Errorf("sample.output path is required")
	}
	return nil
}

func (c *Config) validateThresholds() error {
	r := c.Report
	if r.SilverRevenue <= 0 {
		return fmt.Errorf("report.silver_revenue must be positive")
	}
	if r.GoldRevenue <= r.SilverRevenue {
		return fmt.Errorf("report.gold_revenue must exceed report.silver_revenue")
	}
	if r.PlatinumRevenue <= r.GoldRevenue {
		return fmt.Errorf("report.platinum_revenue must exceed report.gold_revenue")
	}
	return nil
}
