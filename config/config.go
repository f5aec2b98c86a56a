package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DayLayout is the YYYYMMDD format used for data ranges and cache file names.
const DayLayout = "20060102"

// Config represents the complete simulation configuration
type Config struct {
	Data       DataConfig       `json:"data" yaml:"data"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	History    HistoryConfig    `json:"history" yaml:"history"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// DataConfig locates the cached klines and where to download them from
type DataConfig struct {
	Dir      string `json:"dir" yaml:"dir"`
	Ticker   string `json:"ticker" yaml:"ticker"`
	Start    string `json:"start" yaml:"start"` // YYYYMMDD, inclusive
	End      string `json:"end" yaml:"end"`     // YYYYMMDD, inclusive
	Interval string `json:"interval" yaml:"interval"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// SimulationConfig contains environment and driver parameters
type SimulationConfig struct {
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	Episodes       int     `json:"episodes" yaml:"episodes"`
	Seed           int64   `json:"seed" yaml:"seed"`
	Policy         string  `json:"policy" yaml:"policy"`
	Render         bool    `json:"render" yaml:"render"`
	MaxSteps       int     `json:"max_steps,omitempty" yaml:"max_steps,omitempty"` // 0 runs every episode to completion
}

// HistoryConfig selects where the run history is exported
type HistoryConfig struct {
	Type   string `json:"type" yaml:"type"` // "csv", "sqlite" or "parquet"
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig contains logging and tracing switches
type LogConfig struct {
	Level   string `json:"level" yaml:"level"`
	Format  string `json:"format" yaml:"format"` // "text" or "json"
	Tracing bool   `json:"tracing" yaml:"tracing"`
}

// StartDay parses Data.Start.
func (d DataConfig) StartDay() (time.Time, error) {
	return time.Parse(DayLayout, d.Start)
}

// EndDay parses Data.End.
func (d DataConfig) EndDay() (time.Time, error) {
	return time.Parse(DayLayout, d.End)
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Data.Ticker == "" {
		return fmt.Errorf("data.ticker is required")
	}
	start, err := c.Data.StartDay()
	if err != nil {
		return fmt.Errorf("data.start must be YYYYMMDD: %w", err)
	}
	end, err := c.Data.EndDay()
	if err != nil {
		return fmt.Errorf("data.end must be YYYYMMDD: %w", err)
	}
	if start.After(end) {
		return fmt.Errorf("data.start %s is after data.end %s", c.Data.Start, c.Data.End)
	}
	if c.Simulation.InitialBalance <= 0 {
		return fmt.Errorf("simulation.initial_balance must be positive")
	}
	if c.Simulation.Episodes <= 0 {
		return fmt.Errorf("simulation.episodes must be positive")
	}
	if c.Simulation.MaxSteps < 0 {
		return fmt.Errorf("simulation.max_steps must not be negative")
	}
	if c.Simulation.Policy == "" {
		return fmt.Errorf("simulation.policy is required")
	}
	switch c.History.Type {
	case "csv", "parquet":
		if c.History.Path == "" {
			return fmt.Errorf("history.path required for %s type", c.History.Type)
		}
	case "sqlite":
		if c.History.DBPath == "" {
			return fmt.Errorf("history.db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("history.type must be 'csv', 'sqlite' or 'parquet'")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

// ApplyEnv loads a .env file from the working directory when present and
// overrides fields from SPOTSIM_* environment variables.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if val := os.Getenv("SPOTSIM_DATA_DIR"); val != "" {
		c.Data.Dir = val
	}
	if val := os.Getenv("SPOTSIM_TICKER"); val != "" {
		c.Data.Ticker = val
	}
	if val := os.Getenv("SPOTSIM_BINANCE_URL"); val != "" {
		c.Data.BaseURL = val
	}
	if val := os.Getenv("SPOTSIM_HISTORY_DB"); val != "" {
		c.History.DBPath = val
	}
	if val := os.Getenv("SPOTSIM_LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("SPOTSIM_EPISODES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Simulation.Episodes = n
		}
	}
	if val := os.Getenv("SPOTSIM_TRACING"); val != "" {
		if on, err := strconv.ParseBool(val); err == nil {
			c.Log.Tracing = on
		}
	}
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir:      "data/klines",
			Ticker:   "ETHUSDT",
			Start:    "20240101",
			End:      "20240531",
			Interval: "1m",
		},
		Simulation: SimulationConfig{
			InitialBalance: 100000,
			Episodes:       10,
			Seed:           0,
			Policy:         "random",
		},
		History: HistoryConfig{
			Type:   "csv",
			Path:   "final_simulation_result.csv",
			DBPath: "spotsim.sqlite",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
