// Package config loads the application configuration from defaults, an
// optional YAML file and GPR_* environment variables, in that order of
// precedence (environment wins).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Comtrade ComtradeConfig `yaml:"comtrade" envconfig:"COMTRADE"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DataConfig locates the reference database files. All three are
// required; the loader fails fast when one is missing.
type DataConfig struct {
	Dir             string `yaml:"dir" envconfig:"DIR"`
	MiningDB        string `yaml:"mining_db" envconfig:"MINING_DB"`
	WGIDB           string `yaml:"wgi_db" envconfig:"WGI_DB"`
	TradeDB         string `yaml:"trade_db" envconfig:"TRADE_DB"`
	CompanyTemplate string `yaml:"company_template" envconfig:"COMPANY_TEMPLATE"`
}

// OutputConfig locates run outputs: exports and the keyed record store.
type OutputConfig struct {
	Dir       string `yaml:"dir" envconfig:"DIR"`
	RecordsDB string `yaml:"records_db" envconfig:"RECORDS_DB"`
}

// ComtradeConfig configures the legacy COMTRADE fetch client.
type ComtradeConfig struct {
	BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	RatePerHour    int           `yaml:"rate_per_hour" envconfig:"RATE_PER_HOUR"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/geopolrisk.log",
		},
		Data: DataConfig{
			Dir:             "lib",
			MiningDB:        "world_mining_data.db",
			WGIDB:           "wgi.db",
			TradeDB:         "baci.db",
			CompanyTemplate: "Company data.xlsx",
		},
		Output: OutputConfig{
			Dir:       "output",
			RecordsDB: "Datarecords.db",
		},
		Comtrade: ComtradeConfig{
			BaseURL:        "https://comtrade.un.org/api/get",
			RequestTimeout: 30 * time.Second,
			RatePerHour:    100,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at
// configPath (skipped when empty or absent), then GPR_* environment
// variables.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
			}
		}
	}

	if err := envconfig.Process("GPR", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// resolvePaths joins the database file names onto their directories
// unless they are already absolute.
func (c *Config) resolvePaths() {
	join := func(dir, name string) string {
		if name == "" || filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(dir, name)
	}
	c.Data.MiningDB = join(c.Data.Dir, c.Data.MiningDB)
	c.Data.WGIDB = join(c.Data.Dir, c.Data.WGIDB)
	c.Data.TradeDB = join(c.Data.Dir, c.Data.TradeDB)
	c.Data.CompanyTemplate = join(c.Data.Dir, c.Data.CompanyTemplate)
	c.Output.RecordsDB = join(c.Output.Dir, c.Output.RecordsDB)
	c.Logging.FilePath = join(c.Output.Dir, filepath.Base(c.Logging.FilePath))
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Data.MiningDB == "" || c.Data.WGIDB == "" || c.Data.TradeDB == "" {
		return fmt.Errorf("all three reference databases must be configured")
	}
	if c.Comtrade.RatePerHour < 1 {
		return fmt.Errorf("comtrade rate per hour must be positive: %d", c.Comtrade.RatePerHour)
	}
	return nil
}

// EnsureOutputDir creates the output directory if needed.
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}
