// Package config provides configuration parsing for cditrend.
//
// It handles command-line flags with environment-variable fallbacks
// (flags take precedence), plus an optional YAML config file given via
// --config. Supported configuration sources, in order of precedence:
//  1. Command-line flags
//  2. Config file values
//  3. Environment variables
//  4. Default values
//
// The single positional argument (the chart base name) is left to the
// caller via flag.Arg(0).
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brclabs/cditrend/pkg/fetch"
	"github.com/brclabs/cditrend/pkg/series"
)

// Config holds all cditrend configuration.
type Config struct {
	SourceURL   string
	HTTPTimeout time.Duration

	Samples  int
	Interval time.Duration

	Storage       string
	CSVFile       string
	SeriesName    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	Listen    string
	LogLevel  string
	LogFormat string

	ConfigFile string
}

// fileConfig is the YAML shape of the optional config file.
type fileConfig struct {
	SourceURL   string        `yaml:"source_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	Samples     int           `yaml:"samples"`
	Interval    time.Duration `yaml:"interval"`
	Storage     string        `yaml:"storage"`
	CSVFile     string        `yaml:"csv_file"`
	SeriesName  string        `yaml:"series_name"`
	Redis       struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Listen string `yaml:"listen"`
	Log    struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// ParseFlags parses command-line flags, environment variables and the
// optional config file into a Config. Exits with a message on invalid
// configuration.
func ParseFlags() *Config {
	cfg := &Config{}

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <chart-name>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.StringVar(&cfg.SourceURL, "source-url", getEnv("SOURCE_URL", fetch.DefaultURL), "Rate source endpoint URL")
	flag.DurationVar(&cfg.HTTPTimeout, "http-timeout", getEnvDuration("HTTP_TIMEOUT", 10*time.Second), "Rate source request timeout")

	flag.IntVar(&cfg.Samples, "samples", getEnvInt("SAMPLES", 10), "Number of samples to generate per run")
	flag.DurationVar(&cfg.Interval, "interval", getEnvDuration("INTERVAL", time.Second), "Pause between consecutive samples")

	flag.StringVar(&cfg.Storage, "storage", getEnv("STORAGE", "csv"), "Series backend: csv or redis")
	flag.StringVar(&cfg.CSVFile, "csv-file", getEnv("CSV_FILE", series.DefaultCSVPath), "Series file path (csv backend)")
	flag.StringVar(&cfg.SeriesName, "series-name", getEnv("SERIES_NAME", "taxa-cdi"), "Series name (redis backend key)")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("REDIS_ADDR", "localhost:6379"), "Redis server address")
	flag.StringVar(&cfg.RedisPassword, "redis-password", getEnv("REDIS_PASSWORD", ""), "Redis password")
	flag.IntVar(&cfg.RedisDB, "redis-db", getEnvInt("REDIS_DB", 0), "Redis database number")
	flag.DurationVar(&cfg.RedisTTL, "redis-ttl", getEnvDuration("REDIS_TTL", 0), "Redis series TTL (0 disables expiration)")

	flag.StringVar(&cfg.Listen, "listen", getEnv("LISTEN", ""), "Observability listen address (empty disables the listener)")
	flag.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	flag.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format: text or json")

	flag.StringVar(&cfg.ConfigFile, "config", getEnv("CONFIG_FILE", ""), "Optional YAML config file")

	flag.Parse()

	if cfg.ConfigFile != "" {
		if err := cfg.mergeFile(cfg.ConfigFile, setFlags()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return cfg
}

// setFlags reports which flags were passed explicitly on the command line.
func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// mergeFile loads the YAML file and applies its values to cfg, except
// where an explicit command-line flag already set the field.
func (c *Config) mergeFile(path string, set map[string]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.SourceURL != "" && !set["source-url"] {
		c.SourceURL = fc.SourceURL
	}
	if fc.HTTPTimeout > 0 && !set["http-timeout"] {
		c.HTTPTimeout = fc.HTTPTimeout
	}
	if fc.Samples > 0 && !set["samples"] {
		c.Samples = fc.Samples
	}
	if fc.Interval > 0 && !set["interval"] {
		c.Interval = fc.Interval
	}
	if fc.Storage != "" && !set["storage"] {
		c.Storage = fc.Storage
	}
	if fc.CSVFile != "" && !set["csv-file"] {
		c.CSVFile = fc.CSVFile
	}
	if fc.SeriesName != "" && !set["series-name"] {
		c.SeriesName = fc.SeriesName
	}
	if fc.Redis.Addr != "" && !set["redis-addr"] {
		c.RedisAddr = fc.Redis.Addr
	}
	if fc.Redis.Password != "" && !set["redis-password"] {
		c.RedisPassword = fc.Redis.Password
	}
	if fc.Redis.DB != 0 && !set["redis-db"] {
		c.RedisDB = fc.Redis.DB
	}
	if fc.Redis.TTL > 0 && !set["redis-ttl"] {
		c.RedisTTL = fc.Redis.TTL
	}
	if fc.Listen != "" && !set["listen"] {
		c.Listen = fc.Listen
	}
	if fc.Log.Level != "" && !set["log-level"] {
		c.LogLevel = fc.Log.Level
	}
	if fc.Log.Format != "" && !set["log-format"] {
		c.LogFormat = fc.Log.Format
	}

	return nil
}

// Validate rejects nonsensical configuration values.
func (c *Config) Validate() error {
	if c.SourceURL == "" {
		return fmt.Errorf("source URL cannot be empty")
	}
	if c.Samples <= 0 {
		return fmt.Errorf("samples must be > 0, got %d", c.Samples)
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval cannot be negative, got %v", c.Interval)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0, got %v", c.HTTPTimeout)
	}
	if c.Storage != "csv" && c.Storage != "redis" {
		return fmt.Errorf("invalid storage %q (must be csv or redis)", c.Storage)
	}
	if c.Storage == "redis" && c.RedisAddr == "" {
		return fmt.Errorf("redis address is required when storage=redis")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q (must be text or json)", c.LogFormat)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
