package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"scorecli/internal/errors"
	"scorecli/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Storage  StorageConfig  `yaml:"storage" envconfig:"STORAGE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// AnalysisConfig contains the analyzer policies
type AnalysisConfig struct {
	PassThreshold               float64  `yaml:"pass_threshold" envconfig:"PASS_THRESHOLD" default:"50" validate:"gtfield=SentinelScore"`
	SentinelScore               float64  `yaml:"sentinel_score" envconfig:"SENTINEL_SCORE" default:"0" validate:"gte=0"`
	StrictImprovement           bool     `yaml:"strict_improvement" envconfig:"STRICT_IMPROVEMENT" default:"false"`
	DedupSemesterRecords        bool     `yaml:"dedup_semester_records" envconfig:"DEDUP_SEMESTER_RECORDS" default:"true"`
	ExcludeSentinelFromAverages bool     `yaml:"exclude_sentinel_from_averages" envconfig:"EXCLUDE_SENTINEL_FROM_AVERAGES" default:"false"`
	Subjects                    []string `yaml:"subjects" envconfig:"SUBJECTS"`
	Precision                   int      `yaml:"precision" envconfig:"PRECISION" default:"2" validate:"gte=0,lte=6"`
	Sources                     []string `yaml:"sources" envconfig:"SOURCES"`
	Sheet                       string   `yaml:"sheet" envconfig:"SHEET"`
	Cleaning                    string   `yaml:"cleaning" envconfig:"CLEANING" default:"none" validate:"oneof=none dropna mean"`
}

// StorageConfig contains persistence configuration
type StorageConfig struct {
	Enabled      bool   `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	DatabaseFile string `yaml:"database_file" envconfig:"DATABASE_FILE" default:"scores.db"`
}

// Options converts the analysis configuration to analyzer options.
func (a AnalysisConfig) Options() domain.AnalysisOptions {
	return domain.AnalysisOptions{
		PassThreshold:               a.PassThreshold,
		SentinelScore:               a.SentinelScore,
		StrictImprovement:           a.StrictImprovement,
		DedupSemesterRecords:        a.DedupSemesterRecords,
		ExcludeSentinelFromAverages: a.ExcludeSentinelFromAverages,
		Subjects:                    append([]string(nil), a.Subjects...),
		Precision:                   a.Precision,
	}
}

// Load loads configuration from a .env file, environment variables and an
// optional YAML config file found in the usual locations.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the
// file. Environment values that differ from their defaults take precedence
// over the file.
func LoadFrom(configFile string) (*Config, error) {
	// .env is optional and never overrides variables already set
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from env", err)
	}

	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, errors.NewConfigError("failed to load config from file", err).
				WithContext("file", configFile)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadFromFile loads configuration from YAML file. Keys absent from the
// file keep their default values.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// pick returns env unless it still holds the default value.
func pick[T comparable](env, file, def T) T {
	if env != def {
		return env
	}
	return file
}

func pickSlice(env, file, def []string) []string {
	if strings.Join(env, ",") != strings.Join(def, ",") {
		return env
	}
	return file
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	d := Default()
	out := envConfig

	out.Server.Port = pick(envConfig.Server.Port, fileConfig.Server.Port, d.Server.Port)
	out.Server.ReadTimeout = pick(envConfig.Server.ReadTimeout, fileConfig.Server.ReadTimeout, d.Server.ReadTimeout)
	out.Server.WriteTimeout = pick(envConfig.Server.WriteTimeout, fileConfig.Server.WriteTimeout, d.Server.WriteTimeout)
	out.Server.IdleTimeout = pick(envConfig.Server.IdleTimeout, fileConfig.Server.IdleTimeout, d.Server.IdleTimeout)
	out.Server.MaxHeaderBytes = pick(envConfig.Server.MaxHeaderBytes, fileConfig.Server.MaxHeaderBytes, d.Server.MaxHeaderBytes)
	out.Server.ShutdownTimeout = pick(envConfig.Server.ShutdownTimeout, fileConfig.Server.ShutdownTimeout, d.Server.ShutdownTimeout)
	out.Server.RequestTimeout = pick(envConfig.Server.RequestTimeout, fileConfig.Server.RequestTimeout, d.Server.RequestTimeout)

	out.Security.AllowedOrigins = pickSlice(envConfig.Security.AllowedOrigins, fileConfig.Security.AllowedOrigins, d.Security.AllowedOrigins)
	out.Security.RateLimit.Enabled = pick(envConfig.Security.RateLimit.Enabled, fileConfig.Security.RateLimit.Enabled, d.Security.RateLimit.Enabled)
	out.Security.RateLimit.RPS = pick(envConfig.Security.RateLimit.RPS, fileConfig.Security.RateLimit.RPS, d.Security.RateLimit.RPS)
	out.Security.RateLimit.Burst = pick(envConfig.Security.RateLimit.Burst, fileConfig.Security.RateLimit.Burst, d.Security.RateLimit.Burst)

	out.Logging.Level = pick(envConfig.Logging.Level, fileConfig.Logging.Level, d.Logging.Level)
	out.Logging.Format = pick(envConfig.Logging.Format, fileConfig.Logging.Format, d.Logging.Format)
	out.Logging.Output = pick(envConfig.Logging.Output, fileConfig.Logging.Output, d.Logging.Output)
	out.Logging.FilePath = pick(envConfig.Logging.FilePath, fileConfig.Logging.FilePath, d.Logging.FilePath)
	out.Logging.Development = pick(envConfig.Logging.Development, fileConfig.Logging.Development, d.Logging.Development)

	out.Paths.BaseDir = pick(envConfig.Paths.BaseDir, fileConfig.Paths.BaseDir, d.Paths.BaseDir)
	out.Paths.DataDir = pick(envConfig.Paths.DataDir, fileConfig.Paths.DataDir, d.Paths.DataDir)
	out.Paths.ReportsDir = pick(envConfig.Paths.ReportsDir, fileConfig.Paths.ReportsDir, d.Paths.ReportsDir)
	out.Paths.LogsDir = pick(envConfig.Paths.LogsDir, fileConfig.Paths.LogsDir, d.Paths.LogsDir)

	a, fa, da := envConfig.Analysis, fileConfig.Analysis, d.Analysis
	out.Analysis.PassThreshold = pick(a.PassThreshold, fa.PassThreshold, da.PassThreshold)
	out.Analysis.SentinelScore = pick(a.SentinelScore, fa.SentinelScore, da.SentinelScore)
	out.Analysis.StrictImprovement = pick(a.StrictImprovement, fa.StrictImprovement, da.StrictImprovement)
	out.Analysis.DedupSemesterRecords = pick(a.DedupSemesterRecords, fa.DedupSemesterRecords, da.DedupSemesterRecords)
	out.Analysis.ExcludeSentinelFromAverages = pick(a.ExcludeSentinelFromAverages, fa.ExcludeSentinelFromAverages, da.ExcludeSentinelFromAverages)
	out.Analysis.Subjects = pickSlice(a.Subjects, fa.Subjects, da.Subjects)
	out.Analysis.Precision = pick(a.Precision, fa.Precision, da.Precision)
	out.Analysis.Sources = pickSlice(a.Sources, fa.Sources, da.Sources)
	out.Analysis.Sheet = pick(a.Sheet, fa.Sheet, da.Sheet)
	out.Analysis.Cleaning = pick(a.Cleaning, fa.Cleaning, da.Cleaning)

	out.Storage.Enabled = pick(envConfig.Storage.Enabled, fileConfig.Storage.Enabled, d.Storage.Enabled)
	out.Storage.DatabaseFile = pick(envConfig.Storage.DatabaseFile, fileConfig.Storage.DatabaseFile, d.Storage.DatabaseFile)

	return out
}

var validate = validator.New()

// validate validates the configuration
func (c *Config) validate() error {
	// Always JSON, per the logger contract
	c.Logging.Format = "json"
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	if err := validate.Struct(c); err != nil {
		return errors.NewConfigError("config validation failed", err)
	}
	for _, s := range c.Analysis.Subjects {
		if strings.TrimSpace(s) == "" {
			return errors.NewConfigError("config validation failed", fmt.Errorf("empty subject name"))
		}
	}
	return nil
}

// Validate runs the same checks Load applies.
func (c *Config) Validate() error {
	return c.validate()
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	opts := domain.DefaultAnalysisOptions()
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "reports",
			LogsDir:    "logs",
		},
		Analysis: AnalysisConfig{
			PassThreshold:        opts.PassThreshold,
			SentinelScore:        opts.SentinelScore,
			DedupSemesterRecords: opts.DedupSemesterRecords,
			Precision:            opts.Precision,
			Cleaning:             CleaningNone,
		},
		Storage: StorageConfig{
			Enabled:      true,
			DatabaseFile: DatabaseFileName,
		},
	}
}
