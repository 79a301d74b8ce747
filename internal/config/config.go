package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Report ReportConfig `yaml:"report" mapstructure:"report"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ReportConfig configures report processing defaults.
type ReportConfig struct {
	// ConflictStrategy resolves pole-attribute disagreements:
	// PREFER_SURVEY, PREFER_ENGINEERING, or HIGHLIGHT_DIFFERENCES.
	ConflictStrategy string `yaml:"conflict_strategy" mapstructure:"conflict_strategy"`

	// HeightStrategy records attachment-height conflict intent.
	HeightStrategy string `yaml:"height_strategy" mapstructure:"height_strategy"`

	// Strict aborts the whole run on the first pole failure instead of
	// skipping the pole and collecting the error.
	Strict bool `yaml:"strict" mapstructure:"strict"`

	// Workers bounds concurrent per-pole processing.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the report upload server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`

	// MaxUploadMB caps multipart upload size.
	MaxUploadMB int `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MAKEREADY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "makeready.db")
	v.SetDefault("report.conflict_strategy", "PREFER_ENGINEERING")
	v.SetDefault("report.height_strategy", "PREFER_SURVEY")
	v.SetDefault("report.strict", false)
	v.SetDefault("report.workers", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 16)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
