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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Rules     RulesConfig     `yaml:"rules" mapstructure:"rules"`
	Portfolio PortfolioConfig `yaml:"portfolio" mapstructure:"portfolio"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RulesConfig points at an optional eligibility rules override file.
type RulesConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// PortfolioConfig configures portfolio aggregation and the waterfall.
type PortfolioConfig struct {
	ConcentrationThreshold float64 `yaml:"concentration_threshold" mapstructure:"concentration_threshold"`
	DBARate                float64 `yaml:"dba_rate" mapstructure:"dba_rate"`
	Concurrency            int     `yaml:"concurrency" mapstructure:"concurrency"`
}

// IngestConfig configures report file ingestion.
type IngestConfig struct {
	SheetName string  `yaml:"sheet_name" mapstructure:"sheet_name"`
	SheetIdx  int     `yaml:"sheet_index" mapstructure:"sheet_index"`
	SkipRows  int     `yaml:"skip_rows" mapstructure:"skip_rows"`
	Extractor string  `yaml:"extractor" mapstructure:"extractor"` // pattern, claude, or auto
	RPS       float64 `yaml:"rps" mapstructure:"rps"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("CLAIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "claims.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("portfolio.concentration_threshold", 0.25)
	v.SetDefault("portfolio.dba_rate", 0.30)
	v.SetDefault("portfolio.concurrency", 8)
	v.SetDefault("ingest.extractor", "auto")
	v.SetDefault("ingest.rps", 2)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")

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

// Validate checks the configuration needed for the given mode. Modes map
// to commands: "portfolio" needs a database and sane aggregation settings,
// "serve" additionally needs a listen port, "extract" needs API credentials.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkCommon := func() {
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
		if c.Portfolio.ConcentrationThreshold <= 0 || c.Portfolio.ConcentrationThreshold > 1 {
			problems = append(problems, "portfolio.concentration_threshold must be in (0, 1]")
		}
		if c.Portfolio.DBARate <= 0 || c.Portfolio.DBARate > 1 {
			problems = append(problems, "portfolio.dba_rate must be in (0, 1]")
		}
		if c.Portfolio.Concurrency < 1 || c.Portfolio.Concurrency > 64 {
			problems = append(problems, "portfolio.concurrency must be between 1 and 64")
		}
	}

	switch mode {
	case "portfolio":
		checkCommon()
	case "serve":
		checkCommon()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "extract":
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
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
