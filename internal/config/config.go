package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level grantbook.yaml configuration.
type Config struct {
	Foundation FoundationConfig `yaml:"foundation" mapstructure:"foundation"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Match      MatchConfig      `yaml:"match" mapstructure:"match"`
	Import     ImportConfig     `yaml:"import" mapstructure:"import"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// FoundationConfig scopes all record-store operations.
type FoundationConfig struct {
	ID     string `yaml:"id" mapstructure:"id"`
	UserID string `yaml:"user_id" mapstructure:"user_id"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // postgres | sqlite
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// MatchConfig tunes organization matching.
type MatchConfig struct {
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
}

// ImportConfig controls the import directory and commit pacing.
type ImportConfig struct {
	Dir        string        `yaml:"dir" mapstructure:"dir"`
	RowTimeout time.Duration `yaml:"row_timeout" mapstructure:"row_timeout"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console | json
}

// Load reads grantbook.yaml (from path if non-empty, else the working
// directory) merged with GRANTBOOK_* environment variables. A missing file
// is fine; defaults and environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GRANTBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("grantbook")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "grantbook.db")
	v.SetDefault("match.threshold", 0.70)
	v.SetDefault("import.dir", "import")
	v.SetDefault("import.row_timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "config: write")
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(foundationID, userID string) *Config {
	return &Config{
		Foundation: FoundationConfig{ID: foundationID, UserID: userID},
		Store: StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: "grantbook.db",
		},
		Match:  MatchConfig{Threshold: 0.70},
		Import: ImportConfig{Dir: "import", RowTimeout: 30 * time.Second},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// InitLogger initializes the global zap logger from the log section.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
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
