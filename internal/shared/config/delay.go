package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ibis-project/kedro-ibis-tutorial/pkg/core"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/model"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/split"
)

// Config contains all configuration for the delay prediction project.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Split   SplitConfig   `mapstructure:"split"`
	Model   model.Params  `mapstructure:"model"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
}

// CatalogConfig locates the dataset catalog. Relative dataset paths resolve
// against BaseDir, or the catalog file's directory when BaseDir is empty.
type CatalogConfig struct {
	Path    string `mapstructure:"path"`
	BaseDir string `mapstructure:"base_dir"`
}

// SplitConfig parameterises the train/test partition.
type SplitConfig struct {
	Seed       int64         `mapstructure:"seed"`
	Fraction   core.Fraction `mapstructure:"fraction"`
	Hash       string        `mapstructure:"hash"`
	Workers    int           `mapstructure:"workers"`
	ChunkSize  int           `mapstructure:"chunk_size"`
	StrictKeys bool          `mapstructure:"strict_keys"`
}

// ServerConfig contains HTTP API server configuration.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// Options converts the configuration into partitioner options.
func (c SplitConfig) Options() (split.Options, error) {
	hash, err := core.ParseHashFunc(c.Hash)
	if err != nil {
		return split.Options{}, err
	}
	if err := c.Fraction.Validate(); err != nil {
		return split.Options{}, err
	}
	if c.Workers < 0 || c.ChunkSize < 0 {
		return split.Options{}, fmt.Errorf("%w: workers and chunk size must not be negative", core.ErrConfiguration)
	}
	return split.Options{
		Seed:       c.Seed,
		Fraction:   c.Fraction,
		Hash:       hash,
		Workers:    c.Workers,
		ChunkSize:  c.ChunkSize,
		StrictKeys: c.StrictKeys,
	}, nil
}

// Load loads the configuration from the given path.
// If configPath is empty, it looks for delay.yaml in the config/ directory.
// Environment variables with DELAY_ prefix override config file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	defaults := split.DefaultOptions()
	params := model.DefaultParams()

	v.SetDefault("catalog.path", "conf/catalog.yml")
	v.SetDefault("catalog.base_dir", "")
	v.SetDefault("split.seed", defaults.Seed)
	v.SetDefault("split.fraction.numerator", defaults.Fraction.Numerator)
	v.SetDefault("split.fraction.denominator", defaults.Fraction.Denominator)
	v.SetDefault("split.hash", core.HashXX64)
	v.SetDefault("split.workers", 0)
	v.SetDefault("split.chunk_size", 0)
	v.SetDefault("split.strict_keys", false)
	v.SetDefault("model.learning_rate", params.LearningRate)
	v.SetDefault("model.epochs", params.Epochs)
	v.SetDefault("model.l2", params.L2)
	v.SetDefault("model.tolerance", params.Tolerance)
	v.SetDefault("model.threshold", params.Threshold)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("delay")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("DELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: error unmarshaling config: %w", core.ErrConfiguration, err)
	}

	return &cfg, nil
}
