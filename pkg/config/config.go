// Package config loads server and training configuration through viper.
// Values come from config.yaml in the working directory or /etc/wellsync,
// overridable via WELLSYNC_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Models   ModelsConfig
	Training TrainingConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type ModelsConfig struct {
	// Dir is the root directory holding one subdirectory per task with the
	// persisted model, bundle, feature-name and metadata files.
	Dir string
}

type TrainingConfig struct {
	DataDir          string
	Seed             int64
	TestSize         float64
	CVFolds          int
	SearchIterations int
	ReportsDir       string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/wellsync")

	viper.SetEnvPrefix("WELLSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine; defaults plus env carry the day.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.readtimeout", 15)
	viper.SetDefault("server.writetimeout", 15)
	viper.SetDefault("server.bodylimit", 1<<20)

	viper.SetDefault("models.dir", "models")

	viper.SetDefault("training.datadir", "data")
	viper.SetDefault("training.seed", 42)
	viper.SetDefault("training.testsize", 0.2)
	viper.SetDefault("training.cvfolds", 5)
	viper.SetDefault("training.searchiterations", 20)
	viper.SetDefault("training.reportsdir", "reports")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}
