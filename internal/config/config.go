// Package config loads workflow configuration from defaults, an optional
// obego.yaml file, a .env file and OBEGO_-prefixed environment variables.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/obesitylab/obego/pkg/errors"
)

// Config holds every path and knob the three stages use. Values are resolved
// once at process start and passed explicitly; nothing reads the environment
// afterwards.
type Config struct {
	RawDataPath    string  `mapstructure:"raw_data_path"`
	CleanDataPath  string  `mapstructure:"clean_data_path"`
	TrackingDBPath string  `mapstructure:"tracking_db_path"`
	OutputDir      string  `mapstructure:"output_dir"`
	TemplatePath   string  `mapstructure:"template_path"`
	ExperimentName string  `mapstructure:"experiment_name"`
	Seed           int64   `mapstructure:"seed"`
	TestFraction   float64 `mapstructure:"test_fraction"`
	LogLevel       string  `mapstructure:"log_level"`
}

// Load resolves the configuration. A missing obego.yaml or .env is not an
// error; a malformed one is.
func Load() (*Config, error) {
	// Best effort: a .env next to the binary may override the environment.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("raw_data_path", "data/ObesityDataSet.csv")
	v.SetDefault("clean_data_path", "data/clean_data.csv")
	v.SetDefault("tracking_db_path", "output/runs.db")
	v.SetDefault("output_dir", "output")
	v.SetDefault("template_path", "report_template.html")
	v.SetDefault("experiment_name", "obesity_prediction_experiment")
	v.SetDefault("seed", 42)
	v.SetDefault("test_fraction", 0.3)
	v.SetDefault("log_level", "info")

	v.SetConfigName("obego")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("OBEGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return errors.NewValueError("config", "test_fraction must be in (0, 1)")
	}
	if c.ExperimentName == "" {
		return errors.NewValueError("config", "experiment_name must not be empty")
	}
	return nil
}
