// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like HUB_TOKEN or STORE_POSTGRES_PASSWORD.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, e.g. config.production.yaml.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig() // ignore error if not found

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if cfg.Hub.Token == "" {
		cfg.Hub.Token = os.Getenv("HF_TOKEN")
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the usual locations so the binary works when
// started from the repo root or from cmd/<binary>.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	for _, p := range possiblePaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "house-price-demo"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10
	}
	if cfg.Artifacts.ModelFilename == "" {
		cfg.Artifacts.ModelFilename = "house_price_model.gob"
	}
	if cfg.Artifacts.PipelineFilename == "" {
		cfg.Artifacts.PipelineFilename = "preprocessing_pipeline.gob"
	}
	if cfg.Artifacts.CacheDir == "" {
		cfg.Artifacts.CacheDir = ".artifact-cache"
	}
	if cfg.Hub.BaseURL == "" {
		cfg.Hub.BaseURL = "https://huggingface.co"
	}
	if cfg.Hub.Timeout == 0 {
		cfg.Hub.Timeout = 60
	}
	if cfg.Store.Redis.TTL == 0 {
		cfg.Store.Redis.TTL = 300
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", cfg.HTTP.Port)
	}
	localModel := cfg.Artifacts.ModelPath != "" && cfg.Artifacts.PipelinePath != ""
	if !localModel && cfg.Hub.RepoID == "" {
		return fmt.Errorf("either artifacts.model_path/pipeline_path or hub.repo_id must be set")
	}
	if cfg.Store.Postgres.Enabled && cfg.Store.Postgres.Host == "" {
		return fmt.Errorf("store.postgres.host is required when postgres is enabled")
	}
	if cfg.Store.Redis.Enabled && cfg.Store.Redis.Address == "" {
		return fmt.Errorf("store.redis.address is required when redis is enabled")
	}
	return nil
}
