// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Hub       HubConfig       `mapstructure:"hub"`
	Store     StoreConfig     `mapstructure:"store"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // seconds
}

// ArtifactsConfig locates the serialized model and preprocessing pipeline.
// A non-empty local path wins; otherwise the file is fetched from the hub
// repository into the cache directory.
type ArtifactsConfig struct {
	ModelPath        string `mapstructure:"model_path"`
	PipelinePath     string `mapstructure:"pipeline_path"`
	ModelFilename    string `mapstructure:"model_filename"`
	PipelineFilename string `mapstructure:"pipeline_filename"`
	CacheDir         string `mapstructure:"cache_dir"`
}

type HubConfig struct {
	BaseURL string `mapstructure:"base_url"`
	RepoID  string `mapstructure:"repo_id"`
	Token   string `mapstructure:"token"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

type StoreConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // seconds
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
