// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTTTL         time.Duration `mapstructure:"JWT_TTL"`
	Port           string        `mapstructure:"PORT"`
	DBDriver       string        `mapstructure:"DB_DRIVER"`
	DBHost         string        `mapstructure:"DB_HOST"`
	DBPort         string        `mapstructure:"DB_PORT"`
	DBUser         string        `mapstructure:"DB_USER"`
	DBPassword     string        `mapstructure:"DB_PASSWORD"`
	DBName         string        `mapstructure:"DB_NAME"`
	DBSSLMode      string        `mapstructure:"DB_SSLMODE"`
	SQLitePath     string        `mapstructure:"SQLITE_PATH"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	AllowedOrigins string        `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string        `mapstructure:"FEATURE_FLAGS"`
	Env            string        `mapstructure:"APP_ENV"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	UploadDir      string        `mapstructure:"UPLOAD_DIR"`
	CookieSecure   bool          `mapstructure:"COOKIE_SECURE"`

	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// IsProduction reports whether the config targets a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("PORT", "8375")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "agora")
	viper.SetDefault("SQLITE_PATH", "agora.db")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_TTL", "168h")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("FEATURE_FLAGS", "realtime_messages=on")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REQUEST_TIMEOUT", "10s")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("COOKIE_SECURE", false)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))
	config.DBDriver = strings.ToLower(strings.TrimSpace(config.DBDriver))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DBDriver)
	}
	if c.RequestTimeout < 0 {
		return errors.New("REQUEST_TIMEOUT must not be negative")
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBDriver == "sqlite" {
			return errors.New("DB_DRIVER=sqlite is not allowed in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable TLS in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
