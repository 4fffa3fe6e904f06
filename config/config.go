package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// JWTConfig holds token signing configuration. SecretKey comes from the
// JWT_SECRET environment variable, never from the checked-in config file.
type JWTConfig struct {
	SecretKey string        `mapstructure:"secretKey"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"tokenTTL"`
}

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	API struct {
		Version string `mapstructure:"version"`
	} `mapstructure:"api"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
	JWT          JWTConfig `mapstructure:"jwt"`
	Repositories struct {
		Postgres struct {
			Host            string        `mapstructure:"host"`
			Port            string        `mapstructure:"port"`
			Username        string        `mapstructure:"username"`
			Password        string        `mapstructure:"password"`
			DB              string        `mapstructure:"db"`
			SSLMode         string        `mapstructure:"sslmode"`
			MaxConns        int32         `mapstructure:"maxConns"`
			MinConns        int32         `mapstructure:"minConns"`
			MaxConnIdleTime time.Duration `mapstructure:"maxConnIdleTime"`
			MaxConnLifetime time.Duration `mapstructure:"maxConnLifetime"`
			ConnectTimeout  time.Duration `mapstructure:"connectTimeout"`
			AcquireTimeout  time.Duration `mapstructure:"acquireTimeout"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
}

// InitConfig loads config.yml (file-based with embedded fallback) and then
// applies environment overrides for deploy-specific and secret values.
func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	applyEnvOverrides(&config)

	if config.JWT.SecretKey == "" {
		return Config{}, fmt.Errorf("JWT secret is not configured (set JWT_SECRET)")
	}
	return config, nil
}

func applyEnvOverrides(cfg *Config) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.SecretKey = secret
	}
	if ttl := os.Getenv("JWT_EXPIRES_IN"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.JWT.TokenTTL = d
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.HTTPPort = port
	}
	if version := os.Getenv("API_VERSION"); version != "" {
		cfg.API.Version = version
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = strings.Split(origins, ",")
	}
	if password := os.Getenv("POSTGRES_PASSWORD"); password != "" {
		cfg.Repositories.Postgres.Password = password
	}
	if mode := os.Getenv("APP_ENV"); mode != "" {
		cfg.Mode = mode
	}
}
