package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config хранит все параметры приложения
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	AuthRateLimit  float64       `yaml:"auth_rate_limit"`
	AuthRateBurst  int           `yaml:"auth_rate_burst"`
}

type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	BcryptCost   int           `yaml:"bcrypt_cost"`
	ResetCodeTTL time.Duration `yaml:"reset_code_ttl"`
}

type StoreConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	ReadRetries int           `yaml:"read_retries"`
	ListLimit   int           `yaml:"list_limit"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		Database: DatabaseConfig{Port: 5432, SSLMode: "disable", MaxConns: 10},
		RabbitMQ: RabbitMQConfig{Enabled: true, Port: 5672, VHost: "/"},
		HTTP: HTTPConfig{
			Port:           3000,
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   30 * time.Second,
			AllowedOrigins: []string{"http://localhost:5173"},
			AuthRateLimit:  5,
			AuthRateBurst:  10,
		},
		Auth: AuthConfig{
			TokenTTL:     24 * time.Hour,
			BcryptCost:   10,
			ResetCodeTTL: 15 * time.Minute,
		},
		Store: StoreConfig{Timeout: 5 * time.Second, ReadRetries: 2, ListLimit: 100},
		Log:   LogConfig{Level: "info"},
	}
}

// LoadConfig reads the YAML file at path on top of the defaults, then applies
// .env and CANTEEN_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("couldn't open the configuration file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("error reading %s: %w", path, err)
		}
	}

	// .env is optional; a missing file is not an error
	_ = godotenv.Load()
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if c.Database.Host == "" || c.Database.User == "" || c.Database.Database == "" {
		return errors.New("invalid config: database host, user and database are required")
	}
	if c.RabbitMQ.Enabled && (c.RabbitMQ.Host == "" || c.RabbitMQ.User == "") {
		return errors.New("invalid config: rabbitmq host and user are required when enabled")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("invalid config: auth.jwt_secret must be at least 16 characters")
	}
	return nil
}

func applyEnv(c *Config) {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv("CANTEEN_" + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv("CANTEEN_" + key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}

	str("DB_HOST", &c.Database.Host)
	num("DB_PORT", &c.Database.Port)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Database)
	str("RABBITMQ_HOST", &c.RabbitMQ.Host)
	str("RABBITMQ_USER", &c.RabbitMQ.User)
	str("RABBITMQ_PASSWORD", &c.RabbitMQ.Password)
	num("HTTP_PORT", &c.HTTP.Port)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("LOG_LEVEL", &c.Log.Level)
	if v, ok := os.LookupEnv("CANTEEN_RABBITMQ_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.RabbitMQ.Enabled = b
		}
	}
}
