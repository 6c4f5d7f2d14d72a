package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAddr       = ":8000"
	DefaultServiceURL = "https://backstabbr-bot.herokuapp.com"
	DefaultSparkURL   = "https://webexapis.com/v1"
	DefaultJWTKey     = "NeverShareYourSecret"
)

type Config struct {
	ServerAddr     string
	ServiceURL     string
	SigningKey     []byte
	AllowedOrigins []string

	SparkAccessToken   string
	SparkClientId      string
	SparkClientSecret  string
	SparkAPIURL        string
	SparkRedirectURI   string
	SparkWebhookSecret string

	DatabaseDSN   string
	RedisURL      string
	RemoteTimeout time.Duration

	LogLevel  string
	LogFormat string

	// DefaultSigningKey is set when no JWT_KEY was configured.
	DefaultSigningKey bool
}

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = nil
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*s = append(*s, v)
		}
	}
	return nil
}

// Load reads the configuration from a .env file, if present, the
// environment and the command line. Flags win over the environment.
func Load(args []string) (*Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	cfg := &Config{}
	origins := stringSliceFlag{}
	_ = origins.Set(os.Getenv("ALLOWED_ORIGINS"))

	fs := flag.NewFlagSet("backstabbr-bot", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerAddr, "addr", getEnvOrDefault("ADDR", DefaultAddr), "server address")
	fs.StringVar(&cfg.ServiceURL, "service-url", getEnvOrDefault("SERVICE_URL", DefaultServiceURL), "public base URL webhooks call back to")
	fs.StringVar(&cfg.DatabaseDSN, "dsn", os.Getenv("DATABASE_URL"), "postgres connection string")
	fs.StringVar(&cfg.RedisURL, "redis-url", os.Getenv("REDIS_URL"), "redis URL for relay registrations")
	fs.StringVar(&cfg.SparkAPIURL, "spark-api-url", getEnvOrDefault("SPARK_API_URL", DefaultSparkURL), "chat platform API base URL")
	fs.Var(&origins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnvOrDefault("LOG_LEVEL", "info"), "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", getEnvOrDefault("LOG_FORMAT", "console"), "log format (console or json)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.AllowedOrigins = origins

	timeout, err := time.ParseDuration(getEnvOrDefault("REMOTE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMOTE_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid REMOTE_TIMEOUT: must be positive")
	}
	cfg.RemoteTimeout = timeout

	key := os.Getenv("JWT_KEY")
	if key == "" {
		key = DefaultJWTKey
		cfg.DefaultSigningKey = true
	}
	cfg.SigningKey = []byte(key)

	cfg.SparkAccessToken = os.Getenv("SPARK_ACCESS_TOKEN")
	cfg.SparkClientId = os.Getenv("SPARK_CLIENT_ID")
	cfg.SparkClientSecret = os.Getenv("SPARK_CLIENT_SECRET")
	cfg.SparkRedirectURI = os.Getenv("SPARK_REDIRECT_URI")
	cfg.SparkWebhookSecret = os.Getenv("SPARK_WEBHOOK_SECRET")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.SparkAccessToken == "" {
		missing = append(missing, "SPARK_ACCESS_TOKEN")
	}
	if c.SparkClientId == "" {
		missing = append(missing, "SPARK_CLIENT_ID")
	}
	if c.SparkClientSecret == "" {
		missing = append(missing, "SPARK_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required", strings.Join(missing, ", "))
	}
	if c.ServerAddr == "" {
		return errors.New("server address cannot be empty")
	}
	if c.ServiceURL == "" {
		return errors.New("service URL cannot be empty")
	}
	c.ServiceURL = strings.TrimRight(c.ServiceURL, "/")
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
