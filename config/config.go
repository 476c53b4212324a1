package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort         string
	ServerHost         string
	CORSAllowedOrigins []string

	// Database configuration
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	MigrationsDir string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string
	JWTIssuer string

	// Logging
	LogLevel  string
	LogFormat string

	// Image storage
	S3           S3Settings
	ImageTimeout time.Duration

	// Per-user limits on recipe writes, per hour
	RecipeCreateLimit int
	RecipeModifyLimit int
}

// S3Settings are the raw image bucket settings. NewS3Config turns them into
// a client.
type S3Settings struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	PublicRead      bool
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	switch env {
	case Development, Test:
		// A missing .env file is fine, real variables win over it.
		_ = godotenv.Load()
	case CI, Production:
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	cfg, err := load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(env Environment) (*Config, error) {
	l := &loader{env: env}

	cfg := &Config{
		Environment:        env,
		ServerPort:         l.str("SERVER_PORT", "8080"),
		ServerHost:         l.str("SERVER_HOST", "0.0.0.0"),
		CORSAllowedOrigins: splitList(l.str("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		DBHost:        l.str("DB_HOST", "localhost"),
		DBPort:        l.str("DB_PORT", "5432"),
		DBUser:        l.str("DB_USER", "postgres"),
		DBPassword:    l.str("DB_PASSWORD", ""),
		DBName:        l.str("DB_NAME", "cibaria"),
		DBSSLMode:     l.str("DB_SSL_MODE", "disable"),
		MigrationsDir: l.str("MIGRATIONS_DIR", "migrations"),

		RedisURL:      l.str("REDIS_URL", ""),
		RedisHost:     l.str("REDIS_HOST", "localhost"),
		RedisPort:     l.str("REDIS_PORT", "6379"),
		RedisPassword: l.str("REDIS_PASSWORD", ""),
		RedisDB:       l.integer("REDIS_DB", 0),

		JWTSecret: l.str("JWT_SECRET", ""),
		JWTIssuer: l.str("JWT_ISSUER", "cibaria"),

		LogLevel:  l.str("LOG_LEVEL", "info"),
		LogFormat: l.str("LOG_FORMAT", "json"),

		S3: S3Settings{
			Bucket:          l.str("S3_BUCKET_NAME", "cibaria-recipe-images"),
			Region:          l.str("AWS_REGION", "us-east-1"),
			Endpoint:        l.str("S3_ENDPOINT", ""),
			AccessKeyID:     l.str("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: l.str("AWS_SECRET_ACCESS_KEY", ""),
			PublicURL:       l.str("S3_PUBLIC_URL", ""),
			PublicRead:      l.boolean("S3_PUBLIC_READ", false),
		},
		ImageTimeout: l.duration("IMAGE_TIMEOUT", 15*time.Second),

		RecipeCreateLimit: l.integer("RECIPE_CREATE_LIMIT", 5),
		RecipeModifyLimit: l.integer("RECIPE_MODIFY_LIMIT", 10),
	}

	if len(l.errs) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(l.errs, "; "))
	}
	return cfg, nil
}

// loader resolves a setting from the environment, then from a Docker
// secret named after the lower-cased key. CI reads the environment only.
type loader struct {
	env  Environment
	errs []string
}

func (l *loader) lookup(key string) (string, bool) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v, true
	}
	if l.env == CI {
		return "", false
	}
	if v := readSecret(strings.ToLower(key)); v != "" {
		return v, true
	}
	return "", false
}

func (l *loader) str(key, def string) string {
	if v, ok := l.lookup(key); ok {
		return v
	}
	return def
}

func (l *loader) integer(key string, def int) int {
	v, ok := l.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("%s must be an integer, got %q", key, v))
		return def
	}
	return n
}

func (l *loader) boolean(key string, def bool) bool {
	v, ok := l.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("%s must be a boolean, got %q", key, v))
		return def
	}
	return b
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	v, ok := l.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("%s must be a duration, got %q", key, v))
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// ServerAddr is the host:port the HTTP server listens on.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}
