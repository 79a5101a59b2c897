package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// CLI flags may override individual fields after Load.
type Config struct {
	BaseURL    string
	Username   string
	Password   string
	TargetUser string

	OutputDir string
	Prefix    string
	SplitMD   bool

	MaxPages       int
	RateLimitMs    int
	TimeoutSeconds int
	LoginRetries   int

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	PostgresEnabled  bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		BaseURL:    getEnv("ICITY_BASE_URL", "https://icity.ly"),
		Username:   getEnv("ICITY_USERNAME", ""),
		Password:   getEnv("ICITY_PASSWORD", ""),
		TargetUser: getEnv("ICITY_TARGET_USER", ""),

		OutputDir: getEnv("OUTPUT_DIR", "./export"),
		Prefix:    getEnv("OUTPUT_PREFIX", ""),
		SplitMD:   getEnvBool("SPLIT_MARKDOWN", true),

		MaxPages:       getEnvInt("MAX_PAGES", 0),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 150),
		TimeoutSeconds: getEnvInt("HTTP_TIMEOUT_SECONDS", 30),
		LoginRetries:   getEnvInt("LOGIN_RETRIES", 3),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "icity"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "icity_export"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
	}
}

// DefaultPrefix returns the export file prefix, deriving one from the
// target user when none is configured.
func (c *Config) DefaultPrefix() string {
	if c.Prefix != "" {
		return c.Prefix
	}
	return "icity_" + c.TargetUser + "_diary_export"
}

// JSONPath returns the path of the JSON output file.
func (c *Config) JSONPath() string {
	return filepath.Join(c.OutputDir, c.DefaultPrefix()+".json")
}

// TXTPath returns the path of the TXT output file.
func (c *Config) TXTPath() string {
	return filepath.Join(c.OutputDir, c.DefaultPrefix()+".txt")
}

// MarkdownRoot returns the root directory of the per-day Markdown tree.
func (c *Config) MarkdownRoot() string {
	return filepath.Join(c.OutputDir, c.DefaultPrefix()+"_md")
}

// PostsURL returns the diary listing URL for the target user.
func (c *Config) PostsURL() string {
	return c.BaseURL + "/u/" + c.TargetUser + "/posts"
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
