package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Backend    BackendConfig
	Recall     RecallConfig
	Transcribe TranscribeConfig
	LLM        LLMConfig
	Auth       AuthConfig
	Storage    StorageConfig
	Pipeline   PipelineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// BackendConfig holds the org backend API configuration
type BackendConfig struct {
	BaseURL       string
	OutgoingToken string // sent as Backend-Auth-Token on every call
	Timeout       time.Duration
}

// RecallConfig holds the recording bot API configuration
type RecallConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// TranscribeConfig holds transcription configuration.
// Provider is "assemblyai" or "http" (self-hosted transcriber service).
type TranscribeConfig struct {
	Provider       string
	AssemblyAIKey  string
	ServiceURL     string
	ServiceSecret  string
	RequestTimeout time.Duration
}

// LLMConfig holds the text-generation service configuration
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// AuthConfig holds incoming request auth configuration
type AuthConfig struct {
	IncomingToken string // static service token, MCP-Auth-Token header
	JWTSecret     string // shared secret for Bearer service JWTs
	JWTExpiry     time.Duration
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// PipelineConfig holds pipeline run tuning
type PipelineConfig struct {
	RunTimeout     time.Duration
	LockTTL        time.Duration
	RosterCacheTTL time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "meeting_insights"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Backend: BackendConfig{
			BaseURL:       getEnv("BACKEND_BASE_URL", "http://localhost:3001"),
			OutgoingToken: getEnv("BACKEND_AUTH_TOKEN", ""),
			Timeout:       getEnvAsDuration("BACKEND_TIMEOUT", "30s"),
		},
		Recall: RecallConfig{
			BaseURL: getEnv("RECALL_BASE_URL", "https://us-east-1.recall.ai"),
			APIKey:  getEnv("RECALL_API_KEY", ""),
			Timeout: getEnvAsDuration("RECALL_TIMEOUT", "30s"),
		},
		Transcribe: TranscribeConfig{
			Provider:       getEnv("TRANSCRIBE_PROVIDER", "assemblyai"),
			AssemblyAIKey:  getEnv("ASSEMBLYAI_API_KEY", ""),
			ServiceURL:     getEnv("TRANSCRIBE_SERVICE_URL", ""),
			ServiceSecret:  getEnv("TRANSCRIBE_SERVICE_SECRET", ""),
			RequestTimeout: getEnvAsDuration("TRANSCRIBE_TIMEOUT", "10m"),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			APIKey:      getEnv("LLM_API_KEY", ""),
			Model:       getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
			Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0.2),
			MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 4096),
		},
		Auth: AuthConfig{
			IncomingToken: getEnv("INCOMING_AUTH_TOKEN", ""),
			JWTSecret:     getEnv("JWT_SECRET", ""),
			JWTExpiry:     getEnvAsDuration("JWT_EXPIRY", "1h"),
		},
		Storage: StorageConfig{
			Enabled:         getEnvAsBool("STORAGE_ENABLED", false),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "meeting-recordings"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		Pipeline: PipelineConfig{
			RunTimeout:     getEnvAsDuration("PIPELINE_RUN_TIMEOUT", "15m"),
			LockTTL:        getEnvAsDuration("PIPELINE_LOCK_TTL", "20m"),
			RosterCacheTTL: getEnvAsDuration("ROSTER_CACHE_TTL", "5m"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.Auth.IncomingToken == "" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("INCOMING_AUTH_TOKEN or JWT_SECRET is required")
	}
	if c.Transcribe.Provider == "assemblyai" && c.Transcribe.AssemblyAIKey == "" {
		return fmt.Errorf("ASSEMBLYAI_API_KEY is required when TRANSCRIBE_PROVIDER=assemblyai")
	}
	if c.Transcribe.Provider == "http" && c.Transcribe.ServiceURL == "" {
		return fmt.Errorf("TRANSCRIBE_SERVICE_URL is required when TRANSCRIBE_PROVIDER=http")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
