package config

import (
	"os"
	"strconv"
	"time"
)

type HTTPConfig struct {
	ListenAddr string
	AuthToken  string
}

type GRPCConfig struct {
	ListenAddr string
	Reflection bool
}

type SlackConfig struct {
	BotToken string
	Channel  string
	APIURL   string
}

// Enabled reports whether a bot token is configured.
func (c SlackConfig) Enabled() bool {
	return c.BotToken != ""
}

// ResilienceConfig controls the circuit breaker and retries of outbound HTTP calls.
type ResilienceConfig struct {
	EnableCircuitBreaker bool
	MaxFailures          uint32
	CircuitTimeout       time.Duration
	MaxRetries           int
	InitialInterval      time.Duration
	MaxInterval          time.Duration
	RequestTimeout       time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type Config struct {
	ServiceName string
	HTTP        HTTPConfig
	GRPC        GRPCConfig
	DatabaseURL string
	Slack       SlackConfig
	Resilience  ResilienceConfig
	Log         LogConfig
}

// Load reads the configuration from the environment. Listen addresses default
// to loopback; exposing a server requires setting the address explicitly.
func Load() Config {
	return Config{
		ServiceName: getEnv("SERVICE_NAME", "creditrisk"),
		HTTP: HTTPConfig{
			ListenAddr: getEnv("REST_API_ADDR", "localhost:8080"),
			AuthToken:  os.Getenv("REST_API_AUTH_TOKEN"),
		},
		GRPC: GRPCConfig{
			ListenAddr: getEnv("GRPC_LISTEN_ADDR", "localhost:50051"),
			Reflection: getEnvBool("GRPC_REFLECTION", false),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Slack: SlackConfig{
			BotToken: os.Getenv("SLACK_BOT_TOKEN"),
			Channel:  getEnv("SLACK_CHANNEL_RISK", "#credit-risk"),
			APIURL:   getEnv("SLACK_API_URL", "https://slack.com/api/chat.postMessage"),
		},
		Resilience: ResilienceConfig{
			EnableCircuitBreaker: getEnvBool("HTTP_CIRCUIT_BREAKER_ENABLED", true),
			MaxFailures:          uint32(getEnvInt("HTTP_CIRCUIT_BREAKER_MAX_FAILURES", 5)),
			CircuitTimeout:       time.Duration(getEnvInt("HTTP_CIRCUIT_BREAKER_TIMEOUT_SECONDS", 30)) * time.Second,
			MaxRetries:           getEnvInt("HTTP_RETRY_MAX_ATTEMPTS", 3),
			InitialInterval:      time.Duration(getEnvInt("HTTP_RETRY_INITIAL_INTERVAL_MS", 500)) * time.Millisecond,
			MaxInterval:          time.Duration(getEnvInt("HTTP_RETRY_MAX_INTERVAL_MS", 5000)) * time.Millisecond,
			RequestTimeout:       time.Duration(getEnvInt("HTTP_REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer from environment variable or returns default
func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool reads a boolean from environment variable or returns default
func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
