// README: Config loader with env defaults for HTTP, DB, Redis, AI provider and itinerary settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type AIConfig struct {
	Provider       string
	OpenAIKey      string
	OpenAIEndpoint string
	Model          string
	GeminiKey      string
	GeminiModel    string
	Timeout        time.Duration
}

type ItineraryConfig struct {
	StrictValidation bool
	MonthlyQuota     int
	SessionIdle      time.Duration
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		// DSN is optional; without it the planner runs with no quota.
		DSN string
	}
	Redis struct {
		// Addr is optional; without it the in-flight gate is per process.
		Addr string
	}
	AI        AIConfig
	Itinerary ItineraryConfig
	Maps      struct {
		APIKey string
	}
	CORS struct {
		Origins []string
	}
}

// Load reads a .env file when present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("ITINERARY_HTTP_ADDR", ":8080")
	cfg.DB.DSN = os.Getenv("ITINERARY_DB_DSN")
	cfg.Redis.Addr = os.Getenv("ITINERARY_REDIS_ADDR")

	cfg.AI.Provider = strings.ToLower(envOrDefault("ITINERARY_AI_PROVIDER", ProviderOpenAI))
	cfg.AI.OpenAIKey = envOrDefault("OPENAI_SECRET", os.Getenv("OPENAI_API_KEY"))
	cfg.AI.OpenAIEndpoint = envOrDefault("ITINERARY_OPENAI_ENDPOINT", "https://api.openai.com/v1/chat/completions")
	cfg.AI.Model = envOrDefault("ITINERARY_AI_MODEL", "gpt-4o")
	cfg.AI.GeminiKey = os.Getenv("GEMINI_API_KEY")
	cfg.AI.GeminiModel = envOrDefault("ITINERARY_GEMINI_MODEL", "gemini-2.0-flash")
	cfg.AI.Timeout = time.Duration(envOrDefaultInt("ITINERARY_AI_TIMEOUT_SECONDS", 60)) * time.Second

	cfg.Itinerary.StrictValidation = envOrDefaultBool("ITINERARY_STRICT_VALIDATION", false)
	cfg.Itinerary.MonthlyQuota = envOrDefaultInt("ITINERARY_MONTHLY_QUOTA", 100)
	cfg.Itinerary.SessionIdle = time.Duration(envOrDefaultInt("ITINERARY_SESSION_IDLE_MINUTES", 60)) * time.Minute

	cfg.Maps.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.CORS.Origins = splitList(envOrDefault("ITINERARY_CORS_ORIGINS", "*"))

	switch cfg.AI.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return Config{}, fmt.Errorf("config: unknown ITINERARY_AI_PROVIDER %q", cfg.AI.Provider)
	}
	if cfg.AI.Timeout < 0 {
		return Config{}, fmt.Errorf("config: ITINERARY_AI_TIMEOUT_SECONDS must not be negative")
	}
	return cfg, nil
}

// ActiveModel is the model name used by the configured provider.
func (c AIConfig) ActiveModel() string {
	if c.Provider == ProviderGemini {
		return c.GeminiModel
	}
	return c.Model
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
