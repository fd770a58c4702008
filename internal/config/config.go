package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the travel assistant service.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string

	AllowAnyOrigin bool

	HistoryWindow      int
	ContextBudgetBytes int
	PromptCeilingBytes int
	RetrievalK         int
	FetchTimeout       time.Duration

	LLMProvider    string
	LLMModel       string
	LLMTimeout     time.Duration
	LLMMaxTokens   int
	LLMTemperature float64

	HFAPIKey   string
	HFBaseURL  string
	OllamaHost string

	RetrieverURL        string
	RetrieverCollection string

	FlightsAPIURL string
	FlightsAPIKey string

	WeatherGeocodeURL  string
	WeatherForecastURL string

	CurrencyAPIURL string
	BaseCurrency   string

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "itinera"),
		AllowAnyOrigin:   false,

		HistoryWindow:      10,
		ContextBudgetBytes: 4096,
		PromptCeilingBytes: 12288,
		RetrievalK:         4,

		LLMProvider: envOrDefault("LLM_PROVIDER", "auto"),
		// Small instruct model that works for both hosted and local serving.
		LLMModel:       envOrDefault("LLM_MODEL", "mistralai/Mistral-7B-Instruct-v0.3"),
		LLMMaxTokens:   512,
		LLMTemperature: 0.7,

		HFAPIKey:   stringsTrimSpace("HF_API_KEY"),
		HFBaseURL:  envOrDefault("HF_BASE_URL", "https://router.huggingface.co/v1"),
		OllamaHost: stringsTrimSpace("OLLAMA_HOST"),

		RetrieverURL:        stringsTrimSpace("RETRIEVER_URL"),
		RetrieverCollection: envOrDefault("RETRIEVER_COLLECTION", "travel_guides"),

		FlightsAPIURL: stringsTrimSpace("FLIGHTS_API_URL"),
		FlightsAPIKey: stringsTrimSpace("FLIGHTS_API_KEY"),

		WeatherGeocodeURL:  envOrDefault("WEATHER_GEOCODE_URL", "https://geocoding-api.open-meteo.com/v1/search"),
		WeatherForecastURL: envOrDefault("WEATHER_FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),

		CurrencyAPIURL: envOrDefault("CURRENCY_API_URL", "https://api.exchangerate-api.com"),
		BaseCurrency:   strings.ToUpper(envOrDefault("BASE_CURRENCY", "USD")),

		DatabaseURL: stringsTrimSpace("DATABASE_URL"),

		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 30 * time.Minute,
		FetchTimeout:             8 * time.Second,
		LLMTimeout:               60 * time.Second,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.FetchTimeout, err = durationFromEnv("FETCH_TIMEOUT", cfg.FetchTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.LLMTimeout, err = durationFromEnv("LLM_TIMEOUT", cfg.LLMTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	cfg.HistoryWindow, err = intFromEnv("HISTORY_WINDOW", cfg.HistoryWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.ContextBudgetBytes, err = intFromEnv("CONTEXT_BUDGET_BYTES", cfg.ContextBudgetBytes)
	if err != nil {
		return Config{}, err
	}
	cfg.PromptCeilingBytes, err = intFromEnv("PROMPT_CEILING_BYTES", cfg.PromptCeilingBytes)
	if err != nil {
		return Config{}, err
	}
	cfg.RetrievalK, err = intFromEnv("RETRIEVAL_K", cfg.RetrievalK)
	if err != nil {
		return Config{}, err
	}
	cfg.LLMMaxTokens, err = intFromEnv("LLM_MAX_TOKENS", cfg.LLMMaxTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.LLMTemperature, err = floatFromEnv("LLM_TEMPERATURE", cfg.LLMTemperature)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.HistoryWindow <= 0 {
		return Config{}, fmt.Errorf("HISTORY_WINDOW must be positive")
	}
	if cfg.ContextBudgetBytes <= 0 {
		return Config{}, fmt.Errorf("CONTEXT_BUDGET_BYTES must be positive")
	}
	if cfg.PromptCeilingBytes < cfg.ContextBudgetBytes {
		return Config{}, fmt.Errorf("PROMPT_CEILING_BYTES must be >= CONTEXT_BUDGET_BYTES")
	}
	if cfg.RetrievalK <= 0 {
		return Config{}, fmt.Errorf("RETRIEVAL_K must be positive")
	}
	if cfg.LLMMaxTokens <= 0 {
		return Config{}, fmt.Errorf("LLM_MAX_TOKENS must be positive")
	}
	if cfg.LLMTemperature < 0 || cfg.LLMTemperature > 2 {
		return Config{}, fmt.Errorf("LLM_TEMPERATURE must be in [0, 2]")
	}
	if len(cfg.BaseCurrency) != 3 {
		return Config{}, fmt.Errorf("BASE_CURRENCY must be a 3-letter code")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
