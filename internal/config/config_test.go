package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":9090")
	}
	if cfg.LLMProvider != "auto" {
		t.Fatalf("LLMProvider = %q, want %q", cfg.LLMProvider, "auto")
	}
	if cfg.ContextBudgetBytes != 4096 {
		t.Fatalf("ContextBudgetBytes = %d, want 4096", cfg.ContextBudgetBytes)
	}
	if cfg.RetrieverURL != "" {
		t.Fatalf("RetrieverURL = %q, want empty default", cfg.RetrieverURL)
	}
	if cfg.BaseCurrency != "USD" {
		t.Fatalf("BaseCurrency = %q, want %q", cfg.BaseCurrency, "USD")
	}
}

func TestLoadUsesExplicitRetrieverURL(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("RETRIEVER_URL", "http://localhost:8000")
	t.Setenv("RETRIEVER_COLLECTION", "city_guides")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RetrieverURL != "http://localhost:8000" {
		t.Fatalf("RetrieverURL = %q, want explicit value", cfg.RetrieverURL)
	}
	if cfg.RetrieverCollection != "city_guides" {
		t.Fatalf("RetrieverCollection = %q, want %q", cfg.RetrieverCollection, "city_guides")
	}
}

func TestLoadRejectsCeilingBelowBudget(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("CONTEXT_BUDGET_BYTES", "8192")
	t.Setenv("PROMPT_CEILING_BYTES", "1024")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want ceiling validation failure")
	}
}

func TestLoadRejectsBadTemperature(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("LLM_TEMPERATURE", "3.5")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want temperature validation failure")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_SESSION_INACTIVITY_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"HISTORY_WINDOW",
		"CONTEXT_BUDGET_BYTES",
		"PROMPT_CEILING_BYTES",
		"RETRIEVAL_K",
		"FETCH_TIMEOUT",
		"LLM_PROVIDER",
		"LLM_MODEL",
		"LLM_TIMEOUT",
		"LLM_MAX_TOKENS",
		"LLM_TEMPERATURE",
		"HF_API_KEY",
		"HF_BASE_URL",
		"OLLAMA_HOST",
		"RETRIEVER_URL",
		"RETRIEVER_COLLECTION",
		"FLIGHTS_API_URL",
		"FLIGHTS_API_KEY",
		"WEATHER_GEOCODE_URL",
		"WEATHER_FORECAST_URL",
		"CURRENCY_API_URL",
		"BASE_CURRENCY",
		"DATABASE_URL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
