package app

import (
	"context"
	"fmt"

	"github.com/mlenarti/itinera/internal/config"
	"github.com/mlenarti/itinera/internal/convstore"
	"github.com/mlenarti/itinera/internal/engine"
	"github.com/mlenarti/itinera/internal/httpapi"
	"github.com/mlenarti/itinera/internal/llm"
	"github.com/mlenarti/itinera/internal/observability"
	"github.com/mlenarti/itinera/internal/prompt"
	"github.com/mlenarti/itinera/internal/retrieval"
	"github.com/mlenarti/itinera/internal/session"
	"github.com/mlenarti/itinera/internal/travel"
)

type BuildResult struct {
	Config       config.Config
	API          *httpapi.Server
	Sessions     *session.Manager
	Orchestrator *engine.Orchestrator
	Metrics      *observability.Metrics

	// Cleanup should be called on shutdown to release external resources.
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	store, err := convstore.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("conversation store init failed: %w", err)
	}

	completer, err := llm.NewClient(llm.Config{
		Mode:        cfg.LLMProvider,
		Model:       cfg.LLMModel,
		HFBaseURL:   cfg.HFBaseURL,
		HFAPIKey:    cfg.HFAPIKey,
		OllamaHost:  cfg.OllamaHost,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("llm client init failed: %w", err)
	}

	// Weather and currency have public defaults and are always registered.
	// Flights needs an API key, so it joins only when configured.
	fetchers := []travel.Fetcher{
		travel.NewWeatherClient(cfg.WeatherGeocodeURL, cfg.WeatherForecastURL, cfg.FetchTimeout),
		travel.NewCurrencyClient(cfg.CurrencyAPIURL, cfg.BaseCurrency, cfg.FetchTimeout),
	}
	if cfg.FlightsAPIURL != "" {
		fetchers = append(fetchers, travel.NewFlightsClient(cfg.FlightsAPIURL, cfg.FlightsAPIKey, cfg.FetchTimeout))
	}

	var retriever retrieval.Retriever
	if cfg.RetrieverURL != "" {
		retriever = retrieval.NewIndexClient(cfg.RetrieverURL, cfg.RetrieverCollection, cfg.FetchTimeout)
	} else {
		retriever = &retrieval.Static{}
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout, cfg.HistoryWindow)
	sessions.SetExpireHook(func(_ *session.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	builder := prompt.NewBuilder(prompt.DefaultSystemInstructions, cfg.PromptCeilingBytes)

	orchestrator := engine.New(sessions, fetchers, retriever, completer, builder, store, metrics, engine.Config{
		ContextBudget: cfg.ContextBudgetBytes,
		RetrievalK:    cfg.RetrievalK,
	})

	api := httpapi.New(httpapi.Config{
		AllowAnyOrigin:  cfg.AllowAnyOrigin,
		InactivityTTLMS: cfg.SessionInactivityTimeout.Milliseconds(),
	}, sessions, orchestrator, metrics, func(ctx context.Context) error {
		return llm.SelfTest(ctx, completer)
	})

	return &BuildResult{
		Config:       cfg,
		API:          api,
		Sessions:     sessions,
		Orchestrator: orchestrator,
		Metrics:      metrics,
		Cleanup:      store.Close,
	}, nil
}
