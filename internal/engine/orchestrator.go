package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mlenarti/itinera/internal/assemble"
	"github.com/mlenarti/itinera/internal/convstore"
	"github.com/mlenarti/itinera/internal/format"
	"github.com/mlenarti/itinera/internal/intent"
	"github.com/mlenarti/itinera/internal/llm"
	"github.com/mlenarti/itinera/internal/observability"
	"github.com/mlenarti/itinera/internal/prompt"
	"github.com/mlenarti/itinera/internal/retrieval"
	"github.com/mlenarti/itinera/internal/session"
	"github.com/mlenarti/itinera/internal/travel"
)

const storeSaveTimeout = 2 * time.Second

// Config holds the orchestrator's externally supplied knobs.
type Config struct {
	ContextBudget int
	RetrievalK    int
}

// Orchestrator runs the per-turn pipeline and is the single writer of each
// session's history. Turns within one session are serialized; sessions are
// independent.
type Orchestrator struct {
	sessions  *session.Manager
	fetchers  []travel.Fetcher
	retriever retrieval.Retriever
	completer llm.Client
	builder   *prompt.Builder
	store     convstore.Store
	metrics   *observability.Metrics
	cfg       Config

	mu        sync.Mutex
	turnLocks map[string]*sync.Mutex
}

func New(
	sessions *session.Manager,
	fetchers []travel.Fetcher,
	retriever retrieval.Retriever,
	completer llm.Client,
	builder *prompt.Builder,
	store convstore.Store,
	metrics *observability.Metrics,
	cfg Config,
) *Orchestrator {
	if cfg.ContextBudget <= 0 {
		cfg.ContextBudget = 4096
	}
	if cfg.RetrievalK <= 0 {
		cfg.RetrievalK = 5
	}
	return &Orchestrator{
		sessions:  sessions,
		fetchers:  fetchers,
		retriever: retriever,
		completer: completer,
		builder:   builder,
		store:     store,
		metrics:   metrics,
		cfg:       cfg,
		turnLocks: make(map[string]*sync.Mutex),
	}
}

// HandleTurn advances one user utterance through the pipeline. Every stage
// before completion degrades on failure; only a completion failure is
// terminal for the turn, and even then the turn is delivered with the fixed
// fallback text and recorded in history.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, text string) (Reply, error) {
	lock := o.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := o.sessions.Get(sessionID); err != nil {
		return Reply{}, err
	}

	started := time.Now()
	reply := Reply{SessionID: sessionID, TurnID: uuid.NewString(), Stage: StageReceived}

	history, err := o.sessions.History(sessionID)
	if err != nil {
		return Reply{}, err
	}

	it := intent.Extract(text, history)
	reply.Stage = StageExtracted

	// Fetching and retrieval run as one concurrent join, so the machine
	// passes through data_gathered and retrieved together.
	results, passages := o.gather(ctx, it, text)
	reply.Stage = StageRetrieved
	reply.Sources = results
	reply.Passages = len(passages)

	if err := ctx.Err(); err != nil {
		return Reply{}, fmt.Errorf("turn cancelled: %w", err)
	}

	assembled := assemble.Assemble(it, results, passages, o.cfg.ContextBudget)
	reply.Stage = StageAssembled
	if o.metrics != nil {
		o.metrics.ContextBytes.Observe(float64(assembled.Size))
	}

	promptText := o.builder.Build(assembled, history, text)
	reply.Stage = StagePrompted

	// Cancellation is honored up to here. Once the completion call is
	// issued it runs to its own timeout; the model call is not torn down
	// mid-flight.
	if err := ctx.Err(); err != nil {
		return Reply{}, fmt.Errorf("turn cancelled: %w", err)
	}

	completeStart := time.Now()
	raw, err := o.completer.Complete(context.WithoutCancel(ctx), promptText)
	if o.metrics != nil {
		o.metrics.ObserveStage("complete", time.Since(completeStart))
	}

	var final string
	if err != nil {
		reply.Fallback = true
		final = FallbackMessage
	} else {
		reply.Stage = StageCompleted
		final = format.Apply(raw, results)
		reply.Stage = StageFormatted
	}

	turn := session.Turn{
		UserText:      text,
		AssistantText: final,
		TripType:      string(it.Type),
		At:            time.Now().UTC(),
	}
	ordinal, err := o.sessions.AppendTurn(sessionID, turn)
	if err != nil {
		return Reply{}, err
	}
	o.persistTurn(sessionID, text, final, string(it.Type))

	reply.Ordinal = ordinal
	reply.Text = final
	reply.Stage = StageDelivered

	if o.metrics != nil {
		outcome := "answered"
		if reply.Fallback {
			outcome = "fallback"
		}
		o.metrics.TurnsTotal.WithLabelValues(outcome).Inc()
		o.metrics.ObserveStage("turn_total", time.Since(started))
	}
	return reply, nil
}

// gather runs the data fetchers and the passage retrieval concurrently.
// Each source is bounded by its own timeout and none can fail the join:
// fetch failures arrive as unavailable results and retrieval failures as an
// empty passage list.
func (o *Orchestrator) gather(ctx context.Context, it intent.Intent, query string) ([]travel.FetchResult, []retrieval.Passage) {
	results := make([]travel.FetchResult, len(o.fetchers))
	var passages []retrieval.Passage

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range o.fetchers {
		g.Go(func() error {
			results[i] = f.Fetch(gctx, it)
			return nil
		})
	}
	g.Go(func() error {
		if o.retriever == nil {
			return nil
		}
		got, err := o.retriever.Retrieve(gctx, query, o.cfg.RetrievalK)
		if err != nil {
			if o.metrics != nil {
				o.metrics.FetchResults.WithLabelValues("passages", "unavailable").Inc()
			}
			return nil
		}
		passages = got
		return nil
	})
	_ = g.Wait()

	if o.metrics != nil {
		for _, r := range results {
			o.metrics.FetchResults.WithLabelValues(r.Source, string(r.Status)).Inc()
		}
	}
	return results, passages
}

// persistTurn hands the exchange to the conversation store, best effort and
// detached from the request context so a slow store cannot stall delivery.
func (o *Orchestrator) persistTurn(sessionID, userText, assistantText, tripType string) {
	if o.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeSaveTimeout)
	defer cancel()

	records := []convstore.TurnRecord{
		{SessionID: sessionID, Role: "user", Content: userText, TripType: tripType},
		{SessionID: sessionID, Role: "assistant", Content: assistantText, TripType: tripType},
	}
	for _, r := range records {
		if err := o.store.SaveTurn(ctx, r); err != nil {
			if o.metrics != nil {
				o.metrics.SessionEvents.WithLabelValues("persist_failed").Inc()
			}
			return
		}
	}
}

func (o *Orchestrator) lockFor(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.turnLocks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		o.turnLocks[sessionID] = l
	}
	return l
}
