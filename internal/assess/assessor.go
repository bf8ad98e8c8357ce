// Package assess evaluates the deflection model for every potentially
// hazardous object in the current close-approach feed.
//
// The feed endpoint does not carry orbital elements, so each hazardous object
// is looked up individually through a bounded worker pool. Results are cached
// per feed dataset.
package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/deflection"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/metrics"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/neows"
)

var tracer = otel.Tracer("github.com/Ronin-2099/Chance-of-Meteors/internal/assess")

// ErrNoDataset is returned when no feed has been loaded yet.
var ErrNoDataset = errors.New("no feed dataset loaded")

// Assessor orchestrates batch assessments for the store's current feed.
type Assessor struct {
	store  *neows.Store
	pool   *WorkerPool
	logger *slog.Logger
	batch  atomic.Pointer[Batch]
	mu     sync.Mutex // serializes rebuilds
	now    func() time.Time
}

// NewAssessor creates a new assessment orchestrator.
func NewAssessor(store *neows.Store, looker Looker, calc *deflection.Calculator, cfg Config, logger *slog.Logger) *Assessor {
	return &Assessor{
		store:  store,
		pool:   NewWorkerPool(cfg.Workers, looker, calc, logger),
		logger: logger,
		now:    time.Now,
	}
}

// Assess returns the assessments for the current feed, computing them if the
// feed changed since the last call (double-checked locking). Batches with
// failed lookups are returned but not cached, so the next call retries them.
func (a *Assessor) Assess(ctx context.Context) (*Batch, error) {
	ds, hazardous := a.store.Hazardous()
	if ds == nil {
		return nil, ErrNoDataset
	}
	if b := a.batch.Load(); b != nil && b.DatasetFetchedAt.Equal(ds.FetchedAt) {
		return b, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if b := a.batch.Load(); b != nil && b.DatasetFetchedAt.Equal(ds.FetchedAt) {
		return b, nil
	}

	ctx, span := tracer.Start(ctx, "assess.batch")
	defer span.End()
	span.SetAttributes(attribute.Int("assess.hazardous", len(hazardous)))

	start := time.Now()
	assessments, failed := a.pool.AssessBatch(ctx, hazardous)
	duration := time.Since(start)
	metrics.RecordAssessment(duration)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assessment interrupted after %d of %d objects: %w", len(assessments), len(hazardous), err)
	}

	if assessments == nil {
		assessments = []Assessment{}
	}
	b := &Batch{
		DatasetFetchedAt: ds.FetchedAt,
		ComputedAt:       a.now(),
		Assessments:      assessments,
		Failed:           failed,
	}

	lookupFailures := 0
	for _, as := range assessments {
		if as.ErrorKind == KindLookupFailed {
			lookupFailures++
		}
	}
	if lookupFailures == 0 {
		a.batch.Store(b)
	}

	a.logger.Info("feed assessed",
		"hazardous", len(hazardous),
		"failed", failed,
		"lookup_failures", lookupFailures,
		"duration_ms", duration.Milliseconds(),
		"dataset_fetched_at", ds.FetchedAt.UTC().Format(time.RFC3339),
	)
	return b, nil
}
