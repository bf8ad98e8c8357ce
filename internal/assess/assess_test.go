package assess

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/deflection"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/neows"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// fakeLooker serves objects from a map and counts lookups.
type fakeLooker struct {
	mu      sync.Mutex
	objects map[string]*neows.Object
	calls   atomic.Int32
	delay   time.Duration
}

func (f *fakeLooker) Lookup(ctx context.Context, id string) (*neows.Object, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[id]
	if !ok {
		return nil, fmt.Errorf("lookup %s: %w", id, neows.ErrNotFound)
	}
	return obj, nil
}

func object(id, sma, ecc string) *neows.Object {
	return &neows.Object{
		ID:                     id,
		Name:                   "obj-" + id,
		IsPotentiallyHazardous: true,
		OrbitalData:            &neows.OrbitalData{SemiMajorAxis: sma, Eccentricity: ecc},
	}
}

func testCalc(t *testing.T) *deflection.Calculator {
	t.Helper()
	calc, err := deflection.NewCalculator(deflection.SI, deflection.DefaultPolicy)
	require.NoError(t, err)
	return calc
}

func TestWorkerPoolBatchOutcomes(t *testing.T) {
	looker := &fakeLooker{objects: map[string]*neows.Object{
		"1": object("1", "1.5", "0.3"),  // needs deflection
		"2": object("2", "2.0", "0.05"), // already safe
		"3": object("3", "0.7", "0.2"),  // whole orbit inside threshold
		"4": object("4", "", "0.2"),     // missing semi-major axis
	}}
	pool := NewWorkerPool(3, looker, testCalc(t), testLogger())

	approaches := []neows.Approach{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}}
	out, failed := pool.AssessBatch(context.Background(), approaches)
	require.Len(t, out, 5)
	assert.Equal(t, 3, failed)

	// Input order is preserved regardless of worker scheduling.
	for i, a := range out {
		assert.Equal(t, approaches[i].ID, a.ID)
	}

	require.NotNil(t, out[0].Deflection)
	assert.Equal(t, deflection.StatusRequired, out[0].Deflection.Status)
	require.NotNil(t, out[0].Deflection.RequiredDVMS)
	assert.Greater(t, *out[0].Deflection.RequiredDVMS, 0.0)

	require.NotNil(t, out[1].Deflection)
	assert.Equal(t, deflection.StatusNotRequired, out[1].Deflection.Status)

	assert.Nil(t, out[2].Deflection)
	assert.Equal(t, "degenerate_orbit", out[2].ErrorKind)
	assert.Equal(t, "invalid_input", out[3].ErrorKind)
	assert.Equal(t, KindLookupFailed, out[4].ErrorKind)
}

func TestWorkerPoolCancellation(t *testing.T) {
	looker := &fakeLooker{objects: map[string]*neows.Object{}, delay: 50 * time.Millisecond}
	pool := NewWorkerPool(2, looker, testCalc(t), testLogger())

	approaches := make([]neows.Approach, 100)
	for i := range approaches {
		approaches[i] = neows.Approach{ID: fmt.Sprint(i)}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, _ := pool.AssessBatch(ctx, approaches)
	assert.Less(t, len(out), len(approaches))
}

func TestAssessorCachesPerDataset(t *testing.T) {
	looker := &fakeLooker{objects: map[string]*neows.Object{
		"1": object("1", "1.5", "0.3"),
		"2": object("2", "1.2", "0.5"),
	}}
	store := neows.NewStore()
	fetched := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	store.Set(&neows.FeedDataset{
		FetchedAt: fetched,
		Approaches: []neows.Approach{
			{ID: "1", Hazardous: true},
			{ID: "9", Hazardous: false},
			{ID: "2", Hazardous: true},
		},
	})

	a := NewAssessor(store, looker, testCalc(t), Config{Workers: 2}, testLogger())

	b, err := a.Assess(context.Background())
	require.NoError(t, err)
	assert.Len(t, b.Assessments, 2, "only hazardous objects are assessed")
	assert.Zero(t, b.Failed)
	assert.True(t, b.DatasetFetchedAt.Equal(fetched))
	assert.Equal(t, int32(2), looker.calls.Load())

	again, err := a.Assess(context.Background())
	require.NoError(t, err)
	assert.Same(t, b, again)
	assert.Equal(t, int32(2), looker.calls.Load())

	// A new dataset invalidates the cached batch.
	store.Set(&neows.FeedDataset{
		FetchedAt:  fetched.Add(time.Hour),
		Approaches: []neows.Approach{{ID: "1", Hazardous: true}},
	})
	next, err := a.Assess(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, b, next)
	assert.Len(t, next.Assessments, 1)
	assert.Equal(t, int32(3), looker.calls.Load())
}

func TestAssessorDoesNotCacheLookupFailures(t *testing.T) {
	looker := &fakeLooker{objects: map[string]*neows.Object{}}
	store := neows.NewStore()
	store.Set(&neows.FeedDataset{
		FetchedAt:  time.Now(),
		Approaches: []neows.Approach{{ID: "404", Hazardous: true}},
	})
	a := NewAssessor(store, looker, testCalc(t), Config{Workers: 1}, testLogger())

	b, err := a.Assess(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, b.Failed)

	_, err = a.Assess(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), looker.calls.Load())
}

func TestAssessorNoDataset(t *testing.T) {
	a := NewAssessor(neows.NewStore(), &fakeLooker{}, testCalc(t), Config{}, testLogger())
	_, err := a.Assess(context.Background())
	require.ErrorIs(t, err, ErrNoDataset)
}

func TestEvaluateRaw(t *testing.T) {
	calc := testCalc(t)

	r, err := EvaluateRaw(calc, "1.5", "0.3")
	require.NoError(t, err)
	assert.Equal(t, deflection.StatusRequired, r.Status)

	_, err = EvaluateRaw(calc, "1.5", "")
	assert.ErrorIs(t, err, deflection.ErrInvalidInput)
}
