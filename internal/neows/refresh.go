package neows

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/metrics"
)

// Refresher keeps the Store populated with the upcoming close-approach feed.
type Refresher struct {
	client *Client
	store  *Store
	cache  *Cache
	days   int
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex // serializes fetches
}

// NewRefresher creates a Refresher covering today plus the next days days.
// cache may be nil to disable on-disk persistence.
func NewRefresher(client *Client, store *Store, cache *Cache, days int, logger *slog.Logger) *Refresher {
	if days < 0 || days > MaxFeedDays {
		days = MaxFeedDays
	}
	return &Refresher{
		client: client,
		store:  store,
		cache:  cache,
		days:   days,
		logger: logger,
		now:    time.Now,
	}
}

// Refresh fetches the feed, persists it to the cache and swaps it into the
// store. Concurrent calls are serialized.
func (r *Refresher) Refresh(ctx context.Context) (*FeedDataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := truncateDay(r.now().UTC())
	end := start.AddDate(0, 0, r.days)

	data, err := r.client.Feed(ctx, start, end)
	if err != nil {
		return nil, err
	}
	fetchedAt := r.now()

	approaches, err := ParseFeed(bytes.NewReader(data), r.logger)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Write(data, fetchedAt); err != nil {
			r.logger.Warn("failed to write feed cache", "error", err)
		}
	}

	ds := &FeedDataset{
		Source:     "neows",
		FetchedAt:  fetchedAt,
		Window:     Window{Start: start, End: end},
		Approaches: approaches,
	}
	prev := r.store.Set(ds)
	metrics.SetFeedObjectCount(len(approaches))

	if prev != nil && len(prev.Approaches) != len(approaches) {
		r.logger.Debug("feed size changed", "previous", len(prev.Approaches), "current", len(approaches))
	}
	r.logger.Info("feed refreshed",
		"count", len(approaches),
		"start", start.Format(DateLayout),
		"end", end.Format(DateLayout),
	)
	return ds, nil
}

// LoadCached populates the store from the newest cached feed, if any.
func (r *Refresher) LoadCached() (*FeedDataset, error) {
	if r.cache == nil {
		return nil, fmt.Errorf("feed cache disabled")
	}

	data, ts, err := r.cache.LoadLatest()
	if err != nil {
		return nil, err
	}
	approaches, err := ParseFeed(bytes.NewReader(data), r.logger)
	if err != nil {
		return nil, fmt.Errorf("parsing cached feed: %w", err)
	}

	ds := &FeedDataset{
		Source:     "cache",
		FetchedAt:  ts,
		Window:     windowOf(approaches),
		Approaches: approaches,
	}
	r.store.Set(ds)
	metrics.SetFeedObjectCount(len(approaches))
	return ds, nil
}

// Run refreshes the feed every interval until ctx is cancelled. Failures are
// logged and retried on the next tick.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := r.Refresh(ctx); err != nil {
				r.logger.Warn("scheduled feed refresh failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func windowOf(approaches []Approach) Window {
	if len(approaches) == 0 {
		return Window{}
	}
	w := Window{
		Start: truncateDay(approaches[0].ApproachTime),
		End:   truncateDay(approaches[0].ApproachTime),
	}
	for _, a := range approaches[1:] {
		d := truncateDay(a.ApproachTime)
		if d.Before(w.Start) {
			w.Start = d
		}
		if d.After(w.End) {
			w.End = d
		}
	}
	return w
}
