package neows

import (
	"sync/atomic"
	"time"
)

// Store holds the current feed dataset. Readers never block; writers replace
// the whole dataset.
type Store struct {
	dataset atomic.Pointer[FeedDataset]
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the current dataset, or nil if none has been loaded.
func (s *Store) Get() *FeedDataset {
	return s.dataset.Load()
}

// Set replaces the current dataset and returns the one it replaced.
func (s *Store) Set(ds *FeedDataset) *FeedDataset {
	return s.dataset.Swap(ds)
}

// Hazardous returns the current dataset together with its potentially
// hazardous approaches, in feed order. Both are nil if no feed is loaded.
func (s *Store) Hazardous() (*FeedDataset, []Approach) {
	ds := s.dataset.Load()
	if ds == nil {
		return nil, nil
	}
	var out []Approach
	for _, a := range ds.Approaches {
		if a.Hazardous {
			out = append(out, a)
		}
	}
	return ds, out
}

// AgeSeconds returns the age of the current dataset in seconds, or -1 if
// none is loaded.
func (s *Store) AgeSeconds() float64 {
	ds := s.dataset.Load()
	if ds == nil {
		return -1
	}
	return time.Since(ds.FetchedAt).Seconds()
}
