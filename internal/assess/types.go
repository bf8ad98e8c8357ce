package assess

import (
	"time"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/deflection"
)

// Error kinds reported on an Assessment.
const (
	KindLookupFailed = "lookup_failed"
)

// Assessment is the deflection outcome for one hazardous feed object.
// Exactly one of Deflection and ErrorKind is set.
type Assessment struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Deflection *deflection.Report `json:"deflection,omitempty"`
	ErrorKind  string             `json:"error_kind,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// Batch is the set of assessments computed for one feed dataset.
type Batch struct {
	DatasetFetchedAt time.Time    `json:"dataset_fetched_at"`
	ComputedAt       time.Time    `json:"computed_at"`
	Assessments      []Assessment `json:"assessments"`
	Failed           int          `json:"failed"`
}

// Config holds assessment configuration loaded from environment variables.
type Config struct {
	Workers int // concurrent NeoWs lookups (default: 4)
}
