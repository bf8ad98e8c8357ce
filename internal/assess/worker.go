package assess

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/deflection"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/metrics"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/neows"
)

// Looker fetches a single object with its orbital data.
type Looker interface {
	Lookup(ctx context.Context, id string) (*neows.Object, error)
}

type assessJob struct {
	index    int
	approach neows.Approach
}

type assessResult struct {
	index      int
	assessment Assessment
}

// WorkerPool runs lookups and deflection calculations on a fixed number of goroutines.
type WorkerPool struct {
	workers int
	looker  Looker
	calc    *deflection.Calculator
	logger  *slog.Logger
}

// NewWorkerPool creates a worker pool with the given number of workers.
func NewWorkerPool(workers int, looker Looker, calc *deflection.Calculator, logger *slog.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		looker:  looker,
		calc:    calc,
		logger:  logger,
	}
}

// AssessBatch assesses every approach, preserving input order. Approaches not
// reached before ctx is cancelled are omitted. Returns the assessments and the
// number that failed.
func (wp *WorkerPool) AssessBatch(ctx context.Context, approaches []neows.Approach) ([]Assessment, int) {
	if len(approaches) == 0 {
		return nil, 0
	}

	jobs := make(chan assessJob, wp.workers*2)
	results := make(chan assessResult, wp.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < wp.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				result := assessResult{index: job.index, assessment: wp.assessSingle(ctx, job.approach)}
				select {
				case results <- result:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, a := range approaches {
			select {
			case jobs <- assessJob{index: i, approach: a}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	slots := make([]*Assessment, len(approaches))
	var failed int
	for result := range results {
		a := result.assessment
		if a.ErrorKind != "" {
			failed++
			wp.logger.Warn("assessment failed", "id", a.ID, "kind", a.ErrorKind, "error", a.Error)
		}
		slots[result.index] = &a
	}

	out := make([]Assessment, 0, len(approaches))
	for _, a := range slots {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out, failed
}

// assessSingle looks up one object and computes its deflection.
func (wp *WorkerPool) assessSingle(ctx context.Context, approach neows.Approach) Assessment {
	a := Assessment{ID: approach.ID, Name: approach.Name}

	obj, err := wp.looker.Lookup(ctx, approach.ID)
	if err != nil {
		a.ErrorKind = KindLookupFailed
		a.Error = err.Error()
		return a
	}

	report, err := EvaluateObject(wp.calc, obj)
	if err != nil {
		a.ErrorKind = deflection.ErrorKind(err)
		a.Error = err.Error()
		return a
	}
	a.Deflection = &report
	return a
}

// EvaluateObject runs the deflection model on an object's orbital elements
// and records the outcome. It does not consult the hazard flag.
func EvaluateObject(calc *deflection.Calculator, obj *neows.Object) (deflection.Report, error) {
	el, err := obj.Elements()
	return evaluate(calc, el, err)
}

// EvaluateRaw parses text elements, runs the deflection model and records the outcome.
func EvaluateRaw(calc *deflection.Calculator, semiMajorAxisAU, eccentricity string) (deflection.Report, error) {
	el, err := deflection.ParseElements(semiMajorAxisAU, eccentricity)
	return evaluate(calc, el, err)
}

func evaluate(calc *deflection.Calculator, el deflection.Elements, intakeErr error) (deflection.Report, error) {
	if intakeErr != nil {
		metrics.RecordDeflection(deflection.ErrorKind(intakeErr), 0)
		return deflection.Report{}, intakeErr
	}
	res, err := calc.Compute(el)
	if err != nil {
		metrics.RecordDeflection(deflection.ErrorKind(err), 0)
		return deflection.Report{}, err
	}
	report := deflection.Assemble(res)
	metrics.RecordDeflection(report.Status, res.DeltaV)
	return report, nil
}
