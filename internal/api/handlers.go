package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/assess"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/deflection"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/neows"
)

// deflectionError describes why no deflection report could be produced.
type deflectionError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type objectResponse struct {
	Asteroid        neows.Summary      `json:"asteroid"`
	Deflection      *deflection.Report `json:"deflection"`
	DeflectionError *deflectionError   `json:"deflection_error,omitempty"`
}

type feedResponse struct {
	Source     string           `json:"source"`
	FetchedAt  time.Time        `json:"fetched_at"`
	Window     neows.Window     `json:"window"`
	Count      int              `json:"count"`
	Approaches []neows.Approach `json:"approaches"`
}

type simElements struct {
	A     string `json:"a"`
	E     string `json:"e"`
	I     string `json:"i"`
	RAAN  string `json:"raan"`
	Omega string `json:"omega"`
	M     string `json:"M"`
}

type simAsteroid struct {
	Name      string      `json:"name"`
	Hazardous bool        `json:"hazardous"`
	Elements  simElements `json:"elements"`
}

type simResponse struct {
	Asteroid        simAsteroid        `json:"asteroid"`
	Deflection      *deflection.Report `json:"deflection"`
	DeflectionError *deflectionError   `json:"deflection_error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// describe converts a deflection outcome into the report/error pair used in
// object responses.
func describe(report deflection.Report, err error) (*deflection.Report, *deflectionError) {
	if err != nil {
		return nil, &deflectionError{Kind: deflection.ErrorKind(err), Message: err.Error()}
	}
	return &report, nil
}

func lookupHandler(logger *slog.Logger, looker assess.Looker, calc *deflection.Calculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.PathValue("id"))
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing asteroid id")
			return
		}

		obj, err := looker.Lookup(r.Context(), id)
		if err != nil {
			if errors.Is(err, neows.ErrNotFound) {
				writeError(w, http.StatusNotFound, "asteroid id not found")
				return
			}
			logger.Warn("asteroid lookup failed", "component", "api", "id", id, "error", err)
			writeError(w, http.StatusBadGateway, "NeoWs request failed")
			return
		}

		resp := objectResponse{Asteroid: neows.Summarize(obj)}
		if obj.IsPotentiallyHazardous {
			resp.Deflection, resp.DeflectionError = describe(assess.EvaluateObject(calc, obj))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func feedHandler(store *neows.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds := store.Get()
		if ds == nil {
			writeError(w, http.StatusServiceUnavailable, "no feed data loaded")
			return
		}
		approaches := ds.Approaches
		if approaches == nil {
			approaches = []neows.Approach{}
		}
		writeJSON(w, http.StatusOK, feedResponse{
			Source:     ds.Source,
			FetchedAt:  ds.FetchedAt,
			Window:     ds.Window,
			Count:      len(approaches),
			Approaches: approaches,
		})
	}
}

func refreshHandler(logger *slog.Logger, refresher Refresher, enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !enabled || refresher == nil {
			writeError(w, http.StatusConflict, "feed fetching is disabled")
			return
		}

		ds, err := refresher.Refresh(r.Context())
		if err != nil {
			logger.Warn("manual feed refresh failed", "component", "api", "error", err)
			writeError(w, http.StatusBadGateway, "feed refresh failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"fetched_at": ds.FetchedAt,
			"count":      len(ds.Approaches),
		})
	}
}

func assessmentsHandler(logger *slog.Logger, assessor BatchAssessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, err := assessor.Assess(r.Context())
		if err != nil {
			if errors.Is(err, assess.ErrNoDataset) {
				writeError(w, http.StatusServiceUnavailable, "no feed data loaded")
				return
			}
			logger.Warn("feed assessment failed", "component", "api", "error", err)
			writeError(w, http.StatusInternalServerError, "assessment failed")
			return
		}
		writeJSON(w, http.StatusOK, batch)
	}
}

// simHandler echoes a hand-entered orbit and evaluates it when flagged hazardous.
func simHandler(calc *deflection.Calculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		resp := simResponse{
			Asteroid: simAsteroid{
				Name:      queryOr(q.Get("name"), "Unknown Asteroid"),
				Hazardous: strings.EqualFold(q.Get("hazardous"), "true"),
				Elements: simElements{
					A:     queryOr(q.Get("sma"), "0"),
					E:     queryOr(q.Get("ecc"), "0"),
					I:     queryOr(q.Get("inc"), "0"),
					RAAN:  queryOr(q.Get("raan"), "0"),
					Omega: queryOr(q.Get("omega"), "0"),
					M:     queryOr(q.Get("m"), "0"),
				},
			},
		}

		if resp.Asteroid.Hazardous {
			el := resp.Asteroid.Elements
			resp.Deflection, resp.DeflectionError = describe(assess.EvaluateRaw(calc, el.A, el.E))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// deflectionHandler runs the deflection model on sma/ecc regardless of any
// hazard flag.
func deflectionHandler(calc *deflection.Calculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		report, err := assess.EvaluateRaw(calc, q.Get("sma"), q.Get("ecc"))
		switch {
		case errors.Is(err, deflection.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, deflection.ErrDegenerateOrbit):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case err != nil:
			writeError(w, http.StatusInternalServerError, "deflection calculation failed")
		default:
			writeJSON(w, http.StatusOK, report)
		}
	}
}

func queryOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
