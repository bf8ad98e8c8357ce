package health

import (
	"net/http"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/neows"
)

// Healthz returns 200 "ok\n" unconditionally.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Readyz returns 200 once configuration is valid. Lookups and deflection
// calculations do not depend on the feed, so a missing feed is reported in
// the body without failing the probe.
func Readyz(store *neows.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if store.Get() == nil {
			w.Write([]byte("ready (no feed)\n"))
			return
		}
		w.Write([]byte("ready\n"))
	}
}
