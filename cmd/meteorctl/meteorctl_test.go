package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/metrics"
)

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	lookup, err := os.ReadFile("../../internal/neows/testdata/lookup.json")
	require.NoError(t, err)
	feed, err := os.ReadFile("../../internal/neows/testdata/feed.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed":
			w.Write(feed)
		case "/neo/2465633":
			w.Write(lookup)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDeflectRequired(t *testing.T) {
	out, err := run(t, "deflect", "--sma", "1.5", "--ecc", "0.3")
	require.NoError(t, err)
	assert.Contains(t, out, "Deflection required")
	assert.Contains(t, out, "93.14")
	assert.Contains(t, out, "a=1.508500 AU")
}

func TestDeflectNotRequired(t *testing.T) {
	out, err := run(t, "deflect", "--sma", "2.0", "--ecc", "0.05")
	require.NoError(t, err)
	assert.Contains(t, out, "Deflection not required")
	assert.NotContains(t, out, "Delta-v")
}

func TestDeflectJSON(t *testing.T) {
	out, err := run(t, "deflect", "--sma", "1.5", "--ecc", "0.3", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "required"`)
	assert.Contains(t, out, `"new_orbit_params"`)
}

func TestDeflectErrors(t *testing.T) {
	_, err := run(t, "deflect", "--sma", "abc", "--ecc", "0.3")
	assert.ErrorContains(t, err, "invalid orbital elements")

	_, err = run(t, "deflect", "--sma", "0.7", "--ecc", "0.2")
	assert.ErrorContains(t, err, "degenerate")

	_, err = run(t, "deflect", "--sma", "1.5")
	assert.Error(t, err)
}

func TestDeflectPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.toml")
	require.NoError(t, os.WriteFile(path, []byte("[safety]\nmargin_au = 0.5\n"), 0o644))

	// q = 1.4 AU clears the default threshold but not 1.517 AU.
	out, err := run(t, "deflect", "--sma", "2.0", "--ecc", "0.3", "--policy", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Deflection required")
	assert.Contains(t, out, "1.517000 AU")

	out, err = run(t, "deflect", "--sma", "2.0", "--ecc", "0.3")
	require.NoError(t, err)
	assert.Contains(t, out, "Deflection not required")
}

func TestList(t *testing.T) {
	srv := fixtureServer(t)
	out, err := run(t, "list", "--base-url", srv.URL, "--api-key", "test")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Estimated Diameter (m)")
	assert.True(t, strings.HasPrefix(lines[1], "3713989"), lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "2465633"), lines[3])
	assert.Contains(t, lines[3], "Yes")
}

func TestListRejectsWideWindow(t *testing.T) {
	_, err := run(t, "list", "--days", "8")
	assert.ErrorContains(t, err, "--days")
}

func TestLookup(t *testing.T) {
	srv := fixtureServer(t)

	out, err := run(t, "lookup", "2465633", "--base-url", srv.URL, "--api-key", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "465633 (2009 JR5)")
	assert.Contains(t, out, "Orbital period (days)")
	assert.Contains(t, out, "Deflection required")

	_, err = run(t, "lookup", "42", "--base-url", srv.URL, "--api-key", "test")
	assert.ErrorContains(t, err, "not found")
}

func TestDeflectRecordsMetrics(t *testing.T) {
	_, err := run(t, "deflect", "--sma", "0.7", "--ecc", "0.2")
	require.Error(t, err)

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, w.Body.String(), `meteors_deflection_calculations_total{outcome="degenerate_orbit"}`)
}
