package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/brclabs/cditrend/pkg/series"
)

func testMux(t *testing.T, samples []series.Sample) *http.ServeMux {
	t.Helper()

	store, err := series.NewCSVStore(filepath.Join(t.TempDir(), "taxa-cdi.csv"))
	if err != nil {
		t.Fatalf("NewCSVStore() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for _, s := range samples {
		if err := store.Append(ctx, s); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return SetupRoutes(store, logger)
}

func TestHealthEndpoint(t *testing.T) {
	mux := testMux(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusOK)
	}
	if body := w.Body.String(); body != "OK" {
		t.Errorf("body = %q, want %q", body, "OK")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mux := testMux(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestLatestSample_Empty(t *testing.T) {
	mux := testMux(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/series/latest", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestLatestSample_ReturnsLastAppended(t *testing.T) {
	mux := testMux(t, []series.Sample{
		{Date: "2026/08/24", Time: "08:00:00", Rate: 10.0},
		{Date: "2026/08/24", Time: "08:00:01", Rate: 10.2},
	})

	req := httptest.NewRequest(http.MethodGet, "/series/latest", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", w.Code, http.StatusOK)
	}

	var got series.Sample
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := series.Sample{Date: "2026/08/24", Time: "08:00:01", Rate: 10.2}
	if got != want {
		t.Errorf("latest sample = %+v, want %+v", got, want)
	}
}

func TestLatestSample_MethodNotAllowed(t *testing.T) {
	mux := testMux(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/series/latest", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
