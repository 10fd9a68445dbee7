package chartdata_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"songscout/internal/config"
	"songscout/internal/logging"
	"songscout/internal/services"
	"songscout/internal/services/chartdata"
)

func newClient(t *testing.T, handler http.HandlerFunc) *chartdata.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return chartdata.New(config.Chart{
		APIKey:         "test-key",
		BaseURL:        server.URL,
		TimeoutSeconds: 5,
	}, logging.NewNop())
}

func TestGetTrackStats(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if r.URL.Path != "/track/isrc/USABC2600001/stats" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"obj":{"id":12345,"streams":{"total":150000,"previous":100000},"followers":900}}`))
	})

	stats, err := client.GetTrackStats(context.Background(), "USABC2600001")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.ChartID != "12345" || stats.StreamsTotal != 150000 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	// Growth is derived when the API omits it.
	if stats.WowGrowthPct != 50 {
		t.Fatalf("expected derived 50%% growth, got %v", stats.WowGrowthPct)
	}
}

func TestUnknownISRCIsNoData(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	if _, err := client.GetTrackStats(context.Background(), "USABC2600002"); !errors.Is(err, services.ErrNoData) {
		t.Fatalf("expected no-data, got %v", err)
	}
}

func TestRejectedKeyIsAuthExpired(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	if _, err := client.GetTrackStats(context.Background(), "USABC2600003"); !errors.Is(err, services.ErrAuthExpired) {
		t.Fatalf("expected auth-expired, got %v", err)
	}
}

func TestMissingKeyShortCircuits(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(server.Close)

	client := chartdata.New(config.Chart{BaseURL: server.URL, TimeoutSeconds: 5}, logging.NewNop())
	if _, err := client.GetTrackStats(context.Background(), "USABC2600004"); !errors.Is(err, services.ErrConfigurationMissing) {
		t.Fatalf("expected configuration-missing, got %v", err)
	}
	if called {
		t.Fatal("expected no request without an api key")
	}
}

func TestGrowthPct(t *testing.T) {
	if got := chartdata.GrowthPct(120, 100); got != 20 {
		t.Fatalf("expected 20, got %v", got)
	}
	if got := chartdata.GrowthPct(100, 0); got != 0 {
		t.Fatalf("expected 0 for no prior streams, got %v", got)
	}
}
