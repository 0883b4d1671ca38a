package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		outcome   string
	}{
		{name: "by id ok", operation: "by_id", outcome: "ok"},
		{name: "by id not found", operation: "by_id", outcome: "not_found"},
		{name: "random invalid", operation: "random", outcome: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(QueriesTotal.WithLabelValues(tt.operation, tt.outcome))
			RecordQuery(tt.operation, tt.outcome, 2*time.Millisecond)
			after := testutil.ToFloat64(QueriesTotal.WithLabelValues(tt.operation, tt.outcome))
			if after != before+1 {
				t.Errorf("expected counter to increase by 1, got %v -> %v", before, after)
			}
		})
	}
}

func TestRecordSpotifyRequest(t *testing.T) {
	tests := []struct {
		name   string
		status int
		label  string
	}{
		{name: "ok", status: 200, label: "200"},
		{name: "rate limited", status: 429, label: "429"},
		{name: "transport error", status: 0, label: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(SpotifyRequestsTotal.WithLabelValues("playlist_tracks", tt.label))
			RecordSpotifyRequest("playlist_tracks", tt.status)
			after := testutil.ToFloat64(SpotifyRequestsTotal.WithLabelValues("playlist_tracks", tt.label))
			if after != before+1 {
				t.Errorf("expected counter to increase by 1, got %v -> %v", before, after)
			}
		})
	}
}

func TestCatalogTracksGauge(t *testing.T) {
	CatalogTracks.Set(42)
	if got := testutil.ToFloat64(CatalogTracks); got != 42 {
		t.Fatalf("gauge: got %v, want 42", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200"))
	RecordAPIRequest("GET", "/health", 200)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200"))
	if after != before+1 {
		t.Errorf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}
