// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation queries
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonance_queries_total",
			Help: "Total number of recommendation queries",
		},
		[]string{"operation", "outcome"}, // by_id, random, search, batch / ok, not_found, invalid, error
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resonance_query_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"operation"},
	)

	CatalogTracks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resonance_catalog_tracks",
			Help: "Number of tracks in the loaded similarity engine",
		},
	)

	// Imports
	ImportedTracksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonance_imported_tracks_total",
			Help: "Total number of tracks saved to the catalog store",
		},
		[]string{"source"},
	)

	// Spotify
	SpotifyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonance_spotify_requests_total",
			Help: "Total number of Spotify Web API requests by status code",
		},
		[]string{"endpoint", "status"},
	)

	SpotifyRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resonance_spotify_retries_total",
			Help: "Total number of retried Spotify Web API requests",
		},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonance_api_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)
)

// RecordQuery records the outcome and latency of a recommendation query.
func RecordQuery(operation, outcome string, duration time.Duration) {
	QueriesTotal.WithLabelValues(operation, outcome).Inc()
	QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSpotifyRequest counts one Spotify response. status 0 means the
// request failed before a response arrived.
func RecordSpotifyRequest(endpoint string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	SpotifyRequestsTotal.WithLabelValues(endpoint, label).Inc()
}

func RecordAPIRequest(method, route string, status int) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
