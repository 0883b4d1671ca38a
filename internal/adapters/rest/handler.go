package rest

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ewilliams-labs/resonance/internal/core/services"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc         *services.Recommendations // Dependency on the Core Service
	router      *http.ServeMux            // Standard library router
	defaultTopK int
	handler     http.Handler
}

// NewHandler initializes the HTTP adapter and sets up routes. defaultTopK is
// used when a request omits top_k; a negative value falls back to 5.
func NewHandler(svc *services.Recommendations, defaultTopK int) *Handler {
	if defaultTopK < 0 {
		defaultTopK = 5
	}
	h := &Handler{
		svc:         svc,
		router:      http.NewServeMux(),
		defaultTopK: defaultTopK,
	}

	// Register Routes
	h.routes()
	h.handler = requestID(observe(h.router))

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	// Health Check
	h.router.HandleFunc("GET /{$}", h.ServiceInfo)
	h.router.HandleFunc("GET /health", h.HealthCheck)
	h.router.HandleFunc("GET /ready", h.ReadyCheck)
	// Recommendations
	h.router.HandleFunc("GET /tracks/{id}/recommendations", h.RecommendByID)
	h.router.HandleFunc("GET /recommendations/random", h.RecommendRandom)
	h.router.HandleFunc("GET /recommendations/search", h.RecommendSearch)
	h.router.HandleFunc("POST /recommendations/batch", h.RecommendBatch)
	// Observability
	h.router.Handle("GET /metrics", promhttp.Handler())
}

type healthResponse struct {
	Status string `json:"status"`
	Tracks int    `json:"tracks"`
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Tracks: h.svc.CatalogSize()})
}

// ReadyCheck reports that the catalog is loaded. The server only starts
// once the catalog holds at least one track.
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ready", Tracks: h.svc.CatalogSize()})
}

type serviceInfo struct {
	Service     string `json:"service"`
	Description string `json:"description"`
}

// ServiceInfo provides basic service info.
func (h *Handler) ServiceInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, serviceInfo{
		Service:     "resonance-api",
		Description: "Content-based track recommendations",
	})
}
