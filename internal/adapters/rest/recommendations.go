package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
	"github.com/ewilliams-labs/resonance/internal/core/ports"
)

const (
	errCodeTrackNotFound    = "TRACK_NOT_FOUND"
	errCodeNoConfidentMatch = "NO_CONFIDENT_MATCH"
	errCodeInvalidArgument  = "INVALID_ARGUMENT"

	maxBatchIDs = 500
)

type batchRequest struct {
	IDs  []string `json:"ids"`
	TopK *int     `json:"top_k"`
}

type batchItemResponse struct {
	ID              string                  `json:"id"`
	Seed            *domain.TrackRef        `json:"seed,omitempty"`
	Recommendations []domain.Recommendation `json:"recommendations,omitempty"`
	Error           string                  `json:"error,omitempty"`
}

// RecommendByID handles GET /tracks/{id}/recommendations
func (h *Handler) RecommendByID(w http.ResponseWriter, r *http.Request) {
	trackID := r.PathValue("id")
	if trackID == "" {
		writeError(w, http.StatusBadRequest, "track id is required")
		return
	}
	topK, ok := h.intParam(w, r, "top_k", h.defaultTopK)
	if !ok {
		return
	}

	result, err := h.svc.ByID(r.Context(), trackID, topK)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RecommendRandom handles GET /recommendations/random
func (h *Handler) RecommendRandom(w http.ResponseWriter, r *http.Request) {
	n, ok := h.intParam(w, r, "n", 3)
	if !ok {
		return
	}
	topK, ok := h.intParam(w, r, "top_k", h.defaultTopK)
	if !ok {
		return
	}

	results, err := h.svc.Random(r.Context(), n, topK)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// RecommendSearch handles GET /recommendations/search
func (h *Handler) RecommendSearch(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	artist := strings.TrimSpace(r.URL.Query().Get("artist"))
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	topK, ok := h.intParam(w, r, "top_k", h.defaultTopK)
	if !ok {
		return
	}

	result, err := h.svc.Search(r.Context(), title, artist, topK)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RecommendBatch handles POST /recommendations/batch
func (h *Handler) RecommendBatch(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	// 1. Decode the Request Body
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// 2. Validate Input
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}
	if len(req.IDs) > maxBatchIDs {
		writeError(w, http.StatusBadRequest, "too many ids, max "+strconv.Itoa(maxBatchIDs))
		return
	}
	topK := h.defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if topK < 0 {
		writeErrorWithCode(w, http.StatusBadRequest, "top_k must be a non-negative integer", errCodeInvalidArgument)
		return
	}

	// 3. Call the Service
	items, err := h.svc.Batch(r.Context(), req.IDs, topK)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	// 4. Return the Response
	out := make([]batchItemResponse, len(items))
	for i, item := range items {
		out[i] = batchItemResponse{ID: item.ID}
		if item.Err != nil {
			out[i].Error = item.Err.Error()
			continue
		}
		seed := item.Result.Seed
		out[i].Seed = &seed
		out[i].Recommendations = item.Result.Recommendations
	}
	writeJSON(w, http.StatusOK, out)
}

// intParam reads a non-negative integer query parameter, writing a 400 and
// reporting false when it is malformed.
func (h *Handler) intParam(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeErrorWithCode(w, http.StatusBadRequest, name+" must be a non-negative integer", errCodeInvalidArgument)
		return 0, false
	}
	return v, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var matchErr *ports.NoConfidentMatchError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorWithCode(w, http.StatusNotFound, err.Error(), errCodeTrackNotFound)
	case errors.As(err, &matchErr), errors.Is(err, ports.ErrNoConfidentMatch):
		writeErrorWithCode(w, http.StatusNotFound, err.Error(), errCodeNoConfidentMatch)
	case errors.Is(err, domain.ErrInvalidArgument):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalidArgument)
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
