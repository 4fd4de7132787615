package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

// MaxBodyBytes caps the size of request bodies.
const MaxBodyBytes = 1 << 20

type RestHandler struct {
	serviceName string
}

func NewRestHandler(serviceName string) *RestHandler {
	return &RestHandler{serviceName: serviceName}
}

// NewRouter wires the REST routes, /metrics and middleware. An empty
// authToken disables authentication.
func NewRouter(h *RestHandler, authToken string) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/v1/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/attributes", h.Attributes).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/score", h.Score).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/score/defaults", h.ScoreDefaults).Methods(http.MethodGet)

	// Metrics endpoint (requires authentication)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware)
	router.Use(authMiddleware(authToken))
	router.Use(bodyLimitMiddleware(MaxBodyBytes))

	return router
}

// Health check endpoint
func (h *RestHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   h.serviceName,
	}
	writeJSON(w, http.StatusOK, response)
}

// Attributes returns the input schema in form order.
func (h *RestHandler) Attributes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSchemaResponse())
}

// Score evaluates the attributes in the request body. Omitted attributes take
// their default and out-of-range values are clamped; unknown attribute names
// are rejected.
func (h *RestHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	explain := req.Explain || queryBool(r, "explain")

	ev, err := evaluate("rest", req.Attributes)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownField) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("❌ scoring failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, newScoreResponse(RequestIDFromContext(r.Context()), ev, explain))
}

// ScoreDefaults evaluates the record every field starts from.
func (h *RestHandler) ScoreDefaults(w http.ResponseWriter, r *http.Request) {
	ev, err := evaluate("rest", nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, newScoreResponse(RequestIDFromContext(r.Context()), ev, queryBool(r, "explain")))
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Error encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
