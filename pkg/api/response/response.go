// Package response holds the JSON, CORS and error helpers shared by the API
// handlers.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"filing_analyzer/pkg/core/edgar"
	"filing_analyzer/pkg/core/logger"
	"filing_analyzer/pkg/core/metrics"
)

// Cache-Control values for SEC backed responses.
const (
	CacheStock  = "public, s-maxage=86400, stale-while-revalidate=172800"
	CacheFiling = "public, s-maxage=3600, stale-while-revalidate=7200"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Preflight sets the CORS headers and answers OPTIONS requests. It reports
// true when the request has been handled.
func Preflight(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// Method rejects requests whose method differs from want.
func Method(w http.ResponseWriter, r *http.Request, want string) bool {
	if r.Method != want {
		Error(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return false
	}
	return true
}

// JSON writes v with status. cacheControl is optional.
func JSON(w http.ResponseWriter, status int, v interface{}, cacheControl string) {
	w.Header().Set("Content-Type", "application/json")
	if cacheControl != "" {
		w.Header().Set("Cache-Control", cacheControl)
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Named("api").Warn("failed to write response", zap.Error(err))
	}
}

// Error writes an ErrorBody. err may be nil.
func Error(w http.ResponseWriter, status int, msg string, err error) {
	body := ErrorBody{Error: msg}
	if err != nil {
		body.Message = err.Error()
	}
	JSON(w, status, body, "")
}

// StatusFor maps a service error to an HTTP status.
func StatusFor(err error) int {
	var se *edgar.StatusError
	switch {
	case errors.Is(err, edgar.ErrTickerNotFound),
		errors.Is(err, edgar.ErrNotFound),
		errors.Is(err, metrics.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, edgar.ErrAccessDenied), errors.As(err, &se):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
