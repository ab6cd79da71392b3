package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RespondJSON sends a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// headers are already sent
		fmt.Printf("[API] Error encoding JSON response: %v\n", err)
	}
}

// RespondError sends a JSON error response and records the message in logger.
// If logger is nil, it prints to stdout.
func RespondError(w http.ResponseWriter, logger *strings.Builder, message string, status int) {
	if logger != nil {
		AddToLogMessage(logger, fmt.Sprintf("%d %s", status, message))
	} else {
		fmt.Println("[API] Error:", status, message)
	}
	RespondJSON(w, status, map[string]string{"error": message})
}

// LatencyMiddleware logs method, path, status and duration of each request
func LatencyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		fmt.Printf("[LATENCY] %s %s %d - %v\n", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
