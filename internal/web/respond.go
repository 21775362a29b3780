package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type contextKey string

const traceIDKey contextKey = "traceID"

// TraceIDHeader carries the request's trace id back to the client.
const TraceIDHeader = "X-Trace-Id"

type errorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// traceID returns the trace id stored by the trace middleware, or "".
func traceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// trace assigns every request a trace id and logs its outcome.
func trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := context.WithValue(r.Context(), traceIDKey, id)
		w.Header().Set(TraceIDHeader, id)

		log := slog.With("trace_id", id, "request_id", middleware.GetReqID(ctx))
		log.Debug("request started", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		log.Debug("request finished",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a client-facing error message.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	slog.Debug("sending error response",
		"status_code", status,
		"message", message,
		"trace_id", traceID(r.Context()),
		"path", r.URL.Path,
		"method", r.Method)
	respondJSON(w, status, errorResponse{Error: message, TraceID: traceID(r.Context())})
}

// respondServerError logs err and sends a generic 500. The error text never
// reaches the client.
func respondServerError(w http.ResponseWriter, r *http.Request, message string, err error) {
	slog.Error(message,
		"error", err,
		"trace_id", traceID(r.Context()),
		"path", r.URL.Path,
		"method", r.Method)
	respondJSON(w, http.StatusInternalServerError, errorResponse{Error: message, TraceID: traceID(r.Context())})
}
