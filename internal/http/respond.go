package http

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// writeJSON writes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the protocol error envelope {"error":{code,message,requestId}}.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": correlationID(r.Context()),
		},
	})
}

func correlationID(ctx context.Context) string {
	if v, ok := ctx.Value("correlation_id").(string); ok {
		return v
	}
	return ""
}

// loggerFromContext returns the request-scoped logger set by CorrelationIDMiddleware.
func loggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value("logger").(*zap.Logger); ok && l != nil {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}
