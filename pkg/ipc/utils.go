package ipc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	kerrors "github.com/odvcencio/kuberift/pkg/errors"
)

// respondJSON sends a JSON response with appropriate headers.
func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

// respondError sends a structured JSON error response.
func respondError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	response := struct {
		Error     string `json:"error"`
		Status    int    `json:"status"`
		Code      string `json:"code,omitempty"`
		Message   string `json:"message"`
		Retryable bool   `json:"retryable,omitempty"`
		Timestamp string `json:"timestamp"`
	}{
		Status:    status,
		Message:   http.StatusText(status),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	var appErr *kerrors.Error
	if errors.As(err, &appErr) {
		response.Code = string(appErr.Code)
		response.Message = kerrors.UserMessage(err)
		response.Retryable = appErr.Retryable
	} else if err != nil {
		response.Message = err.Error()
	}
	response.Error = response.Message
	_ = json.NewEncoder(w).Encode(response)
}

func httpError(w http.ResponseWriter, msg string, status int) {
	respondError(w, status, errors.New(msg))
}

// extractBearerToken extracts a bearer token from Authorization header or query param.
func extractBearerToken(r *http.Request) (token string, fromQuery bool) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):]), false
	}
	if tok := r.URL.Query().Get("token"); tok != "" {
		return tok, true
	}
	return "", false
}

// parseSize reads the initial terminal size from the query, falling back to
// 80x24.
func parseSize(r *http.Request) (cols, rows int) {
	query := r.URL.Query()
	cols = parseIntDefault(query.Get("cols"), 80)
	rows = parseIntDefault(query.Get("rows"), 24)
	return cols, rows
}

// parseIntDefault parses a positive integer with a default fallback.
func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= maxTerminalCells {
		return v
	}
	return def
}
