package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shadowdreamer/drawwat/internal/logging"
)

func loggedEntry(t *testing.T, status int, target string) logging.LogEntry {
	t.Helper()
	var buf bytes.Buffer
	logger := logging.New().SetOutput(&buf).SetLevel(logging.LevelDebug)

	handler := NewRequestLogger(logger).Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))

	var entry logging.LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}
	return entry
}

func TestRequestLogger_ServerErrorLogsAtError(t *testing.T) {
	entry := loggedEntry(t, http.StatusInternalServerError, "/api/puzzles?page=2")

	if entry.Level != logging.LevelError.String() {
		t.Fatalf("expected ERROR level, got %s", entry.Level)
	}
	if entry.Fields["query"] != "page=2" {
		t.Fatalf("expected query field, got %v", entry.Fields["query"])
	}
	if entry.Fields["path"] != "/api/puzzles" {
		t.Fatalf("expected path field, got %v", entry.Fields["path"])
	}
}

func TestRequestLogger_ClientErrorLogsAtWarn(t *testing.T) {
	entry := loggedEntry(t, http.StatusNotFound, "/missing")

	if entry.Level != logging.LevelWarn.String() {
		t.Fatalf("expected WARN level, got %s", entry.Level)
	}
	if _, ok := entry.Fields["query"]; ok {
		t.Fatal("did not expect query field for empty query string")
	}
}

func TestRequestLogger_SuccessLogsAtInfo(t *testing.T) {
	entry := loggedEntry(t, http.StatusOK, "/health")

	if entry.Level != logging.LevelInfo.String() {
		t.Fatalf("expected INFO level, got %s", entry.Level)
	}
	if entry.Fields["status"] != float64(http.StatusOK) {
		t.Fatalf("expected status field 200, got %v", entry.Fields["status"])
	}
}
