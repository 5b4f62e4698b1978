package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestLoggerLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		path      string
		status    int
		wantLevel string
	}{
		{"/ok", http.StatusOK, "INFO"},
		{"/missing", http.StatusNotFound, "INFO"},
		{"/boom", http.StatusInternalServerError, "ERROR"},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		engine := gin.New()
		engine.Use(RequestLogger(logger))
		engine.GET(tc.path, func(c *gin.Context) {
			c.String(tc.status, "done")
		})

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("%s: parse log line: %v", tc.path, err)
		}
		if entry["level"] != tc.wantLevel {
			t.Fatalf("%s: got level %v, want %s", tc.path, entry["level"], tc.wantLevel)
		}
		if entry["path"] != tc.path || entry["method"] != http.MethodGet {
			t.Fatalf("%s: unexpected entry: %v", tc.path, entry)
		}
		if int(entry["status"].(float64)) != tc.status {
			t.Fatalf("%s: unexpected status: %v", tc.path, entry["status"])
		}
	}
}
