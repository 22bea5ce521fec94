package observability

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestRequestLoggerFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestLogger(logger, "alpd-log"), RequestMetricsMiddleware("alpd-log"))
	r.POST("/v1/decode", func(c *gin.Context) {
		c.Set(KeyCommandBytes, 4)
		c.Set(KeyActions, 2)
		c.Status(http.StatusUnprocessableEntity)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/decode", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("parse log line: %v (%s)", err, buf.String())
	}
	if line["level"] != "warn" || line["path"] != "/v1/decode" || line["node"] != "alpd-log" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if line["command_bytes"] != float64(4) || line["actions"] != float64(2) {
		t.Fatalf("missing decode fields: %v", line)
	}

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("parse log line: %v", err)
	}
	if line["path"] != "unmatched" {
		t.Fatalf("expected unmatched path label, got %v", line["path"])
	}
}
