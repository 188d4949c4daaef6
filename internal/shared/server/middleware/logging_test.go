package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"studyhub-backend/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	restore := telemetry.SetLogger(zap.New(core))
	defer restore()

	router := gin.New()
	router.Use(RequestID(), Auth(nil), Logging())
	router.GET("/test", func(c *gin.Context) {
		c.Set(DocumentIDKey, "doc-1")
		c.Set(JobIDKey, "job-1")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Guest-Id", "guest1")
	req.Header.Set("X-Request-Id", "req-42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	entries := logs.FilterMessage("request.complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log, got %d", len(entries))
	}
	payload := entries[0].ContextMap()
	for _, key := range []string{"request_id", "user_id", "document_id", "job_id", "duration_ms", "status"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["request_id"] != "req-42" {
		t.Fatalf("unexpected request_id: %v", payload["request_id"])
	}
	if payload["user_id"] != "guest:guest1" {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
	if payload["document_id"] != "doc-1" || payload["job_id"] != "job-1" {
		t.Fatalf("unexpected ids: %v", payload)
	}
	if resp.Header().Get("X-Request-Id") != "req-42" {
		t.Fatalf("request id not echoed")
	}
}

func TestRequestIDReachesRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/ctx", func(c *gin.Context) {
		seen = telemetry.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ctx", nil))

	if seen == "" || seen != resp.Header().Get("X-Request-Id") {
		t.Fatalf("expected generated id in context, got %q vs %q", seen, resp.Header().Get("X-Request-Id"))
	}
}
