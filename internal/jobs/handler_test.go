package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestPollJobAndLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewMemoryStore()
	now := time.Now().UTC()
	_ = store.Create(context.Background(), Job{
		ID:           "j1",
		UserID:       "guest:g1",
		Status:       StatusFailed,
		FailedStage:  "extract",
		ErrorCode:    "EXTRACTION_FAILED",
		ErrorMessage: "Could not extract text from the file",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	h := NewHandler(NewService(context.Background(), store, &fakeProcessor{}, nil), time.Minute)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "guest:g1")
		c.Next()
	})
	h.RegisterRoutes(r.Group("/api/v1"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/j1", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body JobResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != StatusFailed || body.Error == nil || body.Error.Code != "EXTRACTION_FAILED" || body.Error.Stage != "extract" {
		t.Fatalf("unexpected body %+v", body)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/j1", nil))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") != "60" {
		t.Fatalf("unexpected Retry-After %q", resp.Header().Get("Retry-After"))
	}
}

func TestPollLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newPollLimiter(time.Second, func() time.Time { return now })
	if !l.Allow("u", "j") {
		t.Fatalf("first poll must pass")
	}
	if l.Allow("u", "j") {
		t.Fatalf("second poll in window must be rejected")
	}
	if !l.Allow("u", "other") {
		t.Fatalf("different job must pass")
	}
	now = now.Add(time.Second)
	if !l.Allow("u", "j") {
		t.Fatalf("poll after window must pass")
	}
}

func TestJobEncodingOmitsUploadBytes(t *testing.T) {
	job := Job{ID: "j1", Status: StatusQueued}
	job.Request.Data = []byte("secret bytes")
	raw, err := encodeJob(job)
	if err != nil {
		t.Fatalf("encodeJob: %v", err)
	}
	back, err := decodeJob(raw)
	if err != nil {
		t.Fatalf("decodeJob: %v", err)
	}
	if len(back.Request.Data) != 0 || back.ID != "j1" {
		t.Fatalf("unexpected decoded job %+v", back)
	}
}
