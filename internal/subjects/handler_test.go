package subjects

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(userID string, svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestSubjectLifecycle(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	router := newTestRouter("user-1", svc)

	body, _ := json.Marshal(map[string]string{"name": "  Chemistry ", "color": "#ff0000"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subjects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created SubjectResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Name != "Chemistry" || created.ID == "" {
		t.Fatalf("unexpected subject %+v", created)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/subjects", nil))
	var listed []SubjectResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one subject, got %d", len(listed))
	}

	other := newTestRouter("user-2", svc)
	resp = httptest.NewRecorder()
	other.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/subjects/"+created.ID, nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected other user to get 404, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/v1/subjects/"+created.ID, nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/subjects/"+created.ID, nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}

func TestCreateSubjectRequiresName(t *testing.T) {
	router := newTestRouter("user-1", NewService(NewMemoryRepo()))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subjects", bytes.NewReader([]byte(`{"name":"   "}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
