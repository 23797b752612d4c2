package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsgraph/backend/go/internal/graphstore"
	"newsgraph/backend/go/internal/models"
	"newsgraph/backend/go/internal/pipeline"
	"newsgraph/backend/go/internal/source"

	"github.com/gin-gonic/gin"
)

func newTestRouter(queue *source.Queue, graph graphstore.Store, checks map[string]HealthCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	stats := func() pipeline.Stats { return pipeline.Stats{Articles: 3} }
	NewHandler(queue, graph, stats, checks).Register(r, func(c *gin.Context) { c.Next() })
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitArticle(t *testing.T) {
	q := source.NewQueue(1)
	r := newTestRouter(q, graphstore.NewMemoryStore(), nil)

	w := do(r, http.MethodPost, "/api/v1/articles", `{"title":"T","link":"https://x","description":"d"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	a, err := q.Next(context.Background())
	if err != nil || a.Link != "https://x" || a.Date.IsZero() {
		t.Errorf("queued article = %+v, %v", a, err)
	}

	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing link", `{"title":"T"}`, http.StatusBadRequest},
		{"blank title", `{"title":"  ","link":"l"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if w := do(r, http.MethodPost, "/api/v1/articles", tt.body); w.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.code, w.Code)
		}
	}
}

func TestSubmitArticle_QueueFull(t *testing.T) {
	q := source.NewQueue(1)
	q.Offer(&models.Article{Title: "a", Link: "b"})
	r := newTestRouter(q, graphstore.NewMemoryStore(), nil)

	if w := do(r, http.MethodPost, "/api/v1/articles", `{"title":"T","link":"L"}`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when queue is full, got %d", w.Code)
	}
}

func TestRelations(t *testing.T) {
	g := graphstore.NewMemoryStore()
	_, _ = g.UpsertTriple(context.Background(), models.Triple{Subject: "Apple", Predicate: "acquired", Object: "Beats", Source: "s", Title: "t"})
	r := newTestRouter(source.NewQueue(1), g, nil)

	w := do(r, http.MethodGet, "/api/v1/entities/APPLE/relations", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Relations []models.Relation `json:"relations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Relations) != 1 || body.Relations[0].Object != "beats" {
		t.Errorf("unexpected relations %+v", body.Relations)
	}

	w = do(r, http.MethodGet, "/api/v1/entities/nobody/relations", "")
	if !strings.Contains(w.Body.String(), `"relations":[]`) {
		t.Errorf("expected empty list, got %s", w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	checks := map[string]HealthCheck{
		"neo4j": func(context.Context) error { return nil },
		"sql":   func(context.Context) error { return errors.New("down") },
	}
	w := do(newTestRouter(source.NewQueue(1), graphstore.NewMemoryStore(), checks), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when a dependency fails, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"sql":"down"`) || !strings.Contains(w.Body.String(), `"articles":3`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}

	w = do(newTestRouter(source.NewQueue(1), graphstore.NewMemoryStore(), nil), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with no checks, got %d", w.Code)
	}
}
