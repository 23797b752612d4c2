// Package api exposes article ingest, graph read-back and health endpoints.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"newsgraph/backend/go/internal/graphstore"
	"newsgraph/backend/go/internal/models"
	"newsgraph/backend/go/internal/pipeline"
	"newsgraph/backend/go/internal/source"
	"newsgraph/backend/go/pkg/httpmiddleware"
	"newsgraph/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Handler serves the HTTP API.
type Handler struct {
	queue  *source.Queue
	graph  graphstore.Store
	stats  func() pipeline.Stats
	checks map[string]HealthCheck
}

func NewHandler(queue *source.Queue, graph graphstore.Store, stats func() pipeline.Stats, checks map[string]HealthCheck) *Handler {
	return &Handler{queue: queue, graph: graph, stats: stats, checks: checks}
}

// Register mounts the routes. limit guards the write endpoint.
func (h *Handler) Register(r gin.IRouter, limit gin.HandlerFunc) {
	r.GET("/healthz", h.health)
	v1 := r.Group("/api/v1")
	v1.POST("/articles", limit, h.submitArticle)
	v1.GET("/entities/:name/relations", h.relations)
}

type articleRequest struct {
	Title       string    `json:"title" binding:"required"`
	Link        string    `json:"link" binding:"required"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
}

func (h *Handler) submitArticle(c *gin.Context) {
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a := &models.Article{
		Title:       strings.TrimSpace(req.Title),
		Link:        strings.TrimSpace(req.Link),
		Date:        req.Date,
		Description: req.Description,
		Source:      req.Source,
	}
	if !a.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and link must not be blank"})
		return
	}
	if a.Date.IsZero() {
		a.Date = time.Now()
	}

	if !h.queue.Offer(a) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingest queue is full"})
		return
	}
	logger.New("api", httpmiddleware.TraceID(c), a.Link).Debug("article queued")
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "queued": h.queue.Len()})
}

func (h *Handler) relations(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity name is required"})
		return
	}
	rels, err := h.graph.Relations(c.Request.Context(), name)
	if err != nil {
		logger.New("api", httpmiddleware.TraceID(c), "").
			WithError(models.ErrorInfo{Message: err.Error(), Type: "graph_read"}).
			Error("failed to read relations")
		c.JSON(http.StatusBadGateway, gin.H{"error": "graph store unavailable"})
		return
	}
	if rels == nil {
		rels = []*models.Relation{}
	}
	c.JSON(http.StatusOK, gin.H{"entity": name, "relations": rels})
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := gin.H{"dependencies": deps, "queued": h.queue.Len()}
	if h.stats != nil {
		body["stats"] = h.stats()
	}
	c.JSON(status, body)
}
