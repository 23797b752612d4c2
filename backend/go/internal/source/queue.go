package source

import (
	"context"

	"newsgraph/backend/go/internal/models"
)

// Queue is a bounded in-process source fed by the HTTP ingest API.
type Queue struct {
	ch chan *models.Article
}

func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{ch: make(chan *models.Article, size)}
}

func (q *Queue) Name() string { return "http" }

// Offer enqueues a without blocking and reports false when the queue is full.
func (q *Queue) Offer(a *models.Article) bool {
	select {
	case q.ch <- a:
		return true
	default:
		return false
	}
}

// Len returns the number of queued articles.
func (q *Queue) Len() int { return len(q.ch) }

func (q *Queue) Next(ctx context.Context) (*models.Article, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case a := <-q.ch:
		return a, nil
	}
}
