// Package source yields articles from the places the pipeline reads from:
// RSS/Atom feeds, a Kafka topic, JSON Lines files and the HTTP ingest queue.
package source

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"newsgraph/backend/go/internal/models"
	"newsgraph/backend/go/pkg/logger"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ErrExhausted is returned by Next once a finite source has nothing left.
var ErrExhausted = errors.New("source exhausted")

// Source yields one article at a time. Next blocks until an article is
// available, ctx is done, or a finite source runs out (ErrExhausted).
type Source interface {
	Name() string
	Next(ctx context.Context) (*models.Article, error)
}

// Merge drains every source into a single channel. The channel is closed
// once every source is exhausted or ctx is cancelled. Transient errors are
// logged and the source is polled again after errorBackoff.
func Merge(ctx context.Context, log *logger.Logger, sources ...Source) <-chan *models.Article {
	out := make(chan *models.Article)
	var wg sync.WaitGroup

	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			l := log.WithField("source", src.Name())
			for {
				a, err := src.Next(ctx)
				switch {
				case err == nil:
				case errors.Is(err, ErrExhausted):
					l.Info("source exhausted")
					return
				case ctx.Err() != nil:
					return
				default:
					l.WithError(models.ErrorInfo{Message: err.Error(), Type: "source"}).Error("failed to read article")
					select {
					case <-ctx.Done():
						return
					case <-time.After(errorBackoff):
					}
					continue
				}

				select {
				case out <- a:
				case <-ctx.Done():
					return
				}
			}
		}(src)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

var errorBackoff = 2 * time.Second

// CleanDescription converts HTML found in feed summaries to plain markdown
// text and collapses whitespace. Text without markup is only collapsed.
func CleanDescription(s string) string {
	if strings.ContainsAny(s, "<&") {
		if md, err := htmltomarkdown.ConvertString(s); err == nil {
			s = md
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
