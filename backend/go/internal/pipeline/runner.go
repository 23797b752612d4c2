package pipeline

import (
	"context"
	"time"

	"newsgraph/backend/go/internal/articlestore"
	"newsgraph/backend/go/internal/models"
	"newsgraph/backend/go/pkg/logger"
)

// Runner drains articles one at a time and prunes the article table on
// startup and periodically while running.
type Runner struct {
	proc     *Processor
	articles articlestore.Store
	settings Settings
	log      *logger.Logger
}

func NewRunner(proc *Processor, articles articlestore.Store, settings Settings) *Runner {
	return &Runner{
		proc:     proc,
		articles: articles,
		settings: settings,
		log:      logger.New(serviceName, "", ""),
	}
}

// PruneInterval is how often old articles are deleted in long-running mode.
func (r *Runner) PruneInterval() time.Duration {
	iv := r.settings.Retention / 4
	if iv < time.Minute {
		iv = time.Minute
	}
	return iv
}

// Prune deletes articles older than the retention period. Failures are logged only.
func (r *Runner) Prune(ctx context.Context) {
	cutoff := time.Now().Add(-r.settings.Retention)
	pctx, cancel := context.WithTimeout(ctx, r.settings.SQLTimeout)
	defer cancel()

	n, err := r.articles.Prune(pctx, cutoff)
	if err != nil {
		r.log.WithError(models.ErrorInfo{Message: err.Error(), Type: "article_prune"}).Error("failed to delete old news")
		return
	}
	r.log.WithField("deleted", n).WithField("cutoff", cutoff.Format(time.RFC3339)).Info("old news pruned")
}

// Run processes articles from in until it is closed or ctx is done. An
// article is always fully processed before the next one is taken.
func (r *Runner) Run(ctx context.Context, in <-chan *models.Article) error {
	r.Prune(ctx)

	ticker := time.NewTicker(r.PruneInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Prune(ctx)
		case a, ok := <-in:
			if !ok {
				r.log.WithPayload(statsPayload(r.proc.Stats())).Info("all sources drained")
				return nil
			}
			if !a.Valid() {
				r.log.Warn("dropping article without title or link")
				continue
			}
			r.proc.Process(ctx, a)
		}
	}
}

func statsPayload(s Stats) map[string]interface{} {
	return map[string]interface{}{
		"articles":            s.Articles,
		"skipped":             s.Skipped,
		"triples_written":     s.TriplesWritten,
		"completion_failures": s.CompletionFailures,
		"graph_failures":      s.GraphFailures,
		"persist_failures":    s.PersistFailures,
	}
}
