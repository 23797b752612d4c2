// Package pipeline runs articles through extraction, graph upsert and
// article persistence. Every stage is independently fallible: a failure is
// logged and degrades to an empty result for that stage only.
package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"newsgraph/backend/go/internal/articlestore"
	"newsgraph/backend/go/internal/config"
	"newsgraph/backend/go/internal/dedup"
	"newsgraph/backend/go/internal/events"
	"newsgraph/backend/go/internal/graphstore"
	"newsgraph/backend/go/internal/llm"
	"newsgraph/backend/go/internal/models"
	"newsgraph/backend/go/internal/triple"
	"newsgraph/backend/go/pkg/logger"

	"github.com/google/uuid"
)

const serviceName = "news_pipeline"

// Settings are the per-article generation parameters and stage timeouts.
type Settings struct {
	MaxNewTokens      int
	Temperature       float64
	MaxEntityWords    int
	CompletionTimeout time.Duration
	GraphTimeout      time.Duration
	SQLTimeout        time.Duration
	Retention         time.Duration
	Retry             articlestore.RetryPolicy
}

// SettingsFromConfig resolves the extraction section of the config.
func SettingsFromConfig(cfg config.ExtractionConfig) Settings {
	return Settings{
		MaxNewTokens:      cfg.MaxNewTokens,
		Temperature:       cfg.Temperature,
		MaxEntityWords:    cfg.MaxEntityWords,
		CompletionTimeout: config.Duration(cfg.CompletionTimeout, 120*time.Second),
		GraphTimeout:      config.Duration(cfg.GraphTimeout, 15*time.Second),
		SQLTimeout:        config.Duration(cfg.SQLTimeout, 10*time.Second),
		Retention:         config.Duration(cfg.Retention, 24*time.Hour),
		Retry:             articlestore.DefaultRetry,
	}
}

// Deps are the collaborators of a Processor. Publisher and Seen are optional.
type Deps struct {
	Completer llm.Completer
	Graph     graphstore.Store
	Articles  articlestore.Store
	Publisher events.Publisher
	Seen      dedup.Seen
}

// Result summarizes what happened to one article.
type Result struct {
	TraceID       string
	Skipped       bool // link already processed within the retention window
	Candidates    int
	Accepted      int
	Written       int
	CompletionErr error
	GraphErrs     []error
	PersistErr    error
}

// Persisted reports whether the article row was written.
func (r Result) Persisted() bool {
	return !r.Skipped && r.PersistErr == nil
}

// Stats are cumulative counters since the processor was created.
type Stats struct {
	Articles           int64 `json:"articles"`
	Skipped            int64 `json:"skipped"`
	TriplesWritten     int64 `json:"triples_written"`
	CompletionFailures int64 `json:"completion_failures"`
	GraphFailures      int64 `json:"graph_failures"`
	PersistFailures    int64 `json:"persist_failures"`
}

// Processor handles one article at a time.
type Processor struct {
	deps     Deps
	settings Settings
	parser   triple.Parser
	now      func() time.Time

	articles        atomic.Int64
	skipped         atomic.Int64
	written         atomic.Int64
	completionFails atomic.Int64
	graphFails      atomic.Int64
	persistFails    atomic.Int64
}

func NewProcessor(deps Deps, settings Settings) *Processor {
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	return &Processor{
		deps:     deps,
		settings: settings,
		parser:   triple.Parser{MaxEntityWords: settings.MaxEntityWords},
		now:      time.Now,
	}
}

// Process runs every stage for a. It never returns early on a stage failure;
// the article row is persisted even when extraction failed entirely.
func (p *Processor) Process(ctx context.Context, a *models.Article) Result {
	res := Result{TraceID: uuid.NewString()}
	log := logger.New(serviceName, res.TraceID, a.Link)

	if p.deps.Seen != nil {
		fresh, err := p.deps.Seen.MarkIfNew(ctx, a.Link)
		if err != nil {
			log.WithError(models.ErrorInfo{Message: err.Error(), Type: "dedup"}).Warn("duplicate check failed, processing anyway")
		} else if !fresh {
			p.skipped.Add(1)
			res.Skipped = true
			log.Debug("article already processed, skipping")
			return res
		}
	}
	p.articles.Add(1)
	log.WithField("title", a.Title).Info("processing article")

	triples := p.extract(ctx, a, log, &res)
	for _, t := range triples {
		p.upsert(ctx, t, log, &res)
	}

	// The row is written even when shutdown cancelled ctx mid-extraction;
	// each attempt is still bounded by the SQL timeout.
	pctx := context.WithoutCancel(ctx)
	res.PersistErr = p.persist(pctx, a)
	if res.PersistErr != nil {
		p.persistFails.Add(1)
		log.WithError(models.ErrorInfo{Message: res.PersistErr.Error(), Type: "article_persist"}).Error("failed to persist article")
		if p.deps.Seen != nil {
			if err := p.deps.Seen.Forget(pctx, a.Link); err != nil {
				log.WithError(models.ErrorInfo{Message: err.Error(), Type: "dedup"}).Warn("failed to release link after persist failure")
			}
		}
	}

	log.WithPayload(map[string]interface{}{
		"candidates": res.Candidates,
		"accepted":   res.Accepted,
		"written":    res.Written,
		"persisted":  res.PersistErr == nil,
	}).Info("article done")
	return res
}

// extract covers prompt, completion, parse and validate. Any failure yields no triples.
func (p *Processor) extract(ctx context.Context, a *models.Article, log *logger.Logger, res *Result) []models.Triple {
	prompt := BuildPrompt(a.Title, a.Description)

	cctx, cancel := context.WithTimeout(ctx, p.settings.CompletionTimeout)
	out, err := p.deps.Completer.Complete(cctx, prompt, llm.Options{
		MaxTokens:   p.settings.MaxNewTokens,
		Temperature: p.settings.Temperature,
	})
	cancel()
	if err != nil {
		p.completionFails.Add(1)
		res.CompletionErr = err
		log.WithError(models.ErrorInfo{Message: err.Error(), Type: "completion"}).Error("failed to extract triples")
		return nil
	}
	log.WithField("output", out).Debug("completion output")

	body := CompletionBody(prompt, out)
	accepted, rejected := triple.Extract(p.parser, body, a.Link, a.Title)
	res.Candidates = len(accepted) + len(rejected)
	for _, r := range rejected {
		log.WithField("candidate", r.Candidate).WithField("reason", r.Reason.Error()).Debug("triple rejected")
	}
	res.Accepted = len(accepted)
	return accepted
}

func (p *Processor) upsert(ctx context.Context, t models.Triple, log *logger.Logger, res *Result) {
	gctx, cancel := context.WithTimeout(ctx, p.settings.GraphTimeout)
	id, err := p.deps.Graph.UpsertTriple(gctx, t)
	cancel()

	tlog := log.WithField("triple", t)
	if err != nil {
		res.GraphErrs = append(res.GraphErrs, err)
		if errors.Is(err, graphstore.ErrUnsupportedPredicate) {
			tlog.Warn("unsupported predicate, skipping triple")
			return
		}
		p.graphFails.Add(1)
		tlog.WithError(models.ErrorInfo{Message: err.Error(), Type: "graph_upsert"}).Error("failed to insert triple")
		return
	}
	if id == "" {
		tlog.Warn("no relationship created")
		return
	}

	res.Written++
	p.written.Add(1)
	tlog.WithField("rel_id", id).Info("triple written")

	ev := &models.TripleEvent{Triple: t, RelationID: id, TraceID: res.TraceID, WrittenAt: p.now().UTC()}
	if err := p.deps.Publisher.Publish(ctx, ev); err != nil {
		tlog.WithError(models.ErrorInfo{Message: err.Error(), Type: "publish"}).Warn("failed to publish triple event")
	}
}

func (p *Processor) persist(ctx context.Context, a *models.Article) error {
	return articlestore.InsertWithRetry(ctx, timedStore{p.deps.Articles, p.settings.SQLTimeout}, a, p.settings.Retry)
}

// Stats returns a snapshot of the counters.
func (p *Processor) Stats() Stats {
	return Stats{
		Articles:           p.articles.Load(),
		Skipped:            p.skipped.Load(),
		TriplesWritten:     p.written.Load(),
		CompletionFailures: p.completionFails.Load(),
		GraphFailures:      p.graphFails.Load(),
		PersistFailures:    p.persistFails.Load(),
	}
}

// timedStore bounds each statement with its own timeout.
type timedStore struct {
	articlestore.Store
	timeout time.Duration
}

func (s timedStore) Insert(ctx context.Context, a *models.Article) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.Insert(ctx, a)
}
