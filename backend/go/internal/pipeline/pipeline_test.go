package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"newsgraph/backend/go/internal/articlestore"
	"newsgraph/backend/go/internal/dedup"
	"newsgraph/backend/go/internal/graphstore"
	"newsgraph/backend/go/internal/llm"
	"newsgraph/backend/go/internal/models"
)

type fakeCompleter struct {
	out     string
	err     error
	echo    bool
	prompts []string
	opts    llm.Options
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.opts = opts
	if f.err != nil {
		return "", f.err
	}
	if f.echo {
		return prompt + f.out, nil
	}
	return f.out, nil
}

type memArticles struct {
	mu       sync.Mutex
	rows     []models.Article
	failures int
	pruned   int
}

func (m *memArticles) Insert(ctx context.Context, a *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("connection refused")
	}
	m.rows = append(m.rows, *a)
	return nil
}

func (m *memArticles) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruned++
	return 0, nil
}

func (m *memArticles) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type failingGraph struct{}

func (failingGraph) UpsertTriple(ctx context.Context, t models.Triple) (string, error) {
	return "", errors.New("neo4j unavailable")
}

func (failingGraph) Relations(ctx context.Context, subject string) ([]*models.Relation, error) {
	return nil, nil
}

type recordingPublisher struct {
	events []*models.TripleEvent
}

func (r *recordingPublisher) Publish(ctx context.Context, ev *models.TripleEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func testSettings() Settings {
	return Settings{
		MaxNewTokens:      256,
		Temperature:       0.2,
		MaxEntityWords:    4,
		CompletionTimeout: time.Second,
		GraphTimeout:      time.Second,
		SQLTimeout:        time.Second,
		Retention:         24 * time.Hour,
		Retry:             articlestore.RetryPolicy{Attempts: 2, Backoff: time.Millisecond},
	}
}

func article(link string) *models.Article {
	return &models.Article{
		Title:       "Apple buys Beats",
		Link:        link,
		Date:        time.Now(),
		Description: "Apple acquired Beats Electronics for $3bn.",
		Source:      "wire",
	}
}

func TestProcess_WritesTriplesAndPersists(t *testing.T) {
	comp := &fakeCompleter{out: "[Apple, acquired, Beats Electronics]\nsome chatter\n[India, operates_in_sector, Finance]"}
	graph := graphstore.NewMemoryStore()
	arts := &memArticles{}
	pub := &recordingPublisher{}
	p := NewProcessor(Deps{Completer: comp, Graph: graph, Articles: arts, Publisher: pub}, testSettings())

	res := p.Process(context.Background(), article("https://example.com/a"))

	if res.Candidates != 2 || res.Accepted != 1 || res.Written != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if !res.Persisted() || arts.count() != 1 {
		t.Errorf("expected article persisted, rows=%d err=%v", arts.count(), res.PersistErr)
	}
	rels, _ := graph.Relations(context.Background(), "apple")
	if len(rels) != 1 || rels[0].Type != "ACQUIRED" || rels[0].Source != "https://example.com/a" {
		t.Errorf("unexpected relations %+v", rels)
	}
	if len(pub.events) != 1 || pub.events[0].TraceID != res.TraceID {
		t.Errorf("expected one published event with trace id, got %+v", pub.events)
	}
	if comp.opts.MaxTokens != 256 || comp.opts.Temperature != 0.2 {
		t.Errorf("unexpected generation options %+v", comp.opts)
	}
	if !strings.Contains(comp.prompts[0], `"""Apple buys Beats. Apple acquired Beats Electronics for $3bn."""`) {
		t.Error("prompt does not embed title and description")
	}
}

func TestProcess_PersistsWhenCompletionFails(t *testing.T) {
	comp := &fakeCompleter{err: errors.New("model server down")}
	graph := graphstore.NewMemoryStore()
	arts := &memArticles{}
	p := NewProcessor(Deps{Completer: comp, Graph: graph, Articles: arts}, testSettings())

	res := p.Process(context.Background(), article("https://example.com/b"))

	if res.CompletionErr == nil {
		t.Error("expected completion error in result")
	}
	if !res.Persisted() || arts.count() != 1 {
		t.Errorf("article must be persisted despite completion failure")
	}
	if graph.EdgeCount() != 0 {
		t.Errorf("expected no edges, got %d", graph.EdgeCount())
	}
	if s := p.Stats(); s.CompletionFailures != 1 || s.Articles != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestProcess_PersistsWhenGraphFails(t *testing.T) {
	comp := &fakeCompleter{out: "[Apple, acquired, Beats Electronics]"}
	arts := &memArticles{}
	p := NewProcessor(Deps{Completer: comp, Graph: failingGraph{}, Articles: arts}, testSettings())

	res := p.Process(context.Background(), article("https://example.com/c"))
	if len(res.GraphErrs) != 1 || res.Written != 0 {
		t.Errorf("expected one graph error, got %+v", res)
	}
	if arts.count() != 1 {
		t.Error("article must be persisted despite graph failure")
	}
}

func TestProcess_IgnoresEchoedPrompt(t *testing.T) {
	comp := &fakeCompleter{echo: true, out: "\n[Tata Motors, owns_subsidiary, Jaguar Land Rover]\n"}
	graph := graphstore.NewMemoryStore()
	p := NewProcessor(Deps{Completer: comp, Graph: graph, Articles: &memArticles{}}, testSettings())

	res := p.Process(context.Background(), article("https://example.com/d"))
	if res.Accepted != 1 || graph.EdgeCount() != 1 {
		t.Errorf("prompt examples leaked into extraction: %+v edges=%d", res, graph.EdgeCount())
	}
}

type blockingCompleter struct{}

func (blockingCompleter) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestProcess_PersistsWhenCancelledDuringCompletion(t *testing.T) {
	arts := &memArticles{}
	settings := testSettings()
	settings.CompletionTimeout = time.Minute
	p := NewProcessor(Deps{Completer: blockingCompleter{}, Graph: graphstore.NewMemoryStore(), Articles: arts}, settings)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	res := p.Process(ctx, article("https://example.com/cancelled"))
	if !errors.Is(res.CompletionErr, context.Canceled) {
		t.Errorf("CompletionErr = %v, want context.Canceled", res.CompletionErr)
	}
	if res.PersistErr != nil || arts.count() != 1 {
		t.Errorf("article must be persisted after cancellation: err=%v rows=%d", res.PersistErr, arts.count())
	}
}

func TestProcess_KeepsTriplesBeforeTrailingMarker(t *testing.T) {
	comp := &fakeCompleter{out: "[Apple, acquired, Beats Electronics]\nTriples: done"}
	graph := graphstore.NewMemoryStore()
	p := NewProcessor(Deps{Completer: comp, Graph: graph, Articles: &memArticles{}}, testSettings())

	if res := p.Process(context.Background(), article("https://example.com/trailing")); res.Written != 1 {
		t.Errorf("expected one triple written, got %+v", res)
	}
}

func TestProcess_RetriesPersistence(t *testing.T) {
	arts := &memArticles{failures: 1}
	p := NewProcessor(Deps{Completer: &fakeCompleter{}, Graph: graphstore.NewMemoryStore(), Articles: arts}, testSettings())

	if res := p.Process(context.Background(), article("https://example.com/e")); !res.Persisted() {
		t.Errorf("expected persistence to succeed on retry, got %v", res.PersistErr)
	}
}

func TestProcess_SkipsDuplicateLinks(t *testing.T) {
	seen, _ := dedup.NewLocalSeen(16, time.Hour)
	arts := &memArticles{failures: 2}
	comp := &fakeCompleter{}
	p := NewProcessor(Deps{Completer: comp, Graph: graphstore.NewMemoryStore(), Articles: arts, Seen: seen}, testSettings())
	ctx := context.Background()

	// Both attempts fail, so the link is released for a later delivery.
	if res := p.Process(ctx, article("https://example.com/f")); res.Persisted() {
		t.Fatal("expected persistence failure")
	}
	if res := p.Process(ctx, article("https://example.com/f")); res.Skipped || !res.Persisted() {
		t.Fatalf("redelivery after failure should be processed, got %+v", res)
	}
	if res := p.Process(ctx, article("https://example.com/f")); !res.Skipped {
		t.Error("third delivery should be skipped")
	}
	if len(comp.prompts) != 2 {
		t.Errorf("expected 2 completions, got %d", len(comp.prompts))
	}
	if s := p.Stats(); s.Skipped != 1 || s.PersistFailures != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestRunner_DrainsAndPrunes(t *testing.T) {
	arts := &memArticles{}
	settings := testSettings()
	p := NewProcessor(Deps{Completer: &fakeCompleter{out: "[Apple, acquired, Beats Electronics]"}, Graph: graphstore.NewMemoryStore(), Articles: arts}, settings)
	r := NewRunner(p, arts, settings)

	in := make(chan *models.Article, 3)
	in <- article("https://example.com/1")
	in <- &models.Article{Title: "no link"}
	in <- article("https://example.com/2")
	close(in)

	if err := r.Run(context.Background(), in); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if arts.count() != 2 {
		t.Errorf("expected 2 persisted articles, got %d", arts.count())
	}
	if arts.pruned != 1 {
		t.Errorf("expected startup prune, got %d prunes", arts.pruned)
	}
}

func TestRunner_StopsOnCancel(t *testing.T) {
	arts := &memArticles{}
	r := NewRunner(NewProcessor(Deps{Completer: &fakeCompleter{}, Graph: graphstore.NewMemoryStore(), Articles: arts}, testSettings()), arts, testSettings())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, make(chan *models.Article)) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunner_PruneInterval(t *testing.T) {
	s := testSettings()
	if got := NewRunner(nil, nil, s).PruneInterval(); got != 6*time.Hour {
		t.Errorf("PruneInterval() = %v, want 6h", got)
	}
	s.Retention = time.Minute
	if got := NewRunner(nil, nil, s).PruneInterval(); got != time.Minute {
		t.Errorf("PruneInterval() = %v, want 1m floor", got)
	}
}
