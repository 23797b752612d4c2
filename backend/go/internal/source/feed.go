package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newsgraph/backend/go/internal/config"
	"newsgraph/backend/go/internal/models"
	"newsgraph/backend/go/pkg/logger"

	"github.com/mmcdole/gofeed"
)

// FeedSource polls a set of RSS/Atom feeds on a fixed interval.
type FeedSource struct {
	parser   *gofeed.Parser
	feeds    []config.FeedConfig
	interval time.Duration
	log      *logger.Logger

	pending  []*models.Article
	nextPoll time.Time
}

func NewFeedSource(feeds []config.FeedConfig, interval time.Duration, log *logger.Logger) *FeedSource {
	return &FeedSource{
		parser:   gofeed.NewParser(),
		feeds:    feeds,
		interval: interval,
		log:      log,
	}
}

func (f *FeedSource) Name() string { return "feeds" }

func (f *FeedSource) Next(ctx context.Context) (*models.Article, error) {
	for len(f.pending) == 0 {
		if wait := time.Until(f.nextPoll); wait > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		f.poll(ctx)
		f.nextPoll = time.Now().Add(f.interval)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	a := f.pending[0]
	f.pending = f.pending[1:]
	return a, nil
}

// poll fetches every feed once. A failing feed is logged and skipped.
func (f *FeedSource) poll(ctx context.Context) {
	for _, fc := range f.feeds {
		feed, err := f.parser.ParseURLWithContext(fc.URL, ctx)
		if err != nil {
			f.log.WithField("feed", fc.URL).
				WithError(models.ErrorInfo{Message: err.Error(), Type: "feed"}).
				Warn("failed to fetch feed")
			continue
		}
		items := ArticlesFromFeed(feed, fc.Name)
		f.log.WithField("feed", fc.URL).WithField("items", len(items)).Debug("feed polled")
		f.pending = append(f.pending, items...)
	}
}

// ArticlesFromFeed maps feed items to articles. Items without a link or a
// title are dropped. sourceName falls back to the feed title.
func ArticlesFromFeed(feed *gofeed.Feed, sourceName string) []*models.Article {
	if sourceName == "" {
		sourceName = strings.TrimSpace(feed.Title)
	}

	out := make([]*models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		desc := item.Description
		if desc == "" {
			desc = item.Content
		}
		a := &models.Article{
			Title:       strings.TrimSpace(item.Title),
			Link:        strings.TrimSpace(item.Link),
			Description: CleanDescription(desc),
			Source:      sourceName,
			Date:        itemDate(item),
		}
		if !a.Valid() {
			continue
		}
		out = append(out, a)
	}
	return out
}

func itemDate(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	default:
		return time.Now()
	}
}

// ParseFeed parses a feed document, mainly for tests and the CLI.
func ParseFeed(doc string) (*gofeed.Feed, error) {
	feed, err := gofeed.NewParser().ParseString(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return feed, nil
}
