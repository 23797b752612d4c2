package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"newsgraph/backend/go/internal/models"
)

// LinesSource reads one JSON article per line, for batch runs over a file
// or standard input. Blank lines are skipped.
type LinesSource struct {
	name    string
	scanner *bufio.Scanner
	line    int
}

func NewLinesSource(name string, r io.Reader) *LinesSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &LinesSource{name: name, scanner: sc}
}

func (s *LinesSource) Name() string { return s.name }

func (s *LinesSource) Next(ctx context.Context) (*models.Article, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("%s: read failed at line %d: %w", s.name, s.line, err)
			}
			return nil, ErrExhausted
		}
		s.line++

		text := strings.TrimSpace(s.scanner.Text())
		if text == "" {
			continue
		}
		a, err := DecodeArticle([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", s.name, s.line, err)
		}
		return a, nil
	}
}

// DecodeArticle parses a JSON article and fills in a missing date.
func DecodeArticle(data []byte) (*models.Article, error) {
	var a models.Article
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("invalid article JSON: %w", err)
	}
	if !a.Valid() {
		return nil, fmt.Errorf("article requires title and link")
	}
	a.ID = 0
	if a.Date.IsZero() {
		a.Date = time.Now()
	}
	return &a, nil
}
