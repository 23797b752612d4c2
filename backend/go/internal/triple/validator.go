package triple

import (
	"errors"
	"fmt"
	"strings"

	"newsgraph/backend/go/internal/models"
)

var (
	// ErrRejected is the parent of every validation failure.
	ErrRejected = errors.New("triple rejected")
	// ErrUnknownPredicate means the predicate is outside the allowed vocabulary.
	ErrUnknownPredicate = fmt.Errorf("%w: predicate not allowed", ErrRejected)
	// ErrBlockedEntity means the subject or object is on the block-list.
	ErrBlockedEntity = fmt.Errorf("%w: blocked entity", ErrRejected)
)

// Validate applies the filter rules in order and returns the first failure.
// An accepted triple carries the lower-cased predicate and the article provenance.
func Validate(c models.Candidate, source, title string) (models.Triple, error) {
	predicate := strings.ToLower(strings.TrimSpace(c.Predicate))
	if !IsAllowedPredicate(predicate) {
		return models.Triple{}, fmt.Errorf("%w: %q", ErrUnknownPredicate, c.Predicate)
	}
	if IsBlockedEntity(c.Subject) {
		return models.Triple{}, fmt.Errorf("%w: subject %q", ErrBlockedEntity, c.Subject)
	}
	if IsBlockedEntity(c.Object) {
		return models.Triple{}, fmt.Errorf("%w: object %q", ErrBlockedEntity, c.Object)
	}
	// Redundant with the block-list; kept so removing "unspecified" from it cannot let it through.
	if strings.EqualFold(strings.TrimSpace(c.Subject), "unspecified") || strings.EqualFold(strings.TrimSpace(c.Object), "unspecified") {
		return models.Triple{}, fmt.Errorf("%w: unspecified entity", ErrBlockedEntity)
	}

	return models.Triple{
		Subject:   c.Subject,
		Predicate: predicate,
		Object:    c.Object,
		Source:    source,
		Title:     title,
	}, nil
}

// Extract parses text and returns only the triples that pass validation,
// alongside the rejected candidates with their reasons.
func Extract(p Parser, text, source, title string) ([]models.Triple, []Rejection) {
	var (
		accepted []models.Triple
		rejected []Rejection
	)
	for _, c := range p.Parse(text) {
		t, err := Validate(c, source, title)
		if err != nil {
			rejected = append(rejected, Rejection{Candidate: c, Reason: err})
			continue
		}
		accepted = append(accepted, t)
	}
	return accepted, rejected
}

// Rejection records why a candidate was dropped.
type Rejection struct {
	Candidate models.Candidate
	Reason    error
}
