package models

import "time"

// Candidate is a raw (subject, predicate, object) tuple taken verbatim from model output.
type Candidate struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// Triple is a candidate that passed validation, with provenance attached.
// Predicate is always lower-case and a member of the allowed vocabulary.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Source    string `json:"source"` // article link
	Title     string `json:"title"`  // article title
}

// TripleEvent is published for every triple written to the graph.
type TripleEvent struct {
	Triple     Triple    `json:"triple"`
	RelationID string    `json:"relation_id,omitempty"`
	TraceID    string    `json:"trace_id,omitempty"`
	WrittenAt  time.Time `json:"written_at"`
}
