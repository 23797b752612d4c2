package models

// Relation is a stored edge read back from the graph.
type Relation struct {
	Subject string `json:"subject"`
	Type    string `json:"type"`
	Object  string `json:"object"`
	Source  string `json:"source,omitempty"`
	Title   string `json:"title,omitempty"`
}
