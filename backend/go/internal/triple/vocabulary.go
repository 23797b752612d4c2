// Package triple turns free-text model output into validated knowledge-graph triples.
package triple

import (
	"sort"
	"strings"
)

// SectorEdgeType is the only edge type with an exclusivity rule: a subject has at
// most one current sector edge.
const SectorEdgeType = "OPERATES_IN_SECTOR"

// edgeTypes maps each allowed predicate to its canonical edge label. It doubles as
// the allowed predicate set.
var edgeTypes = map[string]string{
	"founded_by":         "FOUNDED_BY",
	"acquired":           "ACQUIRED",
	"has_ceo":            "HAS_CEO",
	"owns_subsidiary":    "OWNS_SUBSIDIARY",
	"operates_in_sector": SectorEdgeType,
	"has_brand":          "HAS_BRAND",
}

// blockedEntities are non-informative subjects/objects: geography and filler values.
var blockedEntities = map[string]struct{}{
	"india": {}, "usa": {}, "united states": {}, "bharat": {}, "maharashtra": {}, "karnataka": {},
	"tamil nadu": {}, "kerala": {}, "delhi": {}, "punjab": {}, "haryana": {}, "uttar pradesh": {},
	"andhra pradesh": {}, "gujarat": {}, "west bengal": {}, "rajasthan": {}, "bihar": {}, "assam": {},
	"n/a": {}, "unknown": {}, "unspecified": {}, "none": {},
}

// EdgeType returns the canonical edge label for a predicate, case-insensitively.
func EdgeType(predicate string) (string, bool) {
	label, ok := edgeTypes[strings.ToLower(strings.TrimSpace(predicate))]
	return label, ok
}

// IsAllowedPredicate reports whether predicate is in the closed vocabulary.
func IsAllowedPredicate(predicate string) bool {
	_, ok := EdgeType(predicate)
	return ok
}

// IsBlockedEntity reports whether name is on the block-list after normalization.
func IsBlockedEntity(name string) bool {
	_, ok := blockedEntities[NormalizeEntity(name)]
	return ok
}

// AllowedPredicates returns the predicate vocabulary in a stable order.
func AllowedPredicates() []string {
	out := make([]string, 0, len(edgeTypes))
	for p := range edgeTypes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// NormalizeEntity is the single place entity names are canonicalized: trimmed,
// inner whitespace collapsed, lower-cased. Every graph read and write goes through it.
func NormalizeEntity(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
