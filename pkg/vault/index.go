package vault

import (
	"sort"
	"strings"
)

// MatchKind classifies how a token resolved against the index.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchFuzzy
)

// Index is an immutable point-in-time snapshot of a corpus listing. Lookups
// are case-insensitive; documents are held in name order so fuzzy matches are
// deterministic across rebuilds.
type Index struct {
	documents []Document
	byKey     map[string]int
}

// NewIndex builds an index over the given listing. Each document is keyed by
// its name and by its extension-less path, so both "2024-01-05" and
// "daily/2024-01-05" resolve. When two documents share a key, the first in
// name order wins.
func NewIndex(documents []Document) *Index {
	sorted := make([]Document, len(documents))
	copy(sorted, documents)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}

		return sorted[i].Path < sorted[j].Path
	})

	index := &Index{
		documents: sorted,
		byKey:     make(map[string]int, len(sorted)*2),
	}

	for i, document := range sorted {
		name := strings.ToLower(document.Name)

		if _, ok := index.byKey[name]; !ok {
			index.byKey[name] = i
		}

		path := strings.ToLower(trimExtension(document.Path))

		if _, ok := index.byKey[path]; !ok {
			index.byKey[path] = i
		}
	}

	return index
}

// Len returns the number of indexed documents.
func (x *Index) Len() int {
	return len(x.documents)
}

// Documents returns the indexed documents in name order.
func (x *Index) Documents() []Document {
	documents := make([]Document, len(x.documents))
	copy(documents, x.documents)

	return documents
}

// Lookup resolves a name or extension-less path by case-insensitive exact
// match.
func (x *Index) Lookup(name string) (Document, bool) {
	i, ok := x.byKey[strings.ToLower(name)]

	if !ok {
		return Document{}, false
	}

	return x.documents[i], true
}

// Match resolves a mention token: exact name equality first, then fuzzy
// containment in either direction. The first fuzzy hit in name order wins. A
// token that matches nothing reports MatchNone; that is a notice for the
// caller, never an error.
func (x *Index) Match(token string) (Document, MatchKind) {
	if document, ok := x.Lookup(token); ok {
		return document, MatchExact
	}

	lower := strings.ToLower(token)

	for _, document := range x.documents {
		name := strings.ToLower(document.Name)

		if strings.Contains(name, lower) || strings.Contains(lower, name) {
			return document, MatchFuzzy
		}
	}

	return Document{}, MatchNone
}

// Suggest returns up to limit documents matching a partial name, prefix
// matches ranked before substring matches.
func (x *Index) Suggest(query string, limit int) []Document {
	if limit <= 0 {
		limit = 10
	}

	query = strings.ToLower(query)

	var prefixed, contained []Document

	for _, document := range x.documents {
		name := strings.ToLower(document.Name)

		switch {
		case query == "", strings.HasPrefix(name, query):
			prefixed = append(prefixed, document)

		case strings.Contains(name, query):
			contained = append(contained, document)
		}
	}

	matches := append(prefixed, contained...)

	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches
}

func trimExtension(path string) string {
	if ext := strings.LastIndex(path, "."); ext > strings.LastIndex(path, "/") {
		return path[:ext]
	}

	return path
}
