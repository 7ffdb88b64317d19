package entity

import "github.com/google/uuid"

// IDSearchResult is the outcome of an id search.
type IDSearchResult struct {
	ids      []uuid.UUID
	scores   map[uuid.UUID]float64
	total    int
	criteria *Criteria
	context  ShopContext
}

// NewIDSearchResult creates an IDSearchResult. scores may be nil when no ranking was requested.
func NewIDSearchResult(
	ids []uuid.UUID,
	scores map[uuid.UUID]float64,
	total int,
	criteria *Criteria,
	shopContext ShopContext,
) IDSearchResult {

	if ids == nil {
		ids = []uuid.UUID{}
	}

	return IDSearchResult{ids: ids, scores: scores, total: total, criteria: criteria, context: shopContext}
}

// IDs returns the found ids in result order.
func (r IDSearchResult) IDs() []uuid.UUID { return r.ids }

// Score returns the ranking score of id, 0 if unranked.
func (r IDSearchResult) Score(id uuid.UUID) float64 { return r.scores[id] }

// Total returns the total number of matches.
func (r IDSearchResult) Total() int { return r.total }

// Criteria returns the criteria the search was done with.
func (r IDSearchResult) Criteria() *Criteria { return r.criteria }

// Context returns the shop context the search was done with.
func (r IDSearchResult) Context() ShopContext { return r.context }

// SearchResult is the outcome of a search with hydrated entities.
type SearchResult[T Identifiable] struct {
	Collection[T]
	total    int
	criteria *Criteria
	context  ShopContext
}

// NewSearchResult creates a SearchResult.
func NewSearchResult[T Identifiable](
	collection Collection[T],
	total int,
	criteria *Criteria,
	shopContext ShopContext,
) SearchResult[T] {

	return SearchResult[T]{Collection: collection, total: total, criteria: criteria, context: shopContext}
}

// Total returns the total number of matches.
func (r SearchResult[T]) Total() int { return r.total }

// Criteria returns the criteria the search was done with.
func (r SearchResult[T]) Criteria() *Criteria { return r.criteria }

// Context returns the shop context the search was done with.
func (r SearchResult[T]) Context() ShopContext { return r.context }
