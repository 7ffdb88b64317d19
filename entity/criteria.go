package entity

import "slices"

// SortDirection is the direction of a FieldSorting.
type SortDirection string

const (
	// Ascending sorts from low to high.
	Ascending SortDirection = "ASC"

	// Descending sorts from high to low.
	Descending SortDirection = "DESC"
)

// FieldSorting sorts search results by a property path.
type FieldSorting struct {
	Field     string
	Direction SortDirection
}

// SortAsc creates an ascending FieldSorting.
func SortAsc(field string) FieldSorting {
	return FieldSorting{Field: field, Direction: Ascending}
}

// SortDesc creates a descending FieldSorting.
func SortDesc(field string) FieldSorting {
	return FieldSorting{Field: field, Direction: Descending}
}

// TotalCountMode controls whether a search also counts all matches.
type TotalCountMode int

const (
	// NoTotalCount skips counting; the total equals the number of returned ids.
	NoTotalCount TotalCountMode = iota

	// ExactTotalCount counts all matches ignoring offset and limit.
	ExactTotalCount
)

// Criteria collects everything a search needs: filters, scoring queries, sortings and paging.
//
// Filters are combined with AND and restrict both the result and the total count.
// Post filters are combined with AND as well and are applied after the filters.
type Criteria struct {
	filters        []Query
	postFilters    []Query
	queries        []ScoreQuery
	sortings       []FieldSorting
	associations   []string
	offset         int
	limit          int
	totalCountMode TotalCountMode
}

// NewCriteria creates an empty Criteria without limit.
func NewCriteria() *Criteria {
	return &Criteria{}
}

// AddFilter appends filters. Nil filters are ignored.
func (c *Criteria) AddFilter(queries ...Query) *Criteria {
	c.filters = append(c.filters, compactQueries(queries)...)

	return c
}

// AddPostFilter appends post filters. Nil filters are ignored.
func (c *Criteria) AddPostFilter(queries ...Query) *Criteria {
	c.postFilters = append(c.postFilters, compactQueries(queries)...)

	return c
}

// AddQuery appends scoring queries.
func (c *Criteria) AddQuery(queries ...ScoreQuery) *Criteria {
	c.queries = append(c.queries, queries...)

	return c
}

// AddSorting appends sortings.
func (c *Criteria) AddSorting(sortings ...FieldSorting) *Criteria {
	c.sortings = append(c.sortings, sortings...)

	return c
}

// AddAssociation requests an association to be loaded with the result.
func (c *Criteria) AddAssociation(propertyNames ...string) *Criteria {
	for _, name := range propertyNames {
		if !slices.Contains(c.associations, name) {
			c.associations = append(c.associations, name)
		}
	}

	return c
}

// SetOffset sets the paging offset. Negative values are treated as 0.
func (c *Criteria) SetOffset(offset int) *Criteria {
	c.offset = max(offset, 0)

	return c
}

// SetLimit sets the paging limit. Values below 1 mean no limit.
func (c *Criteria) SetLimit(limit int) *Criteria {
	c.limit = max(limit, 0)

	return c
}

// SetTotalCountMode sets the total count mode.
func (c *Criteria) SetTotalCountMode(mode TotalCountMode) *Criteria {
	c.totalCountMode = mode

	return c
}

// Filters returns the filters.
func (c *Criteria) Filters() []Query { return c.filters }

// PostFilters returns the post filters.
func (c *Criteria) PostFilters() []Query { return c.postFilters }

// AllFilters returns filters followed by post filters.
func (c *Criteria) AllFilters() []Query {
	return slices.Concat(c.filters, c.postFilters)
}

// Queries returns the scoring queries.
func (c *Criteria) Queries() []ScoreQuery { return c.queries }

// Sortings returns the sortings.
func (c *Criteria) Sortings() []FieldSorting { return c.sortings }

// Associations returns the requested association property names.
func (c *Criteria) Associations() []string { return c.associations }

// Offset returns the paging offset.
func (c *Criteria) Offset() int { return c.offset }

// Limit returns the paging limit, 0 means unlimited.
func (c *Criteria) Limit() int { return c.limit }

// TotalCountMode returns the total count mode.
func (c *Criteria) TotalCountMode() TotalCountMode { return c.totalCountMode }

// Clone returns a deep enough copy to be modified independently.
func (c *Criteria) Clone() *Criteria {
	return &Criteria{
		filters:        slices.Clone(c.filters),
		postFilters:    slices.Clone(c.postFilters),
		queries:        slices.Clone(c.queries),
		sortings:       slices.Clone(c.sortings),
		associations:   slices.Clone(c.associations),
		offset:         c.offset,
		limit:          c.limit,
		totalCountMode: c.totalCountMode,
	}
}
