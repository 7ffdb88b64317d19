package entity

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

type criteriaJSON struct {
	Filters      []queryJSON        `json:"filters"`
	PostFilters  []queryJSON        `json:"postFilters"`
	Queries      []scoreQueryJSON   `json:"queries"`
	Sortings     []fieldSortingJSON `json:"sortings"`
	Associations []string           `json:"associations"`
	Offset       int                `json:"offset"`
	Limit        int                `json:"limit"`
	TotalCount   bool               `json:"totalCount"`
}

type queryJSON struct {
	Type       string         `json:"type"`
	Field      string         `json:"field"`
	Value      any            `json:"value"`
	Values     []any          `json:"values"`
	Parameters map[string]any `json:"parameters"`
	Operator   string         `json:"operator"`
	Queries    []queryJSON    `json:"queries"`
}

type scoreQueryJSON struct {
	Query      queryJSON `json:"query"`
	Score      float64   `json:"score"`
	ScoreField string    `json:"scoreField"`
}

type fieldSortingJSON struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// CriteriaFromJSON decodes a Criteria from its JSON representation:
//
//	{
//	  "filters": [{"type": "term", "field": "product.active", "value": true}],
//	  "queries": [{"query": {"type": "match", "field": "product.name", "value": "shirt"}, "score": 100}],
//	  "sortings": [{"field": "product.name", "direction": "ASC"}],
//	  "limit": 10,
//	  "totalCount": true
//	}
//
// Query types are term, terms, match, range, nested and not.
func CriteriaFromJSON(data []byte) (*Criteria, error) {
	var raw criteriaJSON
	if err := jsoniter.ConfigFastest.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrInvalidCriteriaJSON, err)
	}

	criteria := NewCriteria().
		SetOffset(raw.Offset).
		SetLimit(raw.Limit).
		AddAssociation(raw.Associations...)

	if raw.TotalCount {
		criteria.SetTotalCountMode(ExactTotalCount)
	}

	for _, rq := range raw.Filters {
		query, err := rq.toQuery()
		if err != nil {
			return nil, err
		}

		criteria.AddFilter(query)
	}

	for _, rq := range raw.PostFilters {
		query, err := rq.toQuery()
		if err != nil {
			return nil, err
		}

		criteria.AddPostFilter(query)
	}

	for _, rsq := range raw.Queries {
		query, err := rsq.Query.toQuery()
		if err != nil {
			return nil, err
		}

		criteria.AddQuery(ScoreByField(query, rsq.Score, rsq.ScoreField))
	}

	for _, rs := range raw.Sortings {
		if rs.Field == "" {
			return nil, errors.Join(ErrInvalidCriteriaJSON, ErrEmptyQueryField)
		}

		if SortDirection(rs.Direction) == Descending || rs.Direction == "desc" {
			criteria.AddSorting(SortDesc(rs.Field))
		} else {
			criteria.AddSorting(SortAsc(rs.Field))
		}
	}

	return criteria, nil
}

func (rq queryJSON) toQuery() (Query, error) {
	switch rq.Type {
	case "term", "terms", "match", "range":
		if rq.Field == "" {
			return nil, errors.Join(ErrInvalidCriteriaJSON, ErrEmptyQueryField, fmt.Errorf("query type %q", rq.Type))
		}
	}

	switch rq.Type {
	case "term":
		return Term(rq.Field, rq.Value), nil

	case "terms":
		return Terms(rq.Field, rq.Values...), nil

	case "match":
		value, ok := rq.Value.(string)
		if !ok {
			return nil, errors.Join(ErrInvalidCriteriaJSON, fmt.Errorf("match value of %q must be a string", rq.Field))
		}

		return Match(rq.Field, value), nil

	case "range":
		params := make(RangeParams, len(rq.Parameters))
		for operator, value := range rq.Parameters {
			params[RangeOperator(operator)] = value
		}

		return Range(rq.Field, params), nil

	case "nested", "not":
		children := make([]Query, 0, len(rq.Queries))
		for _, child := range rq.Queries {
			query, err := child.toQuery()
			if err != nil {
				return nil, err
			}

			children = append(children, query)
		}

		if rq.Type == "not" {
			return Not(Operator(rq.Operator), children...), nil
		}

		return Nested(Operator(rq.Operator), children...), nil

	default:
		return nil, errors.Join(ErrInvalidCriteriaJSON, ErrUnsupportedQuery, fmt.Errorf("query type %q", rq.Type))
	}
}
