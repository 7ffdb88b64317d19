// Package entity provides the core abstractions of the entity layer:
// entity definitions with their fields and associations, the abstract search
// query AST and criteria, typed collections, search results, and the nested
// event model used to cascade loaded and written events.
//
// The package is storage agnostic. The dbal sub-package translates the query
// AST into parameterized SQL and reads/writes rows, the hydrator sub-package
// turns rows into typed structs, and the repository sub-package glues both
// together with event dispatching.
//
// Common usage pattern:
//
//	criteria := entity.NewCriteria()
//	criteria.AddFilter(
//		entity.Term("product.active", true),
//		entity.Range("product.price", entity.RangeParams{entity.GTE: 10, entity.LT: 100}),
//	)
//	criteria.AddSorting(entity.SortDesc("product.price"))
//	criteria.SetLimit(25)
//
//	result, err := productRepository.Search(ctx, criteria, entity.DefaultShopContext())
//	if err != nil {
//		// handle error
//	}
package entity
