// Package hydrator decodes normalized rows into typed entity structs.
//
// Struct fields are matched by their `entity` tag, falling back to the field name
// (case-insensitive). Nested rows of many-to-one associations decode into struct or
// pointer fields, a nil nested row leaves a pointer field nil.
package hydrator
