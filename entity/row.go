package entity

// Row is a raw, normalized database row keyed by property names.
// Eagerly joined many-to-one associations are nested as Row values,
// one-to-many associations as []Row values.
type Row = map[string]any

// Rows is an alias type for a slice of Row.
type Rows = []Row

// PrimaryKeyValues maps primary key property names to their values.
type PrimaryKeyValues = map[string]any
