// Package repository provides a generic repository which searches, reads and writes one entity
// definition through a Store and announces every step as an event.
//
// Reads hydrate rows into basic structs B and detail structs D. Detail structs additionally
// receive the rows of all one-to-many associations, keyed by the association's property name.
package repository
