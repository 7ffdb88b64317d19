// Package commerce declares the business entities of the shop: their definitions, the basic and
// detail structs they hydrate into, the events fired when they are loaded and the repositories
// reading and writing them.
//
// Basic structs carry the columns of an entity plus the many-to-one associations loaded in basic
// reads. Detail structs add the one-to-many associations. Use NewRegistry to get a validated
// registry of all definitions and NewRepositories to wire a repository per entity.
package commerce
