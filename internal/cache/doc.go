// Package cache provides a byte-bounded LRU cache for immutable blobs.
//
// Entries are keyed by blob name. Callers must only cache content that never
// changes under the same name, such as numbered state versions.
package cache
