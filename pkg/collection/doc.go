// Package collection holds the queryable record sets published by a parse.
// A Collection is immutable once built; its behaviour is extended through a
// capability table of bound methods that callers reach via Invoke.
package collection
