// Package aggregates implements persistence-side aggregate writers.
//
// Writers own their transaction boundaries, enforce optimistic concurrency
// through the root version column, and map infrastructure failures into the
// domain aggregate error codes.
package aggregates
