// Package batch runs many trace-matching jobs at once.
//
// Each job ranks one child table against one parent table and builds its
// own embedding provider, so jobs share nothing but the worker pool. A job
// that fails on a transient embedding error is retried as a whole with
// exponential backoff. Discover expands glob patterns into workbooks, and
// Watch re-runs work whenever an input file changes.
package batch
