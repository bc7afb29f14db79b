// Package dupfind finds files with identical contents below a directory.
//
// A scan walks the tree breadth-first under a recursion policy, dispatches
// every regular non-empty file as its own unit of work and funnels the
// results through a bounded channel to a single aggregator. The default
// strategy buckets files by size first and hashes only files whose size is
// shared with another file; the direct strategy hashes every file.
package dupfind
