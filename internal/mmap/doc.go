// Package mmap maps snapshot files read-only for the local blob store.
//
// A snapshot is decoded front to back, so Open advises sequential access.
// Range reads hand out sub-slices of the mapping without copying and
// prefetch the pages they cover. Unix uses mmap(2) and madvise(2); Windows
// maps a view and ignores the hints.
package mmap
