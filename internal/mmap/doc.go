// Package mmap maps catalog files read-only into memory.
//
//	m, err := mmap.Open("catalog.dat")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// On Unix the mapping uses mmap(2) and madvise(2); on Windows it uses
// CreateFileMapping/MapViewOfFile and Advise is a no-op.
//
// A Mapping may be read concurrently. Close is idempotent; callers must not
// touch the slice returned by Bytes after Close returns.
package mmap
