// Package filesystem provides the filesystem abstraction used by the CSV scanner.
//
// The scanner only needs to list a directory, stat paths and stream file
// contents, so the interface is kept to those operations. This keeps header
// verification and row counting testable without touching disk.
//
// Implementations:
//   - OSFileSystem: Production implementation using the OS filesystem
//   - MemoryFileSystem: In-memory implementation for testing
package filesystem
