// Package scanner discovers CSV files and verifies they share one header.
//
// The scanner package is responsible for:
//   - Listing the .csv files of a single directory in lexical order
//   - Reading only the header line of each file and comparing it with the first
//   - Counting data rows of a file for load reporting
//
// The scanner is designed to be filesystem-agnostic through the use of
// filesystem.FileSystemProvider interface, enabling both production use
// with the OS filesystem and testing with in-memory filesystems.
package scanner
