package fixtures

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vvka-141/csvstage/internal/files/filesystem"
)

// DropDir is the directory Build places fixture files in.
const DropDir = "/drop"

// DropBuilder provides a fluent API for building CSV drop directories.
//
// Example usage:
//
//	drop := NewDropBuilder().
//	    AddCSV("a.csv", []string{"id", "name"}, [][]string{{"1", "x"}}).
//	    AddFile("notes.txt", "ignored").
//	    Build()
type DropBuilder struct {
	files map[string]string // name -> content
}

// NewDropBuilder creates an empty drop.
func NewDropBuilder() *DropBuilder {
	return &DropBuilder{files: make(map[string]string)}
}

// AddFile adds a file with raw content.
func (b *DropBuilder) AddFile(name, content string) *DropBuilder {
	b.files[name] = content
	return b
}

// AddCSV adds a comma-separated file with a header line and LF row endings.
func (b *DropBuilder) AddCSV(name string, header []string, rows [][]string) *DropBuilder {
	var sb strings.Builder
	sb.WriteString(strings.Join(header, ","))
	sb.WriteString("\n")
	for _, row := range rows {
		sb.WriteString(strings.Join(row, ","))
		sb.WriteString("\n")
	}
	return b.AddFile(name, sb.String())
}

// AddNumbered adds a file whose rows are "<i>,<prefix><i>" for i in 1..n.
func (b *DropBuilder) AddNumbered(name, prefix string, n int) *DropBuilder {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{fmt.Sprint(i + 1), fmt.Sprintf("%s%d", prefix, i+1)}
	}
	return b.AddCSV(name, []string{"id", "name"}, rows)
}

// Names returns the fixture file names in sorted order.
func (b *DropBuilder) Names() []string {
	names := make([]string, 0, len(b.files))
	for name := range b.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build returns an in-memory filesystem holding the drop under DropDir.
func (b *DropBuilder) Build() filesystem.FileSystemProvider {
	fs := filesystem.NewMemoryFileSystem()
	fs.AddDir(DropDir)
	for name, content := range b.files {
		fs.AddFile(path.Join(DropDir, name), content)
	}
	return fs
}

// WriteTo writes the drop into dir on disk.
func (b *DropBuilder) WriteTo(dir string) error {
	for name, content := range b.files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("write fixture %s: %w", name, err)
		}
	}
	return nil
}

// UniformPair is two files sharing the header id,name with 3 and 5 rows.
func UniformPair() *DropBuilder {
	return NewDropBuilder().
		AddNumbered("a.csv", "a", 3).
		AddNumbered("b.csv", "b", 5)
}

// SwappedHeaders is two files whose headers hold the same names in a different order.
func SwappedHeaders() *DropBuilder {
	return NewDropBuilder().
		AddCSV("a.csv", []string{"id", "name"}, [][]string{{"1", "x"}}).
		AddCSV("b.csv", []string{"name", "id"}, [][]string{{"y", "2"}})
}
