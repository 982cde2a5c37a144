package progress

import (
	"fmt"
	"io"

	"github.com/vvka-141/csvstage/pkg/csvstage"
)

// Plain reports one line per file and runs no goroutine.
type Plain struct {
	out io.Writer
}

// NewPlain creates a Plain reporter writing to w.
// Panics if w is nil.
func NewPlain(w io.Writer) *Plain {
	if w == nil {
		panic("writer cannot be nil")
	}
	return &Plain{out: w}
}

func (p *Plain) Start(label string) csvstage.ProgressHandle {
	fmt.Fprintf(p.out, "Inserting %s...\n", label)
	return noopHandle{}
}

type noopHandle struct{}

func (noopHandle) Stop() {}

var _ csvstage.ProgressReporter = (*Plain)(nil)
