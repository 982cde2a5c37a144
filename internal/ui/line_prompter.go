package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/csvstage/internal/db"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

const tableNamePrompt = "Enter staging table name: "

// LinePrompter asks for the staging table name on a line-oriented console
// and repeats the question until a valid name is entered.
//
// Input is read one line per prompt, so nothing waits on the input once a
// name is returned. A line still being read when ctx is cancelled is handed
// to the next TableName call. LinePrompter is not safe for concurrent use.
type LinePrompter struct {
	input   *bufio.Reader
	output  io.Writer
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewLinePrompter creates a prompter on stdin and stderr.
func NewLinePrompter() csvstage.TableNamer {
	return NewLinePrompterWithIO(os.Stdin, os.Stderr)
}

// NewLinePrompterWithIO creates a prompter on the given streams.
func NewLinePrompterWithIO(input io.Reader, output io.Writer) *LinePrompter {
	return &LinePrompter{input: bufio.NewReader(input), output: output}
}

// TableName prompts until a valid name is read.
// Cancelling ctx returns an error wrapping csvstage.ErrInterrupted;
// end of input returns an error wrapping csvstage.ErrInvalidConfig.
func (p *LinePrompter) TableName(ctx context.Context) (string, error) {
	for {
		fmt.Fprint(p.output, tableNamePrompt)

		var res lineResult
		select {
		case <-ctx.Done():
			fmt.Fprintln(p.output)
			return "", fmt.Errorf("table name prompt: %w", csvstage.ErrInterrupted)
		case res = <-p.readLine():
			p.pending = nil
		}

		// A final line without a newline still counts.
		if res.err != nil && (!errors.Is(res.err, io.EOF) || res.line == "") {
			fmt.Fprintln(p.output)
			if errors.Is(res.err, io.EOF) {
				return "", fmt.Errorf("no table name entered: %w", csvstage.ErrInvalidConfig)
			}
			return "", fmt.Errorf("failed to read input: %w", res.err)
		}

		name := strings.TrimSpace(res.line)
		if err := db.ValidateTableName(name); err != nil {
			fmt.Fprintln(p.output, "✗ Invalid table name: use letters, digits and underscores, starting with a letter or underscore (max 128).")
			continue
		}
		return name, nil
	}
}

// readLine starts reading one line, or returns the read left pending by an
// interrupted prompt.
func (p *LinePrompter) readLine() <-chan lineResult {
	if p.pending != nil {
		return p.pending
	}
	ch := make(chan lineResult, 1)
	p.pending = ch
	go func() {
		line, err := p.input.ReadString('\n')
		ch <- lineResult{line: line, err: err}
	}()
	return ch
}

var _ csvstage.TableNamer = (*LinePrompter)(nil)
