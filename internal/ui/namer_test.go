package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

func TestFixedTableNamer(t *testing.T) {
	name, err := NewFixedTableNamer("stg_test").TableName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stg_test", name)

	_, err = NewFixedTableNamer("stg test").TableName(context.Background())
	assert.ErrorIs(t, err, csvstage.ErrInvalidIdentifier)

	_, err = NewFixedTableNamer("").TableName(context.Background())
	assert.ErrorIs(t, err, csvstage.ErrInvalidIdentifier)
}

func TestLinePrompter_ValidFirstTry(t *testing.T) {
	var output bytes.Buffer
	p := NewLinePrompterWithIO(strings.NewReader("stg_orders\n"), &output)

	name, err := p.TableName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stg_orders", name)
	assert.Equal(t, 1, strings.Count(output.String(), tableNamePrompt))
}

func TestLinePrompter_RepromptsUntilValid(t *testing.T) {
	var output bytes.Buffer
	input := "\nbad name\n1abc\n  stg_ok  \n"
	p := NewLinePrompterWithIO(strings.NewReader(input), &output)

	name, err := p.TableName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stg_ok", name)

	out := output.String()
	assert.Equal(t, 4, strings.Count(out, tableNamePrompt))
	assert.Equal(t, 3, strings.Count(out, "Invalid table name"))
}

func TestLinePrompter_EOF(t *testing.T) {
	var output bytes.Buffer
	p := NewLinePrompterWithIO(strings.NewReader("bad name\n"), &output)

	_, err := p.TableName(context.Background())
	assert.ErrorIs(t, err, csvstage.ErrInvalidConfig)
}

func TestLinePrompter_ContextCancelled(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()

	var output bytes.Buffer
	p := NewLinePrompterWithIO(reader, &output)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.TableName(ctx)
	assert.ErrorIs(t, err, csvstage.ErrInterrupted)
}

func TestLinePrompter_FinalLineWithoutNewline(t *testing.T) {
	var output bytes.Buffer
	p := NewLinePrompterWithIO(strings.NewReader("stg_last"), &output)

	name, err := p.TableName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stg_last", name)
}

func TestLinePrompter_StopsReadingAfterName(t *testing.T) {
	reader, writer := io.Pipe()
	defer reader.Close()

	var output bytes.Buffer
	p := NewLinePrompterWithIO(reader, &output)

	go func() { _, _ = writer.Write([]byte("stg_orders\n")) }()
	name, err := p.TableName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stg_orders", name)

	// A pipe write only completes when something reads it.
	written := make(chan struct{})
	go func() {
		_, _ = writer.Write([]byte("extra\n"))
		close(written)
	}()

	select {
	case <-written:
		t.Fatal("input was read after the table name was returned")
	case <-time.After(50 * time.Millisecond):
	}
	writer.Close()
}

func TestLinePrompter_LineAfterInterruptGoesToNextPrompt(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()

	var output bytes.Buffer
	p := NewLinePrompterWithIO(reader, &output)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.TableName(ctx)
	require.ErrorIs(t, err, csvstage.ErrInterrupted)

	go func() { _, _ = writer.Write([]byte("stg_late\n")) }()
	name, err := p.TableName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stg_late", name)
}
