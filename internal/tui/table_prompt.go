package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vvka-141/csvstage/internal/db"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

// tableNameModel is a single text field with inline validation.
type tableNameModel struct {
	input     textinput.Model
	keys      KeyMap
	err       error
	submitted bool
	cancelled bool
}

func newTableNameModel(initial string) tableNameModel {
	ti := textinput.New()
	ti.Placeholder = "stg_import"
	ti.CharLimit = csvstage.MaxIdentifierLength
	ti.Width = 40
	ti.SetValue(initial)
	ti.Focus()

	return tableNameModel{
		input: ti,
		keys:  DefaultKeyMap(),
	}
}

func (m tableNameModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m tableNameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			m.err = db.ValidateTableName(m.Value())
			if m.err == nil {
				m.submitted = true
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.Value() == "" {
		m.err = nil
	} else {
		m.err = db.ValidateTableName(m.Value())
	}
	return m, cmd
}

func (m tableNameModel) View() string {
	if m.submitted {
		return SuccessStyle.Render(SymbolCheck+" Staging table: "+m.Value()) + "\n"
	}
	if m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Staging table name"))
	b.WriteString("\n")
	b.WriteString(FocusedInputStyle.Render(m.input.View()))
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(SymbolCross + " letters, digits and underscores only; start with a letter or underscore"))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.keys.InputHelpText()))
	b.WriteString("\n")
	return b.String()
}

// Value returns the trimmed field contents.
func (m tableNameModel) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// TablePrompt asks for the staging table name with a bubbletea text input.
type TablePrompt struct {
	initial string
}

// NewTablePrompt creates a prompt pre-filled with initial.
func NewTablePrompt(initial string) *TablePrompt {
	return &TablePrompt{initial: initial}
}

// TableName runs the prompt on the terminal.
func (p *TablePrompt) TableName(ctx context.Context) (string, error) {
	program := tea.NewProgram(
		newTableNameModel(p.initial),
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
	)

	final, err := program.Run()
	if ctx.Err() != nil || errors.Is(err, tea.ErrProgramKilled) {
		return "", fmt.Errorf("table name prompt: %w", csvstage.ErrInterrupted)
	}
	if err != nil {
		return "", fmt.Errorf("table name prompt failed: %w", err)
	}

	model := final.(tableNameModel)
	if model.cancelled {
		return "", fmt.Errorf("table name prompt cancelled: %w", csvstage.ErrInterrupted)
	}
	return model.Value(), nil
}

var _ csvstage.TableNamer = (*TablePrompt)(nil)
