package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(t *testing.T, m tableNameModel, text string) tableNameModel {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(tableNameModel)
}

func press(t *testing.T, m tableNameModel, kt tea.KeyType) (tableNameModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: kt})
	return updated.(tableNameModel), cmd
}

func TestTableNameModel_SubmitValid(t *testing.T) {
	m := newTableNameModel("")
	m = typeText(t, m, "stg_test")

	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.submitted)
	assert.NoError(t, m.err)
	assert.Equal(t, "stg_test", m.Value())
	assert.Contains(t, m.View(), "stg_test")
}

func TestTableNameModel_SubmitInvalidStays(t *testing.T) {
	m := newTableNameModel("")
	m = typeText(t, m, "bad name")
	assert.Error(t, m.err, "inline validation while typing")

	m, cmd := press(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.False(t, m.submitted)
	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "letters, digits and underscores")
}

func TestTableNameModel_SubmitEmptyStays(t *testing.T) {
	m := newTableNameModel("")

	m, _ = press(t, m, tea.KeyEnter)
	assert.False(t, m.submitted)
	assert.Error(t, m.err)
}

func TestTableNameModel_InitialValue(t *testing.T) {
	m := newTableNameModel("stg_default")

	m, _ = press(t, m, tea.KeyEnter)
	assert.True(t, m.submitted)
	assert.Equal(t, "stg_default", m.Value())
}

func TestTableNameModel_Cancel(t *testing.T) {
	m := newTableNameModel("")

	m, cmd := press(t, m, tea.KeyEsc)
	require.NotNil(t, cmd)
	assert.True(t, m.cancelled)
	assert.Empty(t, m.View())
}

func TestTableNameModel_ViewShowsHelp(t *testing.T) {
	m := newTableNameModel("")
	assert.Contains(t, m.View(), "Staging table name")
	assert.Contains(t, m.View(), "enter confirm")
}
