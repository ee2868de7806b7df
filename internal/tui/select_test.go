package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testChoices = []BuildChoice{
	{GuideURL: "https://maxroll.gg/blue-protocol/build-guides/smite", Title: "Smite Spec", ImportedAt: "2026-10-01", GearCount: 9},
	{GuideURL: "https://maxroll.gg/blue-protocol/build-guides/frost", Title: "Frost Mage", PlannerURL: "https://maxroll.gg/blue-protocol/planner/g41si0c5"},
}

// stubProgram feeds keys to the model the way the bubbletea runtime would.
func stubProgram(t *testing.T, keys ...tea.KeyMsg) {
	t.Helper()
	orig := runProgram
	runProgram = func(m tea.Model) (tea.Model, error) {
		for _, k := range keys {
			var cmd tea.Cmd
			m, cmd = m.Update(k)
			if cmd != nil {
				if _, quit := cmd().(tea.QuitMsg); quit {
					break
				}
			}
		}
		return m, nil
	}
	t.Cleanup(func() { runProgram = orig })
}

func TestSelectBuild_Enter(t *testing.T) {
	stubProgram(t, tea.KeyMsg{Type: tea.KeyEnter})

	res, err := SelectBuild(testChoices)
	require.NoError(t, err)
	assert.Equal(t, ActionSelected, res.Action)
	require.NotNil(t, res.Selection)
	assert.Equal(t, "Smite Spec", res.Selection.Title)
}

func TestSelectBuild_MoveDownThenEnter(t *testing.T) {
	stubProgram(t, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})

	res, err := SelectBuild(testChoices)
	require.NoError(t, err)
	require.NotNil(t, res.Selection)
	assert.Equal(t, "Frost Mage", res.Selection.Title)
}

func TestSelectBuild_SkipAndStop(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want SelectionAction
	}{
		{"esc skips", tea.KeyMsg{Type: tea.KeyEsc}, ActionSkipped},
		{"s skips", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")}, ActionSkipped},
		{"q stops", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, ActionStopped},
		{"ctrl+c stops", tea.KeyMsg{Type: tea.KeyCtrlC}, ActionStopped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubProgram(t, tt.key)
			res, err := SelectBuild(testChoices)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Action)
			assert.Nil(t, res.Selection)
		})
	}
}

func TestSelectBuild_EmptyListSkipsWithoutUI(t *testing.T) {
	orig := runProgram
	runProgram = func(tea.Model) (tea.Model, error) {
		t.Fatal("program must not start for an empty list")
		return nil, nil
	}
	defer func() { runProgram = orig }()

	res, err := SelectBuild(nil)
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, res.Action)
}

func TestSelectBuild_ProgramError(t *testing.T) {
	orig := runProgram
	runProgram = func(tea.Model) (tea.Model, error) { return nil, errors.New("no tty") }
	defer func() { runProgram = orig }()

	_, err := SelectBuild(testChoices)
	assert.EqualError(t, err, "no tty")
}

func TestModelView(t *testing.T) {
	m := newModel(testChoices)
	view := m.View()
	assert.Contains(t, view, "Imported builds (2)")
	assert.Contains(t, view, "Smite Spec")
	assert.Contains(t, view, "Enter show")
}

func TestItemStyles_SelectedDoesNotLeakIntoNormal(t *testing.T) {
	styles := newItemStyles()

	assert.NotEqual(t, styles.selected.GetBackground(), styles.normal.GetBackground())
	assert.Equal(t, lipgloss.Color("252"), styles.normal.GetForeground())
	assert.Equal(t, lipgloss.Color("129"), styles.normal.GetBorderTopForeground())
	assert.Equal(t, lipgloss.Color("230"), styles.selected.GetForeground())
	assert.Equal(t, lipgloss.Color("213"), styles.selected.GetBorderTopForeground())
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "imported 2026-10-01 | 9 gear slots", formatMetadata(testChoices[0], 80))
	assert.Equal(t, "planner", formatMetadata(testChoices[1], 80))
	assert.Equal(t, "1 gear slot", formatMetadata(BuildChoice{GearCount: 1}, 80))
	assert.Equal(t, "No details", formatMetadata(BuildChoice{}, 80))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a \n  b", 10))
	assert.Equal(t, "Verdant...", truncate("Verdant Oracle", 10))
	assert.Equal(t, "Ve", truncate("Verdant", 2))
	assert.True(t, strings.HasSuffix(truncate(strings.Repeat("é", 20), 8), "..."))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 72, clamp(72, 0, 40))
	assert.Equal(t, 50, clamp(72, 50, 40))
	assert.Equal(t, 40, clamp(72, 10, 40))
}

func TestBuildItem_TitleFallback(t *testing.T) {
	assert.Equal(t, "Build", buildItem{}.Title())
	assert.Equal(t, "Smite Spec", buildItem{choice: testChoices[0]}.FilterValue())
}
