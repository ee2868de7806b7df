// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction represents the user's action in the selection UI.
type SelectionAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone SelectionAction = iota
	// ActionSelected indicates the user selected an item.
	ActionSelected
	// ActionSkipped indicates the user closed the picker without choosing.
	ActionSkipped
	// ActionStopped indicates the user aborted the command.
	ActionStopped
)

// BuildChoice is one previously imported build offered by the picker.
type BuildChoice struct {
	GuideURL   string
	Title      string
	PlannerURL string
	ImportedAt string
	GearCount  int
}

// SelectionResult holds the result of a TUI selection.
type SelectionResult struct {
	Action    SelectionAction
	Selection *BuildChoice
}

type buildItem struct {
	choice BuildChoice
}

func (i buildItem) Title() string {
	if i.choice.Title == "" {
		return "Build"
	}
	return i.choice.Title
}

func (i buildItem) FilterValue() string {
	return i.Title()
}

func (i buildItem) Description() string {
	return i.choice.GuideURL
}

type itemStyles struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	title    lipgloss.Style
	url      lipgloss.Style
	metadata lipgloss.Style
}

func newItemStyles() itemStyles {
	border := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(border).
		BorderForeground(lipgloss.Color("129")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	return itemStyles{
		normal: container,
		selected: container.Copy().
			BorderForeground(lipgloss.Color("213")).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("237")),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("51")),
		url: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
		metadata: lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")),
	}
}

type buildDelegate struct {
	styles itemStyles
}

func (d buildDelegate) Height() int                         { return 4 }
func (d buildDelegate) Spacing() int                        { return 1 }
func (d buildDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d buildDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	build, ok := item.(buildItem)
	if !ok {
		return
	}

	width := m.Width() - 4
	content := lipgloss.JoinVertical(lipgloss.Left,
		d.styles.title.Render(truncate(build.Title(), width)),
		d.styles.url.Render(truncate(build.Description(), width)),
		d.styles.metadata.Render(formatMetadata(build.choice, width)),
	)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

type model struct {
	list   list.Model
	result SelectionResult
}

func newModel(choices []BuildChoice) *model {
	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = buildItem{choice: c}
	}

	l := list.New(items, buildDelegate{styles: newItemStyles()}, defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &model{
		list:   l,
		result: SelectionResult{Action: ActionNone},
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if selected, ok := m.list.SelectedItem().(buildItem); ok {
				choice := selected.choice
				m.result = SelectionResult{Action: ActionSelected, Selection: &choice}
				return m, tea.Quit
			}
		case "esc", "s":
			m.result = SelectionResult{Action: ActionSkipped}
			return m, tea.Quit
		case "ctrl+c", "q":
			m.result = SelectionResult{Action: ActionStopped}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetSize(clamp(defaultListWidth, msg.Width-4, 40), clamp(defaultListHeight, msg.Height-6, 5))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	header := headerStyle.Render(fmt.Sprintf("Imported builds (%d)", len(m.list.Items())))
	help := helpStyle.Render("Up/Down navigate | Enter show | esc close | q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), help)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// SelectBuild lets the user pick one of the imported builds. An empty list
// is reported as skipped without starting the UI.
func SelectBuild(choices []BuildChoice) (SelectionResult, error) {
	if len(choices) == 0 {
		return SelectionResult{Action: ActionSkipped}, nil
	}

	finalModel, err := runProgram(newModel(choices))
	if err != nil {
		return SelectionResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}

	return SelectionResult{}, fmt.Errorf("unexpected program result")
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if width <= 0 || len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func formatMetadata(c BuildChoice, width int) string {
	var parts []string
	if c.ImportedAt != "" {
		parts = append(parts, "imported "+c.ImportedAt)
	}
	switch c.GearCount {
	case 0:
	case 1:
		parts = append(parts, "1 gear slot")
	default:
		parts = append(parts, fmt.Sprintf("%d gear slots", c.GearCount))
	}
	if c.PlannerURL != "" {
		parts = append(parts, "planner")
	}
	if len(parts) == 0 {
		return "No details"
	}
	return truncate(strings.Join(parts, " | "), width)
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
