// Package tui implements the interactive provenance inspector: a scrolling,
// filterable table of every resolved configuration key, its value, and the
// layer that won the merge for it.
package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/layercfg/layercfg"
)

// Row is one resolved leaf key with its rendered value and origin.
type Row struct {
	Key   string
	Value string
	Layer string
	Path  string
}

// Model is the bubbletea state for the inspector.
type Model struct {
	rows     []Row
	visible  []Row
	filter   textinput.Model
	cursor   int
	offset   int
	width    int
	height   int
	quitting bool
}

// NewModel builds an inspector over the given configuration snapshot.
func NewModel(cfg *layercfg.Config) Model {
	filter := textinput.New()
	filter.Placeholder = "filter keys"
	filter.Prompt = "/ "
	filter.CharLimit = 120

	rows := buildRows(cfg)
	return Model{
		rows:    rows,
		visible: rows,
		filter:  filter,
		width:   80,
		height:  24,
	}
}

// Run starts the inspector and blocks until the user quits.
func Run(cfg *layercfg.Config) error {
	_, err := tea.NewProgram(NewModel(cfg), tea.WithAltScreen()).Run()
	return err
}

// buildRows flattens the merged tree into sorted dotted-key rows annotated
// with provenance.
func buildRows(cfg *layercfg.Config) []Row {
	var rows []Row
	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for key, value := range node {
			dotted := key
			if prefix != "" {
				dotted = prefix + "." + key
			}
			if child, ok := value.(map[string]any); ok {
				walk(dotted, child)
				continue
			}
			row := Row{Key: dotted, Value: renderValue(value)}
			if origin, ok := cfg.Origin(dotted); ok {
				row.Layer = origin.Layer
				row.Path = origin.Path
			}
			rows = append(rows, row)
		}
	}
	walk("", cfg.AsMap())
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

func renderValue(value any) string {
	if value == nil {
		return "null"
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(raw)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				return m, nil
			default:
				var cmd tea.Cmd
				m.filter, cmd = m.filter.Update(msg)
				m.applyFilter()
				return m, cmd
			}
		}
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "/":
			m.filter.Focus()
			return m, textinput.Blink
		case "esc":
			if m.filter.Value() != "" {
				m.filter.SetValue("")
				m.applyFilter()
			}
			return m, nil
		case "up", "k":
			m.cursor--
			m.clampCursor()
		case "down", "j":
			m.cursor++
			m.clampCursor()
		case "pgup":
			m.cursor -= m.pageSize()
			m.clampCursor()
		case "pgdown":
			m.cursor += m.pageSize()
			m.clampCursor()
		case "g", "home":
			m.cursor = 0
			m.clampCursor()
		case "G", "end":
			m.cursor = len(m.visible) - 1
			m.clampCursor()
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("layercfg inspect"))
	b.WriteString(fmt.Sprintf("  %d/%d keys\n", len(m.visible), len(m.rows)))
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	page := m.pageSize()
	end := m.offset + page
	if end > len(m.visible) {
		end = len(m.visible)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.visible[i], i == m.cursor))
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(mutedStyle.Render("no keys match"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderDetail())
	b.WriteString(helpStyle.Render("j/k move · / filter · esc clear · q quit"))
	return b.String()
}

func (m Model) renderRow(row Row, selected bool) string {
	badge := layerBadge(row.Layer)
	key := keyStyle.Render(padRight(row.Key, 36))
	line := fmt.Sprintf("%s %s %s", badge, key, row.Value)
	if selected {
		return selectedStyle.Render("> " + line)
	}
	return "  " + line
}

// renderDetail shows provenance for the selected row.
func (m Model) renderDetail() string {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return "\n"
	}
	row := m.visible[m.cursor]
	path := row.Path
	if path == "" {
		path = "(no file: in-memory source)"
	}
	return detailStyle.Render(fmt.Sprintf("%s ← layer %s, %s", row.Key, row.Layer, path)) + "\n"
}

func (m *Model) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if query == "" {
		m.visible = m.rows
	} else {
		filtered := make([]Row, 0, len(m.rows))
		for _, row := range m.rows {
			if strings.Contains(strings.ToLower(row.Key), query) || row.Layer == query {
				filtered = append(filtered, row)
			}
		}
		m.visible = filtered
	}
	m.cursor = 0
	m.offset = 0
}

func (m *Model) clampCursor() {
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// pageSize is the number of rows that fit between the header and footer.
func (m Model) pageSize() int {
	size := m.height - 7
	if size < 1 {
		return 1
	}
	return size
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
