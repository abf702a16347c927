package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/handstats/internal/handhistory"
	"github.com/lox/handstats/internal/report"
	"github.com/lox/handstats/internal/statistics"
)

const (
	paneTable = iota
	paneHands
)

const sidebarWidth = 30

// Options configures the viewer.
type Options struct {
	Title  string
	Order  []handhistory.Position
	Logger *log.Logger
}

// Model is the Bubble Tea model for the statistics viewer: a position table,
// a detail sidebar for the selected row and a scrollable list of its hands.
type Model struct {
	stats  *statistics.Table
	rows   []statistics.Row
	hands  map[handhistory.Position][]*handhistory.Hand
	title  string
	logger *log.Logger

	// UI components
	table     table.Model
	handsView viewport.Model

	focusedPane int
	quitting    bool

	width  int
	height int
}

// New creates a viewer over a derived statistics table. hands may be nil.
func New(stats *statistics.Table, hands []*handhistory.Hand, o Options) *Model {
	logger := o.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	byPos := make(map[handhistory.Position][]*handhistory.Hand)
	for _, h := range hands {
		if h.Seated && h.Position.Canonical() {
			byPos[h.Position] = append(byPos[h.Position], h)
			byPos[statistics.Overall] = append(byPos[statistics.Overall], h)
		}
	}

	rows := stats.Ordered(o.Order)
	cells := make([]table.Row, len(rows))
	for i, r := range rows {
		cells[i] = report.TableRow(r)
	}

	columns := make([]table.Column, len(report.TableHeaders))
	for i, h := range report.TableHeaders {
		columns[i] = table.Column{Title: h, Width: max(len(h), 8)}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(cells),
		table.WithFocused(true),
		table.WithHeight(len(cells)+2),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4"))
	t.SetStyles(styles)

	title := o.Title
	if title == "" {
		title = "Hand statistics"
	}

	m := &Model{
		stats:     stats,
		rows:      rows,
		hands:     byPos,
		title:     title,
		logger:    logger,
		table:     t,
		handsView: viewport.New(1, 1),
	}
	m.refreshHands()
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Selected returns the row under the cursor.
func (m *Model) Selected() statistics.Row {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return statistics.Row{}
	}
	return m.rows[i]
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)
		m.resize()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == paneTable {
				m.focusedPane = paneHands
				m.table.Blur()
			} else {
				m.focusedPane = paneTable
				m.table.Focus()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == paneTable {
		before := m.table.Cursor()
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
		if m.table.Cursor() != before {
			m.refreshHands()
		}
	} else {
		m.handsView, cmd = m.handsView.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) resize() {
	tableHeight := len(m.rows) + 2
	m.table.SetHeight(tableHeight)

	// borders, title, help and the table itself
	handsHeight := m.height - tableHeight - 8
	m.handsView.Width = max(m.width-sidebarWidth-4, 1)
	m.handsView.Height = max(handsHeight, 1)
}

func (m *Model) refreshHands() {
	row := m.Selected()
	hands := m.hands[row.Position]
	if len(hands) == 0 {
		m.handsView.SetContent(InfoStyle.Render("no hands recorded for " + string(row.Position)))
		m.handsView.GotoTop()
		return
	}

	var b strings.Builder
	for _, h := range hands {
		fmt.Fprintf(&b, "%-12s %-6s %-7s %-28s %s\n",
			h.ID,
			string(h.Position),
			strings.Join(h.HeroCards, " "),
			formatActions(h),
			chips(int64(h.Profit())),
		)
	}
	m.handsView.SetContent(strings.TrimRight(b.String(), "\n"))
	m.handsView.GotoTop()
}

// View renders the viewer.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	title := HeaderStyle.Render(" " + m.title + " ")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(blurredBorder)
	handsStyle := tableStyle.
		Width(m.handsView.Width).
		Height(m.handsView.Height)
	if m.focusedPane == paneTable {
		tableStyle = tableStyle.BorderForeground(focusedBorder)
	} else {
		handsStyle = handsStyle.BorderForeground(focusedBorder)
	}

	sidebar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(blurredBorder).
		Width(sidebarWidth).
		Render(m.renderSidebar())

	bottom := lipgloss.JoinHorizontal(lipgloss.Top, handsStyle.Render(m.handsView.View()), sidebar)
	help := InfoStyle.Render("↑/↓ select • tab switch pane • q quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, tableStyle.Render(m.table.View()), bottom, help)
}

func (m *Model) renderSidebar() string {
	row := m.Selected()
	raw := m.stats.Raw[row.Position]

	var b strings.Builder
	b.WriteString(SelectedStyle.Render(string(row.Position)) + "\n\n")
	line := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render(fmt.Sprintf("%-14s", label)), value)
	}
	line("Hands", strconv.Itoa(row.Hands))
	line("Won showdown", strconv.Itoa(row.WonShowdown))
	line("Won no-show", strconv.Itoa(row.WonNoShowdown))
	line("Profit", chips(row.TotalProfit))
	line("SD profit", chips(raw.ShowdownProfit))
	line("Non-SD profit", chips(raw.NonShowdownProfit))
	line("SD EV/100", row.ShowdownEV.Format(2))
	line("Non-SD EV/100", row.NonShowdownEV.Format(2))
	line("Chips start", formatInt(raw.ChipsStart))
	line("Chips end", formatInt(raw.ChipsEnd))
	return strings.TrimRight(b.String(), "\n")
}

func formatActions(h *handhistory.Hand) string {
	var parts []string
	for _, s := range handhistory.Streets {
		acts := h.ActionsOn(s)
		if len(acts) == 0 {
			continue
		}
		verbs := make([]string, len(acts))
		for i, a := range acts {
			verbs[i] = string(a.Verb)
		}
		parts = append(parts, s.String()[:1]+":"+strings.Join(verbs, ","))
	}
	return strings.Join(parts, " ")
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// Run starts the viewer in the alternate screen and blocks until it exits.
func Run(m *Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}
