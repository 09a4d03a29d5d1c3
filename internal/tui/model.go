package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vito/progrock"
	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/ui/style"
)

// Row is one scenario on the board.
type Row struct {
	Name       string
	Conditions []string
	Status     domain.OutcomeStatus
	// Running is true between the vertex start and its completion.
	Running bool
	// LastLine is the most recent complete line of output.
	LastLine string
	Err      string
}

// Model is the Bubble Tea model of the scenario board.
type Model struct {
	tape    TapeSource
	rows    []*Row
	byName  map[string]*Row
	byID    map[string]*Row
	screens map[string]*screen
	width   int
	height  int
	spinner spinner.Model
}

// NewModel creates a board reading from tape.
func NewModel(tape TapeSource) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(style.Yellow)

	return &Model{
		tape:    tape,
		byName:  make(map[string]*Row),
		byID:    make(map[string]*Row),
		screens: make(map[string]*screen),
		spinner: s,
	}
}

// Rows returns the board rows in display order.
func (m *Model) Rows() []Row {
	out := make([]Row, len(m.rows))
	for i, r := range m.rows {
		out[i] = *r
	}
	return out
}

// Init starts reading from the tape.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(WaitForTape(m.tape), m.spinner.Tick)
}

// Update handles incoming messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case MsgPlan:
		m.plan(msg)
	case MsgTapeUpdate:
		m.apply(msg.Update)
		return m, WaitForTape(m.tape)
	case MsgTapeEnded:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) plan(msg MsgPlan) {
	for _, name := range msg.Scenarios {
		row := m.row(name)
		row.Conditions = msg.Conditions[name]
	}
}

func (m *Model) row(name string) *Row {
	if r, ok := m.byName[name]; ok {
		return r
	}
	r := &Row{Name: name, Status: domain.StatusPlanned}
	m.rows = append(m.rows, r)
	m.byName[name] = r
	return r
}

func (m *Model) apply(update *progrock.StatusUpdate) {
	if update == nil {
		return
	}

	for _, v := range update.Vertexes {
		r := m.row(v.Name)
		m.byID[v.Id] = r

		switch {
		case v.Completed == nil:
			r.Running = true
		case v.Error != nil:
			r.Running = false
			r.Status = domain.StatusFailed
			r.Err = *v.Error
		case v.Cached:
			r.Running = false
			r.Status = domain.StatusCached
		default:
			r.Running = false
			r.Status = domain.StatusPassed
		}
	}

	for _, l := range update.Logs {
		r, ok := m.byID[l.Vertex]
		if !ok {
			continue
		}
		sc, ok := m.screens[l.Vertex]
		if !ok {
			sc = newScreen()
			m.screens[l.Vertex] = sc
		}
		_, _ = sc.Write(l.Data)
		if line := sc.lastLine(); line != "" {
			r.LastLine = line
		}
	}
}

// View renders the board. On small terminals only the most recent rows are shown.
func (m *Model) View() string {
	rows := m.rows
	if m.height > 0 && len(rows) > m.height {
		rows = rows[len(rows)-m.height:]
	}

	faint := lipgloss.NewStyle().Foreground(style.Slate)

	var b strings.Builder
	for _, r := range rows {
		icon := style.StatusIcon(r.Status)
		if r.Running {
			icon = m.spinner.View()
		} else {
			icon = lipgloss.NewStyle().Foreground(style.StatusColor(r.Status)).Render(icon)
		}

		b.WriteString(icon)
		b.WriteByte(' ')
		b.WriteString(r.Name)
		if len(r.Conditions) > 0 {
			b.WriteByte(' ')
			b.WriteString(faint.Render("[" + strings.Join(r.Conditions, ", ") + "]"))
		}

		detail := r.LastLine
		if r.Err != "" {
			detail = r.Err
		}
		if detail != "" && (r.Running || r.Status == domain.StatusFailed) {
			b.WriteString("\n    ")
			b.WriteString(faint.Render(m.truncate(detail)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) truncate(s string) string {
	limit := m.width - 4
	if limit <= 0 || lipgloss.Width(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) > limit-1 {
		runes = runes[:limit-1]
	}
	return string(runes) + "…"
}
