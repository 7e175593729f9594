// Package tui renders a labeling session in the terminal using bubbletea.
//
// The model never mutates session state itself. Every key press is forwarded
// to a session.Controller, and remote operations run as tea.Cmds whose
// results come back as StateMsg.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/labelr/labelr/internal/labelschema"
	"github.com/labelr/labelr/internal/models"
	"github.com/labelr/labelr/internal/session"
)

// StateMsg carries the outcome of a controller operation.
type StateMsg struct {
	State session.State
	Err   error
}

// LabeledElsewhereMsg reports a sample labeled by another session.
type LabeledElsewhereMsg struct {
	SampleID string
}

// Model is the bubbletea model for one labeling session.
type Model struct {
	ctx     context.Context
	ctrl    *session.Controller
	dataset models.DatasetDetail
	schema  *labelschema.Schema

	// events delivers ids of samples labeled by other sessions. Nil disables it.
	events <-chan string

	state     session.State
	err       error
	selected  int
	width     int
	elsewhere int
	quitting  bool
}

// New creates a model for dataset driven by ctrl.
func New(ctx context.Context, ctrl *session.Controller, dataset models.DatasetDetail, schema *labelschema.Schema) Model {
	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		dataset: dataset,
		schema:  schema,
		state:   ctrl.State(),
	}
}

// WithEvents returns a copy of m that counts samples labeled elsewhere as
// reported on events.
func (m Model) WithEvents(events <-chan string) Model {
	m.events = events
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

// State returns the last session snapshot the model has seen.
func (m Model) State() session.State {
	return m.state
}

// Err returns the error of the last failed operation, if any.
func (m Model) Err() error {
	return m.err
}

// LabeledElsewhere returns how many samples other sessions labeled since
// this one started or was last reset.
func (m Model) LabeledElsewhere() int {
	return m.elsewhere
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	load := m.run(func(ctx context.Context) (session.State, error) {
		return m.ctrl.LoadInitial(ctx, m.dataset.ID, m.schema)
	})

	return tea.Batch(load, m.waitForEvent())
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}

	events := m.events

	return func() tea.Msg {
		id, ok := <-events
		if !ok {
			return nil
		}

		return LabeledElsewhereMsg{SampleID: id}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case StateMsg:
		// A superseded operation returns an old snapshot; the controller's
		// current state is authoritative.
		m.state = m.ctrl.State()
		m.err = msg.Err

	case LabeledElsewhereMsg:
		m.elsewhere++
		return m, m.waitForEvent()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "r":
		m.err = nil
		m.elsewhere = 0
		return m, m.run(m.ctrl.ResetHistory)

	case "tab":
		if n := len(m.schema.Numerical()); n > 0 {
			m.selected = (m.selected + 1) % n
		}

		return m, nil

	case "+", "=", "-":
		steps := 1
		if key == "-" {
			steps = -1
		}

		return m.step(steps), nil
	}

	b := session.BindingForKey(key)

	switch b.Action {
	case session.ActionToggle:
		m.state = m.ctrl.SelectBooleanLabel(b.Position)
		return m, nil
	case session.ActionPrev:
		return m, m.run(m.ctrl.Prev)
	case session.ActionNext:
		return m, m.run(m.ctrl.Next)
	case session.ActionSave:
		return m, m.run(m.ctrl.SaveAndContinue)
	}

	return m, nil
}

func (m Model) step(steps int) Model {
	numericals := m.schema.Numerical()
	if len(numericals) == 0 {
		return m
	}

	st, err := m.ctrl.StepNumericalLabel(numericals[m.selected].Name, steps)
	m.state = st
	m.err = err

	return m
}

func (m Model) run(op func(context.Context) (session.State, error)) tea.Cmd {
	ctx := m.ctx

	return func() tea.Msg {
		st, err := op(ctx)
		return StateMsg{State: st, Err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.state.Status {
	case session.StatusUninitialized, session.StatusLoading:
		b.WriteString(mutedStyle.Render("Loading..."))
	case session.StatusExhausted:
		b.WriteString(doneStyle.Render("No unlabeled samples left. Press r to start over."))
	default:
		b.WriteString(m.renderSample())
		b.WriteString("\n\n")
		b.WriteString(m.renderLabels())

		if hint := m.rangeHint(); hint != "" {
			b.WriteString("\n\n")
			b.WriteString(errorStyle.Render(hint))
		}
	}

	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render(m.dataset.Name)

	progress := ""
	if m.state.Pagination != nil {
		progress = fmt.Sprintf("%.0f%% labeled", m.state.LabeledPercent*100)
	}

	position := ""
	if n := len(m.state.History); n > 0 {
		position = fmt.Sprintf("sample %d of %d visited", n-m.state.Cursor, n)
	}

	header := title + "  " + mutedStyle.Render(strings.TrimSpace(progress+"  "+position))
	if m.elsewhere > 0 {
		header += "\n" + valueStyle.Render(fmt.Sprintf("%d labeled by others since you started, press r to refresh the queue", m.elsewhere))
	}

	return header
}

func (m Model) renderSample() string {
	if m.state.Current == nil {
		return ""
	}

	style := textStyle
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}

	id := mutedStyle.Render(m.state.Current.ID)
	if m.state.Current.OriginalID != "" {
		id = mutedStyle.Render(m.state.Current.OriginalID + "  " + m.state.Current.ID)
	}

	return id + "\n" + style.Render(m.state.Current.Text)
}

func (m Model) renderLabels() string {
	var lines []string

	for i, def := range m.schema.Boolean() {
		box := "[ ]"
		if m.state.Boolean[def.Name] {
			box = checkedStyle.Render("[x]")
		}

		key := "-"
		if i < 10 {
			key = fmt.Sprintf("%d", (i+1)%10)
		}

		lines = append(lines, fmt.Sprintf("%s %s %s", keyStyle.Render(key), box, def.Name))
	}

	for i, def := range m.schema.Numerical() {
		minimum, maximum, interval := def.Bounds()
		marker := " "
		name := def.Name

		if i == m.selected {
			marker = keyStyle.Render(">")
			name = selectedStyle.Render(def.Name)
		}

		value := m.state.Numerical[def.Name]
		vstyle := valueStyle
		if value < minimum || value > maximum {
			vstyle = errorStyle
		}

		lines = append(lines, fmt.Sprintf("%s %s %s %s", marker, name,
			vstyle.Render(fmt.Sprintf("%g", value)),
			mutedStyle.Render(fmt.Sprintf("[%g..%g step %g]", minimum, maximum, interval))))
	}

	return strings.Join(lines, "\n")
}

// rangeHint names the numerical labels whose value the server would reject.
// Unset numerical labels start at 0, which may lie outside their range.
func (m Model) rangeHint() string {
	var out []string

	for _, def := range m.schema.Numerical() {
		minimum, maximum, _ := def.Bounds()
		if v := m.state.Numerical[def.Name]; v < minimum || v > maximum {
			out = append(out, fmt.Sprintf("%s (%g..%g)", def.Name, minimum, maximum))
		}
	}

	if len(out) == 0 {
		return ""
	}

	return "Out of range, adjust with tab +/- before saving: " + strings.Join(out, ", ")
}

func (m Model) renderFooter() string {
	type hint struct {
		key, desc string
		enabled   bool
	}

	ready := m.state.Status == session.StatusReady && !m.state.Pending
	hints := []hint{
		{"a", "prev", ready && m.state.CanGoBack},
		{"d", "next", ready},
		{"space", "save", ready},
		{"tab +/-", "adjust", len(m.schema.Numerical()) > 0},
		{"r", "reset", len(m.state.History) > 1 || m.state.Status == session.StatusExhausted},
		{"q", "quit", true},
	}

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		if !h.enabled {
			parts = append(parts, mutedStyle.Render(h.key+" "+h.desc))
			continue
		}

		parts = append(parts, keyStyle.Render(h.key)+" "+helpStyle.Render(h.desc))
	}

	return strings.Join(parts, "  ")
}
