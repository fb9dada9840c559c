// Package tui provides the terminal editors used by the folio CLI. The
// reorder editor drives a reorder.Controller: moves apply to the list at
// once and are saved in the background, reverting when a save fails.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"folio/internal/reorder"
)

// headerLines is the number of rows above the first list row.
const headerLines = 2

// Item is one reorderable row.
type Item struct {
	ID    int64
	Label string
}

func itemID(it Item) int64 { return it.ID }

// Loader fetches the authoritative ordering, used to refresh the list
// after each save settles. It may be nil.
type Loader func(ctx context.Context) ([]Item, error)

type settledMsg struct {
	result reorder.Result
}

type reloadedMsg struct {
	items []Item
	err   error
}

// ReorderModel is the bubbletea model of the reorder editor. Rows move with
// the keyboard (grab, move, drop) or by dragging with the mouse.
type ReorderModel struct {
	ctx     context.Context
	title   string
	ctrl    *reorder.Controller[Item]
	load    Loader
	drag    *reorder.Drag
	spinner spinner.Model

	cursor   int
	grabbed  bool
	grabFrom int
	status   string
	err      error
	saves    int
}

// NewReorderModel returns an editor over items that saves through p.
func NewReorderModel(ctx context.Context, title string, p reorder.Persister, items []Item, load Loader) ReorderModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = cursorStyle

	return ReorderModel{
		ctx:     ctx,
		title:   title,
		ctrl:    reorder.NewController(p, itemID, items),
		load:    load,
		drag:    reorder.NewDrag(1),
		spinner: s,
	}
}

// Items returns the editor's current ordering.
func (m ReorderModel) Items() []Item { return m.ctrl.Items() }

// Err returns the error of the most recent failed save or reload.
func (m ReorderModel) Err() error { return m.err }

// Init starts the spinner.
func (m ReorderModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles key, mouse and save-settlement messages.
func (m ReorderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case settledMsg:
		m.saves--
		res := msg.result
		switch res.Outcome {
		case reorder.Confirmed:
			m.status = successStyle.Render("saved")
			m.err = nil
		default:
			m.err = res.Err
			m.status = errorStyle.Render(fmt.Sprintf("save failed (%s): %v", res.Outcome, res.Err))
		}
		m.cursor = min(m.cursor, max(len(m.ctrl.Items())-1, 0))
		if m.load != nil && m.saves == 0 {
			return m, m.reload()
		}
		return m, nil

	case reloadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = errorStyle.Render("reload failed: " + msg.err.Error())
			return m, nil
		}
		if m.saves == 0 {
			m.ctrl.Set(msg.items)
			m.cursor = min(m.cursor, max(len(msg.items)-1, 0))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ReorderModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.ctrl.Items())

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "esc":
		if m.grabbed {
			m.grabbed = false
			m.cursor = m.grabFrom
			return m, nil
		}
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}

	case " ", "space", "g", "enter":
		if !m.grabbed {
			if n > 0 {
				m.grabbed = true
				m.grabFrom = m.cursor
			}
			return m, nil
		}
		m.grabbed = false
		cmd := m.drop(m.grabFrom, m.cursor)
		return m, cmd
	}
	return m, nil
}

func (m ReorderModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	row := m.rowAt(msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || row < 0 {
			return m, nil
		}
		m.drag.Press(row, float64(msg.X), float64(msg.Y))
		m.cursor = row

	case tea.MouseActionMotion:
		if m.drag.Move(float64(msg.X), float64(msg.Y)) && row >= 0 {
			m.cursor = row
		}

	case tea.MouseActionRelease:
		if row < 0 {
			m.drag.Cancel()
			return m, nil
		}
		gesture, from, to := m.drag.Release(row)
		switch gesture {
		case reorder.GestureClick:
			m.cursor = from
		case reorder.GestureDrop:
			m.cursor = to
			cmd := m.drop(from, to)
			return m, cmd
		}
	}
	return m, nil
}

// rowAt maps a screen row to a list index, or -1 outside the list.
func (m ReorderModel) rowAt(y int) int {
	i := y - headerLines
	if i < 0 || i >= len(m.ctrl.Items()) {
		return -1
	}
	return i
}

// drop applies the move locally and returns a command that waits for the
// save to settle.
func (m *ReorderModel) drop(from, to int) tea.Cmd {
	done, ok := m.ctrl.Drop(m.ctx, from, to)
	if !ok {
		return nil
	}
	m.saves++
	m.status = ""
	return func() tea.Msg {
		return settledMsg{result: <-done}
	}
}

func (m ReorderModel) reload() tea.Cmd {
	load, ctx := m.load, m.ctx
	return func() tea.Msg {
		items, err := load(ctx)
		return reloadedMsg{items: items, err: err}
	}
}

// View renders the list, the save status and the key help.
func (m ReorderModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	items := m.ctrl.Items()
	if len(items) == 0 {
		b.WriteString(helpStyle.Render("  nothing to reorder"))
		b.WriteString("\n")
	}
	for i, it := range items {
		line := fmt.Sprintf("%2d. %s", i+1, it.Label)
		switch {
		case m.grabbed && i == m.cursor:
			b.WriteString(cursorStyle.Render("> ") + grabbedStyle.Render(line))
		case i == m.cursor:
			b.WriteString(cursorStyle.Render("> " + line))
		default:
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.ctrl.Pending():
		b.WriteString(m.spinner.View() + " saving...")
	case m.status != "":
		b.WriteString(m.status)
	}
	b.WriteString("\n\n")

	help := []string{FormatKey("↑/↓", "move"), FormatKey("space", "grab/drop"), FormatKey("esc", "cancel"), FormatKey("q", "quit")}
	if m.grabbed {
		help[1] = FormatKey("space", "drop here")
	}
	b.WriteString(strings.Join(help, " • "))
	return b.String()
}
