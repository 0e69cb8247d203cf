package ops

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
)

// menuItem adapts a label/description pair to bubbles/list.Item.
type menuItem struct {
	label, desc string
}

func (i menuItem) Title() string       { return i.label }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.label }

// MenuOp presents a single-select list and succeeds with the selected
// index, recovered by callers via op.As[int]. Ctrl-C/Esc yields
// Failure<canceled>.
type MenuOp struct {
	op.Base
	OpName string
	Title  string
	Items  []string
}

// Name implements op.Op.
func (o *MenuOp) Name() string {
	if o.OpName != "" {
		return o.OpName
	}
	return "MenuOp"
}

// Run implements op.Op.
func (o *MenuOp) Run(_ context.Context, io *ioctx.Context) op.Outcome {
	items := make([]list.Item, len(o.Items))
	for i, label := range o.Items {
		items[i] = menuItem{label: label}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = o.Title
	m := menuModel{list: l}

	p := tea.NewProgram(m, tea.WithInput(io.In), tea.WithOutput(io.Out))
	final, err := p.Run()
	if err != nil {
		return o.FailWithUnknownError(fmt.Sprintf("menu: %v", err))
	}

	result := final.(menuModel)
	if result.canceled {
		return o.Cancel()
	}
	return o.Succeed(result.list.Index())
}

type menuModel struct {
	list     list.Model
	canceled bool
	chosen   bool
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			m.canceled = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.chosen = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m menuModel) View() string {
	if m.canceled || m.chosen {
		return ""
	}
	return m.list.View()
}

// RootMenuOp demonstrates the PUSH (delegate-with-continuation) protocol:
// it delegates to a MenuOp and dispatches to whichever child Op the
// chosen index maps to; Esc/cancel re-runs the menu per spec's default
// handler convention.
type RootMenuOp struct {
	op.Base
	Title    string
	Labels   []string
	Children func(index int) op.Op
}

// Name implements op.Op.
func (o *RootMenuOp) Name() string { return "RootMenuOp" }

// Run implements op.Op.
func (o *RootMenuOp) Run(_ context.Context, _ *ioctx.Context) op.Outcome {
	menu := &MenuOp{OpName: "RootMenuOp.menu", Title: o.Title, Items: o.Labels}
	return o.HandleOutcome(menu, func(result op.Outcome) op.Op {
		if !result.OK() {
			// canceled, or unknownError: re-run the root menu.
			return o
		}
		idx, ok := op.As[int](result)
		if !ok {
			return o
		}
		return o.Children(idx)
	})
}
