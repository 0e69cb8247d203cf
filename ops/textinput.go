package ops

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
)

var promptStyle = lipgloss.NewStyle().Bold(true)

// TextInputOp prompts for a single line of text via a Bubble Tea
// textinput.Model. Succeeds with the entered string; Ctrl-C/Esc yields
// Failure<canceled>.
type TextInputOp struct {
	op.Base
	OpName      string
	Prompt      string
	Placeholder string
}

// Name implements op.Op.
func (o *TextInputOp) Name() string {
	if o.OpName != "" {
		return o.OpName
	}
	return "TextInputOp"
}

// Run implements op.Op.
func (o *TextInputOp) Run(_ context.Context, io *ioctx.Context) op.Outcome {
	m := newTextInputModel(o.Prompt, o.Placeholder)

	p := tea.NewProgram(m, tea.WithInput(io.In), tea.WithOutput(io.Out))
	final, err := p.Run()
	if err != nil {
		return o.FailWithUnknownError(fmt.Sprintf("textinput: %v", err))
	}

	result := final.(textInputModel)
	if result.canceled {
		return o.Cancel()
	}
	return o.Succeed(result.input.Value())
}

type textInputModel struct {
	input     textinput.Model
	prompt    string
	canceled  bool
	submitted bool
}

func newTextInputModel(prompt, placeholder string) textInputModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	return textInputModel{input: ti, prompt: prompt}
}

func (m textInputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			m.canceled = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m textInputModel) View() string {
	if m.canceled || m.submitted {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n", promptStyle.Render(m.prompt), m.input.View())
}
