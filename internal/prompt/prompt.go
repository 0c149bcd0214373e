// Package prompt asks the user for confirmation before destructive commands.
package prompt

import (
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/terminal"
)

// ErrRequiresTerminal is returned when a prompt is needed but stdin is not a terminal.
var ErrRequiresTerminal = errors.New(messages.PromptRequiresTerminal)

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(title string, value *bool) error
}

// HuhConfirmer implements Confirmer with charmbracelet/huh.
type HuhConfirmer struct {
	Output     io.Writer
	isTerminal func() bool
}

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// NewHuhConfirmer returns a confirmer that renders to out.
func NewHuhConfirmer(out io.Writer) *HuhConfirmer {
	return &HuhConfirmer{Output: out, isTerminal: terminal.IsInteractive}
}

// keyMap makes both Esc and Ctrl+C abort the form.
func keyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel"))
	return km
}

// interruptFilter turns an interrupt into a graceful quit so the renderer
// clears the form before returning.
func interruptFilter(_ tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.InterruptMsg); ok {
		return tea.QuitMsg{}
	}
	return msg
}

// Confirm asks title and stores the answer in value. Aborting the form is a "no".
func (c *HuhConfirmer) Confirm(title string, value *bool) error {
	checker := c.isTerminal
	if checker == nil {
		checker = terminal.IsInteractive
	}
	if !checker() {
		return ErrRequiresTerminal
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("No").
			Value(value),
	))
	form.WithKeyMap(keyMap())
	opts := []tea.ProgramOption{tea.WithFilter(interruptFilter)}
	if c.Output != nil {
		opts = append(opts, tea.WithOutput(c.Output))
	}
	form.WithProgramOptions(opts...)

	err := runFormFunc(form)
	if errors.Is(err, huh.ErrUserAborted) {
		*value = false
		return nil
	}
	return err
}

// Ask returns true immediately when assumeYes is set, otherwise it asks c.
func Ask(c Confirmer, assumeYes bool, title string) (bool, error) {
	if assumeYes {
		return true, nil
	}
	answer := false
	if err := c.Confirm(title, &answer); err != nil {
		return false, err
	}
	return answer, nil
}
