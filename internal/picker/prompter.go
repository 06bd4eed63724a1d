package picker

import (
	"context"
	"io"

	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/jpx/internal/exportjar"
)

// program runs one picker as a full-screen bubbletea program.
type program struct {
	m      Model
	width  int
	height int
	action Action
}

func (p *program) Init() tea.Cmd { return nil }

func (p *program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		p.width, p.height = ws.Width, ws.Height
		return p, nil
	}
	action, cmd := p.m.HandleMsg(msg)
	if action != nil {
		p.action = action
		return p, tea.Quit
	}
	return p, cmd
}

func (p *program) View() tea.View {
	w := p.width * 80 / 100
	h := p.height * 80 / 100
	if h < 10 {
		h = 10
	}
	v := tea.NewView(p.m.View(w, h))
	v.AltScreen = true
	return v
}

// Prompter shows exportjar pick lists in the terminal.
type Prompter struct {
	Colors Colors
	// Input and Output default to the process terminal when nil.
	Input  io.Reader
	Output io.Writer
}

// Pick runs a picker for req until the user accepts, goes back, dismisses it
// or ctx is done.
func (p *Prompter) Pick(ctx context.Context, req exportjar.PickRequest) (exportjar.PickResult, error) {
	items := make([]Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = Item{Label: it.Label, Desc: it.Description, Value: it.Value, Picked: it.Picked}
	}
	prog := &program{m: New(items, Options{
		Title:       req.Title,
		Placeholder: req.Placeholder,
		Multi:       req.Multi,
		Back:        req.ShowBack,
		Colors:      p.Colors,
	})}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.Input != nil {
		opts = append(opts, tea.WithInput(p.Input))
	}
	if p.Output != nil {
		opts = append(opts, tea.WithOutput(p.Output))
	}
	if _, err := tea.NewProgram(prog, opts...).Run(); err != nil {
		if ctx.Err() != nil {
			return exportjar.PickResult{Action: exportjar.PickDismissed}, ctx.Err()
		}
		return exportjar.PickResult{}, err
	}
	return toResult(prog.action), nil
}

func toResult(a Action) exportjar.PickResult {
	switch a := a.(type) {
	case ActionBack:
		return exportjar.PickResult{Action: exportjar.PickBack}
	case ActionAccept:
		out := make([]exportjar.Item, len(a.Items))
		for i, it := range a.Items {
			out[i] = exportjar.Item{Label: it.Label, Description: it.Desc, Value: it.Value, Picked: it.Picked}
		}
		return exportjar.PickResult{Action: exportjar.PickAccepted, Items: out}
	}
	return exportjar.PickResult{Action: exportjar.PickDismissed}
}
