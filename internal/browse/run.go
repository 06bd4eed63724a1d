package browse

import (
	"context"
	"io"

	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/jpx/internal/explorer"
)

// Run shows the browser until the user quits or asks for an export.
// Provider change events, e.g. from the file watcher, reload the tree.
func Run(ctx context.Context, opts Options, in io.Reader, out io.Writer) (Result, error) {
	m := New(ctx, opts)
	popts := []tea.ProgramOption{tea.WithContext(ctx)}
	if in != nil {
		popts = append(popts, tea.WithInput(in))
	}
	if out != nil {
		popts = append(popts, tea.WithOutput(out))
	}
	prog := tea.NewProgram(m, popts...)

	unsubscribe := opts.Provider.Subscribe(func(*explorer.Node) {
		go prog.Send(changedMsg{})
	})
	defer unsubscribe()

	if _, err := prog.Run(); err != nil {
		return Result{}, err
	}
	return m.Result(), nil
}
