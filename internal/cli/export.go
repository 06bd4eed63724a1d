package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/jpx/internal/exportjar"
	"github.com/xonecas/jpx/internal/jdtls"
	"github.com/xonecas/jpx/internal/picker"
	"github.com/xonecas/jpx/internal/store"
)

func (c *CLI) exportCommand() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a project as a jar file",
		Long: `Export builds the workspace, then asks for the project, the main class and
the classpath elements to package. The jar is written to <project>/<project>.jar.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.startSession(ctx, false)
			if err != nil {
				return err
			}
			defer s.close()
			history := c.openHistory()
			defer history.Close()

			_, err = c.runExport(ctx, s, history, nil, reveal)
			switch {
			case err == nil, errors.Is(err, exportjar.ErrCancelled):
				return nil
			default:
				// The notifier already printed it.
				return fmt.Errorf("%w: %w", ErrReported, err)
			}
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "show the jar in the file browser when done")
	return cmd
}

func (c *CLI) runExport(ctx context.Context, s *session, history *store.History, target *jdtls.NodeData, reveal bool) (string, error) {
	opts := exportjar.Options{
		Service:             s.jdt,
		Folders:             s.folders,
		Prompter:            &picker.Prompter{Colors: picker.ColorsFromPalette(c.palette())},
		Progress:            progressPrinter{c},
		Notifier:            &notifier{c: c, reveal: reveal},
		ProceedOnBuildError: c.cfg.Export.ProceedOnBuildError,
	}
	if history != nil {
		opts.History = history
	}
	return exportjar.New(opts).Run(ctx, target)
}

type progressPrinter struct{ c *CLI }

func (p progressPrinter) Report(_ int, message string) {
	p.c.printInfo("%s", message)
}

type notifier struct {
	c      *CLI
	reveal bool
}

func (n *notifier) Success(path string) {
	n.c.printSuccess("Successfully exported jar to %s", path)
	if !n.reveal {
		return
	}
	if err := exportjar.RevealCommand(path).Start(); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("cli: reveal failed")
		n.c.printWarning("%s failed: %v", exportjar.RevealLabel(), err)
	}
}

func (n *notifier) Failure(err error) {
	if errors.Is(err, exportjar.ErrCancelled) {
		n.c.printWarning("Export cancelled")
		return
	}
	n.c.printError("Export jar failed: %v", err)
}

func (c *CLI) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent jar exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := c.openHistory()
			if h == nil {
				c.printWarning("History is disabled")
				return nil
			}
			defer h.Close()

			recs, err := h.ListExports(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list exports: %w", err)
			}
			if len(recs) == 0 {
				c.printInfo("No exports yet")
				return nil
			}
			for _, r := range recs {
				when := r.Created.Format("2006-01-02 15:04")
				switch r.Outcome {
				case store.OutcomeSuccess:
					main := r.MainClass
					if main == "" {
						main = "no main class"
					}
					c.printSuccess("%s  %s  %s", when, r.Destination, styleDim.Render(fmt.Sprintf("(%s, %d entries)", main, r.Entries)))
				case store.OutcomeCancelled:
					c.printWarning("%s  cancelled", when)
				default:
					c.printError("%s  %s", when, r.Message)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records (0 = all)")
	return cmd
}
