package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/grove/internal/presentation/tui"
	"github.com/aretw0/grove/pkg/reporter"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		selectors []string
		markdown  bool
		width     int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the examples of the suite",
		Long: `Runs every example of the suite, or only the subtrees named by --select.

Selectors are structural addresses ("[0:1]", "specs_test.go[0:1]") or
declaration sites ("specs_test.go:42"). Before/after hooks of the ancestors
of a selected node still run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := a.setup(cmd)
			if err != nil {
				return err
			}
			tree, err := suite.Tree()
			if err != nil {
				return err
			}
			addrs, err := tree.ResolveAll(selectors)
			if err != nil {
				return err
			}

			rep := a.reporter(cmd.OutOrStdout(), markdown, width)

			ctx, stop := interruptContext(cmd.Context())
			defer stop()

			report, err := suite.RunWithHooks(ctx, rep.Hooks(), addrs...)
			if err != nil {
				return err
			}
			if err := rep.Finish(report); err != nil {
				return fmt.Errorf("report: %w", err)
			}
			if !report.OK() {
				return ErrExamplesFailed
			}
			return nil
		},
	}

	cmd.Flags().CountP("random", "r", "Toggle the default random ordering (passing it twice restores the default)")
	cmd.Flags().Uint64("seed", 0, "Seed for random ordering (0 picks one)")
	cmd.Flags().Duration("timeout", 0, "Default timeout of bodies and hooks (0 means unlimited)")
	cmd.Flags().String("format", "text", "Output format: text or json")
	cmd.Flags().StringArrayVarP(&selectors, "select", "s", nil, "Run only the node at this selector (repeatable)")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the failure summary as markdown")
	cmd.Flags().IntVar(&width, "width", 80, "Word wrap width of the markdown summary")
	return cmd
}

// reporter picks the output for the configured format.
func (a *app) reporter(w io.Writer, markdown bool, width int) reporter.Reporter {
	if a.cfg.Format == "json" {
		return reporter.NewJSON(w)
	}
	opts := []reporter.TextOption{reporter.WithCommand(a.name)}
	if markdown {
		opts = append(opts, reporter.WithMarkdownSummary(tui.NewRenderer(width)))
	}
	return reporter.NewText(w, opts...)
}

// interruptContext is cancelled on SIGINT or SIGTERM.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
