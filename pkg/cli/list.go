package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/grove/internal/presentation/graph"
	"github.com/aretw0/grove/pkg/domain"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the specification tree with structural addresses",
		Long:  `Prints every context and example with the address that selects it. --output mermaid exports the tree as a Mermaid diagram (graph TD).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := a.setup(cmd)
			if err != nil {
				return err
			}
			tree, err := suite.Tree()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch output {
			case "text":
				return printTree(w, tree)
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(tree.Root.Children)
			case "mermaid":
				_, err := fmt.Fprint(w, graph.GenerateMermaid(tree, nil))
				return err
			default:
				return fmt.Errorf("unknown output %q: expected text, json or mermaid", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output: text, json or mermaid")
	return cmd
}

func printTree(w io.Writer, tree *domain.Tree) error {
	return tree.Walk(func(n *domain.Node) error {
		line := strings.Repeat("  ", n.Depth()) + n.Address.String() + " " + n.Description
		switch {
		case n.Pending():
			line += " (pending)"
		case n.Shared != "":
			line += fmt.Sprintf(" (shared %q)", n.Shared)
		}
		if n.Options.Timeout != nil {
			line += fmt.Sprintf(" [timeout %s]", *n.Options.Timeout)
		}
		_, err := fmt.Fprintln(w, line)
		return err
	})
}
