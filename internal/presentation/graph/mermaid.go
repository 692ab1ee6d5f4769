package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/grove/pkg/domain"
)

// Overlay contains run results to visualize on the graph.
type Overlay struct {
	Results []domain.ExecutionResult
}

// GenerateMermaid produces a Mermaid flowchart of the specification tree.
// It applies semantic styling:
// - Context: [Rectangle]
// - Grafted shared example group: [[Subroutine]]
// - Example: ([Stadium])
// - Pending example: ([Stadium]) with a dashed edge
// It also colours examples by status if an overlay is provided.
func GenerateMermaid(tree *domain.Tree, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    root((\"suite\"))\n")

	_ = tree.Walk(func(n *domain.Node) error {
		safeID := mermaidID(n.Address)

		opener, closer := "[", "]"
		switch {
		case n.IsExample():
			opener, closer = "([", "])"
		case n.Shared != "":
			opener, closer = "[[", "]]"
		}

		label := escapeLabel(n.Description)
		if n.Options.Timeout != nil {
			label = fmt.Sprintf("%s <br/> ⏱️ %s", label, *n.Options.Timeout)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s %s\"%s\n", safeID, opener, n.Address, label, closer))

		parent := "root"
		if !n.Parent.IsRoot() {
			parent = mermaidID(n.Parent.Address)
		}
		arrow := "-->"
		if n.Pending() {
			arrow = "-.->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", parent, arrow, safeID))
		return nil
	})

	if overlay != nil && len(overlay.Results) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef passed fill:#dcfce7,stroke:#15803d,color:#000;\n")
		sb.WriteString("    classDef failed fill:#fee2e2,stroke:#b91c1c,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef pending fill:#fef9c3,stroke:#a16207,color:#000;\n")

		for _, res := range overlay.Results {
			class := "passed"
			switch {
			case res.Failed():
				class = "failed"
			case res.Status == domain.StatusPending:
				class = "pending"
			}
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", mermaidID(res.Address), class))
		}
	}

	return sb.String()
}

func mermaidID(addr domain.Address) string {
	parts := make([]string, len(addr))
	for i, idx := range addr {
		parts[i] = fmt.Sprint(idx)
	}
	return "n" + strings.Join(parts, "_")
}

func escapeLabel(s string) string {
	// Escape double quotes for Mermaid labels
	return strings.ReplaceAll(s, "\"", "'")
}
