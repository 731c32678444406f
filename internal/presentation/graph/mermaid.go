package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/teamwork/pkg/domain"
)

// Node is one component in the dependency graph.
type Node struct {
	Ref          domain.Ref
	Dependencies []domain.Ref
	// Warned marks components admitted with tolerated violations.
	Warned bool
}

// GenerateMermaid produces a Mermaid flowchart of the component graph.
// It applies semantic styling:
// - Delegator: ((Circle))
// - Fetcher: [/Parallelogram/]
// - Investigator: {Rhombus}
// - Error: [[Subroutine]]
// - Default: [Rectangle]
// Dependencies that are not in nodes are drawn dashed and styled as missing.
func GenerateMermaid(nodes []Node) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	known := make(map[domain.Ref]bool, len(nodes))
	for _, n := range nodes {
		known[n.Ref] = true
	}

	var warned, missing []string
	seenMissing := make(map[domain.Ref]bool)

	for _, n := range nodes {
		id := sanitizeMermaidID(n.Ref.String())
		opener, closer := shape(n.Ref.Kind)
		fmt.Fprintf(&sb, "    %s%s\"%s<br/><small>%s</small>\"%s\n", id, opener, n.Ref.Name, n.Ref.Kind, closer)
		if n.Warned {
			warned = append(warned, id)
		}

		for _, dep := range n.Dependencies {
			to := sanitizeMermaidID(dep.String())
			if known[dep] {
				fmt.Fprintf(&sb, "    %s --> %s\n", id, to)
				continue
			}
			if !seenMissing[dep] {
				seenMissing[dep] = true
				missing = append(missing, to)
				fmt.Fprintf(&sb, "    %s[\"%s?\"]\n", to, dep)
			}
			fmt.Fprintf(&sb, "    %s -.-> %s\n", id, to)
		}
	}

	if len(warned) > 0 || len(missing) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef warned fill:#fff3e0,stroke:#ef6c00,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef missing fill:#ffebee,stroke:#c62828,stroke-dasharray:4,color:#000;\n")
		for _, id := range warned {
			fmt.Fprintf(&sb, "    class %s warned;\n", id)
		}
		for _, id := range missing {
			fmt.Fprintf(&sb, "    class %s missing;\n", id)
		}
	}

	return sb.String()
}

func shape(kind domain.Kind) (string, string) {
	switch kind {
	case domain.KindDelegator:
		return "((", "))"
	case domain.KindFetcher:
		return "[/", "/]"
	case domain.KindInvestigator:
		return "{", "}"
	case domain.KindError:
		return "[[", "]]"
	}
	return "[", "]"
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", ":", "__", " ", "_")
	return r.Replace(id)
}
