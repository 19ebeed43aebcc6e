package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/chatlist/pkg/domain"
)

// GenerateMermaid draws a transition as a Mermaid flowchart with the previous
// list on the left and the current list on the right.
// It applies semantic styling:
// - Deleted rows: red, no outgoing edge
// - Inserted rows: green, no incoming edge
// - Moved rows: dotted edge
// - Updated rows: labelled edge
// Rows kept unchanged are joined with a plain edge.
func GenerateMermaid(previous, current []domain.Cell, tr *domain.Transition[domain.Cell]) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	deleted := make(map[int]bool, len(tr.Deletions))
	for _, d := range tr.Deletions {
		deleted[d.Index] = true
	}
	inserted := make(map[int]domain.InsertItem[domain.Cell], len(tr.Insertions))
	for _, ins := range tr.Insertions {
		inserted[ins.Index] = ins
	}
	updated := make(map[int]bool, len(tr.Updates))
	for _, u := range tr.Updates {
		updated[u.Index] = true
	}

	sb.WriteString("    subgraph previous\n")
	for i, c := range previous {
		sb.WriteString(fmt.Sprintf("        %s[\"%s\"]\n", nodeID("p", i), label(c)))
	}
	sb.WriteString("    end\n")
	sb.WriteString("    subgraph current\n")
	for i, c := range current {
		sb.WriteString(fmt.Sprintf("        %s[\"%s\"]\n", nodeID("c", i), label(c)))
	}
	sb.WriteString("    end\n")

	// Edges follow the current order; stable rows are matched by room ID
	prevIndex := make(map[string]int, len(previous))
	for i, c := range previous {
		prevIndex[c.RoomID] = i
	}
	for i, c := range current {
		if ins, ok := inserted[i]; ok {
			if ins.IsMove() {
				sb.WriteString(fmt.Sprintf("    %s -. move .-> %s\n", nodeID("p", *ins.PreviousIndex), nodeID("c", i)))
			}
			continue
		}
		p, ok := prevIndex[c.RoomID]
		if !ok {
			continue
		}
		arrow := "-->"
		if updated[i] {
			arrow = "-- update -->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", nodeID("p", p), arrow, nodeID("c", i)))
	}

	sb.WriteString("\n    %% Operation Styles\n")
	sb.WriteString("    classDef deleted fill:#fee2e2,stroke:#b91c1c,color:#000;\n")
	sb.WriteString("    classDef inserted fill:#dcfce7,stroke:#15803d,color:#000;\n")
	sb.WriteString("    classDef anchor stroke:#fbc02d,stroke-width:4px;\n")
	for i := range previous {
		if deleted[i] {
			sb.WriteString(fmt.Sprintf("    class %s deleted;\n", nodeID("p", i)))
		}
	}
	for i := range current {
		if ins, ok := inserted[i]; ok && !ins.IsMove() {
			sb.WriteString(fmt.Sprintf("    class %s inserted;\n", nodeID("c", i)))
		}
	}
	if tr.ScrollTo != nil && tr.ScrollTo.Index < len(current) {
		sb.WriteString(fmt.Sprintf("    class %s anchor;\n", nodeID("c", tr.ScrollTo.Index)))
	}

	return sb.String()
}

func nodeID(side string, idx int) string {
	return fmt.Sprintf("%s%d", side, idx)
}

func label(c domain.Cell) string {
	// Escape double quotes for Mermaid labels
	return strings.ReplaceAll(c.RoomID+": "+c.Title, "\"", "'")
}
