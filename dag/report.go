package dag

import (
	"fmt"
	"strings"
)

// Render formats a plan for human inspection: the declared tasks with
// their dependencies and dependents, followed by the ordered tiers.
// Read-only; rendering has no effect on scheduling.
func Render(p *Plan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Execution plan: %d tasks in %d tiers\n", len(p.Order), len(p.Tiers))
	b.WriteString("\nTasks:\n")
	for _, name := range p.Order {
		fmt.Fprintf(&b, "  %s\n", name)
		fmt.Fprintf(&b, "    depends on: %s\n", listOrNone(p.Dependencies[name]))
		fmt.Fprintf(&b, "    needed by:  %s\n", listOrNone(p.Dependents[name]))
	}

	b.WriteString("\nTiers:\n")
	for i, tier := range p.Tiers {
		fmt.Fprintf(&b, "  %d: %s\n", i, strings.Join(tier, ", "))
	}

	return b.String()
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
