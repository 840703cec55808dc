package dag

import (
	"github.com/kbukum/loom/errors"
	"github.com/kbukum/loom/task"
)

// Plan is the validated execution plan of one run: ordered tiers plus the
// full adjacency for inspection.
type Plan struct {
	// Tiers holds task names grouped by execution tier. Every dependency
	// of a tier-i task lies in a tier strictly before i.
	Tiers [][]string
	// Dependencies maps each task to the tasks it consumes, including the
	// implicit dependency on a dynamic item source.
	Dependencies map[string][]string
	// Dependents is the reverse adjacency.
	Dependents map[string][]string
	// Order is the flattened topological order, for reporting.
	Order []string
}

// TierOf returns the tier index of a task, or -1 if it is not in the plan.
func (p *Plan) TierOf(name string) int {
	for i, tier := range p.Tiers {
		for _, n := range tier {
			if n == name {
				return i
			}
		}
	}
	return -1
}

// Build validates the registry and computes its execution plan. seeds names
// externally provided result slots (initial values): dependencies may
// reference them, they create no graph nodes, and they are satisfied before
// tier zero.
//
// Build fails with UNKNOWN_DEPENDENCY if an edge target is neither a
// declared task nor a seed, with INVALID_MAPPED_SIGNATURE if a definition's
// body shape does not match its item source, with DUPLICATE_TASK if a
// declared task name is also seeded, and with CYCLE_DETECTED if Kahn's
// algorithm leaves tasks unplaced.
func Build(reg *task.Registry, seeds []string) (*Plan, error) {
	names := reg.Names()
	seeded := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		seeded[s] = true
	}
	declared := make(map[string]bool, len(names))
	for _, n := range names {
		declared[n] = true
	}

	deps := make(map[string][]string, len(names))
	dependents := make(map[string][]string, len(names))
	inDegree := make(map[string]int, len(names))

	for _, name := range names {
		if seeded[name] {
			return nil, errors.SeedConflict(name)
		}
		def, _ := reg.Get(name)
		if err := def.Validate(); err != nil {
			return nil, err
		}

		edges := make([]string, 0, len(def.DependsOn)+1)
		for _, dep := range def.DependsOn {
			if declared[dep] {
				edges = append(edges, dep)
				continue
			}
			if seeded[dep] {
				continue
			}
			return nil, errors.UnknownDependency(name, dep)
		}

		// A dynamic item source is an implicit dependency.
		if src := def.Source.Task(); src != "" {
			if declared[src] {
				if !containsName(edges, src) {
					edges = append(edges, src)
				}
			} else if !seeded[src] {
				return nil, errors.UnknownDependency(name, src)
			}
		}

		deps[name] = edges
		inDegree[name] = len(edges)
		for _, dep := range edges {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	plan := &Plan{
		Dependencies: deps,
		Dependents:   dependents,
	}

	// Kahn's algorithm, tier by tier. Iterating the declaration order keeps
	// the result deterministic for a given registry.
	placed := make(map[string]bool, len(names))
	remaining := len(names)
	for remaining > 0 {
		var tier []string
		for _, name := range names {
			if placed[name] || inDegree[name] != 0 {
				continue
			}
			tier = append(tier, name)
		}
		if len(tier) == 0 {
			var stuck []string
			for _, name := range names {
				if !placed[name] {
					stuck = append(stuck, name)
				}
			}
			return nil, errors.CycleDetected(stuck)
		}
		for _, name := range tier {
			placed[name] = true
			for _, dep := range dependents[name] {
				inDegree[dep]--
			}
		}
		plan.Tiers = append(plan.Tiers, tier)
		plan.Order = append(plan.Order, tier...)
		remaining -= len(tier)
	}

	return plan, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
