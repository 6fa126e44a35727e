package catalog

import (
	"fmt"
	"strings"
)

// validateModules performs all structural checks on a module set and
// returns one error listing every problem found.
func validateModules(modules []Module) error {
	var errs []string

	if len(modules) == 0 {
		return fmt.Errorf("module catalog validation failed:\n  catalog is empty")
	}

	idSet := make(map[string]bool, len(modules))
	for _, m := range modules {
		if m.ID == "" {
			errs = append(errs, fmt.Sprintf("module %q has an empty ID", m.Name))
			continue
		}
		if idSet[m.ID] {
			errs = append(errs, fmt.Sprintf("duplicate module ID: %q", m.ID))
		}
		idSet[m.ID] = true
	}

	for _, m := range modules {
		if m.Name == "" {
			errs = append(errs, fmt.Sprintf("module %q has an empty name", m.ID))
		}
		if m.PassThreshold < 0 || m.PassThreshold > 100 {
			errs = append(errs, fmt.Sprintf("module %q: pass threshold must be in [0, 100], got %d", m.ID, m.PassThreshold))
		}
		seen := make(map[string]bool, len(m.Dependencies))
		for _, depID := range m.Dependencies {
			switch {
			case depID == m.ID:
				errs = append(errs, fmt.Sprintf("module %q depends on itself", m.ID))
			case !idSet[depID]:
				errs = append(errs, fmt.Sprintf("module %q references nonexistent dependency %q", m.ID, depID))
			case seen[depID]:
				errs = append(errs, fmt.Sprintf("module %q lists dependency %q twice", m.ID, depID))
			}
			seen[depID] = true
		}
	}

	// Cycle check (Kahn's algorithm). Dangling edges were reported above and
	// are ignored here.
	inDegree := make(map[string]int, len(modules))
	adj := make(map[string][]string)
	for _, m := range modules {
		inDegree[m.ID] += 0
		for _, depID := range m.Dependencies {
			if !idSet[depID] {
				continue
			}
			inDegree[m.ID]++
			adj[depID] = append(adj[depID], m.ID)
		}
	}

	var queue []string
	for _, m := range modules {
		if inDegree[m.ID] == 0 {
			queue = append(queue, m.ID)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range adj[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if visited < len(idSet) {
		var cycle []string
		for _, m := range modules {
			if inDegree[m.ID] > 0 {
				cycle = append(cycle, m.ID)
			}
		}
		errs = append(errs, fmt.Sprintf("cycle detected involving modules: %s", strings.Join(cycle, ", ")))
	}

	hasRoot := false
	for _, m := range modules {
		if m.IsSeed() {
			hasRoot = true
			break
		}
	}
	if !hasRoot {
		errs = append(errs, "no seed modules found (at least one module must have no dependencies)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("module catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
