package catalog

import (
	"slices"
	"sort"
)

// Catalog is an immutable, validated set of modules with their dependency
// DAG. Build one with New; it is safe for concurrent use.
type Catalog struct {
	modules    []Module
	byID       map[string]*Module
	roots      []Module
	dependents map[string][]string
	topoOrder  []Module
	topoIndex  map[string]int
}

// New validates the module set and precomputes its indices.
func New(modules []Module) (*Catalog, error) {
	if err := validateModules(modules); err != nil {
		return nil, err
	}
	return build(modules), nil
}

// MustNew is like New but panics on an invalid module set.
func MustNew(modules []Module) *Catalog {
	c, err := New(modules)
	if err != nil {
		panic(err)
	}
	return c
}

func build(modules []Module) *Catalog {
	c := &Catalog{
		modules:    make([]Module, len(modules)),
		byID:       make(map[string]*Module, len(modules)),
		dependents: make(map[string][]string),
		topoIndex:  make(map[string]int, len(modules)),
	}
	for i, m := range modules {
		m.Dependencies = slices.Clone(m.Dependencies)
		c.modules[i] = m
	}

	for i := range c.modules {
		c.byID[c.modules[i].ID] = &c.modules[i]
	}

	for i := range c.modules {
		for _, depID := range c.modules[i].Dependencies {
			c.dependents[depID] = append(c.dependents[depID], c.modules[i].ID)
		}
	}

	// Kahn's algorithm. Ties are broken by declaration order so the module
	// map renders in the order the curriculum lists modules.
	declIndex := make(map[string]int, len(c.modules))
	inDegree := make(map[string]int, len(c.modules))
	for i, m := range c.modules {
		declIndex[m.ID] = i
		inDegree[m.ID] = len(m.Dependencies)
	}

	var queue []string
	for _, m := range c.modules {
		if inDegree[m.ID] == 0 {
			queue = append(queue, m.ID)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		c.topoOrder = append(c.topoOrder, *c.byID[id])

		next := slices.Clone(c.dependents[id])
		sort.Slice(next, func(i, j int) bool { return declIndex[next[i]] < declIndex[next[j]] })
		for _, depID := range next {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	for i, m := range c.topoOrder {
		c.topoIndex[m.ID] = i
	}

	for _, m := range c.modules {
		if m.IsSeed() {
			c.roots = append(c.roots, m)
		}
	}
	return c
}

// Get returns a module by ID.
func (c *Catalog) Get(id string) (Module, error) {
	m, ok := c.byID[id]
	if !ok {
		return Module{}, &NotFoundError{ID: id}
	}
	out := *m
	out.Dependencies = slices.Clone(m.Dependencies)
	return out, nil
}

// Has reports whether id names a module in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// DependenciesOf returns the direct dependency IDs of a module.
func (c *Catalog) DependenciesOf(id string) ([]string, error) {
	m, ok := c.byID[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return slices.Clone(m.Dependencies), nil
}

// PassThresholdOf returns the minimum passing score of a module.
func (c *Catalog) PassThresholdOf(id string) (int, error) {
	m, ok := c.byID[id]
	if !ok {
		return 0, &NotFoundError{ID: id}
	}
	return m.PassThreshold, nil
}

// All returns every module in declaration order.
func (c *Catalog) All() []Module {
	return c.clone(c.modules)
}

// Len returns the number of modules.
func (c *Catalog) Len() int {
	return len(c.modules)
}

// Roots returns the modules with no dependencies.
func (c *Catalog) Roots() []Module {
	return c.clone(c.roots)
}

// Dependents returns modules that list id as a direct dependency.
func (c *Catalog) Dependents(id string) []Module {
	ids := c.dependents[id]
	out := make([]Module, 0, len(ids))
	for _, depID := range ids {
		if m, ok := c.byID[depID]; ok {
			out = append(out, *m)
		}
	}
	return c.clone(out)
}

// TopologicalOrder returns every module after all of its dependencies.
func (c *Catalog) TopologicalOrder() []Module {
	return c.clone(c.topoOrder)
}

// Satisfied reports whether every dependency of id is in completed.
// Seed modules are always satisfied.
func (c *Catalog) Satisfied(id string, completed map[string]bool) (bool, error) {
	m, ok := c.byID[id]
	if !ok {
		return false, &NotFoundError{ID: id}
	}
	for _, depID := range m.Dependencies {
		if !completed[depID] {
			return false, nil
		}
	}
	return true, nil
}

// Blocked returns, in topological order, the modules with at least one
// dependency missing from completed.
func (c *Catalog) Blocked(completed map[string]bool) []Module {
	var out []Module
	for _, m := range c.topoOrder {
		if ok, _ := c.Satisfied(m.ID, completed); !ok {
			out = append(out, m)
		}
	}
	return c.clone(out)
}

func (c *Catalog) clone(in []Module) []Module {
	out := make([]Module, len(in))
	for i, m := range in {
		m.Dependencies = slices.Clone(m.Dependencies)
		out[i] = m
	}
	return out
}
