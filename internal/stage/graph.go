package stage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDuplicateStage reports two stages registered under one name.
	ErrDuplicateStage = errors.New("duplicate stage")
	// ErrDuplicateProducer reports two stages writing the same area.
	ErrDuplicateProducer = errors.New("area produced by more than one stage")
	// ErrCycle reports a dependency cycle between stages.
	ErrCycle = errors.New("stage dependency cycle")
	// ErrUnknownStage reports a stage name that is not part of the graph.
	ErrUnknownStage = errors.New("unknown stage")
)

// Graph orders stages by the areas they declare. A stage depends on the
// producer of every area it reads; a stage reading its own output does not
// depend on itself.
type Graph struct {
	order  []Handler
	levels [][]Handler
	byName map[string]Handler
	deps   map[string][]string
}

// NewGraph validates the declared inputs and outputs and computes the run
// order. Ties are broken by registration order so the result is stable.
func NewGraph(stages ...Handler) (*Graph, error) {
	byName := make(map[string]Handler, len(stages))
	index := make(map[string]int, len(stages))
	producer := make(map[string]string)
	for i, h := range stages {
		name := h.Name()
		if _, ok := byName[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStage, name)
		}
		byName[name] = h
		index[name] = i
		for _, area := range h.Outputs() {
			if prev, ok := producer[area]; ok {
				return nil, fmt.Errorf("%w: %s (%s, %s)", ErrDuplicateProducer, area, prev, name)
			}
			producer[area] = name
		}
	}

	deps := make(map[string][]string, len(stages))
	dependents := make(map[string][]string, len(stages))
	indegree := make(map[string]int, len(stages))
	for _, h := range stages {
		seen := map[string]struct{}{}
		for _, area := range h.Inputs() {
			from, ok := producer[area]
			if !ok || from == h.Name() {
				continue
			}
			if _, dup := seen[from]; dup {
				continue
			}
			seen[from] = struct{}{}
			deps[h.Name()] = append(deps[h.Name()], from)
			dependents[from] = append(dependents[from], h.Name())
			indegree[h.Name()]++
		}
	}

	level := make(map[string]int, len(stages))
	ready := make([]string, 0, len(stages))
	for _, h := range stages {
		if indegree[h.Name()] == 0 {
			ready = append(ready, h.Name())
		}
	}

	order := make([]Handler, 0, len(stages))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return index[ready[i]] < index[ready[j]] })
		name := ready[0]
		ready = ready[1:]
		order = append(order, byName[name])
		for _, next := range dependents[name] {
			if level[name]+1 > level[next] {
				level[next] = level[name] + 1
			}
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}
	if len(order) != len(stages) {
		var stuck []string
		for _, h := range stages {
			if indegree[h.Name()] > 0 {
				stuck = append(stuck, h.Name())
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(stuck, ", "))
	}

	var levels [][]Handler
	for _, h := range order {
		l := level[h.Name()]
		for len(levels) <= l {
			levels = append(levels, nil)
		}
		levels[l] = append(levels[l], h)
	}

	return &Graph{order: order, levels: levels, byName: byName, deps: deps}, nil
}

// Order returns the stages in dependency order.
func (g *Graph) Order() []Handler {
	return append([]Handler(nil), g.order...)
}

// Levels groups stages whose dependencies are all in earlier groups. Stages
// in the same group may run concurrently.
func (g *Graph) Levels() [][]Handler {
	out := make([][]Handler, len(g.levels))
	for i, level := range g.levels {
		out[i] = append([]Handler(nil), level...)
	}
	return out
}

// Lookup returns the stage registered under name.
func (g *Graph) Lookup(name string) (Handler, bool) {
	h, ok := g.byName[name]
	return h, ok
}

// DependsOn returns the names of the stages name reads from.
func (g *Graph) DependsOn(name string) []string {
	return append([]string(nil), g.deps[name]...)
}

// Select filters the graph order down to the named stages. An empty list
// selects everything.
func (g *Graph) Select(names []string) ([]Handler, error) {
	if len(names) == 0 {
		return g.Order(), nil
	}
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := g.byName[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStage, name)
		}
		wanted[name] = struct{}{}
	}
	out := make([]Handler, 0, len(wanted))
	for _, h := range g.order {
		if _, ok := wanted[h.Name()]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

// Names returns stage names in dependency order.
func Names(handlers []Handler) []string {
	names := make([]string, 0, len(handlers))
	for _, h := range handlers {
		names = append(names, h.Name())
	}
	return names
}
