package modelselection

import (
	"fmt"
	"sort"
	"strings"
)

// ParamGrid is an ordered collection of parameter names and their candidate
// values. Candidates enumerates the Cartesian product in a deterministic
// order: the first added parameter varies slowest.
type ParamGrid struct {
	names  []string
	values map[string][]interface{}
}

// NewParamGrid creates an empty grid.
func NewParamGrid() *ParamGrid {
	return &ParamGrid{values: make(map[string][]interface{})}
}

// Add registers candidate values for a parameter. Adding the same name
// again replaces its values without changing its position.
func (g *ParamGrid) Add(name string, values ...interface{}) *ParamGrid {
	if _, exists := g.values[name]; !exists {
		g.names = append(g.names, name)
	}
	g.values[name] = values
	return g
}

// Len returns the number of parameter combinations.
func (g *ParamGrid) Len() int {
	if len(g.names) == 0 {
		return 0
	}
	n := 1
	for _, name := range g.names {
		n *= len(g.values[name])
	}
	return n
}

// Candidates returns every parameter combination as a map.
func (g *ParamGrid) Candidates() []map[string]interface{} {
	if len(g.names) == 0 {
		return nil
	}

	candidates := []map[string]interface{}{{}}
	for _, name := range g.names {
		next := make([]map[string]interface{}, 0, len(candidates)*len(g.values[name]))
		for _, base := range candidates {
			for _, value := range g.values[name] {
				candidate := make(map[string]interface{}, len(base)+1)
				for k, v := range base {
					candidate[k] = v
				}
				candidate[name] = value
				next = append(next, candidate)
			}
		}
		candidates = next
	}
	return candidates
}

// FormatParams renders a parameter map as "name=value, ..." with names
// sorted, for logs and error messages.
func FormatParams(params map[string]interface{}) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%v", name, params[name])
	}
	return strings.Join(parts, ", ")
}
