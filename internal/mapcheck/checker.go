// Package mapcheck inspects the structure of a returned argument map.
// Its findings are informational and never change an analysis outcome.
package mapcheck

import (
	"fmt"
	"sort"

	"github.com/ppiankov/cartographer/internal/model"
)

// Checker computes structural diagnostics for argument maps
type Checker struct{}

// NewChecker creates a new checker
func NewChecker() *Checker {
	return &Checker{}
}

// Check computes counts, depth and signals for m
func (c *Checker) Check(m model.ArgumentMap) model.Diagnostics {
	diag := model.Diagnostics{
		Counts:  make(map[model.ElementType]int),
		Signals: []model.Signal{},
	}

	if len(m.Elements) == 0 {
		diag.Signals = append(diag.Signals, model.Signal{
			Type:        model.SignalEmptyMap,
			Severity:    model.SeverityWarning,
			Description: "The service returned no argument elements",
		})
		return diag
	}

	for _, e := range m.Elements {
		diag.Counts[e.Type]++
	}

	index, dupes := indexElements(m.Elements)
	if len(dupes) > 0 {
		diag.Signals = append(diag.Signals, model.Signal{
			Type:        model.SignalDuplicateID,
			Severity:    model.SeverityCritical,
			Description: fmt.Sprintf("%d element id(s) used more than once", len(dupes)),
			Data:        map[string]interface{}{"ids": dupes},
		})
	}

	if sig, ok := c.checkParents(m.Elements, index); ok {
		diag.Signals = append(diag.Signals, sig)
	}

	cyclic := findCycles(m.Elements, index)
	if len(cyclic) > 0 {
		diag.Signals = append(diag.Signals, model.Signal{
			Type:        model.SignalCycle,
			Severity:    model.SeverityCritical,
			Description: fmt.Sprintf("%d element(s) are part of a parent cycle", len(cyclic)),
			Data:        map[string]interface{}{"ids": cyclic},
		})
	}

	diag.Signals = append(diag.Signals, c.checkRoots(m)...)

	if sig, ok := c.checkTypes(m.Elements); ok {
		diag.Signals = append(diag.Signals, sig)
	}

	unsupported, coverage := c.checkCoverage(m)
	diag.UnsupportedClaims = unsupported
	diag.Signals = append(diag.Signals, coverage)

	if n := diag.Counts[model.ElementLogicalFallacy]; n > 0 {
		diag.Signals = append(diag.Signals, model.Signal{
			Type:        model.SignalFallacies,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("%d logical fallac%s identified", n, plural(n, "y", "ies")),
			Data:        map[string]interface{}{"count": n},
		})
	}

	diag.Depth = depth(m.Elements, index)

	return diag
}

// indexElements maps ids to their first position and reports duplicates
func indexElements(elements []model.ArgumentElement) (map[string]int, []string) {
	index := make(map[string]int, len(elements))
	seen := make(map[string]bool)
	var dupes []string
	for i, e := range elements {
		if _, exists := index[e.ID]; exists {
			if !seen[e.ID] {
				seen[e.ID] = true
				dupes = append(dupes, e.ID)
			}
			continue
		}
		index[e.ID] = i
	}
	return index, dupes
}

// checkParents flags elements whose parent id does not resolve
func (c *Checker) checkParents(elements []model.ArgumentElement, index map[string]int) (model.Signal, bool) {
	var dangling []string
	for _, e := range elements {
		if e.IsRoot() {
			continue
		}
		if _, ok := index[e.Parent()]; !ok {
			dangling = append(dangling, e.ID)
		}
	}
	if len(dangling) == 0 {
		return model.Signal{}, false
	}
	return model.Signal{
		Type:        model.SignalDanglingParent,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d element(s) reference a parent that does not exist", len(dangling)),
		Data:        map[string]interface{}{"ids": dangling},
	}, true
}

// findCycles returns the ids of elements whose parent chain loops
func findCycles(elements []model.ArgumentElement, index map[string]int) []string {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(elements))
	inCycle := make(map[string]bool)

	for start := range elements {
		if state[start] != unvisited {
			continue
		}
		var path []int
		i := start
		for {
			if state[i] == visiting {
				// Everything on the path from i onwards loops
				for j := len(path) - 1; j >= 0; j-- {
					inCycle[elements[path[j]].ID] = true
					if path[j] == i {
						break
					}
				}
				break
			}
			if state[i] == done {
				break
			}
			state[i] = visiting
			path = append(path, i)

			e := elements[i]
			if e.IsRoot() {
				break
			}
			next, ok := index[e.Parent()]
			if !ok {
				break
			}
			i = next
		}
		for _, p := range path {
			state[p] = done
		}
	}

	ids := make([]string, 0, len(inCycle))
	for id := range inCycle {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// checkRoots expects a single root, ideally the thesis
func (c *Checker) checkRoots(m model.ArgumentMap) []model.Signal {
	roots := m.Roots()
	switch {
	case len(roots) == 0:
		return []model.Signal{{
			Type:        model.SignalRoot,
			Severity:    model.SeverityCritical,
			Description: "No root element; every element has a parent",
		}}
	case len(roots) > 1:
		ids := make([]string, len(roots))
		for i, r := range roots {
			ids[i] = r.ID
		}
		return []model.Signal{{
			Type:        model.SignalRoot,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%d root elements; expected a single thesis", len(roots)),
			Data:        map[string]interface{}{"ids": ids},
		}}
	case roots[0].Type != model.ElementThesis:
		return []model.Signal{{
			Type:        model.SignalRoot,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Root element is a %s, not a Thesis", roots[0].Type),
			Data:        map[string]interface{}{"id": roots[0].ID},
		}}
	}
	return nil
}

func (c *Checker) checkTypes(elements []model.ArgumentElement) (model.Signal, bool) {
	unknown := make(map[string]int)
	for _, e := range elements {
		if !e.Type.Known() {
			unknown[string(e.Type)]++
		}
	}
	if len(unknown) == 0 {
		return model.Signal{}, false
	}
	return model.Signal{
		Type:        model.SignalUnknownType,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d unrecognised element type(s)", len(unknown)),
		Data:        map[string]interface{}{"types": unknown},
	}, true
}

// checkCoverage finds claims with no Evidence anywhere beneath them
func (c *Checker) checkCoverage(m model.ArgumentMap) ([]string, model.Signal) {
	children := make(map[string][]model.ArgumentElement)
	for _, e := range m.Elements {
		if !e.IsRoot() {
			children[e.Parent()] = append(children[e.Parent()], e)
		}
	}

	var hasEvidence func(id string, seen map[string]bool) bool
	hasEvidence = func(id string, seen map[string]bool) bool {
		if seen[id] {
			return false
		}
		seen[id] = true
		for _, child := range children[id] {
			if child.Type == model.ElementEvidence || hasEvidence(child.ID, seen) {
				return true
			}
		}
		return false
	}

	claims := 0
	var unsupported []string
	for _, e := range m.Elements {
		if e.Type != model.ElementSupportingClaim && e.Type != model.ElementCounterclaim {
			continue
		}
		claims++
		if !hasEvidence(e.ID, make(map[string]bool)) {
			unsupported = append(unsupported, e.ID)
		}
	}

	if claims == 0 {
		return nil, model.Signal{
			Type:        model.SignalEvidenceCoverage,
			Severity:    model.SeverityWarning,
			Description: "No supporting claims or counterclaims in the map",
			Data:        map[string]interface{}{"claims": 0},
		}
	}

	supported := claims - len(unsupported)
	ratio := float64(supported) / float64(claims)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 1.0 {
		severity = model.SeverityWarning
	}

	return unsupported, model.Signal{
		Type:        model.SignalEvidenceCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d claims backed by evidence", supported, claims),
		Data: map[string]interface{}{
			"claims":    claims,
			"supported": supported,
			"ratio":     ratio,
			"formula":   "claims_with_evidence_descendant / (supporting_claims + counterclaims)",
		},
	}
}

// depth returns the longest root-to-leaf chain, ignoring cycles
func depth(elements []model.ArgumentElement, index map[string]int) int {
	memo := make(map[int]int, len(elements))
	var levelOf func(i int, seen map[int]bool) int
	levelOf = func(i int, seen map[int]bool) int {
		if d, ok := memo[i]; ok {
			return d
		}
		if seen[i] {
			return 0
		}
		seen[i] = true

		d := 1
		if e := elements[i]; !e.IsRoot() {
			if p, ok := index[e.Parent()]; ok {
				d = levelOf(p, seen) + 1
			}
		}
		memo[i] = d
		return d
	}

	maxDepth := 0
	for i := range elements {
		if d := levelOf(i, make(map[int]bool)); d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
