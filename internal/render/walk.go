package render

import "github.com/ppiankov/cartographer/internal/model"

// node is one element placed in the display tree
type node struct {
	el       model.ArgumentElement
	depth    int
	last     []bool // for each ancestor level, whether it was the last sibling
	attached bool   // false for elements not reachable from any root
}

// layout orders elements depth-first from the roots. Elements never reached
// from a root (cycles, dangling parents) follow as unattached top-level
// entries. Elements sharing a duplicated id are each shown once, but only the
// first is expanded.
func layout(m *model.ArgumentMap) []node {
	var out []node
	seen := make(map[string]bool)
	shown := make(map[string]int)

	var visit func(el model.ArgumentElement, depth int, last []bool, attached bool)
	visit = func(el model.ArgumentElement, depth int, last []bool, attached bool) {
		seen[el.ID] = true
		shown[el.ID]++
		out = append(out, node{el: el, depth: depth, last: last, attached: attached})

		var children []model.ArgumentElement
		for _, c := range m.Children(el.ID) {
			if !seen[c.ID] {
				children = append(children, c)
			}
		}
		for i, c := range children {
			if seen[c.ID] {
				continue
			}
			next := append(append([]bool{}, last...), i == len(children)-1)
			visit(c, depth+1, next, attached)
		}
	}

	roots := m.Roots()
	for i, root := range roots {
		if !seen[root.ID] {
			visit(root, 0, []bool{i == len(roots)-1}, true)
		}
	}
	occurrence := make(map[string]int)
	for _, el := range m.Elements {
		occurrence[el.ID]++
		if occurrence[el.ID] > shown[el.ID] {
			visit(el, 0, []bool{true}, false)
		}
	}
	return out
}

var typeMarkers = map[model.ElementType]string{
	model.ElementThesis:          "●",
	model.ElementSupportingClaim: "◆",
	model.ElementEvidence:        "▪",
	model.ElementCounterclaim:    "✦",
	model.ElementLogicalFallacy:  "⚠",
}

func marker(t model.ElementType) string {
	if m, ok := typeMarkers[t]; ok {
		return m
	}
	return "○"
}
