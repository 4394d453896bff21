package model

// ElementType classifies a node of an argument map
type ElementType string

const (
	ElementThesis          ElementType = "Thesis"
	ElementSupportingClaim ElementType = "Supporting Claim"
	ElementEvidence        ElementType = "Evidence"
	ElementCounterclaim    ElementType = "Counterclaim"
	ElementLogicalFallacy  ElementType = "Logical Fallacy"
)

// ElementTypes lists the known element types in display order
var ElementTypes = []ElementType{
	ElementThesis,
	ElementSupportingClaim,
	ElementEvidence,
	ElementCounterclaim,
	ElementLogicalFallacy,
}

// Known reports whether t is one of the element types the service produces
func (t ElementType) Known() bool {
	for _, known := range ElementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ArgumentElement is a single claim, piece of evidence or fallacy in a map
type ArgumentElement struct {
	ID         string      `json:"id"`
	Type       ElementType `json:"type"`
	ParentID   *string     `json:"parentId"`   // nil only for the root (thesis)
	Content    string      `json:"content"`
	SourceText *string     `json:"sourceText"` // Quoted source passage, if any
}

// IsRoot reports whether the element has no parent
func (e ArgumentElement) IsRoot() bool {
	return e.ParentID == nil || *e.ParentID == ""
}

// Parent returns the parent id or "" for a root element
func (e ArgumentElement) Parent() string {
	if e.ParentID == nil {
		return ""
	}
	return *e.ParentID
}

// ArgumentMap is the structured result of one analysis
type ArgumentMap struct {
	Title    string            `json:"title"`
	Elements []ArgumentElement `json:"elements"`
}

// Children returns the elements whose parent is id, in map order
func (m *ArgumentMap) Children(id string) []ArgumentElement {
	var children []ArgumentElement
	for _, e := range m.Elements {
		if !e.IsRoot() && e.Parent() == id {
			children = append(children, e)
		}
	}
	return children
}

// Roots returns the elements without a parent, in map order
func (m *ArgumentMap) Roots() []ArgumentElement {
	var roots []ArgumentElement
	for _, e := range m.Elements {
		if e.IsRoot() {
			roots = append(roots, e)
		}
	}
	return roots
}

// VisualizationStyle is the display style selected by the user.
// The core carries it through but assigns no behaviour to it.
type VisualizationStyle string

const (
	StyleClassicTree VisualizationStyle = "Classic Tree"
	StyleOrgChart    VisualizationStyle = "Org Chart"
	StylePillarView  VisualizationStyle = "Pillar View"
)

// ParseStyle accepts a style by display name or short alias (tree, org, pillar)
func ParseStyle(s string) (VisualizationStyle, bool) {
	switch s {
	case "", "tree", "classic", string(StyleClassicTree):
		return StyleClassicTree, true
	case "org", "orgchart", "org-chart", string(StyleOrgChart):
		return StyleOrgChart, true
	case "pillar", "pillars", string(StylePillarView):
		return StylePillarView, true
	}
	return "", false
}
