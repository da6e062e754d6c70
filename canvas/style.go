package canvas

import (
	"slices"

	biostream "github.com/bigyambat/BioStream"
	"github.com/bigyambat/BioStream/palette"
)

// MinimapColor is the minimap fill for a node in status s.
func MinimapColor(s biostream.ExecutionStatus) string {
	switch s {
	case biostream.StatusCompleted:
		return "#10b981"
	case biostream.StatusRunning:
		return "#3b82f6"
	case biostream.StatusFailed:
		return "#ef4444"
	default:
		return "#64748b"
	}
}

// Palette describes one coloured surface.
type Palette struct {
	Background string `json:"background"`
	Border     string `json:"border,omitempty"`
	Text       string `json:"text"`
}

// NodeStyle is everything the front-end needs to paint a node.
type NodeStyle struct {
	Icon     string  `json:"icon"`
	Status   Palette `json:"status"`
	Target   Palette `json:"target"`
	Border   string  `json:"border"`
	Selected bool    `json:"selected,omitempty"`
	Hovered  bool    `json:"hovered,omitempty"`
	Pulse    bool    `json:"pulse,omitempty"`
	Minimap  string  `json:"minimap"`
}

// EdgeStyle is everything the front-end needs to paint an edge.
type EdgeStyle struct {
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Glow        bool    `json:"glow,omitempty"`
}

func statusPalette(s biostream.ExecutionStatus) Palette {
	switch s {
	case biostream.StatusCompleted:
		return Palette{Background: "#f0fdf4", Border: "#bbf7d0", Text: "#166534"}
	case biostream.StatusRunning:
		return Palette{Background: "#eff6ff", Border: "#bfdbfe", Text: "#1e40af"}
	case biostream.StatusFailed:
		return Palette{Background: "#fef2f2", Border: "#fecaca", Text: "#991b1b"}
	case biostream.StatusPending:
		return Palette{Background: "#fefce8", Border: "#fef08a", Text: "#854d0e"}
	default:
		return Palette{Background: "#f9fafb", Border: "#e5e7eb", Text: "#1f2937"}
	}
}

func targetPalette(t biostream.ExecutionTarget) Palette {
	switch t {
	case biostream.TargetLocal:
		return Palette{Background: "#f1f5f9", Text: "#334155"}
	case biostream.TargetHPC:
		return Palette{Background: "#f3e8ff", Text: "#7e22ce"}
	default:
		return Palette{Background: "#f3f4f6", Text: "#374151"}
	}
}

// StyleNode resolves the presentation of n. Nodes without an icon get the
// icon for their type, and unknown types the generic one.
func StyleNode(n biostream.Node, selected, hovered bool) NodeStyle {
	icon := n.Icon
	if icon == "" {
		icon = palette.IconFor(n.Type)
	}
	border := "#e2e8f0"
	switch {
	case selected:
		border = "#3b82f6"
	case hovered:
		border = "#cbd5e1"
	}
	return NodeStyle{
		Icon:     icon,
		Status:   statusPalette(n.Status),
		Target:   targetPalette(n.ExecutionTarget),
		Border:   border,
		Selected: selected,
		Hovered:  hovered,
		Pulse:    n.Status == biostream.StatusRunning,
		Minimap:  MinimapColor(n.Status),
	}
}

// StyleEdge resolves the presentation of an edge.
func StyleEdge(selected, hovered bool) EdgeStyle {
	if selected || hovered {
		return EdgeStyle{Stroke: "#2563eb", StrokeWidth: 5, Glow: true}
	}
	return EdgeStyle{Stroke: "#3b82f6", StrokeWidth: 3}
}

// Hover records the element under the pointer; "" clears it. Both the old
// and new element are marked dirty.
func (c *Canvas) Hover(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hovered == id {
		return
	}
	c.dirty.mark(c.hovered)
	c.dirty.mark(id)
	c.hovered = id
}

// Hovered returns the element under the pointer.
func (c *Canvas) Hovered() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hovered
}

// Scene is a styled snapshot of the graph.
type Scene struct {
	Viewport biostream.Viewport   `json:"viewport"`
	Nodes    map[string]NodeStyle `json:"nodes"`
	Edges    map[string]EdgeStyle `json:"edges"`
}

// Scene styles every node and edge using the current selection and hover.
func (c *Canvas) Scene() Scene {
	p := c.ed.Project()
	sel := c.ed.Selection()
	hovered := c.Hovered()

	s := Scene{
		Viewport: c.ed.Viewport(),
		Nodes:    make(map[string]NodeStyle, len(p.Nodes)),
		Edges:    make(map[string]EdgeStyle, len(p.Edges)),
	}
	for _, n := range p.Nodes {
		s.Nodes[n.ID] = StyleNode(n, slices.Contains(sel.NodeIDs, n.ID), hovered == n.ID)
	}
	for _, e := range p.Edges {
		s.Edges[e.ID] = StyleEdge(slices.Contains(sel.EdgeIDs, e.ID), hovered == e.ID)
	}
	return s
}
