package canvas

import (
	"slices"

	"go.uber.org/zap"
)

// MenuKind says what a context menu was opened on.
type MenuKind string

const (
	MenuNode MenuKind = "node"
	MenuEdge MenuKind = "edge"
)

// Action is a context menu entry.
type Action string

const (
	ActionCopy     Action = "copy"
	ActionCut      Action = "cut"
	ActionDelete   Action = "delete"
	ActionEdit     Action = "edit"
	ActionRun      Action = "run"
	ActionStop     Action = "stop"
	ActionSettings Action = "settings"
)

// MenuItem is one row of a context menu.
type MenuItem struct {
	Action   Action `json:"action"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled,omitempty"`
	Danger   bool   `json:"danger,omitempty"`
}

// Menu is an open context menu.
type Menu struct {
	Kind     MenuKind   `json:"kind"`
	TargetID string     `json:"targetId"`
	At       Point      `json:"at"`
	Items    []MenuItem `json:"items"`
}

func nodeMenuItems() []MenuItem {
	return []MenuItem{
		{Action: ActionCopy, Label: "Copy Node"},
		{Action: ActionCut, Label: "Cut Node"},
		{Action: ActionDelete, Label: "Delete Node", Danger: true},
		{Action: ActionEdit, Label: "Edit", Disabled: true},
		{Action: ActionRun, Label: "Run", Disabled: true},
		{Action: ActionStop, Label: "Stop", Disabled: true},
		{Action: ActionSettings, Label: "Settings", Disabled: true},
	}
}

func edgeMenuItems() []MenuItem {
	return []MenuItem{
		{Action: ActionDelete, Label: "Delete Connection", Danger: true},
	}
}

// OpenNodeMenu opens the context menu for a node at screen point at,
// replacing any open menu. It reports false for an unknown node.
func (c *Canvas) OpenNodeMenu(nodeID string, at Point) bool {
	if _, ok := c.ed.Node(nodeID); !ok {
		return false
	}
	c.setMenu(&Menu{Kind: MenuNode, TargetID: nodeID, At: at, Items: nodeMenuItems()})
	return true
}

// OpenEdgeMenu opens the context menu for an edge.
func (c *Canvas) OpenEdgeMenu(edgeID string, at Point) bool {
	if _, ok := c.ed.Edge(edgeID); !ok {
		return false
	}
	c.setMenu(&Menu{Kind: MenuEdge, TargetID: edgeID, At: at, Items: edgeMenuItems()})
	return true
}

func (c *Canvas) setMenu(m *Menu) {
	c.mu.Lock()
	c.menu = m
	c.mu.Unlock()
}

// Menu returns a copy of the open menu, or nil.
func (c *Canvas) Menu() *Menu {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.menu == nil {
		return nil
	}
	m := *c.menu
	m.Items = slices.Clone(c.menu.Items)
	return &m
}

// CloseMenu dismisses the open menu, if any.
func (c *Canvas) CloseMenu() {
	c.setMenu(nil)
}

// Choose runs action against the menu's target and closes the menu. It
// reports false when no menu is open, the action is not offered or is
// disabled, or the target has gone away in the meantime.
func (c *Canvas) Choose(action Action) bool {
	c.mu.Lock()
	m := c.menu
	c.menu = nil
	c.mu.Unlock()
	if m == nil {
		return false
	}

	i := slices.IndexFunc(m.Items, func(it MenuItem) bool { return it.Action == action })
	if i < 0 || m.Items[i].Disabled {
		return false
	}

	c.log.Debug("menu action", zap.String("kind", string(m.Kind)), zap.String("target", m.TargetID), zap.String("action", string(action)))

	switch m.Kind {
	case MenuNode:
		ids := []string{m.TargetID}
		switch action {
		case ActionCopy:
			return c.ed.Copy(ids) > 0
		case ActionCut:
			return c.mutate(func() bool { return c.ed.Cut(ids) > 0 })
		case ActionDelete:
			return c.mutate(func() bool { return c.ed.DeleteNode(m.TargetID) })
		}
	case MenuEdge:
		if action == ActionDelete {
			return c.mutate(func() bool { return c.ed.DeleteEdge(m.TargetID) })
		}
	}
	return false
}
