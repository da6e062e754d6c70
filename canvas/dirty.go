package canvas

import (
	"slices"

	"github.com/bigyambat/BioStream/editor"
)

type dirtySet struct {
	all bool
	ids map[string]struct{}
}

func newDirtySet() dirtySet {
	return dirtySet{ids: make(map[string]struct{})}
}

func (d *dirtySet) mark(ids ...string) {
	for _, id := range ids {
		if id != "" {
			d.ids[id] = struct{}{}
		}
	}
}

// Dirty lists what changed since the last call to TakeDirty. When All is
// set the whole scene must be repainted and IDs is empty.
type Dirty struct {
	All bool     `json:"all,omitempty"`
	IDs []string `json:"ids,omitempty"`
}

// Empty reports whether nothing needs repainting.
func (d Dirty) Empty() bool { return !d.All && len(d.IDs) == 0 }

// TakeDirty returns and resets the repaint set. IDs are sorted.
func (c *Canvas) TakeDirty() Dirty {
	c.mu.Lock()
	defer c.mu.Unlock()
	var d Dirty
	if c.dirty.all {
		d.All = true
	} else if len(c.dirty.ids) > 0 {
		d.IDs = make([]string, 0, len(c.dirty.ids))
		for id := range c.dirty.ids {
			d.IDs = append(d.IDs, id)
		}
		slices.Sort(d.IDs)
	}
	c.dirty = newDirtySet()
	return d
}

// observe is the editor listener.
func (c *Canvas) observe(ev editor.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case editor.ProjectReplaced:
		c.dirty.all = true
		c.menu = nil
	case editor.ViewportChanged:
		c.dirty.all = true
	case editor.SelectionChanged:
		// Both the previously and the newly selected elements change style.
		c.dirty.mark(c.lastSel...)
		sel := slices.Concat(ev.NodeIDs, ev.EdgeIDs)
		c.dirty.mark(sel...)
		c.lastSel = sel
	case editor.ProjectUpdated:
		// Name and description are not drawn on the canvas.
	default:
		c.dirty.mark(ev.NodeIDs...)
		c.dirty.mark(ev.EdgeIDs...)
	}

	if c.menu != nil && (ev.Kind == editor.NodesRemoved || ev.Kind == editor.EdgesRemoved) &&
		slices.Contains(slices.Concat(ev.NodeIDs, ev.EdgeIDs), c.menu.TargetID) {
		c.menu = nil
	}
	if c.hovered != "" && (ev.Kind == editor.NodesRemoved || ev.Kind == editor.EdgesRemoved) &&
		slices.Contains(slices.Concat(ev.NodeIDs, ev.EdgeIDs), c.hovered) {
		c.hovered = ""
	}
}
