package editor

import "slices"

// Selection is the set of selected node and edge ids, in the order they were
// given.
type Selection struct {
	NodeIDs []string `json:"nodeIds"`
	EdgeIDs []string `json:"edgeIds"`
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.NodeIDs) == 0 && len(s.EdgeIDs) == 0
}

// Selection returns a copy of the current selection.
func (e *Editor) Selection() Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Selection{
		NodeIDs: slices.Clone(e.selNodes),
		EdgeIDs: slices.Clone(e.selEdges),
	}
}

// SetSelection replaces the selection. Ids that are not in the graph and
// duplicates are dropped.
func (e *Editor) SetSelection(nodeIDs, edgeIDs []string) {
	e.mu.Lock()
	nodes := make([]string, 0, len(nodeIDs))
	seen := make(map[string]bool)
	for _, id := range nodeIDs {
		if !seen[id] && e.nodeIndex(id) >= 0 {
			seen[id] = true
			nodes = append(nodes, id)
		}
	}
	edges := make([]string, 0, len(edgeIDs))
	clear(seen)
	for _, id := range edgeIDs {
		if !seen[id] && e.edgeIndex(id) >= 0 {
			seen[id] = true
			edges = append(edges, id)
		}
	}
	e.selNodes, e.selEdges = nodes, edges
	ev := e.selectionEventLocked()
	e.enqueue(ev)
	e.mu.Unlock()

	e.flush()
}

// SelectAll selects every node and edge in the graph.
func (e *Editor) SelectAll() {
	e.mu.Lock()
	e.selNodes = make([]string, len(e.project.Nodes))
	for i, n := range e.project.Nodes {
		e.selNodes[i] = n.ID
	}
	e.selEdges = make([]string, len(e.project.Edges))
	for i, edge := range e.project.Edges {
		e.selEdges[i] = edge.ID
	}
	ev := e.selectionEventLocked()
	e.enqueue(ev)
	e.mu.Unlock()

	e.flush()
}

// ClearSelection empties the selection.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	if len(e.selNodes) == 0 && len(e.selEdges) == 0 {
		e.mu.Unlock()
		return
	}
	e.selNodes, e.selEdges = nil, nil
	ev := e.selectionEventLocked()
	e.enqueue(ev)
	e.mu.Unlock()

	e.flush()
}

// Removal lists what a bulk delete removed.
type Removal struct {
	NodeIDs []string `json:"nodeIds"`
	EdgeIDs []string `json:"edgeIds"`
}

// DeleteSelected removes the selected nodes (with their incident edges),
// then any selected edges that are still present.
func (e *Editor) DeleteSelected() Removal {
	e.mu.Lock()
	nodes := slices.Clone(e.selNodes)
	edges := slices.Clone(e.selEdges)
	events := e.deleteNodesLocked(nodes)
	events = append(events, e.deleteEdgesLocked(edges)...)
	e.enqueue(events...)
	e.mu.Unlock()

	var r Removal
	for _, ev := range events {
		switch ev.Kind {
		case NodesRemoved:
			r.NodeIDs = append(r.NodeIDs, ev.NodeIDs...)
		case EdgesRemoved:
			r.EdgeIDs = append(r.EdgeIDs, ev.EdgeIDs...)
		}
	}
	e.flush()
	return r
}

// pruneSelectionLocked drops ids that left the graph and reports whether the
// selection changed. Callers hold mu.
func (e *Editor) pruneSelectionLocked() bool {
	before := len(e.selNodes) + len(e.selEdges)
	e.selNodes = slices.DeleteFunc(e.selNodes, func(id string) bool { return e.nodeIndex(id) < 0 })
	e.selEdges = slices.DeleteFunc(e.selEdges, func(id string) bool { return e.edgeIndex(id) < 0 })
	return len(e.selNodes)+len(e.selEdges) != before
}

func (e *Editor) selectionEventLocked() Event {
	return Event{
		Kind:      SelectionChanged,
		ProjectID: e.project.ID,
		NodeIDs:   slices.Clone(e.selNodes),
		EdgeIDs:   slices.Clone(e.selEdges),
	}
}
