package editor

import biostream "github.com/bigyambat/BioStream"

type clipboard struct {
	nodes []biostream.Node
	edges []biostream.Edge
}

// Copy places copies of the given nodes, and the edges running between
// them, on the clipboard. It returns the number of nodes copied; unknown ids
// are skipped and an empty result leaves the clipboard unchanged.
func (e *Editor) Copy(nodeIDs []string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copyLocked(nodeIDs)
}

func (e *Editor) copyLocked(nodeIDs []string) int {
	want := toSet(nodeIDs)
	var cb clipboard
	for _, n := range e.project.Nodes {
		if want[n.ID] {
			cb.nodes = append(cb.nodes, n.Clone())
		}
	}
	if len(cb.nodes) == 0 {
		return 0
	}
	for _, edge := range e.project.Edges {
		if want[edge.Source] && want[edge.Target] {
			cb.edges = append(cb.edges, edge.Clone())
		}
	}
	e.clipboard = cb
	return len(cb.nodes)
}

// Cut copies the given nodes and then deletes them.
func (e *Editor) Cut(nodeIDs []string) int {
	e.mu.Lock()
	n := e.copyLocked(nodeIDs)
	var events []Event
	if n > 0 {
		events = e.deleteNodesLocked(nodeIDs)
	}
	e.enqueue(events...)
	e.mu.Unlock()

	e.flush()
	return n
}

// ClipboardSize returns the number of nodes on the clipboard.
func (e *Editor) ClipboardSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.clipboard.nodes)
}

// Paste inserts the clipboard contents with fresh ids, shifted by offset, and
// returns the new node ids. Edges are rewired to the pasted copies. Pasted
// nodes start pending with no error or logs.
func (e *Editor) Paste(offset biostream.Position) []string {
	e.mu.Lock()
	if len(e.clipboard.nodes) == 0 {
		e.mu.Unlock()
		return nil
	}

	remap := make(map[string]string, len(e.clipboard.nodes))
	nodeIDs := make([]string, 0, len(e.clipboard.nodes))
	for _, src := range e.clipboard.nodes {
		n := src.Clone()
		prefix := string(n.Type)
		if prefix == "" {
			prefix = "node"
		}
		n.ID = e.allocID(prefix)
		n.Position.X += offset.X
		n.Position.Y += offset.Y
		n.Status = biostream.StatusPending
		n.Error = ""
		n.Logs = nil
		remap[src.ID] = n.ID
		nodeIDs = append(nodeIDs, n.ID)
		e.project.Nodes = append(e.project.Nodes, n)
	}

	var edgeIDs []string
	for _, src := range e.clipboard.edges {
		edge := src.Clone()
		edge.ID = e.allocID("edge")
		edge.Source = remap[src.Source]
		edge.Target = remap[src.Target]
		edgeIDs = append(edgeIDs, edge.ID)
		e.project.Edges = append(e.project.Edges, edge)
	}
	e.touch()

	pid := e.project.ID
	events := []Event{{Kind: NodesAdded, ProjectID: pid, NodeIDs: nodeIDs}}
	if len(edgeIDs) > 0 {
		events = append(events, Event{Kind: EdgesAdded, ProjectID: pid, EdgeIDs: edgeIDs})
	}
	e.enqueue(events...)
	e.mu.Unlock()

	e.flush()
	return nodeIDs
}
