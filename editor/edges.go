package editor

import (
	"go.uber.org/zap"

	biostream "github.com/bigyambat/BioStream"
)

// Connection describes an edge to be drawn between two node ports.
type Connection struct {
	Source       string             `json:"source"`
	Target       string             `json:"target"`
	SourceHandle string             `json:"sourceHandle,omitempty"`
	TargetHandle string             `json:"targetHandle,omitempty"`
	Type         biostream.EdgeType `json:"type,omitempty"`
	Data         map[string]any     `json:"data,omitempty"`
}

// Connect adds an edge for c and returns its id. It refuses, returning
// false, when either endpoint is missing, when source equals target, when an
// identical connection (same endpoints and handles) already exists, or when
// Data cannot be encoded as JSON. Data is stored as a JSON decode
// would produce it.
func (e *Editor) Connect(c Connection) (string, bool) {
	if c.Source == "" || c.Target == "" || c.Source == c.Target {
		return "", false
	}
	if c.Type == "" {
		c.Type = biostream.EdgeDataFlow
	}
	data, err := biostream.NormalizeData(c.Data)
	if err != nil {
		e.log.Debug("connection refused", zap.Error(err))
		return "", false
	}

	e.mu.Lock()
	if e.nodeIndex(c.Source) < 0 || e.nodeIndex(c.Target) < 0 {
		e.mu.Unlock()
		return "", false
	}
	for _, edge := range e.project.Edges {
		if edge.Source == c.Source && edge.Target == c.Target &&
			edge.SourceHandle == c.SourceHandle && edge.TargetHandle == c.TargetHandle {
			e.mu.Unlock()
			return "", false
		}
	}

	edge := biostream.Edge{
		ID:           e.allocID("edge"),
		Source:       c.Source,
		Target:       c.Target,
		SourceHandle: c.SourceHandle,
		TargetHandle: c.TargetHandle,
		Type:         c.Type,
	}
	if len(data) > 0 {
		edge.Data = data
	}
	e.project.Edges = append(e.project.Edges, edge)
	e.touch()
	pid := e.project.ID
	e.enqueue(Event{Kind: EdgesAdded, ProjectID: pid, EdgeIDs: []string{edge.ID}})
	e.mu.Unlock()

	e.log.Debug("edge created", zap.String("edge", edge.ID), zap.String("source", c.Source), zap.String("target", c.Target))
	e.flush()
	return edge.ID, true
}

// DeleteEdge removes the edge with id and drops it from the selection.
func (e *Editor) DeleteEdge(id string) bool {
	e.mu.Lock()
	events := e.deleteEdgesLocked([]string{id})
	e.enqueue(events...)
	e.mu.Unlock()

	e.flush()
	return len(events) > 0
}

func (e *Editor) deleteEdgesLocked(ids []string) []Event {
	doomed := toSet(ids)
	var removed []string
	edges := e.project.Edges[:0]
	for _, edge := range e.project.Edges {
		if doomed[edge.ID] {
			removed = append(removed, edge.ID)
			continue
		}
		edges = append(edges, edge)
	}
	e.project.Edges = edges
	if len(removed) == 0 {
		return nil
	}
	e.touch()

	events := []Event{{Kind: EdgesRemoved, ProjectID: e.project.ID, EdgeIDs: removed}}
	if e.pruneSelectionLocked() {
		events = append(events, e.selectionEventLocked())
	}
	return events
}
