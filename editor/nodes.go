package editor

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	biostream "github.com/bigyambat/BioStream"
	"github.com/bigyambat/BioStream/palette"
)

// CreateNode adds a node of type t at pos, seeded from the first catalog
// template of that type, and returns its id. Unknown types are accepted and
// get a label generated from the type string.
func (e *Editor) CreateNode(t biostream.NodeType, pos biostream.Position) string {
	var seed *palette.Template
	if tpl, ok := e.catalog.ForType(t); ok {
		seed = &tpl
	}
	return e.createNode(t, pos, seed)
}

// CreateNodeFromTemplate adds a node seeded from the template with
// templateID. It reports false if the template is unknown.
func (e *Editor) CreateNodeFromTemplate(templateID string, pos biostream.Position) (string, bool) {
	tpl, ok := e.catalog.Get(templateID)
	if !ok {
		return "", false
	}
	return e.createNode(tpl.Type, pos, &tpl), true
}

func (e *Editor) createNode(t biostream.NodeType, pos biostream.Position, seed *palette.Template) string {
	n := biostream.Node{
		Type:     t,
		Position: pos,
		Status:   biostream.StatusPending,
	}
	if seed != nil {
		n.Label = seed.Label
		n.Icon = seed.Icon
		n.Description = seed.Description
		n.Code = seed.DefaultCode
		// Catalog params are scalars by construction.
		n.Params, _ = biostream.NormalizeParams(seed.DefaultParams)
	} else {
		n.Label = generatedLabel(t)
		n.Icon = palette.IconFor(t)
		n.Description = fmt.Sprintf("A %s node", strings.ReplaceAll(string(t), "-", " "))
	}

	prefix := string(t)
	if prefix == "" {
		prefix = "node"
	}

	e.mu.Lock()
	n.ID = e.allocID(prefix)

	var leaf string
	if e.autoConnect == AutoConnectLatestLeaf {
		if leaves := biostream.Leaves(e.project.Nodes, e.project.Edges); len(leaves) > 0 {
			leaf = leaves[len(leaves)-1]
		}
	}

	e.project.Nodes = append(e.project.Nodes, n)
	events := []Event{{Kind: NodesAdded, ProjectID: e.project.ID, NodeIDs: []string{n.ID}}}

	if leaf != "" {
		edge := biostream.Edge{
			ID:     e.allocID("edge"),
			Source: leaf,
			Target: n.ID,
			Type:   biostream.EdgeDataFlow,
		}
		e.project.Edges = append(e.project.Edges, edge)
		events = append(events, Event{Kind: EdgesAdded, ProjectID: e.project.ID, EdgeIDs: []string{edge.ID}})
	}
	e.touch()
	e.enqueue(events...)
	e.mu.Unlock()

	e.log.Debug("node created",
		zap.String("node", n.ID),
		zap.String("type", string(t)),
		zap.String("auto_connected_from", leaf),
	)
	e.flush()
	return n.ID
}

func generatedLabel(t biostream.NodeType) string {
	words := strings.ReplaceAll(string(t), "-", " ")
	if strings.TrimSpace(words) == "" {
		return "Node"
	}
	return cases.Title(language.English).String(words)
}

// ErrInvalidPatch is returned by UpdateNode for a patch it cannot apply.
var ErrInvalidPatch = errors.New("editor: invalid node patch")

// NodePatch lists the node fields an update may change. Nil fields are left
// alone. Id and type are immutable.
type NodePatch struct {
	Label           *string                    `json:"label,omitempty"`
	Position        *biostream.Position        `json:"position,omitempty"`
	Icon            *string                    `json:"icon,omitempty"`
	Description     *string                    `json:"description,omitempty"`
	Code            *string                    `json:"code,omitempty"`
	Params          *biostream.Params          `json:"params,omitempty"`
	ExecutionTarget *biostream.ExecutionTarget `json:"executionTarget,omitempty"`
	Resources       *biostream.ResourceSpec    `json:"resources,omitempty"`
	Status          *biostream.ExecutionStatus `json:"status,omitempty"`
	Error           *string                    `json:"error,omitempty"`
	Logs            *[]string                  `json:"logs,omitempty"`
	Width           *float64                   `json:"width,omitempty"`
	Height          *float64                   `json:"height,omitempty"`
}

// UpdateNode merges patch into the node with id. It returns
// biostream.ErrNodeNotFound if the node is absent, or a validation error if
// the patch carries non-scalar params or an unknown status; in both cases
// nothing changes.
func (e *Editor) UpdateNode(id string, patch NodePatch) error {
	var params biostream.Params
	if patch.Params != nil {
		p, err := biostream.NormalizeParams(*patch.Params)
		if err != nil {
			return fmt.Errorf("%w: node %s: %w", ErrInvalidPatch, id, err)
		}
		params = p
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: node %s: unknown status %q", ErrInvalidPatch, id, *patch.Status)
	}

	e.mu.Lock()
	i := e.nodeIndex(id)
	if i < 0 {
		e.mu.Unlock()
		return biostream.ErrNodeNotFound
	}
	n := &e.project.Nodes[i]
	if patch.Label != nil {
		n.Label = *patch.Label
	}
	if patch.Position != nil {
		n.Position = *patch.Position
	}
	if patch.Icon != nil {
		n.Icon = *patch.Icon
	}
	if patch.Description != nil {
		n.Description = *patch.Description
	}
	if patch.Code != nil {
		n.Code = *patch.Code
	}
	if patch.Params != nil {
		n.Params = params
	}
	if patch.ExecutionTarget != nil {
		n.ExecutionTarget = *patch.ExecutionTarget
	}
	if patch.Resources != nil {
		r := *patch.Resources
		if r == (biostream.ResourceSpec{}) {
			n.Resources = nil
		} else {
			n.Resources = &r
		}
	}
	if patch.Status != nil {
		n.Status = *patch.Status
	}
	if patch.Error != nil {
		n.Error = *patch.Error
	}
	if patch.Logs != nil {
		n.Logs = copyLogs(*patch.Logs)
	}
	if patch.Width != nil {
		n.Width = *patch.Width
	}
	if patch.Height != nil {
		n.Height = *patch.Height
	}
	e.touch()
	pid := e.project.ID
	e.enqueue(Event{Kind: NodesUpdated, ProjectID: pid, NodeIDs: []string{id}})
	e.mu.Unlock()

	e.flush()
	return nil
}

// MoveNode repositions a node, as a drag-stop does.
func (e *Editor) MoveNode(id string, pos biostream.Position) bool {
	return e.UpdateNode(id, NodePatch{Position: &pos}) == nil
}

// DeleteNode removes the node with id, every edge touching it, and both
// from the selection.
func (e *Editor) DeleteNode(id string) bool {
	e.mu.Lock()
	events := e.deleteNodesLocked([]string{id})
	e.enqueue(events...)
	e.mu.Unlock()

	e.flush()
	return len(events) > 0
}

// deleteNodesLocked removes nodes and their incident edges in one step.
// Callers hold mu.
func (e *Editor) deleteNodesLocked(ids []string) []Event {
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		if e.nodeIndex(id) >= 0 {
			doomed[id] = true
		}
	}
	if len(doomed) == 0 {
		return nil
	}

	var removedNodes []string
	nodes := e.project.Nodes[:0]
	for _, n := range e.project.Nodes {
		if doomed[n.ID] {
			removedNodes = append(removedNodes, n.ID)
			delete(e.results, n.ID)
			continue
		}
		nodes = append(nodes, n)
	}
	e.project.Nodes = nodes

	var removedEdges []string
	edges := e.project.Edges[:0]
	for _, edge := range e.project.Edges {
		if doomed[edge.Source] || doomed[edge.Target] {
			removedEdges = append(removedEdges, edge.ID)
			continue
		}
		edges = append(edges, edge)
	}
	e.project.Edges = edges
	e.touch()

	pid := e.project.ID
	events := []Event{{Kind: NodesRemoved, ProjectID: pid, NodeIDs: removedNodes}}
	if len(removedEdges) > 0 {
		events = append(events, Event{Kind: EdgesRemoved, ProjectID: pid, EdgeIDs: removedEdges})
	}
	if e.pruneSelectionLocked() {
		events = append(events, e.selectionEventLocked())
	}
	return events
}

func copyLogs(logs []string) []string {
	if len(logs) == 0 {
		return nil
	}
	return append([]string(nil), logs...)
}
