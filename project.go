package biostream

import "time"

// NodeType tags a node with the kind of pipeline step it represents.
type NodeType string

const (
	NodeDataSource    NodeType = "data-source"
	NodeTransform     NodeType = "transform"
	NodeVisualization NodeType = "visualization"
	NodeRScript       NodeType = "r-script"
	NodeControl       NodeType = "control"
)

// NodeTypes lists the known node types in palette order.
var NodeTypes = []NodeType{NodeDataSource, NodeTransform, NodeRScript, NodeVisualization, NodeControl}

// Known reports whether t is one of the known node types. Unknown types are
// kept as-is and rendered with a generic presentation.
func (t NodeType) Known() bool {
	switch t {
	case NodeDataSource, NodeTransform, NodeVisualization, NodeRScript, NodeControl:
		return true
	}
	return false
}

// EdgeType tags the kind of dependency an edge carries.
type EdgeType string

const (
	EdgeDataFlow    EdgeType = "data-flow"
	EdgeControlFlow EdgeType = "control-flow"
)

// ExecutionTarget selects where a node would run.
type ExecutionTarget string

const (
	TargetLocal ExecutionTarget = "local"
	TargetHPC   ExecutionTarget = "hpc"
)

// ExecutionStatus is the lifecycle state of a node's last execution.
type ExecutionStatus string

const (
	StatusPending   ExecutionStatus = "pending"
	StatusRunning   ExecutionStatus = "running"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
	StatusCached    ExecutionStatus = "cached"
)

// Valid reports whether s is a known status.
func (s ExecutionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCached:
		return true
	}
	return false
}

// Position is a point in canvas (graph) space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ResourceSpec requests compute resources for HPC targets. Zero values mean
// "unset".
type ResourceSpec struct {
	CPU    int    `json:"cpu,omitempty"`
	Memory int    `json:"memory,omitempty"`
	Time   string `json:"time,omitempty"`
	GPU    int    `json:"gpu,omitempty"`
}

// Node is a single step of the workflow graph.
type Node struct {
	ID              string          `json:"id"`
	Type            NodeType        `json:"type"`
	Label           string          `json:"label"`
	Position        Position        `json:"position"`
	Icon            string          `json:"icon,omitempty"`
	Description     string          `json:"description,omitempty"`
	Code            string          `json:"code,omitempty"`
	Params          Params          `json:"params,omitempty"`
	ExecutionTarget ExecutionTarget `json:"executionTarget,omitempty"`
	Resources       *ResourceSpec   `json:"resources,omitempty"`
	Status          ExecutionStatus `json:"status"`
	Error           string          `json:"error,omitempty"`
	Logs            []string        `json:"logs,omitempty"`
	Width           float64         `json:"width,omitempty"`
	Height          float64         `json:"height,omitempty"`
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	c := n
	c.Params = n.Params.Clone()
	if n.Resources != nil {
		r := *n.Resources
		c.Resources = &r
	}
	if n.Logs != nil {
		c.Logs = append([]string(nil), n.Logs...)
	}
	return c
}

// Edge is a directed connection between two nodes. SourceHandle and
// TargetHandle discriminate ports on nodes that expose more than one.
type Edge struct {
	ID           string         `json:"id"`
	Source       string         `json:"source"`
	Target       string         `json:"target"`
	SourceHandle string         `json:"sourceHandle,omitempty"`
	TargetHandle string         `json:"targetHandle,omitempty"`
	Type         EdgeType       `json:"type"`
	Data         map[string]any `json:"data,omitempty"`
}

// Clone returns a deep copy of e.
func (e Edge) Clone() Edge {
	c := e
	c.Data = CloneData(e.Data)
	return c
}

// Metadata describes a project document.
type Metadata struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   string    `json:"version"`
	Author    string    `json:"author,omitempty"`
}

// DocumentVersion is written into new projects.
const DocumentVersion = "1.0.0"

// Project is a named workflow graph. It is the unit of save, export and
// import. Nodes and Edges keep creation order.
type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Nodes       []Node   `json:"nodes"`
	Edges       []Edge   `json:"edges"`
	Metadata    Metadata `json:"metadata"`
}

// NewProject returns an empty project stamped with now.
func NewProject(id, name, author string, now time.Time) *Project {
	now = now.UTC().Truncate(time.Millisecond)
	return &Project{
		ID:    id,
		Name:  name,
		Nodes: []Node{},
		Edges: []Edge{},
		Metadata: Metadata{
			CreatedAt: now,
			UpdatedAt: now,
			Version:   DocumentVersion,
			Author:    author,
		},
	}
}

// Clone returns a deep copy of p.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	c.Nodes = make([]Node, len(p.Nodes))
	for i, n := range p.Nodes {
		c.Nodes[i] = n.Clone()
	}
	c.Edges = make([]Edge, len(p.Edges))
	for i, e := range p.Edges {
		c.Edges[i] = e.Clone()
	}
	return &c
}

// ProjectSummary is a listing entry for a persisted project.
type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NodeCount int       `json:"nodeCount"`
	EdgeCount int       `json:"edgeCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ExecutionResult is what an executor reports for a finished or running node.
type ExecutionResult struct {
	NodeID        string          `json:"nodeId"`
	Status        ExecutionStatus `json:"status"`
	Output        any             `json:"output,omitempty"`
	Error         string          `json:"error,omitempty"`
	Logs          []string        `json:"logs"`
	ExecutionTime time.Duration   `json:"executionTime,omitempty"`
	Resources     *ResourceSpec   `json:"resources,omitempty"`
}

// Viewport is the pan/zoom transform of the canvas. Graph data never
// depends on it.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport is the identity transform.
var DefaultViewport = Viewport{Zoom: 1}
