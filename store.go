package biostream

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrProjectNotFound = errors.New("biostream: project not found")
	ErrNodeNotFound    = errors.New("biostream: node not found")
	ErrEdgeNotFound    = errors.New("biostream: edge not found")
	ErrCycleDetected   = errors.New("biostream: cycle detected, workflow is not acyclic")
	ErrInvalidDocument = errors.New("biostream: invalid workflow document")
	ErrNoExecutor      = errors.New("biostream: no executor configured")
	ErrNoStore         = errors.New("biostream: no store configured")
)

// Store defines the contract for persisting and retrieving projects.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Projects (bulk operations)
	SaveProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, projectID string) (*Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	ListProjects(ctx context.Context) ([]ProjectSummary, error)

	// Graph contents of a saved project
	ListNodes(ctx context.Context, projectID string) ([]Node, error)
	ListEdges(ctx context.Context, projectID string) ([]Edge, error)
}

// Executor is the seam to an execution backend (local R session, HPC
// scheduler). Nothing in this module implements it.
type Executor interface {
	Submit(ctx context.Context, node Node) (jobID string, err error)
	Cancel(ctx context.Context, jobID string) error
	Poll(ctx context.Context, jobID string) (*ExecutionResult, error)
}

// CheckSavable reports why p cannot be persisted: a missing id or an edge
// that references a node outside the project. Backends call it before
// opening a transaction.
func CheckSavable(p *Project) error {
	if p == nil || p.ID == "" {
		return &DocumentError{Field: "id", Reason: "required"}
	}
	if dangling := Dangling(p.Nodes, p.Edges); len(dangling) > 0 {
		return &DocumentError{Field: "edges", Reason: fmt.Sprintf("edge %q references a missing node", dangling[0])}
	}
	return nil
}
