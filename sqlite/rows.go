package sqlite

import (
	"encoding/json"
	"fmt"

	biostream "github.com/bigyambat/BioStream"
)

type projectRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Version     string `db:"version"`
	Author      string `db:"author"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

type nodeRow struct {
	ProjectID string `db:"project_id"`
	ID        string `db:"id"`
	Seq       int    `db:"seq"`
	Type      string `db:"type"`
	Label     string `db:"label"`
	Status    string `db:"status"`
	Data      string `db:"data"` // full node as JSON
}

type edgeRow struct {
	ProjectID string `db:"project_id"`
	ID        string `db:"id"`
	Seq       int    `db:"seq"`
	SourceID  string `db:"source_id"`
	TargetID  string `db:"target_id"`
	Type      string `db:"type"`
	Data      string `db:"data"`
}

type summaryRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	UpdatedAt string `db:"updated_at"`
	NodeCount int    `db:"node_count"`
	EdgeCount int    `db:"edge_count"`
}

func toProjectRow(p *biostream.Project) projectRow {
	return projectRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Version:     p.Metadata.Version,
		Author:      p.Metadata.Author,
		CreatedAt:   formatTime(p.Metadata.CreatedAt),
		UpdatedAt:   formatTime(p.Metadata.UpdatedAt),
	}
}

func toNodeRow(projectID string, seq int, n biostream.Node) (nodeRow, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nodeRow{}, fmt.Errorf("biostream: encode node %s: %w", n.ID, err)
	}
	return nodeRow{
		ProjectID: projectID,
		ID:        n.ID,
		Seq:       seq,
		Type:      string(n.Type),
		Label:     n.Label,
		Status:    string(n.Status),
		Data:      string(b),
	}, nil
}

func (r nodeRow) node() (biostream.Node, error) {
	var n biostream.Node
	if err := json.Unmarshal([]byte(r.Data), &n); err != nil {
		return n, fmt.Errorf("biostream: decode node %s: %w", r.ID, err)
	}
	n.ID = r.ID
	return n, nil
}

func toEdgeRow(projectID string, seq int, e biostream.Edge) (edgeRow, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return edgeRow{}, fmt.Errorf("biostream: encode edge %s: %w", e.ID, err)
	}
	return edgeRow{
		ProjectID: projectID,
		ID:        e.ID,
		Seq:       seq,
		SourceID:  e.Source,
		TargetID:  e.Target,
		Type:      string(e.Type),
		Data:      string(b),
	}, nil
}

func (r edgeRow) edge() (biostream.Edge, error) {
	var e biostream.Edge
	if err := json.Unmarshal([]byte(r.Data), &e); err != nil {
		return e, fmt.Errorf("biostream: decode edge %s: %w", r.ID, err)
	}
	e.ID, e.Source, e.Target = r.ID, r.SourceID, r.TargetID
	return e, nil
}
