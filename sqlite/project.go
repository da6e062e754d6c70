package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	biostream "github.com/bigyambat/BioStream"
)

// SaveProject writes the project, its nodes and its edges in one
// transaction, replacing any previous version with the same id.
func (s *Store) SaveProject(ctx context.Context, p *biostream.Project) error {
	if err := biostream.CheckSavable(p); err != nil {
		return fmt.Errorf("biostream: save project: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("biostream: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, p.ID); err != nil {
		return fmt.Errorf("biostream: delete project: %w", err)
	}

	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO projects (id, name, description, version, author, created_at, updated_at)
		 VALUES (:id, :name, :description, :version, :author, :created_at, :updated_at)`,
		toProjectRow(p),
	); err != nil {
		return fmt.Errorf("biostream: insert project: %w", err)
	}

	for i, n := range p.Nodes {
		row, err := toNodeRow(p.ID, i, n)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO project_nodes (project_id, id, seq, type, label, status, data)
			 VALUES (:project_id, :id, :seq, :type, :label, :status, :data)`,
			row,
		); err != nil {
			return fmt.Errorf("biostream: insert node %s: %w", n.ID, err)
		}
	}

	for i, e := range p.Edges {
		row, err := toEdgeRow(p.ID, i, e)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO project_edges (project_id, id, seq, source_id, target_id, type, data)
			 VALUES (:project_id, :id, :seq, :source_id, :target_id, :type, :data)`,
			row,
		); err != nil {
			return fmt.Errorf("biostream: insert edge %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("biostream: commit: %w", err)
	}
	return nil
}

// GetProject loads a project. Returns nil, nil if it doesn't exist.
func (s *Store) GetProject(ctx context.Context, projectID string) (*biostream.Project, error) {
	var row projectRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, name, description, version, author, created_at, updated_at FROM projects WHERE id = ?`,
		projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("biostream: get project: %w", err)
	}

	p := &biostream.Project{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Metadata:    biostream.Metadata{Version: row.Version, Author: row.Author},
	}
	if p.Metadata.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return nil, err
	}
	if p.Metadata.UpdatedAt, err = parseTime(row.UpdatedAt); err != nil {
		return nil, err
	}
	if p.Nodes, err = s.ListNodes(ctx, projectID); err != nil {
		return nil, err
	}
	if p.Edges, err = s.ListEdges(ctx, projectID); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject removes a project; deleting an unknown id is not an error.
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, projectID); err != nil {
		return fmt.Errorf("biostream: delete project: %w", err)
	}
	return nil
}

// ListProjects returns every stored project, most recently updated first.
func (s *Store) ListProjects(ctx context.Context) ([]biostream.ProjectSummary, error) {
	var rows []summaryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.id, p.name, p.updated_at,
		       (SELECT COUNT(*) FROM project_nodes n WHERE n.project_id = p.id) AS node_count,
		       (SELECT COUNT(*) FROM project_edges e WHERE e.project_id = p.id) AS edge_count
		FROM projects p
		ORDER BY p.updated_at DESC, p.id`)
	if err != nil {
		return nil, fmt.Errorf("biostream: list projects: %w", err)
	}

	out := make([]biostream.ProjectSummary, 0, len(rows))
	for _, r := range rows {
		updated, err := parseTime(r.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, biostream.ProjectSummary{
			ID:        r.ID,
			Name:      r.Name,
			NodeCount: r.NodeCount,
			EdgeCount: r.EdgeCount,
			UpdatedAt: updated,
		})
	}
	return out, nil
}

// ListNodes returns the nodes of a project in creation order.
func (s *Store) ListNodes(ctx context.Context, projectID string) ([]biostream.Node, error) {
	var rows []nodeRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT project_id, id, seq, type, label, status, data FROM project_nodes WHERE project_id = ? ORDER BY seq`,
		projectID); err != nil {
		return nil, fmt.Errorf("biostream: list nodes: %w", err)
	}
	nodes := make([]biostream.Node, 0, len(rows))
	for _, r := range rows {
		n, err := r.node()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// ListEdges returns the edges of a project in creation order.
func (s *Store) ListEdges(ctx context.Context, projectID string) ([]biostream.Edge, error) {
	var rows []edgeRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT project_id, id, seq, source_id, target_id, type, data FROM project_edges WHERE project_id = ? ORDER BY seq`,
		projectID); err != nil {
		return nil, fmt.Errorf("biostream: list edges: %w", err)
	}
	edges := make([]biostream.Edge, 0, len(rows))
	for _, r := range rows {
		e, err := r.edge()
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, nil
}

var _ biostream.Store = (*Store)(nil)
