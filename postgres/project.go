package postgres

import (
	"context"
	"fmt"
	"time"

	biostream "github.com/bigyambat/BioStream"
)

// SaveProject saves a full project (metadata, nodes and edges) in one
// transaction, replacing any previous version stored under the same ID.
// Edges that reference nodes outside the project are rejected.
func (s *PGStore) SaveProject(ctx context.Context, p *biostream.Project) error {
	if err := biostream.CheckSavable(p); err != nil {
		return fmt.Errorf("biostream: save project: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("biostream: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Replace semantics: the cascade removes the old nodes and edges.
	if _, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, p.ID); err != nil {
		return fmt.Errorf("biostream: delete project: %w", err)
	}

	m := p.Metadata
	if _, err := tx.Exec(ctx,
		`INSERT INTO projects (id, name, description, version, author, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Name, p.Description, m.Version, m.Author, m.CreatedAt, m.UpdatedAt,
	); err != nil {
		return fmt.Errorf("biostream: insert project: %w", err)
	}

	for i, n := range p.Nodes {
		data, err := encodeNode(n)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO project_nodes (project_id, id, seq, type, label, status, data)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, n.ID, i, string(n.Type), n.Label, string(n.Status), data,
		); err != nil {
			return fmt.Errorf("biostream: insert node %s: %w", n.ID, err)
		}
	}

	for i, e := range p.Edges {
		data, err := encodeEdge(e)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO project_edges (project_id, id, seq, source_id, target_id, type, data)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, e.ID, i, e.Source, e.Target, string(e.Type), data,
		); err != nil {
			return fmt.Errorf("biostream: insert edge %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("biostream: commit: %w", err)
	}
	return nil
}

// GetProject retrieves a full project by its ID.
// Returns nil, nil if the project doesn't exist.
func (s *PGStore) GetProject(ctx context.Context, projectID string) (*biostream.Project, error) {
	// The id is read back from the row so the result never shares memory
	// with the caller's argument.
	p := &biostream.Project{}
	var createdAt, updatedAt time.Time
	err := s.db.QueryRow(ctx,
		`SELECT id, name, description, version, author, created_at, updated_at FROM projects WHERE id = $1`,
		projectID,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Metadata.Version, &p.Metadata.Author, &createdAt, &updatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("biostream: get project: %w", err)
	}
	p.Metadata.CreatedAt = createdAt.UTC()
	p.Metadata.UpdatedAt = updatedAt.UTC()

	if p.Nodes, err = s.ListNodes(ctx, p.ID); err != nil {
		return nil, err
	}
	if p.Edges, err = s.ListEdges(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject removes a project with its nodes and edges.
// No error if the project doesn't exist.
func (s *PGStore) DeleteProject(ctx context.Context, projectID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID); err != nil {
		return fmt.Errorf("biostream: delete project: %w", err)
	}
	return nil
}

// ListProjects returns a summary of every stored project, most recently
// updated first. Returns an empty slice (not nil) if none found.
func (s *PGStore) ListProjects(ctx context.Context) ([]biostream.ProjectSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.name, p.updated_at,
		       (SELECT COUNT(*) FROM project_nodes n WHERE n.project_id = p.id),
		       (SELECT COUNT(*) FROM project_edges e WHERE e.project_id = p.id)
		FROM projects p
		ORDER BY p.updated_at DESC, p.id`)
	if err != nil {
		return nil, fmt.Errorf("biostream: list projects: %w", err)
	}
	defer rows.Close()

	out := []biostream.ProjectSummary{}
	for rows.Next() {
		var ps biostream.ProjectSummary
		var nodes, edges int64
		if err := rows.Scan(&ps.ID, &ps.Name, &ps.UpdatedAt, &nodes, &edges); err != nil {
			return nil, fmt.Errorf("biostream: scan project: %w", err)
		}
		ps.UpdatedAt = ps.UpdatedAt.UTC()
		ps.NodeCount, ps.EdgeCount = int(nodes), int(edges)
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("biostream: rows projects: %w", err)
	}
	return out, nil
}
