package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	biostream "github.com/bigyambat/BioStream"
)

func encodeEdge(e biostream.Edge) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("biostream: encode edge %s: %w", e.ID, err)
	}
	return b, nil
}

// ListEdges returns all edges for a projectID in creation order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListEdges(ctx context.Context, projectID string) ([]biostream.Edge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, source_id, target_id, data FROM project_edges WHERE project_id = $1 ORDER BY seq`, projectID)
	if err != nil {
		return nil, fmt.Errorf("biostream: list edges: %w", err)
	}
	defer rows.Close()

	edges := []biostream.Edge{}
	for rows.Next() {
		var e biostream.Edge
		var data []byte
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &data); err != nil {
			return nil, fmt.Errorf("biostream: scan edge: %w", err)
		}
		id, source, target := e.ID, e.Source, e.Target
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("biostream: decode edge %s: %w", id, err)
		}
		e.ID, e.Source, e.Target = id, source, target
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("biostream: rows edges: %w", err)
	}

	return edges, nil
}
