package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	biostream "github.com/bigyambat/BioStream"
)

// encodeNode serializes the node for the data column. Type, label and
// status are also stored in their own columns so they can be queried.
func encodeNode(n biostream.Node) ([]byte, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("biostream: encode node %s: %w", n.ID, err)
	}
	return b, nil
}

// ListNodes returns all nodes for a projectID in creation order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListNodes(ctx context.Context, projectID string) ([]biostream.Node, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, data FROM project_nodes WHERE project_id = $1 ORDER BY seq`, projectID)
	if err != nil {
		return nil, fmt.Errorf("biostream: list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []biostream.Node{}
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("biostream: scan node: %w", err)
		}
		var n biostream.Node
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, fmt.Errorf("biostream: decode node %s: %w", id, err)
		}
		n.ID = id
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("biostream: rows nodes: %w", err)
	}

	return nodes, nil
}
