package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    version     TEXT NOT NULL,
    author      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS project_nodes (
    project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    id         TEXT NOT NULL,
    seq        INTEGER NOT NULL,
    type       TEXT NOT NULL,
    label      TEXT NOT NULL DEFAULT '',
    status     TEXT NOT NULL DEFAULT 'pending',
    data       JSONB NOT NULL DEFAULT '{}',
    PRIMARY KEY (project_id, id)
);

CREATE TABLE IF NOT EXISTS project_edges (
    project_id TEXT NOT NULL,
    id         TEXT NOT NULL,
    seq        INTEGER NOT NULL,
    source_id  TEXT NOT NULL,
    target_id  TEXT NOT NULL,
    type       TEXT NOT NULL DEFAULT 'data-flow',
    data       JSONB NOT NULL DEFAULT '{}',
    PRIMARY KEY (project_id, id),
    FOREIGN KEY (project_id, source_id) REFERENCES project_nodes(project_id, id) ON DELETE CASCADE,
    FOREIGN KEY (project_id, target_id) REFERENCES project_nodes(project_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_project_nodes_seq ON project_nodes(project_id, seq);
CREATE INDEX IF NOT EXISTS idx_project_edges_seq ON project_edges(project_id, seq);
CREATE INDEX IF NOT EXISTS idx_project_edges_source ON project_edges(project_id, source_id);
CREATE INDEX IF NOT EXISTS idx_project_edges_target ON project_edges(project_id, target_id);
`

// CreateSchema creates the projects, project_nodes and project_edges tables
// if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops all BioStream tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS project_edges, project_nodes, projects CASCADE;`)
	return err
}
