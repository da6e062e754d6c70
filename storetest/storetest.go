// Package storetest is a behavioural test suite shared by every
// biostream.Store backend.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	biostream "github.com/bigyambat/BioStream"
)

// Factory returns an empty store with its schema created. It is called once
// per subtest.
type Factory func(t *testing.T) biostream.Store

// Project returns a project exercising every persisted field.
func Project(id string, updated time.Time) *biostream.Project {
	p := biostream.NewProject(id, "RNA-seq QC", "ana", updated.Add(-time.Hour))
	p.Metadata.UpdatedAt = updated.UTC().Truncate(time.Millisecond)
	p.Description = "bulk RNA-seq quality control"
	p.Nodes = []biostream.Node{
		{
			ID:       "data-source-1",
			Type:     biostream.NodeDataSource,
			Label:    "CSV Reader",
			Position: biostream.Position{X: 100, Y: 50},
			Icon:     "📄",
			Code:     `data <- read.csv("counts.csv")`,
			Params:   biostream.Params{"file_path": "counts.csv", "header": true},
			Status:   biostream.StatusCompleted,
			Logs:     []string{"read 20000 rows"},
		},
		{
			ID:              "r-script-2",
			Type:            biostream.NodeRScript,
			Label:           "DESeq2",
			Position:        biostream.Position{X: 300.5, Y: 50},
			Params:          biostream.Params{"alpha": 0.05},
			ExecutionTarget: biostream.TargetHPC,
			Resources:       &biostream.ResourceSpec{CPU: 16, Memory: 65536, Time: "04:00:00"},
			Status:          biostream.StatusFailed,
			Error:           "out of memory",
		},
		{
			ID:       "qc-3",
			Type:     "qc-report",
			Label:    "QC Report",
			Position: biostream.Position{X: 500, Y: 50},
			Status:   biostream.StatusPending,
		},
	}
	p.Edges = []biostream.Edge{
		{ID: "edge-1", Source: "data-source-1", Target: "r-script-2", Type: biostream.EdgeDataFlow, Data: map[string]any{"label": "counts"}},
		{ID: "edge-2", Source: "r-script-2", Target: "qc-3", SourceHandle: "out", TargetHandle: "in", Type: biostream.EdgeControlFlow},
	}
	return p
}

var equateEmpty = cmpopts.EquateEmpty()

// Run runs the suite against the stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("SaveAndGet", func(t *testing.T) {
		s := newStore(t)
		p := Project("p1", base)
		require.NoError(t, s.SaveProject(ctx, p))

		got, err := s.GetProject(ctx, "p1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, cmp.Diff(p, got, equateEmpty))
	})

	t.Run("GetMissingReturnsNil", func(t *testing.T) {
		s := newStore(t)
		got, err := s.GetProject(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		s := newStore(t)
		p := Project("p1", base)
		require.NoError(t, s.SaveProject(ctx, p))

		p.Name = "renamed"
		p.Nodes = p.Nodes[:2]
		p.Edges = p.Edges[:1]
		p.Nodes[0].Position = biostream.Position{X: -4, Y: 8}
		require.NoError(t, s.SaveProject(ctx, p))

		got, err := s.GetProject(ctx, "p1")
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(p, got, equateEmpty))

		edges, err := s.ListEdges(ctx, "p1")
		require.NoError(t, err)
		assert.Len(t, edges, 1)
	})

	t.Run("EmptyProject", func(t *testing.T) {
		s := newStore(t)
		p := biostream.NewProject("empty", "Untitled", "", base)
		require.NoError(t, s.SaveProject(ctx, p))

		got, err := s.GetProject(ctx, "empty")
		require.NoError(t, err)
		assert.NotNil(t, got.Nodes)
		assert.NotNil(t, got.Edges)
		assert.Empty(t, cmp.Diff(p, got))
	})

	t.Run("KeepsCreationOrder", func(t *testing.T) {
		s := newStore(t)
		p := Project("p1", base)
		// Ids that sort differently from creation order.
		p.Nodes[0].ID, p.Nodes[2].ID = "z", "a"
		p.Edges[0].Source, p.Edges[1].Target = "z", "a"
		require.NoError(t, s.SaveProject(ctx, p))

		nodes, err := s.ListNodes(ctx, "p1")
		require.NoError(t, err)
		ids := make([]string, len(nodes))
		for i, n := range nodes {
			ids[i] = n.ID
		}
		assert.Equal(t, []string{"z", "r-script-2", "a"}, ids)
	})

	t.Run("RejectsDanglingEdges", func(t *testing.T) {
		s := newStore(t)
		p := Project("p1", base)
		p.Edges = append(p.Edges, biostream.Edge{ID: "edge-x", Source: "qc-3", Target: "ghost", Type: biostream.EdgeDataFlow})
		err := s.SaveProject(ctx, p)
		assert.ErrorIs(t, err, biostream.ErrInvalidDocument)

		got, err := s.GetProject(ctx, "p1")
		require.NoError(t, err)
		assert.Nil(t, got, "nothing written")
	})

	t.Run("RejectsMissingID", func(t *testing.T) {
		s := newStore(t)
		assert.ErrorIs(t, s.SaveProject(ctx, Project("", base)), biostream.ErrInvalidDocument)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveProject(ctx, Project("p1", base)))
		require.NoError(t, s.DeleteProject(ctx, "p1"))
		require.NoError(t, s.DeleteProject(ctx, "p1"), "deleting twice is fine")

		got, err := s.GetProject(ctx, "p1")
		require.NoError(t, err)
		assert.Nil(t, got)

		nodes, err := s.ListNodes(ctx, "p1")
		require.NoError(t, err)
		assert.NotNil(t, nodes)
		assert.Empty(t, nodes, "nodes cascade")
	})

	t.Run("List", func(t *testing.T) {
		s := newStore(t)
		list, err := s.ListProjects(ctx)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)

		require.NoError(t, s.SaveProject(ctx, Project("old", base)))
		require.NoError(t, s.SaveProject(ctx, Project("new", base.Add(time.Minute))))
		empty := biostream.NewProject("blank", "Blank", "", base.Add(-time.Minute))
		require.NoError(t, s.SaveProject(ctx, empty))

		list, err = s.ListProjects(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "new", list[0].ID)
		assert.Equal(t, "old", list[1].ID)
		assert.Equal(t, "blank", list[2].ID)
		assert.Equal(t, 3, list[0].NodeCount)
		assert.Equal(t, 2, list[0].EdgeCount)
		assert.Equal(t, 0, list[2].NodeCount)
		assert.True(t, list[0].UpdatedAt.Equal(base.Add(time.Minute)))
	})

	t.Run("DropSchema", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.DropSchema(ctx))
		require.NoError(t, s.CreateSchema(ctx))
		require.NoError(t, s.CreateSchema(ctx), "schema creation is idempotent")
		list, err := s.ListProjects(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
