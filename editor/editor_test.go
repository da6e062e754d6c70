package editor

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	biostream "github.com/bigyambat/BioStream"
)

// seqIDs returns a deterministic id generator: data-source-1, edge-2, ...
func seqIDs() func(string) string {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedClock() func() time.Time {
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestEditor(opts ...Option) *Editor {
	base := []Option{WithIDGenerator(seqIDs()), WithClock(fixedClock())}
	return New(biostream.NewProject("p1", "Test", "tester", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)), append(base, opts...)...)
}

func TestCreateNodeSeedsFromTemplate(t *testing.T) {
	e := newTestEditor()

	id := e.CreateNode(biostream.NodeDataSource, biostream.Position{X: 10, Y: 20})
	n, ok := e.Node(id)
	require.True(t, ok)

	assert.Equal(t, "data-source-1", id)
	assert.Equal(t, biostream.NodeDataSource, n.Type)
	assert.Equal(t, "CSV Reader", n.Label)
	assert.Equal(t, "📄", n.Icon)
	assert.Equal(t, `data <- read.csv("input.csv")`, n.Code)
	assert.Equal(t, biostream.Params{"file_path": "input.csv", "header": true, "sep": ","}, n.Params)
	assert.Equal(t, biostream.StatusPending, n.Status)
	assert.Equal(t, biostream.Position{X: 10, Y: 20}, n.Position)
}

func TestCreateNodeFromTemplate(t *testing.T) {
	e := newTestEditor()

	id, ok := e.CreateNodeFromTemplate("ml-model", biostream.Position{})
	require.True(t, ok)
	n, _ := e.Node(id)
	assert.Equal(t, "Machine Learning", n.Label)
	assert.Equal(t, biostream.NodeRScript, n.Type)
	assert.Equal(t, 0.2, n.Params["test_size"])

	_, ok = e.CreateNodeFromTemplate("does-not-exist", biostream.Position{})
	assert.False(t, ok)
	assert.Len(t, e.Project().Nodes, 1)
}

func TestCreateNodeUnknownTypeFallsBack(t *testing.T) {
	e := newTestEditor()

	id := e.CreateNode("spreadsheet-import", biostream.Position{})
	n, ok := e.Node(id)
	require.True(t, ok)
	assert.Equal(t, biostream.NodeType("spreadsheet-import"), n.Type)
	assert.Equal(t, "Spreadsheet Import", n.Label)
	assert.Equal(t, "A spreadsheet import node", n.Description)
	assert.Equal(t, "📄", n.Icon)
	assert.Nil(t, n.Params)
}

func TestAutoConnectLatestLeaf(t *testing.T) {
	t.Run("empty graph creates no edge", func(t *testing.T) {
		e := newTestEditor()
		e.CreateNode(biostream.NodeDataSource, biostream.Position{})
		assert.Empty(t, e.Project().Edges)
	})

	t.Run("single leaf is linked", func(t *testing.T) {
		e := newTestEditor()
		a := e.CreateNode(biostream.NodeDataSource, biostream.Position{})
		b := e.CreateNode(biostream.NodeTransform, biostream.Position{X: 100})

		edges := e.Project().Edges
		require.Len(t, edges, 1)
		assert.Equal(t, a, edges[0].Source)
		assert.Equal(t, b, edges[0].Target)
		assert.Equal(t, biostream.EdgeDataFlow, edges[0].Type)
	})

	t.Run("most recent leaf wins", func(t *testing.T) {
		e := newTestEditor(WithAutoConnect(AutoConnectOff))
		e.CreateNode(biostream.NodeDataSource, biostream.Position{})
		second := e.CreateNode(biostream.NodeDataSource, biostream.Position{})

		linked := New(e.Project(), WithIDGenerator(seqIDs()))
		c := linked.CreateNode(biostream.NodeTransform, biostream.Position{})

		edges := linked.Project().Edges
		require.Len(t, edges, 1)
		assert.Equal(t, second, edges[0].Source)
		assert.Equal(t, c, edges[0].Target)
	})

	t.Run("no leaf in a cycle", func(t *testing.T) {
		e := newTestEditor(WithAutoConnect(AutoConnectOff))
		a := e.CreateNode(biostream.NodeDataSource, biostream.Position{})
		b := e.CreateNode(biostream.NodeTransform, biostream.Position{})
		_, ok := e.Connect(Connection{Source: a, Target: b})
		require.True(t, ok)
		_, ok = e.Connect(Connection{Source: b, Target: a})
		require.True(t, ok)

		cyclic := New(e.Project(), WithIDGenerator(seqIDs()))
		cyclic.CreateNode(biostream.NodeControl, biostream.Position{})
		assert.Len(t, cyclic.Project().Edges, 2)
	})

	t.Run("off never links", func(t *testing.T) {
		e := newTestEditor(WithAutoConnect(AutoConnectOff))
		e.CreateNode(biostream.NodeDataSource, biostream.Position{})
		e.CreateNode(biostream.NodeTransform, biostream.Position{})
		assert.Empty(t, e.Project().Edges)
	})
}

func TestParseAutoConnect(t *testing.T) {
	for in, want := range map[string]AutoConnect{
		"":            AutoConnectLatestLeaf,
		"latest-leaf": AutoConnectLatestLeaf,
		"OFF":         AutoConnectOff,
		" none ":      AutoConnectOff,
	} {
		got, err := ParseAutoConnect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAutoConnect("latest-selected")
	assert.Error(t, err)
	assert.Equal(t, "latest-leaf", AutoConnectLatestLeaf.String())
}

// Create A then B (auto-linked), delete A: the edge goes with it and B
// keeps its id.
func TestScenarioCascadeDelete(t *testing.T) {
	e := newTestEditor()
	a := e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	b := e.CreateNode(biostream.NodeTransform, biostream.Position{X: 100})
	require.Len(t, e.Project().Edges, 1)

	require.True(t, e.DeleteNode(a))

	p := e.Project()
	require.Len(t, p.Nodes, 1)
	assert.Equal(t, b, p.Nodes[0].ID)
	assert.Empty(t, p.Edges)
	_, ok := e.Node(a)
	assert.False(t, ok)
}

// A, B, C; select A and C; delete selected: only B is left.
func TestScenarioDeleteSelected(t *testing.T) {
	e := newTestEditor(WithAutoConnect(AutoConnectOff))
	a := e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	b := e.CreateNode(biostream.NodeTransform, biostream.Position{})
	c := e.CreateNode(biostream.NodeVisualization, biostream.Position{})
	_, _ = e.Connect(Connection{Source: a, Target: b})
	_, _ = e.Connect(Connection{Source: b, Target: c})

	e.SetSelection([]string{a, c}, nil)
	r := e.DeleteSelected()

	assert.ElementsMatch(t, []string{a, c}, r.NodeIDs)
	assert.Len(t, r.EdgeIDs, 2)
	p := e.Project()
	require.Len(t, p.Nodes, 1)
	assert.Equal(t, b, p.Nodes[0].ID)
	assert.Empty(t, p.Edges)
	assert.True(t, e.Selection().Empty())
}

func TestUpdateNode(t *testing.T) {
	e := newTestEditor()
	id := e.CreateNode(biostream.NodeRScript, biostream.Position{})

	label := "My script"
	code := "print(1)"
	params := biostream.Params{"timeout": 60, "verbose": true}
	target := biostream.TargetHPC
	require.NoError(t, e.UpdateNode(id, NodePatch{
		Label:           &label,
		Code:            &code,
		Params:          &params,
		ExecutionTarget: &target,
		Resources:       &biostream.ResourceSpec{CPU: 8, Memory: 16384, Time: "02:00:00"},
	}))

	n, _ := e.Node(id)
	assert.Equal(t, label, n.Label)
	assert.Equal(t, code, n.Code)
	assert.Equal(t, biostream.Params{"timeout": 60.0, "verbose": true}, n.Params)
	assert.Equal(t, biostream.TargetHPC, n.ExecutionTarget)
	assert.Equal(t, &biostream.ResourceSpec{CPU: 8, Memory: 16384, Time: "02:00:00"}, n.Resources)
	assert.Equal(t, biostream.NodeRScript, n.Type, "type is immutable")
	assert.Equal(t, id, n.ID)

	t.Run("unknown id", func(t *testing.T) {
		err := e.UpdateNode("ghost", NodePatch{Label: &label})
		assert.ErrorIs(t, err, biostream.ErrNodeNotFound)
	})

	t.Run("rejects non-scalar params", func(t *testing.T) {
		bad := biostream.Params{"nested": map[string]any{"a": 1}}
		err := e.UpdateNode(id, NodePatch{Params: &bad})
		require.Error(t, err)
		n, _ := e.Node(id)
		assert.Equal(t, 60.0, n.Params["timeout"])
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		s := biostream.ExecutionStatus("paused")
		assert.ErrorIs(t, e.UpdateNode(id, NodePatch{Status: &s}), ErrInvalidPatch)
	})

	t.Run("empty resources clears", func(t *testing.T) {
		require.NoError(t, e.UpdateNode(id, NodePatch{Resources: &biostream.ResourceSpec{}}))
		n, _ := e.Node(id)
		assert.Nil(t, n.Resources)
	})
}

func TestMoveNodeAfterDeleteIsNoop(t *testing.T) {
	e := newTestEditor()
	id := e.CreateNode(biostream.NodeTransform, biostream.Position{})
	require.True(t, e.DeleteNode(id))

	assert.False(t, e.MoveNode(id, biostream.Position{X: 5}))
	assert.Empty(t, e.Project().Nodes)
}

func TestConnect(t *testing.T) {
	e := newTestEditor(WithAutoConnect(AutoConnectOff))
	a := e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	b := e.CreateNode(biostream.NodeTransform, biostream.Position{})

	id, ok := e.Connect(Connection{Source: a, Target: b, SourceHandle: "out", TargetHandle: "in", Data: map[string]any{"label": "rows"}})
	require.True(t, ok)
	edge, _ := e.Edge(id)
	assert.Equal(t, "out", edge.SourceHandle)
	assert.Equal(t, "in", edge.TargetHandle)
	assert.Equal(t, map[string]any{"label": "rows"}, edge.Data)

	_, ok = e.Connect(Connection{Source: a, Target: b, SourceHandle: "out", TargetHandle: "in"})
	assert.False(t, ok, "duplicate")

	_, ok = e.Connect(Connection{Source: a, Target: b, Type: biostream.EdgeControlFlow})
	assert.True(t, ok, "different handles is a different connection")

	_, ok = e.Connect(Connection{Source: a, Target: "ghost"})
	assert.False(t, ok)
	_, ok = e.Connect(Connection{Source: "ghost", Target: b})
	assert.False(t, ok)
	_, ok = e.Connect(Connection{Source: a, Target: a})
	assert.False(t, ok)

	assert.Len(t, e.Project().Edges, 2)
}

func TestDeleteEdgePrunesSelection(t *testing.T) {
	e := newTestEditor()
	a := e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	b := e.CreateNode(biostream.NodeTransform, biostream.Position{})
	edgeID := e.Project().Edges[0].ID

	e.SetSelection([]string{a, b}, []string{edgeID})
	require.True(t, e.DeleteEdge(edgeID))
	assert.False(t, e.DeleteEdge(edgeID))

	sel := e.Selection()
	assert.Equal(t, []string{a, b}, sel.NodeIDs)
	assert.Empty(t, sel.EdgeIDs)
}

func TestSetSelectionFiltersUnknownIDs(t *testing.T) {
	e := newTestEditor()
	a := e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	b := e.CreateNode(biostream.NodeTransform, biostream.Position{})
	edgeID := e.Project().Edges[0].ID

	e.SetSelection([]string{"ghost", b, a, b}, []string{edgeID, "ghost-edge"})
	sel := e.Selection()
	assert.Equal(t, []string{b, a}, sel.NodeIDs)
	assert.Equal(t, []string{edgeID}, sel.EdgeIDs)

	e.SelectAll()
	sel = e.Selection()
	assert.Equal(t, []string{a, b}, sel.NodeIDs)
	assert.Equal(t, []string{edgeID}, sel.EdgeIDs)

	e.ClearSelection()
	assert.True(t, e.Selection().Empty())
}

func TestViewportIsViewStateOnly(t *testing.T) {
	e := newTestEditor()
	e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	before := e.Project()

	e.SetViewport(biostream.Viewport{X: 40, Y: -20, Zoom: 2})
	assert.Equal(t, biostream.Viewport{X: 40, Y: -20, Zoom: 2}, e.Viewport())
	assert.Empty(t, cmp.Diff(before, e.Project()))

	e.SetViewport(biostream.Viewport{Zoom: 0})
	assert.Equal(t, 1.0, e.Viewport().Zoom)
}

func TestReplaceDropsDanglingEdgesAndResetsState(t *testing.T) {
	e := newTestEditor()
	e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	e.SaveCheckpoint()
	e.SelectAll()

	p := biostream.NewProject("p2", "Imported", "", time.Now())
	p.Nodes = []biostream.Node{{ID: "n1", Type: biostream.NodeTransform, Status: biostream.StatusPending}}
	p.Edges = []biostream.Edge{{ID: "e1", Source: "n1", Target: "missing", Type: biostream.EdgeDataFlow}}
	e.Replace(p)

	got := e.Project()
	assert.Equal(t, "p2", got.ID)
	assert.Len(t, got.Nodes, 1)
	assert.Empty(t, got.Edges)
	assert.True(t, e.Selection().Empty())
	assert.False(t, e.CanUndo())
	assert.Len(t, p.Edges, 1, "input is not modified")
}

func TestMutationsStampUpdatedAt(t *testing.T) {
	e := newTestEditor()
	created := e.Project().Metadata.UpdatedAt
	id := e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	added := e.Project().Metadata.UpdatedAt
	assert.True(t, added.After(created))

	require.True(t, e.SetExecutionStatus(id, biostream.StatusRunning))
	running := e.Project().Metadata.UpdatedAt
	assert.True(t, running.After(added), "status is saved with the node")

	require.True(t, e.SetExecutionResult(biostream.ExecutionResult{NodeID: id, Status: biostream.StatusCompleted, Logs: []string{"done"}}))
	assert.True(t, e.Project().Metadata.UpdatedAt.After(running))

	before := e.Project().Metadata.UpdatedAt
	e.SetExecuting(true)
	assert.Equal(t, before, e.Project().Metadata.UpdatedAt, "the running flag is not saved")
}

func TestConnectDataSurvivesExport(t *testing.T) {
	e := newTestEditor(WithAutoConnect(AutoConnectOff))
	a := e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	b := e.CreateNode(biostream.NodeTransform, biostream.Position{})

	id, ok := e.Connect(Connection{Source: a, Target: b, Data: map[string]any{
		"weight": 3,
		"ratio":  float32(0.5),
		"tags":   []string{"qc", "raw"},
		"nested": map[string]any{"n": int64(7)},
	}})
	require.True(t, ok)
	edge, _ := e.Edge(id)
	assert.Equal(t, 3.0, edge.Data["weight"])
	assert.Equal(t, []any{"qc", "raw"}, edge.Data["tags"])

	var buf bytes.Buffer
	require.NoError(t, biostream.Export(&buf, e.Project()))
	got, err := biostream.Import(&buf)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(e.Project(), got))

	_, ok = e.Connect(Connection{Source: b, Target: a, Data: map[string]any{"fn": func() {}}})
	assert.False(t, ok, "data that cannot be encoded is refused")
}

func TestProjectReturnsCopy(t *testing.T) {
	e := newTestEditor()
	id := e.CreateNode(biostream.NodeDataSource, biostream.Position{})

	p := e.Project()
	p.Nodes[0].Label = "mutated"
	p.Nodes[0].Params["sep"] = ";"

	n, _ := e.Node(id)
	assert.Equal(t, "CSV Reader", n.Label)
	assert.Equal(t, ",", n.Params["sep"])
}
