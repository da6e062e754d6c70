package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	biostream "github.com/bigyambat/BioStream"
)

func TestCopyPasteRemapsEdges(t *testing.T) {
	e := newTestEditor()
	a := e.CreateNode(biostream.NodeDataSource, biostream.Position{X: 0, Y: 0})
	b := e.CreateNode(biostream.NodeTransform, biostream.Position{X: 100, Y: 0})
	c := e.CreateNode(biostream.NodeVisualization, biostream.Position{X: 200, Y: 0})
	require.Len(t, e.Project().Edges, 2)

	// b->c is outside the copied set.
	require.Equal(t, 2, e.Copy([]string{a, b, "ghost"}))
	assert.Equal(t, 2, e.ClipboardSize())

	pasted := e.Paste(biostream.Position{X: 50, Y: 50})
	require.Len(t, pasted, 2)
	assert.NotContains(t, pasted, a)
	assert.NotContains(t, pasted, b)

	p := e.Project()
	require.Len(t, p.Nodes, 5)
	require.Len(t, p.Edges, 3)
	last := p.Edges[2]
	assert.Equal(t, pasted[0], last.Source)
	assert.Equal(t, pasted[1], last.Target)

	n, _ := e.Node(pasted[1])
	assert.Equal(t, biostream.Position{X: 150, Y: 50}, n.Position)
	assert.Empty(t, biostream.Dangling(p.Nodes, p.Edges))
	_ = c
}

func TestPasteResetsExecutionState(t *testing.T) {
	e := newTestEditor()
	a := e.CreateNode(biostream.NodeRScript, biostream.Position{})
	require.True(t, e.SetExecutionResult(biostream.ExecutionResult{
		NodeID: a,
		Status: biostream.StatusFailed,
		Error:  "object 'x' not found",
		Logs:   []string{"Error in eval"},
	}))

	e.Copy([]string{a})
	ids := e.Paste(biostream.Position{})
	require.Len(t, ids, 1)

	n, _ := e.Node(ids[0])
	assert.Equal(t, biostream.StatusPending, n.Status)
	assert.Empty(t, n.Error)
	assert.Nil(t, n.Logs)

	orig, _ := e.Node(a)
	assert.Equal(t, biostream.StatusFailed, orig.Status)
}

func TestPasteTwiceYieldsDistinctIDs(t *testing.T) {
	e := newTestEditor()
	a := e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	e.Copy([]string{a})

	first := e.Paste(biostream.Position{X: 10})
	second := e.Paste(biostream.Position{X: 20})
	assert.NotEqual(t, first, second)
	assert.Len(t, e.Project().Nodes, 3)
}

func TestCopyNothingKeepsClipboard(t *testing.T) {
	e := newTestEditor()
	a := e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	e.Copy([]string{a})

	assert.Equal(t, 0, e.Copy([]string{"ghost"}))
	assert.Equal(t, 1, e.ClipboardSize())
	assert.Nil(t, New(nil).Paste(biostream.Position{}))
}

func TestCutRemovesNodes(t *testing.T) {
	e := newTestEditor()
	a := e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	b := e.CreateNode(biostream.NodeTransform, biostream.Position{})
	e.SetSelection([]string{a}, nil)

	require.Equal(t, 1, e.Cut([]string{a}))
	p := e.Project()
	require.Len(t, p.Nodes, 1)
	assert.Equal(t, b, p.Nodes[0].ID)
	assert.Empty(t, p.Edges)
	assert.True(t, e.Selection().Empty())

	ids := e.Paste(biostream.Position{})
	require.Len(t, ids, 1)
	n, _ := e.Node(ids[0])
	assert.Equal(t, "CSV Reader", n.Label)
}
