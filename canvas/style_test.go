package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	biostream "github.com/bigyambat/BioStream"
)

func TestMinimapColor(t *testing.T) {
	for status, want := range map[biostream.ExecutionStatus]string{
		biostream.StatusCompleted: "#10b981",
		biostream.StatusRunning:   "#3b82f6",
		biostream.StatusFailed:    "#ef4444",
		biostream.StatusPending:   "#64748b",
		biostream.StatusCached:    "#64748b",
		"":                        "#64748b",
	} {
		assert.Equal(t, want, MinimapColor(status), status)
	}
}

func TestStyleNode(t *testing.T) {
	s := StyleNode(biostream.Node{Type: "qc-report", Status: biostream.StatusRunning, ExecutionTarget: biostream.TargetHPC}, true, false)
	assert.Equal(t, "📄", s.Icon, "unknown types get the generic icon")
	assert.True(t, s.Pulse)
	assert.Equal(t, "#3b82f6", s.Border)
	assert.Equal(t, "#7e22ce", s.Target.Text)
	assert.Equal(t, "#3b82f6", s.Minimap)

	s = StyleNode(biostream.Node{Type: biostream.NodeRScript, Icon: "🧬", Status: biostream.StatusFailed}, false, false)
	assert.Equal(t, "🧬", s.Icon)
	assert.False(t, s.Pulse)
	assert.Equal(t, "#fef2f2", s.Status.Background)
}

func TestStyleEdge(t *testing.T) {
	assert.Equal(t, EdgeStyle{Stroke: "#3b82f6", StrokeWidth: 3}, StyleEdge(false, false))
	assert.Equal(t, StyleEdge(true, false), StyleEdge(false, true))
	assert.Equal(t, 5.0, StyleEdge(true, true).StrokeWidth)
}

func TestSceneAndHover(t *testing.T) {
	c := newTestCanvas(t)
	ed := c.Editor()
	a := ed.CreateNode(biostream.NodeDataSource, biostream.Position{})
	ed.CreateNode(biostream.NodeTransform, biostream.Position{})
	edgeID := ed.Project().Edges[0].ID

	c.Hover(edgeID)
	assert.Equal(t, edgeID, c.Hovered())
	ed.SetSelection([]string{a}, nil)

	s := c.Scene()
	require.Len(t, s.Nodes, 2)
	assert.True(t, s.Nodes[a].Selected)
	assert.True(t, s.Edges[edgeID].Glow)

	ed.DeleteEdge(edgeID)
	assert.Empty(t, c.Hovered(), "hover cleared when the element goes away")
}

func TestDirtyTracking(t *testing.T) {
	c := newTestCanvas(t)
	ed := c.Editor()

	assert.True(t, c.TakeDirty().All, "first paint is a full repaint")
	assert.True(t, c.TakeDirty().Empty())

	a := ed.CreateNode(biostream.NodeDataSource, biostream.Position{})
	b := ed.CreateNode(biostream.NodeTransform, biostream.Position{})
	edgeID := ed.Project().Edges[0].ID
	d := c.TakeDirty()
	assert.False(t, d.All)
	assert.ElementsMatch(t, []string{a, b, edgeID}, d.IDs)

	ed.SetSelection([]string{a}, nil)
	c.TakeDirty()
	ed.SetSelection([]string{b}, nil)
	assert.ElementsMatch(t, []string{a, b}, c.TakeDirty().IDs, "old and new selection repaint")

	c.Hover(a)
	c.Hover(b)
	assert.ElementsMatch(t, []string{a, b}, c.TakeDirty().IDs)

	ed.SetInfo("renamed", "")
	assert.True(t, c.TakeDirty().Empty())

	c.Pan(1, 1)
	assert.True(t, c.TakeDirty().All)

	c.Close()
	ed.CreateNode(biostream.NodeControl, biostream.Position{})
	assert.True(t, c.TakeDirty().Empty(), "closed canvas stops tracking")
}
