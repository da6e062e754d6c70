package editor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	biostream "github.com/bigyambat/BioStream"
)

// TestRandomOperationsKeepInvariants drives the editor with a fixed-seed
// sequence of operations and checks the graph invariants after every step.
func TestRandomOperationsKeepInvariants(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1234} {
		rng := rand.New(rand.NewSource(seed))
		e := New(nil)

		pick := func(ids []string) string {
			if len(ids) == 0 || rng.Intn(10) == 0 {
				return "ghost"
			}
			return ids[rng.Intn(len(ids))]
		}

		for step := 0; step < 400; step++ {
			p := e.Project()
			nodeIDs := make([]string, len(p.Nodes))
			for i, n := range p.Nodes {
				nodeIDs[i] = n.ID
			}
			edgeIDs := make([]string, len(p.Edges))
			for i, edge := range p.Edges {
				edgeIDs[i] = edge.ID
			}

			switch rng.Intn(12) {
			case 0, 1, 2:
				e.CreateNode(biostream.NodeTypes[rng.Intn(len(biostream.NodeTypes))], biostream.Position{X: rng.Float64() * 500})
			case 3:
				e.DeleteNode(pick(nodeIDs))
			case 4:
				e.DeleteEdge(pick(edgeIDs))
			case 5:
				e.Connect(Connection{Source: pick(nodeIDs), Target: pick(nodeIDs)})
			case 6:
				e.SetSelection([]string{pick(nodeIDs), pick(nodeIDs)}, []string{pick(edgeIDs)})
			case 7:
				e.DeleteSelected()
			case 8:
				e.SaveCheckpoint()
			case 9:
				e.Undo()
			case 10:
				e.Redo()
			case 11:
				e.Copy([]string{pick(nodeIDs), pick(nodeIDs)})
				e.Paste(biostream.Position{X: 20, Y: 20})
			}

			checkInvariants(t, e, seed, step)
		}
	}
}

func checkInvariants(t *testing.T, e *Editor, seed int64, step int) {
	t.Helper()
	p := e.Project()

	require.Empty(t, biostream.Dangling(p.Nodes, p.Edges), "seed %d step %d: dangling edge", seed, step)

	ids := make(map[string]bool)
	for _, n := range p.Nodes {
		require.False(t, ids[n.ID], "seed %d step %d: duplicate id %s", seed, step, n.ID)
		ids[n.ID] = true
	}
	for _, edge := range p.Edges {
		require.False(t, ids[edge.ID], "seed %d step %d: duplicate id %s", seed, step, edge.ID)
		ids[edge.ID] = true
	}

	sel := e.Selection()
	for _, id := range sel.NodeIDs {
		_, ok := e.Node(id)
		require.True(t, ok, "seed %d step %d: selected node %s missing", seed, step, id)
	}
	for _, id := range sel.EdgeIDs {
		_, ok := e.Edge(id)
		require.True(t, ok, "seed %d step %d: selected edge %s missing", seed, step, id)
	}
}
