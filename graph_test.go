package biostream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodes(ids ...string) []Node {
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{ID: id, Type: NodeTransform}
	}
	return out
}

func edge(id, from, to string) Edge {
	return Edge{ID: id, Source: from, Target: to, Type: EdgeDataFlow}
}

func TestLeaves(t *testing.T) {
	ns := nodes("a", "b", "c", "d")
	es := []Edge{edge("e1", "a", "b"), edge("e2", "a", "c")}
	assert.Equal(t, []string{"b", "c", "d"}, Leaves(ns, es))
	assert.Nil(t, Leaves(nil, nil))
}

func TestDangling(t *testing.T) {
	ns := nodes("a", "b")
	es := []Edge{edge("e1", "a", "b"), edge("e2", "a", "x"), edge("e3", "y", "b")}
	assert.Equal(t, []string{"e2", "e3"}, Dangling(ns, es))
}

func TestTopologicalOrder(t *testing.T) {
	t.Run("chain declared backwards", func(t *testing.T) {
		order, err := TopologicalOrder(nodes("c", "b", "a"), []Edge{edge("1", "a", "b"), edge("2", "b", "c")})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("independent nodes keep order", func(t *testing.T) {
		order, err := TopologicalOrder(nodes("x", "y", "z"), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y", "z"}, order)
	})

	t.Run("diamond", func(t *testing.T) {
		es := []Edge{edge("1", "a", "b"), edge("2", "a", "c"), edge("3", "b", "d"), edge("4", "c", "d")}
		order, err := TopologicalOrder(nodes("a", "b", "c", "d"), es)
		require.NoError(t, err)
		pos := make(map[string]int)
		for i, id := range order {
			pos[id] = i
		}
		for _, e := range es {
			assert.Less(t, pos[e.Source], pos[e.Target], e.ID)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := TopologicalOrder(nodes("a", "b", "c"), []Edge{edge("1", "a", "b"), edge("2", "b", "c"), edge("3", "c", "a")})
		assert.ErrorIs(t, err, ErrCycleDetected)
	})
}
