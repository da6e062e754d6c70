package editor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	biostream "github.com/bigyambat/BioStream"
)

func TestSubscribeReceivesEventsInOrder(t *testing.T) {
	e := newTestEditor(WithLogger(zaptest.NewLogger(t)))

	var kinds []EventKind
	cancel := e.Subscribe(func(ev Event) {
		kinds = append(kinds, ev.Kind)
		assert.Equal(t, "p1", ev.ProjectID)
	})

	a := e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	e.CreateNode(biostream.NodeTransform, biostream.Position{})
	e.DeleteNode(a)

	assert.Equal(t, []EventKind{
		NodesAdded,
		NodesAdded, EdgesAdded,
		NodesRemoved, EdgesRemoved,
	}, kinds)

	cancel()
	e.CreateNode(biostream.NodeControl, biostream.Position{})
	assert.Len(t, kinds, 5)
}

func TestListenerMayCallBack(t *testing.T) {
	e := newTestEditor()
	var counts []int
	e.Subscribe(func(ev Event) {
		if ev.Kind == NodesAdded {
			counts = append(counts, len(e.Project().Nodes))
		}
	})

	e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	assert.Equal(t, []int{1, 2}, counts)
}

func TestNoEventForNoop(t *testing.T) {
	e := newTestEditor()
	fired := false
	e.Subscribe(func(Event) { fired = true })

	e.DeleteNode("ghost")
	e.DeleteEdge("ghost")
	e.Undo()
	e.ClearSelection()
	e.SetExecuting(false)
	assert.False(t, fired)
}

func TestExecutionSeam(t *testing.T) {
	e := newTestEditor()
	id := e.CreateNode(biostream.NodeRScript, biostream.Position{})

	e.SetExecuting(true)
	assert.True(t, e.Executing())

	require.True(t, e.SetExecutionStatus(id, biostream.StatusRunning))
	n, _ := e.Node(id)
	assert.Equal(t, biostream.StatusRunning, n.Status)

	assert.False(t, e.SetExecutionStatus(id, "paused"))
	assert.False(t, e.SetExecutionStatus("ghost", biostream.StatusRunning))

	r := biostream.ExecutionResult{
		NodeID:        id,
		Status:        biostream.StatusCompleted,
		Output:        "summary.csv",
		Logs:          []string{"Min. 1st Qu. Median"},
		ExecutionTime: 1500 * time.Millisecond,
		Resources:     &biostream.ResourceSpec{CPU: 2},
	}
	require.True(t, e.SetExecutionResult(r))

	n, _ = e.Node(id)
	assert.Equal(t, biostream.StatusCompleted, n.Status)
	assert.Equal(t, []string{"Min. 1st Qu. Median"}, n.Logs)
	assert.Equal(t, 2, n.Resources.CPU)

	got, ok := e.Result(id)
	require.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, got.ExecutionTime)
	assert.Len(t, e.Results(), 1)

	e.DeleteNode(id)
	_, ok = e.Result(id)
	assert.False(t, ok)
}

func TestEventsFollowCommitOrder(t *testing.T) {
	e := newTestEditor()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex
	var kinds []EventKind
	e.Subscribe(func(ev Event) {
		if ev.Kind == NodesAdded {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
		mu.Lock()
		kinds = append(kinds, ev.Kind)
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.CreateNode(biostream.NodeDataSource, biostream.Position{})
	}()

	<-entered
	// The node is committed but its event is still being delivered.
	nodes := e.Project().Nodes
	require.Len(t, nodes, 1)
	require.True(t, e.DeleteNode(nodes[0].ID))

	close(release)
	<-done
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventKind{NodesAdded, NodesRemoved}, kinds)
}
