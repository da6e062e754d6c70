package editor

import (
	"maps"

	biostream "github.com/bigyambat/BioStream"
)

// SetExecuting sets the workflow-level running flag shown by the toolbar.
func (e *Editor) SetExecuting(on bool) {
	e.mu.Lock()
	if e.executing == on {
		e.mu.Unlock()
		return
	}
	e.executing = on
	pid := e.project.ID
	e.enqueue(Event{Kind: ExecutionChanged, ProjectID: pid})
	e.mu.Unlock()

	e.flush()
}

// Executing reports the running flag.
func (e *Editor) Executing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.executing
}

// SetExecutionStatus sets a node's status and stamps the project as
// modified, since status is saved with the node. It reports false for an
// unknown node or status.
func (e *Editor) SetExecutionStatus(nodeID string, status biostream.ExecutionStatus) bool {
	if !status.Valid() {
		return false
	}
	e.mu.Lock()
	i := e.nodeIndex(nodeID)
	if i < 0 {
		e.mu.Unlock()
		return false
	}
	e.project.Nodes[i].Status = status
	if status == biostream.StatusRunning || status == biostream.StatusPending {
		e.project.Nodes[i].Error = ""
	}
	e.touch()
	pid := e.project.ID
	e.enqueue(Event{Kind: ExecutionChanged, ProjectID: pid, NodeIDs: []string{nodeID}})
	e.mu.Unlock()

	e.flush()
	return true
}

// SetExecutionResult records r and copies its status, error, logs and
// resources onto the node. It reports false for an unknown node or status.
func (e *Editor) SetExecutionResult(r biostream.ExecutionResult) bool {
	if !r.Status.Valid() {
		return false
	}
	e.mu.Lock()
	i := e.nodeIndex(r.NodeID)
	if i < 0 {
		e.mu.Unlock()
		return false
	}
	n := &e.project.Nodes[i]
	n.Status = r.Status
	n.Error = r.Error
	n.Logs = copyLogs(r.Logs)
	if r.Resources != nil {
		res := *r.Resources
		n.Resources = &res
	}
	r.Logs = copyLogs(r.Logs)
	e.results[r.NodeID] = r
	e.touch()
	pid := e.project.ID
	e.enqueue(Event{Kind: ExecutionChanged, ProjectID: pid, NodeIDs: []string{r.NodeID}})
	e.mu.Unlock()

	e.flush()
	return true
}

// Result returns the last execution result recorded for a node.
func (e *Editor) Result(nodeID string) (biostream.ExecutionResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.results[nodeID]
	return r, ok
}

// Results returns every recorded execution result keyed by node id.
func (e *Editor) Results() map[string]biostream.ExecutionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.results)
}
