package editor

import biostream "github.com/bigyambat/BioStream"

// SaveCheckpoint pushes a copy of the live project onto the undo stack and
// clears the redo stack. The oldest checkpoint is evicted past the history
// limit.
func (e *Editor) SaveCheckpoint() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.past = e.pushBounded(e.past, e.project.Clone())
	e.future = nil
}

// Undo restores the last checkpoint, keeping the live project for Redo. It
// reports false when there is nothing to undo.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	if len(e.past) == 0 {
		e.mu.Unlock()
		return false
	}
	prev := e.past[len(e.past)-1]
	e.past = e.past[:len(e.past)-1]
	e.future = append(e.future, e.project)
	e.project = prev
	events := e.restoredLocked()
	e.enqueue(events...)
	e.mu.Unlock()

	e.flush()
	return true
}

// Redo re-applies the last undone state. It reports false when there is
// nothing to redo.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	if len(e.future) == 0 {
		e.mu.Unlock()
		return false
	}
	next := e.future[len(e.future)-1]
	e.future = e.future[:len(e.future)-1]
	e.past = e.pushBounded(e.past, e.project)
	e.project = next
	events := e.restoredLocked()
	e.enqueue(events...)
	e.mu.Unlock()

	e.flush()
	return true
}

// CanUndo reports whether Undo would do anything.
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.past) > 0
}

// CanRedo reports whether Redo would do anything.
func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.future) > 0
}

// HistoryDepth returns the sizes of the undo and redo stacks.
func (e *Editor) HistoryDepth() (past, future int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.past), len(e.future)
}

func (e *Editor) pushBounded(stack []*biostream.Project, p *biostream.Project) []*biostream.Project {
	stack = append(stack, p)
	if over := len(stack) - e.historyLimit; over > 0 {
		clear(stack[:over])
		stack = stack[over:]
	}
	return stack
}

// restoredLocked drops selection entries and results that do not exist in
// the restored project. Callers hold mu.
func (e *Editor) restoredLocked() []Event {
	for id := range e.results {
		if e.nodeIndex(id) < 0 {
			delete(e.results, id)
		}
	}
	events := []Event{{Kind: ProjectReplaced, ProjectID: e.project.ID}}
	if e.pruneSelectionLocked() {
		events = append(events, e.selectionEventLocked())
	}
	return events
}

// Checkpointed snapshots the live project, runs fn, and pushes the snapshot
// as a checkpoint only if fn reports that it changed something. Mutations
// made by other goroutines while fn runs fold into the same undo step.
func (e *Editor) Checkpointed(fn func() bool) bool {
	e.mu.Lock()
	snap := e.project.Clone()
	e.mu.Unlock()

	if !fn() {
		return false
	}

	e.mu.Lock()
	e.past = e.pushBounded(e.past, snap)
	e.future = nil
	e.mu.Unlock()
	return true
}
