package editor

// EventKind says what a change event is about.
type EventKind string

const (
	NodesAdded       EventKind = "nodes.added"
	NodesUpdated     EventKind = "nodes.updated"
	NodesRemoved     EventKind = "nodes.removed"
	EdgesAdded       EventKind = "edges.added"
	EdgesRemoved     EventKind = "edges.removed"
	SelectionChanged EventKind = "selection.changed"
	ViewportChanged  EventKind = "viewport.changed"
	ExecutionChanged EventKind = "execution.changed"
	ProjectUpdated   EventKind = "project.updated"
	// ProjectReplaced is sent after undo, redo, open and import: any id may
	// have changed.
	ProjectReplaced EventKind = "project.replaced"
)

// Event is delivered to listeners after a mutation has been applied.
type Event struct {
	Kind      EventKind `json:"kind"`
	ProjectID string    `json:"projectId"`
	NodeIDs   []string  `json:"nodeIds,omitempty"`
	EdgeIDs   []string  `json:"edgeIds,omitempty"`
}

// Listener receives change events in the order the mutations committed.
// It runs after the editor lock is released, so it may call back into the
// editor. Events are usually delivered on the mutating goroutine before the
// mutator returns; under contention they may be delivered by another
// goroutine that is already draining the queue.
type Listener func(Event)

// Subscribe registers l and returns a function that removes it.
func (e *Editor) Subscribe(l Listener) (cancel func()) {
	e.lmu.Lock()
	id := e.nextL
	e.nextL++
	e.listeners[id] = l
	e.lmu.Unlock()

	return func() {
		e.lmu.Lock()
		delete(e.listeners, id)
		e.lmu.Unlock()
	}
}

// enqueue appends events to the delivery queue. Callers hold e.mu, so the
// queue follows commit order.
func (e *Editor) enqueue(events ...Event) {
	if len(events) == 0 {
		return
	}
	e.qmu.Lock()
	e.queue = append(e.queue, events...)
	e.qmu.Unlock()
}

// flush delivers queued events to the listeners. Only one goroutine drains
// at a time; a flush that finds another goroutine draining returns at once
// and its events are delivered by that goroutine, after the ones before
// them. A listener that mutates the editor queues its events behind the
// current one.
func (e *Editor) flush() {
	e.qmu.Lock()
	if e.draining {
		e.qmu.Unlock()
		return
	}
	e.draining = true
	for len(e.queue) > 0 {
		ev := e.queue[0]
		e.queue = e.queue[1:]
		e.qmu.Unlock()

		for _, l := range e.snapshotListeners() {
			l(ev)
		}

		e.qmu.Lock()
	}
	e.queue = nil
	e.draining = false
	e.qmu.Unlock()
}

func (e *Editor) snapshotListeners() []Listener {
	e.lmu.Lock()
	defer e.lmu.Unlock()
	ls := make([]Listener, 0, len(e.listeners))
	for i := 0; i < e.nextL; i++ {
		if l, ok := e.listeners[i]; ok {
			ls = append(ls, l)
		}
	}
	return ls
}
