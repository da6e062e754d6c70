// Package editor is the graph state store behind the workflow canvas. It is
// the only writer of the live project, the selection, the viewport and the
// undo/redo history; every mutation goes through an Editor method so the
// no-dangling-reference invariants are enforced in one place.
//
// Unknown ids are never an error worth surfacing: methods report false (or
// ErrNodeNotFound) and leave the graph untouched, so gestures that race each
// other, such as a drag-stop for a node that was just deleted, are harmless.
package editor

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	biostream "github.com/bigyambat/BioStream"
	"github.com/bigyambat/BioStream/palette"
)

// DefaultHistoryLimit bounds the undo stack.
const DefaultHistoryLimit = 100

// AutoConnect selects what happens when a node is created.
type AutoConnect int

const (
	// AutoConnectLatestLeaf links the most recently created node that has no
	// outgoing edge to the new node.
	AutoConnectLatestLeaf AutoConnect = iota
	// AutoConnectOff never creates edges implicitly.
	AutoConnectOff
)

func (a AutoConnect) String() string {
	switch a {
	case AutoConnectLatestLeaf:
		return "latest-leaf"
	case AutoConnectOff:
		return "off"
	default:
		return fmt.Sprintf("AutoConnect(%d)", int(a))
	}
}

// ParseAutoConnect parses the configuration spelling of a policy.
func ParseAutoConnect(s string) (AutoConnect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latest-leaf":
		return AutoConnectLatestLeaf, nil
	case "off", "none":
		return AutoConnectOff, nil
	}
	return 0, fmt.Errorf("editor: unknown auto-connect policy %q", s)
}

// Option configures an Editor.
type Option func(*Editor)

// WithAutoConnect sets the auto-connect policy.
func WithAutoConnect(a AutoConnect) Option {
	return func(e *Editor) { e.autoConnect = a }
}

// WithHistoryLimit caps the undo stack; values below 1 are ignored.
func WithHistoryLimit(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.historyLimit = n
		}
	}
}

// WithCatalog sets the templates used to seed new nodes.
func WithCatalog(c *palette.Catalog) Option {
	return func(e *Editor) { e.catalog = c }
}

// WithClock replaces time.Now for metadata timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// WithIDGenerator replaces the id allocator. It receives a prefix ("edge" or
// the node type) and must return a fresh string; collisions are retried.
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(e *Editor) { e.newID = gen }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// Editor owns one live project.
type Editor struct {
	mu sync.Mutex

	project   *biostream.Project
	selNodes  []string
	selEdges  []string
	viewport  biostream.Viewport
	past      []*biostream.Project
	future    []*biostream.Project
	clipboard clipboard
	executing bool
	results   map[string]biostream.ExecutionResult

	autoConnect  AutoConnect
	historyLimit int
	catalog      *palette.Catalog
	now          func() time.Time
	newID        func(prefix string) string
	log          *zap.Logger

	lmu       sync.Mutex
	listeners map[int]Listener
	nextL     int

	// qmu guards the delivery queue; it is taken inside mu, never the
	// other way round.
	qmu      sync.Mutex
	queue    []Event
	draining bool
}

// New returns an editor for p. A nil p starts an untitled empty project.
func New(p *biostream.Project, opts ...Option) *Editor {
	e := &Editor{
		viewport:     biostream.DefaultViewport,
		results:      make(map[string]biostream.ExecutionResult),
		historyLimit: DefaultHistoryLimit,
		catalog:      palette.Default(),
		now:          time.Now,
		newID:        defaultID,
		log:          zap.NewNop(),
		listeners:    make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = palette.New(nil)
	}
	if p == nil {
		p = biostream.NewProject(uuid.NewString(), "Untitled Workflow", "", e.now())
	}
	e.project = sanitize(p)
	return e
}

func defaultID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// ID returns the project id.
func (e *Editor) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project.ID
}

// Project returns a deep copy of the live project.
func (e *Editor) Project() *biostream.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project.Clone()
}

// Node returns a copy of the node with id.
func (e *Editor) Node(id string) (biostream.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.nodeIndex(id)
	if i < 0 {
		return biostream.Node{}, false
	}
	return e.project.Nodes[i].Clone(), true
}

// Edge returns a copy of the edge with id.
func (e *Editor) Edge(id string) (biostream.Edge, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.edgeIndex(id)
	if i < 0 {
		return biostream.Edge{}, false
	}
	return e.project.Edges[i].Clone(), true
}

// SetInfo renames the project.
func (e *Editor) SetInfo(name, description string) {
	e.mu.Lock()
	e.project.Name = name
	e.project.Description = description
	e.touch()
	id := e.project.ID
	e.enqueue(Event{Kind: ProjectUpdated, ProjectID: id})
	e.mu.Unlock()
	e.flush()
}

// Replace swaps the live project for a copy of p, as Open and Import do.
// Edges that reference missing nodes are dropped. Selection, history,
// execution results and the running flag are reset.
func (e *Editor) Replace(p *biostream.Project) {
	if p == nil {
		return
	}
	e.mu.Lock()
	e.project = sanitize(p)
	e.selNodes, e.selEdges = nil, nil
	e.past, e.future = nil, nil
	e.results = make(map[string]biostream.ExecutionResult)
	e.executing = false
	id := e.project.ID
	e.enqueue(Event{Kind: ProjectReplaced, ProjectID: id})
	e.mu.Unlock()

	e.log.Info("project replaced", zap.String("project", id))
	e.flush()
}

// SetViewport stores the canvas transform. A non-positive zoom becomes 1.
func (e *Editor) SetViewport(v biostream.Viewport) {
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	e.mu.Lock()
	e.viewport = v
	id := e.project.ID
	e.enqueue(Event{Kind: ViewportChanged, ProjectID: id})
	e.mu.Unlock()
	e.flush()
}

// Viewport returns the canvas transform.
func (e *Editor) Viewport() biostream.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

// touch stamps UpdatedAt. Callers hold mu.
func (e *Editor) touch() {
	e.project.Metadata.UpdatedAt = e.now().UTC().Truncate(time.Millisecond)
}

// allocID returns an id with prefix not used by any node or edge. Callers
// hold mu.
func (e *Editor) allocID(prefix string) string {
	for {
		id := e.newID(prefix)
		if id != "" && e.nodeIndex(id) < 0 && e.edgeIndex(id) < 0 {
			return id
		}
	}
}

func (e *Editor) nodeIndex(id string) int {
	for i := range e.project.Nodes {
		if e.project.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) edgeIndex(id string) int {
	for i := range e.project.Edges {
		if e.project.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// sanitize deep-copies p and drops edges with missing endpoints.
func sanitize(p *biostream.Project) *biostream.Project {
	c := p.Clone()
	if c.Nodes == nil {
		c.Nodes = []biostream.Node{}
	}
	dangling := biostream.Dangling(c.Nodes, c.Edges)
	if len(dangling) > 0 {
		drop := toSet(dangling)
		kept := c.Edges[:0]
		for _, edge := range c.Edges {
			if !drop[edge.ID] {
				kept = append(kept, edge)
			}
		}
		c.Edges = kept
	}
	if c.Edges == nil {
		c.Edges = []biostream.Edge{}
	}
	for i := range c.Edges {
		// Data that cannot be encoded would fail the next export.
		d, err := biostream.NormalizeData(c.Edges[i].Data)
		if err != nil {
			d = nil
		}
		c.Edges[i].Data = d
	}
	return c
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
