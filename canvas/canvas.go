// Package canvas is the headless presentation layer of the workflow editor.
// It turns pointer and keyboard gestures, delivered as plain values by a
// browser front-end, into editor operations, and keeps the view-only state
// that does not belong in the graph: the context menu, hover, the
// interaction mode and the set of elements that need repainting.
package canvas

import (
	"sync"

	"go.uber.org/zap"

	biostream "github.com/bigyambat/BioStream"
	"github.com/bigyambat/BioStream/editor"
	"github.com/bigyambat/BioStream/palette"
)

// Point is a position in screen pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is the canvas element's bounding box on screen.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Mode is the pointer interaction mode.
type Mode string

const (
	// ModeSelect lets the pointer select, drag and connect nodes.
	ModeSelect Mode = "select"
	// ModePan makes pointer drags pan the viewport; graph gestures are
	// ignored.
	ModePan Mode = "pan"
)

// Handle names a connection port on a node. An empty HandleID is the node's
// default port.
type Handle struct {
	NodeID   string `json:"nodeId"`
	HandleID string `json:"handleId,omitempty"`
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Canvas) { c.log = l }
}

// WithCheckpoints controls whether graph-changing gestures record an undo
// step. It is on by default.
func WithCheckpoints(on bool) Option {
	return func(c *Canvas) { c.checkpoints = on }
}

// Canvas drives one editor.
type Canvas struct {
	ed          *editor.Editor
	log         *zap.Logger
	checkpoints bool

	mu       sync.Mutex
	mode     Mode
	menu     *Menu
	hovered  string
	dirty    dirtySet
	lastSel  []string
	cancelFn func()
}

// New returns a canvas for ed and subscribes to its change events. Call
// Close to unsubscribe.
func New(ed *editor.Editor, opts ...Option) *Canvas {
	c := &Canvas{
		ed:          ed,
		log:         zap.NewNop(),
		checkpoints: true,
		mode:        ModeSelect,
		dirty:       newDirtySet(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.dirty.all = true
	c.cancelFn = ed.Subscribe(c.observe)
	return c
}

// Close stops dirty tracking.
func (c *Canvas) Close() {
	c.mu.Lock()
	cancel := c.cancelFn
	c.cancelFn = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Editor returns the editor this canvas drives.
func (c *Canvas) Editor() *editor.Editor { return c.ed }

// Mode returns the interaction mode.
func (c *Canvas) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches the interaction mode. Unknown modes are ignored.
func (c *Canvas) SetMode(m Mode) bool {
	if m != ModeSelect && m != ModePan {
		return false
	}
	c.mu.Lock()
	c.mode = m
	c.mu.Unlock()
	return true
}

func (c *Canvas) selecting() bool {
	return c.Mode() == ModeSelect
}

// mutate runs fn as one undo step when checkpoints are enabled.
func (c *Canvas) mutate(fn func() bool) bool {
	if !c.checkpoints {
		return fn()
	}
	return c.ed.Checkpointed(fn)
}

// ScreenToGraph converts a screen point inside bounds to graph space using
// the current viewport.
func (c *Canvas) ScreenToGraph(screen Point, bounds Rect) biostream.Position {
	return screenToGraph(screen, bounds, c.ed.Viewport())
}

// GraphToScreen is the inverse of ScreenToGraph.
func (c *Canvas) GraphToScreen(pos biostream.Position, bounds Rect) Point {
	v := c.ed.Viewport()
	return Point{
		X: pos.X*v.Zoom + v.X + bounds.X,
		Y: pos.Y*v.Zoom + v.Y + bounds.Y,
	}
}

func screenToGraph(screen Point, bounds Rect, v biostream.Viewport) biostream.Position {
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return biostream.Position{
		X: (screen.X - bounds.X - v.X) / zoom,
		Y: (screen.Y - bounds.Y - v.Y) / zoom,
	}
}

// Drop creates a node from a palette drag payload released at screen. A
// payload naming a template seeds the node from it; otherwise the type's
// default template is used. An empty or unreadable payload does nothing.
func (c *Canvas) Drop(screen Point, bounds Rect, payload []byte) (string, bool) {
	p, err := palette.DecodePayload(payload)
	if err != nil {
		c.log.Debug("drop ignored", zap.Error(err))
		return "", false
	}
	pos := c.ScreenToGraph(screen, bounds)

	var id string
	ok := c.mutate(func() bool {
		if p.TemplateID != "" {
			if nid, found := c.ed.CreateNodeFromTemplate(p.TemplateID, pos); found {
				id = nid
				return true
			}
		}
		if p.Type == "" {
			return false
		}
		id = c.ed.CreateNode(p.Type, pos)
		return true
	})
	if ok {
		c.log.Debug("node dropped", zap.String("node", id), zap.Float64("x", pos.X), zap.Float64("y", pos.Y))
	}
	return id, ok
}

// Connect completes a connection drag. A nil target means the drag ended on
// empty space and is cancelled.
func (c *Canvas) Connect(from Handle, to *Handle) (string, bool) {
	if to == nil || !c.selecting() {
		return "", false
	}
	var id string
	ok := c.mutate(func() bool {
		var connected bool
		id, connected = c.ed.Connect(editor.Connection{
			Source:       from.NodeID,
			Target:       to.NodeID,
			SourceHandle: from.HandleID,
			TargetHandle: to.HandleID,
		})
		return connected
	})
	return id, ok
}

// DragStop moves a node to the graph position under screen.
func (c *Canvas) DragStop(nodeID string, screen Point, bounds Rect) bool {
	if !c.selecting() {
		return false
	}
	pos := c.ScreenToGraph(screen, bounds)
	return c.mutate(func() bool { return c.ed.MoveNode(nodeID, pos) })
}

// Select replaces the selection, as a click or rubber-band does. Ignored in
// pan mode.
func (c *Canvas) Select(nodeIDs, edgeIDs []string) bool {
	if !c.selecting() {
		return false
	}
	c.ed.SetSelection(nodeIDs, edgeIDs)
	return true
}

// ClickPane dismisses the context menu and clears the selection.
func (c *Canvas) ClickPane() {
	c.CloseMenu()
	c.ed.ClearSelection()
}
