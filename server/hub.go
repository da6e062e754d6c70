package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	biostream "github.com/bigyambat/BioStream"
	"github.com/bigyambat/BioStream/canvas"
	"github.com/bigyambat/BioStream/editor"
	"github.com/bigyambat/BioStream/toolbar"
)

// Session is one open project with its canvas and toolbar.
type Session struct {
	Editor  *editor.Editor
	Canvas  *canvas.Canvas
	Toolbar *toolbar.Toolbar

	id          string
	unsubscribe func()
}

// ID returns the id the session was opened under.
func (s *Session) ID() string { return s.id }

func (s *Session) close() {
	s.unsubscribe()
	s.Canvas.Close()
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithStore sets the persistence backend. Without one, save and open are
// unavailable.
func WithStore(s biostream.Store) HubOption {
	return func(h *Hub) { h.store = s }
}

// WithExecutor sets the execution backend handed to every toolbar.
func WithExecutor(x biostream.Executor) HubOption {
	return func(h *Hub) { h.exec = x }
}

// WithEditorOptions appends options used for every new editor.
func WithEditorOptions(opts ...editor.Option) HubOption {
	return func(h *Hub) { h.edOpts = append(h.edOpts, opts...) }
}

// WithAuthor sets the author stamped on new projects.
func WithAuthor(author string) HubOption {
	return func(h *Hub) { h.author = author }
}

// WithEvents sets the event bus sessions publish to.
func WithEvents(e *Events) HubOption {
	return func(h *Hub) { h.events = e }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) HubOption {
	return func(h *Hub) { h.log = l }
}

// Hub keeps one session per open project.
type Hub struct {
	store   biostream.Store
	exec    biostream.Executor
	edOpts  []editor.Option
	author  string
	events  *Events
	metrics *Metrics
	log     *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewHub returns an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		log:      zap.NewNop(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Store returns the persistence backend, or nil.
func (h *Hub) Store() biostream.Store { return h.store }

// Events returns the event bus, or nil.
func (h *Hub) Events() *Events { return h.events }

func (h *Hub) newSession(p *biostream.Project) *Session {
	opts := append(slices.Clone(h.edOpts), editor.WithLogger(h.log.Named("editor")))
	ed := editor.New(p, opts...)

	tbOpts := []toolbar.Option{toolbar.WithLogger(h.log.Named("toolbar"))}
	if h.store != nil {
		tbOpts = append(tbOpts, toolbar.WithStore(h.store))
	}
	if h.exec != nil {
		tbOpts = append(tbOpts, toolbar.WithExecutor(h.exec))
	}

	s := &Session{
		Editor:  ed,
		Canvas:  canvas.New(ed, canvas.WithLogger(h.log.Named("canvas"))),
		Toolbar: toolbar.New(ed, tbOpts...),
		id:      ed.ID(),
	}
	s.unsubscribe = ed.Subscribe(func(ev editor.Event) {
		h.metrics.event(ev.Kind)
		if h.events == nil {
			return
		}
		if err := h.events.Publish(ev); err != nil {
			h.log.Warn("event not published", zap.String("project", ev.ProjectID), zap.Error(err))
		}
	})
	return s
}

// add registers s unless a session with the same id appeared meanwhile, in
// which case that one wins and s is discarded.
func (h *Hub) add(s *Session) *Session {
	h.mu.Lock()
	if existing, ok := h.sessions[s.id]; ok {
		h.mu.Unlock()
		s.close()
		return existing
	}
	h.sessions[s.id] = s
	h.mu.Unlock()

	h.metrics.sessionOpened()
	h.log.Info("session opened", zap.String("project", s.id))
	return s
}

// Create opens a new empty project.
func (h *Hub) Create(name, description string) *Session {
	if name == "" {
		name = "Untitled Workflow"
	}
	p := biostream.NewProject(uuid.NewString(), name, h.author, time.Now())
	p.Description = description
	return h.add(h.newSession(p))
}

// Get returns an open session.
func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

// Open returns the open session for id, loading the project from the store
// if it is not open yet. It returns biostream.ErrProjectNotFound when
// neither has it.
func (h *Hub) Open(ctx context.Context, id string) (*Session, error) {
	if s, ok := h.Get(id); ok {
		return s, nil
	}
	if h.store == nil {
		return nil, biostream.ErrProjectNotFound
	}
	p, err := h.store.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("server: open %s: %w", id, err)
	}
	if p == nil {
		return nil, biostream.ErrProjectNotFound
	}
	s := h.add(h.newSession(p))
	s.Toolbar.MarkSaved()
	return s, nil
}

// Import parses a document and opens it. If a project with the same id is
// already open its graph is replaced, as the toolbar's import does.
func (h *Hub) Import(raw []byte) (*Session, error) {
	p, err := biostream.ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	if s, ok := h.Get(p.ID); ok {
		if _, err := s.Toolbar.Import(bytes.NewReader(raw)); err != nil {
			return nil, err
		}
		return s, nil
	}
	return h.add(h.newSession(p)), nil
}

// Close drops an open session without saving it.
func (h *Hub) Close(id string) bool {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if !ok {
		return false
	}
	s.close()
	if h.events != nil {
		h.events.Forget(id)
	}
	h.metrics.sessionClosed()
	h.log.Info("session closed", zap.String("project", id))
	return true
}

// IDs lists open sessions, sorted.
func (h *Hub) IDs() []string {
	h.mu.RLock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// SaveAll saves every open project with unsaved changes and returns how
// many were written. Failures are joined; the other projects are still
// saved.
func (h *Hub) SaveAll(ctx context.Context) (int, error) {
	if h.store == nil {
		return 0, biostream.ErrNoStore
	}
	var saved int
	var errs []error
	for _, id := range h.IDs() {
		s, ok := h.Get(id)
		if !ok || !s.Toolbar.State().Unsaved {
			continue
		}
		if err := s.Toolbar.Save(ctx); err != nil {
			errs = append(errs, err)
			h.metrics.autosaved(false)
			continue
		}
		h.metrics.autosaved(true)
		saved++
	}
	return saved, errors.Join(errs...)
}

// CloseAll closes every session.
func (h *Hub) CloseAll() {
	for _, id := range h.IDs() {
		h.Close(id)
	}
}
