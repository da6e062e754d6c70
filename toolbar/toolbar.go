// Package toolbar implements the editor's command bar: execution control,
// history, persistence and document import/export.
package toolbar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	biostream "github.com/bigyambat/BioStream"
	"github.com/bigyambat/BioStream/editor"
)

// ErrUnknownCommand is returned by Dispatch for a name it does not know.
var ErrUnknownCommand = errors.New("toolbar: unknown command")

// Command names accepted by Dispatch.
const (
	CmdRun            = "run"
	CmdStop           = "stop"
	CmdRefresh        = "refresh"
	CmdUndo           = "undo"
	CmdRedo           = "redo"
	CmdSave           = "save"
	CmdSelectAll      = "select-all"
	CmdClear          = "clear"
	CmdDeleteSelected = "delete-selected"
)

// Commands lists the Dispatch names in toolbar order.
var Commands = []string{CmdRun, CmdStop, CmdRefresh, CmdUndo, CmdRedo, CmdSave, CmdSelectAll, CmdClear, CmdDeleteSelected}

// Option configures a Toolbar.
type Option func(*Toolbar)

// WithStore sets the persistence backend used by Save and Open.
func WithStore(s biostream.Store) Option {
	return func(t *Toolbar) { t.store = s }
}

// WithExecutor sets the execution backend used by Run, Stop and Refresh.
func WithExecutor(x biostream.Executor) Option {
	return func(t *Toolbar) { t.exec = x }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Toolbar) { t.log = l }
}

// Toolbar binds an editor to optional store and executor backends.
type Toolbar struct {
	ed    *editor.Editor
	store biostream.Store
	exec  biostream.Executor
	log   *zap.Logger

	mu      sync.Mutex
	jobs    map[string]string // node id -> job id
	savedAt time.Time
}

// New returns a toolbar for ed.
func New(ed *editor.Editor, opts ...Option) *Toolbar {
	t := &Toolbar{
		ed:   ed,
		log:  zap.NewNop(),
		jobs: make(map[string]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State is what the toolbar shows.
type State struct {
	ProjectID     string `json:"projectId"`
	Name          string `json:"name"`
	Executing     bool   `json:"executing"`
	CanUndo       bool   `json:"canUndo"`
	CanRedo       bool   `json:"canRedo"`
	SelectedNodes int    `json:"selectedNodes"`
	SelectedEdges int    `json:"selectedEdges"`
	Unsaved       bool   `json:"unsaved"`
	Jobs          int    `json:"jobs"`
	HasStore      bool   `json:"hasStore"`
	HasExecutor   bool   `json:"hasExecutor"`
}

// State returns the current toolbar state.
func (t *Toolbar) State() State {
	p := t.ed.Project()
	sel := t.ed.Selection()

	t.mu.Lock()
	jobs := len(t.jobs)
	unsaved := !p.Metadata.UpdatedAt.Equal(t.savedAt)
	t.mu.Unlock()

	return State{
		ProjectID:     p.ID,
		Name:          p.Name,
		Executing:     t.ed.Executing(),
		CanUndo:       t.ed.CanUndo(),
		CanRedo:       t.ed.CanRedo(),
		SelectedNodes: len(sel.NodeIDs),
		SelectedEdges: len(sel.EdgeIDs),
		Unsaved:       unsaved,
		Jobs:          jobs,
		HasStore:      t.store != nil,
		HasExecutor:   t.exec != nil,
	}
}

// Run starts the workflow. Without an executor it only raises the running
// flag. With one, every node is submitted in dependency order; a cyclic
// graph is refused with biostream.ErrCycleDetected. A node whose submission
// fails is marked failed and the rest are still submitted.
func (t *Toolbar) Run(ctx context.Context) error {
	if t.ed.Executing() {
		return nil
	}
	if t.exec == nil {
		t.ed.SetExecuting(true)
		return nil
	}

	p := t.ed.Project()
	order, err := biostream.TopologicalOrder(p.Nodes, p.Edges)
	if err != nil {
		return fmt.Errorf("toolbar: run: %w", err)
	}
	byID := make(map[string]biostream.Node, len(p.Nodes))
	for _, n := range p.Nodes {
		byID[n.ID] = n
	}

	t.ed.SetExecuting(true)
	t.log.Info("workflow started", zap.String("project", p.ID), zap.Int("nodes", len(order)))

	var submitted int
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		jobID, err := t.exec.Submit(ctx, byID[id])
		if err != nil {
			t.log.Warn("submit failed", zap.String("node", id), zap.Error(err))
			t.ed.SetExecutionResult(biostream.ExecutionResult{NodeID: id, Status: biostream.StatusFailed, Error: err.Error()})
			continue
		}
		t.ed.SetExecutionStatus(id, biostream.StatusRunning)
		t.mu.Lock()
		t.jobs[id] = jobID
		t.mu.Unlock()
		submitted++
	}
	if submitted == 0 {
		t.ed.SetExecuting(false)
	}
	return nil
}

// Stop cancels outstanding jobs, returns running nodes to pending and
// lowers the running flag. Cancellation errors are joined and returned
// after every job has been tried.
func (t *Toolbar) Stop(ctx context.Context) error {
	t.mu.Lock()
	jobs := t.jobs
	t.jobs = make(map[string]string)
	t.mu.Unlock()

	var errs []error
	for _, nodeID := range slices.Sorted(maps.Keys(jobs)) {
		if t.exec != nil {
			if err := t.exec.Cancel(ctx, jobs[nodeID]); err != nil {
				errs = append(errs, fmt.Errorf("toolbar: cancel %s: %w", nodeID, err))
			}
		}
		if n, ok := t.ed.Node(nodeID); ok && n.Status == biostream.StatusRunning {
			t.ed.SetExecutionStatus(nodeID, biostream.StatusPending)
		}
	}
	t.ed.SetExecuting(false)
	t.log.Info("workflow stopped", zap.String("project", t.ed.ID()), zap.Int("cancelled", len(jobs)))
	return errors.Join(errs...)
}

// Refresh polls every outstanding job once and applies the results. Jobs
// that reached a terminal status are forgotten; when none are left the
// running flag is lowered. It returns the number of results applied.
func (t *Toolbar) Refresh(ctx context.Context) (int, error) {
	if t.exec == nil {
		return 0, biostream.ErrNoExecutor
	}
	t.mu.Lock()
	jobs := maps.Clone(t.jobs)
	t.mu.Unlock()

	var applied int
	for _, nodeID := range slices.Sorted(maps.Keys(jobs)) {
		r, err := t.exec.Poll(ctx, jobs[nodeID])
		if err != nil {
			return applied, fmt.Errorf("toolbar: poll %s: %w", nodeID, err)
		}
		if r == nil {
			continue
		}
		res := *r
		res.NodeID = nodeID
		ok := t.ed.SetExecutionResult(res)
		if ok {
			applied++
		}
		if !ok || terminal(res.Status) {
			t.mu.Lock()
			delete(t.jobs, nodeID)
			t.mu.Unlock()
		}
	}

	t.mu.Lock()
	idle := len(t.jobs) == 0
	t.mu.Unlock()
	if idle && len(jobs) > 0 {
		t.ed.SetExecuting(false)
	}
	return applied, nil
}

func terminal(s biostream.ExecutionStatus) bool {
	switch s {
	case biostream.StatusCompleted, biostream.StatusFailed, biostream.StatusCached:
		return true
	}
	return false
}

// Undo steps back in history.
func (t *Toolbar) Undo() bool { return t.ed.Undo() }

// Redo steps forward in history.
func (t *Toolbar) Redo() bool { return t.ed.Redo() }

// SelectAll selects every node and edge.
func (t *Toolbar) SelectAll() { t.ed.SelectAll() }

// Clear empties the selection.
func (t *Toolbar) Clear() { t.ed.ClearSelection() }

// DeleteSelected removes the selection as one undo step.
func (t *Toolbar) DeleteSelected() editor.Removal {
	var r editor.Removal
	t.ed.Checkpointed(func() bool {
		r = t.ed.DeleteSelected()
		return len(r.NodeIDs)+len(r.EdgeIDs) > 0
	})
	return r
}

// Save persists the live project.
func (t *Toolbar) Save(ctx context.Context) error {
	if t.store == nil {
		return biostream.ErrNoStore
	}
	p := t.ed.Project()
	if err := t.store.SaveProject(ctx, p); err != nil {
		return fmt.Errorf("toolbar: save %s: %w", p.ID, err)
	}
	t.mu.Lock()
	t.savedAt = p.Metadata.UpdatedAt
	t.mu.Unlock()
	t.log.Info("project saved", zap.String("project", p.ID), zap.Int("nodes", len(p.Nodes)), zap.Int("edges", len(p.Edges)))
	return nil
}

// Open loads a persisted project into the editor, replacing the live one.
// It returns biostream.ErrProjectNotFound for an unknown id.
func (t *Toolbar) Open(ctx context.Context, projectID string) error {
	if t.store == nil {
		return biostream.ErrNoStore
	}
	p, err := t.store.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("toolbar: open %s: %w", projectID, err)
	}
	if p == nil {
		return biostream.ErrProjectNotFound
	}
	t.replace(p)
	t.mu.Lock()
	t.savedAt = p.Metadata.UpdatedAt
	t.mu.Unlock()
	return nil
}

// MarkSaved records the live project as matching the store, for projects
// loaded by other means than Open.
func (t *Toolbar) MarkSaved() {
	updated := t.ed.Project().Metadata.UpdatedAt
	t.mu.Lock()
	t.savedAt = updated
	t.mu.Unlock()
}

// Export writes the live project as a JSON document.
func (t *Toolbar) Export(w io.Writer) error {
	return biostream.Export(w, t.ed.Project())
}

// Import reads a JSON document and replaces the live project with it. On
// error the live project is untouched.
func (t *Toolbar) Import(r io.Reader) (*biostream.Project, error) {
	p, err := biostream.Import(r)
	if err != nil {
		return nil, err
	}
	t.replace(p)
	t.log.Info("project imported", zap.String("project", p.ID), zap.Int("nodes", len(p.Nodes)))
	return p, nil
}

func (t *Toolbar) replace(p *biostream.Project) {
	t.mu.Lock()
	t.jobs = make(map[string]string)
	t.mu.Unlock()
	t.ed.Replace(p)
}

// Dispatch runs a command by name.
func (t *Toolbar) Dispatch(ctx context.Context, name string) error {
	switch name {
	case CmdRun:
		return t.Run(ctx)
	case CmdStop:
		return t.Stop(ctx)
	case CmdRefresh:
		_, err := t.Refresh(ctx)
		return err
	case CmdUndo:
		t.Undo()
	case CmdRedo:
		t.Redo()
	case CmdSave:
		return t.Save(ctx)
	case CmdSelectAll:
		t.SelectAll()
	case CmdClear:
		t.Clear()
	case CmdDeleteSelected:
		t.DeleteSelected()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return nil
}
