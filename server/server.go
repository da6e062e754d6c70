// Package server exposes open BioStream projects over HTTP: the editor,
// canvas and toolbar operations, a server-sent event stream of changes and
// Prometheus metrics.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"

	biostream "github.com/bigyambat/BioStream"
	"github.com/bigyambat/BioStream/editor"
	"github.com/bigyambat/BioStream/palette"
	"github.com/bigyambat/BioStream/toolbar"
)

const finalSaveTimeout = 30 * time.Second

// Server is the HTTP front of a Hub.
type Server struct {
	app     *fiber.App
	hub     *Hub
	catalog *palette.Catalog
	metrics *Metrics
	log     *zap.Logger

	// ctx ends every event stream when the server shuts down.
	ctx  context.Context
	stop context.CancelFunc
}

// New builds the fiber app for hub. metrics may be nil, in which case
// /metrics is not served.
func New(hub *Hub, metrics *Metrics, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	s := &Server{
		ctx:     ctx,
		stop:    stop,
		hub:     hub,
		catalog: palette.Default(),
		metrics: metrics,
		log:     log,
	}
	s.app = fiber.New(fiber.Config{
		AppName:      "biostream",
		ErrorHandler: s.handleError,
		// Params and bodies end up in editor state and map keys that outlive
		// the request.
		Immutable: true,
	})
	s.app.Use(recoverer.New())
	if metrics != nil {
		s.app.Use(metrics.Middleware())
	}
	s.routes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("listening", zap.String("addr", addr))
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown ends the event streams, stops accepting requests and waits for
// in-flight ones. Then, with a store configured, it saves every project
// with unsaved changes, so edits made by those last requests are kept.
// Finally it closes every session and the event bus.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	err := s.app.ShutdownWithContext(ctx)
	if s.hub.Store() != nil {
		// The save gets its own deadline, not what the drain left of ctx.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalSaveTimeout)
		n, serr := s.hub.SaveAll(sctx)
		cancel()
		if serr != nil {
			s.log.Error("final save failed", zap.Int("saved", n), zap.Error(serr))
		} else if n > 0 {
			s.log.Info("saved open projects", zap.Int("projects", n))
		}
		err = errors.Join(err, serr)
	}
	s.hub.CloseAll()
	if ev := s.hub.Events(); ev != nil {
		err = errors.Join(err, ev.Close())
	}
	return err
}

func (s *Server) routes() {
	app := s.app

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "sessions": len(s.hub.IDs())})
	})
	if s.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", s.createSchema)
	app.Delete("/schema", s.dropSchema)

	// ── Palette ───────────────────────────────────────────────────────
	app.Get("/templates", s.listTemplates)
	app.Get("/templates/categories", s.listCategories)
	app.Get("/templates/groups", s.listGroups)

	// ── Projects ──────────────────────────────────────────────────────
	app.Get("/projects", s.listProjects)
	app.Post("/projects", s.createProject)
	app.Post("/projects/import", s.importProject)
	app.Get("/sessions", s.listSessions)
	app.Get("/projects/:id", s.getProject)
	app.Delete("/projects/:id", s.closeProject)
	app.Put("/projects/:id/info", s.withSession(s.setInfo))
	app.Get("/projects/:id/state", s.withSession(s.getState))
	app.Get("/projects/:id/export", s.withSession(s.exportProject))
	app.Get("/projects/:id/events", s.withSession(s.streamEvents))
	app.Post("/projects/:id/commands/:name", s.withSession(s.dispatch))

	// ── Graph ─────────────────────────────────────────────────────────
	app.Post("/projects/:id/nodes", s.withSession(s.createNode))
	app.Patch("/projects/:id/nodes/:nodeId", s.withSession(s.updateNode))
	app.Delete("/projects/:id/nodes/:nodeId", s.withSession(s.deleteNode))
	app.Post("/projects/:id/edges", s.withSession(s.createEdge))
	app.Delete("/projects/:id/edges/:edgeId", s.withSession(s.deleteEdge))
	app.Put("/projects/:id/selection", s.withSession(s.setSelection))
	app.Put("/projects/:id/viewport", s.withSession(s.setViewport))

	// ── Canvas gestures ───────────────────────────────────────────────
	app.Post("/projects/:id/drop", s.withSession(s.drop))
	app.Post("/projects/:id/connect", s.withSession(s.connect))
	app.Post("/projects/:id/drag-stop", s.withSession(s.dragStop))
	app.Post("/projects/:id/pane-click", s.withSession(s.clickPane))
	app.Post("/projects/:id/keys", s.withSession(s.keyDown))
	app.Post("/projects/:id/menu", s.withSession(s.openMenu))
	app.Post("/projects/:id/menu/choose", s.withSession(s.chooseMenu))
	app.Post("/projects/:id/zoom", s.withSession(s.zoom))
	app.Put("/projects/:id/mode", s.withSession(s.setMode))
	app.Put("/projects/:id/hover", s.withSession(s.hover))
	app.Get("/projects/:id/scene", s.withSession(s.scene))
	app.Get("/projects/:id/dirty", s.withSession(s.takeDirty))
}

// withSession resolves :id to an open session.
func (s *Server) withSession(h func(fiber.Ctx, *Session) error) fiber.Handler {
	return func(c fiber.Ctx) error {
		sess, ok := s.hub.Get(c.Params("id"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not open"})
		}
		return h(c, sess)
	}
}

// fail maps err to a status code and writes the error body.
func fail(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, biostream.ErrInvalidDocument), errors.Is(err, editor.ErrInvalidPatch):
		status = fiber.StatusBadRequest
	case errors.Is(err, biostream.ErrProjectNotFound),
		errors.Is(err, biostream.ErrNodeNotFound),
		errors.Is(err, biostream.ErrEdgeNotFound),
		errors.Is(err, toolbar.ErrUnknownCommand):
		status = fiber.StatusNotFound
	case errors.Is(err, biostream.ErrCycleDetected):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, biostream.ErrNoStore), errors.Is(err, biostream.ErrNoExecutor):
		status = fiber.StatusNotImplemented
	}

	body := fiber.Map{"error": err.Error()}
	var de *biostream.DocumentError
	if errors.As(err, &de) && de.Field != "" {
		body["field"] = de.Field
	}
	return c.Status(status).JSON(body)
}

func badBody(c fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
}

// handleError catches errors handlers return instead of writing.
func (s *Server) handleError(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	s.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
