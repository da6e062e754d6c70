package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	biostream "github.com/bigyambat/BioStream"
	"github.com/bigyambat/BioStream/canvas"
	"github.com/bigyambat/BioStream/editor"
	"github.com/bigyambat/BioStream/toolbar"
)

// keepAlive is the comment interval on idle event streams.
const keepAlive = 15 * time.Second

func (s *Server) createSchema(c fiber.Ctx) error {
	store := s.hub.Store()
	if store == nil {
		return fail(c, biostream.ErrNoStore)
	}
	if err := store.CreateSchema(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "schema created"})
}

func (s *Server) dropSchema(c fiber.Ctx) error {
	store := s.hub.Store()
	if store == nil {
		return fail(c, biostream.ErrNoStore)
	}
	if err := store.DropSchema(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "schema dropped"})
}

func (s *Server) listTemplates(c fiber.Ctx) error {
	return c.JSON(s.catalog.Filter(c.Query("q"), c.Query("category")))
}

func (s *Server) listCategories(c fiber.Ctx) error {
	return c.JSON(s.catalog.Categories())
}

func (s *Server) listGroups(c fiber.Ctx) error {
	return c.JSON(s.catalog.Grouped())
}

// listProjects returns the persisted project summaries.
func (s *Server) listProjects(c fiber.Ctx) error {
	store := s.hub.Store()
	if store == nil {
		return fail(c, biostream.ErrNoStore)
	}
	list, err := store.ListProjects(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(list)
}

func (s *Server) listSessions(c fiber.Ctx) error {
	return c.JSON(s.hub.IDs())
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) createProject(c fiber.Ctx) error {
	var req createProjectRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badBody(c)
		}
	}
	sess := s.hub.Create(req.Name, req.Description)
	return c.Status(fiber.StatusCreated).JSON(sess.Editor.Project())
}

func (s *Server) importProject(c fiber.Ctx) error {
	sess, err := s.hub.Import(c.Body())
	if err != nil {
		return fail(c, err)
	}
	p := sess.Editor.Project()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": p.ID, "nodes": len(p.Nodes), "edges": len(p.Edges)})
}

// getProject returns the project document, opening it from the store if
// necessary.
func (s *Server) getProject(c fiber.Ctx) error {
	sess, err := s.hub.Open(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	raw, err := biostream.MarshalDocument(sess.Editor.Project())
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

func (s *Server) closeProject(c fiber.Ctx) error {
	if !s.hub.Close(c.Params("id")) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not open"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) setInfo(c fiber.Ctx, sess *Session) error {
	var req createProjectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c)
	}
	sess.Editor.SetInfo(req.Name, req.Description)
	return c.SendStatus(fiber.StatusNoContent)
}

type stateResponse struct {
	Toolbar   toolbar.State      `json:"toolbar"`
	Selection editor.Selection   `json:"selection"`
	Viewport  biostream.Viewport `json:"viewport"`
	Mode      canvas.Mode        `json:"mode"`
	Menu      *canvas.Menu       `json:"menu"`
	ZoomPct   int                `json:"zoomPercent"`
	Clipboard int                `json:"clipboard"`
}

func (s *Server) getState(c fiber.Ctx, sess *Session) error {
	return c.JSON(stateResponse{
		Toolbar:   sess.Toolbar.State(),
		Selection: sess.Editor.Selection(),
		Viewport:  sess.Editor.Viewport(),
		Mode:      sess.Canvas.Mode(),
		Menu:      sess.Canvas.Menu(),
		ZoomPct:   sess.Canvas.ZoomPercent(),
		Clipboard: sess.Editor.ClipboardSize(),
	})
}

func (s *Server) exportProject(c fiber.Ctx, sess *Session) error {
	var buf bytes.Buffer
	if err := sess.Toolbar.Export(&buf); err != nil {
		return fail(c, err)
	}
	c.Attachment(sess.ID() + ".json")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(buf.Bytes())
}

func (s *Server) dispatch(c fiber.Ctx, sess *Session) error {
	if err := sess.Toolbar.Dispatch(c.Context(), c.Params("name")); err != nil {
		return fail(c, err)
	}
	return c.JSON(sess.Toolbar.State())
}

// streamEvents serves the project's change events as server-sent events.
func (s *Server) streamEvents(c fiber.Ctx, sess *Session) error {
	events := s.hub.Events()
	if events == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": "event stream disabled"})
	}
	ctx, cancel := context.WithCancel(s.ctx)
	ch, err := events.Subscribe(ctx, sess.ID())
	if err != nil {
		cancel()
		return fail(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	projectID := sess.ID()
	log := s.log
	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}
		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()
		for {
			select {
			case env, ok := <-ch:
				if !ok {
					return
				}
				data, err := json.Marshal(env)
				if err != nil {
					log.Warn("event not encoded", zap.Error(err))
					continue
				}
				fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", env.Seq, env.Kind, data)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				log.Debug("event stream closed", zap.String("project", projectID))
				return
			}
		}
	})
}
