package server

import (
	"github.com/gofiber/fiber/v3"

	biostream "github.com/bigyambat/BioStream"
	"github.com/bigyambat/BioStream/editor"
)

type createNodeRequest struct {
	Type       biostream.NodeType `json:"type"`
	TemplateID string             `json:"templateId"`
	Position   biostream.Position `json:"position"`
}

// createNode adds a node in graph coordinates, from a template when one is
// named.
func (s *Server) createNode(c fiber.Ctx, sess *Session) error {
	var req createNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c)
	}
	if req.Type == "" && req.TemplateID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "type or templateId is required"})
	}

	ed := sess.Editor
	var id string
	var unknownTemplate bool
	ed.Checkpointed(func() bool {
		if req.TemplateID != "" {
			nid, ok := ed.CreateNodeFromTemplate(req.TemplateID, req.Position)
			if !ok {
				unknownTemplate = true
				return false
			}
			id = nid
			return true
		}
		id = ed.CreateNode(req.Type, req.Position)
		return true
	})
	if unknownTemplate {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "template not found"})
	}
	n, _ := ed.Node(id)
	return c.Status(fiber.StatusCreated).JSON(n)
}

func (s *Server) updateNode(c fiber.Ctx, sess *Session) error {
	var patch editor.NodePatch
	if err := c.Bind().JSON(&patch); err != nil {
		return badBody(c)
	}
	ed := sess.Editor
	var err error
	ed.Checkpointed(func() bool {
		err = ed.UpdateNode(c.Params("nodeId"), patch)
		return err == nil
	})
	if err != nil {
		return fail(c, err)
	}
	n, _ := ed.Node(c.Params("nodeId"))
	return c.JSON(n)
}

func (s *Server) deleteNode(c fiber.Ctx, sess *Session) error {
	ed := sess.Editor
	if !ed.Checkpointed(func() bool { return ed.DeleteNode(c.Params("nodeId")) }) {
		return fail(c, biostream.ErrNodeNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) createEdge(c fiber.Ctx, sess *Session) error {
	var conn editor.Connection
	if err := c.Bind().JSON(&conn); err != nil {
		return badBody(c)
	}
	ed := sess.Editor
	var id string
	if !ed.Checkpointed(func() bool {
		var ok bool
		id, ok = ed.Connect(conn)
		return ok
	}) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "connection refused"})
	}
	e, _ := ed.Edge(id)
	return c.Status(fiber.StatusCreated).JSON(e)
}

func (s *Server) deleteEdge(c fiber.Ctx, sess *Session) error {
	ed := sess.Editor
	if !ed.Checkpointed(func() bool { return ed.DeleteEdge(c.Params("edgeId")) }) {
		return fail(c, biostream.ErrEdgeNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) setSelection(c fiber.Ctx, sess *Session) error {
	var sel editor.Selection
	if err := c.Bind().JSON(&sel); err != nil {
		return badBody(c)
	}
	sess.Editor.SetSelection(sel.NodeIDs, sel.EdgeIDs)
	return c.JSON(sess.Editor.Selection())
}

func (s *Server) setViewport(c fiber.Ctx, sess *Session) error {
	var v biostream.Viewport
	if err := c.Bind().JSON(&v); err != nil {
		return badBody(c)
	}
	if v.Zoom < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "zoom must not be negative"})
	}
	sess.Editor.SetViewport(v)
	return c.JSON(sess.Editor.Viewport())
}
