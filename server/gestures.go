package server

import (
	"github.com/gofiber/fiber/v3"

	"github.com/bigyambat/BioStream/canvas"
)

// Gesture bodies carry screen coordinates together with the canvas bounds
// the client measured, so the server can convert them to graph space.

type dropRequest struct {
	Screen  canvas.Point `json:"screen"`
	Bounds  canvas.Rect  `json:"bounds"`
	Payload string       `json:"payload"`
}

func (s *Server) drop(c fiber.Ctx, sess *Session) error {
	var req dropRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c)
	}
	id, ok := sess.Canvas.Drop(req.Screen, req.Bounds, []byte(req.Payload))
	if !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "nothing to drop"})
	}
	n, _ := sess.Editor.Node(id)
	return c.Status(fiber.StatusCreated).JSON(n)
}

type connectRequest struct {
	From canvas.Handle  `json:"from"`
	To   *canvas.Handle `json:"to"`
}

func (s *Server) connect(c fiber.Ctx, sess *Session) error {
	var req connectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c)
	}
	id, ok := sess.Canvas.Connect(req.From, req.To)
	if !ok {
		return c.JSON(fiber.Map{"connected": false})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"connected": true, "id": id})
}

type dragStopRequest struct {
	NodeID string       `json:"nodeId"`
	Screen canvas.Point `json:"screen"`
	Bounds canvas.Rect  `json:"bounds"`
}

func (s *Server) dragStop(c fiber.Ctx, sess *Session) error {
	var req dragStopRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c)
	}
	return c.JSON(fiber.Map{"moved": sess.Canvas.DragStop(req.NodeID, req.Screen, req.Bounds)})
}

func (s *Server) clickPane(c fiber.Ctx, sess *Session) error {
	sess.Canvas.ClickPane()
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) keyDown(c fiber.Ctx, sess *Session) error {
	var k canvas.KeyEvent
	if err := c.Bind().JSON(&k); err != nil {
		return badBody(c)
	}
	return c.JSON(fiber.Map{"consumed": sess.Canvas.KeyDown(k)})
}

type menuRequest struct {
	Kind     canvas.MenuKind `json:"kind"`
	TargetID string          `json:"targetId"`
	At       canvas.Point    `json:"at"`
}

func (s *Server) openMenu(c fiber.Ctx, sess *Session) error {
	var req menuRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c)
	}
	var ok bool
	switch req.Kind {
	case canvas.MenuNode:
		ok = sess.Canvas.OpenNodeMenu(req.TargetID, req.At)
	case canvas.MenuEdge:
		ok = sess.Canvas.OpenEdgeMenu(req.TargetID, req.At)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown menu kind"})
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "menu target not found"})
	}
	return c.JSON(sess.Canvas.Menu())
}

type chooseRequest struct {
	Action canvas.Action `json:"action"`
}

func (s *Server) chooseMenu(c fiber.Ctx, sess *Session) error {
	var req chooseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c)
	}
	return c.JSON(fiber.Map{"done": sess.Canvas.Choose(req.Action)})
}

type zoomRequest struct {
	// Action is one of in, out, reset, fit, set or pan.
	Action string      `json:"action"`
	Bounds canvas.Rect `json:"bounds"`
	Zoom   float64     `json:"zoom,omitempty"`
	DX     float64     `json:"dx,omitempty"`
	DY     float64     `json:"dy,omitempty"`
}

func (s *Server) zoom(c fiber.Ctx, sess *Session) error {
	var req zoomRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c)
	}
	cv := sess.Canvas
	switch req.Action {
	case "in":
		cv.ZoomIn(req.Bounds)
	case "out":
		cv.ZoomOut(req.Bounds)
	case "reset":
		cv.ResetView()
	case "fit":
		cv.FitView(req.Bounds)
	case "set":
		cv.SetZoom(req.Zoom, req.Bounds)
	case "pan":
		cv.Pan(req.DX, req.DY)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown zoom action"})
	}
	return c.JSON(fiber.Map{"viewport": sess.Editor.Viewport(), "zoomPercent": cv.ZoomPercent()})
}

func (s *Server) setMode(c fiber.Ctx, sess *Session) error {
	var req struct {
		Mode canvas.Mode `json:"mode"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c)
	}
	if !sess.Canvas.SetMode(req.Mode) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown mode"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) hover(c fiber.Ctx, sess *Session) error {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c)
	}
	sess.Canvas.Hover(req.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) scene(c fiber.Ctx, sess *Session) error {
	return c.JSON(sess.Canvas.Scene())
}

func (s *Server) takeDirty(c fiber.Ctx, sess *Session) error {
	return c.JSON(sess.Canvas.TakeDirty())
}
