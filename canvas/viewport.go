package canvas

import (
	"math"

	biostream "github.com/bigyambat/BioStream"
)

const (
	MinZoom  = 0.1
	MaxZoom  = 4.0
	ZoomStep = 1.2

	// FitPadding is the fraction of the bounds left empty around the graph
	// by FitView.
	FitPadding = 0.1

	// Node sizes assumed when a node has not reported its own.
	DefaultNodeWidth  = 250.0
	DefaultNodeHeight = 120.0
)

func clampZoom(z float64) float64 {
	return math.Min(MaxZoom, math.Max(MinZoom, z))
}

// ZoomAt scales the viewport by factor keeping the graph point under the
// screen-local anchor fixed. The result is clamped to [MinZoom, MaxZoom].
func (c *Canvas) ZoomAt(anchor Point, factor float64) biostream.Viewport {
	v := c.ed.Viewport()
	next := clampZoom(v.Zoom * factor)
	ratio := next / v.Zoom
	v = biostream.Viewport{
		X:    anchor.X - (anchor.X-v.X)*ratio,
		Y:    anchor.Y - (anchor.Y-v.Y)*ratio,
		Zoom: next,
	}
	c.ed.SetViewport(v)
	return v
}

// ZoomIn zooms in one step around the centre of bounds.
func (c *Canvas) ZoomIn(bounds Rect) biostream.Viewport {
	return c.ZoomAt(center(bounds), ZoomStep)
}

// ZoomOut zooms out one step around the centre of bounds.
func (c *Canvas) ZoomOut(bounds Rect) biostream.Viewport {
	return c.ZoomAt(center(bounds), 1/ZoomStep)
}

// SetZoom sets an absolute zoom level around the centre of bounds.
func (c *Canvas) SetZoom(zoom float64, bounds Rect) biostream.Viewport {
	v := c.ed.Viewport()
	return c.ZoomAt(center(bounds), clampZoom(zoom)/v.Zoom)
}

// ZoomPercent is the zoom level as shown on the controls badge.
func (c *Canvas) ZoomPercent() int {
	return int(math.Round(c.ed.Viewport().Zoom * 100))
}

// Pan shifts the viewport by a screen-space delta.
func (c *Canvas) Pan(dx, dy float64) biostream.Viewport {
	v := c.ed.Viewport()
	v.X += dx
	v.Y += dy
	c.ed.SetViewport(v)
	return v
}

// ResetView restores the identity transform.
func (c *Canvas) ResetView() biostream.Viewport {
	c.ed.SetViewport(biostream.DefaultViewport)
	return biostream.DefaultViewport
}

// FitView zooms and pans so every node fits inside bounds. An empty graph
// resets the view.
func (c *Canvas) FitView(bounds Rect) biostream.Viewport {
	p := c.ed.Project()
	if len(p.Nodes) == 0 || bounds.Width <= 0 || bounds.Height <= 0 {
		return c.ResetView()
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range p.Nodes {
		w, h := n.Width, n.Height
		if w <= 0 {
			w = DefaultNodeWidth
		}
		if h <= 0 {
			h = DefaultNodeHeight
		}
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X+w)
		maxY = math.Max(maxY, n.Position.Y+h)
	}

	gw, gh := maxX-minX, maxY-minY
	usableW := bounds.Width * (1 - 2*FitPadding)
	usableH := bounds.Height * (1 - 2*FitPadding)
	zoom := clampZoom(math.Min(usableW/gw, usableH/gh))

	v := biostream.Viewport{
		X:    bounds.Width/2 - (minX+gw/2)*zoom,
		Y:    bounds.Height/2 - (minY+gh/2)*zoom,
		Zoom: zoom,
	}
	c.ed.SetViewport(v)
	return v
}

func center(r Rect) Point {
	return Point{X: r.Width / 2, Y: r.Height / 2}
}
