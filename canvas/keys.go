package canvas

import (
	"strings"

	biostream "github.com/bigyambat/BioStream"
)

// PasteOffset shifts pasted nodes so they do not cover the originals.
var PasteOffset = biostream.Position{X: 20, Y: 20}

// KeyEvent is a keydown delivered by the front-end. Key uses DOM
// KeyboardEvent.key spelling ("Delete", "Escape", "a").
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
}

// mod reports whether the platform command modifier is held.
func (k KeyEvent) mod() bool { return k.Ctrl || k.Meta }

// KeyDown handles a keyboard shortcut and reports whether it was consumed.
//
//	Delete, Backspace        delete the selection
//	Escape                   clear the selection and close the menu
//	Ctrl/Cmd+A               select everything
//	Ctrl/Cmd+Z               undo
//	Ctrl/Cmd+Shift+Z, +Y     redo
//	Ctrl/Cmd+C, +X, +V       copy, cut, paste the selected nodes
func (c *Canvas) KeyDown(k KeyEvent) bool {
	key := k.Key
	if len(key) == 1 {
		key = strings.ToLower(key)
	}

	if !k.mod() {
		switch key {
		case "Delete", "Backspace":
			if c.ed.Selection().Empty() {
				return false
			}
			return c.mutate(func() bool {
				r := c.ed.DeleteSelected()
				return len(r.NodeIDs)+len(r.EdgeIDs) > 0
			})
		case "Escape":
			c.CloseMenu()
			c.ed.ClearSelection()
			return true
		}
		return false
	}

	switch key {
	case "a":
		c.ed.SelectAll()
		return true
	case "z":
		if k.Shift {
			return c.ed.Redo()
		}
		return c.ed.Undo()
	case "y":
		return c.ed.Redo()
	case "c":
		return c.ed.Copy(c.ed.Selection().NodeIDs) > 0
	case "x":
		ids := c.ed.Selection().NodeIDs
		if len(ids) == 0 {
			return false
		}
		return c.mutate(func() bool { return c.ed.Cut(ids) > 0 })
	case "v":
		if c.ed.ClipboardSize() == 0 {
			return false
		}
		return c.mutate(func() bool { return len(c.ed.Paste(PasteOffset)) > 0 })
	}
	return false
}
