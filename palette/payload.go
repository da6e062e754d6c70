package palette

import (
	"bytes"
	"encoding/json"
	"errors"

	biostream "github.com/bigyambat/BioStream"
)

// MIMEType is the drag-data channel the canvas reads.
const MIMEType = "application/reactflow"

var ErrBadPayload = errors.New("palette: unreadable drag payload")

// Payload is what a palette drag transmits to the canvas.
type Payload struct {
	TemplateID string             `json:"templateId,omitempty"`
	Type       biostream.NodeType `json:"type"`
}

// EncodePayload returns the drag data for t.
func EncodePayload(t Template) []byte {
	b, _ := json.Marshal(Payload{TemplateID: t.ID, Type: t.Type})
	return b
}

// DecodePayload accepts a JSON payload or a bare node type string.
func DecodePayload(raw []byte) (Payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Payload{}, ErrBadPayload
	}
	if raw[0] == '{' {
		var p Payload
		if err := json.Unmarshal(raw, &p); err != nil {
			return Payload{}, ErrBadPayload
		}
		if p.Type == "" && p.TemplateID == "" {
			return Payload{}, ErrBadPayload
		}
		return p, nil
	}
	if bytes.ContainsAny(raw, "{}[]\"\n") {
		return Payload{}, ErrBadPayload
	}
	return Payload{Type: biostream.NodeType(raw)}, nil
}
