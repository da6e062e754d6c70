package biostream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// DocumentError describes why an imported document was rejected.
type DocumentError struct {
	// Field is a JSON path such as "nodes[2].position"; empty for syntax errors.
	Field  string
	Reason string
	Err    error
}

func (e *DocumentError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%v: %s: %s", ErrInvalidDocument, e.Field, e.Reason)
	}
	return fmt.Sprintf("%v: %s", ErrInvalidDocument, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidDocument and the underlying cause.
func (e *DocumentError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidDocument, e.Err}
	}
	return []error{ErrInvalidDocument}
}

func docErr(field, format string, args ...any) error {
	return &DocumentError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Export writes p as an indented JSON document.
func Export(w io.Writer, p *Project) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("biostream: encode document: %w", err)
	}
	return nil
}

// MarshalDocument returns the JSON document for p.
func MarshalDocument(p *Project) ([]byte, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("biostream: encode document: %w", err)
	}
	return b, nil
}

// Import reads and validates a JSON document. Every failure is a
// *DocumentError matching ErrInvalidDocument.
func Import(r io.Reader) (*Project, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &DocumentError{Reason: "read failed", Err: err}
	}
	return ParseDocument(raw)
}

type wireDocument struct {
	ID          *string       `json:"id"`
	Name        *string       `json:"name"`
	Description string        `json:"description"`
	Nodes       *[]wireNode   `json:"nodes"`
	Edges       *[]Edge       `json:"edges"`
	Metadata    *wireMetadata `json:"metadata"`
}

type wireNode struct {
	Node
	Position *Position `json:"position"`
}

type wireMetadata struct {
	CreatedAt *time.Time `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
	Version   string     `json:"version"`
	Author    string     `json:"author"`
}

// ParseDocument validates raw and converts it to a Project.
func ParseDocument(raw []byte) (*Project, error) {
	var doc wireDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			return nil, &DocumentError{Reason: fmt.Sprintf("malformed JSON at offset %d", syn.Offset), Err: err}
		}
		return nil, &DocumentError{Reason: "wrong field types", Err: err}
	}

	switch {
	case doc.ID == nil || *doc.ID == "":
		return nil, docErr("id", "required")
	case doc.Name == nil:
		return nil, docErr("name", "required")
	case doc.Nodes == nil:
		return nil, docErr("nodes", "required")
	case doc.Edges == nil:
		return nil, docErr("edges", "required")
	case doc.Metadata == nil:
		return nil, docErr("metadata", "required")
	case doc.Metadata.Version == "":
		return nil, docErr("metadata.version", "required")
	}

	p := &Project{
		ID:          *doc.ID,
		Name:        *doc.Name,
		Description: doc.Description,
		Nodes:       make([]Node, 0, len(*doc.Nodes)),
		Edges:       make([]Edge, 0, len(*doc.Edges)),
		Metadata: Metadata{
			Version: doc.Metadata.Version,
			Author:  doc.Metadata.Author,
		},
	}
	if doc.Metadata.CreatedAt != nil {
		p.Metadata.CreatedAt = doc.Metadata.CreatedAt.UTC()
	}
	if doc.Metadata.UpdatedAt != nil {
		p.Metadata.UpdatedAt = doc.Metadata.UpdatedAt.UTC()
	}

	nodeIDs := make(map[string]bool, len(*doc.Nodes))
	for i, wn := range *doc.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		n := wn.Node
		switch {
		case n.ID == "":
			return nil, docErr(field+".id", "required")
		case nodeIDs[n.ID]:
			return nil, docErr(field+".id", "duplicate id %q", n.ID)
		case n.Type == "":
			return nil, docErr(field+".type", "required")
		case wn.Position == nil:
			return nil, docErr(field+".position", "required")
		}
		if n.Status == "" {
			n.Status = StatusPending
		} else if !n.Status.Valid() {
			return nil, docErr(field+".status", "unknown status %q", n.Status)
		}
		params, err := NormalizeParams(n.Params)
		if err != nil {
			return nil, &DocumentError{Field: field + ".params", Reason: err.Error(), Err: err}
		}
		n.Params = params
		n.Position = *wn.Position
		nodeIDs[n.ID] = true
		p.Nodes = append(p.Nodes, n)
	}

	edgeIDs := make(map[string]bool, len(*doc.Edges))
	for i, e := range *doc.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		switch {
		case e.ID == "":
			return nil, docErr(field+".id", "required")
		case edgeIDs[e.ID]:
			return nil, docErr(field+".id", "duplicate id %q", e.ID)
		case !nodeIDs[e.Source]:
			return nil, docErr(field+".source", "unknown node %q", e.Source)
		case !nodeIDs[e.Target]:
			return nil, docErr(field+".target", "unknown node %q", e.Target)
		}
		if e.Type == "" {
			e.Type = EdgeDataFlow
		}
		edgeIDs[e.ID] = true
		p.Edges = append(p.Edges, e)
	}

	return p, nil
}
