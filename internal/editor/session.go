package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hpungsan/autord/internal/errors"
	"github.com/hpungsan/autord/internal/export"
	"github.com/hpungsan/autord/internal/layout"
	"github.com/hpungsan/autord/internal/slide"
)

// Exporter turns a document into a presentation artifact.
type Exporter interface {
	Export(ctx context.Context, d slide.SlideData) (*export.Artifact, error)
}

// SaveFunc persists a document together with its exported artifact.
type SaveFunc func(ctx context.Context, d slide.SlideData, a *export.Artifact) error

// Session owns one document being edited. Edits apply atomically and
// return a snapshot. Export and Save run one at a time; edits made while
// an export runs do not affect the artifact being built.
type Session struct {
	mu  sync.Mutex // guards doc
	doc slide.SlideData

	busy sync.Mutex // serializes Export and Save
}

// NewSession starts editing d. A custom document without elements is
// seeded.
func NewSession(d slide.SlideData) *Session {
	if d.Layout == "" {
		d = slide.Default()
	}
	if d.Layout == slide.LayoutCustom {
		d = SeedCustom(d)
	}
	return &Session{doc: d.Clone()}
}

// Document returns a snapshot of the current document.
func (s *Session) Document() slide.SlideData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Fields returns the fields editable under the current layout.
func (s *Session) Fields() []layout.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return layout.FieldsFor(s.doc.Layout)
}

// Apply runs op against the document. Applied is false when op named an
// index or element that does not exist; the document is then unchanged.
func (s *Session) Apply(op Op) (doc slide.SlideData, applied bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, applied, err := op.apply(s.doc)
	if err != nil {
		return s.doc.Clone(), false, err
	}
	s.doc = next
	return next.Clone(), applied, nil
}

// ApplyAll runs ops in order. The first failing op stops the batch and
// leaves the document as it was before the batch.
func (s *Session) ApplyAll(ops []Op) (slide.SlideData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc
	for i, op := range ops {
		next, _, err := op.apply(doc)
		if err != nil {
			e := errors.As(err)
			if e.Details == nil {
				e.Details = map[string]any{}
			}
			e.Details["op_index"] = i
			return s.doc.Clone(), e
		}
		doc = next
	}
	s.doc = doc
	return doc.Clone(), nil
}

// Export builds an artifact from a snapshot of the document.
func (s *Session) Export(ctx context.Context, exp Exporter) (*export.Artifact, error) {
	s.busy.Lock()
	defer s.busy.Unlock()
	return exp.Export(ctx, s.Document())
}

// Save exports the document and hands both to save. It waits for any
// export in flight.
func (s *Session) Save(ctx context.Context, exp Exporter, save SaveFunc) error {
	s.busy.Lock()
	defer s.busy.Unlock()

	doc := s.Document()
	a, err := exp.Export(ctx, doc)
	if err != nil {
		return err
	}
	return save(ctx, doc, a)
}

// OpKind names an edit.
type OpKind string

const (
	OpSetField      OpKind = "set_field"
	OpSetList       OpKind = "set_list"
	OpSetLayout     OpKind = "set_layout"
	OpAppendBullet  OpKind = "append_bullet"
	OpUpdateBullet  OpKind = "update_bullet"
	OpRemoveBullet  OpKind = "remove_bullet"
	OpAddElement    OpKind = "add_element"
	OpRemoveElement OpKind = "remove_element"
	OpUpdateElement OpKind = "update_element"
	OpMove          OpKind = "move"
)

// Op is one edit in wire form.
type Op struct {
	Kind        OpKind            `json:"op"`
	Field       layout.Field      `json:"field,omitempty"`
	Value       string            `json:"value,omitempty"`
	Items       []string          `json:"items,omitempty"`
	Index       int               `json:"index,omitempty"`
	Layout      slide.Layout      `json:"layout,omitempty"`
	ElementType slide.ElementType `json:"element_type,omitempty"`
	ID          string            `json:"id,omitempty"`
	Content     *slide.Content    `json:"content,omitempty"`
	Geometry    []Geometry        `json:"geometry,omitempty"`
}

// ParseOps decodes a JSON array of ops.
func ParseOps(data []byte) ([]Op, error) {
	var ops []Op
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, errors.NewInvalidRequest("ops must be a JSON array of edit operations: " + err.Error())
	}
	return ops, nil
}

// ApplyOps runs ops against d without a session.
func ApplyOps(d slide.SlideData, ops []Op) (slide.SlideData, error) {
	return NewSession(d).ApplyAll(ops)
}

func (op Op) apply(d slide.SlideData) (slide.SlideData, bool, error) {
	switch op.Kind {
	case OpSetField:
		out, err := SetField(d, op.Field, op.Value)
		return out, err == nil, err
	case OpSetList:
		out, err := SetList(d, op.Field, op.Items)
		return out, err == nil, err
	case OpSetLayout:
		out, err := SetLayout(d, op.Layout)
		return out, err == nil, err
	case OpAppendBullet:
		out, err := AppendBullet(d, op.Field)
		return out, err == nil, err
	case OpUpdateBullet:
		return UpdateBullet(d, op.Field, op.Index, op.Value)
	case OpRemoveBullet:
		return RemoveBullet(d, op.Field, op.Index)
	case OpAddElement:
		if d.Layout != slide.LayoutCustom {
			return d, false, errors.NewInvalidRequest("elements can only be added to a custom layout")
		}
		out, _, err := AddElement(d, op.ElementType)
		return out, err == nil, err
	case OpRemoveElement:
		out, ok := RemoveElement(d, op.ID)
		return out, ok, nil
	case OpUpdateElement:
		if op.Content == nil {
			return d, false, errors.NewInvalidRequest("update_element requires content")
		}
		out, ok := UpdateElementContent(d, op.ID, *op.Content)
		return out, ok, nil
	case OpMove:
		out, n := ApplyGeometry(d, op.Geometry)
		return out, n > 0, nil
	case "":
		return d, false, errors.NewInvalidRequest("op is required")
	}
	return d, false, errors.NewInvalidRequest(fmt.Sprintf("unknown op %q", op.Kind))
}
