package ops

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hpungsan/autord/internal/errors"
	"github.com/hpungsan/autord/internal/slide"
)

// SaveSlideInput contains parameters for the SaveSlide operation.
type SaveSlideInput struct {
	ID          string // optional: existing user template to overwrite
	Name        string // new templates: default is the slide title
	Description string
	SlideData   slide.SlideData
}

// SaveSlide exports a document and stores it, with its artifact, on a new
// or existing user template. A stale thumbnail is cleared.
func (s *Service) SaveSlide(ctx context.Context, input SaveSlideInput) (out *Template, err error) {
	defer func() { s.record("save_slide", err, slog.String("id", input.ID)) }()

	if s.exp == nil {
		return nil, errors.NewInternal(fmt.Errorf("no exporter configured"))
	}
	if err := input.SlideData.Validate(); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(input.ID)
	if id != "" {
		if _, ok := builtin(id); ok {
			return nil, errors.NewReadOnly(id)
		}
	}

	a, err := s.exp.Export(ctx, input.SlideData)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sd := input.SlideData.Clone()

	var t Template
	if id != "" {
		i := indexOf(list, id)
		if i < 0 {
			return nil, errors.NewNotFound("template", id)
		}
		t = list[i]
		if name := strings.TrimSpace(input.Name); name != "" {
			t.Name = name
		}
		if input.Description != "" {
			t.Description = input.Description
		}
		t.SlideData = &sd
		t.PptxData = a.DataURI()
		t.ThumbnailURL = ""
		t.UpdatedAt = now
		list[i] = t
	} else {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			name = strings.TrimSpace(sd.Title)
		}
		if name == "" {
			return nil, errors.NewInvalidRequest("name is required when the slide has no title")
		}
		newID, err := generateULID(now)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		t = Template{
			ID:          newID,
			Name:        name,
			Description: input.Description,
			Layout:      string(sd.Layout),
			Format:      Format{Layout: string(sd.Layout)},
			Variables:   []Variable{},
			SlideData:   &sd,
			PptxData:    a.DataURI(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		list = append(list, t)
	}

	if err := s.save(ctx, list); err != nil {
		return nil, err
	}

	out = new(Template)
	*out = t.clone()
	return out, nil
}
