package ops

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hpungsan/autord/internal/errors"
	"github.com/hpungsan/autord/internal/slide"
)

// UpdateInput contains parameters for the Update operation. Nil fields
// are left unchanged.
type UpdateInput struct {
	ID          string // required
	Name        *string
	Description *string
	Format      *Format
	Variables   *[]Variable
	// SlideData replaces the document. The stored artifact and thumbnail
	// no longer match it and are cleared; use SaveSlide to re-export.
	SlideData *slide.SlideData
}

// Update replaces fields of a user template in place, keeping createdAt.
func (s *Service) Update(ctx context.Context, input UpdateInput) (out *Template, err error) {
	defer func() { s.record("update", err, slog.String("id", input.ID)) }()

	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if input.Name == nil && input.Description == nil && input.Format == nil &&
		input.Variables == nil && input.SlideData == nil {
		return nil, errors.NewInvalidRequest("at least one field to update is required")
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, errors.NewInvalidRequest("name must not be empty")
	}
	if input.Format != nil {
		if err := validateFormat(*input.Format); err != nil {
			return nil, err
		}
	}
	if input.Variables != nil {
		if err := validateVariables(*input.Variables); err != nil {
			return nil, err
		}
	}
	if input.SlideData != nil {
		if err := input.SlideData.Validate(); err != nil {
			return nil, err
		}
	}

	if _, ok := builtin(id); ok {
		return nil, errors.NewReadOnly(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return nil, errors.NewNotFound("template", id)
	}

	t := list[i]
	if input.Name != nil {
		t.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.Format != nil {
		t.Format = *input.Format
		t.Layout = input.Format.Layout
	}
	if input.Variables != nil {
		t.Variables = append([]Variable{}, (*input.Variables)...)
	}
	if input.SlideData != nil {
		sd := input.SlideData.Clone()
		t.SlideData = &sd
		t.PptxData = ""
		t.ThumbnailURL = ""
	}
	t.UpdatedAt = s.now().UTC()

	list[i] = t
	if err := s.save(ctx, list); err != nil {
		return nil, err
	}

	out = new(Template)
	*out = t.clone()
	return out, nil
}
