package ops

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hpungsan/autord/internal/errors"
	"github.com/hpungsan/autord/internal/slide"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Name        string // required
	Description string
	Format      *Format // default: derived from SlideData's layout
	Variables   []Variable
	SlideData   *slide.SlideData
}

// Create appends a new user template.
func (s *Service) Create(ctx context.Context, input CreateInput) (out *Template, err error) {
	defer func() { s.record("create", err, slog.String("name", input.Name)) }()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	if err := validateVariables(input.Variables); err != nil {
		return nil, err
	}
	if input.SlideData != nil {
		if err := input.SlideData.Validate(); err != nil {
			return nil, err
		}
	}

	format := Format{}
	if input.Format != nil {
		if err := validateFormat(*input.Format); err != nil {
			return nil, err
		}
		format = *input.Format
	} else if input.SlideData != nil {
		format.Layout = string(input.SlideData.Layout)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id, err := generateULID(now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	t := Template{
		ID:          id,
		Name:        name,
		Description: input.Description,
		Layout:      format.Layout,
		Format:      format,
		Variables:   input.Variables,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Variables == nil {
		t.Variables = []Variable{}
	}
	if input.SlideData != nil {
		sd := input.SlideData.Clone()
		t.SlideData = &sd
	}

	list = append(list, t)
	if err := s.save(ctx, list); err != nil {
		return nil, err
	}

	out = new(Template)
	*out = t.clone()
	return out, nil
}
