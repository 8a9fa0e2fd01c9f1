package ops

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hpungsan/autord/internal/errors"
)

// Select marks a user or built-in template as the one generators use.
func (s *Service) Select(ctx context.Context, id string) (out *Template, err error) {
	defer func() { s.record("select", err, slog.String("id", id)) }()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.storeSelection(ctx, id); err != nil {
		return nil, err
	}
	return t, nil
}

// Selected returns the selected template. With no selection stored, or
// when the stored id no longer resolves, the first built-in is returned.
func (s *Service) Selected(ctx context.Context) (out *Template, err error) {
	defer func() { s.record("selected", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.selectedID(ctx)
	if err != nil {
		return nil, err
	}
	if id != "" {
		t, err := s.resolve(ctx, id)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
	}
	t, _ := builtin(DefaultSelection())
	return &t, nil
}

// selectedID returns the stored selection, or the default when none is
// stored. An explicitly cleared selection stays empty.
func (s *Service) selectedID(ctx context.Context) (string, error) {
	id, ok, err := s.store.Get(ctx, KeySelected)
	if err != nil {
		return "", errors.As(err)
	}
	if !ok {
		return DefaultSelection(), nil
	}
	return id, nil
}

func (s *Service) storeSelection(ctx context.Context, id string) error {
	if err := s.store.Set(ctx, KeySelected, id); err != nil {
		return errors.As(err)
	}
	return nil
}

// resolve finds id among user templates, then built-ins. Callers hold mu.
func (s *Service) resolve(ctx context.Context, id string) (*Template, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(list, id); i >= 0 {
		t := list[i].clone()
		return &t, nil
	}
	if t, ok := builtin(id); ok {
		return &t, nil
	}
	return nil, errors.NewNotFound("template", id)
}
