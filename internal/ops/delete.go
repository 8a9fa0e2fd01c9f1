package ops

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hpungsan/autord/internal/errors"
)

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted  bool   `json:"deleted"`
	ID       string `json:"id"`
	Selected string `json:"selected"`
}

// Delete removes a user template. When it was selected, the selection
// falls back to the first built-in, else the first remaining user
// template, else it is cleared.
func (s *Service) Delete(ctx context.Context, id string) (out *DeleteOutput, err error) {
	defer func() { s.record("delete", err, slog.String("id", id)) }()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
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
	list = append(list[:i], list[i+1:]...)
	if err := s.save(ctx, list); err != nil {
		return nil, err
	}

	selected, err := s.selectedID(ctx)
	if err != nil {
		return nil, err
	}
	if selected == id {
		selected = fallbackSelection(list)
		if err := s.storeSelection(ctx, selected); err != nil {
			return nil, err
		}
	}

	return &DeleteOutput{Deleted: true, ID: id, Selected: selected}, nil
}

func fallbackSelection(remaining []Template) string {
	if b := Builtins(); len(b) > 0 {
		return b[0].ID
	}
	if len(remaining) > 0 {
		return remaining[0].ID
	}
	return ""
}
