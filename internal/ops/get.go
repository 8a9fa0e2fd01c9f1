package ops

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hpungsan/autord/internal/errors"
)

// Get returns a user or built-in template by id.
func (s *Service) Get(ctx context.Context, id string) (out *Template, err error) {
	defer func() { s.record("get", err, slog.String("id", id)) }()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve(ctx, id)
}
