// Package ops implements template storage operations. Templates persist
// as one JSON array in a key-value store; every mutation rewrites the
// whole list.
package ops

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/autord/internal/errors"
	"github.com/hpungsan/autord/internal/export"
	"github.com/hpungsan/autord/internal/kv"
	"github.com/hpungsan/autord/internal/logger"
	"github.com/hpungsan/autord/internal/metrics"
	"github.com/hpungsan/autord/internal/slide"
)

// Pagination limits
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Exporter renders a document for SaveSlide.
type Exporter interface {
	Export(ctx context.Context, d slide.SlideData) (*export.Artifact, error)
}

// Service owns the template list of one store. The mutex keeps this
// process's read-modify-write cycles from interleaving; other processes
// sharing the store still race, last write wins.
type Service struct {
	store kv.Store
	exp   Exporter
	log   *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// New returns a Service over store. exp may be nil when SaveSlide is not
// used.
func New(store kv.Store, exp Exporter, log *slog.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{store: store, exp: exp, log: log, now: time.Now}
}

// load reads the user template list. A missing key is an empty list.
func (s *Service) load(ctx context.Context) ([]Template, error) {
	raw, ok, err := s.store.Get(ctx, KeyTemplates)
	if err != nil {
		return nil, errors.As(err)
	}
	if !ok || raw == "" {
		return []Template{}, nil
	}
	var list []Template
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("decode %s: %w", KeyTemplates, err))
	}
	if list == nil {
		list = []Template{}
	}
	return list, nil
}

func (s *Service) save(ctx context.Context, list []Template) error {
	data, err := json.Marshal(list)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := s.store.Set(ctx, KeyTemplates, string(data)); err != nil {
		return errors.As(err)
	}
	return nil
}

// record logs and counts the outcome of op.
func (s *Service) record(op string, err error, attrs ...any) {
	metrics.RecordTemplateOp(op, err == nil)
	log := s.log.With(slog.String("op", op))
	if err != nil {
		e := errors.As(err)
		if e.Code == errors.ErrInternal {
			log.Error("template operation failed", append(attrs, logger.Err(err))...)
			return
		}
		log.Debug("template operation rejected", append(attrs, slog.String("code", string(e.Code)))...)
		return
	}
	log.Debug("template operation", attrs...)
}

func indexOf(list []Template, id string) int {
	for i, t := range list {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// generateULID generates a new ULID.
func generateULID(now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func invalid(format string, args ...any) error {
	return errors.NewInvalidRequest(fmt.Sprintf(format, args...))
}
