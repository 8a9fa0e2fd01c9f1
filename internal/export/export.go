// Package export turns slide documents into .pptx artifacts.
package export

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/hpungsan/autord/internal/errors"
	"github.com/hpungsan/autord/internal/layout"
	"github.com/hpungsan/autord/internal/logger"
	"github.com/hpungsan/autord/internal/metrics"
	"github.com/hpungsan/autord/internal/slide"
)

// Exporter builds one-slide presentations. It is safe for concurrent use;
// every export draws on a fresh Deck.
type Exporter struct {
	log      *slog.Logger
	newDeck  func() Deck
	maxBytes int
	now      func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithDeck replaces the deck factory.
func WithDeck(newDeck func() Deck) Option {
	return func(e *Exporter) { e.newDeck = newDeck }
}

// WithMaxBytes caps the artifact size. Zero means no limit.
func WithMaxBytes(n int) Option {
	return func(e *Exporter) { e.maxBytes = n }
}

// WithClock sets the clock used for brief footers.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// New returns an Exporter backed by GoPPT.
func New(log *slog.Logger, opts ...Option) *Exporter {
	if log == nil {
		log = logger.Discard()
	}
	e := &Exporter{
		log:     log,
		newDeck: NewDeck,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export renders d as a single slide. Speaker notes are attached for
// fixed layouts when the deck supports them.
func (e *Exporter) Export(ctx context.Context, d slide.SlideData) (*Artifact, error) {
	return e.render(ctx, d.Title, layout.Plan(d))
}

// ExportBrief renders b as a single brief slide dated today.
func (e *Exporter) ExportBrief(ctx context.Context, b slide.Brief) (*Artifact, error) {
	return e.render(ctx, b.Title, layout.PlanBrief(b, e.now()))
}

func (e *Exporter) render(ctx context.Context, title string, plan layout.Slide) (a *Artifact, err error) {
	start := time.Now()
	log := e.log.With(slog.String("op", "export"), slog.String("layout", string(plan.Layout)))

	defer func() {
		if r := recover(); r != nil {
			log.Error("export panicked", slog.Any("panic", r))
			a, err = nil, errors.NewExportFailed()
		}
		metrics.RecordExport(string(plan.Layout), err == nil, time.Since(start).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deck := e.newDeck()
	deck.SetTitle(title)
	page := deck.AddPage()
	for _, it := range plan.Items {
		switch it.Kind {
		case layout.KindText:
			page.AddText(it.Paragraphs, it.Box, it.Style)
		default:
			page.AddShape(it.Kind, it.Box, it.Fill)
		}
	}
	if plan.Notes != "" && !page.AddNotes(plan.Notes) {
		log.Debug("deck does not support speaker notes; skipped")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := deck.Serialize(&buf); err != nil {
		log.Error("serialize failed", logger.Err(err))
		return nil, errors.NewExportFailed()
	}
	if buf.Len() == 0 {
		log.Error("serialize produced no bytes")
		return nil, errors.NewExportFailed()
	}
	if e.maxBytes > 0 && buf.Len() > e.maxBytes {
		return nil, errors.NewArtifactTooLarge(e.maxBytes, buf.Len())
	}

	a = &Artifact{
		Bytes:    buf.Bytes(),
		MIMEType: MIMEType,
		FileName: FileName(title),
	}

	log.Debug("exported", slog.Int("bytes", len(a.Bytes)), slog.Int("items", len(plan.Items)))
	return a, nil
}
