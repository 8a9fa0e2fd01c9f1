package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/hpungsan/autord/internal/config"
	"github.com/hpungsan/autord/internal/errors"
	"github.com/hpungsan/autord/internal/export"
	"github.com/hpungsan/autord/internal/layout"
	"github.com/hpungsan/autord/internal/metrics"
	"github.com/hpungsan/autord/internal/ops"
	"github.com/hpungsan/autord/internal/slide"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	svc      *ops.Service
	exp      *export.Exporter
	previews *export.Previews
	cfg      *config.Config
	log      *slog.Logger
	renderer *Renderer
}

// PreviewResponse is returned when a preview handle is created.
type PreviewResponse struct {
	Handle   string `json:"handle"`
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	Size     int    `json:"size"`
}

// HandleList handles GET /templates: built-ins first, then user templates
// in stored order.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.List(r.Context(), ops.ListInput{
		IncludeBuiltin: true,
		Limit:          parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:         parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Templates",
			Version: h.renderer.version,
			Nav:     "templates",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Selected:   result.Selected,
	})
}

// HandleDetail handles GET /templates/{id}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("template ID is required"))
		return
	}

	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	selected, err := h.svc.Selected(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	summary := t.Summary()
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, summary)
		return
	}

	var (
		texts  []string
		frames []Frame
	)
	if t.SlideData != nil {
		plan := layout.Plan(*t.SlideData)
		texts = plan.Texts()
		for _, it := range plan.Items {
			b := it.Box.Percent()
			frames = append(frames, Frame{Role: it.Role, Kind: string(it.Kind), X: b.X, Y: b.Y, W: b.W, H: b.H})
		}
	}
	var size int
	if data, _, err := export.DecodeDataURI(t.PptxData); err == nil {
		size = len(data)
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   t.Name,
			Version: h.renderer.version,
			Nav:     "templates",
		},
		Template:        &summary,
		DescriptionHTML: renderMarkdown(t.Description),
		SlideTexts:      texts,
		Frames:          frames,
		ArtifactBytes:   size,
		Selected:        selected.ID == t.ID,
		Downloadable:    t.PptxData != "" || t.SlideData != nil,
	})
}

// HandleDownload handles GET /templates/{id}/download. A stored artifact is
// served as is; otherwise the template's slide is exported on the fly.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	a, err := h.artifactFor(r.Context(), t)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	writeArtifact(w, a)
}

// HandleDelete handles DELETE /templates/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("template ID is required"))
		return
	}

	result, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/templates")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/templates", http.StatusSeeOther)
}

// HandleSelect handles POST /templates/{id}/select.
func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Select(r.Context(), r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"selected": t.ID})
		return
	}

	http.Redirect(w, r, "/templates/"+t.ID, http.StatusSeeOther)
}

// HandleSlidePreview handles POST /slides/preview. The body is a SlideData
// document; the response names a short-lived handle to download it from.
func (h *Handlers) HandleSlidePreview(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	var d slide.SlideData
	if err := json.Unmarshal(body, &d); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("body must be a SlideData JSON document: "+err.Error()))
		return
	}
	if err := d.Validate(); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	a, err := h.exp.Export(r.Context(), d)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.respondPreview(w, a)
}

// HandleBriefPreview handles POST /briefs/preview. The body is generator
// output: a brief as JSON, or prose markdown.
func (h *Handlers) HandleBriefPreview(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	b, source, err := slide.ResolveBrief(nil, string(body), h.cfg.Thresholds())
	if source != "" {
		metrics.RecordBrief(source, err == nil)
	}
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	a, err := h.exp.ExportBrief(r.Context(), b)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.respondPreview(w, a)
}

// HandlePreviewDownload handles GET /previews/{handle}.
func (h *Handlers) HandlePreviewDownload(w http.ResponseWriter, r *http.Request) {
	handle := r.PathValue("handle")
	a, ok := h.previews.Get(handle)
	if !ok {
		h.renderer.renderError(w, r, errors.NewNotFound("preview", handle))
		return
	}
	writeArtifact(w, a)
}

// HandlePreviewRelease handles DELETE /previews/{handle}. Releasing an
// unknown or expired handle succeeds.
func (h *Handlers) HandlePreviewRelease(w http.ResponseWriter, r *http.Request) {
	h.previews.Release(r.PathValue("handle"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) respondPreview(w http.ResponseWriter, a *export.Artifact) {
	handle := h.previews.Put(a)
	url := "/previews/" + handle
	h.log.Debug("preview created", slog.String("handle", handle), slog.Int("bytes", len(a.Bytes)))
	w.Header().Set("Location", url)
	renderJSON(w, http.StatusCreated, PreviewResponse{
		Handle:   handle,
		URL:      url,
		FileName: a.FileName,
		Size:     len(a.Bytes),
	})
}

func (h *Handlers) artifactFor(ctx context.Context, t *ops.Template) (*export.Artifact, error) {
	if t.PptxData != "" {
		data, mimeType, err := export.DecodeDataURI(t.PptxData)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		return &export.Artifact{Bytes: data, MIMEType: mimeType, FileName: export.FileName(t.Name)}, nil
	}
	if t.SlideData != nil {
		a, err := h.exp.Export(ctx, *t.SlideData)
		if err != nil {
			return nil, err
		}
		a.FileName = export.FileName(t.Name)
		return a, nil
	}
	return nil, errors.NewNotFound("artifact", t.ID)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.NewInvalidRequest("request body too large or unreadable")
	}
	return body, nil
}

// writeArtifact sends a as a file download.
func writeArtifact(w http.ResponseWriter, a *export.Artifact) {
	mimeType := a.MIMEType
	if mimeType == "" {
		mimeType = export.MIMEType
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Bytes)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Bytes)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
