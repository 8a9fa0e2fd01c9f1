package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/autord/internal/config"
	"github.com/hpungsan/autord/internal/db"
	"github.com/hpungsan/autord/internal/export"
	"github.com/hpungsan/autord/internal/kv"
	"github.com/hpungsan/autord/internal/ops"
	"github.com/hpungsan/autord/internal/slide"
)

type testEnv struct {
	h   *Handlers
	svc *ops.Service
	srv *httptest.Server
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	exp := export.New(nil)
	svc := ops.New(kv.NewSQLite(database), exp, nil)
	h := NewHandlers(Deps{
		Templates: svc,
		Exporter:  exp,
		Previews:  export.NewPreviews(time.Minute),
		Config:    config.DefaultConfig(),
	}, "test")

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return &testEnv{h: h, svc: svc, srv: srv}
}

// seedTemplate stores a user template and returns its ID.
func seedTemplate(t *testing.T, svc *ops.Service, name string) string {
	t.Helper()
	d := slide.SlideData{
		Layout:       slide.LayoutContent,
		Title:        name + " slide",
		BulletPoints: []string{"first point", "second point"},
	}
	out, err := svc.Create(context.Background(), ops.CreateInput{
		Name:        name,
		Description: "Used for **board** updates",
		SlideData:   &d,
	})
	require.NoError(t, err)
	return out.ID
}

func (env *testEnv) do(t *testing.T, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, env.srv.URL+path, body)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func parseHTML(t *testing.T, resp *http.Response) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

// --- list ---

func TestHandleList_StoredOrderAfterBuiltins(t *testing.T) {
	env := setupTest(t)
	seedTemplate(t, env.svc, "Zebra")
	seedTemplate(t, env.svc, "Alpha")

	resp := env.do(t, "GET", "/templates", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := parseHTML(t, resp)

	var names []string
	doc.Find("table.templates tbody td.name a").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.Text())
	})

	var want []string
	for _, b := range ops.Builtins() {
		want = append(want, b.Name)
	}
	want = append(want, "Zebra", "Alpha")
	assert.Equal(t, want, names)

	selected := doc.Find("tr.selected")
	require.Equal(t, 1, selected.Length())
	id, _ := selected.Attr("data-id")
	assert.Equal(t, ops.DefaultSelection(), id)
	assert.Equal(t, "Templates · autord", doc.Find("title").Text())
}

func TestHandleList_HtmxReturnsContentOnly(t *testing.T) {
	env := setupTest(t)

	resp := env.do(t, "GET", "/templates", nil, map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "<html")
	assert.Contains(t, string(body), "<h1>Templates</h1>")
}

func TestHandleList_JSON(t *testing.T) {
	env := setupTest(t)
	id := seedTemplate(t, env.svc, "Json")

	resp := env.do(t, "GET", "/templates?limit=100", nil, map[string]string{"Accept": "application/json"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ops.ListOutput
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, id, out.Items[len(out.Items)-1].ID)
	assert.Empty(t, out.Items[len(out.Items)-1].PptxData)
}

// --- detail ---

func TestHandleDetail_RendersMarkdownAndSlide(t *testing.T) {
	env := setupTest(t)
	id := seedTemplate(t, env.svc, "Board")

	resp := env.do(t, "GET", "/templates/"+id, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := parseHTML(t, resp)

	assert.Equal(t, "board", doc.Find(".description strong").Text())
	texts := doc.Find(".slide-texts li").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Contains(t, texts, "Board slide")
	assert.Contains(t, texts, "first point")
	frame := doc.Find(`svg.wireframe rect[data-role="bulletPoints"]`)
	require.Equal(t, 1, frame.Length())
	assert.Equal(t, "5.00", frame.AttrOr("x", ""))
	assert.Equal(t, 1, doc.Find(`svg.wireframe rect[data-role="title"]`).Length())
	assert.Equal(t, 1, doc.Find(`a[href="/templates/`+id+`/download"]`).Length())
	assert.Equal(t, 1, doc.Find("button.danger[data-method=DELETE]").Length())
}

func TestHandleDetail_BuiltinIsNotDeletable(t *testing.T) {
	env := setupTest(t)

	resp := env.do(t, "GET", "/templates/"+ops.DefaultSelection(), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := parseHTML(t, resp)
	assert.Equal(t, 0, doc.Find("button.danger").Length())
	assert.Equal(t, 1, doc.Find("h1 .badge.selected").Length())
}

func TestHandleDetail_NotFound(t *testing.T) {
	env := setupTest(t)

	resp := env.do(t, "GET", "/templates/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	doc := parseHTML(t, resp)
	assert.Contains(t, doc.Find(".error-message").Text(), "missing")
}

// --- download ---

func TestHandleDownload_ExportsOnTheFly(t *testing.T) {
	env := setupTest(t)

	resp := env.do(t, "GET", "/templates/research-summary/download", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, export.MIMEType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Research-Summary.pptx")

	data, _ := io.ReadAll(resp.Body)
	sum, err := export.Inspect(data)
	require.NoError(t, err)
	assert.Len(t, sum.Slides, 1)
}

func TestHandleDownload_StoredArtifact(t *testing.T) {
	env := setupTest(t)
	saved, err := env.svc.SaveSlide(context.Background(), ops.SaveSlideInput{
		Name:      "Stored",
		SlideData: slide.SlideData{Layout: slide.LayoutTitle, Title: "Stored deck"},
	})
	require.NoError(t, err)
	want, _, err := export.DecodeDataURI(saved.PptxData)
	require.NoError(t, err)

	resp := env.do(t, "GET", "/templates/"+saved.ID+"/download", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, _ := io.ReadAll(resp.Body)
	assert.Equal(t, want, got)
}

func TestHandleDownload_NoArtifact(t *testing.T) {
	env := setupTest(t)
	out, err := env.svc.Create(context.Background(), ops.CreateInput{Name: "Empty"})
	require.NoError(t, err)

	resp := env.do(t, "GET", "/templates/"+out.ID+"/download", nil, map[string]string{"Accept": "application/json"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// --- delete and select ---

func TestHandleDelete(t *testing.T) {
	env := setupTest(t)
	id := seedTemplate(t, env.svc, "Doomed")

	resp := env.do(t, "DELETE", "/templates/"+id, nil, map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/templates", resp.Header.Get("HX-Redirect"))

	resp = env.do(t, "DELETE", "/templates/"+id, nil, map[string]string{"Accept": "application/json"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var payload map[string]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "NOT_FOUND", payload["error"]["code"])
}

func TestHandleDelete_BuiltinIsReadOnly(t *testing.T) {
	env := setupTest(t)

	resp := env.do(t, "DELETE", "/templates/"+ops.DefaultSelection(), nil, map[string]string{"Accept": "application/json"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandleDelete_DefaultRedirect(t *testing.T) {
	env := setupTest(t)
	id := seedTemplate(t, env.svc, "Redirected")

	resp := env.do(t, "DELETE", "/templates/"+id, nil, nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/templates", resp.Header.Get("Location"))
}

func TestHandleSelect(t *testing.T) {
	env := setupTest(t)
	id := seedTemplate(t, env.svc, "Chosen")

	resp := env.do(t, "POST", "/templates/"+id+"/select", nil, map[string]string{"Accept": "application/json"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	selected, err := env.svc.Selected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, selected.ID)

	resp = env.do(t, "POST", "/templates/"+id+"/select", nil, nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/templates/"+id, resp.Header.Get("Location"))
}

// --- previews ---

func TestSlidePreview_Lifecycle(t *testing.T) {
	env := setupTest(t)
	body := `{"layout":"quote","title":"Words","quote":"Ship it","attribution":"Someone"}`

	resp := env.do(t, "POST", "/slides/preview", strings.NewReader(body), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created PreviewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "/previews/"+created.Handle, created.URL)
	assert.Equal(t, created.URL, resp.Header.Get("Location"))
	assert.Equal(t, "Words.pptx", created.FileName)

	resp = env.do(t, "GET", created.URL, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, _ := io.ReadAll(resp.Body)
	assert.Len(t, data, created.Size)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))

	resp = env.do(t, "DELETE", created.URL, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, "GET", created.URL, nil, map[string]string{"Accept": "application/json"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, "DELETE", created.URL, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSlidePreview_Invalid(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"not json", "layout: title", http.StatusBadRequest},
		{"unknown layout", `{"layout":"poster"}`, http.StatusUnprocessableEntity},
		{"custom without elements", `{"layout":"custom"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, "POST", "/slides/preview", strings.NewReader(tt.body), map[string]string{"Accept": "application/json"})
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestBriefPreview(t *testing.T) {
	env := setupTest(t)

	md := "# Quarterly Review\n\n- Revenue grew\n- Churn fell\n"
	resp := env.do(t, "POST", "/briefs/preview", strings.NewReader(md), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created PreviewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Quarterly-Review.pptx", created.FileName)

	resp = env.do(t, "POST", "/briefs/preview", strings.NewReader("   "), map[string]string{"Accept": "application/json"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// --- ambient routes ---

func TestMetricsAndSecurityHeaders(t *testing.T) {
	env := setupTest(t)
	env.do(t, "GET", "/templates", nil, nil)

	resp := env.do(t, "GET", "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `autord_http_requests_total{method="GET",route="GET /templates",status="OK"}`)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "img-src 'self' data:")
}

func TestRootRedirectsAndStatic(t *testing.T) {
	env := setupTest(t)

	resp := env.do(t, "GET", "/", nil, nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/templates", resp.Header.Get("Location"))

	resp = env.do(t, "GET", "/static/style.css", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// --- helpers ---

func TestErrorRendering_HtmxFragment(t *testing.T) {
	env := setupTest(t)

	resp := env.do(t, "GET", "/templates/nope", nil, map[string]string{"HX-Request": "true"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(body), `<div class="error-message">`))
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 7},
		{"limit=3", 3},
		{"limit=abc", 7},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/templates?"+tt.query, nil)
		assert.Equal(t, tt.want, parseIntParam(r, "limit", 7), tt.query)
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "2.0 MiB", formatBytes(2<<20))
}

func TestSafeDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AAAA", string(safeDataURL("data:image/png;base64,AAAA")))
	assert.Empty(t, string(safeDataURL("javascript:alert(1)")))
}
