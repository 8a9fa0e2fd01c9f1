package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/autord/internal/db"
	"github.com/hpungsan/autord/internal/errors"
	"github.com/hpungsan/autord/internal/export"
	"github.com/hpungsan/autord/internal/kv"
	"github.com/hpungsan/autord/internal/slide"
)

type stubExporter struct {
	err   error
	calls int
}

func (e *stubExporter) Export(_ context.Context, d slide.SlideData) (*export.Artifact, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return &export.Artifact{
		Bytes:    []byte("PK" + d.Title),
		MIMEType: export.MIMEType,
		FileName: export.FileName(d.Title),
	}, nil
}

func setupService(t *testing.T) (*Service, kv.Store, *stubExporter) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	store := kv.NewSQLite(database)
	exp := &stubExporter{}
	return New(store, exp, nil), store, exp
}

func stringPtr(s string) *string { return &s }

func q1() slide.SlideData {
	return slide.SlideData{
		Layout:       slide.LayoutContent,
		Title:        "Q1 Results",
		BulletPoints: []string{"Revenue up 10%", "Costs down 5%"},
	}
}

func TestCreate(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	sd := q1()
	tpl, err := svc.Create(ctx, CreateInput{
		Name:        "  Quarterly  ",
		Description: "QBR deck",
		Variables:   []Variable{{ID: "quarter", Name: "Quarter", Type: VarText, DefaultValue: "Q1"}},
		SlideData:   &sd,
	})
	require.NoError(t, err)

	assert.Len(t, tpl.ID, 26, "ULID")
	assert.Equal(t, "Quarterly", tpl.Name)
	assert.Equal(t, "content", tpl.Format.Layout)
	assert.False(t, tpl.Builtin)
	assert.Equal(t, tpl.CreatedAt, tpl.UpdatedAt)

	raw, ok, err := store.Get(ctx, KeyTemplates)
	require.NoError(t, err)
	require.True(t, ok)
	var stored []Template
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, tpl.ID, stored[0].ID)
	assert.Equal(t, "Q1 Results", stored[0].SlideData.Title)
}

func TestCreate_Invalid(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing name", CreateInput{Name: " "}},
		{"bad variable type", CreateInput{Name: "x", Variables: []Variable{{ID: "a", Type: "color"}}}},
		{"duplicate variable", CreateInput{Name: "x", Variables: []Variable{{ID: "a", Type: VarText}, {ID: "a", Type: VarList}}}},
		{"negative points", CreateInput{Name: "x", Format: &Format{NumPoints: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
		})
	}

	bad := slide.SlideData{Layout: "diagonal"}
	_, err := svc.Create(ctx, CreateInput{Name: "x", SlideData: &bad})
	assert.True(t, errors.Is(err, errors.ErrInvalidSlide))
}

func TestList_StoredOrderAndBuiltins(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		tpl, err := svc.Create(ctx, CreateInput{Name: name})
		require.NoError(t, err)
		ids = append(ids, tpl.ID)
	}

	out, err := svc.List(ctx, ListInput{})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	for i, it := range out.Items {
		assert.Equal(t, ids[i], it.ID)
	}
	assert.Equal(t, 3, out.Pagination.Total)
	assert.Equal(t, DefaultSelection(), out.Selected)

	out, err = svc.List(ctx, ListInput{IncludeBuiltin: true})
	require.NoError(t, err)
	require.Len(t, out.Items, 7)
	assert.Equal(t, "one-slide-presentation", out.Items[0].ID)
	assert.True(t, out.Items[0].Builtin)
	assert.Equal(t, ids[0], out.Items[4].ID)

	out, err = svc.List(ctx, ListInput{IncludeBuiltin: true, Limit: 2, Offset: 5})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, ids[1], out.Items[0].ID)
	assert.False(t, out.Pagination.HasMore)
}

func TestList_Empty(t *testing.T) {
	svc, _, _ := setupService(t)
	out, err := svc.List(context.Background(), ListInput{})
	require.NoError(t, err)
	assert.NotNil(t, out.Items)
	assert.Empty(t, out.Items)
}

func TestGet(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "mine"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Name)

	b, err := svc.Get(ctx, "timeline-slide")
	require.NoError(t, err)
	assert.True(t, b.Builtin)
	assert.Equal(t, 4, b.Format.NumPoints)
	require.NotNil(t, b.SlideData)
	assert.Len(t, b.SlideData.BulletPoints, 4)

	_, err = svc.Get(ctx, "nope")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = svc.Get(ctx, "")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestUpdate(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	created, err := svc.Create(ctx, CreateInput{Name: "draft"})
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(time.Hour) }
	sd := q1()
	updated, err := svc.Update(ctx, UpdateInput{
		ID:          created.ID,
		Name:        stringPtr("final"),
		Format:      &Format{Layout: "two-column", NumPoints: 4},
		SlideData:   &sd,
		Description: stringPtr("done"),
	})
	require.NoError(t, err)

	assert.Equal(t, "final", updated.Name)
	assert.Equal(t, "done", updated.Description)
	assert.Equal(t, "two-column", updated.Layout)
	assert.Equal(t, start, updated.CreatedAt)
	assert.Equal(t, start.Add(time.Hour), updated.UpdatedAt)

	out, err := svc.List(ctx, ListInput{})
	require.NoError(t, err)
	require.Len(t, out.Items, 1, "replaced in place")
}

func TestUpdate_Errors(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, UpdateInput{ID: "research-summary", Name: stringPtr("mine now")})
	assert.True(t, errors.Is(err, errors.ErrReadOnly))

	_, err = svc.Update(ctx, UpdateInput{ID: "missing", Name: stringPtr("x")})
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = svc.Update(ctx, UpdateInput{ID: "missing"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = svc.Update(ctx, UpdateInput{ID: "missing", Name: stringPtr("  ")})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestSaveSlide_NewAndExisting(t *testing.T) {
	svc, _, exp := setupService(t)
	ctx := context.Background()

	tpl, err := svc.SaveSlide(ctx, SaveSlideInput{SlideData: q1()})
	require.NoError(t, err)
	assert.Equal(t, "Q1 Results", tpl.Name, "name defaults to slide title")
	assert.Equal(t, "data:"+export.MIMEType+";base64,"+"UEtRMSBSZXN1bHRz", tpl.PptxData)
	assert.Empty(t, tpl.ThumbnailURL)

	data, _, err := export.DecodeDataURI(tpl.PptxData)
	require.NoError(t, err)
	assert.Equal(t, []byte("PKQ1 Results"), data)

	sd := q1()
	sd.Title = "Q2 Results"
	again, err := svc.SaveSlide(ctx, SaveSlideInput{ID: tpl.ID, SlideData: sd})
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, again.ID)
	assert.Equal(t, "Q1 Results", again.Name, "existing name kept")
	assert.Equal(t, "Q2 Results", again.SlideData.Title)
	assert.Equal(t, 2, exp.calls)

	list, err := svc.List(ctx, ListInput{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Empty(t, list.Items[0].PptxData, "listing omits artifacts")

	got, err := svc.Get(ctx, tpl.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.PptxData)
}

func TestSaveSlide_Errors(t *testing.T) {
	svc, _, exp := setupService(t)
	ctx := context.Background()

	_, err := svc.SaveSlide(ctx, SaveSlideInput{ID: "comparison-slide", SlideData: q1()})
	assert.True(t, errors.Is(err, errors.ErrReadOnly))

	_, err = svc.SaveSlide(ctx, SaveSlideInput{ID: "missing", SlideData: q1()})
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = svc.SaveSlide(ctx, SaveSlideInput{SlideData: slide.SlideData{Layout: slide.LayoutContent}})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	exp.err = errors.NewExportFailed()
	_, err = svc.SaveSlide(ctx, SaveSlideInput{SlideData: q1()})
	assert.True(t, errors.Is(err, errors.ErrExportFailed))

	list, err := svc.List(ctx, ListInput{})
	require.NoError(t, err)
	assert.Empty(t, list.Items, "failed saves store nothing")
}

func TestDelete_SelectionFallback(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateInput{Name: "a"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, CreateInput{Name: "b"})
	require.NoError(t, err)

	_, err = svc.Select(ctx, a.ID)
	require.NoError(t, err)

	out, err := svc.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, out.Selected, "unselected delete keeps selection")

	out, err = svc.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, out.Deleted)
	assert.Equal(t, "one-slide-presentation", out.Selected)

	sel, err := svc.Selected(ctx)
	require.NoError(t, err)
	assert.Equal(t, "one-slide-presentation", sel.ID)

	_, err = svc.Delete(ctx, a.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = svc.Delete(ctx, "timeline-slide")
	assert.True(t, errors.Is(err, errors.ErrReadOnly))
}

func TestFallbackSelection(t *testing.T) {
	assert.Equal(t, "one-slide-presentation", fallbackSelection(nil))
}

func TestSelect(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	sel, err := svc.Selected(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultSelection(), sel.ID)

	_, err = svc.Select(ctx, "comparison-slide")
	require.NoError(t, err)
	v, _, err := store.Get(ctx, KeySelected)
	require.NoError(t, err)
	assert.Equal(t, "comparison-slide", v)

	_, err = svc.Select(ctx, "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// a dangling stored id falls back to the default
	require.NoError(t, store.Set(ctx, KeySelected, "deleted-elsewhere"))
	sel, err = svc.Selected(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultSelection(), sel.ID)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, fmt.Errorf("connection refused")
}
func (brokenStore) Set(context.Context, string, string) error { return fmt.Errorf("connection refused") }
func (brokenStore) Delete(context.Context, string) error       { return fmt.Errorf("connection refused") }

func TestPersistenceErrorsAreInternal(t *testing.T) {
	svc := New(brokenStore{}, &stubExporter{}, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "x"})
	assert.True(t, errors.Is(err, errors.ErrInternal))
	_, err = svc.List(ctx, ListInput{})
	assert.True(t, errors.Is(err, errors.ErrInternal))
	_, err = svc.Selected(ctx)
	assert.True(t, errors.Is(err, errors.ErrInternal))
}

func TestCorruptListIsInternal(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, KeyTemplates, "{not json"))

	_, err := svc.List(ctx, ListInput{})
	assert.True(t, errors.Is(err, errors.ErrInternal))
}

func TestConcurrentCreatesAreNotLost(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(ctx, CreateInput{Name: fmt.Sprintf("t%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	out, err := svc.List(ctx, ListInput{})
	require.NoError(t, err)
	assert.Len(t, out.Items, 10)
}

func TestBuiltinsAreCopies(t *testing.T) {
	b := Builtins()
	b[0].Name = "changed"
	b[0].Variables[0].Name = "changed"
	assert.Equal(t, "One-Slide Presentation", Builtins()[0].Name)
	assert.Equal(t, "Title", Builtins()[0].Variables[0].Name)
}

func TestFormatStarter(t *testing.T) {
	sd := Format{Layout: "comparison", NumPoints: 5, IncludeConclusion: true}.Starter("Compare")
	assert.Equal(t, slide.LayoutTwoColumn, sd.Layout)
	assert.Equal(t, []string{"Point 1", "Point 2", "Point 3"}, sd.ColumnOnePoints)
	assert.Equal(t, []string{"Point 4", "Point 5"}, sd.ColumnTwoPoints)
	assert.NotEmpty(t, sd.Notes)
	require.NoError(t, sd.Validate())

	sd = Format{Layout: "timeline"}.Starter("T")
	assert.Equal(t, slide.LayoutContent, sd.Layout)
	assert.Len(t, sd.BulletPoints, 3)
}
