package layout

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/autord/internal/slide"
)

func approx(t *testing.T, want, got float64) {
	t.Helper()
	if math.Abs(want-got) > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGridToInches(t *testing.T) {
	b := GridToInches(0, 0, 12, 12)
	approx(t, 0, b.X)
	approx(t, SlideWidth, b.W)
	approx(t, SlideHeight, b.H)

	b = GridToInches(6, 2, 6, 4)
	approx(t, 5, b.X)
	approx(t, 0.9375, b.Y)
	approx(t, 5, b.W)
	approx(t, 1.875, b.H)
}

func TestGridToInches_LinearAndMonotonic(t *testing.T) {
	prev := -1.0
	for w := 0; w <= 6; w++ {
		single := GridToInches(0, 0, w, 1).W
		double := GridToInches(0, 0, 2*w, 1).W
		approx(t, 2*single, double)
		if single <= prev {
			t.Fatalf("width %d: %v not greater than %v", w, single, prev)
		}
		prev = single
	}
}

func TestFieldsFor(t *testing.T) {
	tests := []struct {
		layout slide.Layout
		want   []Field
	}{
		{slide.LayoutTitle, []Field{FieldTitle, FieldSubtitle, FieldNotes}},
		{slide.LayoutContent, []Field{FieldTitle, FieldBulletPoints, FieldNotes}},
		{slide.LayoutTwoColumn, []Field{FieldTitle, FieldColumnOnePoints, FieldColumnTwoPoints, FieldNotes}},
		{slide.LayoutImageText, []Field{FieldTitle, FieldImageDescription, FieldBulletPoints, FieldNotes}},
		{slide.LayoutQuote, []Field{FieldTitle, FieldQuote, FieldAttribution, FieldNotes}},
		{slide.LayoutCustom, []Field{FieldElements}},
		{"unknown", []Field{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.layout), func(t *testing.T) {
			assert.Equal(t, tt.want, FieldsFor(tt.layout))
		})
	}

	// callers cannot mutate the shared table
	f := FieldsFor(slide.LayoutContent)
	f[0] = FieldQuote
	assert.Equal(t, FieldTitle, FieldsFor(slide.LayoutContent)[0])
	assert.Equal(t, []Field{FieldTitle, FieldQuote, FieldAttribution, FieldNotes}, FieldsFor(slide.LayoutQuote))
}

func TestPlan_ContentExample(t *testing.T) {
	p := Plan(slide.SlideData{
		Layout:       slide.LayoutContent,
		Title:        "Q1 Results",
		BulletPoints: []string{"Revenue up 10%", "Costs down 5%"},
		Notes:        "mention churn",
	})

	require.Len(t, p.Items, 2)
	title := p.Items[0]
	assert.Equal(t, "title", title.Role)
	assert.Equal(t, Box{X: 0.5, Y: 0.5, W: 9, H: 1}, title.Box)
	assert.Equal(t, 36, title.Style.FontSize)
	assert.True(t, title.Style.Bold)

	list := p.Items[1]
	assert.Equal(t, []Paragraph{{Text: "Revenue up 10%", Bullet: true}, {Text: "Costs down 5%", Bullet: true}}, list.Paragraphs)
	assert.Equal(t, Box{X: 0.5, Y: 1.8, W: 9, H: 5}, list.Box)
	assert.Equal(t, "mention churn", p.Notes)
}

func TestPlan_FixedLayouts(t *testing.T) {
	data := slide.Default()

	tests := []struct {
		layout slide.Layout
		roles  []string
	}{
		{slide.LayoutTitle, []string{"title", "subtitle"}},
		{slide.LayoutContent, []string{"title", "bulletPoints"}},
		{slide.LayoutTwoColumn, []string{"title", "columnOnePoints", "columnTwoPoints"}},
		{slide.LayoutImageText, []string{"title", "image", "image-caption", "imageDescription", "bulletPoints"}},
		{slide.LayoutQuote, []string{"title", "quote", "attribution"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.layout), func(t *testing.T) {
			data.Layout = tt.layout
			p := Plan(data)
			roles := make([]string, len(p.Items))
			for i, it := range p.Items {
				roles[i] = it.Role
			}
			assert.Equal(t, tt.roles, roles)
		})
	}
}

func TestPlan_QuoteAndImageText(t *testing.T) {
	p := Plan(slide.SlideData{Layout: slide.LayoutQuote, Title: "T", Quote: "Ship it", Attribution: "- Ada"})
	require.Len(t, p.Items, 3)
	assert.Equal(t, `"Ship it"`, p.Items[1].Paragraphs[0].Text)
	assert.True(t, p.Items[1].Style.Italic)
	assert.Equal(t, AlignCenter, p.Items[1].Style.Align)

	p = Plan(slide.SlideData{Layout: slide.LayoutImageText, Title: "T", ImageDescription: "a cat"})
	require.Len(t, p.Items, 4)
	assert.Equal(t, KindRect, p.Items[1].Kind)
	assert.Equal(t, ColorPlaceholderFill, p.Items[1].Fill)
	assert.Equal(t, ImageCaption, p.Items[2].Paragraphs[0].Text)
	assert.Equal(t, "Description: a cat", p.Items[3].Paragraphs[0].Text)
}

func TestPlan_MissingListsRenderNothing(t *testing.T) {
	p := Plan(slide.SlideData{Layout: slide.LayoutTwoColumn, Title: "Only title"})
	require.Len(t, p.Items, 1)
	assert.Equal(t, []string{"Only title"}, p.Texts())
}

func TestPlan_CustomOrderAndConversion(t *testing.T) {
	d := slide.SlideData{
		Layout: slide.LayoutCustom,
		Notes:  "ignored for custom",
		Elements: []slide.Element{
			{ID: "bg", Type: slide.ElementShape, X: 0, Y: 0, Width: 12, Height: 12},
			{ID: "pic", Type: slide.ElementImage, X: 0, Y: 2, Width: 6, Height: 6},
			{ID: "h", Type: slide.ElementTitle, Content: slide.NewTextContent("Top"), X: 0, Y: 0, Width: 12, Height: 2,
				Style: map[string]string{"fontSize": "24px", "color": "#fff"}},
			{ID: "list", Type: slide.ElementBullets, Content: slide.NewListContent([]string{"a", "b"}), X: 6, Y: 2, Width: 6, Height: 4},
		},
	}

	p := Plan(d)
	roles := make([]string, len(p.Items))
	for i, it := range p.Items {
		roles[i] = it.Role
	}
	// array order is paint order: later items are on top
	assert.Equal(t, []string{"bg", "pic", "pic-caption", "h", "list"}, roles)
	assert.Empty(t, p.Notes)

	assert.Equal(t, ColorShapeFill, p.Items[0].Fill)
	approx(t, SlideWidth, p.Items[0].Box.W)

	h := p.Items[3]
	assert.Equal(t, 24, h.Style.FontSize)
	assert.True(t, h.Style.Bold)
	assert.Equal(t, "FFFFFF", h.Style.Color)

	list := p.Items[4]
	approx(t, 5, list.Box.X)
	assert.Len(t, list.Paragraphs, 2)
	assert.True(t, list.Paragraphs[0].Bullet)
}

func TestHexColor(t *testing.T) {
	tests := map[string]string{
		"#abc":    "AABBCC",
		"4472c4":  "4472C4",
		"#4472C4": "4472C4",
		"red":     "",
		"#12345":  "",
		"zzzzzz":  "",
	}
	for in, want := range tests {
		if got := hexColor(in); got != want {
			t.Errorf("hexColor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlanBrief(t *testing.T) {
	sub := "Outlook"
	sd := "12% YoY"
	b := slide.Brief{
		Title:            "Market",
		Subtitle:         &sub,
		MainPoints:       []slide.Point{{Text: "Growth", SupportingData: &sd}, {Text: "Margins"}},
		Conclusion:       "Invest",
		VisualSuggestion: "Line chart",
	}
	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	p := PlanBrief(b, date)
	texts := p.Texts()
	assert.Equal(t, []string{"Market", "Outlook", "Growth", "12% YoY", "Margins", "Invest", "Visual Suggestion: Line chart", "Mar 5, 2024"}, texts)

	for _, it := range p.Items {
		if it.Box.Y+it.Box.H > SlideHeight+1e-9 {
			t.Errorf("%s overflows the canvas: %+v", it.Role, it.Box)
		}
	}
}

func TestBoxPercent(t *testing.T) {
	pc := Box{X: 5, Y: SlideHeight / 2, W: 10, H: SlideHeight}.Percent()
	approx(t, 50, pc.X)
	approx(t, 50, pc.Y)
	approx(t, 100, pc.W)
	approx(t, 100, pc.H)
}
