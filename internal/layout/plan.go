package layout

import (
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/autord/internal/slide"
)

// Kind is the type of a positioned item.
type Kind string

const (
	KindText    Kind = "text"
	KindRect    Kind = "rect"
	KindEllipse Kind = "ellipse"
)

// Align is horizontal text alignment.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Paragraph is one line of a text item.
type Paragraph struct {
	Text   string `json:"text"`
	Bullet bool   `json:"bullet,omitempty"`
}

// TextStyle is the font styling of a text item. Colors are RRGGBB.
type TextStyle struct {
	FontSize int    `json:"fontSize"`
	Bold     bool   `json:"bold,omitempty"`
	Italic   bool   `json:"italic,omitempty"`
	Color    string `json:"color,omitempty"`
	Align    Align  `json:"align,omitempty"`
}

// Item is one positioned visual on a slide.
type Item struct {
	Role       string      `json:"role"`
	Kind       Kind        `json:"kind"`
	Box        Box         `json:"box"`
	Paragraphs []Paragraph `json:"paragraphs,omitempty"`
	Style      TextStyle   `json:"style"`
	Fill       string      `json:"fill,omitempty"`
}

// Slide is the render plan of one slide. Items paint in order, so later
// items sit on top of earlier ones.
type Slide struct {
	Layout slide.Layout `json:"layout"`
	Items  []Item       `json:"items"`
	Notes  string       `json:"notes,omitempty"`
}

// Colors shared by the plans.
const (
	ColorPlaceholderFill = "EEEEEE"
	ColorMuted           = "666666"
	ColorShapeFill       = "4472C4"
	ImageCaption         = "Image Placeholder"
)

var (
	headingBox = Box{X: 0.5, Y: 0.5, W: 9, H: 1}
	headingSty = TextStyle{FontSize: 36, Bold: true}
)

// Plan lays out d. Missing lists render as nothing. Unknown layouts
// produce a plan with only the title.
func Plan(d slide.SlideData) Slide {
	s := Slide{Layout: d.Layout}

	switch d.Layout {
	case slide.LayoutTitle:
		s.add(text("title", Box{X: 0.5, Y: 2.5, W: 9, H: 1.5}, d.Title, TextStyle{FontSize: 44, Bold: true, Align: AlignCenter}))
		if d.Subtitle != "" {
			s.add(text("subtitle", Box{X: 0.5, Y: 4, W: 9, H: 1}, d.Subtitle, TextStyle{FontSize: 28, Align: AlignCenter}))
		}

	case slide.LayoutContent:
		s.add(text("title", headingBox, d.Title, headingSty))
		if len(d.BulletPoints) > 0 {
			s.add(bullets("bulletPoints", Box{X: 0.5, Y: 1.8, W: 9, H: 5}, d.BulletPoints, TextStyle{FontSize: 18}))
		}

	case slide.LayoutTwoColumn:
		s.add(text("title", headingBox, d.Title, headingSty))
		if len(d.ColumnOnePoints) > 0 {
			s.add(bullets("columnOnePoints", Box{X: 0.5, Y: 1.8, W: 4.25, H: 5}, d.ColumnOnePoints, TextStyle{FontSize: 16}))
		}
		if len(d.ColumnTwoPoints) > 0 {
			s.add(bullets("columnTwoPoints", Box{X: 5.25, Y: 1.8, W: 4.25, H: 5}, d.ColumnTwoPoints, TextStyle{FontSize: 16}))
		}

	case slide.LayoutImageText:
		s.add(text("title", headingBox, d.Title, headingSty))
		s.addImagePlaceholder("image", Box{X: 0.5, Y: 1.8, W: 4, H: 3})
		if d.ImageDescription != "" {
			s.add(text("imageDescription", Box{X: 0.5, Y: 5, W: 4, H: 0.5}, "Description: "+d.ImageDescription,
				TextStyle{FontSize: 10, Italic: true, Color: ColorMuted}))
		}
		if len(d.BulletPoints) > 0 {
			s.add(bullets("bulletPoints", Box{X: 5, Y: 1.8, W: 4.5, H: 5}, d.BulletPoints, TextStyle{FontSize: 16}))
		}

	case slide.LayoutQuote:
		s.add(text("title", headingBox, d.Title, headingSty))
		if d.Quote != "" {
			s.add(text("quote", Box{X: 1, Y: 2, W: 8, H: 3}, `"`+d.Quote+`"`, TextStyle{FontSize: 28, Italic: true, Align: AlignCenter}))
		}
		if d.Attribution != "" {
			s.add(text("attribution", Box{X: 1, Y: 5, W: 8, H: 0.5}, d.Attribution, TextStyle{FontSize: 18, Align: AlignCenter}))
		}

	case slide.LayoutCustom:
		for _, el := range d.Elements {
			s.addElement(el)
		}
		return s

	default:
		s.add(text("title", headingBox, d.Title, headingSty))
	}

	s.Notes = d.Notes
	return s
}

func (s *Slide) add(it Item) {
	s.Items = append(s.Items, it)
}

func (s *Slide) addImagePlaceholder(role string, b Box) {
	s.add(Item{Role: role, Kind: KindRect, Box: b, Fill: ColorPlaceholderFill})
	s.add(text(role+"-caption", b, ImageCaption, TextStyle{FontSize: 14, Color: ColorMuted, Align: AlignCenter}))
}

func (s *Slide) addElement(el slide.Element) {
	b := GridToInches(el.X, el.Y, el.Width, el.Height)

	switch el.Type {
	case slide.ElementTitle:
		s.add(text(el.ID, b, el.Text(), styled(TextStyle{FontSize: 36, Bold: true}, el.Style)))
	case slide.ElementText:
		s.add(text(el.ID, b, el.Text(), styled(TextStyle{FontSize: 18}, el.Style)))
	case slide.ElementBullets:
		s.add(bullets(el.ID, b, el.Bullets(), styled(TextStyle{FontSize: 18}, el.Style)))
	case slide.ElementImage:
		s.addImagePlaceholder(el.ID, b)
	case slide.ElementShape:
		fill := ColorShapeFill
		if c := hexColor(el.Style["backgroundColor"]); c != "" {
			fill = c
		}
		s.add(Item{Role: el.ID, Kind: KindRect, Box: b, Fill: fill})
	}
}

func text(role string, b Box, s string, st TextStyle) Item {
	return Item{Role: role, Kind: KindText, Box: b, Paragraphs: []Paragraph{{Text: s}}, Style: st}
}

func bullets(role string, b Box, items []string, st TextStyle) Item {
	paras := make([]Paragraph, len(items))
	for i, it := range items {
		paras[i] = Paragraph{Text: it, Bullet: true}
	}
	return Item{Role: role, Kind: KindText, Box: b, Paragraphs: paras, Style: st}
}

// styled applies element style overrides: fontSize ("24" or "24px"),
// fontWeight ("bold"), fontStyle ("italic"), color, textAlign.
func styled(base TextStyle, style map[string]string) TextStyle {
	if len(style) == 0 {
		return base
	}
	if v, ok := style["fontSize"]; ok {
		if n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px")); err == nil && n > 0 {
			base.FontSize = n
		}
	}
	switch strings.ToLower(style["fontWeight"]) {
	case "bold", "700", "800", "900":
		base.Bold = true
	case "normal", "400":
		base.Bold = false
	}
	if strings.EqualFold(style["fontStyle"], "italic") {
		base.Italic = true
	}
	if c := hexColor(style["color"]); c != "" {
		base.Color = c
	}
	switch Align(strings.ToLower(style["textAlign"])) {
	case AlignLeft:
		base.Align = AlignLeft
	case AlignCenter:
		base.Align = AlignCenter
	case AlignRight:
		base.Align = AlignRight
	}
	return base
}

// hexColor normalizes "#abc", "#aabbcc" or "aabbcc" to "AABBCC".
func hexColor(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return ""
	}
	if _, err := strconv.ParseUint(v, 16, 32); err != nil {
		return ""
	}
	return strings.ToUpper(v)
}

// Brief plan colors.
const (
	briefPrimary   = "0078D4"
	briefSecondary = "2B579A"
	briefAccent    = "5C2D91"
	briefText      = "333333"
	briefTint      = "E5F1FB"
)

// briefDesignHeight is the height the brief layout was drawn for. Vertical
// positions are scaled from it onto the 16:9 canvas.
const briefDesignHeight = 8.0

func by(v float64) float64 { return v * SlideHeight / briefDesignHeight }

// PlanBrief lays out a one-slide brief: header bar, title, optional
// subtitle, one row per main point with optional supporting data, a
// highlighted conclusion, the visual suggestion, and a date footer.
func PlanBrief(b slide.Brief, date time.Time) Slide {
	s := Slide{Layout: slide.LayoutCustom}

	s.add(Item{Role: "header", Kind: KindRect, Box: Box{X: 0, Y: 0, W: SlideWidth, H: by(0.5)}, Fill: briefPrimary})
	s.add(text("title", Box{X: 0.5, Y: by(0.7), W: 9, H: by(0.8)}, b.Title,
		TextStyle{FontSize: 36, Bold: true, Color: briefPrimary, Align: AlignCenter}))

	startY := 2.0
	if b.Subtitle != nil && *b.Subtitle != "" {
		s.add(text("subtitle", Box{X: 0.5, Y: by(1.6), W: 9, H: by(0.6)}, *b.Subtitle,
			TextStyle{FontSize: 20, Color: briefSecondary, Align: AlignCenter}))
		startY = 2.4
	}

	for i, p := range b.MainPoints {
		rowY := startY + float64(i)*1.1
		role := "point-" + strconv.Itoa(i+1)
		s.add(Item{Role: role + "-marker", Kind: KindEllipse, Box: Box{X: 0.7, Y: by(rowY + 0.1), W: 0.15, H: 0.15}, Fill: briefAccent})
		s.add(text(role, Box{X: 1.0, Y: by(rowY), W: 8.5, H: by(0.5)}, p.Text,
			TextStyle{FontSize: 18, Bold: true, Color: briefText}))
		if p.SupportingData != nil && *p.SupportingData != "" {
			s.add(text(role+"-data", Box{X: 1.0, Y: by(rowY + 0.5), W: 8.5, H: by(0.5)}, *p.SupportingData,
				TextStyle{FontSize: 16, Italic: true, Color: ColorMuted}))
		}
	}

	s.add(Item{Role: "divider", Kind: KindRect, Box: Box{X: 2.0, Y: by(6.2), W: 6.0, H: 0.02}, Fill: briefPrimary})
	s.add(Item{Role: "conclusion-box", Kind: KindRect, Box: Box{X: 0.5, Y: by(6.4), W: 9, H: by(0.7)}, Fill: briefTint})
	s.add(text("conclusion", Box{X: 0.7, Y: by(6.5), W: 8.8, H: by(0.6)}, b.Conclusion,
		TextStyle{FontSize: 18, Bold: true, Color: briefText, Align: AlignCenter}))
	s.add(text("visual", Box{X: 0.5, Y: by(7.3), W: 9, H: by(0.4)}, "Visual Suggestion: "+b.VisualSuggestion,
		TextStyle{FontSize: 10, Italic: true, Color: ColorMuted, Align: AlignCenter}))
	s.add(text("date", Box{X: 0.5, Y: by(7.7), W: 2.0, H: by(0.3)}, date.Format("Jan 2, 2006"),
		TextStyle{FontSize: 8, Color: ColorMuted}))

	return s
}

// Texts returns the text of every text item in paint order, one entry per
// paragraph. Used for previews and assertions.
func (s Slide) Texts() []string {
	var out []string
	for _, it := range s.Items {
		for _, p := range it.Paragraphs {
			out = append(out, p.Text)
		}
	}
	return out
}
