package slide

// Layout is the shape of a slide. It controls which fields apply and how
// the exporter positions them.
type Layout string

const (
	LayoutTitle     Layout = "title"
	LayoutContent   Layout = "content"
	LayoutTwoColumn Layout = "twoColumn"
	LayoutImageText Layout = "imageText"
	LayoutQuote     Layout = "quote"
	LayoutCustom    Layout = "custom"
)

// Layouts lists every layout in display order.
var Layouts = []Layout{
	LayoutTitle, LayoutContent, LayoutTwoColumn, LayoutImageText, LayoutQuote, LayoutCustom,
}

// Valid reports whether l is one of the known layouts.
func (l Layout) Valid() bool {
	for _, known := range Layouts {
		if l == known {
			return true
		}
	}
	return false
}

// ParseLayout converts a string to a Layout.
func ParseLayout(s string) (Layout, bool) {
	l := Layout(s)
	return l, l.Valid()
}

// ElementType is the kind of a custom-layout element.
type ElementType string

const (
	ElementText    ElementType = "text"
	ElementTitle   ElementType = "title"
	ElementBullets ElementType = "bulletPoints"
	ElementImage   ElementType = "image"
	ElementShape   ElementType = "shape"
)

// Valid reports whether t is one of the known element types.
func (t ElementType) Valid() bool {
	switch t {
	case ElementText, ElementTitle, ElementBullets, ElementImage, ElementShape:
		return true
	}
	return false
}

// GridColumns is the width of the custom-layout grid.
const GridColumns = 12

// SlideData is the declarative description of one slide.
type SlideData struct {
	Layout           Layout    `json:"layout" validate:"required"`
	Title            string    `json:"title"`
	Subtitle         string    `json:"subtitle,omitempty"`
	BulletPoints     []string  `json:"bulletPoints,omitempty"`
	ColumnOnePoints  []string  `json:"columnOnePoints,omitempty"`
	ColumnTwoPoints  []string  `json:"columnTwoPoints,omitempty"`
	ImageDescription string    `json:"imageDescription,omitempty"`
	Quote            string    `json:"quote,omitempty"`
	Attribution      string    `json:"attribution,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	Elements         []Element `json:"elements,omitempty"`
}

// Element is a freely positioned item of a custom layout. Geometry is in
// grid units: 12 columns wide, rows unbounded.
type Element struct {
	ID      string            `json:"id" validate:"required"`
	Type    ElementType       `json:"type" validate:"required"`
	Content Content           `json:"content"`
	X       int               `json:"x" validate:"min=0"`
	Y       int               `json:"y" validate:"min=0"`
	Width   int               `json:"width" validate:"min=0"`
	Height  int               `json:"height" validate:"min=0"`
	Style   map[string]string `json:"style,omitempty"`
}

// Text returns the element's single-string content. Bullet elements join
// their items with newlines.
func (e Element) Text() string {
	return e.Content.Text()
}

// Bullets returns the element's items. Text elements yield one item.
func (e Element) Bullets() []string {
	return e.Content.Items()
}

// Clone returns a deep copy of s.
func (s SlideData) Clone() SlideData {
	out := s
	out.BulletPoints = cloneStrings(s.BulletPoints)
	out.ColumnOnePoints = cloneStrings(s.ColumnOnePoints)
	out.ColumnTwoPoints = cloneStrings(s.ColumnTwoPoints)
	if s.Elements != nil {
		out.Elements = make([]Element, len(s.Elements))
		for i, el := range s.Elements {
			out.Elements[i] = el.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	out := e
	out.Content = e.Content.clone()
	if e.Style != nil {
		out.Style = make(map[string]string, len(e.Style))
		for k, v := range e.Style {
			out.Style[k] = v
		}
	}
	return out
}

// ElementByID returns the index of the element with id, or -1.
func (s SlideData) ElementByID(id string) int {
	for i, el := range s.Elements {
		if el.ID == id {
			return i
		}
	}
	return -1
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
