// Package editor applies user edits to a SlideData document.
//
// The functions in this file are pure: each takes a document and returns an
// edited copy, leaving its input untouched. Session wraps them around a
// single owned document.
package editor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hpungsan/autord/internal/errors"
	"github.com/hpungsan/autord/internal/layout"
	"github.com/hpungsan/autord/internal/slide"
)

// Seeded element ids.
const (
	SeedTitleID   = "title-1"
	SeedBulletsID = "bullets-1"
)

// Geometry replaces the grid position and size of one element.
type Geometry struct {
	ID     string `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// SetField replaces a text field.
func SetField(d slide.SlideData, f layout.Field, value string) (slide.SlideData, error) {
	out := d.Clone()
	switch f {
	case layout.FieldTitle:
		out.Title = value
	case layout.FieldSubtitle:
		out.Subtitle = value
	case layout.FieldImageDescription:
		out.ImageDescription = value
	case layout.FieldQuote:
		out.Quote = value
	case layout.FieldAttribution:
		out.Attribution = value
	case layout.FieldNotes:
		out.Notes = value
	default:
		return d, errors.NewInvalidRequest(fmt.Sprintf("field %q is not a text field", f))
	}
	return out, nil
}

// SetList replaces a bullet list wholesale.
func SetList(d slide.SlideData, f layout.Field, items []string) (slide.SlideData, error) {
	out := d.Clone()
	list, err := listOf(&out, f)
	if err != nil {
		return d, err
	}
	*list = append([]string{}, items...)
	return out, nil
}

// SetLayout switches the layout. Switching to custom seeds default
// elements when the document has none.
func SetLayout(d slide.SlideData, l slide.Layout) (slide.SlideData, error) {
	if !l.Valid() {
		return d, errors.NewInvalidRequest(fmt.Sprintf("unknown layout %q", l))
	}
	out := d.Clone()
	out.Layout = l
	if l == slide.LayoutCustom {
		out = SeedCustom(out)
	}
	return out, nil
}

// SeedCustom adds a title element and a bullet element built from the
// document's title and bullets. It does nothing when elements exist, so
// calling it repeatedly is safe.
func SeedCustom(d slide.SlideData) slide.SlideData {
	if len(d.Elements) > 0 {
		return d
	}
	out := d.Clone()

	title := d.Title
	if title == "" {
		title = slide.DefaultCustomTitle
	}
	items := d.BulletPoints
	if items == nil {
		items = slide.DefaultBullets()
	}

	out.Elements = []slide.Element{
		{
			ID:      SeedTitleID,
			Type:    slide.ElementTitle,
			Content: slide.NewTextContent(title),
			X:       0, Y: 0, Width: slide.GridColumns, Height: 2,
			Style: map[string]string{"fontSize": "24px", "fontWeight": "bold"},
		},
		{
			ID:      SeedBulletsID,
			Type:    slide.ElementBullets,
			Content: slide.NewListContent(items),
			X:       0, Y: 2, Width: slide.GridColumns, Height: 4,
		},
	}
	return out
}

// AppendBullet adds the placeholder point at the end of list f.
func AppendBullet(d slide.SlideData, f layout.Field) (slide.SlideData, error) {
	out := d.Clone()
	list, err := listOf(&out, f)
	if err != nil {
		return d, err
	}
	*list = append(*list, slide.DefaultBulletText)
	return out, nil
}

// UpdateBullet replaces item i of list f. It reports false, leaving the
// document unchanged, when i is out of range.
func UpdateBullet(d slide.SlideData, f layout.Field, i int, value string) (slide.SlideData, bool, error) {
	out := d.Clone()
	list, err := listOf(&out, f)
	if err != nil {
		return d, false, err
	}
	if i < 0 || i >= len(*list) {
		return d, false, nil
	}
	(*list)[i] = value
	return out, true, nil
}

// RemoveBullet deletes item i of list f and shifts later items left. It
// reports false, leaving the document unchanged, when i is out of range.
func RemoveBullet(d slide.SlideData, f layout.Field, i int) (slide.SlideData, bool, error) {
	out := d.Clone()
	list, err := listOf(&out, f)
	if err != nil {
		return d, false, err
	}
	if i < 0 || i >= len(*list) {
		return d, false, nil
	}
	*list = append((*list)[:i], (*list)[i+1:]...)
	return out, true, nil
}

// AddElement appends an element of type t below the existing ones: full
// width, two rows tall, at row 2 × element count.
func AddElement(d slide.SlideData, t slide.ElementType) (slide.SlideData, slide.Element, error) {
	if !t.Valid() {
		return d, slide.Element{}, errors.NewInvalidRequest(fmt.Sprintf("unknown element type %q", t))
	}

	var content slide.Content
	switch t {
	case slide.ElementBullets:
		content = slide.NewListContent([]string{slide.DefaultBulletText})
	case slide.ElementImage:
		content = slide.NewTextContent(slide.DefaultImageContent)
	default:
		content = slide.NewTextContent(slide.DefaultElementText)
	}

	el := slide.Element{
		ID:      "element-" + uuid.NewString(),
		Type:    t,
		Content: content,
		X:       0,
		Y:       len(d.Elements) * 2,
		Width:   slide.GridColumns,
		Height:  2,
	}

	out := d.Clone()
	out.Elements = append(out.Elements, el)
	return out, el.Clone(), nil
}

// RemoveElement deletes the element with id. It reports false when no
// element matches.
func RemoveElement(d slide.SlideData, id string) (slide.SlideData, bool) {
	i := d.ElementByID(id)
	if i < 0 {
		return d, false
	}
	out := d.Clone()
	out.Elements = append(out.Elements[:i], out.Elements[i+1:]...)
	return out, true
}

// UpdateElementContent replaces the content of element id in place,
// keeping its geometry. The content is coerced to the element's type.
func UpdateElementContent(d slide.SlideData, id string, c slide.Content) (slide.SlideData, bool) {
	i := d.ElementByID(id)
	if i < 0 {
		return d, false
	}
	out := d.Clone()
	out.Elements[i].Content = c.As(out.Elements[i].Type)
	return out, true
}

// ApplyGeometry replaces x, y, width and height of the named elements.
// Elements not named keep their geometry; unknown ids are ignored.
// Negative values are clamped to zero.
func ApplyGeometry(d slide.SlideData, updates []Geometry) (slide.SlideData, int) {
	out := d.Clone()
	applied := 0
	for _, g := range updates {
		i := out.ElementByID(g.ID)
		if i < 0 {
			continue
		}
		el := &out.Elements[i]
		el.X, el.Y = max(g.X, 0), max(g.Y, 0)
		el.Width, el.Height = max(g.Width, 0), max(g.Height, 0)
		applied++
	}
	return out, applied
}

func listOf(d *slide.SlideData, f layout.Field) (*[]string, error) {
	switch f {
	case layout.FieldBulletPoints:
		return &d.BulletPoints, nil
	case layout.FieldColumnOnePoints:
		return &d.ColumnOnePoints, nil
	case layout.FieldColumnTwoPoints:
		return &d.ColumnTwoPoints, nil
	}
	return nil, errors.NewInvalidRequest(fmt.Sprintf("field %q is not a bullet list", f))
}
