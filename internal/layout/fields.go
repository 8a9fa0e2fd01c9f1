package layout

import "github.com/hpungsan/autord/internal/slide"

// Field names an editable SlideData field.
type Field string

const (
	FieldTitle            Field = "title"
	FieldSubtitle         Field = "subtitle"
	FieldBulletPoints     Field = "bulletPoints"
	FieldColumnOnePoints  Field = "columnOnePoints"
	FieldColumnTwoPoints  Field = "columnTwoPoints"
	FieldImageDescription Field = "imageDescription"
	FieldQuote            Field = "quote"
	FieldAttribution      Field = "attribution"
	FieldNotes            Field = "notes"
	FieldElements         Field = "elements"
)

var fieldSets = map[slide.Layout][]Field{
	slide.LayoutTitle:     {FieldTitle, FieldSubtitle, FieldNotes},
	slide.LayoutContent:   {FieldTitle, FieldBulletPoints, FieldNotes},
	slide.LayoutTwoColumn: {FieldTitle, FieldColumnOnePoints, FieldColumnTwoPoints, FieldNotes},
	slide.LayoutImageText: {FieldTitle, FieldImageDescription, FieldBulletPoints, FieldNotes},
	slide.LayoutQuote:     {FieldTitle, FieldQuote, FieldAttribution, FieldNotes},
	slide.LayoutCustom:    {FieldElements},
}

// FieldsFor returns the editable fields of l in display order. Unknown
// layouts have no fields.
func FieldsFor(l slide.Layout) []Field {
	fields := fieldSets[l]
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// IsListField reports whether f holds an ordered bullet list.
func IsListField(f Field) bool {
	switch f {
	case FieldBulletPoints, FieldColumnOnePoints, FieldColumnTwoPoints:
		return true
	}
	return false
}
