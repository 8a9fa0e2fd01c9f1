package ops

import (
	"fmt"
	"time"

	"github.com/hpungsan/autord/internal/slide"
)

// Storage keys.
const (
	KeyTemplates = "slideTemplates"
	KeySelected  = "selectedTemplate"
)

// Format tells a generator how to shape a brief.
type Format struct {
	Layout                string `json:"layout"`
	NumPoints             int    `json:"numPoints"`
	IncludeSupportingData bool   `json:"includeSupportingData"`
	IncludeConclusion     bool   `json:"includeConclusion"`
	VisualStyle           string `json:"visualStyle"`
}

// VariableType is the kind of value a template variable takes.
type VariableType string

const (
	VarText   VariableType = "text"
	VarNumber VariableType = "number"
	VarList   VariableType = "list"
	VarImage  VariableType = "image"
)

// Valid reports whether t is a known variable type.
func (t VariableType) Valid() bool {
	switch t {
	case VarText, VarNumber, VarList, VarImage:
		return true
	}
	return false
}

// Variable is a named slot a template exposes to content generators.
type Variable struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Type         VariableType `json:"type"`
	DefaultValue any          `json:"defaultValue,omitempty"`
}

// Template is a saved slide design.
type Template struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Layout       string           `json:"layout"`
	Format       Format           `json:"format"`
	Variables    []Variable       `json:"variables"`
	SlideData    *slide.SlideData `json:"slideData,omitempty"`
	PptxData     string           `json:"pptxData,omitempty"`
	ThumbnailURL string           `json:"thumbnailUrl,omitempty"`
	Builtin      bool             `json:"builtin"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Summary drops the stored artifact. Listings return summaries.
func (t Template) Summary() Template {
	t.PptxData = ""
	return t
}

func (t Template) clone() Template {
	out := t
	if t.Variables != nil {
		out.Variables = append([]Variable{}, t.Variables...)
	}
	if t.SlideData != nil {
		sd := t.SlideData.Clone()
		out.SlideData = &sd
	}
	return out
}

func validateVariables(vars []Variable) error {
	seen := make(map[string]bool, len(vars))
	for i, v := range vars {
		if v.ID == "" {
			return invalid("variables[%d].id is required", i)
		}
		if seen[v.ID] {
			return invalid("variables[%d].id %q is duplicated", i, v.ID)
		}
		seen[v.ID] = true
		if !v.Type.Valid() {
			return invalid("variables[%d].type must be one of: text, number, list, image", i)
		}
	}
	return nil
}

func validateFormat(f Format) error {
	if f.NumPoints < 0 {
		return invalid("format.numPoints must not be negative")
	}
	return nil
}

// SlideLayout maps a generator layout name onto the closest editor layout.
func (f Format) SlideLayout() slide.Layout {
	switch f.Layout {
	case "two-column", "comparison":
		return slide.LayoutTwoColumn
	case "title":
		return slide.LayoutTitle
	case "quote":
		return slide.LayoutQuote
	case "image-text":
		return slide.LayoutImageText
	}
	return slide.LayoutContent
}

// Starter returns a placeholder document shaped by f.
func (f Format) Starter(title string) slide.SlideData {
	n := f.NumPoints
	if n <= 0 {
		n = 3
	}
	d := slide.SlideData{Layout: f.SlideLayout(), Title: title}
	points := make([]string, n)
	for i := range points {
		points[i] = fmt.Sprintf("Point %d", i+1)
	}
	if d.Layout == slide.LayoutTwoColumn {
		half := (n + 1) / 2
		d.ColumnOnePoints = append([]string{}, points[:half]...)
		d.ColumnTwoPoints = append([]string{}, points[half:]...)
	} else {
		d.BulletPoints = points
	}
	if f.IncludeConclusion {
		d.Notes = "Close with the conclusion."
	}
	return d
}
