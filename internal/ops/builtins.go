package ops

import "time"

var builtinCreated = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var builtins = []Template{
	{
		ID:          "one-slide-presentation",
		Name:        "One-Slide Presentation",
		Description: "Standard one-slide presentation with key points",
		Layout:      "two-column",
		Format: Format{
			Layout:                "two-column",
			NumPoints:             4,
			IncludeSupportingData: true,
			IncludeConclusion:     true,
			VisualStyle:           "corporate",
		},
		Variables: []Variable{
			{ID: "title", Name: "Title", Description: "Main headline of the slide", Type: VarText, DefaultValue: "Research Summary"},
			{ID: "subtitle", Name: "Subtitle", Description: "Optional subtitle or tagline", Type: VarText},
			{ID: "mainPoints", Name: "Main Points", Description: "Key points with supporting data", Type: VarList},
			{ID: "conclusion", Name: "Conclusion", Description: "Brief concluding statement", Type: VarText},
			{ID: "visualSuggestion", Name: "Visual Element", Description: "Description of visual element", Type: VarText},
		},
	},
	{
		ID:          "research-summary",
		Name:        "Research Summary",
		Description: "Summarize research findings in a clean format",
		Layout:      "single-column",
		Format: Format{
			Layout:            "single-column",
			NumPoints:         5,
			IncludeConclusion: true,
			VisualStyle:       "minimal",
		},
	},
	{
		ID:          "comparison-slide",
		Name:        "Comparison",
		Description: "Compare two topics side by side",
		Layout:      "comparison",
		Format: Format{
			Layout:                "comparison",
			NumPoints:             6,
			IncludeSupportingData: true,
			IncludeConclusion:     true,
			VisualStyle:           "academic",
		},
	},
	{
		ID:          "timeline-slide",
		Name:        "Timeline",
		Description: "Present events in chronological order",
		Layout:      "timeline",
		Format: Format{
			Layout:                "timeline",
			NumPoints:             4,
			IncludeSupportingData: true,
			VisualStyle:           "creative",
		},
	},
}

// Builtins returns the read-only templates shipped with autord.
func Builtins() []Template {
	out := make([]Template, len(builtins))
	for i, t := range builtins {
		t.Builtin = true
		t.CreatedAt, t.UpdatedAt = builtinCreated, builtinCreated
		if t.Variables == nil {
			t.Variables = []Variable{}
		}
		sd := t.Format.Starter(t.Name)
		t.SlideData = &sd
		out[i] = t.clone()
	}
	return out
}

// DefaultSelection is the template selected when nothing else is.
func DefaultSelection() string {
	return builtins[0].ID
}

func builtin(id string) (Template, bool) {
	for _, t := range Builtins() {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
