package slide

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/hpungsan/autord/internal/errors"
)

// DefaultBriefVisual is used when a parsed brief has no visual suggestion.
const DefaultBriefVisual = "Simple bar chart or comparison table"

// Point is one main point of a brief.
type Point struct {
	Text           string  `json:"text"`
	SupportingData *string `json:"supportingData"`
}

// Brief is the one-slide summary produced by an upstream text generator.
type Brief struct {
	Title            string  `json:"title"`
	Subtitle         *string `json:"subtitle"`
	MainPoints       []Point `json:"mainPoints"`
	Conclusion       string  `json:"conclusion"`
	VisualSuggestion string  `json:"visualSuggestion"`
}

// rawBrief distinguishes missing fields from wrongly typed ones.
type rawBrief struct {
	Title            string            `json:"title"`
	Subtitle         *string           `json:"subtitle"`
	MainPoints       []json.RawMessage `json:"mainPoints"`
	Conclusion       string            `json:"conclusion"`
	VisualSuggestion string            `json:"visualSuggestion"`
}

var jsonObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseBrief decodes generated text into a Brief. Text that is not valid JSON
// is searched for its outermost {...} span. It reports false when no brief with
// a title, a main point list of {text} objects, and a conclusion can be
// derived. It never panics.
func ParseBrief(text string) (b Brief, ok bool) {
	defer func() {
		if recover() != nil {
			b, ok = Brief{}, false
		}
	}()

	// Valid JSON of any other shape, such as an array, is not searched.
	data := []byte(text)
	if !json.Valid(data) {
		span := jsonObjectRe.FindString(text)
		if span == "" {
			return Brief{}, false
		}
		data = []byte(span)
	}
	var raw rawBrief
	if err := json.Unmarshal(data, &raw); err != nil {
		return Brief{}, false
	}

	if raw.Title == "" || raw.MainPoints == nil || raw.Conclusion == "" {
		return Brief{}, false
	}

	points := make([]Point, 0, len(raw.MainPoints))
	for _, rp := range raw.MainPoints {
		var p struct {
			Text           *string         `json:"text"`
			SupportingData json.RawMessage `json:"supportingData"`
		}
		if err := json.Unmarshal(rp, &p); err != nil || p.Text == nil {
			return Brief{}, false
		}
		point := Point{Text: *p.Text}
		var sd string
		if len(p.SupportingData) > 0 && json.Unmarshal(p.SupportingData, &sd) == nil && sd != "" {
			point.SupportingData = &sd
		}
		points = append(points, point)
	}

	b = Brief{
		Title:            raw.Title,
		Subtitle:         raw.Subtitle,
		MainPoints:       points,
		Conclusion:       raw.Conclusion,
		VisualSuggestion: raw.VisualSuggestion,
	}
	if b.VisualSuggestion == "" {
		b.VisualSuggestion = DefaultBriefVisual
	}
	return b, true
}

// Marshal encodes b in the shape ParseBrief accepts.
func (b Brief) Marshal() ([]byte, error) {
	if b.MainPoints == nil {
		b.MainPoints = []Point{}
	}
	return json.Marshal(b)
}

// SlideData converts a brief into an editable content slide: points become
// bullets and the conclusion goes to the speaker notes.
func (b Brief) SlideData() SlideData {
	bullets := make([]string, 0, len(b.MainPoints))
	for _, p := range b.MainPoints {
		text := p.Text
		if p.SupportingData != nil && strings.TrimSpace(*p.SupportingData) != "" {
			text += " (" + *p.SupportingData + ")"
		}
		bullets = append(bullets, text)
	}
	sd := SlideData{
		Layout:       LayoutContent,
		Title:        b.Title,
		BulletPoints: bullets,
		Notes:        b.Conclusion,
	}
	if b.Subtitle != nil {
		sd.Subtitle = *b.Subtitle
	}
	return sd
}

// Brief sources reported by ResolveBrief.
const (
	SourceObject   = "object"
	SourceJSON     = "json"
	SourceMarkdown = "markdown"
)

// ResolveBrief turns either a brief object or generated text into a Brief.
// Text is tried as JSON first, then as markdown. It also returns which
// source produced the brief.
func ResolveBrief(obj []byte, text string, th Thresholds) (Brief, string, error) {
	if len(obj) > 0 && string(obj) != "null" {
		b, ok := ParseBrief(string(obj))
		if !ok {
			return Brief{}, SourceObject, errors.NewInvalidRequest("brief requires title, mainPoints[].text and conclusion")
		}
		return b, SourceObject, nil
	}
	if strings.TrimSpace(text) == "" {
		return Brief{}, "", errors.NewInvalidRequest("brief or text is required")
	}
	if b, ok := ParseBrief(text); ok {
		return b, SourceJSON, nil
	}
	b, ok := FromMarkdown(text, th)
	if !ok {
		return Brief{}, SourceMarkdown, errors.NewUnparseable("brief text")
	}
	return b, SourceMarkdown, nil
}
