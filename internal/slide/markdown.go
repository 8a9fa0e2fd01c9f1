package slide

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxConclusionRepeat is the largest conclusion bound; regexp rejects
// repeat counts above it.
const MaxConclusionRepeat = 1000

// Fallback values of the markdown conversion.
const (
	DefaultBriefTitle      = "Presentation Title"
	DefaultBriefPoint      = "Key point from the research"
	DefaultBriefConclusion = "Research findings highlight important implications for future work."
	DefaultMarkdownVisual  = "Comparison chart of key metrics"
)

// Thresholds tunes the markdown conversion.
type Thresholds struct {
	// PointMaxChars truncates paragraph-derived points.
	PointMaxChars int
	// MaxFallbackPoints is how many paragraphs are examined when no bullets exist.
	MaxFallbackPoints int
	// VisualBefore and VisualAfter bound the text window around a visual keyword.
	VisualBefore int
	VisualAfter  int
	// ConclusionMin and ConclusionMax bound the length of the closing paragraph,
	// excluding its first character.
	ConclusionMin int
	ConclusionMax int
}

// DefaultThresholds returns the historical tuning constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PointMaxChars:     50,
		MaxFallbackPoints: 5,
		VisualBefore:      50,
		VisualAfter:       100,
		ConclusionMin:     10,
		ConclusionMax:     100,
	}
}

var (
	mdTitleRe        = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	mdSubheadRe      = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	mdLeadParagraph  = regexp.MustCompile(`(?m)^#\s+.+\n\n([^\n#]+)`)
	mdBulletRe       = regexp.MustCompile("[*-]\\s+([^*\\n]+)(?:\\n\\s+`([^`]+)`)?")
	mdVisualKeywords = regexp.MustCompile(`(?i)(?:chart|graph|diagram|table|visual|layout|figure)`)
)

// FromMarkdown derives a Brief from prose. It is meant for generator output
// that came back as markdown instead of JSON, and it fills every field it
// cannot find with a default. It reports false only if the conversion
// itself fails; it never panics.
func FromMarkdown(md string, th Thresholds) (b Brief, ok bool) {
	defer func() {
		if recover() != nil {
			b, ok = Brief{}, false
		}
	}()

	th = th.withDefaults()

	b.Title = DefaultBriefTitle
	if m := mdTitleRe.FindStringSubmatch(md); m != nil {
		b.Title = strings.TrimSpace(m[1])
	}

	if m := mdSubheadRe.FindStringSubmatch(md); m != nil {
		sub := strings.TrimSpace(m[1])
		b.Subtitle = &sub
	} else if m := mdLeadParagraph.FindStringSubmatch(md); m != nil {
		sub := strings.TrimSpace(m[1])
		b.Subtitle = &sub
	}

	b.MainPoints = bulletPoints(md)
	if len(b.MainPoints) == 0 {
		b.MainPoints = paragraphPoints(md, th)
	}
	if len(b.MainPoints) == 0 {
		b.MainPoints = []Point{{Text: DefaultBriefPoint}}
	}

	b.Conclusion = DefaultBriefConclusion
	conclusionRe, err := regexp.Compile(fmt.Sprintf(`\n\n([^#\n].{%d,%d})\n\n?$`, th.ConclusionMin, th.ConclusionMax))
	if err != nil {
		return Brief{}, false
	}
	if m := conclusionRe.FindStringSubmatch(md); m != nil {
		b.Conclusion = strings.TrimSpace(m[1])
	}

	b.VisualSuggestion = DefaultMarkdownVisual
	if loc := mdVisualKeywords.FindStringIndex(md); loc != nil {
		b.VisualSuggestion = strings.TrimSpace(runeWindow(md, loc[0], th.VisualBefore, th.VisualAfter))
	}

	return b, true
}

func bulletPoints(md string) []Point {
	var points []Point
	for _, m := range mdBulletRe.FindAllStringSubmatch(md, -1) {
		p := Point{Text: strings.TrimSpace(m[1])}
		if m[2] != "" {
			sd := strings.TrimSpace(m[2])
			p.SupportingData = &sd
		}
		points = append(points, p)
	}
	return points
}

// paragraphPoints examines up to MaxFallbackPoints paragraphs after the
// first and keeps the ones that are not headings.
func paragraphPoints(md string, th Thresholds) []Point {
	paragraphs := strings.Split(md, "\n\n")
	if len(paragraphs) > 0 {
		paragraphs = paragraphs[1:]
	}

	var points []Point
	for i := 0; i < len(paragraphs) && i < th.MaxFallbackPoints; i++ {
		p := paragraphs[i]
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		text := strings.TrimSpace(truncateRunes(p, th.PointMaxChars))
		if utf8.RuneCountInString(p) > th.PointMaxChars {
			text += "..."
		}
		points = append(points, Point{Text: text})
	}
	return points
}

// runeWindow returns the runes of s in [at-before, at+after), where at is
// the byte offset of a match.
func runeWindow(s string, at, before, after int) string {
	runes := []rune(s)
	idx := utf8.RuneCountInString(s[:at])
	start := max(0, idx-before)
	end := min(len(runes), idx+after)
	return string(runes[start:end])
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func (th Thresholds) withDefaults() Thresholds {
	def := DefaultThresholds()
	if th.PointMaxChars <= 0 {
		th.PointMaxChars = def.PointMaxChars
	}
	if th.MaxFallbackPoints <= 0 {
		th.MaxFallbackPoints = def.MaxFallbackPoints
	}
	if th.VisualBefore < 0 {
		th.VisualBefore = def.VisualBefore
	}
	if th.VisualAfter <= 0 {
		th.VisualAfter = def.VisualAfter
	}
	if th.ConclusionMax <= 0 {
		th.ConclusionMin, th.ConclusionMax = def.ConclusionMin, def.ConclusionMax
	}
	if th.ConclusionMax > MaxConclusionRepeat {
		th.ConclusionMax = MaxConclusionRepeat
	}
	if th.ConclusionMin < 0 {
		th.ConclusionMin = 0
	}
	if th.ConclusionMin > th.ConclusionMax {
		th.ConclusionMin = th.ConclusionMax
	}
	return th
}
