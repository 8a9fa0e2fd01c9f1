package export

import (
	"bytes"
	"fmt"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"
)

// TextBox is one text shape read back from a slide. Bullets[i] reports
// whether Lines[i] carries a bullet.
type TextBox struct {
	Lines   []string `json:"lines"`
	Bullets []bool   `json:"bullets"`
}

// SlideText is the text read back from one slide.
type SlideText struct {
	Index int       `json:"index"`
	Texts []string  `json:"texts"`
	Boxes []TextBox `json:"boxes"`
	Notes string    `json:"notes,omitempty"`
}

// Summary describes a presentation read back from disk.
type Summary struct {
	// Width and Height are the slide size in inches.
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Slides []SlideText `json:"slides"`
}

// Texts returns every text of every slide in order.
func (s *Summary) Texts() []string {
	var out []string
	for _, sl := range s.Slides {
		out = append(out, sl.Texts...)
	}
	return out
}

// InspectFile reads the .pptx at path and lists the non-empty paragraphs
// of each slide.
func InspectFile(path string) (*Summary, error) {
	pres, err := (&ppt.PPTXReader{}).Read(path)
	if err != nil {
		return nil, fmt.Errorf("read pptx: %w", err)
	}
	return summarize(pres), nil
}

// Inspect reads back a .pptx held in memory.
func Inspect(data []byte) (*Summary, error) {
	pres, err := (&ppt.PPTXReader{}).ReadFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read pptx: %w", err)
	}
	return summarize(pres), nil
}

func summarize(pres *ppt.Presentation) *Summary {
	size := pres.GetLayout()
	sum := &Summary{
		Width:  float64(size.CX) / emuPerInch,
		Height: float64(size.CY) / emuPerInch,
	}
	for i, sl := range pres.GetAllSlides() {
		st := SlideText{Index: i, Texts: []string{}, Boxes: []TextBox{}, Notes: sl.GetNotes()}
		for _, shape := range sl.GetShapes() {
			rts, ok := shape.(*ppt.RichTextShape)
			if !ok {
				continue
			}
			var box TextBox
			for _, para := range rts.GetParagraphs() {
				var b strings.Builder
				for _, elem := range para.GetElements() {
					if run, ok := elem.(*ppt.TextRun); ok {
						b.WriteString(run.GetText())
					}
				}
				text := strings.TrimSpace(b.String())
				if text == "" {
					continue
				}
				bullet := para.GetBullet()
				box.Lines = append(box.Lines, text)
				box.Bullets = append(box.Bullets, bullet != nil && bullet.Type != ppt.BulletTypeNone)
				st.Texts = append(st.Texts, text)
			}
			if len(box.Lines) > 0 {
				st.Boxes = append(st.Boxes, box)
			}
		}
		sum.Slides = append(sum.Slides, st)
	}
	return sum
}
