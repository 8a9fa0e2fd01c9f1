package export

import (
	"bytes"
	"fmt"
	"io"

	ppt "github.com/VantageDataChat/GoPPT"

	"github.com/hpungsan/autord/internal/layout"
)

// Deck is the presentation surface the exporter draws on.
type Deck interface {
	SetTitle(title string)
	AddPage() Page
	Serialize(w io.Writer) error
}

// Page is one slide of a Deck.
type Page interface {
	AddText(paras []layout.Paragraph, box layout.Box, style layout.TextStyle)
	AddShape(kind layout.Kind, box layout.Box, fill string)
	// AddNotes attaches speaker notes and reports whether the deck
	// supports them.
	AddNotes(text string) bool
}

const emuPerInch = 914400

// BulletChar is the glyph of bulleted paragraphs.
const BulletChar = "•"

func emu(inches float64) int64 { return int64(inches * emuPerInch) }

func argb(rgb string) ppt.Color { return ppt.NewColor("FF" + rgb) }

// GoPPTDeck writes 16:9 OOXML presentations with GoPPT.
type GoPPTDeck struct {
	p     *ppt.Presentation
	pages int
}

// NewDeck returns an empty GoPPT deck sized to the layout canvas.
func NewDeck() Deck {
	p := ppt.New()
	p.GetLayout().SetCustomLayout(emu(layout.SlideWidth), emu(layout.SlideHeight))
	return &GoPPTDeck{p: p}
}

// SetTitle sets the document title.
func (d *GoPPTDeck) SetTitle(title string) {
	props := d.p.GetDocumentProperties()
	props.Title = title
	props.Creator = "AutoRD"
}

// AddPage returns the presentation's initial slide on the first call and a
// new slide after that.
func (d *GoPPTDeck) AddPage() Page {
	var s *ppt.Slide
	if d.pages == 0 {
		s = d.p.GetActiveSlide()
	} else {
		s = d.p.CreateSlide()
	}
	d.pages++
	return &goPPTPage{s: s}
}

// Serialize writes the .pptx package to w.
func (d *GoPPTDeck) Serialize(w io.Writer) error {
	pw, err := ppt.NewWriter(d.p, ppt.WriterPowerPoint2007)
	if err != nil {
		return fmt.Errorf("create pptx writer: %w", err)
	}
	var buf bytes.Buffer
	if err := pw.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return fmt.Errorf("write pptx: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

type goPPTPage struct {
	s *ppt.Slide
}

func (p *goPPTPage) place(box layout.Box) *ppt.RichTextShape {
	shape := p.s.CreateRichTextShape()
	shape.SetOffsetX(emu(box.X)).SetOffsetY(emu(box.Y))
	shape.SetWidth(emu(box.W)).SetHeight(emu(box.H))
	return shape
}

func (p *goPPTPage) AddText(paras []layout.Paragraph, box layout.Box, style layout.TextStyle) {
	shape := p.place(box)
	for i, para := range paras {
		if i > 0 {
			shape.CreateParagraph()
		}
		run := shape.CreateTextRun(para.Text)
		font := run.GetFont()
		font.SetSize(style.FontSize).SetBold(style.Bold).SetItalic(style.Italic)
		if style.Color != "" {
			font.SetColor(argb(style.Color))
		}
		active := shape.GetActiveParagraph()
		if para.Bullet {
			active.SetBullet(ppt.NewBullet().SetCharBullet(BulletChar))
		}
		align(active, style.Align)
	}
}

// AddShape draws a filled box. GoPPT has no ellipse primitive, so ellipses
// are drawn as their bounding box.
func (p *goPPTPage) AddShape(_ layout.Kind, box layout.Box, fill string) {
	shape := p.place(box)
	if fill != "" {
		shape.SetFill(ppt.NewFill().SetSolid(argb(fill)))
	}
}

func (p *goPPTPage) AddNotes(text string) bool {
	p.s.SetNotes(text)
	return true
}

func align(para *ppt.Paragraph, a layout.Align) {
	switch a {
	case layout.AlignCenter:
		para.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
	case layout.AlignRight:
		para.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalRight))
	}
}
