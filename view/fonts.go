package view

import (
	"bytes"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/phanxgames/arix"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Font is a TrueType face at a fixed size.
type Font struct {
	face *text.GoTextFace
	lh   float64 // cached line height
}

// LoadFont loads a TrueType font from raw TTF/OTF data at the given size.
func LoadFont(ttfData []byte, size float64) (*Font, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("arix: failed to parse TTF data: %w", err)
	}
	face := &text.GoTextFace{Source: source, Size: size}
	m := face.Metrics()
	return &Font{face: face, lh: m.HAscent + m.HDescent + m.HLineGap}, nil
}

// Measure returns the width and height of s with extra tracking in pixels
// between runes.
func (f *Font) Measure(s string, tracking float64) (w, h float64) {
	w, h = text.Measure(s, f.face, f.lh)
	if n := len([]rune(s)); n > 1 {
		w += tracking * float64(n-1)
	}
	return w, h
}

// Draw renders s with its top-left at (x, y) and returns the x after it.
// Tracking adds space between runes.
func (f *Font) Draw(dst *ebiten.Image, s string, x, y, tracking float64, c arix.Color) float64 {
	op := &text.DrawOptions{}
	op.ColorScale.Scale(float32(c.R*c.A), float32(c.G*c.A), float32(c.B*c.A), float32(c.A))
	op.LineSpacing = f.lh
	if tracking == 0 {
		op.GeoM.Translate(x, y)
		text.Draw(dst, s, f.face, op)
		w, _ := text.Measure(s, f.face, f.lh)
		return x + w
	}
	for _, r := range s {
		glyph := string(r)
		op.GeoM.Reset()
		op.GeoM.Translate(x, y)
		text.Draw(dst, glyph, f.face, op)
		w, _ := text.Measure(glyph, f.face, f.lh)
		x += w + tracking
	}
	return x - tracking
}

// fonts holds the overlay faces.
type fonts struct {
	title   *Font // small bold caps
	script  *Font // large italic
	accent  *Font // large bold italic
	label   *Font
	buttons *Font
}

func loadFonts(scale float64) (*fonts, error) {
	load := func(data []byte, size float64) (*Font, error) {
		return LoadFont(data, size*scale)
	}
	var f fonts
	var err error
	if f.title, err = load(gobold.TTF, 12); err != nil {
		return nil, err
	}
	if f.script, err = load(goitalic.TTF, 36); err != nil {
		return nil, err
	}
	if f.accent, err = load(gobolditalic.TTF, 36); err != nil {
		return nil, err
	}
	if f.label, err = load(goregular.TTF, 12); err != nil {
		return nil, err
	}
	if f.buttons, err = load(gobold.TTF, 16); err != nil {
		return nil, err
	}
	return &f, nil
}
