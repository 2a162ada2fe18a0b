package overlay

import "image/color"

// Glyph selects the symbol drawn at a mark's position.
type Glyph int

const (
	GlyphCircle Glyph = iota
	GlyphSquare
	GlyphTriangle
)

// FontSpec describes how a mark caption is rendered.
type FontSpec struct {
	Size  float64
	Bold  bool
	Color color.NRGBA
}

// MarkStyle bundles the visual attributes of a mark. A MarkList carries one
// as its default; individual marks override selected fields via their
// Override mask.
type MarkStyle struct {
	Glyph       Glyph
	GlyphSize   int // glyph diameter in pixels
	FillColor   color.NRGBA
	StrokeColor color.NRGBA
	Font        FontSpec
	ShowCaption bool
	// CaptionBackground is painted behind the caption text. Leave the
	// alpha at zero for a bare label.
	CaptionBackground color.NRGBA
}

// StyleOverride is a bit mask naming the MarkStyle fields a mark overrides.
type StyleOverride uint8

const (
	OverrideGlyph StyleOverride = 1 << iota
	OverrideGlyphSize
	OverrideFill
	OverrideStroke
	OverrideFont
	OverrideCaption
	OverrideCaptionBackground
)

// DefaultMarkStyle returns the style a fresh MarkList starts with: a small
// red dot with a white rim and a dark caption.
func DefaultMarkStyle() MarkStyle {
	return MarkStyle{
		Glyph:       GlyphCircle,
		GlyphSize:   8,
		FillColor:   color.NRGBA{R: 0xd3, G: 0x2f, B: 0x2f, A: 0xff},
		StrokeColor: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Font: FontSpec{
			Size:  11,
			Color: color.NRGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff},
		},
		ShowCaption: true,
	}
}

// merge overlays the masked fields of override onto base.
func (base MarkStyle) merge(override MarkStyle, mask StyleOverride) MarkStyle {
	s := base
	if mask&OverrideGlyph != 0 {
		s.Glyph = override.Glyph
	}
	if mask&OverrideGlyphSize != 0 {
		s.GlyphSize = override.GlyphSize
	}
	if mask&OverrideFill != 0 {
		s.FillColor = override.FillColor
	}
	if mask&OverrideStroke != 0 {
		s.StrokeColor = override.StrokeColor
	}
	if mask&OverrideFont != 0 {
		s.Font = override.Font
	}
	if mask&OverrideCaption != 0 {
		s.ShowCaption = override.ShowCaption
	}
	if mask&OverrideCaptionBackground != 0 {
		s.CaptionBackground = override.CaptionBackground
	}
	return s
}
