package mapview

import (
	"image"
	"image/draw"

	"github.com/gogpu/gg"

	"github.com/littleearth/osmmap/proj"
)

const (
	labelInset    = 8
	labelFontSize = 10
	scaleBarWidth = 150 // widest distance bar that still fits the label
)

func (v *MapView) drawLabels() {
	if v.cfg.ShowScaleBar {
		v.blitScaleBar()
	}
	if v.cfg.Copyright != "" {
		v.blitCopyright()
	}
}

// blitCopyright places the attribution label in the bottom-right corner.
// The label bitmap is rendered once and reused; it only ever changes with
// the configuration.
func (v *MapView) blitCopyright() {
	if v.copyright == nil {
		v.copyright = renderLabel(v.cfg.Copyright)
	}
	w, h := v.copyright.Width(), v.copyright.Height()
	v.blitLabel(v.copyright, image.Pt(v.viewSize.X-w-labelInset, v.viewSize.Y-h-labelInset))
}

// blitScaleBar places the distance scale in the bottom-left corner. The
// bitmap is regenerated whenever the zoom level it was built for goes
// stale.
func (v *MapView) blitScaleBar() {
	if v.scaleBar == nil || v.scaleZoom != v.zoom {
		v.scaleBar = renderScaleBar(v.zoom)
		v.scaleZoom = v.zoom
	}
	h := v.scaleBar.Height()
	v.blitLabel(v.scaleBar, image.Pt(labelInset, v.viewSize.Y-h-labelInset))
}

func (v *MapView) blitLabel(label *gg.Context, org image.Point) {
	pm := label.ResizeTarget()
	dst := rgbaView(v.frame.ResizeTarget())
	r := image.Rectangle{Min: org, Max: org.Add(image.Pt(pm.Width(), pm.Height()))}
	draw.Draw(dst, r, rgbaView(pm), image.Point{}, draw.Src)
}

// renderLabel rasterizes a single line of text on an opaque backing so it
// can be blitted without blending.
func renderLabel(text string) *gg.Context {
	f := face(labelFontSize, false)

	measure := gg.NewContext(1, 1)
	measure.SetFont(f)
	w, h := measure.MeasureString(text)

	c := gg.NewContext(int(w)+10, int(h)+6)
	c.ClearWithColor(gg.FromColor(labelBacking))
	c.SetFont(f)
	c.SetColor(labelText)
	c.DrawStringAnchored(text, float64(c.Width())/2, float64(c.Height())/2, 0.5, 0.5)
	return c
}

// renderScaleBar rasterizes the distance scale for one zoom level: the
// round distance label over a bar with end ticks, sized by the projection's
// meters-per-pixel table.
func renderScaleBar(zoom int) *gg.Context {
	px, label := proj.ScaleBar(zoom, scaleBarWidth)

	c := gg.NewContext(px+12, 26)
	c.ClearWithColor(gg.FromColor(labelBacking))
	c.SetFont(face(labelFontSize, false))
	c.SetColor(labelText)
	c.DrawStringAnchored(label, float64(c.Width())/2, 8, 0.5, 0.5)

	left, right := 6.0, float64(6+px)
	c.SetLineWidth(1)
	c.MoveTo(left, 15.5)
	c.LineTo(left, 20.5)
	c.MoveTo(left, 20.5)
	c.LineTo(right, 20.5)
	c.MoveTo(right, 20.5)
	c.LineTo(right, 15.5)
	c.Stroke()
	return c
}
