package mapview

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gogpu/gg"

	"github.com/littleearth/osmmap/overlay"
	"github.com/littleearth/osmmap/proj"
)

var (
	placeholderFill   = color.NRGBA{R: 0xe9, G: 0xe9, B: 0xe9, A: 0xff}
	placeholderBorder = color.NRGBA{R: 0xc4, G: 0xc4, B: 0xc4, A: 0xff}
	placeholderText   = color.NRGBA{R: 0x73, G: 0x73, B: 0x73, A: 0xff}
	selectionFill     = color.NRGBA{R: 0x42, G: 0x85, B: 0xf4, A: 0x28}
	selectionBorder   = color.NRGBA{R: 0x42, G: 0x85, B: 0xf4, A: 0xff}
	markSelection     = color.NRGBA{R: 0x1a, G: 0x73, B: 0xe8, A: 0xff}
	labelBacking      = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	labelText         = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

// Frame recomposes the visible map and returns the frame buffer: the cached
// tile raster is blitted, then tracks and areas, the corner labels and the
// mapmarks are drawn on top in that order. The returned context is owned by
// the MapView and stays valid until the next Frame or SetSize call.
func (v *MapView) Frame() *gg.Context {
	v.syncCache()
	v.frame.ClearWithColor(gg.FromColor(v.cfg.Background))

	vr := v.viewRect()
	dst := rgbaView(v.frame.ResizeTarget())
	src := rgbaView(v.cache.ResizeTarget())
	draw.Draw(dst, vr.Sub(v.viewTopLeft), src, vr.Min.Sub(v.cacheRect.Min), draw.Src)

	v.drawShapes(vr)
	v.drawLabels()
	v.drawMarks(vr)
	v.drawSelection()
	return v.frame
}

// Pixels exposes the current frame's raw RGBA bytes, row-major with a
// stride of four bytes per pixel, ready for upload to a GPU texture. The
// slice aliases the frame buffer and is invalidated by SetSize.
func (v *MapView) Pixels() []uint8 {
	return v.frame.ResizeTarget().Data()
}

func (v *MapView) geoToViewF(g proj.GeoPoint) (float64, float64) {
	p := proj.GeoToMap(v.zoom, g).Sub(v.viewTopLeft)
	return float64(p.X), float64(p.Y)
}

func (v *MapView) drawShapes(vr image.Rectangle) {
	if v.Shapes.Count() == 0 || vr.Empty() {
		return
	}
	region := proj.MapToGeoRect(v.zoom, vr)
	for _, s := range v.Shapes.VisibleIn(region, v.Layers) {
		switch s := s.(type) {
		case *overlay.Track:
			v.drawTrack(s)
		case *overlay.Area:
			v.drawArea(s)
		}
	}
}

func (v *MapView) drawTrack(t *overlay.Track) {
	if len(t.Points) < 2 {
		return
	}
	c := v.frame
	for i, p := range t.Points {
		x, y := v.geoToViewF(p)
		if i == 0 {
			c.MoveTo(x, y)
		} else {
			c.LineTo(x, y)
		}
	}
	c.SetColor(t.Color)
	c.SetLineWidth(t.Width)
	if len(t.Dash) > 0 {
		c.SetDash(t.Dash...)
	}
	c.Stroke()
	c.ClearDash()
}

func (v *MapView) drawArea(a *overlay.Area) {
	c := v.frame
	tris, err := a.Triangulate()
	if err != nil {
		logger().Warn("triangulating area failed", "error", err)
	} else if a.FillColor.A > 0 {
		verts := a.Vertices()
		for i := 0; i+2 < len(tris); i += 3 {
			ax, ay := v.geoToViewF(verts[tris[i]])
			bx, by := v.geoToViewF(verts[tris[i+1]])
			cx, cy := v.geoToViewF(verts[tris[i+2]])
			c.MoveTo(ax, ay)
			c.LineTo(bx, by)
			c.LineTo(cx, cy)
			c.ClosePath()
		}
		c.SetColor(a.FillColor)
		c.Fill()
	}
	if a.StrokeColor.A > 0 && a.StrokeWidth > 0 {
		v.strokeRing(a.Outline, a.StrokeColor, a.StrokeWidth)
		for _, hole := range a.Holes {
			v.strokeRing(hole, a.StrokeColor, a.StrokeWidth)
		}
	}
}

func (v *MapView) strokeRing(ring []proj.GeoPoint, col color.NRGBA, width float64) {
	if len(ring) < 2 {
		return
	}
	c := v.frame
	for i, p := range ring {
		x, y := v.geoToViewF(p)
		if i == 0 {
			c.MoveTo(x, y)
		} else {
			c.LineTo(x, y)
		}
	}
	c.ClosePath()
	c.SetColor(col)
	c.SetLineWidth(width)
	c.Stroke()
}

func (v *MapView) drawMarks(vr image.Rectangle) {
	if v.Marks.Count() == 0 || vr.Empty() {
		return
	}
	region := proj.MapToGeoRect(v.zoom, vr)
	for i := v.Marks.FindIn(region, -1); i >= 0; i = v.Marks.FindIn(region, i) {
		m := v.Marks.Get(i)
		if !m.Visible || !v.Layers.Visible(m.Layer) {
			continue
		}
		at := v.GeoToView(m.Position)
		if v.OnDrawMark != nil && v.OnDrawMark(v.frame, at, m) {
			continue
		}
		v.drawDefaultMark(at, m)
	}
}

func (v *MapView) drawDefaultMark(at image.Point, m *overlay.MapMark) {
	style := m.EffectiveStyle(v.Marks.DefaultStyle)
	x, y := float64(at.X), float64(at.Y)
	r := float64(style.GlyphSize) / 2
	c := v.frame

	switch style.Glyph {
	case overlay.GlyphSquare:
		c.DrawRectangle(x-r, y-r, 2*r, 2*r)
	case overlay.GlyphTriangle:
		c.DrawRegularPolygon(3, x, y, r, -math.Pi/2)
	default:
		c.DrawCircle(x, y, r)
	}
	c.SetColor(style.FillColor)
	c.FillPreserve()
	c.SetColor(style.StrokeColor)
	c.SetLineWidth(1.5)
	c.Stroke()

	if m.Selected {
		c.DrawCircle(x, y, r+3)
		c.SetColor(markSelection)
		c.SetLineWidth(1)
		c.SetDash(3, 2)
		c.Stroke()
		c.ClearDash()
	}

	if style.ShowCaption && m.Caption != "" {
		v.drawCaption(x, y, r, m.Caption, style)
	}
}

func (v *MapView) drawCaption(x, y, r float64, caption string, style overlay.MarkStyle) {
	c := v.frame
	c.SetFont(face(style.Font.Size, style.Font.Bold))
	cx := x + r + 4
	if style.CaptionBackground.A > 0 {
		w, h := c.MeasureString(caption)
		c.SetColor(style.CaptionBackground)
		c.DrawRectangle(cx-2, y-h/2-1, w+4, h+2)
		c.Fill()
	}
	c.SetColor(style.Font.Color)
	c.DrawStringAnchored(caption, cx, y, 0, 0.5)
}

func (v *MapView) drawSelection() {
	if !v.selecting || v.selRect.Dx() < 1 || v.selRect.Dy() < 1 {
		return
	}
	c := v.frame
	r := v.selRect
	c.SetColor(selectionFill)
	c.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	c.Fill()
	c.SetColor(selectionBorder)
	c.SetLineWidth(1)
	c.SetDash(4, 3)
	c.DrawRectangle(float64(r.Min.X)+0.5, float64(r.Min.Y)+0.5, float64(r.Dx())-1, float64(r.Dy())-1)
	c.Stroke()
	c.ClearDash()
}
