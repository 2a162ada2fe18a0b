package main

import (
	"fmt"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/littleearth/osmmap/overlay"
)

// panSpeed in pixels per frame
const panSpeed = 50

func (g *App) handleKeyboard() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debugMode = !g.debugMode
	}

	// Handle keyboard zooming
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || // = key
		inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) { // numpad +
		g.zoomAtCenter(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || // - key
		inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) { // numpad -
		g.zoomAtCenter(-1)
	}

	// Handle keyboard panning
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		g.view.ScrollBy(-panSpeed, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		g.view.ScrollBy(panSpeed, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		g.view.ScrollBy(0, -panSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		g.view.ScrollBy(0, panSpeed)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) {
		g.deleteSelectedMarks()
	}
}

func (g *App) deleteSelectedMarks() {
	marks := g.view.Marks
	marks.BeginUpdate()
	for i := marks.Count() - 1; i >= 0; i-- {
		if marks.Get(i).Selected {
			marks.Remove(i)
		}
	}
	marks.EndUpdate()
}

func (g *App) handleMouse() {
	// Handle mouse wheel zooming with time-based throttling
	currentTime := float64(time.Now().UnixNano()) / 1e9 // Current time in seconds
	_, wheelY := ebiten.Wheel()
	if wheelY != 0 && (currentTime-g.lastZoomTime) > 0.1 { // 100ms between zooms
		x, y := ebiten.CursorPosition()
		if wheelY > 0 {
			g.view.SetZoomAt(g.view.Zoom()+1, image.Pt(x, y))
		} else {
			g.view.SetZoomAt(g.view.Zoom()-1, image.Pt(x, y))
		}
		g.lastZoomTime = currentTime
	}

	// Left button: drag pans the map, shift-drag rubber-bands a selection
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
			g.view.BeginSelection(image.Pt(x, y))
		} else {
			g.isDragging = true
			g.lastMouseX, g.lastMouseY = x, y
		}
	} else if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.isDragging = false
		g.view.EndSelection()
	}

	if g.view.Selecting() {
		x, y := ebiten.CursorPosition()
		g.view.UpdateSelection(image.Pt(x, y))
	} else if g.isDragging {
		// Get current mouse position
		currentX, currentY := ebiten.CursorPosition()

		// Calculate the difference from last position
		dx := currentX - g.lastMouseX
		dy := currentY - g.lastMouseY

		// The map content follows the cursor, so the viewport scrolls
		// the opposite way.
		if dx != 0 || dy != 0 {
			g.view.ScrollBy(-dx, -dy)
		}

		// Update last position
		g.lastMouseX = currentX
		g.lastMouseY = currentY
	}

	// Right click drops a numbered mark under the cursor
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		x, y := ebiten.CursorPosition()
		g.markCount++
		m := overlay.NewMapMark(g.view.ViewToGeo(image.Pt(x, y)), fmt.Sprintf("Mark %d", g.markCount))
		m.Layer = layerMarks
		g.view.Marks.Add(m)
	}
}
