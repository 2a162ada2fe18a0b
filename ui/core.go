// Package ui provides the small immediate-mode widget set the demo uses
// for layer toggles and zoom buttons: draggable panels that stack
// components vertically and route pointer input to them.
package ui

import "github.com/hajimehoshi/ebiten/v2"

// Component is a widget owned by a Panel. Coordinates passed to
// HandleInput are local to the component; Draw receives the absolute
// screen position the panel assigned to it.
type Component interface {
	Draw(screen *ebiten.Image, x, y float64)
	HandleInput(x, y float64, pressed bool) bool
	Size() (width, height float64)
}
