package ui

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Controller manages all UI panels.
type Controller struct {
	panels []*Panel
}

func NewController() *Controller {
	return &Controller{}
}

// AddPanel adds a panel to the UI.
func (c *Controller) AddPanel(panel *Panel) {
	c.panels = append(c.panels, panel)
}

// Update updates all panels.
func (c *Controller) Update() error {
	for _, panel := range c.panels {
		if err := panel.Update(); err != nil {
			return err
		}
	}
	return nil
}

// Draw draws all panels.
func (c *Controller) Draw(screen *ebiten.Image) {
	for _, panel := range c.panels {
		panel.Draw(screen)
	}
}

// UpdateWindowSize propagates the window size to all panels.
func (c *Controller) UpdateWindowSize(width, height int) {
	for _, panel := range c.panels {
		panel.UpdateWindowSize(width, height)
	}
}

// ShowDebugInfo draws frame timing in the top-left corner.
func (c *Controller) ShowDebugInfo(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.2f TPS: %.2f", ebiten.ActualFPS(), ebiten.ActualTPS()))
}

// InteractingWithUI reports whether any panel owns the pointer, so map
// input can be suppressed while the user works the UI.
func (c *Controller) InteractingWithUI() bool {
	for _, panel := range c.panels {
		if panel.interacting() {
			return true
		}
	}
	return false
}
