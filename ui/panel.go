package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleBarHeight = 20.0
	contentPad     = 8.0
	componentGap   = 6.0
	panelAlpha     = 200
)

// Panel is a draggable titled box that stacks its components vertically.
// Its height follows the content.
type Panel struct {
	X, Y  float64
	Width float64
	Title string

	components []Component
	height     float64

	isDragging                bool
	dragStartX, dragStartY    float64
	mouseButtonPreviouslyDown bool

	windowWidth  int
	windowHeight int
}

func NewPanel(x, y, width float64, title string) *Panel {
	return &Panel{
		X:            x,
		Y:            y,
		Width:        width,
		Title:        title,
		height:       titleBarHeight + contentPad,
		windowWidth:  800,
		windowHeight: 600,
	}
}

// Add appends a component to the bottom of the panel.
func (p *Panel) Add(c Component) {
	p.components = append(p.components, c)
	_, h := c.Size()
	p.height += h + componentGap
}

func (p *Panel) Height() float64 { return p.height }

// componentPos returns the absolute position of the i-th component.
func (p *Panel) componentPos(i int) (float64, float64) {
	y := p.Y + titleBarHeight + contentPad
	for j := 0; j < i; j++ {
		_, h := p.components[j].Size()
		y += h + componentGap
	}
	return p.X + contentPad, y
}

func (p *Panel) contains(x, y float64) bool {
	return x >= p.X && x <= p.X+p.Width && y >= p.Y && y <= p.Y+p.height
}

func (p *Panel) isInTitleBar(x, y float64) bool {
	return x >= p.X && x <= p.X+p.Width && y >= p.Y && y <= p.Y+titleBarHeight
}

func (p *Panel) updateCursor(x, y float64) {
	if p.isInTitleBar(x, y) {
		ebiten.SetCursorShape(ebiten.CursorShapeMove)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

func (p *Panel) Update() error {
	x, y := ebiten.CursorPosition()
	fx, fy := float64(x), float64(y)

	p.updateCursor(fx, fy)
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	if pressed {
		if !p.mouseButtonPreviouslyDown {
			p.mouseButtonPreviouslyDown = true
			if p.isInTitleBar(fx, fy) {
				p.isDragging = true
				p.dragStartX = fx - p.X
				p.dragStartY = fy - p.Y
			}
		}
		if p.isDragging {
			p.X = fx - p.dragStartX
			p.Y = fy - p.dragStartY
			p.clampToWindow()
		}
	} else {
		p.isDragging = false
		p.mouseButtonPreviouslyDown = false
	}

	if !p.isDragging {
		for i, c := range p.components {
			cx, cy := p.componentPos(i)
			c.HandleInput(fx-cx, fy-cy, pressed)
		}
	}
	return nil
}

// UpdateWindowSize tells the panel the window dimensions so dragging can
// keep it on screen.
func (p *Panel) UpdateWindowSize(width, height int) {
	p.windowWidth = width
	p.windowHeight = height
	p.clampToWindow()
}

func (p *Panel) clampToWindow() {
	if p.X+p.Width > float64(p.windowWidth) {
		p.X = float64(p.windowWidth) - p.Width
	}
	if p.Y+p.height > float64(p.windowHeight) {
		p.Y = float64(p.windowHeight) - p.height
	}
	if p.X < 0 {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = 0
	}
}

// interacting reports whether the panel currently owns the pointer.
func (p *Panel) interacting() bool {
	if p.isDragging {
		return true
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return p.contains(float64(x), float64(y))
	}
	return false
}

func (p *Panel) Draw(screen *ebiten.Image) {
	bgColor := color.RGBA{100, 100, 100, panelAlpha}
	titleColor := color.RGBA{60, 60, 60, panelAlpha}

	vector.DrawFilledRect(screen, float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.height), bgColor, true)
	vector.DrawFilledRect(screen, float32(p.X), float32(p.Y),
		float32(p.Width), float32(titleBarHeight), titleColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X)+6, int(p.Y)+2)

	for i, c := range p.components {
		cx, cy := p.componentPos(i)
		c.Draw(screen, cx, cy)
	}
}
