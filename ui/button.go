package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	_ Component = (*Button)(nil)
	_ Component = (*Toggle)(nil)
)

// Button fires a callback when clicked.
type Button struct {
	width, height float64
	label         string
	onClick       func()

	isHovered bool
	isPressed bool
}

func NewButton(label string, onClick func()) *Button {
	return &Button{
		width:   140,
		height:  24,
		label:   label,
		onClick: onClick,
	}
}

func (b *Button) Size() (float64, float64) { return b.width, b.height }

func (b *Button) Draw(screen *ebiten.Image, x, y float64) {
	var bgColor color.Color
	if b.isPressed {
		bgColor = color.RGBA{100, 100, 100, 255}
	} else if b.isHovered {
		bgColor = color.RGBA{180, 180, 180, 255}
	} else {
		bgColor = color.RGBA{150, 150, 150, 255}
	}

	vector.DrawFilledRect(screen, float32(x), float32(y),
		float32(b.width), float32(b.height), bgColor, true)
	vector.StrokeRect(screen, float32(x), float32(y),
		float32(b.width), float32(b.height), 1, color.Black, true)
	ebitenutil.DebugPrintAt(screen, b.label, int(x)+6, int(y)+4)
}

func (b *Button) HandleInput(x, y float64, pressed bool) bool {
	if x >= 0 && x <= b.width && y >= 0 && y <= b.height {
		b.isHovered = true
		if pressed {
			b.isPressed = true
		} else if b.isPressed {
			// Click fires on release inside the button.
			b.isPressed = false
			if b.onClick != nil {
				b.onClick()
			}
		}
		return true
	}
	b.isHovered = false
	b.isPressed = false
	return false
}

// Toggle is a labeled checkbox. The callback receives the new state.
type Toggle struct {
	width, height float64
	label         string
	checked       bool
	onChange      func(bool)

	isHovered bool
	isPressed bool
}

func NewToggle(label string, checked bool, onChange func(bool)) *Toggle {
	return &Toggle{
		width:    140,
		height:   20,
		label:    label,
		checked:  checked,
		onChange: onChange,
	}
}

func (t *Toggle) Checked() bool { return t.checked }

func (t *Toggle) Size() (float64, float64) { return t.width, t.height }

func (t *Toggle) Draw(screen *ebiten.Image, x, y float64) {
	boxSize := 12.0
	boxY := y + (t.height-boxSize)/2

	boxColor := color.RGBA{150, 150, 150, 255}
	if t.isHovered {
		boxColor = color.RGBA{180, 180, 180, 255}
	}
	vector.DrawFilledRect(screen, float32(x), float32(boxY),
		float32(boxSize), float32(boxSize), boxColor, true)
	vector.StrokeRect(screen, float32(x), float32(boxY),
		float32(boxSize), float32(boxSize), 1, color.Black, true)
	if t.checked {
		vector.DrawFilledRect(screen, float32(x)+3, float32(boxY)+3,
			float32(boxSize)-6, float32(boxSize)-6, color.RGBA{40, 40, 40, 255}, true)
	}
	ebitenutil.DebugPrintAt(screen, t.label, int(x+boxSize)+6, int(y)+2)
}

func (t *Toggle) HandleInput(x, y float64, pressed bool) bool {
	if x >= 0 && x <= t.width && y >= 0 && y <= t.height {
		t.isHovered = true
		if pressed {
			t.isPressed = true
		} else if t.isPressed {
			t.isPressed = false
			t.checked = !t.checked
			if t.onChange != nil {
				t.onChange(t.checked)
			}
		}
		return true
	}
	t.isHovered = false
	t.isPressed = false
	return false
}
