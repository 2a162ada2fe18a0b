package mapview

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// The view draws its captions and labels with the embedded Go fonts, so
// rendering works without any font files on disk. Faces are cached per
// size; a map view uses only a handful.

type faceKey struct {
	size float64
	bold bool
}

var (
	fontOnce      sync.Once
	regularSource *text.FontSource
	boldSource    *text.FontSource

	faceMu    sync.Mutex
	faceCache = map[faceKey]text.Face{}
)

func initFonts() {
	var err error
	regularSource, err = text.NewFontSource(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("mapview: parsing embedded regular font: %v", err))
	}
	boldSource, err = text.NewFontSource(gobold.TTF)
	if err != nil {
		panic(fmt.Sprintf("mapview: parsing embedded bold font: %v", err))
	}
}

func face(size float64, bold bool) text.Face {
	fontOnce.Do(initFonts)
	key := faceKey{size: size, bold: bold}

	faceMu.Lock()
	defer faceMu.Unlock()
	if f, ok := faceCache[key]; ok {
		return f
	}
	src := regularSource
	if bold {
		src = boldSource
	}
	f := src.Face(size)
	faceCache[key] = f
	return f
}
