package main

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gogpu/gg"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/joho/godotenv"

	"github.com/littleearth/osmmap/mapview"
	"github.com/littleearth/osmmap/overlay"
	"github.com/littleearth/osmmap/proj"
	"github.com/littleearth/osmmap/tiles"
	"github.com/littleearth/osmmap/ui"
)

// Initial view over the contiguous US.
const (
	initialLat  = 39.8333
	initialLon  = -98.5833
	initialZoom = 4
)

// Overlay layers used by the demo. Shapefile content loads onto the shape
// layer; interactively placed marks go on their own.
const (
	layerMarks  = 1
	layerShapes = 2
)

// App wires the map view, the tile source and the HUD into an ebiten game.
type App struct {
	view   *mapview.MapView
	source *tiles.Source
	ui     *ui.Controller

	texture   *ebiten.Image
	debugMode bool

	// Mouse panning state
	isDragging bool
	lastMouseX int
	lastMouseY int

	lastZoomTime float64

	// Touch state for multi-touch interactions
	lastTouchX map[ebiten.TouchID]float64
	lastTouchY map[ebiten.TouchID]float64

	markCount int
}

func (g *App) Update() error {
	if err := g.ui.Update(); err != nil {
		return err
	}

	// Only handle map interactions while the pointer is not on the UI.
	if !g.ui.InteractingWithUI() {
		g.handleKeyboard()
		g.handleMouse()
		g.handleTouchEvents()
	}

	// Redraw tiles fetched in the background since the last tick.
	g.source.Drain(g.view.RefreshTile)
	return nil
}

func (g *App) Draw(screen *ebiten.Image) {
	frame := g.view.Frame()
	if g.texture == nil ||
		g.texture.Bounds().Dx() != frame.Width() ||
		g.texture.Bounds().Dy() != frame.Height() {
		g.texture = ebiten.NewImage(frame.Width(), frame.Height())
	}
	g.texture.WritePixels(g.view.Pixels())
	screen.DrawImage(g.texture, nil)

	g.ui.Draw(screen)

	if g.debugMode {
		g.drawDebugOverlay(screen)
	}
}

func (g *App) drawDebugOverlay(screen *ebiten.Image) {
	redColor := color.RGBA{R: 255, A: 255}
	strokeWidth := float32(1.0)

	size := g.view.Size()
	centerX := float32(size.X / 2)
	centerY := float32(size.Y / 2)
	crosshairSize := float32(10.0)

	vector.StrokeLine(screen,
		centerX-crosshairSize, centerY,
		centerX+crosshairSize, centerY,
		strokeWidth, redColor, false)
	vector.StrokeLine(screen,
		centerX, centerY-crosshairSize,
		centerX, centerY+crosshairSize,
		strokeWidth, redColor, false)

	g.ui.ShowDebugInfo(screen)

	center := g.view.Center()
	stats := g.source.Stats()
	debugText := fmt.Sprintf("Lat: %.4f\nLon: %.4f\nZoom: %d\nCached tiles: %d (%.1f MiB)",
		center.Lat, center.Lon, g.view.Zoom(),
		stats.TileCount, float64(stats.UsedBytes)/(1<<20))
	ebitenutil.DebugPrintAt(screen, debugText, 0, 16)
}

func (g *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.view.SetSize(outsideWidth, outsideHeight)
	g.ui.UpdateWindowSize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// zoomAtCenter steps the zoom level keeping the view center in place, the
// behavior the zoom buttons and keyboard share.
func (g *App) zoomAtCenter(delta int) {
	size := g.view.Size()
	g.view.SetZoomAt(g.view.Zoom()+delta, image.Pt(size.X/2, size.Y/2))
}

func main() {
	// .env is optional; it can carry the tile server and cache settings
	// read below.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))
	slog.SetDefault(logger)
	if os.Getenv("OSMMAP_DEBUG") != "" {
		tiles.SetLogger(logger)
		mapview.SetLogger(logger)
	}

	provider := tiles.NewHTTPProvider(tileTemplate())
	if ua := os.Getenv("OSMMAP_USER_AGENT"); ua != "" {
		provider.UserAgent = ua
	}
	var tileProvider tiles.Provider = provider
	if dir := os.Getenv("OSMMAP_TILE_DIR"); dir != "" {
		tileProvider = tiles.NewDiskCache(dir, provider)
	}
	source := tiles.NewSource(tileProvider, tiles.SourceConfig{
		Workers: envInt("OSMMAP_WORKERS", 0),
	})
	defer source.Close()

	view := mapview.New(mapview.Config{
		Width:        800,
		Height:       600,
		Zoom:         initialZoom,
		Center:       proj.NewGeoPoint(initialLon, initialLat),
		Copyright:    "© OpenStreetMap contributors",
		ShowScaleBar: true,
	})
	view.OnDrawTile = func(dst *gg.Context, tile proj.Tile, topLeft image.Point) bool {
		img, ok := source.Peek(tile)
		if !ok {
			source.Request(tile)
			return false
		}
		dst.DrawImage(gg.ImageBufFromImage(img), float64(topLeft.X), float64(topLeft.Y))
		return true
	}
	view.OnSelectionBox = func(region proj.GeoRect) {
		marks := view.Marks
		marks.BeginUpdate()
		for i := 0; i < marks.Count(); i++ {
			marks.Get(i).Selected = false
		}
		for i := marks.FindIn(region, -1); i >= 0; i = marks.FindIn(region, i) {
			marks.Get(i).Selected = true
		}
		marks.EndUpdate()
	}
	view.Invalidate()

	if path := os.Getenv("OSMMAP_SHAPEFILE"); path != "" {
		loadShapefile(view, path)
	}

	uiController := ui.NewController()
	panel := ui.NewPanel(10, 10, 170, "Map Controls")
	panel.Add(ui.NewToggle("Mapmarks", true, func(on bool) {
		view.Layers.SetVisible(layerMarks, on)
	}))
	panel.Add(ui.NewToggle("Shapes", true, func(on bool) {
		view.Layers.SetVisible(layerShapes, on)
	}))
	uiController.AddPanel(panel)

	app := &App{
		view:         view,
		source:       source,
		ui:           uiController,
		lastZoomTime: float64(time.Now().UnixNano()) / 1e9,
	}
	panel.Add(ui.NewButton("Zoom in", func() { app.zoomAtCenter(1) }))
	panel.Add(ui.NewButton("Zoom out", func() { app.zoomAtCenter(-1) }))

	ebiten.SetWindowSize(800, 600)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("osmmap")
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(app); err != nil {
		slog.Error("shutting down", "error", err)
		os.Exit(1)
	}
}

// loadShapefile imports points, polylines and polygons onto the shape
// layer.
func loadShapefile(view *mapview.MapView, path string) {
	content, err := overlay.LoadShapefile(path, layerShapes)
	if err != nil {
		slog.Error("loading shapefile failed", "path", path, "error", err)
		return
	}
	view.Marks.BeginUpdate()
	for _, m := range content.Marks {
		view.Marks.Add(m)
	}
	view.Marks.EndUpdate()
	for _, t := range content.Tracks {
		view.Shapes.Add(t)
	}
	for _, a := range content.Areas {
		view.Shapes.Add(a)
	}
	if content.Skipped > 0 {
		slog.Warn("shapefile records skipped", "path", path, "count", content.Skipped)
	}
	slog.Info("shapefile loaded", "path", path,
		"marks", len(content.Marks), "tracks", len(content.Tracks), "areas", len(content.Areas))
}

// tileTemplate reads the tile server endpoint from the environment, with
// the public OSM server as fallback.
func tileTemplate() tiles.URLTemplate {
	t := tiles.OSMTemplate()
	if prefix := os.Getenv("OSMMAP_TILE_PREFIX"); prefix != "" {
		t.Prefix = prefix
	}
	if pattern := os.Getenv("OSMMAP_TILE_PATTERN"); pattern != "" {
		t.Pattern = pattern
	}
	if postfix := os.Getenv("OSMMAP_TILE_POSTFIX"); postfix != "" {
		t.Postfix = postfix
	}
	return t
}

func logLevel() slog.Level {
	if os.Getenv("OSMMAP_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring bad numeric env value", "name", name, "value", v)
		return def
	}
	return n
}
