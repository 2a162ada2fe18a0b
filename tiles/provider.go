// Package tiles turns tile addresses into tile images: an HTTP client for
// slippy-map tile servers, disk and memory caches to put in front of it,
// and an asynchronous Source that feeds a single-threaded viewport without
// blocking it.
package tiles

import (
	"fmt"
	"image"
	"net/http"
	"strconv"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/littleearth/osmmap/proj"
)

// Provider resolves one tile address to its image. Implementations may
// block; the viewport never calls a Provider directly, only a Source's
// workers do.
type Provider interface {
	GetTile(tile proj.Tile) (image.Image, error)
}

// URLTemplate builds tile URLs from a server prefix and a substitution
// pattern. An empty Pattern means the conventional "{zoom}/{x}/{y}.png".
// Recognized placeholders are {zoom} (or {z}), {x} and {y}.
type URLTemplate struct {
	Prefix  string
	Pattern string
	Postfix string
}

// DefaultPattern is used when a template leaves Pattern empty.
const DefaultPattern = "{zoom}/{x}/{y}.png"

// URL renders the template for one tile.
func (t URLTemplate) URL(tile proj.Tile) string {
	pattern := t.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	r := strings.NewReplacer(
		"{zoom}", strconv.Itoa(tile.Zoom),
		"{z}", strconv.Itoa(tile.Zoom),
		"{x}", strconv.Itoa(tile.X),
		"{y}", strconv.Itoa(tile.Y),
	)
	return t.Prefix + r.Replace(pattern) + t.Postfix
}

// OSMTemplate returns a template for the public OpenStreetMap tile server.
// Heavy use requires your own server; see the OSM tile usage policy.
func OSMTemplate() URLTemplate {
	return URLTemplate{Prefix: "https://tile.openstreetmap.org/"}
}

// defaultUserAgent identifies the library to tile servers that reject
// anonymous clients.
const defaultUserAgent = "osmmap/1.0 (+https://github.com/littleearth/osmmap)"

// HTTPProvider fetches tiles from a web tile server.
type HTTPProvider struct {
	Template  URLTemplate
	UserAgent string
	Client    *http.Client
}

// NewHTTPProvider returns a provider with a 15 second request timeout and
// the library's default user agent.
func NewHTTPProvider(template URLTemplate) *HTTPProvider {
	return &HTTPProvider{
		Template:  template,
		UserAgent: defaultUserAgent,
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// GetTile downloads and decodes one tile.
func (p *HTTPProvider) GetTile(tile proj.Tile) (image.Image, error) {
	if !tile.Valid() {
		return nil, fmt.Errorf("tile %v out of range", tile)
	}

	url := p.Template.URL(tile)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s failed: %w", url, err)
	}
	req.Header.Set("User-Agent", p.UserAgent)

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch tile %s: %s", url, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s failed: %w", url, err)
	}

	logger().Debug("tile fetched", "tile", tile.String(), "url", url)
	return img, nil
}
