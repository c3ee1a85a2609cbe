package text

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/jvchiappini/motioner"
)

// Rasterizer draws a string into the atlas region. dst is the full page;
// region is the reserved rectangle; metrics carries the shaped box the
// region was sized from.
type Rasterizer func(dst *image.RGBA, region image.Rectangle, text string, size float32, metrics Metrics)

// Atlas packs rendered strings into a single RGBA page and hands out their
// UV rectangles. Entries are keyed by string and size; the renderer asks
// once per text element per frame and the dispatcher merges hits into the
// descriptors.
//
// The mutex guards lookup and build only; it is never held across
// dispatch. A string that cannot be placed (page full, empty measure)
// reports a miss, which callers treat as "omit the override" — never an
// error.
type Atlas struct {
	mu        sync.Mutex
	page      *image.RGBA
	entries   map[measureKey][4]float32
	measurer  *Measurer
	rasterize Rasterizer

	// shelf packing state
	cursorX, cursorY, rowH int
}

// AtlasOption configures an Atlas.
type AtlasOption func(*Atlas)

// WithRasterizer replaces the placeholder glyph rasterizer.
func WithRasterizer(r Rasterizer) AtlasOption {
	return func(a *Atlas) { a.rasterize = r }
}

// NewAtlas creates an atlas with a pageSize x pageSize RGBA page.
// Non-positive sizes fall back to 1024. A nil measurer uses the default
// font.
func NewAtlas(pageSize int, measurer *Measurer, opts ...AtlasOption) *Atlas {
	if pageSize <= 0 {
		pageSize = 1024
	}
	if measurer == nil {
		measurer = NewMeasurer(nil)
	}
	a := &Atlas{
		page:      image.NewRGBA(image.Rect(0, 0, pageSize, pageSize)),
		entries:   make(map[measureKey][4]float32),
		measurer:  measurer,
		rasterize: blockRasterizer(measurer),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Lookup returns the UV rectangle [u0, v0, u1, v1] for the string at a
// pixel size, building the entry on first use. ok is false when the entry
// cannot be built.
func (a *Atlas) Lookup(text string, size float32) (uv [4]float32, ok bool) {
	if text == "" || size <= 0 {
		return uv, false
	}
	key := measureKey{text: text, size: size}

	a.mu.Lock()
	defer a.mu.Unlock()

	if uv, ok := a.entries[key]; ok {
		return uv, true
	}

	metrics := a.measurer.Measure(text, size)
	w := int(metrics.Advance + 0.5)
	h := int(metrics.Height() + 0.5)
	if w <= 0 || h <= 0 {
		return uv, false
	}

	region, placed := a.reserve(w+2, h+2) // 1px guard band against bleed
	if !placed {
		motioner.Logger().Warn("text: atlas page full", "text", text, "size", size)
		return uv, false
	}
	inner := image.Rect(region.Min.X+1, region.Min.Y+1, region.Max.X-1, region.Max.Y-1)

	draw.Draw(a.page, region, image.Transparent, image.Point{}, draw.Src)
	if a.rasterize != nil {
		a.rasterize(a.page, inner, text, size, metrics)
	}

	ps := float32(a.page.Bounds().Dx())
	uv = [4]float32{
		float32(inner.Min.X) / ps,
		float32(inner.Min.Y) / ps,
		float32(inner.Max.X) / ps,
		float32(inner.Max.Y) / ps,
	}
	a.entries[key] = uv
	return uv, true
}

// Page returns the atlas page. The renderer samples it during tile
// rasterization; builders must not race with that, which the per-frame
// override pass (lookups before evaluation) guarantees.
func (a *Atlas) Page() *image.RGBA { return a.page }

// Len returns the number of packed entries.
func (a *Atlas) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Clear drops all entries and resets the packing cursor. Existing UV
// rectangles handed to a dispatcher become stale; callers clear their
// overrides alongside.
func (a *Atlas) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = make(map[measureKey][4]float32)
	a.cursorX, a.cursorY, a.rowH = 0, 0, 0
	draw.Draw(a.page, a.page.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// reserve shelf-packs a w x h rectangle. Rows grow downward; a rectangle
// that fits neither the current row nor a fresh one reports failure.
func (a *Atlas) reserve(w, h int) (image.Rectangle, bool) {
	ps := a.page.Bounds().Dx()
	if w > ps {
		return image.Rectangle{}, false
	}
	if a.cursorX+w > ps {
		a.cursorY += a.rowH
		a.cursorX = 0
		a.rowH = 0
	}
	if a.cursorY+h > ps {
		return image.Rectangle{}, false
	}
	r := image.Rect(a.cursorX, a.cursorY, a.cursorX+w, a.cursorY+h)
	a.cursorX += w
	if h > a.rowH {
		a.rowH = h
	}
	return r, true
}

// blockRasterizer is the placeholder default: one filled block per shaped
// glyph box, full coverage. Hosts wanting real glyph outlines install
// their own Rasterizer.
func blockRasterizer(m *Measurer) Rasterizer {
	white := image.NewUniform(color.RGBA{255, 255, 255, 255})
	return func(dst *image.RGBA, region image.Rectangle, text string, size float32, metrics Metrics) {
		for _, g := range m.Glyphs(text, size) {
			// Inset each block slightly so glyph boundaries stay visible.
			x0 := region.Min.X + int(g.X)
			x1 := region.Min.X + int(g.X+g.Advance) - 1
			if x1 <= x0 {
				x1 = x0 + 1
			}
			block := image.Rect(x0, region.Min.Y, x1, region.Max.Y).Intersect(region)
			draw.Draw(dst, block, white, image.Point{}, draw.Src)
		}
	}
}
