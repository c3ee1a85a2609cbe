package render

import (
	"fmt"
	"image"
	"sort"
	"sync"
	"time"

	"github.com/jvchiappini/motioner"
	"github.com/jvchiappini/motioner/cache"
	"github.com/jvchiappini/motioner/dispatch"
	"github.com/jvchiappini/motioner/internal/parallel"
	"github.com/jvchiappini/motioner/spatial"
)

// GlyphAtlas resolves a text string at a given size to a UV rectangle in a
// shared atlas page. A lookup miss means "no override": the element's quad
// is dispatched with a zero UV rectangle and draws as a placeholder.
type GlyphAtlas interface {
	Lookup(text string, size float32) (uv [4]float32, ok bool)
	Page() *image.RGBA
}

// Frame is one rendered frame: the evaluated records (indexed identically
// to the scene's element list) and the composed pixels, tight row-major
// RGBA8, unpremultiplied.
type Frame struct {
	Width, Height int
	Pixels        []byte
	Records       []ShapeRecord
}

// Renderer drives frames end to end: dispatch, evaluation on the active
// target, tile rasterization through the tile cache, and readback.
//
// A Renderer is owned by one logical caller. RenderFrame serializes
// internally so the export path can fan out encoding work.
type Renderer struct {
	mu sync.Mutex

	scene      *motioner.Scene
	dispatcher *dispatch.Dispatcher
	target     Target
	ownTarget  bool
	atlas      GlyphAtlas

	pool      *parallel.WorkerPool
	grid      *parallel.TileGrid
	dirty     *parallel.DirtyRegion
	tileCache *cache.TileCache
	shapes    *spatial.Grid

	vw, vh     int
	fps        float64
	background [4]uint8
	readback   Readback
	staging    []byte

	// lastRecords backs HitTest between frames.
	lastRecords []ShapeRecord
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	vw, vh          int
	fps             float64
	target          Target
	atlas           GlyphAtlas
	background      [4]uint8
	workers         int
	tileCapacity    int
	readbackTimeout time.Duration
}

// WithViewport sets the output size in pixels. Default 640x360.
func WithViewport(w, h int) Option {
	return func(c *config) { c.vw, c.vh = w, h }
}

// WithFPS sets the content frame rate. Default 30.
func WithFPS(fps float64) Option {
	return func(c *config) { c.fps = fps }
}

// WithTarget pins an execution target instead of the registered one. The
// renderer does not close a target it was given.
func WithTarget(t Target) Option {
	return func(c *config) { c.target = t }
}

// WithAtlas attaches a glyph atlas for text elements.
func WithAtlas(a GlyphAtlas) Option {
	return func(c *config) { c.atlas = a }
}

// WithBackground sets the sRGB clear color. Default transparent.
func WithBackground(rgba [4]uint8) Option {
	return func(c *config) { c.background = rgba }
}

// WithWorkers sets the rasterization worker count. Defaults to the
// physical core count.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithTileCacheCapacity bounds the tile cache entry count.
func WithTileCacheCapacity(n int) Option {
	return func(c *config) { c.tileCapacity = n }
}

// WithReadbackTimeout bounds the per-frame pixel wait. Default 5s.
func WithReadbackTimeout(d time.Duration) Option {
	return func(c *config) { c.readbackTimeout = d }
}

// NewRenderer creates a renderer over the scene.
func NewRenderer(scene *motioner.Scene, opts ...Option) (*Renderer, error) {
	cfg := config{vw: 640, vh: 360, fps: 30}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.vw <= 0 || cfg.vh <= 0 {
		return nil, fmt.Errorf("render: viewport %dx%d must be positive", cfg.vw, cfg.vh)
	}

	d, err := dispatch.NewDispatcher(cfg.fps)
	if err != nil {
		return nil, err
	}

	target := cfg.target
	ownTarget := false
	if target == nil {
		target = ActiveTarget()
		ownTarget = true
	}

	grid := parallel.NewTileGrid(cfg.vw, cfg.vh)
	dirty := parallel.NewDirtyRegion(grid.TilesX(), grid.TilesY())
	dirty.MarkAll()

	return &Renderer{
		scene:      scene,
		dispatcher: d,
		target:     target,
		ownTarget:  ownTarget,
		atlas:      cfg.atlas,
		pool:       parallel.NewWorkerPool(cfg.workers),
		grid:       grid,
		dirty:      dirty,
		tileCache:  cache.NewTileCache(cfg.tileCapacity),
		shapes:     spatial.NewGrid(cfg.vw, cfg.vh, parallel.TileSize),
		vw:         cfg.vw,
		vh:         cfg.vh,
		fps:        cfg.fps,
		background: cfg.background,
		readback:   Readback{Timeout: cfg.readbackTimeout},
	}, nil
}

// Close releases the renderer's resources. A target supplied via
// WithTarget stays open; its owner closes it.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pool.Close()
	r.grid.Close()
	if r.ownTarget {
		r.target.Close()
	}
}

// Target returns the execution target in use.
func (r *Renderer) Target() Target { return r.target }

// CacheStats returns the tile cache counters.
func (r *Renderer) CacheStats() cache.Stats { return r.tileCache.Stats() }

// RenderFrame renders one frame: prepare the flattened buffers (re-flatten
// only if the scene version moved), evaluate on the target, overlay the
// discrete tracks, rasterize changed tiles, and read the pixels back.
func (r *Renderer) RenderFrame(frame int) (*Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	flattened := r.dispatcher.Prepare(r.scene, frame, r.vw, r.vh)
	overridden := r.applyTextOverrides(frame)
	if flattened || overridden {
		r.dirty.MarkAll()
	}

	enc := r.dispatcher.Encoding()
	records, err := r.target.Evaluate(enc, r.dispatcher.Uniforms())
	if err != nil {
		// The flatten was consumed without output; force it to re-run so
		// a retry never reuses buffers the failed target may have touched.
		r.dispatcher.Invalidate()
		return nil, fmt.Errorf("render: evaluate frame %d on %s: %w", frame, r.target.Name(), err)
	}

	r.overlayDiscrete(records, frame)
	r.rebuildSpatial(records)
	r.lastRecords = records

	pixels, err := r.rasterize(records, enc, frame)
	if err != nil {
		r.dispatcher.Invalidate()
		return nil, err
	}

	return &Frame{
		Width:   r.vw,
		Height:  r.vh,
		Pixels:  pixels,
		Records: records,
	}, nil
}

// applyTextOverrides queries the atlas for every text element's held
// string and merges the resulting UV rectangles into the descriptors.
// Reports whether any descriptor changed.
func (r *Renderer) applyTextOverrides(frame int) bool {
	if r.atlas == nil {
		return false
	}
	changed := false
	for i, el := range r.scene.Elements() {
		if el.Kind != motioner.ShapeText {
			continue
		}
		value, ok := el.Value.HoldAt(frame)
		if !ok || value == "" {
			continue
		}
		size, ok := el.Size.HoldAt(frame)
		if !ok || size <= 0 {
			continue
		}
		// The size channel is normalized; the atlas works in pixels.
		uv, ok := r.atlas.Lookup(value, size*float32(r.vh))
		if !ok {
			// Miss: leave the zero rect, the quad draws as placeholder.
			continue
		}
		desc := r.dispatcher.Encoding().Descriptors
		if i < len(desc) && (desc[i].UV0 != [2]float32{uv[0], uv[1]} || desc[i].UV1 != [2]float32{uv[2], uv[3]}) {
			r.dispatcher.SetUVOverride(i, uv)
			changed = true
		}
	}
	return changed
}

// overlayDiscrete hold-samples the tracks that never enter the flattened
// buffers (visibility, z order) onto the evaluated records.
func (r *Renderer) overlayDiscrete(records []ShapeRecord, frame int) {
	for i, el := range r.scene.Elements() {
		if i >= len(records) {
			break
		}
		if visible, ok := el.Visible.HoldAt(frame); ok {
			records[i].Visible = visible
		}
		if z, ok := el.ZIndex.HoldAt(frame); ok {
			records[i].Z = z
		}
	}
}

// rebuildSpatial re-buckets the drawable records. Rebuilt every frame;
// bounding boxes move constantly during playback.
func (r *Renderer) rebuildSpatial(records []ShapeRecord) {
	r.shapes.Clear()
	for i := range records {
		rec := &records[i]
		if !rec.Alive || !rec.Visible {
			continue
		}
		r.shapes.Insert(i, recordBBox(rec))
	}
}

func recordBBox(rec *ShapeRecord) spatial.BBox {
	switch rec.Kind {
	case KindRect:
		return spatial.FromRect(rec.X, rec.Y, rec.W, rec.H)
	case KindText:
		w, h := textQuadSize(rec)
		return spatial.FromRect(rec.X, rec.Y, w, h)
	default:
		return spatial.FromCircle(rec.X, rec.Y, rec.Radius)
	}
}

// rasterize redraws the tiles that miss the cache or were marked dirty,
// composes all tiles into the padded staging buffer, and reads it back.
func (r *Renderer) rasterize(records []ShapeRecord, enc *dispatch.Encoding, frame int) ([]byte, error) {
	hash := tileContentHash(r.scene.ContentHash(), enc.Hash(), frame, r.vw, r.vh)

	dirtySet := make(map[[2]int]bool)
	for _, t := range r.dirty.GetAndClear() {
		dirtySet[t] = true
	}

	var atlasPage *image.RGBA
	if r.atlas != nil {
		atlasPage = r.atlas.Page()
	}

	type redraw struct {
		tile       *parallel.Tile
		candidates []int
	}
	var redraws []redraw
	cached := make(map[[2]int][]byte)

	r.grid.ForEach(func(t *parallel.Tile) {
		key := [2]int{t.X, t.Y}
		if !dirtySet[key] {
			if data, ok := r.tileCache.Get(t.X, t.Y, hash); ok {
				cached[key] = data
				return
			}
		}
		redraws = append(redraws, redraw{tile: t, candidates: r.drawOrder(records, t.X, t.Y)})
	})

	jobs := make([]func(), len(redraws))
	for i := range redraws {
		rd := redraws[i]
		jobs[i] = func() {
			rasterizeTile(rd.tile, records, rd.candidates, r.vw, r.vh, r.background, atlasPage)
		}
	}
	r.pool.ExecuteAll(jobs)

	// Cache writes stay on the renderer goroutine; the cache is not
	// concurrent-safe.
	for _, rd := range redraws {
		pixels := make([]byte, len(rd.tile.Data))
		copy(pixels, rd.tile.Data)
		r.tileCache.Put(rd.tile.X, rd.tile.Y, hash, pixels)
	}

	if need := StagingSize(r.vw, r.vh); len(r.staging) != need {
		r.staging = make([]byte, need)
	}
	r.grid.ForEach(func(t *parallel.Tile) {
		data := t.Data
		if c, ok := cached[[2]int{t.X, t.Y}]; ok {
			data = c
		}
		r.composeTile(t, data)
	})

	staging := r.staging
	return r.readback.Wait(func() ([]byte, error) { return staging, nil }, r.vw, r.vh)
}

// drawOrder returns the tile's candidate indices sorted by z then element
// index, the compositing order.
func (r *Renderer) drawOrder(records []ShapeRecord, tx, ty int) []int {
	bucket := r.shapes.QueryTile(tx, ty)
	if len(bucket) == 0 {
		return nil
	}
	order := make([]int, len(bucket))
	copy(order, bucket)
	sort.SliceStable(order, func(a, b int) bool {
		return records[order[a]].Z < records[order[b]].Z
	})
	return order
}

// composeTile copies one tile's rows into the padded staging buffer.
func (r *Renderer) composeTile(t *parallel.Tile, data []byte) {
	px, py, w, h := t.Bounds()
	stride := AlignedRowBytes(r.vw)
	for row := 0; row < h; row++ {
		dst := (py+row)*stride + px*4
		src := row * w * 4
		copy(r.staging[dst:dst+w*4], data[src:src+w*4])
	}
}

// HitTest returns the indices of elements containing the normalized point,
// topmost first, based on the most recently rendered frame.
func (r *Renderer) HitTest(x, y float32) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var hits []int
	for _, idx := range r.shapes.Query(x, y) {
		if recordContains(&r.lastRecords[idx], x, y) {
			hits = append(hits, idx)
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		ra, rb := &r.lastRecords[hits[a]], &r.lastRecords[hits[b]]
		if ra.Z != rb.Z {
			return ra.Z > rb.Z
		}
		return hits[a] > hits[b]
	})
	return hits
}

// recordContains is the exact containment test run on spatial-grid
// candidates.
func recordContains(rec *ShapeRecord, x, y float32) bool {
	switch rec.Kind {
	case KindRect:
		dx, dy := x-rec.X, y-rec.Y
		return dx >= -rec.W/2 && dx <= rec.W/2 && dy >= -rec.H/2 && dy <= rec.H/2
	case KindText:
		w, h := textQuadSize(rec)
		dx, dy := x-rec.X, y-rec.Y
		return dx >= -w/2 && dx <= w/2 && dy >= -h/2 && dy <= h/2
	default:
		dx, dy := x-rec.X, y-rec.Y
		return dx*dx+dy*dy <= rec.Radius*rec.Radius
	}
}

// tileContentHash mixes everything a tile's pixels depend on into one key
// component: authored content, flattened buffers (UV overrides included),
// frame, and viewport.
func tileContentHash(contentHash, encHash uint64, frame, vw, vh int) uint64 {
	const (
		offset uint64 = 14695981039346656037
		prime  uint64 = 1099511628211
	)
	h := offset
	for _, v := range [5]uint64{contentHash, encHash, uint64(uint32(frame)), uint64(uint32(vw)), uint64(uint32(vh))} {
		h ^= v
		h *= prime
	}
	return h
}
