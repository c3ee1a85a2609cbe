// Package spatial provides a spatial hash grid for approximate hit-testing
// over normalized scene coordinates.
//
// The grid buckets shape indices into fixed-size pixel tiles. Queries return
// a superset of true hits: every index whose bounding box overlaps the tile
// containing the query point. Callers must still perform exact containment
// tests on the candidates. The grid has no removal API beyond Clear; bounding
// boxes move every frame during animation, so it is rebuilt per frame rather
// than incrementally maintained.
package spatial

// BBox is an axis-aligned bounding box in normalized scene space (0..1).
type BBox struct {
	MinX, MinY float32
	MaxX, MaxY float32
}

// FromCircle returns the bounding box of a circle given by center and
// radius in normalized space, clamped to [0,1].
func FromCircle(cx, cy, r float32) BBox {
	return BBox{
		MinX: clamp01(cx - r),
		MinY: clamp01(cy - r),
		MaxX: clamp01(cx + r),
		MaxY: clamp01(cy + r),
	}
}

// FromRect returns the bounding box of a center-positioned rectangle in
// normalized space, clamped to [0,1].
func FromRect(cx, cy, w, h float32) BBox {
	return BBox{
		MinX: clamp01(cx - w/2),
		MinY: clamp01(cy - h/2),
		MaxX: clamp01(cx + w/2),
		MaxY: clamp01(cy + h/2),
	}
}

// Contains reports whether the normalized point (x, y) lies inside the box.
func (b BBox) Contains(x, y float32) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Grid is a spatial hash over fixed-size pixel tiles.
//
// Normalized coordinates are scaled by the viewport size and bucketed by
// tile. Grid is not safe for concurrent mutation; it is owned by the
// renderer and rebuilt on its thread.
type Grid struct {
	tileSize int
	width    int
	height   int
	buckets  map[[2]int][]int
}

// NewGrid creates a grid over a width x height pixel viewport with the given
// tile size. Non-positive tile sizes fall back to 64.
func NewGrid(width, height, tileSize int) *Grid {
	if tileSize <= 0 {
		tileSize = 64
	}
	return &Grid{
		tileSize: tileSize,
		width:    width,
		height:   height,
		buckets:  make(map[[2]int][]int),
	}
}

// Insert adds index to every tile the bounding box overlaps.
func (g *Grid) Insert(index int, box BBox) {
	x0 := int(box.MinX * float32(g.width) / float32(g.tileSize))
	y0 := int(box.MinY * float32(g.height) / float32(g.tileSize))
	x1 := ceilDiv(box.MaxX*float32(g.width), float32(g.tileSize))
	y1 := ceilDiv(box.MaxY*float32(g.height), float32(g.tileSize))
	for ty := y0; ty <= y1; ty++ {
		for tx := x0; tx <= x1; tx++ {
			key := [2]int{tx, ty}
			g.buckets[key] = append(g.buckets[key], index)
		}
	}
}

// Query returns the candidate indices whose tiles contain the normalized
// point (x, y). The result is a superset of exact hits and shares storage
// with the grid; callers must not mutate it.
func (g *Grid) Query(x, y float32) []int {
	tx := int(x * float32(g.width) / float32(g.tileSize))
	ty := int(y * float32(g.height) / float32(g.tileSize))
	return g.buckets[[2]int{tx, ty}]
}

// QueryTile returns the candidates bucketed in tile (tx, ty) directly.
// Used by the tile rasterizer, which already iterates in tile space.
func (g *Grid) QueryTile(tx, ty int) []int {
	return g.buckets[[2]int{tx, ty}]
}

// Clear removes all entries, keeping bucket storage for reuse.
func (g *Grid) Clear() {
	for k := range g.buckets {
		delete(g.buckets, k)
	}
}

// Len returns the number of occupied tiles.
func (g *Grid) Len() int { return len(g.buckets) }

// TileSize returns the tile size in pixels.
func (g *Grid) TileSize() int { return g.tileSize }

func ceilDiv(a, b float32) int {
	v := a / b
	i := int(v)
	if float32(i) < v {
		i++
	}
	return i
}
