package parallel

import "sync"

const (
	// TileSize is the tile edge length in pixels. 64 keeps a full RGBA
	// tile at 16KB, inside L1, and matches the renderer's cache keying.
	TileSize = 64

	// TileBytes is the byte size of a full RGBA tile.
	TileBytes = TileSize * TileSize * 4
)

// Tile is one independently renderable region of the canvas. Edge tiles
// are narrower or shorter when the canvas does not divide evenly.
type Tile struct {
	X      int // tile column
	Y      int // tile row
	Width  int
	Height int

	// Data is Width*Height*4 bytes of RGBA, row-major.
	Data []byte
}

// Reset zeroes the pixel data for reuse.
func (t *Tile) Reset() { clear(t.Data) }

// Bounds returns the tile's pixel rectangle in canvas space.
func (t *Tile) Bounds() (x, y, w, h int) {
	return t.X * TileSize, t.Y * TileSize, t.Width, t.Height
}

// Stride returns the row stride in bytes.
func (t *Tile) Stride() int { return t.Width * 4 }

// PixelOffset returns the byte offset of a tile-local pixel, or -1 when
// out of bounds.
func (t *Tile) PixelOffset(px, py int) int {
	if px < 0 || px >= t.Width || py < 0 || py >= t.Height {
		return -1
	}
	return (py*t.Width + px) * 4
}

// fullTiles recycles full-size tile buffers; edge tiles are rare enough
// to allocate exactly.
var fullTiles = sync.Pool{
	New: func() any {
		return &Tile{Width: TileSize, Height: TileSize, Data: make([]byte, TileBytes)}
	},
}

// GetTile returns a zeroed tile of the given dimensions.
func GetTile(width, height int) *Tile {
	if width <= 0 || height <= 0 {
		return nil
	}
	if width == TileSize && height == TileSize {
		t := fullTiles.Get().(*Tile)
		t.Reset()
		t.X, t.Y = 0, 0
		return t
	}
	return &Tile{Width: width, Height: height, Data: make([]byte, width*height*4)}
}

// PutTile returns a tile for reuse. Only full-size tiles are pooled.
func PutTile(t *Tile) {
	if t == nil || t.Width != TileSize || t.Height != TileSize {
		return
	}
	fullTiles.Put(t)
}

// TileGrid covers a canvas with tiles in a flat row-major slice. It is
// owned by the renderer goroutine and is not safe for concurrent use.
type TileGrid struct {
	tiles  []*Tile
	tilesX int
	tilesY int
	width  int
	height int
}

// NewTileGrid creates a grid covering width x height pixels.
func NewTileGrid(width, height int) *TileGrid {
	g := &TileGrid{}
	g.Resize(width, height)
	return g
}

// Resize re-covers the canvas at new dimensions, releasing the old tiles.
// A no-op when the size is unchanged.
func (g *TileGrid) Resize(width, height int) {
	if width == g.width && height == g.height && g.tiles != nil {
		return
	}
	g.release()
	if width <= 0 || height <= 0 {
		g.tilesX, g.tilesY, g.width, g.height = 0, 0, 0, 0
		return
	}

	g.tilesX = (width + TileSize - 1) / TileSize
	g.tilesY = (height + TileSize - 1) / TileSize
	g.width = width
	g.height = height
	g.tiles = make([]*Tile, g.tilesX*g.tilesY)

	for ty := range g.tilesY {
		for tx := range g.tilesX {
			w := min(TileSize, width-tx*TileSize)
			h := min(TileSize, height-ty*TileSize)
			t := GetTile(w, h)
			t.X, t.Y = tx, ty
			g.tiles[ty*g.tilesX+tx] = t
		}
	}
}

func (g *TileGrid) release() {
	for i, t := range g.tiles {
		PutTile(t)
		g.tiles[i] = nil
	}
	g.tiles = nil
}

// TileAt returns the tile at tile coordinates, or nil out of bounds.
func (g *TileGrid) TileAt(tx, ty int) *Tile {
	if tx < 0 || tx >= g.tilesX || ty < 0 || ty >= g.tilesY {
		return nil
	}
	return g.tiles[ty*g.tilesX+tx]
}

// TilesInRect returns the tiles intersecting a canvas-space rectangle.
func (g *TileGrid) TilesInRect(x, y, w, h int) []*Tile {
	if w <= 0 || h <= 0 {
		return nil
	}
	x1 := max(x, 0)
	y1 := max(y, 0)
	x2 := min(x+w, g.width)
	y2 := min(y+h, g.height)
	if x1 >= x2 || y1 >= y2 {
		return nil
	}

	tx1, ty1 := x1/TileSize, y1/TileSize
	tx2, ty2 := (x2-1)/TileSize, (y2-1)/TileSize
	result := make([]*Tile, 0, (tx2-tx1+1)*(ty2-ty1+1))
	for ty := ty1; ty <= ty2; ty++ {
		for tx := tx1; tx <= tx2; tx++ {
			result = append(result, g.tiles[ty*g.tilesX+tx])
		}
	}
	return result
}

// ForEach visits every tile in row-major order.
func (g *TileGrid) ForEach(fn func(t *Tile)) {
	for _, t := range g.tiles {
		fn(t)
	}
}

// TilesX returns the horizontal tile count.
func (g *TileGrid) TilesX() int { return g.tilesX }

// TilesY returns the vertical tile count.
func (g *TileGrid) TilesY() int { return g.tilesY }

// Width returns the canvas width in pixels.
func (g *TileGrid) Width() int { return g.width }

// Height returns the canvas height in pixels.
func (g *TileGrid) Height() int { return g.height }

// Close releases all tiles. The grid must not be used afterwards.
func (g *TileGrid) Close() { g.release() }
