package parallel

import (
	"math/bits"
	"sync/atomic"
)

// DirtyRegion is a lock-free bitmap of tiles that need redrawing, one bit
// per tile packed into uint64 words. Workers mark tiles concurrently while
// the renderer drains the bitmap once per frame.
type DirtyRegion struct {
	words  []atomic.Uint64
	tilesX int
	tilesY int
}

// NewDirtyRegion creates a tracker for the given tile grid; all tiles
// start clean. Returns nil for non-positive dimensions.
func NewDirtyRegion(tilesX, tilesY int) *DirtyRegion {
	if tilesX <= 0 || tilesY <= 0 {
		return nil
	}
	total := tilesX * tilesY
	return &DirtyRegion{
		words:  make([]atomic.Uint64, (total+63)/64),
		tilesX: tilesX,
		tilesY: tilesY,
	}
}

// Mark flags one tile dirty. Out-of-bounds coordinates are ignored.
func (d *DirtyRegion) Mark(tx, ty int) {
	if tx < 0 || tx >= d.tilesX || ty < 0 || ty >= d.tilesY {
		return
	}
	idx := ty*d.tilesX + tx
	d.words[idx/64].Or(1 << (idx & 63))
}

// MarkRect flags every tile intersecting the pixel rectangle.
func (d *DirtyRegion) MarkRect(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	tx1 := max(x/TileSize, 0)
	ty1 := max(y/TileSize, 0)
	tx2 := min((x+w-1)/TileSize, d.tilesX-1)
	ty2 := min((y+h-1)/TileSize, d.tilesY-1)
	for ty := ty1; ty <= ty2; ty++ {
		for tx := tx1; tx <= tx2; tx++ {
			d.Mark(tx, ty)
		}
	}
}

// MarkAll flags every tile.
func (d *DirtyRegion) MarkAll() {
	total := d.tilesX * d.tilesY
	full := total / 64
	for i := 0; i < full; i++ {
		d.words[i].Store(^uint64(0))
	}
	if rem := total % 64; rem > 0 {
		d.words[full].Store((uint64(1) << rem) - 1)
	}
}

// IsDirty reports whether the tile is flagged.
func (d *DirtyRegion) IsDirty(tx, ty int) bool {
	if tx < 0 || tx >= d.tilesX || ty < 0 || ty >= d.tilesY {
		return false
	}
	idx := ty*d.tilesX + tx
	return d.words[idx/64].Load()&(1<<(idx&63)) != 0
}

// Count returns the number of flagged tiles.
func (d *DirtyRegion) Count() int {
	total := d.tilesX * d.tilesY
	count := 0
	for i := range d.words {
		word := d.words[i].Load()
		if (i+1)*64 > total {
			word &= (uint64(1) << (total - i*64)) - 1
		}
		count += bits.OnesCount64(word)
	}
	return count
}

// GetAndClear atomically drains the bitmap, returning the {tx, ty} of
// every tile that was dirty. Marks racing with the drain land in the next
// frame's set, never lost.
func (d *DirtyRegion) GetAndClear() [][2]int {
	var dirty [][2]int
	total := d.tilesX * d.tilesY
	for wi := range d.words {
		word := d.words[wi].Swap(0)
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			idx := wi*64 + bit
			if idx >= total {
				break
			}
			dirty = append(dirty, [2]int{idx % d.tilesX, idx / d.tilesX})
			word &^= 1 << bit
		}
	}
	return dirty
}

// ForEachDirty visits flagged tiles in row-major order without clearing.
func (d *DirtyRegion) ForEachDirty(fn func(tx, ty int)) {
	if fn == nil {
		return
	}
	total := d.tilesX * d.tilesY
	for wi := range d.words {
		word := d.words[wi].Load()
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			idx := wi*64 + bit
			if idx >= total {
				break
			}
			fn(idx%d.tilesX, idx/d.tilesX)
			word &^= 1 << bit
		}
	}
}

// TilesX returns the horizontal tile count.
func (d *DirtyRegion) TilesX() int { return d.tilesX }

// TilesY returns the vertical tile count.
func (d *DirtyRegion) TilesY() int { return d.tilesY }
