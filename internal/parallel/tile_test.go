package parallel

import "testing"

func TestTileGridEdgeSizing(t *testing.T) {
	// 150x100 at 64px tiles: 3x2 grid with clipped right and bottom edges.
	g := NewTileGrid(150, 100)
	defer g.Close()

	if g.TilesX() != 3 || g.TilesY() != 2 {
		t.Fatalf("grid = %dx%d tiles, want 3x2", g.TilesX(), g.TilesY())
	}

	tests := []struct {
		tx, ty int
		w, h   int
	}{
		{0, 0, 64, 64},
		{2, 0, 22, 64},
		{0, 1, 64, 36},
		{2, 1, 22, 36},
	}
	for _, tt := range tests {
		tile := g.TileAt(tt.tx, tt.ty)
		if tile == nil {
			t.Fatalf("TileAt(%d,%d) = nil", tt.tx, tt.ty)
		}
		if tile.Width != tt.w || tile.Height != tt.h {
			t.Errorf("tile (%d,%d) = %dx%d, want %dx%d", tt.tx, tt.ty, tile.Width, tile.Height, tt.w, tt.h)
		}
		if len(tile.Data) != tile.Width*tile.Height*4 {
			t.Errorf("tile (%d,%d) data = %d bytes, want %d", tt.tx, tt.ty, len(tile.Data), tile.Width*tile.Height*4)
		}
	}

	if g.TileAt(3, 0) != nil || g.TileAt(0, 2) != nil {
		t.Error("TileAt out of bounds = tile, want nil")
	}
}

func TestTilesInRect(t *testing.T) {
	g := NewTileGrid(256, 256)
	defer g.Close()

	tests := []struct {
		name       string
		x, y, w, h int
		want       int
	}{
		{"single tile interior", 10, 10, 20, 20, 1},
		{"crosses vertical boundary", 60, 0, 10, 10, 2},
		{"crosses both boundaries", 60, 60, 10, 10, 4},
		{"full canvas", 0, 0, 256, 256, 16},
		{"outside", 300, 300, 10, 10, 0},
		{"clamped overlap", -10, -10, 30, 30, 1},
		{"empty", 0, 0, 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.TilesInRect(tt.x, tt.y, tt.w, tt.h)
			if len(got) != tt.want {
				t.Errorf("TilesInRect(%d,%d,%d,%d) = %d tiles, want %d", tt.x, tt.y, tt.w, tt.h, len(got), tt.want)
			}
		})
	}
}

func TestTileBoundsAndOffsets(t *testing.T) {
	g := NewTileGrid(130, 130)
	defer g.Close()

	tile := g.TileAt(2, 2)
	x, y, w, h := tile.Bounds()
	if x != 128 || y != 128 || w != 2 || h != 2 {
		t.Errorf("Bounds() = (%d,%d,%d,%d), want (128,128,2,2)", x, y, w, h)
	}
	if off := tile.PixelOffset(1, 1); off != (1*2+1)*4 {
		t.Errorf("PixelOffset(1,1) = %d, want %d", off, (1*2+1)*4)
	}
	if off := tile.PixelOffset(2, 0); off != -1 {
		t.Errorf("PixelOffset out of bounds = %d, want -1", off)
	}
}

func TestTilePoolReuseZeroed(t *testing.T) {
	tile := GetTile(TileSize, TileSize)
	for i := range tile.Data {
		tile.Data[i] = 0xFF
	}
	PutTile(tile)

	again := GetTile(TileSize, TileSize)
	for i, b := range again.Data {
		if b != 0 {
			t.Fatalf("recycled tile byte %d = %#x, want 0", i, b)
		}
	}
}

func TestTileGridResize(t *testing.T) {
	g := NewTileGrid(64, 64)
	defer g.Close()

	g.Resize(200, 64)
	if g.TilesX() != 4 || g.TilesY() != 1 {
		t.Errorf("after resize grid = %dx%d tiles, want 4x1", g.TilesX(), g.TilesY())
	}
	if g.Width() != 200 {
		t.Errorf("Width() = %d, want 200", g.Width())
	}
}
