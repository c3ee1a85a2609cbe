package parallel

import (
	"sync"
	"testing"
)

func TestDirtyMarkAndQuery(t *testing.T) {
	d := NewDirtyRegion(10, 10)

	d.Mark(3, 4)
	if !d.IsDirty(3, 4) {
		t.Error("IsDirty(3,4) = false after Mark")
	}
	if d.IsDirty(4, 3) {
		t.Error("IsDirty(4,3) = true, only (3,4) was marked")
	}
	if d.Count() != 1 {
		t.Errorf("Count() = %d, want 1", d.Count())
	}

	// Out of bounds is ignored.
	d.Mark(-1, 0)
	d.Mark(10, 0)
	if d.Count() != 1 {
		t.Errorf("Count() after out-of-bounds marks = %d, want 1", d.Count())
	}
}

func TestDirtyMarkRect(t *testing.T) {
	d := NewDirtyRegion(4, 4)

	// A rect spanning pixels 60..70 in both axes crosses the tile boundary
	// at 64 and touches a 2x2 block of tiles.
	d.MarkRect(60, 60, 11, 11)
	want := [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	for _, tile := range want {
		if !d.IsDirty(tile[0], tile[1]) {
			t.Errorf("tile (%d,%d) not dirty", tile[0], tile[1])
		}
	}
	if d.Count() != 4 {
		t.Errorf("Count() = %d, want 4", d.Count())
	}
}

func TestDirtyGetAndClear(t *testing.T) {
	d := NewDirtyRegion(8, 8)
	d.Mark(0, 0)
	d.Mark(7, 7)
	d.Mark(3, 5)

	got := d.GetAndClear()
	if len(got) != 3 {
		t.Fatalf("GetAndClear() returned %d tiles, want 3", len(got))
	}
	if d.Count() != 0 {
		t.Errorf("Count() after GetAndClear = %d, want 0", d.Count())
	}
	if got2 := d.GetAndClear(); len(got2) != 0 {
		t.Errorf("second GetAndClear() returned %d tiles, want 0", len(got2))
	}
}

func TestDirtyConcurrentMarks(t *testing.T) {
	// Concurrent marks followed by one drain observe every mark exactly
	// once in the union of drained sets.
	d := NewDirtyRegion(16, 16)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 16; i++ {
				d.Mark(i, w*2)
			}
		}(w)
	}
	wg.Wait()

	got := d.GetAndClear()
	if len(got) != 16*8 {
		t.Errorf("drained %d tiles, want %d", len(got), 16*8)
	}
}

func TestDirtyMarkAll(t *testing.T) {
	// 5x3 = 15 tiles, a partial final word.
	d := NewDirtyRegion(5, 3)
	d.MarkAll()
	if d.Count() != 15 {
		t.Errorf("Count() = %d, want 15", d.Count())
	}
}

func TestNewDirtyRegionInvalid(t *testing.T) {
	if NewDirtyRegion(0, 5) != nil || NewDirtyRegion(5, -1) != nil {
		t.Error("invalid dimensions should return nil")
	}
}
