package text

import (
	"image"
	"sync"
	"testing"
)

func TestAtlasLookupBuildsOnce(t *testing.T) {
	a := NewAtlas(512, nil)

	uv, ok := a.Lookup("hello", 16)
	if !ok {
		t.Fatal("Lookup() = miss, want hit")
	}
	if uv[2] <= uv[0] || uv[3] <= uv[1] {
		t.Errorf("uv = %v, want a non-empty rectangle", uv)
	}
	if uv[0] < 0 || uv[3] > 1 {
		t.Errorf("uv = %v, want within [0,1]", uv)
	}

	again, ok := a.Lookup("hello", 16)
	if !ok || again != uv {
		t.Errorf("second Lookup() = %v, %v, want identical cached entry %v", again, ok, uv)
	}
	if a.Len() != 1 {
		t.Errorf("Len() = %d, want 1", a.Len())
	}
}

func TestAtlasDistinctEntries(t *testing.T) {
	a := NewAtlas(512, nil)

	uv1, _ := a.Lookup("one", 16)
	uv2, _ := a.Lookup("two", 16)
	uv3, _ := a.Lookup("one", 32) // same string, different size

	if uv1 == uv2 || uv1 == uv3 {
		t.Error("distinct entries share a UV rectangle")
	}
	if a.Len() != 3 {
		t.Errorf("Len() = %d, want 3", a.Len())
	}
}

func TestAtlasMissOnEmptyOrInvalid(t *testing.T) {
	a := NewAtlas(512, nil)
	if _, ok := a.Lookup("", 16); ok {
		t.Error("Lookup(empty) = hit, want miss")
	}
	if _, ok := a.Lookup("x", 0); ok {
		t.Error("Lookup(size 0) = hit, want miss")
	}
}

func TestAtlasPageFullIsAMiss(t *testing.T) {
	// A tiny page cannot hold a large string; the lookup must miss, not
	// fail or panic.
	a := NewAtlas(32, nil)
	if _, ok := a.Lookup("a very long string that cannot fit", 24); ok {
		t.Error("Lookup on full page = hit, want miss")
	}
}

func TestAtlasRasterizerHook(t *testing.T) {
	var called bool
	a := NewAtlas(512, nil, WithRasterizer(func(dst *image.RGBA, region image.Rectangle, text string, size float32, metrics Metrics) {
		called = true
		if region.Empty() {
			t.Error("rasterizer got empty region")
		}
		if text != "hook" {
			t.Errorf("rasterizer text = %q, want hook", text)
		}
	}))

	if _, ok := a.Lookup("hook", 16); !ok {
		t.Fatal("Lookup() = miss")
	}
	if !called {
		t.Error("custom rasterizer was not invoked")
	}
}

func TestAtlasDefaultRasterizerWritesCoverage(t *testing.T) {
	a := NewAtlas(512, nil)
	uv, ok := a.Lookup("block", 20)
	if !ok {
		t.Fatal("Lookup() = miss")
	}

	page := a.Page()
	ps := page.Bounds().Dx()
	x0, y0 := int(uv[0]*float32(ps)), int(uv[1]*float32(ps))
	x1, y1 := int(uv[2]*float32(ps)), int(uv[3]*float32(ps))

	var covered int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if page.RGBAAt(x, y).A > 0 {
				covered++
			}
		}
	}
	if covered == 0 {
		t.Error("placeholder rasterizer left the region fully transparent")
	}
}

func TestAtlasClear(t *testing.T) {
	a := NewAtlas(256, nil)
	a.Lookup("x", 16)
	a.Clear()
	if a.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", a.Len())
	}
	if _, ok := a.Lookup("x", 16); !ok {
		t.Error("Lookup after Clear = miss, want rebuilt entry")
	}
}

func TestAtlasConcurrentLookups(t *testing.T) {
	a := NewAtlas(1024, nil)
	words := []string{"red", "green", "blue", "cyan", "magenta", "yellow"}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, word := range words {
				if _, ok := a.Lookup(word, 14); !ok {
					t.Errorf("Lookup(%q) = miss", word)
				}
			}
		}()
	}
	wg.Wait()

	if a.Len() != len(words) {
		t.Errorf("Len() = %d, want %d (no duplicate builds)", a.Len(), len(words))
	}
}
