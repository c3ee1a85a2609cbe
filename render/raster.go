package render

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/jvchiappini/motioner/internal/parallel"
)

// rasterizeTile fills one tile's pixel buffer from the candidate records,
// already sorted into draw order. Coordinates in records are normalized;
// the viewport maps them to pixels.
func rasterizeTile(tile *parallel.Tile, records []ShapeRecord, candidates []int, vw, vh int, background [4]uint8, atlas *image.RGBA) {
	tx0, ty0, tw, th := tile.Bounds()
	data := tile.Data
	for i := 0; i < len(data); i += 4 {
		data[i+0] = background[0]
		data[i+1] = background[1]
		data[i+2] = background[2]
		data[i+3] = background[3]
	}

	for _, idx := range candidates {
		rec := &records[idx]
		if !rec.Alive || !rec.Visible || rec.Color[3] <= 0 {
			continue
		}
		switch rec.Kind {
		case KindCircle:
			fillCircle(data, tx0, ty0, tw, th, rec, vw, vh)
		case KindRect:
			fillRect(data, tx0, ty0, tw, th, rec, vw, vh)
		case KindText:
			fillTextQuad(data, tx0, ty0, tw, th, rec, vw, vh, atlas)
		}
	}
}

func fillCircle(data []byte, tx0, ty0, tw, th int, rec *ShapeRecord, vw, vh int) {
	cx := rec.X * float32(vw)
	cy := rec.Y * float32(vh)
	r := rec.Radius * float32(min(vw, vh))
	if r <= 0 {
		return
	}

	x0 := max(int(cx-r), tx0)
	y0 := max(int(cy-r), ty0)
	x1 := min(int(math32.Ceil(cx+r)), tx0+tw-1)
	y1 := min(int(math32.Ceil(cy+r)), ty0+th-1)
	r2 := r * r

	for py := y0; py <= y1; py++ {
		dy := float32(py) + 0.5 - cy
		for px := x0; px <= x1; px++ {
			dx := float32(px) + 0.5 - cx
			if dx*dx+dy*dy > r2 {
				continue
			}
			blendPixel(data, (py-ty0)*tw+(px-tx0), rec.Color)
		}
	}
}

func fillRect(data []byte, tx0, ty0, tw, th int, rec *ShapeRecord, vw, vh int) {
	halfW := rec.W / 2 * float32(vw)
	halfH := rec.H / 2 * float32(vh)
	if halfW <= 0 || halfH <= 0 {
		return
	}
	cx := rec.X * float32(vw)
	cy := rec.Y * float32(vh)

	x0 := max(int(cx-halfW), tx0)
	y0 := max(int(cy-halfH), ty0)
	x1 := min(int(math32.Ceil(cx+halfW))-1, tx0+tw-1)
	y1 := min(int(math32.Ceil(cy+halfH))-1, ty0+th-1)

	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			blendPixel(data, (py-ty0)*tw+(px-tx0), rec.Color)
		}
	}
}

// fillTextQuad draws a text element's quad: the atlas region scaled into
// the quad when an atlas page and UV rectangle are available, otherwise a
// solid placeholder block in the element color.
func fillTextQuad(data []byte, tx0, ty0, tw, th int, rec *ShapeRecord, vw, vh int, atlas *image.RGBA) {
	qw, qh := textQuadSize(rec)
	if qw <= 0 || qh <= 0 {
		return
	}
	halfW := qw / 2 * float32(vw)
	halfH := qh / 2 * float32(vh)
	cx := rec.X * float32(vw)
	cy := rec.Y * float32(vh)

	x0 := max(int(cx-halfW), tx0)
	y0 := max(int(cy-halfH), ty0)
	x1 := min(int(math32.Ceil(cx+halfW))-1, tx0+tw-1)
	y1 := min(int(math32.Ceil(cy+halfH))-1, ty0+th-1)

	hasUV := atlas != nil && (rec.UV1[0] > rec.UV0[0]) && (rec.UV1[1] > rec.UV0[1])

	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			c := rec.Color
			if hasUV {
				// Nearest sample from the atlas region; glyph coverage
				// modulates the element alpha.
				u := (float32(px) + 0.5 - (cx - halfW)) / (2 * halfW)
				v := (float32(py) + 0.5 - (cy - halfH)) / (2 * halfH)
				cov := atlasCoverage(atlas, rec.UV0, rec.UV1, u, v)
				if cov <= 0 {
					continue
				}
				c[3] *= cov
			}
			blendPixel(data, (py-ty0)*tw+(px-tx0), c)
		}
	}
}

// textQuadSize derives the quad dimensions: height is the Size channel and
// width follows the atlas rectangle's aspect, square without one.
func textQuadSize(rec *ShapeRecord) (w, h float32) {
	h = rec.Size
	w = h
	du := rec.UV1[0] - rec.UV0[0]
	dv := rec.UV1[1] - rec.UV0[1]
	if du > 0 && dv > 0 {
		w = h * du / dv
	}
	return w, h
}

// atlasCoverage samples the atlas alpha at normalized quad coordinates.
func atlasCoverage(atlas *image.RGBA, uv0, uv1 [2]float32, u, v float32) float32 {
	b := atlas.Bounds()
	ax := uv0[0] + (uv1[0]-uv0[0])*u
	ay := uv0[1] + (uv1[1]-uv0[1])*v
	px := b.Min.X + int(ax*float32(b.Dx()))
	py := b.Min.Y + int(ay*float32(b.Dy()))
	if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
		return 0
	}
	return float32(atlas.RGBAAt(px, py).A) / 255
}

// blendPixel source-over composites a linear-light color onto one RGBA8
// pixel at the given pixel index.
func blendPixel(data []byte, pixIdx int, color [4]float32) {
	off := pixIdx * 4
	sa := clampUnit(color[3])
	if sa <= 0 {
		return
	}
	sr := linearToSRGB(color[0])
	sg := linearToSRGB(color[1])
	sb := linearToSRGB(color[2])

	if sa >= 1 {
		data[off+0] = floatToByte(sr)
		data[off+1] = floatToByte(sg)
		data[off+2] = floatToByte(sb)
		data[off+3] = 255
		return
	}

	inv := 1 - sa
	dr := float32(data[off+0]) / 255
	dg := float32(data[off+1]) / 255
	db := float32(data[off+2]) / 255
	da := float32(data[off+3]) / 255
	data[off+0] = floatToByte(sr*sa + dr*inv)
	data[off+1] = floatToByte(sg*sa + dg*inv)
	data[off+2] = floatToByte(sb*sa + db*inv)
	data[off+3] = floatToByte(sa + da*inv)
}

// linearToSRGB converts a linear-light component back to sRGB.
func linearToSRGB(c float32) float32 {
	c = clampUnit(c)
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math32.Pow(c, 1/2.4) - 0.055
}

func clampUnit(v float32) float32 {
	if v < 0 || math32.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func floatToByte(v float32) uint8 {
	return uint8(clampUnit(v)*255 + 0.5)
}
