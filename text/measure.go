package text

import (
	"math"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"github.com/jvchiappini/motioner/cache"
)

// Metrics is the measured box of a shaped string at one size, in pixels.
type Metrics struct {
	Advance float32
	Ascent  float32
	Descent float32 // positive, below the baseline
}

// Height returns the total line height.
func (m Metrics) Height() float32 { return m.Ascent + m.Descent }

// GlyphBox is one shaped glyph's pen-relative box, used by atlas
// rasterizers.
type GlyphBox struct {
	X       float32
	Advance float32
}

type measureKey struct {
	text string
	size float32
}

func measureHasher(k measureKey) uint64 {
	h := cache.StringHasher(k.text)
	h ^= uint64(math.Float32bits(k.size))
	h *= 1099511628211
	return h
}

// Measurer shapes strings through HarfBuzz and memoizes the resulting
// metrics. Safe for concurrent use: the parsed font is read-only, shaper
// instances are pooled (they carry mutable buffers), and results live in
// a sharded cache.
type Measurer struct {
	source  *Source
	shapers sync.Pool
	metrics *cache.Sharded[measureKey, Metrics]
}

// NewMeasurer creates a measurer over the source; nil selects the default
// font.
func NewMeasurer(source *Source) *Measurer {
	if source == nil {
		source = DefaultSource()
	}
	return &Measurer{
		source: source,
		shapers: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
		metrics: cache.NewSharded[measureKey, Metrics](256, measureHasher),
	}
}

// Measure returns the shaped metrics of the string at a pixel size.
// Memoized; repeated measurements of stable strings are map lookups.
func (m *Measurer) Measure(text string, size float32) Metrics {
	if text == "" || size <= 0 {
		return Metrics{}
	}
	key := measureKey{text: text, size: size}
	if cached, ok := m.metrics.Get(key); ok {
		return cached
	}
	// Shaping stays outside the cache lock; a duplicate computation on a
	// race is cheaper than serializing the shard on HarfBuzz.
	out := m.shape(text, size)
	metrics := Metrics{
		Advance: fixedToFloat(out.Advance),
		Ascent:  fixedToFloat(out.LineBounds.Ascent),
		Descent: -fixedToFloat(out.LineBounds.Descent),
	}
	m.metrics.Set(key, metrics)
	return metrics
}

// Glyphs returns the pen-relative boxes of the shaped glyphs, in visual
// order.
func (m *Measurer) Glyphs(text string, size float32) []GlyphBox {
	if text == "" || size <= 0 {
		return nil
	}
	out := m.shape(text, size)
	boxes := make([]GlyphBox, len(out.Glyphs))
	var x float32
	for i, g := range out.Glyphs {
		adv := fixedToFloat(g.Advance)
		boxes[i] = GlyphBox{X: x + fixedToFloat(g.XOffset), Advance: adv}
		x += adv
	}
	return boxes
}

// HitRate returns the measurement cache hit rate.
func (m *Measurer) HitRate() float64 { return m.metrics.HitRate() }

func (m *Measurer) shape(text string, size float32) shaping.Output {
	runes := []rune(text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: baseDirection(text),
		Face:      font.NewFace(m.source.shaped),
		Size:      fixed.Int26_6(size * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	shaper := m.shapers.Get().(*shaping.HarfbuzzShaper)
	out := shaper.Shape(input)
	m.shapers.Put(shaper)
	return out
}

// baseDirection resolves the paragraph's base direction from its first
// strong character.
func baseDirection(text string) di.Direction {
	p := bidi.Paragraph{}
	if _, err := p.SetString(text, bidi.DefaultDirection(bidi.Neutral)); err != nil {
		return di.DirectionLTR
	}
	if p.Direction() == bidi.RightToLeft {
		return di.DirectionRTL
	}
	return di.DirectionLTR
}

// detectScript picks the script of the first non-space rune; mixed-script
// strings shape on that run's script, a deliberate simplification.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
