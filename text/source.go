// Package text provides font loading, shaped measurement, and the glyph
// atlas feeding UV overrides into the dispatcher.
//
// Glyph rasterization internals are out of scope: the atlas exposes a
// Rasterizer hook and ships a block-placeholder default. Everything the
// animation core needs from text is a measured box and a UV rectangle.
package text

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Source is a parsed font. One Source serves every size; it is heavyweight
// and meant to be shared. Source is safe for concurrent use.
type Source struct {
	data   []byte
	shaped *font.Font
	name   string
}

// NewSource parses TTF/OTF font data. The data slice is copied.
func NewSource(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("text: empty font data")
	}
	// Validate with the opentype parser first; it produces the clearer
	// errors for malformed tables.
	sf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	name, _ := sf.Name(nil, 1) // family name table entry

	owned := make([]byte, len(data))
	copy(owned, data)

	// The shaping path wants go-text's representation. font.Font is
	// read-only and safe to share; faces are created per shaping call.
	face, err := font.ParseTTF(bytes.NewReader(owned))
	if err != nil {
		return nil, fmt.Errorf("text: parse font for shaping: %w", err)
	}

	return &Source{data: owned, shaped: face.Font, name: name}, nil
}

// Name returns the font family name, when the font carries one.
func (s *Source) Name() string { return s.name }

var (
	defaultOnce   sync.Once
	defaultSource *Source
)

// DefaultSource returns the embedded Go Regular font, parsed once.
func DefaultSource() *Source {
	defaultOnce.Do(func() {
		s, err := NewSource(goregular.TTF)
		if err != nil {
			// The embedded font is known good; failing to parse it means
			// the build itself is broken.
			panic(fmt.Sprintf("text: embedded default font: %v", err))
		}
		defaultSource = s
	})
	return defaultSource
}
