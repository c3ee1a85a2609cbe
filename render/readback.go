package render

import (
	"errors"
	"time"
)

// ErrReadbackTimeout indicates the bounded wait for evaluated pixels
// expired. The frame is lost but nothing else is: caches keep their state
// and the next Prepare re-flattens, so the failure is recoverable.
var ErrReadbackTimeout = errors.New("render: readback timed out")

// DefaultReadbackTimeout bounds the wait for a frame's pixels.
const DefaultReadbackTimeout = 5 * time.Second

// rowAlignment is the required staging-row alignment in bytes. Buffer-to-
// buffer copies on the GPU path demand 256-byte rows; the software path
// stages with the same layout so one readback implementation serves both.
const rowAlignment = 256

// AlignedRowBytes returns the staging stride for a row of width RGBA
// pixels: width*4 rounded up to the row alignment.
func AlignedRowBytes(width int) int {
	return (width*4 + rowAlignment - 1) &^ (rowAlignment - 1)
}

// StagingSize returns the staging buffer size for a width x height frame.
func StagingSize(width, height int) int {
	return AlignedRowBytes(width) * height
}

// StripRowPadding copies a padded staging buffer into a tight row-major
// RGBA buffer of width*height*4 bytes.
func StripRowPadding(staging []byte, width, height int) []byte {
	stride := AlignedRowBytes(width)
	rowBytes := width * 4
	out := make([]byte, rowBytes*height)
	for y := 0; y < height; y++ {
		copy(out[y*rowBytes:(y+1)*rowBytes], staging[y*stride:y*stride+rowBytes])
	}
	return out
}

// Readback performs the bounded wait for a staging buffer and strips its
// row padding. fetch runs asynchronously (on the GPU path it maps the
// staging buffer behind a fence); expiry of the timeout returns
// ErrReadbackTimeout with no pixels, failing closed.
type Readback struct {
	// Timeout bounds the wait; zero selects DefaultReadbackTimeout.
	Timeout time.Duration
}

// Wait runs fetch and returns the tight pixel buffer, or an error when
// fetch fails or the timeout expires. A late fetch result after timeout is
// discarded.
func (r Readback) Wait(fetch func() ([]byte, error), width, height int) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultReadbackTimeout
	}

	type result struct {
		staging []byte
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		staging, err := fetch()
		ch <- result{staging, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		return StripRowPadding(res.staging, width, height), nil
	case <-timer.C:
		return nil, ErrReadbackTimeout
	}
}
