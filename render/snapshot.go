package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/sync/errgroup"
)

// Snapshot renders one frame and returns it as an *image.RGBA. The image
// owns its pixels.
func (r *Renderer) Snapshot(frame int) (*image.RGBA, error) {
	f, err := r.RenderFrame(frame)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	copy(img.Pix, f.Pixels)
	return img, nil
}

// EncodePNG encodes a rendered frame as PNG.
func EncodePNG(f *Frame) ([]byte, error) {
	img := &image.RGBA{
		Pix:    f.Pixels,
		Stride: f.Width * 4,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportFrames renders and PNG-encodes a set of frames, returned in input
// order. Rendering serializes on the renderer; encoding fans out across
// the group, limited to the worker count. The first error cancels the
// remaining frames via the group context.
func (r *Renderer) ExportFrames(ctx context.Context, frames ...int) ([][]byte, error) {
	out := make([][]byte, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.pool.Workers())

	for i, frame := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := r.RenderFrame(frame)
			if err != nil {
				return err
			}
			data, err := EncodePNG(f)
			if err != nil {
				return err
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
