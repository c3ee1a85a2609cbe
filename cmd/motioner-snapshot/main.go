// Command motioner-snapshot renders a demo animation to PNG frames.
//
// It builds a small keyframed scene (a bouncing circle, a sliding
// rectangle and a text label), renders a handful of frames through the
// active execution target and writes each one as <output>-NNNN.png.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jvchiappini/motioner"
	"github.com/jvchiappini/motioner/render"
	"github.com/jvchiappini/motioner/text"
)

func main() {
	var (
		width    = flag.Int("width", 640, "viewport width in pixels")
		height   = flag.Int("height", 360, "viewport height in pixels")
		fps      = flag.Float64("fps", 30, "frames per second")
		duration = flag.Float64("duration", 2, "animation length in seconds")
		count    = flag.Int("frames", 5, "number of frames to export, spread over the duration")
		output   = flag.String("output", "snapshot", "output file prefix")
		verbose  = flag.Bool("v", false, "log renderer internals")
	)
	flag.Parse()

	if *verbose {
		motioner.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	scene, err := buildScene(*fps, *duration)
	if err != nil {
		log.Fatalf("build scene: %v", err)
	}

	r, err := render.NewRenderer(scene,
		render.WithViewport(*width, *height),
		render.WithFPS(*fps),
		render.WithAtlas(text.NewAtlas(1024, nil)),
		render.WithBackground([4]uint8{18, 18, 24, 255}),
	)
	if err != nil {
		log.Fatalf("create renderer: %v", err)
	}
	defer r.Close()

	frames := pickFrames(*fps, *duration, *count)
	pngs, err := r.ExportFrames(context.Background(), frames...)
	if err != nil {
		log.Fatalf("export frames: %v", err)
	}

	for i, data := range pngs {
		name := fmt.Sprintf("%s-%04d.png", *output, frames[i])
		if err := os.WriteFile(name, data, 0o644); err != nil {
			log.Fatalf("write %s: %v", name, err)
		}
		log.Printf("wrote %s (%dx%d, target %s)", name, *width, *height, r.Target().Name())
	}
}

// buildScene assembles the demo elements from directives, the same way a
// description-language front end would.
func buildScene(fps, duration float64) (*motioner.Scene, error) {
	defs := []motioner.ElementDef{
		{
			Name: "ball", Kind: motioner.ShapeCircle,
			Props: motioner.FrameProps{
				X: f32(0.2), Y: f32(0.7), Radius: f32(0.08),
				Color: rgba(235, 90, 70, 255),
			},
			Directives: []motioner.MoveDirective{
				{
					To:           motioner.FrameProps{X: f32(0.8), Y: f32(0.25)},
					StartSeconds: 0, EndSeconds: duration * 0.6,
					Easing: "ease_in_out(power = 2.000)",
				},
				{
					To:           motioner.FrameProps{Y: f32(0.7)},
					StartSeconds: duration * 0.6, EndSeconds: duration,
					Easing: "ease_in(power = 2.000)",
				},
			},
		},
		{
			Name: "panel", Kind: motioner.ShapeRect,
			Props: motioner.FrameProps{
				X: f32(0.5), Y: f32(0.85), W: f32(0.0), H: f32(0.12),
				Color: rgba(60, 120, 200, 220),
			},
			Directives: []motioner.MoveDirective{
				{
					To:           motioner.FrameProps{W: f32(0.7)},
					StartSeconds: 0, EndSeconds: duration * 0.5,
					Easing: "expo",
				},
			},
		},
		{
			Name: "label", Kind: motioner.ShapeText,
			Props: motioner.FrameProps{
				X: f32(0.5), Y: f32(0.12), Size: f32(0.08),
				Value: str("motioner"),
				Color: rgba(240, 240, 240, 255),
			},
		},
	}

	elements, err := motioner.BuildElements(defs, fps)
	if err != nil {
		return nil, err
	}
	scene := motioner.NewScene()
	for _, el := range elements {
		scene.Add(el)
	}
	return scene, nil
}

// pickFrames spreads n frame indices evenly across the duration.
func pickFrames(fps, duration float64, n int) []int {
	if n < 1 {
		n = 1
	}
	last := int(duration * fps)
	if last < 1 {
		last = 1
	}
	frames := make([]int, n)
	for i := range frames {
		frames[i] = i * last / max(n-1, 1)
	}
	return frames
}

func f32(v float32) *float32        { return &v }
func str(s string) *string         { return &s }
func rgba(r, g, b, a uint8) *[4]uint8 { return &[4]uint8{r, g, b, a} }
