// Package chart renders a subject's daily series as a PNG bar chart.
package chart

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/dmitrijs2005/cyclekeeper/internal/models"
	"github.com/dmitrijs2005/cyclekeeper/internal/tolerance"
)

// MaxBars caps the number of most recent days drawn.
const MaxBars = 90

const (
	barWidth = 8
	barGap   = 2
	margin   = 16
	height   = 240
)

var ErrNoData = errors.New("nothing to draw")

var (
	background = color.RGBA{0xff, 0xff, 0xff, 0xff}
	axis       = color.RGBA{0x33, 0x33, 0x33, 0xff}
	coffee     = color.RGBA{0x8d, 0x5b, 0x3a, 0xff}
	nicotine   = color.RGBA{0x5a, 0x7d, 0xa8, 0xff}
	over       = color.RGBA{0xd0, 0x3c, 0x3c, 0xff}
	target     = color.RGBA{0x22, 0x22, 0x22, 0xff}
)

// Render draws one bar per point, oldest on the left. Bars above the day's
// phase target are drawn in red and every bar carries a tick at its target.
func Render(points []tolerance.Point, cfg *models.CycleConfig) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	if len(points) > MaxBars {
		points = points[len(points)-MaxBars:]
	}

	top := 1
	for _, p := range points {
		top = max(top, p.Units, cfg.Target(p.Phase))
	}

	width := 2*margin + len(points)*(barWidth+barGap)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	plot := height - 2*margin
	base := height - margin
	scale := func(v int) int { return v * plot / top }

	for i, p := range points {
		x0 := margin + i*(barWidth+barGap)
		fill := coffee
		if p.Phase == models.PhaseNicotine {
			fill = nicotine
		}
		limit := cfg.Target(p.Phase)
		if p.Units > limit {
			fill = over
		}
		draw.Draw(img, image.Rect(x0, base-scale(p.Units), x0+barWidth, base), &image.Uniform{C: fill}, image.Point{}, draw.Src)

		ty := base - scale(limit)
		draw.Draw(img, image.Rect(x0-1, ty, x0+barWidth+1, ty+1), &image.Uniform{C: target}, image.Point{}, draw.Src)
	}

	draw.Draw(img, image.Rect(margin-2, base, width-margin+2, base+1), &image.Uniform{C: axis}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
