// Package plot renders gimbal score traces as a small line chart, for
// the diagnostic CLI. Charts draw at 2× and downsample for clean lines.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// Series is one rotation order's score trace over time.
type Series struct {
	Label  string
	Times  []float64
	Scores []int
}

var palette = []color.NRGBA{
	{230, 80, 80, 255},
	{80, 180, 90, 255},
	{90, 130, 230, 255},
	{220, 180, 60, 255},
	{180, 90, 210, 255},
	{70, 200, 200, 255},
}

var background = color.NRGBA{24, 24, 24, 255}
var gridline = color.NRGBA{52, 52, 52, 255}

const supersample = 2

// Chart renders the traces onto a width×height image. The y axis is the
// 0–100 score, x spans the union of the series' time ranges.
func Chart(series []Series, width, height int) *image.NRGBA {
	w, h := width*supersample, height*supersample
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fill(img, background)

	// Horizontal grid at every 25 score points.
	for s := 0; s <= 100; s += 25 {
		y := scoreY(s, h)
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, gridline)
		}
	}

	tMin, tMax := timeRange(series)
	if tMax <= tMin {
		tMax = tMin + 1
	}

	for i, s := range series {
		c := palette[i%len(palette)]
		var prevX, prevY int
		for j := range s.Times {
			x := int(float64(w-1) * (s.Times[j] - tMin) / (tMax - tMin))
			y := scoreY(s.Scores[j], h)
			if j > 0 {
				line(img, prevX, prevY, x, y, c)
			} else if len(s.Times) == 1 {
				dot(img, x, y, c)
			}
			prevX, prevY = x, y
		}
	}

	return downsample(img, width, height)
}

// WriteWebP encodes the chart losslessly to path.
func WriteWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("plot: create %s: %w", path, err)
	}
	defer f.Close()
	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("plot: encode %s: %w", path, err)
	}
	return nil
}

func scoreY(score, h int) int {
	y := h - 1 - int(float64(h-1)*float64(score)/100)
	if y < 0 {
		y = 0
	}
	if y >= h {
		y = h - 1
	}
	return y
}

func timeRange(series []Series) (float64, float64) {
	first := true
	var min, max float64
	for _, s := range series {
		for _, t := range s.Times {
			if first || t < min {
				min = t
			}
			if first || t > max {
				max = t
			}
			first = false
		}
	}
	return min, max
}

func fill(img *image.NRGBA, c color.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// line draws with integer Bresenham stepping.
func line(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetNRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		if 2*e >= dy {
			e += dy
			x0 += sx
		}
		if 2*e <= dx {
			e += dx
			y0 += sy
		}
	}
}

func dot(img *image.NRGBA, x, y int, c color.NRGBA) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			img.SetNRGBA(x+dx, y+dy, c)
		}
	}
}

// downsample scales the supersampled chart down with CatmullRom.
func downsample(img *image.NRGBA, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
