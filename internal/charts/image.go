package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Panel is one cell of a Grid.
type Panel struct {
	Title string
	Lines []Line
}

const titleHeight = 32

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

// Grid renders four panels in a 2x2 layout under a common title. A panel
// with nothing to plot is left blank.
func Grid(w io.Writer, title string, panels [4]Panel, width, height int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight + DefaultHeight/2
	}
	cellW, cellH := width/2, (height-titleHeight)/2

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	drawCentered(canvas, title, width/2, titleHeight-10, black)

	plotted := 0
	for i, p := range panels {
		var buf bytes.Buffer
		err := Lines(&buf, Options{Title: p.Title, Width: cellW, Height: cellH}, p.Lines...)
		if err == ErrNotEnoughData {
			continue
		}
		if err != nil {
			return fmt.Errorf("panel %d: %w", i, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return fmt.Errorf("panel %d: failed to decode: %w", i, err)
		}
		x, y := (i%2)*cellW, titleHeight+(i/2)*cellH
		draw.Draw(canvas, image.Rect(x, y, x+cellW, y+cellH), img, img.Bounds().Min, draw.Src)
		plotted++
	}
	if plotted == 0 {
		return ErrNotEnoughData
	}
	return png.Encode(w, canvas)
}

// Heatmap renders a labelled matrix of values in [-1, 1] on a coolwarm
// scale, annotating each cell. NaN cells are grey.
func Heatmap(w io.Writer, title string, labels []string, values [][]float64, width, height int) error {
	n := len(labels)
	if n == 0 || len(values) != n {
		return ErrNotEnoughData
	}
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 600
	}

	face := basicfont.Face7x13
	labelW := 0
	for _, l := range labels {
		if lw := font.MeasureString(face, l).Ceil(); lw > labelW {
			labelW = lw
		}
	}
	left := labelW + 16
	top := titleHeight + 8
	bottom := 2*face.Height + 16
	cellW := (width - left - 16) / n
	cellH := (height - top - bottom) / n
	if cellW < 8 || cellH < 8 {
		return fmt.Errorf("heatmap: canvas %dx%d too small for %d variables", width, height, n)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	drawCentered(canvas, title, width/2, titleHeight-10, black)

	for i := 0; i < n; i++ {
		if len(values[i]) != n {
			return fmt.Errorf("heatmap: row %d has %d values, want %d", i, len(values[i]), n)
		}
		y := top + i*cellH
		drawText(canvas, labels[i], left-8-font.MeasureString(face, labels[i]).Ceil(), y+cellH/2+face.Ascent/2, black)

		for j := 0; j < n; j++ {
			x := left + j*cellW
			v := values[i][j]
			fill := coolwarm(v)
			draw.Draw(canvas, image.Rect(x, y, x+cellW-1, y+cellH-1), image.NewUniform(fill), image.Point{}, draw.Src)

			ink := black
			if !math.IsNaN(v) && math.Abs(v) > 0.6 {
				ink = white
			}
			drawCentered(canvas, formatCell(v), x+cellW/2, y+cellH/2+face.Ascent/2, ink)
		}
	}

	// Column labels alternate between two rows so long names do not overlap.
	for j, l := range labels {
		y := top + n*cellH + face.Height + 4
		if j%2 == 1 {
			y += face.Height
		}
		drawCentered(canvas, l, left+j*cellW+cellW/2, y, black)
	}

	return png.Encode(w, canvas)
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

// coolwarm maps [-1, 1] onto blue, light grey and red.
func coolwarm(v float64) color.RGBA {
	if math.IsNaN(v) {
		return color.RGBA{R: 200, G: 200, B: 200, A: 255}
	}
	v = math.Max(-1, math.Min(1, v))
	blue := [3]float64{59, 76, 192}
	mid := [3]float64{221, 221, 221}
	red := [3]float64{180, 4, 38}

	from, to, t := mid, red, v
	if v < 0 {
		from, to, t = mid, blue, -v
	}
	mix := func(k int) uint8 { return uint8(math.Round(from[k] + (to[k]-from[k])*t)) }
	return color.RGBA{R: mix(0), G: mix(1), B: mix(2), A: 255}
}

func drawText(dst draw.Image, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func drawCentered(dst draw.Image, text string, cx, y int, c color.Color) {
	tw := font.MeasureString(basicfont.Face7x13, text).Ceil()
	drawText(dst, text, cx-tw/2, y, c)
}
