package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/mpmsim/internal/sim"
	"github.com/san-kum/mpmsim/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// FrameToSVG draws every particle of frame as a dot on a size x size image,
// with y pointing up and dots shaded from blue to red by Color.
func FrameToSVG(frame sim.Frame, spaceWidth float64, size int) string {
	if size <= 0 || spaceWidth <= 0 {
		return ""
	}

	maxColor := 0.0
	for _, p := range frame.Particles {
		if !math.IsNaN(p.Color) && !math.IsInf(p.Color, 0) {
			maxColor = math.Max(maxColor, p.Color)
		}
	}

	scale := float64(size) / spaceWidth
	r := math.Max(scale*0.25, 0.5)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, size, size, size, size)
	fmt.Fprintf(&sb, "<!-- tick %d t=%.3f -->\n<g>\n", frame.Tick, frame.Time)
	for _, p := range frame.Particles {
		cx := p.Pos.X * scale
		cy := float64(size) - p.Pos.Y*scale
		if math.IsNaN(cx) || math.IsNaN(cy) {
			continue
		}
		fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>
`, cx, cy, r, speedColor(p.Color, maxColor))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func speedColor(v, max float64) string {
	t := 0.0
	if max > 0 {
		t = math.Min(math.Max(v/max, 0), 1)
	}
	red := int(math.Round(255 * t))
	green := int(math.Round(204 * (1 - math.Abs(2*t-1))))
	blue := int(math.Round(255 * (1 - t)))
	return fmt.Sprintf("#%02x%02x%02x", red, green, blue)
}

// CanvasToSVG converts a braille canvas to SVG, one dot per lit sub-pixel.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := int(float64(canvas.SubWidth()) * scale)
	height := int(float64(canvas.SubHeight()) * scale)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	sb.WriteString("<g fill=\"#00ccff\">\n")

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius)
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots values against their index as a single polyline, with
// 10% padding around the value range.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 || width <= 0 || height <= 0 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2
	stepX := float64(width) / float64(len(values)-1)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i, v := range values {
		x := float64(i) * stepX
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
