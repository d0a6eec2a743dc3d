package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/mpmsim/internal/mpm"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a braille sub-pixel canvas of Width x Height cells. Heat holds
// the largest value plotted into each cell and drives cell coloring.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Heat          [][]float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Heat:   make([][]float64, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Heat[i] = make([]float64, w)
	}
	c.Clear()
	return c
}

// SubWidth and SubHeight are the canvas size in sub-pixels.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

// Set lights the sub-pixel at (x, y). Out-of-range coordinates are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
			c.Heat[i][j] = 0
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// ToSub maps a simulation position in [0, space]^2 onto sub-pixels, with y
// pointing up in simulation space and down on screen.
func (c *Canvas) ToSub(pos r2.Vec, space float64) (int, int) {
	sw, sh := c.SubWidth(), c.SubHeight()
	x := int(pos.X / space * float64(sw))
	y := int((1 - pos.Y/space) * float64(sh))
	return clampInt(x, 0, sw-1), clampInt(y, 0, sh-1)
}

// ToSim maps a terminal cell back to the simulation position at its centre.
// ok is false when the cell lies outside the canvas.
func (c *Canvas) ToSim(col, row int, space float64) (pos r2.Vec, ok bool) {
	if col < 0 || row < 0 || col >= c.Width || row >= c.Height {
		return r2.Vec{}, false
	}
	return r2.Vec{
		X: (float64(col) + 0.5) / float64(c.Width) * space,
		Y: (1 - (float64(row)+0.5)/float64(c.Height)) * space,
	}, true
}

// Plot draws every particle and records its Color as cell heat.
func (c *Canvas) Plot(views []mpm.ParticleView, space float64) {
	for _, v := range views {
		x, y := c.ToSub(v.Pos, space)
		c.Set(x, y)
		if row, col := y/4, x/2; v.Color > c.Heat[row][col] {
			c.Heat[row][col] = v.Color
		}
	}
}

// Frame outlines the canvas border.
func (c *Canvas) Frame() {
	w, h := c.SubWidth()-1, c.SubHeight()-1
	c.DrawLine(0, 0, w, 0)
	c.DrawLine(0, h, w, h)
	c.DrawLine(0, 0, 0, h)
	c.DrawLine(w, 0, w, h)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Styled renders the canvas with each cell colored by its heat relative to
// maxHeat.
func (c *Canvas) Styled(maxHeat float64) string {
	if maxHeat <= 0 {
		return c.String()
	}
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if r == brailleBlank {
				b.WriteRune(r)
				continue
			}
			b.WriteString(heatStyle(c.Heat[i][j] / maxHeat).Render(string(r)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func heatStyle(norm float64) lipgloss.Style {
	switch {
	case norm > 0.66:
		return SparkHigh
	case norm > 0.33:
		return SparkMid
	}
	return SparkLow
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
