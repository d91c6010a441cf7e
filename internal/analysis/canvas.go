package analysis

import "strings"

type canvas struct {
	cells         [][]rune
	minX, rangeX  float64
	minY, rangeY  float64
	width, height int
}

func newCanvas(width, height int, minX, maxX, minY, maxY float64) *canvas {
	c := &canvas{width: width, height: height, minX: minX, minY: minY}
	c.rangeX = maxX - minX
	c.rangeY = maxY - minY
	if c.rangeX == 0 {
		c.rangeX = 1
	}
	if c.rangeY == 0 {
		c.rangeY = 1
	}
	c.cells = make([][]rune, height)
	for i := range c.cells {
		c.cells[i] = []rune(strings.Repeat(" ", width))
	}
	return c
}

func (c *canvas) plot(x, y float64, r rune) {
	col := int((x - c.minX) / c.rangeX * float64(c.width-1))
	row := c.height - 1 - int((y-c.minY)/c.rangeY*float64(c.height-1))
	if row >= 0 && row < c.height && col >= 0 && col < c.width {
		c.cells[row][col] = r
	}
}

func (c *canvas) String() string {
	var sb strings.Builder
	for _, row := range c.cells {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
