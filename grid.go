package bmpfilter

import "fmt"

// Pixel is one 24-bit pixel in the blue, green, red order used on disk.
type Pixel struct {
	B, G, R uint8
}

// Grid is a height×width matrix of pixels stored row by row.
type Grid struct {
	pix    []Pixel
	height int
	width  int
}

// NewGrid returns a zeroed grid. It panics if either dimension is negative.
func NewGrid(height, width int) *Grid {
	if height < 0 || width < 0 {
		panic(fmt.Sprintf("bmpfilter: negative grid dimensions %dx%d", width, height))
	}

	return &Grid{
		pix:    make([]Pixel, height*width),
		height: height,
		width:  width,
	}
}

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Width returns the number of pixels per row.
func (g *Grid) Width() int { return g.width }

// In reports whether (row, col) lies inside the grid.
func (g *Grid) In(row, col int) bool {
	return row >= 0 && row < g.height && col >= 0 && col < g.width
}

// At returns the pixel at (row, col), or the zero Pixel outside the grid.
func (g *Grid) At(row, col int) Pixel {
	if !g.In(row, col) {
		return Pixel{}
	}

	return g.pix[row*g.width+col]
}

// Set stores p at (row, col). Points outside the grid are ignored.
func (g *Grid) Set(row, col int, p Pixel) {
	if !g.In(row, col) {
		return
	}

	g.pix[row*g.width+col] = p
}

// Row returns the pixels of one row. The slice shares memory with the grid.
func (g *Grid) Row(row int) []Pixel {
	start := row * g.width

	return g.pix[start : start+g.width : start+g.width]
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		pix:    make([]Pixel, len(g.pix)),
		height: g.height,
		width:  g.width,
	}
	copy(c.pix, g.pix)

	return c
}

// CopyFrom overwrites g with the pixels of src, which must have the same dimensions.
func (g *Grid) CopyFrom(src *Grid) {
	if g.height != src.height || g.width != src.width {
		panic(fmt.Sprintf("bmpfilter: CopyFrom %dx%d into %dx%d", src.width, src.height, g.width, g.height))
	}

	copy(g.pix, src.pix)
}

// Equal reports whether both grids have the same dimensions and pixels.
func (g *Grid) Equal(o *Grid) bool {
	if g.height != o.height || g.width != o.width {
		return false
	}

	for i := range g.pix {
		if g.pix[i] != o.pix[i] {
			return false
		}
	}

	return true
}
