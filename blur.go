package bmpfilter

import "sync"

// A pool of pixel buffers holding the unfiltered copy of a grid during Blur.
var blurSourcePool = sync.Pool{
	New: func() interface{} {
		return new([]Pixel)
	},
}

// blur replaces every pixel of g with the rounded per-channel mean of the
// in-bounds pixels of its 3x3 neighborhood, all read from the unfiltered grid.
func blur(g *Grid, workers int) {
	if g.height == 0 || g.width == 0 {
		return
	}

	srcPtr := blurSourcePool.Get().(*[]Pixel)
	defer blurSourcePool.Put(srcPtr)

	if cap(*srcPtr) < len(g.pix) {
		*srcPtr = make([]Pixel, len(g.pix))
	}
	*srcPtr = (*srcPtr)[:len(g.pix)]
	copy(*srcPtr, g.pix)

	src := &Grid{pix: *srcPtr, height: g.height, width: g.width}

	parallelRows(g.height, workers, func(start, end int) {
		for row := start; row < end; row++ {
			blurRow(g.Row(row), src, row)
		}
	})
}

// blurRow computes one output row of the box blur from src.
func blurRow(dst []Pixel, src *Grid, row int) {
	top := max(row-1, 0)
	bottom := min(row+1, src.height-1)

	for col := range dst {
		left := max(col-1, 0)
		right := min(col+1, src.width-1)

		var sumB, sumG, sumR, n int
		for y := top; y <= bottom; y++ {
			for _, p := range src.Row(y)[left : right+1] {
				sumB += int(p.B)
				sumG += int(p.G)
				sumR += int(p.R)
				n++
			}
		}

		dst[col] = Pixel{B: roundDiv(sumB, n), G: roundDiv(sumG, n), R: roundDiv(sumR, n)}
	}
}
