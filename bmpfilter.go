// Package bmpfilter reads and writes uncompressed 24-bit BMP files and applies
// pixel filters (blur, grayscale, reflect, sepia) to their pixel grids.
//
// Rows are kept in the order they are stored in the file. The sign of the
// height field is carried through untouched, so a decoded, filtered and
// re-encoded bitmap keeps its original layout byte for byte.
package bmpfilter

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"runtime"
	"sync"
)

// Standard error types for BMP decoding and filtering.
var (
	ErrNoBitmap      = errors.New("not a BMP file")
	ErrUnsupported   = errors.New("unsupported format")
	ErrOutOfMemory   = errors.New("out of memory")
	ErrUnknownFilter = errors.New("unknown filter")
)

// IsFormatError reports whether err was caused by a header that failed validation.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrNoBitmap) || errors.Is(err, ErrUnsupported)
}

// DefaultMaxPixels is the largest grid Decode allocates when Options.MaxPixels is zero.
const DefaultMaxPixels = 1 << 28

// Options specifies decoding and filtering parameters.
type Options struct {
	// Workers is the number of goroutines a filter may use.
	// Zero means runtime.GOMAXPROCS(0); one runs the filter sequentially.
	Workers int
	// MaxPixels limits width*height of a decoded image.
	// Zero means DefaultMaxPixels.
	MaxPixels int
}

func (o *Options) workers() int {
	if o == nil || o.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}

	return o.Workers
}

func (o *Options) maxPixels() int {
	if o == nil || o.MaxPixels <= 0 {
		return DefaultMaxPixels
	}

	return o.MaxPixels
}

func firstOption(opts []*Options) *Options {
	if len(opts) > 0 {
		return opts[0]
	}

	return nil
}

// Bitmap is a decoded 24-bit BMP: both headers as read and the pixel rows in storage order.
type Bitmap struct {
	File   FileHeader
	Info   InfoHeader
	Pixels *Grid
}

// TopDown reports whether the first stored row is the top of the picture.
func (b *Bitmap) TopDown() bool {
	return b.Info.Height < 0
}

// Image returns a copy of the pixels as an [image.RGBA] in display orientation.
func (b *Bitmap) Image() *image.RGBA {
	h, w := b.Pixels.Height(), b.Pixels.Width()
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for row := 0; row < h; row++ {
		y := h - 1 - row
		if b.TopDown() {
			y = row
		}

		for col, p := range b.Pixels.Row(row) {
			img.SetRGBA(col, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff})
		}
	}

	return img
}

// A pool of row buffers to reduce allocations across Decode and Encode calls.
var rowBufferPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 4096)

		return &b
	},
}

func getRowBuffer(n int) *[]byte {
	bufPtr := rowBufferPool.Get().(*[]byte)
	if cap(*bufPtr) < n {
		*bufPtr = make([]byte, n)
	}
	*bufPtr = (*bufPtr)[:n]

	return bufPtr
}

// Decode reads a 24-bit uncompressed BMP from r.
// It accepts an optional Options struct; only MaxPixels is used.
func Decode(r io.Reader, opts ...*Options) (*Bitmap, error) {
	br := bufio.NewReader(r)

	fh, ih, err := readHeaders(br)
	if err != nil {
		return nil, err
	}

	height, width := ih.dimensions()
	if err := checkAllocation(height, width, firstOption(opts).maxPixels()); err != nil {
		return nil, err
	}

	grid := NewGrid(height, width)
	padding := Padding(width)

	// Each row is read together with its padding in one call.
	bufPtr := getRowBuffer(width*3 + padding)
	defer rowBufferPool.Put(bufPtr)
	buf := *bufPtr

	for row := 0; row < height; row++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("reading row %d: %w", row, noEOF(err))
		}

		unpackRow(grid.Row(row), buf)
	}

	return &Bitmap{File: fh, Info: ih, Pixels: grid}, nil
}

// DecodeConfig returns the color model and dimensions of a BMP image without decoding the pixel data.
// Height is the number of rows regardless of the stored orientation.
func DecodeConfig(r io.Reader) (image.Config, error) {
	_, ih, err := readHeaders(r)
	if err != nil {
		return image.Config{}, err
	}

	height, width := ih.dimensions()
	if width < 0 {
		return image.Config{}, fmt.Errorf("negative width %d: %w", width, ErrUnsupported)
	}

	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      width,
		Height:     height,
	}, nil
}

// Encode writes b to w. The headers are written exactly as stored in b, followed by
// every row of b.Pixels and its zero padding.
func Encode(w io.Writer, b *Bitmap) error {
	if b == nil || b.Pixels == nil {
		return fmt.Errorf("nil bitmap: %w", ErrUnsupported)
	}

	height, width := b.Info.dimensions()
	if b.Pixels.Height() != height || b.Pixels.Width() != width {
		return fmt.Errorf("grid %dx%d does not match header %dx%d: %w",
			b.Pixels.Width(), b.Pixels.Height(), width, height, ErrUnsupported)
	}

	bw := bufio.NewWriter(w)

	if err := writeHeaders(bw, b.File, b.Info); err != nil {
		return err
	}

	padding := Padding(width)

	bufPtr := getRowBuffer(width*3 + padding)
	defer rowBufferPool.Put(bufPtr)
	buf := *bufPtr

	for row := 0; row < height; row++ {
		packRow(buf, b.Pixels.Row(row))
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}

	return nil
}

// Padding returns the number of zero bytes that follow each stored row of the given width.
func Padding(width int) int {
	return (4 - (width*3)%4) % 4
}

// checkAllocation refuses grids that cannot be addressed or exceed maxPixels.
func checkAllocation(height, width, maxPixels int) error {
	if width < 0 || height < 0 {
		return ErrOutOfMemory
	}

	rows := max(height, 1)
	if width > maxPixels/rows {
		return fmt.Errorf("%dx%d exceeds %d pixels: %w", width, height, maxPixels, ErrOutOfMemory)
	}

	return nil
}

// unpackRow converts packed BGR bytes into pixels. Bytes past len(dst)*3 are ignored.
func unpackRow(dst []Pixel, src []byte) {
	for i := range dst {
		j := i * 3
		dst[i] = Pixel{B: src[j], G: src[j+1], R: src[j+2]}
	}
}

// packRow writes src as packed BGR bytes into dst and zeroes the remaining padding bytes.
func packRow(dst []byte, src []Pixel) {
	for i, p := range src {
		j := i * 3
		dst[j] = p.B
		dst[j+1] = p.G
		dst[j+2] = p.R
	}

	for i := len(src) * 3; i < len(dst); i++ {
		dst[i] = 0
	}
}
