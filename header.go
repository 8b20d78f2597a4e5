package bmpfilter

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Header sizes and the only field values accepted by Decode.
const (
	fileHeaderLen = 14
	infoHeaderLen = 40

	pixelOffset = fileHeaderLen + infoHeaderLen
	bitCount    = 24
	compression = 0 // BI_RGB
)

// signature is the magic number at the start of every BMP file.
var signature = [2]byte{'B', 'M'}

// FileHeader is the 14-byte BITMAPFILEHEADER.
type FileHeader struct {
	Type      [2]byte // File signature, "BM".
	Size      uint32  // Size of the whole file in bytes.
	Reserved1 uint16  // Reserved, kept as read.
	Reserved2 uint16  // Reserved, kept as read.
	OffBits   uint32  // Offset from the start of the file to the pixel array.
}

// InfoHeader is the 40-byte BITMAPINFOHEADER.
// Only Size, Width, Height, BitCount and Compression are interpreted.
type InfoHeader struct {
	Size          uint32 // Size of this header, 40.
	Width         int32  // Width in pixels.
	Height        int32  // Height in pixels; negative for top-down rows.
	Planes        uint16 // Number of color planes.
	BitCount      uint16 // Bits per pixel.
	Compression   uint32 // Compression method.
	SizeImage     uint32 // Size of the pixel array in bytes, may be zero.
	XPelsPerMeter int32  // Horizontal resolution.
	YPelsPerMeter int32  // Vertical resolution.
	ClrUsed       uint32 // Number of palette colors.
	ClrImportant  uint32 // Number of important palette colors.
}

// dimensions returns the row count and the row length in pixels.
func (h InfoHeader) dimensions() (height, width int) {
	height = int(h.Height)
	if height < 0 {
		height = -height
	}

	return height, int(h.Width)
}

// NewHeaders returns a consistent pair of headers for a top-down (height < 0)
// or bottom-up (height > 0) 24-bit bitmap.
func NewHeaders(width, height int) (FileHeader, InfoHeader) {
	rows := height
	if rows < 0 {
		rows = -rows
	}

	imageSize := (width*3 + Padding(width)) * rows

	fh := FileHeader{
		Type:    signature,
		Size:    uint32(pixelOffset + imageSize),
		OffBits: pixelOffset,
	}

	ih := InfoHeader{
		Size:      infoHeaderLen,
		Width:     int32(width),
		Height:    int32(height),
		Planes:    1,
		BitCount:  bitCount,
		SizeImage: uint32(imageSize),
	}

	return fh, ih
}

// validate checks the headers against the only profile this package handles.
func validate(fh FileHeader, ih InfoHeader) error {
	if fh.Type != signature {
		return fmt.Errorf("signature %q: %w", fh.Type[:], ErrNoBitmap)
	}

	if fh.OffBits != pixelOffset {
		return fmt.Errorf("pixel offset %d, want %d: %w", fh.OffBits, pixelOffset, ErrUnsupported)
	}

	if ih.Size != infoHeaderLen {
		return fmt.Errorf("info header size %d, want %d: %w", ih.Size, infoHeaderLen, ErrUnsupported)
	}

	if ih.BitCount != bitCount {
		return fmt.Errorf("%d bits per pixel, want %d: %w", ih.BitCount, bitCount, ErrUnsupported)
	}

	if ih.Compression != compression {
		return fmt.Errorf("compression %d: %w", ih.Compression, ErrUnsupported)
	}

	return nil
}

// readHeaders reads and validates the file header followed by the info header.
func readHeaders(r io.Reader) (FileHeader, InfoHeader, error) {
	var fh FileHeader
	var ih InfoHeader

	if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
		return fh, ih, fmt.Errorf("reading file header: %w", noEOF(err))
	}

	if err := binary.Read(r, binary.LittleEndian, &ih); err != nil {
		return fh, ih, fmt.Errorf("reading info header: %w", noEOF(err))
	}

	if err := validate(fh, ih); err != nil {
		return fh, ih, err
	}

	return fh, ih, nil
}

// writeHeaders writes both headers unchanged.
func writeHeaders(w io.Writer, fh FileHeader, ih InfoHeader) error {
	if err := binary.Write(w, binary.LittleEndian, &fh); err != nil {
		return fmt.Errorf("writing file header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, &ih); err != nil {
		return fmt.Errorf("writing info header: %w", err)
	}

	return nil
}

// noEOF turns a clean EOF into io.ErrUnexpectedEOF; a header is never optional.
func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}
