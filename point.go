package bmpfilter

import "math"

// Sepia tone coefficients, rows produce red, green and blue.
const (
	sepiaRR = 0.393
	sepiaRG = 0.769
	sepiaRB = 0.189

	sepiaGR = 0.349
	sepiaGG = 0.686
	sepiaGB = 0.168

	sepiaBR = 0.272
	sepiaBG = 0.534
	sepiaBB = 0.131
)

// clamp rounds x half away from zero and clamps it to the 8-bit range [0, 255].
func clamp(x float64) uint8 {
	x = math.Round(x)
	if x < 0 {
		return 0
	}

	if x > 255 {
		return 255
	}

	return uint8(x)
}

// roundDiv returns sum/n rounded half away from zero for non-negative sum and positive n.
func roundDiv(sum, n int) uint8 {
	return uint8((2*sum + n) / (2 * n))
}

// grayscaleRow sets every channel of each pixel to the rounded mean of its channels.
func grayscaleRow(row []Pixel) {
	for i, p := range row {
		avg := roundDiv(int(p.B)+int(p.G)+int(p.R), 3)
		row[i] = Pixel{B: avg, G: avg, R: avg}
	}
}

// sepiaRow applies the sepia matrix to each pixel.
func sepiaRow(row []Pixel) {
	for i, p := range row {
		r, g, b := float64(p.R), float64(p.G), float64(p.B)

		// Explicit float64 conversions keep every product rounded on its own,
		// which forbids fused multiply-add and keeps results identical across GOARCH.
		row[i] = Pixel{
			R: clamp(float64(sepiaRR*r) + float64(sepiaRG*g) + float64(sepiaRB*b)),
			G: clamp(float64(sepiaGR*r) + float64(sepiaGG*g) + float64(sepiaGB*b)),
			B: clamp(float64(sepiaBR*r) + float64(sepiaBG*g) + float64(sepiaBB*b)),
		}
	}
}
