package bmpfilter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// gridFromRGB builds a grid from rows of {R, G, B} triples.
func gridFromRGB(rows [][][3]uint8) *Grid {
	g := NewGrid(len(rows), len(rows[0]))
	for row, pixels := range rows {
		for col, c := range pixels {
			g.Set(row, col, Pixel{R: c[0], G: c[1], B: c[2]})
		}
	}

	return g
}

// pixels returns the grid contents as nested slices for cmp.Diff.
func pixels(g *Grid) [][]Pixel {
	out := make([][]Pixel, g.Height())
	for row := range out {
		out[row] = append([]Pixel(nil), g.Row(row)...)
	}

	return out
}

// patternGrid returns a grid filled with testPixel values.
func patternGrid(height, width int) *Grid {
	g := NewGrid(height, width)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			g.Set(row, col, testPixel(row, col))
		}
	}

	return g
}

// TestParseFilter verifies the flag letters and names of every filter.
func TestParseFilter(t *testing.T) {
	testCases := []struct {
		flag byte
		want Filter
		name string
	}{
		{'b', Blur, "blur"},
		{'g', Grayscale, "grayscale"},
		{'r', Reflect, "reflect"},
		{'s', Sepia, "sepia"},
	}

	for _, tc := range testCases {
		got, err := ParseFilter(tc.flag)
		if err != nil {
			t.Fatalf("ParseFilter(%q): %v", tc.flag, err)
		}

		if got != tc.want || got.String() != tc.name || got.Flag() != tc.flag {
			t.Errorf("ParseFilter(%q) = %v (%q, %q), want %v", tc.flag, got, got.String(), got.Flag(), tc.want)
		}
	}

	for _, flag := range []byte{'x', 'B', 0} {
		if _, err := ParseFilter(flag); !errors.Is(err, ErrUnknownFilter) {
			t.Errorf("ParseFilter(%q) error = %v, want ErrUnknownFilter", flag, err)
		}
	}
}

// TestApplyUnknownFilter verifies that values outside the enumeration are rejected without touching the grid.
func TestApplyUnknownFilter(t *testing.T) {
	g := patternGrid(3, 3)
	before := g.Clone()

	for _, f := range []Filter{0, Sepia + 1, -1} {
		if err := Apply(g, f); !errors.Is(err, ErrUnknownFilter) {
			t.Errorf("Apply(%v) error = %v, want ErrUnknownFilter", f, err)
		}
	}

	if !g.Equal(before) {
		t.Errorf("rejected filter modified the grid")
	}

	if err := Apply(nil, Blur); err == nil {
		t.Errorf("Apply on nil grid succeeded")
	}

	if got := Filter(9).String(); got != "Filter(9)" {
		t.Errorf("Filter(9).String() = %q", got)
	}
}

// TestGrayscale verifies the rounded mean and that all channels end up equal.
func TestGrayscale(t *testing.T) {
	g := gridFromRGB([][][3]uint8{
		{{27, 28, 28}, {1, 2, 2}, {0, 0, 1}},
		{{255, 254, 254}, {255, 255, 255}, {0, 0, 0}},
	})

	if err := Apply(g, Grayscale); err != nil {
		t.Fatal(err)
	}

	want := gridFromRGB([][][3]uint8{
		{{28, 28, 28}, {2, 2, 2}, {0, 0, 0}},
		{{254, 254, 254}, {255, 255, 255}, {0, 0, 0}},
	})

	if diff := cmp.Diff(pixels(want), pixels(g)); diff != "" {
		t.Errorf("Grayscale mismatch (-want +got):\n%s", diff)
	}

	p := patternGrid(17, 23)
	if err := Apply(p, Grayscale); err != nil {
		t.Fatal(err)
	}

	for row := 0; row < p.Height(); row++ {
		for col, px := range p.Row(row) {
			if px.R != px.G || px.G != px.B {
				t.Fatalf("pixel (%d, %d) = %v is not gray", row, col, px)
			}
		}
	}
}

// TestReflect verifies row reversal and that reflecting twice restores the input.
func TestReflect(t *testing.T) {
	g := gridFromRGB([][][3]uint8{
		{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}},
		{{4, 4, 4}, {5, 5, 5}, {6, 6, 6}},
	})

	if err := Apply(g, Reflect); err != nil {
		t.Fatal(err)
	}

	want := gridFromRGB([][][3]uint8{
		{{3, 3, 3}, {2, 2, 2}, {1, 1, 1}},
		{{6, 6, 6}, {5, 5, 5}, {4, 4, 4}},
	})

	if diff := cmp.Diff(pixels(want), pixels(g)); diff != "" {
		t.Errorf("Reflect mismatch (-want +got):\n%s", diff)
	}

	for _, width := range []int{1, 2, 5, 8} {
		p := patternGrid(4, width)
		orig := p.Clone()

		_ = Apply(p, Reflect)
		_ = Apply(p, Reflect)

		if diff := cmp.Diff(pixels(orig), pixels(p)); diff != "" {
			t.Errorf("width %d: double reflect mismatch (-want +got):\n%s", width, diff)
		}
	}
}

// TestSepia verifies the sepia matrix with rounding and clamping.
func TestSepia(t *testing.T) {
	testCases := []struct {
		in, want [3]uint8
	}{
		{[3]uint8{0, 0, 0}, [3]uint8{0, 0, 0}},
		{[3]uint8{1, 1, 1}, [3]uint8{1, 1, 1}},
		{[3]uint8{20, 40, 80}, [3]uint8{54, 48, 37}},
		{[3]uint8{10, 20, 30}, [3]uint8{25, 22, 17}},
		{[3]uint8{100, 50, 25}, [3]uint8{82, 73, 57}},
		{[3]uint8{127, 64, 200}, [3]uint8{137, 122, 95}},
		// Red and green saturate; blue is 0.937*255 rounded.
		{[3]uint8{255, 255, 255}, [3]uint8{255, 255, 239}},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprint(tc.in), func(t *testing.T) {
			g := gridFromRGB([][][3]uint8{{tc.in}})
			if err := Apply(g, Sepia); err != nil {
				t.Fatal(err)
			}

			got := g.At(0, 0)
			if got != (Pixel{R: tc.want[0], G: tc.want[1], B: tc.want[2]}) {
				t.Errorf("Sepia(%v) = RGB{%d, %d, %d}, want %v", tc.in, got.R, got.G, got.B, tc.want)
			}
		})
	}
}

// TestBlur verifies the 3x3 box average, including corners and edges.
func TestBlur(t *testing.T) {
	g := gridFromRGB([][][3]uint8{
		{{10, 20, 30}, {40, 50, 60}, {70, 80, 90}},
		{{110, 130, 140}, {120, 140, 150}, {130, 150, 160}},
		{{200, 210, 220}, {220, 230, 240}, {240, 250, 255}},
	})

	if err := Apply(g, Blur); err != nil {
		t.Fatal(err)
	}

	want := gridFromRGB([][][3]uint8{
		{{70, 85, 95}, {80, 95, 105}, {90, 105, 115}},
		{{117, 130, 140}, {127, 140, 149}, {137, 150, 159}},
		{{163, 178, 188}, {170, 185, 194}, {178, 193, 201}},
	})

	if diff := cmp.Diff(pixels(want), pixels(g)); diff != "" {
		t.Errorf("Blur mismatch (-want +got):\n%s", diff)
	}
}

// TestBlurUniform verifies that blurring identical pixels leaves them unchanged for small shapes.
func TestBlurUniform(t *testing.T) {
	white := Pixel{B: 255, G: 255, R: 255}

	for _, size := range [][2]int{{1, 1}, {1, 4}, {4, 1}, {2, 2}, {3, 5}} {
		g := NewGrid(size[0], size[1])
		for row := 0; row < size[0]; row++ {
			for col := 0; col < size[1]; col++ {
				g.Set(row, col, white)
			}
		}
		want := g.Clone()

		if err := Apply(g, Blur); err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(pixels(want), pixels(g)); diff != "" {
			t.Errorf("%dx%d: uniform blur mismatch (-want +got):\n%s", size[1], size[0], diff)
		}
	}
}

// TestBlurRounding verifies that exact halves round up at corners (4 cells) and edges (6 cells).
func TestBlurRounding(t *testing.T) {
	g := gridFromRGB([][][3]uint8{
		{{2, 3, 0}, {0, 0, 0}},
		{{0, 0, 0}, {0, 0, 0}},
	})

	if err := Apply(g, Blur); err != nil {
		t.Fatal(err)
	}

	// 2/4 = 0.5 rounds to 1, 3/4 = 0.75 rounds to 1.
	if got := g.At(1, 1); got != (Pixel{R: 1, G: 1}) {
		t.Errorf("corner = %v, want R=1 G=1", got)
	}

	e := gridFromRGB([][][3]uint8{
		{{3, 0, 0}, {0, 0, 0}, {0, 0, 0}},
		{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
	})

	if err := Apply(e, Blur); err != nil {
		t.Fatal(err)
	}

	// The top edge pixel averages 6 cells: 3/6 = 0.5 rounds to 1.
	if got := e.At(0, 1); got.R != 1 {
		t.Errorf("edge R = %d, want 1", got.R)
	}

	// (0, 2) does not see (0, 0).
	if got := e.At(0, 2); got.R != 0 {
		t.Errorf("far corner R = %d, want 0", got.R)
	}
}

// TestApplyWorkersIndependent verifies that parallel and sequential runs produce identical grids.
func TestApplyWorkersIndependent(t *testing.T) {
	for _, f := range Filters {
		t.Run(f.String(), func(t *testing.T) {
			seq := patternGrid(37, 29)
			if err := Apply(seq, f, &Options{Workers: 1}); err != nil {
				t.Fatal(err)
			}

			for _, workers := range []int{2, 3, 8, 64} {
				par := patternGrid(37, 29)
				if err := Apply(par, f, &Options{Workers: workers}); err != nil {
					t.Fatal(err)
				}

				if diff := cmp.Diff(pixels(seq), pixels(par)); diff != "" {
					t.Errorf("workers=%d differs from sequential (-seq +par):\n%s", workers, diff)
				}
			}
		})
	}
}

// TestApplyEmptyGrid verifies that every filter accepts a grid without pixels.
func TestApplyEmptyGrid(t *testing.T) {
	for _, f := range Filters {
		for _, g := range []*Grid{NewGrid(0, 0), NewGrid(0, 5), NewGrid(5, 0)} {
			if err := Apply(g, f); err != nil {
				t.Errorf("Apply(%v) on %dx%d: %v", f, g.Width(), g.Height(), err)
			}
		}
	}
}

func benchmarkFilter(b *testing.B, f Filter, opts *Options) {
	src := patternGrid(480, 640)
	g := src.Clone()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		g.CopyFrom(src)
		if err := Apply(g, f, opts); err != nil {
			b.Fatalf("Apply(%v): %v", f, err)
		}
	}
}

func BenchmarkBlur(b *testing.B)           { benchmarkFilter(b, Blur, nil) }
func BenchmarkBlurSequential(b *testing.B) { benchmarkFilter(b, Blur, &Options{Workers: 1}) }
func BenchmarkGrayscale(b *testing.B)      { benchmarkFilter(b, Grayscale, nil) }
func BenchmarkReflect(b *testing.B)        { benchmarkFilter(b, Reflect, nil) }
func BenchmarkSepia(b *testing.B)          { benchmarkFilter(b, Sepia, nil) }
