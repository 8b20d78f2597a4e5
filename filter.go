package bmpfilter

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Filter selects one of the pixel transformations.
type Filter int

const (
	// Blur replaces each pixel with the average of its 3x3 neighborhood.
	Blur Filter = iota + 1
	// Grayscale sets every channel to the mean of the three channels.
	Grayscale
	// Reflect mirrors every row horizontally.
	Reflect
	// Sepia applies the classic sepia tone matrix.
	Sepia
)

// Filters lists every supported filter in flag order.
var Filters = []Filter{Blur, Grayscale, Reflect, Sepia}

var filterNames = map[Filter]string{
	Blur:      "blur",
	Grayscale: "grayscale",
	Reflect:   "reflect",
	Sepia:     "sepia",
}

var filterFlags = map[Filter]byte{
	Blur:      'b',
	Grayscale: 'g',
	Reflect:   'r',
	Sepia:     's',
}

// ParseFilter returns the filter selected by a single-letter flag: b, g, r or s.
func ParseFilter(flag byte) (Filter, error) {
	for _, f := range Filters {
		if filterFlags[f] == flag {
			return f, nil
		}
	}

	return 0, fmt.Errorf("flag %q: %w", flag, ErrUnknownFilter)
}

// String returns the lower-case filter name.
func (f Filter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}

	return fmt.Sprintf("Filter(%d)", int(f))
}

// Flag returns the single-letter flag that selects f, or 0 for an unknown filter.
func (f Filter) Flag() byte {
	return filterFlags[f]
}

// Apply runs f over g in place.
// It accepts an optional Options struct; only Workers is used.
// The result does not depend on the number of workers.
func Apply(g *Grid, f Filter, opts ...*Options) error {
	if g == nil {
		return fmt.Errorf("%v on nil grid: %w", f, ErrUnsupported)
	}

	workers := firstOption(opts).workers()

	switch f {
	case Blur:
		blur(g, workers)
	case Grayscale:
		parallelRows(g.Height(), workers, func(start, end int) {
			for row := start; row < end; row++ {
				grayscaleRow(g.Row(row))
			}
		})
	case Reflect:
		parallelRows(g.Height(), workers, func(start, end int) {
			for row := start; row < end; row++ {
				reflectRow(g.Row(row))
			}
		})
	case Sepia:
		parallelRows(g.Height(), workers, func(start, end int) {
			for row := start; row < end; row++ {
				sepiaRow(g.Row(row))
			}
		})
	default:
		return fmt.Errorf("%v: %w", f, ErrUnknownFilter)
	}

	return nil
}

// parallelRows splits [0, n) into contiguous bands and runs fn on each band,
// at most workers at a time. It returns when every band is done.
func parallelRows(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers = min(workers, n)
	if workers <= 1 {
		fn(0, n)

		return
	}

	chunkSize := (n + workers - 1) / workers

	var eg errgroup.Group
	eg.SetLimit(workers)

	for start := 0; start < n; start += chunkSize {
		start := start
		end := min(start+chunkSize, n)
		eg.Go(func() error {
			fn(start, end)

			return nil
		})
	}

	_ = eg.Wait()
}
