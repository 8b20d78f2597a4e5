// Command filter applies one pixel filter to a 24-bit BMP file.
//
// Usage:
//
//	filter [-b|-g|-r|-s] infile outfile
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/gen2brain/bmpfilter"
)

// Exit codes reported to the shell.
const (
	exitOK = iota
	exitInvalidFilter
	exitManyFilters
	exitUsage
	exitOpenInput
	exitCreateOutput
	exitUnsupported
	exitOutOfMemory
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command with args (program name excluded) and returns the exit code.
func run(args []string, stderr io.Writer) int {
	fs := pflag.NewFlagSet("filter", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	counts := make(map[bmpfilter.Filter]*int, len(bmpfilter.Filters))
	for _, f := range bmpfilter.Filters {
		counts[f] = fs.CountP(f.String(), string(f.Flag()), "apply the "+f.String()+" filter")
	}

	parseErr := fs.Parse(args)

	var selected []bmpfilter.Filter
	for _, f := range bmpfilter.Filters {
		for i := 0; i < *counts[f]; i++ {
			selected = append(selected, f)
		}
	}

	// Parsing stops at the first bad flag; a filter seen before it makes
	// the bad flag count as a second filter.
	switch {
	case len(selected) == 0:
		fmt.Fprintln(stderr, "Invalid filter.")

		return exitInvalidFilter
	case len(selected) > 1 || parseErr != nil:
		fmt.Fprintln(stderr, "Only one filter allowed.")

		return exitManyFilters
	}

	if fs.NArg() != 2 {
		fmt.Fprintln(stderr, "Usage: filter [flag] infile outfile")

		return exitUsage
	}

	return filterFile(selected[0], fs.Arg(0), fs.Arg(1), stderr)
}

// filterFile decodes inPath, applies f and encodes the result to outPath.
// Both files are closed on every return path.
func filterFile(f bmpfilter.Filter, inPath, outPath string, stderr io.Writer) int {
	in, err := os.Open(inPath)
	if err != nil {
		fmt.Fprintf(stderr, "Could not open %s.\n", inPath)

		return exitOpenInput
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(stderr, "Could not create %s.\n", outPath)

		return exitCreateOutput
	}
	defer out.Close()

	bmp, err := bmpfilter.Decode(in)
	if err != nil {
		switch {
		case bmpfilter.IsFormatError(err):
			fmt.Fprintln(stderr, "Unsupported file format.")

			return exitUnsupported
		case errors.Is(err, bmpfilter.ErrOutOfMemory):
			fmt.Fprintln(stderr, "Not enough memory to store image.")

			return exitOutOfMemory
		default:
			fmt.Fprintf(stderr, "Could not read %s: %v\n", inPath, err)

			return exitOpenInput
		}
	}

	if err := bmpfilter.Apply(bmp.Pixels, f); err != nil {
		fmt.Fprintln(stderr, "Invalid filter.")

		return exitInvalidFilter
	}

	if err := bmpfilter.Encode(out, bmp); err != nil {
		fmt.Fprintf(stderr, "Could not write %s: %v\n", outPath, err)

		return exitCreateOutput
	}

	if err := out.Close(); err != nil {
		fmt.Fprintf(stderr, "Could not write %s: %v\n", outPath, err)

		return exitCreateOutput
	}

	return exitOK
}
