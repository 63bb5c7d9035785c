// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"fmt"
	"io"
)

// Section selects which part of the server library inline mode reads.
type Section string

const (
	SectionMovies   Section = "movies"
	SectionSeries   Section = "series"
	SectionContinue Section = "continue"
)

// ParseSection validates a section name from the command line.
func ParseSection(s string) (Section, error) {
	switch Section(s) {
	case SectionMovies, SectionSeries, SectionContinue:
		return Section(s), nil
	default:
		return "", fmt.Errorf("unknown section %q, expected movies, series or continue", s)
	}
}

type Options struct {
	Out io.Writer
	// Section of the library to read.
	Section Section
	// SeriesID expands one series into its episode listing. Only
	// meaningful with the series section.
	SeriesID int64
	// Query filters results by fuzzy title match. Empty means all.
	Query string
	// Json switches the output from plain titles to a structured document.
	Json bool
}
