package filter

import (
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/extractor"
)

/*
YearFilter decides, before any detail fetch happens, whether a listing entry
is worth processing. Filtering here rather than after the detail fetch is the
central performance contract of the pipeline: rejected refs cost zero
network I/O beyond the listing page itself.
*/
type YearFilter struct {
	acceptedYears map[string]struct{}
}

// NewYearFilter builds a filter from the configured year strings.
// A nil or empty slice means no filter: everything is accepted.
func NewYearFilter(years []string) YearFilter {
	if len(years) == 0 {
		return YearFilter{}
	}
	accepted := make(map[string]struct{}, len(years))
	for _, year := range years {
		if year != "" {
			accepted[year] = struct{}{}
		}
	}
	return YearFilter{acceptedYears: accepted}
}

// Active reports whether a year filter is configured.
func (f *YearFilter) Active() bool {
	return len(f.acceptedYears) > 0
}

// Accepts applies the year predicate to a listing entry.
// With an active filter, entries whose year could not be parsed are
// rejected (fail-closed); with no filter, everything passes.
func (f *YearFilter) Accepts(ref extractor.EpisodeRef) bool {
	if !f.Active() {
		return true
	}
	if !ref.HasReleaseYear() {
		return false
	}
	_, ok := f.acceptedYears[ref.ReleaseYear()]
	return ok
}
