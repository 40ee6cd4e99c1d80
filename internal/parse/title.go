package parse

import (
	"fmt"
	"strconv"
	"strings"
)

// EpisodeRange is an inclusive run of episodes, Start < End.
type EpisodeRange struct {
	Start int
	End   int
}

// Episode is the metadata extracted from an upload description.
// Range is nil for a single episode, in which case Number holds it.
type Episode struct {
	Title  string
	Season int
	Number int
	Range  *EpisodeRange
}

// IsRange reports whether the episode covers several episodes.
func (e Episode) IsRange() bool {
	return e.Range != nil
}

// Label renders the episode part, "5" or "1-12".
func (e Episode) Label() string {
	if e.Range != nil {
		return fmt.Sprintf("%d-%d", e.Range.Start, e.Range.End)
	}
	return strconv.Itoa(e.Number)
}

// First returns the single episode or the first episode of the range.
func (e Episode) First() int {
	if e.Range != nil {
		return e.Range.Start
	}
	return e.Number
}

// ParseTitle parses "Title Season Episode" or "Title Season Start-End".
//
// The last token is the episode, the one before it the season, and
// everything before them (whitespace collapsed) the title.
func ParseTitle(text string) (Episode, error) {
	if strings.TrimSpace(text) == "" {
		return Episode{}, ErrEmptyInput
	}

	parts := strings.Fields(text)
	if len(parts) < 3 {
		return Episode{}, ErrTooFewTokens
	}

	seasonToken := parts[len(parts)-2]
	episodeToken := parts[len(parts)-1]

	season, err := strconv.Atoi(seasonToken)
	if err != nil {
		return Episode{}, fmt.Errorf("%w: %q", ErrSeasonNotInteger, seasonToken)
	}

	title := strings.TrimSpace(strings.Join(parts[:len(parts)-2], " "))
	if title == "" {
		return Episode{}, ErrEmptyTitle
	}

	ep := Episode{Title: title, Season: season}

	if strings.Contains(episodeToken, "-") {
		bounds := strings.Split(episodeToken, "-")
		if len(bounds) != 2 {
			return Episode{}, fmt.Errorf("%w: %q", ErrMalformedRange, episodeToken)
		}
		start, err := strconv.Atoi(bounds[0])
		if err != nil {
			return Episode{}, fmt.Errorf("%w: %q", ErrMalformedRange, episodeToken)
		}
		end, err := strconv.Atoi(bounds[1])
		if err != nil {
			return Episode{}, fmt.Errorf("%w: %q", ErrMalformedRange, episodeToken)
		}
		if start >= end {
			return Episode{}, fmt.Errorf("%w: %d-%d", ErrRangeOrder, start, end)
		}
		ep.Range = &EpisodeRange{Start: start, End: end}
		return ep, nil
	}

	number, err := strconv.Atoi(episodeToken)
	if err != nil {
		return Episode{}, fmt.Errorf("%w: %q", ErrEpisodeNotInteger, episodeToken)
	}
	ep.Number = number
	return ep, nil
}
