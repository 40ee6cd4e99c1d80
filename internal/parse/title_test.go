package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTitle_Single(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		title   string
		season  int
		episode int
	}{
		{name: "simple", input: "Боевой континет 1 12", title: "Боевой континет", season: 1, episode: 12},
		{name: "collapsed whitespace", input: "  Мое  Аниме  2  3  ", title: "Мое Аниме", season: 2, episode: 3},
		{name: "single word title", input: "Naruto 5 100", title: "Naruto", season: 5, episode: 100},
		{name: "tabs and newlines", input: "One\tPiece\n1 1", title: "One Piece", season: 1, episode: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ep, err := ParseTitle(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.title, ep.Title)
			assert.Equal(t, tc.season, ep.Season)
			assert.Equal(t, tc.episode, ep.Number)
			assert.False(t, ep.IsRange())
			assert.Nil(t, ep.Range)
		})
	}
}

func TestParseTitle_Range(t *testing.T) {
	ep, err := ParseTitle("Боевой континет 1 1-12")
	require.NoError(t, err)
	assert.Equal(t, "Боевой континет", ep.Title)
	assert.Equal(t, 1, ep.Season)
	require.True(t, ep.IsRange())
	assert.Equal(t, 1, ep.Range.Start)
	assert.Equal(t, 12, ep.Range.End)
	assert.Equal(t, "1-12", ep.Label())
	assert.Equal(t, 1, ep.First())
	assert.Equal(t, "#Боевой_континет", Tag(ep.Title))
}

func TestParseTitle_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  error
	}{
		{name: "empty", input: "", want: ErrEmptyInput},
		{name: "whitespace", input: "   \t ", want: ErrEmptyInput},
		{name: "one token", input: "NoNumbersHere", want: ErrTooFewTokens},
		{name: "two tokens", input: "Title 1", want: ErrTooFewTokens},
		{name: "season not integer", input: "Title one 2", want: ErrSeasonNotInteger},
		{name: "episode not integer", input: "Title 1 two", want: ErrEpisodeNotInteger},
		{name: "three part range", input: "Title 1 1-2-3", want: ErrMalformedRange},
		{name: "range missing start", input: "Title 1 -5", want: ErrMalformedRange},
		{name: "range not integer", input: "Title 1 1-x", want: ErrMalformedRange},
		{name: "range equal bounds", input: "Title 1 5-5", want: ErrRangeOrder},
		{name: "range inverted", input: "Title 1 12-1", want: ErrRangeOrder},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTitle(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseTitle_InvertedRangeNeverSwapped(t *testing.T) {
	for _, input := range []string{"X 1 3-2", "X 1 10-9", "X 2 7-7"} {
		ep, err := ParseTitle(input)
		assert.ErrorIs(t, err, ErrRangeOrder, input)
		assert.Nil(t, ep.Range, input)
	}
}

func TestEpisode_Label(t *testing.T) {
	assert.Equal(t, "5", Episode{Title: "X", Season: 1, Number: 5}.Label())
	assert.Equal(t, 5, Episode{Title: "X", Season: 1, Number: 5}.First())
	assert.Equal(t, "3-4", Episode{Title: "X", Season: 1, Range: &EpisodeRange{Start: 3, End: 4}}.Label())
}

func TestTag(t *testing.T) {
	assert.Equal(t, "#Боевой_континет", Tag("Боевой континет"))
	assert.Equal(t, "#My_Anime", Tag("  My   Anime  "))
	assert.Equal(t, "#A_B", Tag("A B"))
	assert.Equal(t, "#", Tag(""))
	// Already normalized titles produce the same tag.
	assert.Equal(t, Tag("A B"), Tag("A  B"))
}
