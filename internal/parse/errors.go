package parse

import "errors"

// Title parser errors
var (
	ErrEmptyInput        = errors.New("empty input")
	ErrTooFewTokens      = errors.New("expected at least 3 tokens: title season episode")
	ErrSeasonNotInteger  = errors.New("season must be an integer")
	ErrEpisodeNotInteger = errors.New("episode must be an integer or a range")
	ErrMalformedRange    = errors.New("episode range must be two integers separated by '-'")
	ErrRangeOrder        = errors.New("episode range start must be less than its end")
	ErrEmptyTitle        = errors.New("title cannot be empty")
)

// Channel reference errors
var (
	ErrUnsupportedURL = errors.New("invalid URL format")
	ErrEmptyURLPath   = errors.New("username not found in URL")
	ErrInvalidChannel = errors.New("invalid channel ID format")
)
