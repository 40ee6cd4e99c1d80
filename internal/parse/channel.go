package parse

import (
	"strings"
)

// ChannelRef is a canonical channel identifier (@username or -100…).
// Unresolvable marks a private invite link: the caller has to ask for the
// numeric ID instead, ID is empty in that case.
type ChannelRef struct {
	ID           string
	Unresolvable bool
}

// ParseChannel normalizes a handle, t.me link or numeric ID.
func ParseChannel(text string) (ChannelRef, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChannelRef{}, ErrEmptyInput
	}

	if strings.HasPrefix(text, "-100") {
		if !isDigits(text[1:]) {
			return ChannelRef{}, ErrInvalidChannel
		}
		return ChannelRef{ID: text}, nil
	}

	if strings.HasPrefix(text, "@") {
		return ChannelRef{ID: text}, nil
	}

	if strings.Contains(text, "t.me/") || strings.Contains(text, "telegram.me/") {
		return parseChannelURL(text)
	}

	if strings.HasPrefix(text, "-") {
		return ChannelRef{}, ErrInvalidChannel
	}

	// Anything else is taken as a bare username, validated later against
	// the live chat lookup.
	return ChannelRef{ID: "@" + text}, nil
}

func parseChannelURL(text string) (ChannelRef, error) {
	text = strings.TrimPrefix(text, "https://")
	text = strings.TrimPrefix(text, "http://")

	var path string
	switch {
	case strings.HasPrefix(text, "t.me/"):
		path = strings.TrimPrefix(text, "t.me/")
	case strings.HasPrefix(text, "telegram.me/"):
		path = strings.TrimPrefix(text, "telegram.me/")
	default:
		return ChannelRef{}, ErrUnsupportedURL
	}

	if strings.HasPrefix(path, "+") {
		return ChannelRef{Unresolvable: true}, nil
	}

	username, _, _ := strings.Cut(path, "?")
	username, _, _ = strings.Cut(username, "/")
	username = strings.TrimSpace(username)
	if username == "" {
		return ChannelRef{}, ErrEmptyURLPath
	}
	return ChannelRef{ID: "@" + username}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
