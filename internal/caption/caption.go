// Package caption builds the text attached to a published file.
package caption

import (
	"fmt"
	"strconv"
	"strings"

	"tgpublisher/internal/models"
	"tgpublisher/internal/parse"
)

// Default promotional links of the fixed layout
const (
	DefaultChannelLink = "https://t.me/+XaaureBEZzMwNDk6"
	DefaultChatLink    = "https://t.me/Anume2D"
)

// Links are the promotional links appended by the default layout
type Links struct {
	Channel string
	Chat    string
}

// DefaultLinks returns the links used when none are configured
func DefaultLinks() Links {
	return Links{Channel: DefaultChannelLink, Chat: DefaultChatLink}
}

// Render builds the caption from the channel template, or the default
// layout when tpl is nil.
func Render(ep parse.Episode, tag string, tpl *models.Template, links Links) string {
	if tpl != nil {
		return RenderTemplate(tpl.Body, ep, tag)
	}
	return RenderDefault(ep, tag, links)
}

// RenderTemplate substitutes the placeholders literally; each may occur
// any number of times.
func RenderTemplate(body string, ep parse.Episode, tag string) string {
	r := strings.NewReplacer(
		"{title}", ep.Title,
		"{season}", strconv.Itoa(ep.Season),
		"{episode}", ep.Label(),
		"{tag}", tag,
	)
	return r.Replace(body)
}

// RenderDefault produces the fixed multi-line layout.
func RenderDefault(ep parse.Episode, tag string, links Links) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎬 %s\n\n", ep.Title)
	fmt.Fprintf(&b, "📺 Сезон %d\n", ep.Season)
	fmt.Fprintf(&b, "%s\n\n", EpisodePhrase(ep))
	fmt.Fprintf(&b, "%s\n\n", tag)
	fmt.Fprintf(&b, "Наш канал: %s\n", links.Channel)
	fmt.Fprintf(&b, "Наш чат: %s", links.Chat)
	return b.String()
}

// EpisodePhrase renders "📺 Серия 5" or "📺 Серии 1-12".
func EpisodePhrase(ep parse.Episode) string {
	if ep.IsRange() {
		return "📺 Серии " + ep.Label()
	}
	return "📺 Серия " + ep.Label()
}
