// Package publisher resolves target channels and delivers media to them.
package publisher

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Chat member statuses reported by the platform
const (
	StatusCreator       = "creator"
	StatusAdministrator = "administrator"
)

// ChatInfo describes a resolved chat and the bot's membership in it
type ChatInfo struct {
	ID      int64
	Type    string
	Title   string
	Status  string
	CanPost bool
}

// IsChannel reports whether the chat can be a publishing target
func (c ChatInfo) IsChannel() bool {
	return c.Type == "channel" || c.Type == "supergroup"
}

// HasPostingRights reports whether the bot is an admin allowed to post
func (c ChatInfo) HasPostingRights() bool {
	switch c.Status {
	case StatusCreator:
		return true
	case StatusAdministrator:
		return c.CanPost
	default:
		return false
	}
}

// MediaKind is the type of file being published
type MediaKind int

const (
	MediaVideo MediaKind = iota
	MediaDocument
)

// Media is a file already stored on the platform
type Media struct {
	Kind     MediaKind
	FileID   string
	FileSize int
}

// Publisher is the channel-facing side of the bot
type Publisher interface {
	ResolveChat(ctx context.Context, channelRef string) (ChatInfo, error)
	SendMedia(ctx context.Context, channelRef string, media Media, caption string) (string, error)
}

// Client is the subset of the Telegram Bot API used for publishing.
// *tgbotapi.BotAPI satisfies it.
type Client interface {
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram publishes through the Bot API
type Telegram struct {
	client Client
	botID  int64
	logger *zap.Logger
}

// NewTelegram creates a publisher acting as the bot with the given user ID
func NewTelegram(client Client, botID int64, logger *zap.Logger) *Telegram {
	return &Telegram{client: client, botID: botID, logger: logger}
}

// ResolveChat looks up the chat and the bot's membership in it
func (t *Telegram) ResolveChat(ctx context.Context, channelRef string) (ChatInfo, error) {
	if err := ctx.Err(); err != nil {
		return ChatInfo{}, err
	}

	chatID, username := splitRef(channelRef)

	chat, err := t.client.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID, SuperGroupUsername: username},
	})
	if err != nil {
		return ChatInfo{}, classify("get chat", err)
	}

	info := ChatInfo{ID: chat.ID, Type: chat.Type, Title: chat.Title}
	if !info.IsChannel() {
		return info, nil
	}

	member, err := t.client.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID:             chatID,
			SuperGroupUsername: username,
			UserID:             t.botID,
		},
	})
	if err != nil {
		return info, classify("get chat member", err)
	}

	info.Status = member.Status
	info.CanPost = member.CanPostMessages
	return info, nil
}

// SendMedia posts the file with the caption and returns the message ID
func (t *Telegram) SendMedia(ctx context.Context, channelRef string, media Media, caption string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	chatID, username := splitRef(channelRef)
	file := tgbotapi.FileID(media.FileID)

	var msg tgbotapi.Chattable
	switch media.Kind {
	case MediaVideo:
		cfg := tgbotapi.NewVideo(chatID, file)
		cfg.ChannelUsername = username
		cfg.Caption = caption
		msg = cfg
	case MediaDocument:
		cfg := tgbotapi.NewDocument(chatID, file)
		cfg.ChannelUsername = username
		cfg.Caption = caption
		msg = cfg
	default:
		return "", fmt.Errorf("unsupported media kind %d", media.Kind)
	}

	sent, err := t.client.Send(msg)
	if err != nil {
		return "", classify("send media", err)
	}

	t.logger.Debug("Media published",
		zap.String("channel_id", channelRef),
		zap.Int("message_id", sent.MessageID),
	)
	return strconv.Itoa(sent.MessageID), nil
}

// splitRef turns a canonical reference into a numeric chat ID or an @username
func splitRef(ref string) (int64, string) {
	if !strings.HasPrefix(ref, "@") {
		if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
			return id, ""
		}
	}
	return 0, ref
}
