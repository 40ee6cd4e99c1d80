package publisher

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClient struct {
	chat      tgbotapi.Chat
	chatErr   error
	member    tgbotapi.ChatMember
	memberErr error
	sendErr   error

	chatConfigs   []tgbotapi.ChatInfoConfig
	memberConfigs []tgbotapi.GetChatMemberConfig
	sent          []tgbotapi.Chattable
}

func (f *fakeClient) GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error) {
	f.chatConfigs = append(f.chatConfigs, config)
	return f.chat, f.chatErr
}

func (f *fakeClient) GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	f.memberConfigs = append(f.memberConfigs, config)
	return f.member, f.memberErr
}

func (f *fakeClient) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	return tgbotapi.Message{MessageID: 77}, nil
}

func TestTelegram_ResolveChatByUsername(t *testing.T) {
	client := &fakeClient{
		chat:   tgbotapi.Chat{ID: -100500, Type: "channel", Title: "News"},
		member: tgbotapi.ChatMember{Status: StatusAdministrator, CanPostMessages: true},
	}
	pub := NewTelegram(client, 999, zap.NewNop())

	info, err := pub.ResolveChat(context.Background(), "@news")
	require.NoError(t, err)

	assert.Equal(t, "News", info.Title)
	assert.True(t, info.IsChannel())
	assert.True(t, info.HasPostingRights())

	require.Len(t, client.chatConfigs, 1)
	assert.Equal(t, "@news", client.chatConfigs[0].SuperGroupUsername)
	assert.Zero(t, client.chatConfigs[0].ChatID)

	require.Len(t, client.memberConfigs, 1)
	assert.Equal(t, int64(999), client.memberConfigs[0].UserID)
}

func TestTelegram_ResolveChatNumeric(t *testing.T) {
	client := &fakeClient{chat: tgbotapi.Chat{ID: -1001234567890, Type: "supergroup"}}
	pub := NewTelegram(client, 1, zap.NewNop())

	_, err := pub.ResolveChat(context.Background(), "-1001234567890")
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234567890), client.chatConfigs[0].ChatID)
	assert.Empty(t, client.chatConfigs[0].SuperGroupUsername)
}

func TestTelegram_ResolveChatSkipsMemberLookupForNonChannels(t *testing.T) {
	client := &fakeClient{chat: tgbotapi.Chat{ID: 5, Type: "private"}}
	pub := NewTelegram(client, 1, zap.NewNop())

	info, err := pub.ResolveChat(context.Background(), "@someone")
	require.NoError(t, err)
	assert.False(t, info.IsChannel())
	assert.Empty(t, client.memberConfigs)
}

func TestTelegram_ResolveChatErrors(t *testing.T) {
	client := &fakeClient{chatErr: &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}}
	pub := NewTelegram(client, 1, zap.NewNop())

	_, err := pub.ResolveChat(context.Background(), "@missing")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	client = &fakeClient{
		chat:      tgbotapi.Chat{Type: "channel"},
		memberErr: errors.New("connection reset"),
	}
	pub = NewTelegram(client, 1, zap.NewNop())

	_, err = pub.ResolveChat(context.Background(), "@news")
	require.Error(t, err)
	assert.Equal(t, KindOther, KindOf(err))
}

func TestTelegram_SendMedia(t *testing.T) {
	client := &fakeClient{}
	pub := NewTelegram(client, 1, zap.NewNop())

	id, err := pub.SendMedia(context.Background(), "@news", Media{Kind: MediaVideo, FileID: "vid"}, "caption")
	require.NoError(t, err)
	assert.Equal(t, "77", id)

	require.Len(t, client.sent, 1)
	video, ok := client.sent[0].(tgbotapi.VideoConfig)
	require.True(t, ok)
	assert.Equal(t, "@news", video.ChannelUsername)
	assert.Equal(t, "caption", video.Caption)

	_, err = pub.SendMedia(context.Background(), "-1001", Media{Kind: MediaDocument, FileID: "doc"}, "c")
	require.NoError(t, err)
	doc, ok := client.sent[1].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-1001), doc.ChatID)
}

func TestTelegram_SendMediaCancelled(t *testing.T) {
	client := &fakeClient{}
	pub := NewTelegram(client, 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pub.SendMedia(ctx, "@news", Media{FileID: "x"}, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, client.sent)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"chat not found", &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}, KindNotFound},
		{"blocked", &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}, KindForbidden},
		{"kicked", &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was kicked from the channel chat"}, KindForbidden},
		{"bare 403", &tgbotapi.Error{Code: 403, Message: "Forbidden"}, KindForbidden},
		{"not enough rights", &tgbotapi.Error{Code: 400, Message: "Bad Request: not enough rights to send videos to the chat"}, KindInsufficientRights},
		{"write forbidden", &tgbotapi.Error{Code: 400, Message: "Bad Request: CHAT_WRITE_FORBIDDEN"}, KindInsufficientRights},
		{"admin rights", &tgbotapi.Error{Code: 403, Message: "Forbidden: bot must have administrator rights"}, KindInsufficientRights},
		{"plain error", errors.New("dial tcp: timeout"), KindOther},
		{"server error", &tgbotapi.Error{Code: 500, Message: "Internal Server Error"}, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)
			assert.Equal(t, tt.want, KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestChatInfo_HasPostingRights(t *testing.T) {
	assert.True(t, ChatInfo{Status: StatusCreator}.HasPostingRights())
	assert.True(t, ChatInfo{Status: StatusAdministrator, CanPost: true}.HasPostingRights())
	assert.False(t, ChatInfo{Status: StatusAdministrator}.HasPostingRights())
	assert.False(t, ChatInfo{Status: "member", CanPost: true}.HasPostingRights())
	assert.False(t, ChatInfo{Status: "left"}.HasPostingRights())
}
