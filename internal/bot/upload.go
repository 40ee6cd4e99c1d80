package bot

import (
	"context"

	"go.uber.org/zap"

	"tgpublisher/internal/caption"
	"tgpublisher/internal/models"
	"tgpublisher/internal/parse"
)

// uploadChannels returns the channels the user may publish to
func (b *Bot) uploadChannels(ctx context.Context, ev *event) ([]models.Channel, error) {
	if ev.role == RoleSuper {
		return b.db.GetChannels(ctx)
	}
	return b.db.GetAdminChannels(ctx, ev.userID)
}

// handleUploadStart enters the upload workflow
func (b *Bot) handleUploadStart(ctx context.Context, s *Session, ev *event) {
	s.Reset()

	if ev.role != RoleSuper {
		channels, err := b.db.GetAdminChannels(ctx, ev.userID)
		if err != nil {
			b.failStorage(s, ev, "upload_start", err)
			return
		}
		if len(channels) == 0 {
			b.replyWithKeyboard(ev, textNoAssigned, homeKeyboard())
			return
		}
	}

	s.State = StateAwaitingEpisodeInfo
	b.replyWithKeyboard(ev, textUploadStart, backKeyboard())
}

// handleEpisodeInfo parses "title season episode" and picks the channel
func (b *Bot) handleEpisodeInfo(ctx context.Context, s *Session, ev *event) {
	ep, err := parse.ParseTitle(ev.text)
	if err != nil {
		b.reply(ev, titleErrorText(err))
		return
	}

	channels, err := b.uploadChannels(ctx, ev)
	if err != nil {
		b.failStorage(s, ev, "upload_channels", err)
		return
	}
	if len(channels) == 0 {
		s.Reset()
		b.replyWithKeyboard(ev, textNoChannels, homeKeyboard())
		return
	}

	s.Episode = &ep

	// A single channel needs no selection
	if len(channels) == 1 {
		s.ChannelID = channels[0].ID
		s.State = StateAwaitingMedia
		b.replyWithKeyboard(ev, uploadAcceptedText(channels[0]), backKeyboard())
		return
	}

	s.State = StateAwaitingChannelSelection
	b.replyWithKeyboard(ev, textSelectChannel, channelPickKeyboard(channels, ActionPickChannel, "📺"))
}

// handleUploadChannelPick binds the pressed channel to the upload
func (b *Bot) handleUploadChannelPick(ctx context.Context, s *Session, ev *event) {
	channels, err := b.uploadChannels(ctx, ev)
	if err != nil {
		b.failStorage(s, ev, "upload_channels", err)
		return
	}

	selected := findChannel(channels, ev.payload.Key)
	if selected == nil {
		b.reply(ev, textChannelMissing)
		return
	}

	s.ChannelID = selected.ID
	s.State = StateAwaitingMedia
	b.replyWithKeyboard(ev, channelSelectedText(*selected), backKeyboard())
}

// handleMedia publishes the file with the rendered caption
func (b *Bot) handleMedia(ctx context.Context, s *Session, ev *event) {
	if s.Episode == nil || s.ChannelID == "" {
		s.Reset()
		b.reply(ev, "❌ Ошибка: данные не найдены. Начните заново.")
		return
	}

	if b.maxFileMB > 0 && ev.media.FileSize > b.maxFileMB*1024*1024 {
		b.reply(ev, fileTooLargeText(b.maxFileMB))
		return
	}

	// Assignments may have changed since the channel was picked
	channels, err := b.uploadChannels(ctx, ev)
	if err != nil {
		b.failStorage(s, ev, "publish", err)
		return
	}
	ch := findChannel(channels, s.ChannelID)
	if ch == nil {
		s.Reset()
		b.replyWithKeyboard(ev, textChannelMissing, homeKeyboard())
		return
	}

	tpl, err := b.db.GetChannelTemplate(ctx, ch.ID)
	if err != nil {
		b.failStorage(s, ev, "publish", err)
		return
	}

	ep := *s.Episode
	text := caption.Render(ep, parse.Tag(ep.Title), tpl, b.links)

	messageID, err := b.pub.SendMedia(ctx, ch.ID, *ev.media, text)
	if err != nil {
		b.failPublisher(s, ev, "publish", ch.ID, err)
		return
	}

	upload := models.Upload{
		AdminID:   ev.userID,
		ChannelID: ch.ID,
		Title:     ep.Title,
		Season:    ep.Season,
		Episode:   ep.First(),
		FileID:    ev.media.FileID,
		MessageID: messageID,
	}
	if err := b.db.LogUpload(ctx, upload); err != nil {
		// The file is already published; only the statistics are lost
		b.logger.Error("Failed to log upload",
			zap.Error(err),
			zap.Int64("user_id", ev.userID),
			zap.String("channel_id", ch.ID),
		)
	}

	b.logger.Info("Published",
		zap.String("title", ep.Title),
		zap.Int("season", ep.Season),
		zap.String("episode", ep.Label()),
		zap.String("channel_id", ch.ID),
		zap.Int64("user_id", ev.userID),
		zap.String("message_id", messageID),
	)

	s.Reset()
	b.replyWithKeyboard(ev, publishedText(*ch, ep), homeKeyboard())
}
