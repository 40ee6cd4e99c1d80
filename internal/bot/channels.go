package bot

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"tgpublisher/internal/models"
	"tgpublisher/internal/parse"
	"tgpublisher/internal/publisher"
)

// Answers accepted as confirmation, compared lowercased
var affirmativeAnswers = map[string]bool{
	"да":  true,
	"yes": true,
	"y":   true,
	"+":   true,
}

// keepTitleToken as a channel name means "use the title from Telegram"
const keepTitleToken = "-"

// handleChannelsMenu shows the managed channels
func (b *Bot) handleChannelsMenu(ctx context.Context, s *Session, ev *event) {
	s.Reset()

	channels, err := b.db.GetChannels(ctx)
	if err != nil {
		b.failStorage(s, ev, "list_channels", err)
		return
	}
	b.replyWithKeyboard(ev, channelsOverviewText(channels), channelsMenuKeyboard())
}

// handleAddChannelStart asks for the channel reference
func (b *Bot) handleAddChannelStart(ctx context.Context, s *Session, ev *event) {
	s.Reset()
	s.State = StateAwaitingChannelReference
	b.replyWithKeyboard(ev, textAddChannel, backKeyboard())
}

// handleChannelReference validates the reference against Telegram
func (b *Bot) handleChannelReference(ctx context.Context, s *Session, ev *event) {
	ref, err := parse.ParseChannel(ev.text)
	if err != nil {
		b.reply(ev, channelErrorText(err))
		return
	}
	if ref.Unresolvable {
		b.reply(ev, textPrivateInvite)
		return
	}
	if !channelKeyFits(ref.ID) {
		b.reply(ev, textChannelRefTooLong)
		return
	}

	info, err := b.pub.ResolveChat(ctx, ref.ID)
	if err != nil {
		b.failPublisher(s, ev, "resolve_chat", ref.ID, err)
		return
	}
	if !info.IsChannel() {
		b.reply(ev, notAChannelText(info.Type))
		return
	}

	s.ChannelID = ref.ID
	s.ChannelTitle = info.Title

	if !info.HasPostingRights() {
		b.logger.Info("Bot lacks posting rights in channel",
			zap.Int64("user_id", ev.userID),
			zap.String("channel_id", ref.ID),
			zap.String("status", info.Status),
		)
		s.State = StateAwaitingRightsConfirmation
		b.replyWithKeyboard(ev, rightsWarningText(info.Title, info.Status == publisher.StatusAdministrator), backKeyboard())
		return
	}

	s.State = StateAwaitingChannelName
	b.replyWithKeyboard(ev, channelFoundText(info.Title, ref.ID), backKeyboard())
}

// handleRightsConfirmation continues only on an explicit yes
func (b *Bot) handleRightsConfirmation(ctx context.Context, s *Session, ev *event) {
	answer := strings.ToLower(strings.TrimSpace(ev.text))
	if !affirmativeAnswers[answer] {
		s.Reset()
		b.replyWithKeyboard(ev, textAddCancelled, homeKeyboard())
		return
	}

	s.State = StateAwaitingChannelName
	b.replyWithKeyboard(ev, rightsConfirmedText(s.ChannelTitle, s.ChannelID), backKeyboard())
}

// handleChannelName stores the channel under the given name
func (b *Bot) handleChannelName(ctx context.Context, s *Session, ev *event) {
	name := strings.TrimSpace(ev.text)
	if name == keepTitleToken || name == "" {
		name = s.ChannelTitle
	}
	if name == "" {
		name = s.ChannelID
	}

	channelID := s.ChannelID
	if err := b.db.AddChannel(ctx, channelID, name); err != nil {
		b.failStorage(s, ev, "add_channel", err)
		return
	}

	b.logger.Info("Channel added",
		zap.Int64("user_id", ev.userID),
		zap.String("channel_id", channelID),
		zap.String("name", name),
	)

	s.Reset()
	b.replyWithKeyboard(ev, channelAddedText(name, channelID), homeKeyboard())
}

// handleDeleteChannelStart lists the channels that can be removed
func (b *Bot) handleDeleteChannelStart(ctx context.Context, s *Session, ev *event) {
	s.Reset()

	channels, err := b.db.GetChannels(ctx)
	if err != nil {
		b.failStorage(s, ev, "list_channels", err)
		return
	}
	if len(channels) == 0 {
		b.replyWithKeyboard(ev, textNoChannelsToDelete, channelsMenuKeyboard())
		return
	}

	s.State = StateAwaitingChannelToDelete
	b.replyWithKeyboard(ev, textChannelDeleteList, channelPickKeyboard(channels, ActionRemoveChannel, "🗑"))
}

// handleChannelRemove deletes the pressed channel
func (b *Bot) handleChannelRemove(ctx context.Context, s *Session, ev *event) {
	ch, err := b.db.GetChannel(ctx, ev.payload.Key)
	if err != nil {
		b.failStorage(s, ev, "remove_channel", err)
		return
	}
	if ch == nil {
		b.reply(ev, textChannelMissing)
		b.handleDeleteChannelStart(ctx, s, ev)
		return
	}

	if err := b.db.RemoveChannel(ctx, ch.ID); err != nil {
		b.failStorage(s, ev, "remove_channel", err)
		return
	}

	b.logger.Info("Channel deleted",
		zap.Int64("user_id", ev.userID),
		zap.String("channel_id", ch.ID),
	)

	s.Reset()
	b.replyWithKeyboard(ev, channelDeletedText(ch.Name), rootMenuKeyboard(ev.role))
}

// findChannel returns the channel with the given ID from the list
func findChannel(channels []models.Channel, id string) *models.Channel {
	for i := range channels {
		if channels[i].ID == id {
			return &channels[i]
		}
	}
	return nil
}
