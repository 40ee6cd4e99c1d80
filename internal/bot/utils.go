package bot

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sendMessage sends a message, logging failures
func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if b.api == nil {
		return // For testing
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("Failed to send message", zap.Error(err))
	}
}

// reply sends text to the chat of the event
func (b *Bot) reply(ev *event, text string) {
	b.sendMessage(tgbotapi.NewMessage(ev.chatID, text))
}

// replyWithKeyboard sends text with an inline keyboard
func (b *Bot) replyWithKeyboard(ev *event, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(ev.chatID, text)
	msg.ReplyMarkup = keyboard
	b.sendMessage(msg)
}

// editKeyboard replaces the text and keyboard of the message the button
// belongs to.
// Text events have no such message, so a new one is sent instead.
func (b *Bot) editKeyboard(ev *event, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	if ev.messageID == 0 {
		b.replyWithKeyboard(ev, text, keyboard)
		return
	}
	if b.api == nil {
		return // For testing
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(ev.chatID, ev.messageID, text, keyboard)
	if _, err := b.api.Request(edit); err != nil {
		b.logger.Warn("Failed to edit keyboard", zap.Error(err), zap.Int64("user_id", ev.userID))
	}
}

// answerCallback removes the loading state of a pressed button
func (b *Bot) answerCallback(id, text string) {
	if b.api == nil || id == "" {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Debug("Failed to answer callback", zap.Error(err))
	}
}

// showRootMenu sends the menu matching the user's role
func (b *Bot) showRootMenu(ev *event) {
	b.replyWithKeyboard(ev, welcomeText(ev.role, displayName(ev)), rootMenuKeyboard(ev.role))
}

// failStorage reports a persistence error and aborts the workflow
func (b *Bot) failStorage(s *Session, ev *event, action string, err error) {
	b.logger.Error("Storage operation failed",
		zap.Error(err),
		zap.Int64("user_id", ev.userID),
		zap.String("action", action),
		zap.Stringer("state", s.State),
	)
	s.Reset()
	b.reply(ev, textStorageError)
}

// failPublisher reports a platform error and aborts the workflow
func (b *Bot) failPublisher(s *Session, ev *event, action, channelID string, err error) {
	b.logger.Error("Channel operation failed",
		zap.Error(err),
		zap.Int64("user_id", ev.userID),
		zap.String("channel_id", channelID),
		zap.String("action", action),
		zap.Stringer("state", s.State),
	)
	s.Reset()
	b.reply(ev, publishErrorText(err))
}

// roleOf resolves the privilege level of a user
func (b *Bot) roleOf(ctx context.Context, userID int64) (Role, error) {
	if b.superAdmins[userID] {
		return RoleSuper, nil
	}

	admin, err := b.db.GetAdmin(ctx, userID)
	if err != nil {
		return RoleNone, err
	}
	if admin == nil {
		return RoleNone, nil
	}
	return RoleAdmin, nil
}

func (b *Bot) isSuperAdmin(userID int64) bool {
	return b.superAdmins[userID]
}

func displayName(ev *event) string {
	switch {
	case ev.name != "":
		return ev.name
	case ev.username != "":
		return "@" + ev.username
	default:
		return strconv.FormatInt(ev.userID, 10)
	}
}
