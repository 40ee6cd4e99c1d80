package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tgpublisher/internal/models"
	"tgpublisher/internal/parse"
)

const (
	textAssignUsage       = "Использование: /assign_channel <admin_id> <channel>"
	textRevokeUsage       = "Использование: /revoke_channel <admin_id> <channel>"
	textChannelStatsUsage = "Использование: /channel_stats <channel>"
	textStatsUsage        = "Использование: /stats [admin_id]"
)

// commandRole is the privilege a command needs
func commandRole(name string) Role {
	switch name {
	case "assign_channel", "revoke_channel", "stats", "channel_stats":
		return RoleSuper
	default:
		return RoleAdmin
	}
}

// handleCommand runs a slash command the user is allowed to run.
// Commands never enter a workflow.
func (b *Bot) handleCommand(ctx context.Context, s *Session, ev *event) {
	switch ev.command {
	case "start", "menu":
		b.handleStart(ctx, ev)
	case "cancel":
		b.replyWithKeyboard(ev, textCancelled, homeKeyboard())
	case "assign_channel":
		b.handleAssignChannelCommand(ctx, s, ev, true)
	case "revoke_channel":
		b.handleAssignChannelCommand(ctx, s, ev, false)
	case "stats":
		b.handleStatsCommand(ctx, s, ev)
	case "channel_stats":
		b.handleChannelStatsCommand(ctx, s, ev)
	case "my_channels":
		b.handleMyChannels(ctx, s, ev)
	case "my_stats":
		b.handleMyStats(ctx, s, ev)
	default:
		b.reply(ev, textUnknownCmd)
	}
}

// handleStart refreshes the stored profile and shows the root menu
func (b *Bot) handleStart(ctx context.Context, ev *event) {
	admin := models.Admin{
		UserID:   ev.userID,
		Username: ev.username,
		Name:     ev.name,
	}
	if ev.role == RoleSuper {
		admin.Role = models.RoleSuper
	}
	if err := b.db.AddAdmin(ctx, admin); err != nil {
		b.logger.Warn("Failed to refresh admin profile", zap.Error(err), zap.Int64("user_id", ev.userID))
	}

	b.showRootMenu(ev)
}

// commandChannel parses a channel argument, replying on failure
func (b *Bot) commandChannel(ev *event, arg string) (string, bool) {
	ref, err := parse.ParseChannel(arg)
	if err != nil {
		b.reply(ev, channelErrorText(err))
		return "", false
	}
	if ref.Unresolvable {
		b.reply(ev, textPrivateInvite)
		return "", false
	}
	if !channelKeyFits(ref.ID) {
		b.reply(ev, textChannelRefTooLong)
		return "", false
	}
	return ref.ID, true
}

// handleAssignChannelCommand attaches or detaches a channel of an admin.
// Unknown channels are looked up on Telegram and registered on assignment.
func (b *Bot) handleAssignChannelCommand(ctx context.Context, s *Session, ev *event, assign bool) {
	usage := textRevokeUsage
	if assign {
		usage = textAssignUsage
	}

	args := strings.Fields(ev.args)
	if len(args) != 2 {
		b.reply(ev, usage)
		return
	}
	adminID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(ev, textAdminIDInvalid)
		return
	}
	channelID, ok := b.commandChannel(ev, args[1])
	if !ok {
		return
	}

	admin, err := b.db.GetAdmin(ctx, adminID)
	if err != nil {
		b.failStorage(s, ev, ev.command, err)
		return
	}
	if admin == nil {
		b.reply(ev, textAdminMissing)
		return
	}

	ch, err := b.db.GetChannel(ctx, channelID)
	if err != nil {
		b.failStorage(s, ev, ev.command, err)
		return
	}

	if !assign {
		if ch == nil {
			b.reply(ev, textChannelMissing)
			return
		}
		if err := b.db.UnassignAdminChannel(ctx, adminID, channelID); err != nil {
			b.failStorage(s, ev, ev.command, err)
			return
		}
		b.reply(ev, fmt.Sprintf("✅ Канал %s откреплен от админа %s", ch.Name, admin.DisplayName()))
		return
	}

	var name string
	if ch == nil {
		info, err := b.pub.ResolveChat(ctx, channelID)
		if err != nil {
			b.failPublisher(s, ev, ev.command, channelID, err)
			return
		}
		if !info.IsChannel() {
			b.reply(ev, notAChannelText(info.Type))
			return
		}
		name = info.Title
		if name == "" {
			name = channelID
		}
		if err := b.db.AddChannel(ctx, channelID, name); err != nil {
			b.failStorage(s, ev, ev.command, err)
			return
		}
	} else {
		name = ch.Name
	}
	if err := b.db.AssignAdminChannel(ctx, adminID, channelID); err != nil {
		b.failStorage(s, ev, ev.command, err)
		return
	}

	b.logger.Info("Channel assigned by command",
		zap.Int64("user_id", ev.userID),
		zap.Int64("admin_id", adminID),
		zap.String("channel_id", channelID),
	)
	b.reply(ev, fmt.Sprintf("✅ Канал %s прикреплен к админу %s", name, admin.DisplayName()))
}

// handleStatsCommand shows overall statistics, or one admin's
func (b *Bot) handleStatsCommand(ctx context.Context, s *Session, ev *event) {
	if ev.args == "" {
		b.handleAllStats(ctx, s, ev)
		return
	}

	adminID, err := strconv.ParseInt(ev.args, 10, 64)
	if err != nil {
		b.reply(ev, textStatsUsage)
		return
	}
	admin, err := b.db.GetAdmin(ctx, adminID)
	if err != nil {
		b.failStorage(s, ev, "admin_stats", err)
		return
	}
	if admin == nil {
		b.reply(ev, textAdminMissing)
		return
	}

	stats, err := b.db.GetAdminStats(ctx, adminID)
	if err != nil {
		b.failStorage(s, ev, "admin_stats", err)
		return
	}
	b.reply(ev, adminStatsText("Статистика админа "+admin.DisplayName(), stats))
}

// handleChannelStatsCommand shows the uploads of one channel
func (b *Bot) handleChannelStatsCommand(ctx context.Context, s *Session, ev *event) {
	if ev.args == "" {
		b.reply(ev, textChannelStatsUsage)
		return
	}
	channelID, ok := b.commandChannel(ev, ev.args)
	if !ok {
		return
	}

	ch, err := b.db.GetChannel(ctx, channelID)
	if err != nil {
		b.failStorage(s, ev, "channel_stats", err)
		return
	}
	if ch == nil {
		b.reply(ev, textChannelMissing)
		return
	}

	stats, err := b.db.GetChannelStats(ctx, channelID)
	if err != nil {
		b.failStorage(s, ev, "channel_stats", err)
		return
	}
	b.reply(ev, channelStatsText(*ch, stats))
}

// handleAllStats shows the upload totals of every admin
func (b *Bot) handleAllStats(ctx context.Context, s *Session, ev *event) {
	s.Reset()

	totals, err := b.db.GetAllStats(ctx)
	if err != nil {
		b.failStorage(s, ev, "all_stats", err)
		return
	}
	b.replyWithKeyboard(ev, allStatsText(totals), homeKeyboard())
}

// handleMyChannels lists the channels the user may publish to
func (b *Bot) handleMyChannels(ctx context.Context, s *Session, ev *event) {
	s.Reset()

	channels, err := b.uploadChannels(ctx, ev)
	if err != nil {
		b.failStorage(s, ev, "my_channels", err)
		return
	}
	b.replyWithKeyboard(ev, myChannelsText(channels), homeKeyboard())
}

// handleMyStats shows the user's own uploads
func (b *Bot) handleMyStats(ctx context.Context, s *Session, ev *event) {
	s.Reset()

	stats, err := b.db.GetAdminStats(ctx, ev.userID)
	if err != nil {
		b.failStorage(s, ev, "my_stats", err)
		return
	}
	b.replyWithKeyboard(ev, adminStatsText("Ваша статистика", stats), homeKeyboard())
}
