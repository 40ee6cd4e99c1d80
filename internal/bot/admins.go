package bot

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tgpublisher/internal/models"
)

// handleAdminsMenu lists all admins
func (b *Bot) handleAdminsMenu(ctx context.Context, s *Session, ev *event) {
	s.Reset()

	admins, err := b.db.GetAdmins(ctx)
	if err != nil {
		b.failStorage(s, ev, "list_admins", err)
		return
	}
	b.replyWithKeyboard(ev, adminsOverviewText(admins, b.isSuperAdmin), adminsMenuKeyboard())
}

// handleAddAdminStart asks for the new admin's user ID
func (b *Bot) handleAddAdminStart(ctx context.Context, s *Session, ev *event) {
	s.Reset()
	s.State = StateAwaitingNewAdminID
	b.replyWithKeyboard(ev, textAddAdmin, backKeyboard())
}

// handleNewAdminID registers a junior admin
func (b *Bot) handleNewAdminID(ctx context.Context, s *Session, ev *event) {
	id, err := strconv.ParseInt(strings.TrimSpace(ev.text), 10, 64)
	if err != nil || id <= 0 {
		b.reply(ev, textAdminIDInvalid)
		return
	}

	existing, err := b.db.GetAdmin(ctx, id)
	if err != nil {
		b.failStorage(s, ev, "add_admin", err)
		return
	}
	if existing != nil || b.isSuperAdmin(id) {
		s.Reset()
		b.replyWithKeyboard(ev, adminExistsText(id), homeKeyboard())
		return
	}

	if err := b.db.AddAdmin(ctx, models.Admin{UserID: id, Role: models.RoleJunior}); err != nil {
		b.failStorage(s, ev, "add_admin", err)
		return
	}

	b.logger.Info("Admin added", zap.Int64("user_id", ev.userID), zap.Int64("admin_id", id))

	s.Reset()
	b.replyWithKeyboard(ev, adminAddedText(id), homeKeyboard())
}

// manageableAdmins returns the admins without the super admins
func (b *Bot) manageableAdmins(ctx context.Context) ([]models.Admin, error) {
	admins, err := b.db.GetAdmins(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.Admin, 0, len(admins))
	for _, a := range admins {
		if !b.isSuperAdmin(a.UserID) && a.Role != models.RoleSuper {
			result = append(result, a)
		}
	}
	return result, nil
}

// handleManageAdmins shows the admin selection
func (b *Bot) handleManageAdmins(ctx context.Context, s *Session, ev *event) {
	s.Reset()

	admins, err := b.manageableAdmins(ctx)
	if err != nil {
		b.failStorage(s, ev, "list_admins", err)
		return
	}
	if len(admins) == 0 {
		b.replyWithKeyboard(ev, textNoAdmins, adminsMenuKeyboard())
		return
	}

	s.State = StateSelectingAdmin
	b.replyWithKeyboard(ev, textSelectAdmin, adminListKeyboard(admins))
}

// selectedAdmin loads the admin the session points to. When it is gone
// the user is sent back to the admin list and nil is returned.
func (b *Bot) selectedAdmin(ctx context.Context, s *Session, ev *event) *models.Admin {
	admin, err := b.db.GetAdmin(ctx, s.AdminID)
	if err != nil {
		b.failStorage(s, ev, "get_admin", err)
		return nil
	}
	if admin == nil {
		b.reply(ev, textAdminMissing)
		b.handleManageAdmins(ctx, s, ev)
		return nil
	}
	return admin
}

// handleAdminPick opens the action menu of the pressed admin
func (b *Bot) handleAdminPick(ctx context.Context, s *Session, ev *event) {
	id, ok := ev.payload.Int64Key()
	if !ok {
		return
	}

	s.AdminID = id
	admin := b.selectedAdmin(ctx, s, ev)
	if admin == nil {
		return
	}

	s.State = StateAdminActionMenu
	b.replyWithKeyboard(ev, adminActionsText(*admin), adminActionsKeyboard())
}

// handleBackToAdmin returns from the channel view to the action menu
func (b *Bot) handleBackToAdmin(ctx context.Context, s *Session, ev *event) {
	admin := b.selectedAdmin(ctx, s, ev)
	if admin == nil {
		return
	}

	s.State = StateAdminActionMenu
	b.replyWithKeyboard(ev, adminActionsText(*admin), adminActionsKeyboard())
}

// handleAdminStats shows the upload statistics of the selected admin
func (b *Bot) handleAdminStats(ctx context.Context, s *Session, ev *event) {
	admin := b.selectedAdmin(ctx, s, ev)
	if admin == nil {
		return
	}

	stats, err := b.db.GetAdminStats(ctx, admin.UserID)
	if err != nil {
		b.failStorage(s, ev, "admin_stats", err)
		return
	}
	b.reply(ev, adminStatsText("Статистика админа "+admin.DisplayName(), stats))
}

// handleAdminChannels shows the channels of the selected admin
func (b *Bot) handleAdminChannels(ctx context.Context, s *Session, ev *event) {
	admin := b.selectedAdmin(ctx, s, ev)
	if admin == nil {
		return
	}

	channels, err := b.db.GetAdminChannels(ctx, admin.UserID)
	if err != nil {
		b.failStorage(s, ev, "admin_channels", err)
		return
	}

	s.State = StateViewingAdminChannels
	b.replyWithKeyboard(ev, adminChannelsText(*admin, channels), adminChannelsKeyboard())
}

// adminToggleMarkup renders every channel with its attachment mark
func (b *Bot) adminToggleMarkup(ctx context.Context, adminID int64) ([]models.Channel, map[string]bool, error) {
	all, err := b.db.GetChannels(ctx)
	if err != nil {
		return nil, nil, err
	}
	attached, err := b.db.GetAdminChannels(ctx, adminID)
	if err != nil {
		return nil, nil, err
	}

	set := make(map[string]bool, len(attached))
	for _, ch := range attached {
		set[ch.ID] = true
	}
	return all, set, nil
}

// handleAdminAttach enters the attach/detach toggle list
func (b *Bot) handleAdminAttach(ctx context.Context, s *Session, ev *event) {
	admin := b.selectedAdmin(ctx, s, ev)
	if admin == nil {
		return
	}

	all, attached, err := b.adminToggleMarkup(ctx, admin.UserID)
	if err != nil {
		b.failStorage(s, ev, "admin_attach", err)
		return
	}
	if len(all) == 0 {
		b.reply(ev, textNoChannels)
		return
	}

	s.State = StateAwaitingChannelToggle
	b.replyWithKeyboard(ev, textToggleChannels, adminToggleKeyboard(all, attached))
}

// handleAdminToggle attaches or detaches the pressed channel and
// re-renders the list in place
func (b *Bot) handleAdminToggle(ctx context.Context, s *Session, ev *event) {
	admin := b.selectedAdmin(ctx, s, ev)
	if admin == nil {
		return
	}

	all, attached, err := b.adminToggleMarkup(ctx, admin.UserID)
	if err != nil {
		b.failStorage(s, ev, "admin_toggle", err)
		return
	}

	ch := findChannel(all, ev.payload.Key)
	if ch == nil {
		b.reply(ev, textChannelMissing)
		b.editKeyboard(ev, textToggleChannels, adminToggleKeyboard(all, attached))
		return
	}

	nowAttached := !attached[ch.ID]
	if nowAttached {
		err = b.db.AssignAdminChannel(ctx, admin.UserID, ch.ID)
	} else {
		err = b.db.UnassignAdminChannel(ctx, admin.UserID, ch.ID)
	}
	if err != nil {
		b.failStorage(s, ev, "admin_toggle", err)
		return
	}
	attached[ch.ID] = nowAttached

	b.logger.Info("Admin channel toggled",
		zap.Int64("user_id", ev.userID),
		zap.Int64("admin_id", admin.UserID),
		zap.String("channel_id", ch.ID),
		zap.Bool("attached", nowAttached),
	)

	text := channelToggledText(ch.Name, nowAttached) + "\n\n" + textToggleChannels
	b.editKeyboard(ev, text, adminToggleKeyboard(all, attached))
}

// handleAdminDelete removes the selected admin
func (b *Bot) handleAdminDelete(ctx context.Context, s *Session, ev *event) {
	admin := b.selectedAdmin(ctx, s, ev)
	if admin == nil {
		return
	}

	if err := b.db.RemoveAdmin(ctx, admin.UserID); err != nil {
		b.failStorage(s, ev, "remove_admin", err)
		return
	}

	b.logger.Info("Admin deleted", zap.Int64("user_id", ev.userID), zap.Int64("admin_id", admin.UserID))

	s.Reset()
	b.replyWithKeyboard(ev, adminDeletedText(*admin), rootMenuKeyboard(ev.role))
}
