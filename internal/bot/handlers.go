package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tgpublisher/internal/publisher"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil {
		return
	}

	ev := &event{
		userID:   message.From.ID,
		chatID:   message.Chat.ID,
		username: message.From.UserName,
		name:     strings.TrimSpace(message.From.FirstName + " " + message.From.LastName),
	}

	switch {
	case message.IsCommand():
		ev.command = message.Command()
		ev.args = strings.TrimSpace(message.CommandArguments())
	case message.Video != nil:
		ev.media = &publisher.Media{
			Kind:     publisher.MediaVideo,
			FileID:   message.Video.FileID,
			FileSize: message.Video.FileSize,
		}
	case message.Document != nil:
		ev.media = &publisher.Media{
			Kind:     publisher.MediaDocument,
			FileID:   message.Document.FileID,
			FileSize: message.Document.FileSize,
		}
	case message.Text != "":
		ev.text = message.Text
	default:
		return
	}

	b.dispatch(ctx, ev)
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Answer the callback query to remove loading state
	b.answerCallback(query.ID, "")

	payload, ok := ParsePayload(query.Data)
	if !ok || query.From == nil {
		return
	}

	ev := &event{
		userID:     query.From.ID,
		username:   query.From.UserName,
		name:       strings.TrimSpace(query.From.FirstName + " " + query.From.LastName),
		payload:    &payload,
		callbackID: query.ID,
	}
	if query.Message != nil && query.Message.Chat != nil {
		ev.chatID = query.Message.Chat.ID
		ev.messageID = query.Message.MessageID
	} else {
		ev.chatID = query.From.ID
	}

	b.dispatch(ctx, ev)
}

// dispatch runs the handler matching the user's state and the event shape.
// Events of one user are handled one at a time.
func (b *Bot) dispatch(ctx context.Context, ev *event) {
	s := b.sessions.Get(ev.userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic while handling update",
				zap.Any("panic", r),
				zap.Int64("user_id", ev.userID),
				zap.Stringer("state", s.State),
			)
			s.Reset()
			b.reply(ev, textInternalError)
		}
	}()

	role, err := b.roleOf(ctx, ev.userID)
	if err != nil {
		b.failStorage(s, ev, "resolve_role", err)
		return
	}
	if role == RoleNone {
		b.logger.Warn("Unauthorized access attempt",
			zap.Int64("user_id", ev.userID),
			zap.String("username", ev.username),
		)
		if ev.payload == nil {
			b.reply(ev, textNotAuthorized)
		}
		return
	}
	ev.role = role

	// Any permitted command interrupts an ongoing workflow
	if ev.command != "" {
		if role < commandRole(ev.command) {
			b.logger.Warn("Access denied for command",
				zap.Int64("user_id", ev.userID),
				zap.String("command", ev.command),
				zap.Stringer("role", role),
			)
			b.reply(ev, textAccessDenied)
			return
		}
		s.Reset()
		b.handleCommand(ctx, s, ev)
		return
	}

	if ev.payload != nil {
		if g, ok := b.globals[ev.payload.Action]; ok {
			if role < g.role {
				b.reply(ev, textAccessDenied)
				return
			}
			g.handler(ctx, s, ev)
			return
		}
	}

	if role < s.State.RequiredRole() {
		b.logger.Warn("Access denied for state",
			zap.Int64("user_id", ev.userID),
			zap.Stringer("state", s.State),
			zap.Stringer("role", role),
		)
		b.reply(ev, textAccessDenied)
		return
	}

	routes := b.routes[s.State]
	var handler handlerFunc
	switch {
	case ev.payload != nil:
		handler = routes.buttons[ev.payload.Action]
	case ev.media != nil:
		handler = routes.media
	default:
		handler = routes.text
	}

	if handler == nil {
		b.logger.Debug("Ignoring event without handler",
			zap.Int64("user_id", ev.userID),
			zap.Stringer("state", s.State),
		)
		return
	}
	handler(ctx, s, ev)
}

// stateRoutes builds the dispatch table of the workflows
func (b *Bot) stateRoutes() map[State]stateRoutes {
	return map[State]stateRoutes{
		StateAwaitingEpisodeInfo: {text: b.handleEpisodeInfo},
		StateAwaitingChannelSelection: {buttons: map[Action]handlerFunc{
			ActionPickChannel: b.handleUploadChannelPick,
		}},
		StateAwaitingMedia: {media: b.handleMedia},

		StateAwaitingChannelReference:   {text: b.handleChannelReference},
		StateAwaitingRightsConfirmation: {text: b.handleRightsConfirmation},
		StateAwaitingChannelName:        {text: b.handleChannelName},
		StateAwaitingChannelToDelete: {buttons: map[Action]handlerFunc{
			ActionRemoveChannel: b.handleChannelRemove,
		}},

		StateAwaitingNewAdminID: {text: b.handleNewAdminID},
		StateSelectingAdmin: {buttons: map[Action]handlerFunc{
			ActionPickAdmin: b.handleAdminPick,
		}},
		StateAdminActionMenu: {buttons: map[Action]handlerFunc{
			ActionAdminStats:    b.handleAdminStats,
			ActionAdminChannels: b.handleAdminChannels,
			ActionAdminDelete:   b.handleAdminDelete,
			ActionAdminList:     b.handleManageAdmins,
		}},
		StateViewingAdminChannels: {buttons: map[Action]handlerFunc{
			ActionAdminAttach: b.handleAdminAttach,
			ActionToAdmin:     b.handleBackToAdmin,
		}},
		StateAwaitingChannelToggle: {buttons: map[Action]handlerFunc{
			ActionAdminToggle:    b.handleAdminToggle,
			ActionToAdminChannel: b.handleAdminChannels,
		}},

		StateAwaitingTemplateName: {text: b.handleTemplateName},
		StateAwaitingTemplateBody: {text: b.handleTemplateBody},
		StateSelectingTemplate: {buttons: map[Action]handlerFunc{
			ActionPickTemplate: b.handleTemplatePick,
		}},
		StateTemplateActionMenu: {buttons: map[Action]handlerFunc{
			ActionTemplateView:   b.handleTemplateView,
			ActionTemplateEdit:   b.handleTemplateEdit,
			ActionTemplateAttach: b.handleTemplateChannels,
			ActionTemplateDelete: b.handleTemplateDelete,
			ActionTemplateList:   b.handleListTemplates,
		}},
		StateAwaitingNewTemplateBody: {text: b.handleNewTemplateBody},
		StateAwaitingChannelAssignment: {buttons: map[Action]handlerFunc{
			ActionTemplateToggle: b.handleTemplateToggle,
		}},
	}
}

// globalRoutes builds the buttons accepted in every state. Entering a
// workflow drops whatever the user was doing.
func (b *Bot) globalRoutes() map[Action]globalRoute {
	return map[Action]globalRoute{
		ActionHome: {RoleAdmin, b.handleHome},
		ActionBack: {RoleAdmin, b.handleBack},

		ActionUpload:     {RoleAdmin, b.handleUploadStart},
		ActionMyChannels: {RoleAdmin, b.handleMyChannels},
		ActionMyStats:    {RoleAdmin, b.handleMyStats},

		ActionStats:     {RoleSuper, b.handleAllStats},
		ActionChannels:  {RoleSuper, b.handleChannelsMenu},
		ActionAdmins:    {RoleSuper, b.handleAdminsMenu},
		ActionTemplates: {RoleSuper, b.handleTemplatesMenu},

		ActionAddChannel:     {RoleSuper, b.handleAddChannelStart},
		ActionDeleteChannel:  {RoleSuper, b.handleDeleteChannelStart},
		ActionAddAdmin:       {RoleSuper, b.handleAddAdminStart},
		ActionManageAdmins:   {RoleSuper, b.handleManageAdmins},
		ActionAddTemplate:    {RoleSuper, b.handleAddTemplateStart},
		ActionListTemplates:  {RoleSuper, b.handleListTemplates},
		ActionAssignTemplate: {RoleSuper, b.handleAssignTemplateStart},
	}
}

// handleHome drops the workflow and shows the root menu
func (b *Bot) handleHome(ctx context.Context, s *Session, ev *event) {
	s.Reset()
	b.showRootMenu(ev)
}

// handleBack cancels the workflow without side effects
func (b *Bot) handleBack(ctx context.Context, s *Session, ev *event) {
	wasIdle := s.State == StateIdle
	s.Reset()
	if wasIdle {
		b.showRootMenu(ev)
		return
	}
	b.replyWithKeyboard(ev, textCancelled, rootMenuKeyboard(ev.role))
}
