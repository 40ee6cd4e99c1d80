package bot

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"tgpublisher/internal/models"
)

// handleTemplatesMenu lists all templates
func (b *Bot) handleTemplatesMenu(ctx context.Context, s *Session, ev *event) {
	s.Reset()

	templates, err := b.db.GetTemplates(ctx)
	if err != nil {
		b.failStorage(s, ev, "list_templates", err)
		return
	}
	b.replyWithKeyboard(ev, templatesOverviewText(templates), templatesMenuKeyboard())
}

// handleAddTemplateStart asks for the name of a new template
func (b *Bot) handleAddTemplateStart(ctx context.Context, s *Session, ev *event) {
	s.Reset()
	s.State = StateAwaitingTemplateName
	b.replyWithKeyboard(ev, textAddTemplate, backKeyboard())
}

// handleTemplateName validates the name and asks for the body
func (b *Bot) handleTemplateName(ctx context.Context, s *Session, ev *event) {
	name := strings.TrimSpace(ev.text)
	if name == "" {
		b.reply(ev, textTemplateEmpty)
		return
	}

	existing, err := b.db.GetTemplateByName(ctx, name)
	if err != nil {
		b.failStorage(s, ev, "add_template", err)
		return
	}
	if existing != nil {
		b.reply(ev, textTemplateExists)
		return
	}

	s.TemplateName = name
	s.State = StateAwaitingTemplateBody
	b.replyWithKeyboard(ev, templateBodyPrompt(name), backKeyboard())
}

// handleTemplateBody stores the new template
func (b *Bot) handleTemplateBody(ctx context.Context, s *Session, ev *event) {
	id, err := b.db.AddTemplate(ctx, s.TemplateName, ev.text)
	if err != nil {
		b.failStorage(s, ev, "add_template", err)
		return
	}

	b.logger.Info("Template created",
		zap.Int64("user_id", ev.userID),
		zap.Int64("template_id", id),
		zap.String("name", s.TemplateName),
	)

	name := s.TemplateName
	s.Reset()
	b.replyWithKeyboard(ev, templateCreatedText(name, id), homeKeyboard())
}

// showTemplateList enters template selection, for browsing or for the
// attach shortcut
func (b *Bot) showTemplateList(ctx context.Context, s *Session, ev *event, assign bool) {
	s.Reset()

	templates, err := b.db.GetTemplates(ctx)
	if err != nil {
		b.failStorage(s, ev, "list_templates", err)
		return
	}
	if len(templates) == 0 {
		text := textNoTemplates
		if assign {
			text = textNoTemplatesAssign
		}
		b.replyWithKeyboard(ev, text, templatesMenuKeyboard())
		return
	}

	text := textSelectTemplate
	if assign {
		text = textSelectTemplateAssign
	}
	s.State = StateSelectingTemplate
	s.AssignMode = assign
	b.replyWithKeyboard(ev, text, templateListKeyboard(templates))
}

func (b *Bot) handleListTemplates(ctx context.Context, s *Session, ev *event) {
	b.showTemplateList(ctx, s, ev, false)
}

func (b *Bot) handleAssignTemplateStart(ctx context.Context, s *Session, ev *event) {
	b.showTemplateList(ctx, s, ev, true)
}

// selectedTemplate loads the template the session points to. When it is
// gone the user is sent back to the template list and nil is returned.
func (b *Bot) selectedTemplate(ctx context.Context, s *Session, ev *event) *models.Template {
	tpl, err := b.db.GetTemplate(ctx, s.TemplateID)
	if err != nil {
		b.failStorage(s, ev, "get_template", err)
		return nil
	}
	if tpl == nil {
		b.reply(ev, textTemplateMissing)
		b.showTemplateList(ctx, s, ev, s.AssignMode)
		return nil
	}
	return tpl
}

// handleTemplatePick opens the action menu, or the channel list when
// the attach shortcut was used
func (b *Bot) handleTemplatePick(ctx context.Context, s *Session, ev *event) {
	id, ok := ev.payload.Int64Key()
	if !ok {
		return
	}

	s.TemplateID = id
	tpl := b.selectedTemplate(ctx, s, ev)
	if tpl == nil {
		return
	}

	if s.AssignMode {
		b.showTemplateChannels(ctx, s, ev, *tpl)
		return
	}

	s.State = StateTemplateActionMenu
	b.replyWithKeyboard(ev, templateActionsText(*tpl), templateActionsKeyboard())
}

// handleTemplateView shows the template body
func (b *Bot) handleTemplateView(ctx context.Context, s *Session, ev *event) {
	tpl := b.selectedTemplate(ctx, s, ev)
	if tpl == nil {
		return
	}
	b.replyWithKeyboard(ev, templateViewText(*tpl), templateActionsKeyboard())
}

// handleTemplateEdit asks for a replacement body
func (b *Bot) handleTemplateEdit(ctx context.Context, s *Session, ev *event) {
	tpl := b.selectedTemplate(ctx, s, ev)
	if tpl == nil {
		return
	}

	s.State = StateAwaitingNewTemplateBody
	b.replyWithKeyboard(ev, templateEditPrompt(*tpl), backKeyboard())
}

// handleNewTemplateBody stores the replacement body
func (b *Bot) handleNewTemplateBody(ctx context.Context, s *Session, ev *event) {
	tpl := b.selectedTemplate(ctx, s, ev)
	if tpl == nil {
		return
	}

	if err := b.db.UpdateTemplate(ctx, tpl.ID, ev.text); err != nil {
		b.failStorage(s, ev, "update_template", err)
		return
	}

	b.logger.Info("Template updated", zap.Int64("user_id", ev.userID), zap.Int64("template_id", tpl.ID))

	s.Reset()
	b.replyWithKeyboard(ev, templateUpdatedText(*tpl), homeKeyboard())
}

// handleTemplateDelete removes the template and its channel assignments
func (b *Bot) handleTemplateDelete(ctx context.Context, s *Session, ev *event) {
	tpl := b.selectedTemplate(ctx, s, ev)
	if tpl == nil {
		return
	}

	if err := b.db.RemoveTemplate(ctx, tpl.ID); err != nil {
		b.failStorage(s, ev, "remove_template", err)
		return
	}

	b.logger.Info("Template deleted", zap.Int64("user_id", ev.userID), zap.Int64("template_id", tpl.ID))

	s.Reset()
	b.replyWithKeyboard(ev, templateDeletedText(*tpl), rootMenuKeyboard(ev.role))
}

// templateAssignments marks the channels whose template is tpl
func (b *Bot) templateAssignments(ctx context.Context, templateID int64) ([]models.Channel, map[string]bool, error) {
	channels, err := b.db.GetChannels(ctx)
	if err != nil {
		return nil, nil, err
	}

	assigned := make(map[string]bool)
	for _, ch := range channels {
		current, err := b.db.GetChannelTemplate(ctx, ch.ID)
		if err != nil {
			return nil, nil, err
		}
		if current != nil && current.ID == templateID {
			assigned[ch.ID] = true
		}
	}
	return channels, assigned, nil
}

func (b *Bot) showTemplateChannels(ctx context.Context, s *Session, ev *event, tpl models.Template) {
	channels, assigned, err := b.templateAssignments(ctx, tpl.ID)
	if err != nil {
		b.failStorage(s, ev, "template_channels", err)
		return
	}
	if len(channels) == 0 {
		b.reply(ev, textNoChannels)
		return
	}

	s.State = StateAwaitingChannelAssignment
	b.replyWithKeyboard(ev, templateAssignText(tpl), templateToggleKeyboard(channels, assigned))
}

// handleTemplateChannels enters the assignment toggle list
func (b *Bot) handleTemplateChannels(ctx context.Context, s *Session, ev *event) {
	tpl := b.selectedTemplate(ctx, s, ev)
	if tpl == nil {
		return
	}
	b.showTemplateChannels(ctx, s, ev, *tpl)
}

// handleTemplateToggle assigns the template to the pressed channel, or
// unassigns it when the channel already uses it
func (b *Bot) handleTemplateToggle(ctx context.Context, s *Session, ev *event) {
	tpl := b.selectedTemplate(ctx, s, ev)
	if tpl == nil {
		return
	}

	channels, assigned, err := b.templateAssignments(ctx, tpl.ID)
	if err != nil {
		b.failStorage(s, ev, "template_toggle", err)
		return
	}

	ch := findChannel(channels, ev.payload.Key)
	if ch == nil {
		b.reply(ev, textChannelMissing)
		b.editKeyboard(ev, templateAssignText(*tpl), templateToggleKeyboard(channels, assigned))
		return
	}

	nowAssigned := !assigned[ch.ID]
	if nowAssigned {
		err = b.db.AssignTemplate(ctx, ch.ID, tpl.ID)
	} else {
		err = b.db.UnassignTemplate(ctx, ch.ID)
	}
	if err != nil {
		b.failStorage(s, ev, "template_toggle", err)
		return
	}
	assigned[ch.ID] = nowAssigned

	b.logger.Info("Template assignment toggled",
		zap.Int64("user_id", ev.userID),
		zap.Int64("template_id", tpl.ID),
		zap.String("channel_id", ch.ID),
		zap.Bool("assigned", nowAssigned),
	)

	text := templateToggledText(*tpl, *ch, nowAssigned) + "\n\n" + templateAssignText(*tpl)
	b.editKeyboard(ev, text, templateToggleKeyboard(channels, assigned))
}
