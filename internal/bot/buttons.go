package bot

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgpublisher/internal/models"
)

// Action identifies what an inline button does
type Action string

// Global actions, accepted in every state
const (
	ActionHome       Action = "home"
	ActionBack       Action = "back"
	ActionUpload     Action = "upload"
	ActionChannels   Action = "channels"
	ActionAdmins     Action = "admins"
	ActionTemplates  Action = "templates"
	ActionStats      Action = "stats"
	ActionMyChannels Action = "my_channels"
	ActionMyStats    Action = "my_stats"

	ActionAddChannel     Action = "ch_add"
	ActionDeleteChannel  Action = "ch_del"
	ActionAddAdmin       Action = "adm_add"
	ActionManageAdmins   Action = "adm_manage"
	ActionAddTemplate    Action = "tpl_add"
	ActionListTemplates  Action = "tpl_list"
	ActionAssignTemplate Action = "tpl_assign"
)

// Per-state actions
const (
	ActionPickChannel    Action = "ch_pick"
	ActionRemoveChannel  Action = "ch_rm"
	ActionPickAdmin      Action = "adm_pick"
	ActionAdminStats     Action = "adm_stats"
	ActionAdminChannels  Action = "adm_channels"
	ActionAdminDelete    Action = "adm_delete"
	ActionAdminList      Action = "adm_list"
	ActionAdminAttach    Action = "adm_attach"
	ActionAdminToggle    Action = "adm_toggle"
	ActionToAdminChannel Action = "adm_to_channels"
	ActionToAdmin        Action = "adm_to_admin"
	ActionPickTemplate   Action = "tpl_pick"
	ActionTemplateView   Action = "tpl_view"
	ActionTemplateEdit   Action = "tpl_edit"
	ActionTemplateAttach Action = "tpl_channels"
	ActionTemplateDelete Action = "tpl_delete"
	ActionTemplateList   Action = "tpl_to_list"
	ActionTemplateToggle Action = "tpl_toggle"
)

// Payload is the callback data of a button: an action and an optional item key
type Payload struct {
	Action Action
	Key    string
}

func (p Payload) String() string {
	if p.Key == "" {
		return string(p.Action)
	}
	return string(p.Action) + ":" + p.Key
}

// ParsePayload decodes callback data produced by Payload.String
func ParsePayload(data string) (Payload, bool) {
	action, key, _ := strings.Cut(data, ":")
	if action == "" {
		return Payload{}, false
	}
	return Payload{Action: Action(action), Key: key}, true
}

// Int64Key returns the key as a number
func (p Payload) Int64Key() (int64, bool) {
	id, err := strconv.ParseInt(p.Key, 10, 64)
	return id, err == nil
}

// maxCallbackData is the Telegram limit for inline button data, in bytes
const maxCallbackData = 64

// channelActions carry a channel ID as their key
var channelActions = []Action{ActionPickChannel, ActionRemoveChannel, ActionAdminToggle, ActionTemplateToggle}

// channelKeyFits reports whether every channel button for id stays within maxCallbackData
func channelKeyFits(id string) bool {
	for _, action := range channelActions {
		if len(Payload{Action: action, Key: id}.String()) > maxCallbackData {
			return false
		}
	}
	return true
}

func button(label string, action Action, key ...string) tgbotapi.InlineKeyboardButton {
	p := Payload{Action: action}
	if len(key) > 0 {
		p.Key = key[0]
	}
	return tgbotapi.NewInlineKeyboardButtonData(label, p.String())
}

func row(buttons ...tgbotapi.InlineKeyboardButton) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(buttons...)
}

var (
	homeButton = button("🏠 Главное меню", ActionHome)
	backButton = button("🔙 Назад", ActionBack)
)

func rootMenuKeyboard(role Role) tgbotapi.InlineKeyboardMarkup {
	if role == RoleSuper {
		return tgbotapi.NewInlineKeyboardMarkup(
			row(button("📊 Статистика", ActionStats), button("📺 Каналы", ActionChannels)),
			row(button("👥 Админы", ActionAdmins), button("📝 Шаблоны", ActionTemplates)),
			row(button("📤 Загрузить", ActionUpload)),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row(button("📤 Загрузить контент", ActionUpload)),
		row(button("📺 Мои каналы", ActionMyChannels), button("📊 Моя статистика", ActionMyStats)),
	)
}

func backKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(row(backButton))
}

func homeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(row(homeButton))
}

func channelsMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(button("➕ Добавить канал", ActionAddChannel), button("🗑 Удалить канал", ActionDeleteChannel)),
		row(homeButton),
	)
}

func adminsMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(button("➕ Добавить админа", ActionAddAdmin), button("🔧 Управление админами", ActionManageAdmins)),
		row(homeButton),
	)
}

func templatesMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(button("➕ Добавить шаблон", ActionAddTemplate), button("📋 Список шаблонов", ActionListTemplates)),
		row(button("🔗 Прикрепить к каналу", ActionAssignTemplate)),
		row(homeButton),
	)
}

// channelPickKeyboard lists channels, one per row, with the given action
func channelPickKeyboard(channels []models.Channel, action Action, icon string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(channels)+1)
	for _, ch := range channels {
		rows = append(rows, row(button(icon+" "+ch.Name, action, ch.ID)))
	}
	rows = append(rows, row(backButton, homeButton))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func adminListKeyboard(admins []models.Admin) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(admins)+1)
	for _, a := range admins {
		rows = append(rows, row(button("👤 "+a.DisplayName(), ActionPickAdmin, strconv.FormatInt(a.UserID, 10))))
	}
	rows = append(rows, row(backButton, homeButton))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func adminActionsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(button("📊 Статистика админа", ActionAdminStats), button("📺 Каналы админа", ActionAdminChannels)),
		row(button("🗑 Удалить админа", ActionAdminDelete)),
		row(button("🔙 К списку админов", ActionAdminList), homeButton),
	)
}

func adminChannelsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(button("➕ Прикрепить канал", ActionAdminAttach)),
		row(button("🔙 К админу", ActionToAdmin), homeButton),
	)
}

// adminToggleKeyboard marks the channels attached to the admin
func adminToggleKeyboard(channels []models.Channel, attached map[string]bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(channels)+1)
	for _, ch := range channels {
		icon := "⬜"
		if attached[ch.ID] {
			icon = "✅"
		}
		rows = append(rows, row(button(icon+" "+ch.Name, ActionAdminToggle, ch.ID)))
	}
	rows = append(rows, row(button("🔙 К каналам админа", ActionToAdminChannel), homeButton))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func templateListKeyboard(templates []models.Template) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(templates)+1)
	for _, tpl := range templates {
		rows = append(rows, row(button("📝 "+tpl.Name, ActionPickTemplate, strconv.FormatInt(tpl.ID, 10))))
	}
	rows = append(rows, row(button("🔙 К шаблонам", ActionTemplates), homeButton))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func templateActionsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(button("👁 Просмотр", ActionTemplateView), button("✏️ Редактировать", ActionTemplateEdit)),
		row(button("🔗 Каналы", ActionTemplateAttach), button("🗑 Удалить шаблон", ActionTemplateDelete)),
		row(button("🔙 К списку шаблонов", ActionTemplateList), homeButton),
	)
}

// templateToggleKeyboard marks the channels that use the template
func templateToggleKeyboard(channels []models.Channel, assigned map[string]bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(channels)+1)
	for _, ch := range channels {
		icon := "📺"
		if assigned[ch.ID] {
			icon = "✅"
		}
		rows = append(rows, row(button(icon+" "+ch.Name, ActionTemplateToggle, ch.ID)))
	}
	rows = append(rows, row(button("🔙 К шаблонам", ActionTemplates), homeButton))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
