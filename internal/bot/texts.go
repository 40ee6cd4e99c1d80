package bot

import (
	"errors"
	"fmt"
	"strings"

	"tgpublisher/internal/caption"
	"tgpublisher/internal/models"
	"tgpublisher/internal/parse"
	"tgpublisher/internal/publisher"
)

const (
	textNotAuthorized = "⛔ У вас нет доступа к этому боту."
	textAccessDenied  = "⛔ Только для супер-админа"
	textCancelled     = "❌ Действие отменено"
	textInternalError = "❌ Произошла ошибка при обработке запроса. Попробуйте еще раз."
	textStorageError  = "❌ Ошибка базы данных. Попробуйте позже."
	textUnknownCmd    = "Неизвестная команда. Используйте /start для просмотра меню."

	textEpisodeFormat = "Отправьте информацию в формате:\n" +
		"• Название Сезон Серия - для одной серии\n" +
		"• Название Сезон Серия1-Серия2 - для диапазона\n\n" +
		"Примеры:\n" +
		"• Боевой континет 1 12\n" +
		"• Боевой континет 1 1-12"

	textUploadStart    = "📤 Загрузка контента\n\n" + textEpisodeFormat
	textNoChannels     = "❌ Нет доступных каналов"
	textNoAssigned     = "❌ Нет доступных каналов\n\nВы не назначены ни на один канал.\nОбратитесь к главному администратору."
	textSelectChannel  = "✅ Информация принята!\n\nВыберите канал для публикации:"
	textChannelMissing = "❌ Канал не найден"
	textSendMedia      = "Теперь отправьте видео или документ."

	textChannelRefTooLong = "❌ Слишком длинный идентификатор канала. Попробуйте еще раз:"

	textChannelFormat = "ID канала должен быть в одном из форматов:\n" +
		"• @channel_username - для публичных каналов\n" +
		"• https://t.me/channel_username - ссылка на публичный канал\n" +
		"• -1001234567890 - числовой ID для приватных каналов"

	textPrivateInvite = "⚠️ Приватная ссылка-приглашение\n\n" +
		"Для таких каналов нужен числовой ID канала в формате -1001234567890.\n\n" +
		"Как получить ID:\n" +
		"1️⃣ Перешлите любое сообщение из канала боту @username_to_id_bot\n" +
		"2️⃣ Или используйте @getmyid_bot\n" +
		"3️⃣ Скопируйте числовой ID и отправьте его сюда\n\n" +
		"Попробуйте еще раз:"

	textAddChannel         = "➕ Добавление канала\n\nОтправьте ID канала или ссылку на него.\n\n" + textChannelFormat
	textChannelDeleteList  = "🗑 Удаление канала\n\nВыберите канал для удаления:"
	textNoChannelsToDelete = "❌ Нет каналов для удаления"
	textAddCancelled       = "❌ Добавление канала отменено"

	textAddAdmin       = "👤 Добавление админа\n\nОтправьте ID пользователя (число):"
	textAdminIDInvalid = "❌ Неверный формат!\n\nID должен быть числом. Попробуйте еще раз:"
	textSelectAdmin    = "👥 Выберите админа:"
	textNoAdmins       = "❌ Нет админов для управления"
	textAdminMissing   = "❌ Админ не найден"
	textToggleChannels = "📺 Прикрепление каналов\n\nВыберите канал для прикрепления/открепления:\n✅ - прикреплен\n⬜ - не прикреплен"

	textTemplateHelp = "Доступные переменные:\n" +
		"• {title} - название\n" +
		"• {season} - сезон\n" +
		"• {episode} - серия\n" +
		"• {tag} - тег\n\n" +
		"Пример:\n" +
		"🎬 {title}\n" +
		"📺 Сезон {season}, Серия {episode}\n" +
		"{tag}"

	textAddTemplate          = "📝 Создание шаблона\n\nОтправьте название шаблона:"
	textTemplateExists       = "⚠️ Шаблон с таким названием уже существует!\n\nПопробуйте другое название:"
	textTemplateEmpty        = "❌ Название не может быть пустым. Попробуйте еще раз:"
	textSelectTemplate       = "📋 Выберите шаблон:"
	textSelectTemplateAssign = "📝 Выберите шаблон для прикрепления:"
	textNoTemplates          = "❌ Нет шаблонов"
	textNoTemplatesAssign    = "❌ Нет шаблонов. Создайте шаблон сначала."
	textTemplateMissing      = "❌ Шаблон не найден"
)

// titleErrorText explains a title parse failure
func titleErrorText(err error) string {
	var reason string
	switch {
	case errors.Is(err, parse.ErrEmptyInput):
		reason = "Сообщение пустое."
	case errors.Is(err, parse.ErrTooFewTokens):
		reason = "Нужно указать название, сезон и серию."
	case errors.Is(err, parse.ErrSeasonNotInteger):
		reason = "Сезон должен быть числом."
	case errors.Is(err, parse.ErrEpisodeNotInteger):
		reason = "Серия должна быть числом."
	case errors.Is(err, parse.ErrMalformedRange):
		reason = "Диапазон серий должен выглядеть как 1-12."
	case errors.Is(err, parse.ErrRangeOrder):
		reason = "Первая серия диапазона должна быть меньше последней."
	case errors.Is(err, parse.ErrEmptyTitle):
		reason = "Название не может быть пустым."
	default:
		reason = "Неверный формат."
	}
	return "❌ Неверный формат!\n\n" + reason + "\n\n" + textEpisodeFormat
}

// channelErrorText explains a channel reference parse failure
func channelErrorText(err error) string {
	var reason string
	switch {
	case errors.Is(err, parse.ErrEmptyInput):
		reason = "Сообщение пустое."
	case errors.Is(err, parse.ErrUnsupportedURL):
		reason = "Поддерживаются только ссылки t.me и telegram.me."
	case errors.Is(err, parse.ErrEmptyURLPath):
		reason = "В ссылке не указан канал."
	case errors.Is(err, parse.ErrInvalidChannel):
		reason = "Числовой ID канала должен начинаться с -100."
	default:
		reason = "Неверный формат."
	}
	return "❌ Неверный формат\n\n" + reason + "\n\n" + textChannelFormat + "\n\nПопробуйте еще раз:"
}

// publishErrorText explains a failed platform call
func publishErrorText(err error) string {
	switch publisher.KindOf(err) {
	case publisher.KindNotFound:
		return "❌ Канал не найден\n\nВозможно, ID указан неверно или бот был удален из канала."
	case publisher.KindForbidden:
		return "❌ Бот заблокирован в канале или исключен из него.\nПроверьте настройки канала."
	case publisher.KindInsufficientRights:
		return "❌ У бота недостаточно прав.\nДайте боту право публикации сообщений в настройках канала."
	default:
		return fmt.Sprintf("❌ Ошибка при обращении к Telegram\n\nДетали: %v", err)
	}
}

func uploadAcceptedText(ch models.Channel) string {
	return fmt.Sprintf("✅ Информация принята!\n📺 Канал: %s\n\n%s", ch.Name, textSendMedia)
}

func channelSelectedText(ch models.Channel) string {
	return fmt.Sprintf("✅ Канал выбран: %s\n\n%s", ch.Name, textSendMedia)
}

func publishedText(ch models.Channel, ep parse.Episode) string {
	return fmt.Sprintf("✅ Успешно опубликовано!\n\n📺 Канал: %s\n🎬 %s\n📺 Сезон %d, %s",
		ch.Name, ep.Title, ep.Season, caption.EpisodePhrase(ep))
}

func fileTooLargeText(limitMB int) string {
	return fmt.Sprintf("❌ Файл слишком большой. Максимальный размер: %d МБ.\n\nОтправьте другой файл:", limitMB)
}

func channelFoundText(title, channelID string) string {
	return fmt.Sprintf("✅ Канал найден!\n\nНазвание в Telegram: %s\nID: %s\n\n%s", title, channelID, channelNamePrompt(title))
}

func channelNamePrompt(title string) string {
	return fmt.Sprintf("Отправьте название для бота (или отправьте '-' чтобы использовать '%s'):", title)
}

func notAChannelText(chatType string) string {
	return fmt.Sprintf("❌ Ошибка\n\nЭто не канал! Тип: %s\n\nОтправьте ID канала:", chatType)
}

func rightsWarningText(title string, isAdmin bool) string {
	problem := "Но бот не является администратором!\n\nДобавьте бота в канал как администратора с правом публикации сообщений."
	if isAdmin {
		problem = "Бот является администратором, но не имеет права публикации сообщений!\n\nДайте боту право 'Публикация сообщений' в настройках канала."
	}
	return fmt.Sprintf("⚠️ Предупреждение\n\nКанал найден: %s\n\n%s\n\nПродолжить добавление канала? (да/нет)", title, problem)
}

func rightsConfirmedText(title, channelID string) string {
	return fmt.Sprintf("📺 Канал: %s\nID: %s\n\n%s", title, channelID, channelNamePrompt(title))
}

func channelAddedText(name, channelID string) string {
	return fmt.Sprintf("✅ Канал успешно добавлен!\n\n📺 Название: %s\n🆔 ID: %s", name, channelID)
}

func channelDeletedText(name string) string {
	return "✅ Канал удален\n\n📺 " + name
}

func channelsOverviewText(channels []models.Channel) string {
	var sb strings.Builder
	sb.WriteString("📺 Управление каналами\n\n")
	if len(channels) == 0 {
		sb.WriteString("❌ Нет добавленных каналов")
		return sb.String()
	}
	sb.WriteString("Список каналов:\n\n")
	for _, ch := range channels {
		fmt.Fprintf(&sb, "• %s (%s)\n", ch.Name, ch.ID)
	}
	return sb.String()
}

func adminsOverviewText(admins []models.Admin, isSuper func(int64) bool) string {
	var sb strings.Builder
	sb.WriteString("👥 Управление админами\n\nСписок админов:\n\n")
	for _, a := range admins {
		crown := ""
		if isSuper(a.UserID) {
			crown = " 👑"
		}
		fmt.Fprintf(&sb, "• %s%s\n", a.DisplayName(), crown)
	}
	return sb.String()
}

func adminExistsText(id int64) string {
	return fmt.Sprintf("⚠️ Пользователь уже является админом!\n\nID: %d", id)
}

func adminAddedText(id int64) string {
	return fmt.Sprintf("✅ Админ добавлен!\n\n🆔 ID: %d\n\nℹ️ Теперь этот пользователь может использовать бота.", id)
}

func adminActionsText(a models.Admin) string {
	return fmt.Sprintf("👤 Админ: %s\n\nВыберите действие:", a.DisplayName())
}

func adminDeletedText(a models.Admin) string {
	return "✅ Админ удален\n\n👤 " + a.DisplayName()
}

func adminStatsText(title string, stats models.AdminStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s\n\nВсего загрузок: %d\n", title, stats.Total)
	if len(stats.ByChannel) > 0 {
		sb.WriteString("\nПо каналам:\n")
		for _, ch := range stats.ByChannel {
			fmt.Fprintf(&sb, "• %s: %d\n", ch.ChannelName, ch.Count)
		}
	}
	return sb.String()
}

func allStatsText(totals []models.AdminTotal) string {
	var sb strings.Builder
	sb.WriteString("📊 Общая статистика\n\n")
	if len(totals) == 0 {
		sb.WriteString("Нет данных")
		return sb.String()
	}
	sum := 0
	for _, t := range totals {
		name := t.Username
		if name == "" {
			name = fmt.Sprintf("ID: %d", t.UserID)
		}
		fmt.Fprintf(&sb, "• %s: %d\n", name, t.Total)
		sum += t.Total
	}
	fmt.Fprintf(&sb, "\nВсего загрузок: %d", sum)
	return sb.String()
}

func channelStatsText(ch models.Channel, stats models.ChannelStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Статистика канала %s\n\nВсего загрузок: %d\n", ch.Name, stats.Total)
	if len(stats.ByAdmin) > 0 {
		sb.WriteString("\nПо админам:\n")
		for _, a := range stats.ByAdmin {
			name := a.Username
			if name == "" {
				name = fmt.Sprintf("ID: %d", a.UserID)
			}
			fmt.Fprintf(&sb, "• %s: %d\n", name, a.Count)
		}
	}
	if len(stats.Recent) > 0 {
		sb.WriteString("\nПоследние загрузки:\n")
		for _, u := range stats.Recent {
			fmt.Fprintf(&sb, "• %s S%dE%d (%s)\n", u.Title, u.Season, u.Episode, u.UploadedAt.Format("2006-01-02 15:04"))
		}
	}
	return sb.String()
}

func adminChannelsText(a models.Admin, channels []models.Channel) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📺 Каналы админа %s\n\n", a.DisplayName())
	if len(channels) == 0 {
		sb.WriteString("❌ Админ не назначен ни на один канал")
		return sb.String()
	}
	for _, ch := range channels {
		fmt.Fprintf(&sb, "• %s\n", ch.Name)
	}
	return sb.String()
}

func myChannelsText(channels []models.Channel) string {
	var sb strings.Builder
	sb.WriteString("📺 Ваши каналы\n\n")
	if len(channels) == 0 {
		sb.WriteString("❌ Вы не назначены ни на один канал")
		return sb.String()
	}
	for _, ch := range channels {
		fmt.Fprintf(&sb, "• %s (%s)\n", ch.Name, ch.ID)
	}
	return sb.String()
}

func channelToggledText(name string, attached bool) string {
	if attached {
		return fmt.Sprintf("✅ Канал %s прикреплен", name)
	}
	return fmt.Sprintf("✅ Канал %s откреплен", name)
}

func templatesOverviewText(templates []models.Template) string {
	var sb strings.Builder
	sb.WriteString("📝 Управление шаблонами\n\n")
	if len(templates) == 0 {
		sb.WriteString("❌ Нет созданных шаблонов\n\nИспользуйте кнопку '➕ Добавить шаблон' для создания.")
		return sb.String()
	}
	sb.WriteString("Список шаблонов:\n\n")
	for _, tpl := range templates {
		fmt.Fprintf(&sb, "• %s\n", tpl.Name)
	}
	return sb.String()
}

func templateBodyPrompt(name string) string {
	return fmt.Sprintf("📝 Название: %s\n\nТеперь отправьте текст шаблона.\n\n%s", name, textTemplateHelp)
}

func templateCreatedText(name string, id int64) string {
	return fmt.Sprintf("✅ Шаблон создан!\n\n📝 Название: %s\n🆔 ID: %d", name, id)
}

func templateActionsText(tpl models.Template) string {
	return fmt.Sprintf("📝 Шаблон: %s\n\nВыберите действие:", tpl.Name)
}

func templateViewText(tpl models.Template) string {
	return fmt.Sprintf("📝 %s\n\nТекст шаблона:\n\n%s", tpl.Name, tpl.Body)
}

func templateEditPrompt(tpl models.Template) string {
	return fmt.Sprintf("✏️ Редактирование шаблона %s\n\nТекущий текст:\n\n%s\n\nОтправьте новый текст шаблона.\n\n%s",
		tpl.Name, tpl.Body, textTemplateHelp)
}

func templateUpdatedText(tpl models.Template) string {
	return "✅ Шаблон обновлен\n\n📝 " + tpl.Name
}

func templateDeletedText(tpl models.Template) string {
	return "✅ Шаблон удален\n\n📝 " + tpl.Name
}

func templateAssignText(tpl models.Template) string {
	return fmt.Sprintf("📝 Шаблон: %s\n\nВыберите канал для прикрепления:\n✅ - уже прикреплен этот шаблон\n📺 - другой шаблон или нет шаблона", tpl.Name)
}

func templateToggledText(tpl models.Template, ch models.Channel, assigned bool) string {
	if assigned {
		return fmt.Sprintf("✅ Шаблон %s прикреплен к каналу %s", tpl.Name, ch.Name)
	}
	return fmt.Sprintf("✅ Шаблон %s откреплен от канала %s", tpl.Name, ch.Name)
}

func welcomeText(role Role, name string) string {
	if role == RoleSuper {
		return fmt.Sprintf("👋 Привет, %s!\n\n👑 Вы супер-администратор.\n\nВыберите действие:", name)
	}
	return fmt.Sprintf("👋 Привет, %s!\n\nВыберите действие:", name)
}
