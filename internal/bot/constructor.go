package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tgpublisher/internal/publisher"
	"tgpublisher/internal/storage"
)

// NewBot creates a new Telegram bot
func NewBot(token string, db storage.Storage, opts Options, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	pub := publisher.NewTelegram(api, api.Self.ID, logger.Named("publisher"))
	b := newBot(api, db, pub, opts, logger)
	b.client = api
	return b, nil
}

func newBot(api Sender, db storage.Storage, pub publisher.Publisher, opts Options, logger *zap.Logger) *Bot {
	superAdmins := make(map[int64]bool)
	for _, id := range opts.SuperAdminIDs {
		superAdmins[id] = true
	}

	b := &Bot{
		api:         api,
		db:          db,
		pub:         pub,
		superAdmins: superAdmins,
		sessions:    NewSessionStore(),
		links:       opts.Links,
		maxFileMB:   opts.MaxFileSizeMB,
		logger:      logger,
	}
	b.routes = b.stateRoutes()
	b.globals = b.globalRoutes()
	return b
}

// Sessions returns the session store
func (b *Bot) Sessions() *SessionStore {
	return b.sessions
}
