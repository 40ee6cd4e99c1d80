package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tgpublisher/internal/caption"
	"tgpublisher/internal/publisher"
	"tgpublisher/internal/storage"
)

// Sender delivers messages to users. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot represents the Telegram bot wrapper
type Bot struct {
	api         Sender
	client      *tgbotapi.BotAPI // nil in tests; used for polling and webhook setup
	db          storage.Storage
	pub         publisher.Publisher
	superAdmins map[int64]bool
	sessions    *SessionStore
	links       caption.Links
	maxFileMB   int
	logger      *zap.Logger

	routes  map[State]stateRoutes
	globals map[Action]globalRoute
}

// Options configures a Bot
type Options struct {
	SuperAdminIDs []int64
	Links         caption.Links
	// MaxFileSizeMB rejects larger media when positive
	MaxFileSizeMB int
}

// event is one inbound update, normalized
type event struct {
	userID   int64
	chatID   int64
	username string
	name     string
	role     Role

	command string
	args    string
	text    string
	media   *publisher.Media

	payload    *Payload
	callbackID string
	messageID  int // message carrying the pressed button
}

type handlerFunc func(ctx context.Context, s *Session, ev *event)

// stateRoutes are the handlers of one state, per event shape
type stateRoutes struct {
	text    handlerFunc
	media   handlerFunc
	buttons map[Action]handlerFunc
}

// globalRoute is a button available from every state
type globalRoute struct {
	role    Role
	handler handlerFunc
}
