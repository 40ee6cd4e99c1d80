package storage

import (
	"context"

	"tgpublisher/internal/models"
)

// Storage defines the persistence operations used by the bot.
//
// Single-record getters return (nil, nil) when the record does not exist.
type Storage interface {
	// Admin operations

	// AddAdmin inserts the admin or updates the non-empty fields of an
	// existing record
	AddAdmin(ctx context.Context, admin models.Admin) error
	RemoveAdmin(ctx context.Context, userID int64) error
	GetAdmin(ctx context.Context, userID int64) (*models.Admin, error)
	GetAdmins(ctx context.Context) ([]models.Admin, error)

	// Channel operations
	AddChannel(ctx context.Context, channelID, name string) error
	RemoveChannel(ctx context.Context, channelID string) error
	GetChannel(ctx context.Context, channelID string) (*models.Channel, error)
	GetChannels(ctx context.Context) ([]models.Channel, error)

	// Admin-channel assignment
	AssignAdminChannel(ctx context.Context, adminID int64, channelID string) error
	UnassignAdminChannel(ctx context.Context, adminID int64, channelID string) error
	GetAdminChannels(ctx context.Context, adminID int64) ([]models.Channel, error)

	// Template operations
	AddTemplate(ctx context.Context, name, body string) (int64, error)
	UpdateTemplate(ctx context.Context, templateID int64, body string) error
	RemoveTemplate(ctx context.Context, templateID int64) error
	GetTemplate(ctx context.Context, templateID int64) (*models.Template, error)
	GetTemplateByName(ctx context.Context, name string) (*models.Template, error)
	GetTemplates(ctx context.Context) ([]models.Template, error)

	// Channel-template assignment. A channel has at most one template;
	// AssignTemplate replaces the previous one.
	AssignTemplate(ctx context.Context, channelID string, templateID int64) error
	UnassignTemplate(ctx context.Context, channelID string) error
	GetChannelTemplate(ctx context.Context, channelID string) (*models.Template, error)

	// Statistics operations
	LogUpload(ctx context.Context, upload models.Upload) error
	GetAdminStats(ctx context.Context, adminID int64) (models.AdminStats, error)
	GetAllStats(ctx context.Context) ([]models.AdminTotal, error)
	GetChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
