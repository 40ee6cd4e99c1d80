package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"sort"
	"sync"
	"time"

	"tgpublisher/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseDB implements storage.Storage on ClickHouse. Mutable tables use
// ReplacingMergeTree and are read with FINAL; removals are lightweight deletes.
type ClickHouseDB struct {
	conn clickhouse.Conn

	// serializes template ID allocation
	templateMu sync.Mutex
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Initialize is a no-op - tables are managed via migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	return nil
}

// AddAdmin inserts an admin or updates the non-empty fields of the existing one
func (db *ClickHouseDB) AddAdmin(ctx context.Context, admin models.Admin) error {
	existing, err := db.GetAdmin(ctx, admin.UserID)
	if err != nil {
		return err
	}

	row := admin
	if existing != nil {
		row = *existing
		if admin.Username != "" {
			row.Username = admin.Username
		}
		if admin.Role != "" {
			row.Role = admin.Role
		}
		if admin.Name != "" {
			row.Name = admin.Name
		}
	} else {
		if row.Role == "" {
			row.Role = models.RoleJunior
		}
		row.AddedAt = time.Now()
	}

	err = db.conn.Exec(ctx, `INSERT INTO admins (user_id, username, role, name, added_at) VALUES (?, ?, ?, ?, ?)`,
		row.UserID, row.Username, row.Role, row.Name, row.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to add admin: %w", err)
	}
	return nil
}

// RemoveAdmin deletes an admin with its channel assignments
func (db *ClickHouseDB) RemoveAdmin(ctx context.Context, userID int64) error {
	if err := db.conn.Exec(ctx, `DELETE FROM admin_channels WHERE admin_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to remove admin channels: %w", err)
	}
	if err := db.conn.Exec(ctx, `DELETE FROM admins WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to remove admin: %w", err)
	}
	return nil
}

// GetAdmin returns the admin or nil
func (db *ClickHouseDB) GetAdmin(ctx context.Context, userID int64) (*models.Admin, error) {
	admins, err := db.queryAdmins(ctx,
		`SELECT user_id, username, role, name, added_at FROM admins FINAL WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	if len(admins) == 0 {
		return nil, nil
	}
	return &admins[0], nil
}

// GetAdmins returns all admins in the order they were added
func (db *ClickHouseDB) GetAdmins(ctx context.Context) ([]models.Admin, error) {
	return db.queryAdmins(ctx,
		`SELECT user_id, username, role, name, added_at FROM admins FINAL ORDER BY added_at, user_id`)
}

// AddChannel inserts or renames a channel
func (db *ClickHouseDB) AddChannel(ctx context.Context, channelID, name string) error {
	addedAt := time.Now()
	existing, err := db.GetChannel(ctx, channelID)
	if err != nil {
		return err
	}
	if existing != nil {
		addedAt = existing.AddedAt
	}

	err = db.conn.Exec(ctx, `INSERT INTO channels (channel_id, channel_name, added_at) VALUES (?, ?, ?)`,
		channelID, name, addedAt)
	if err != nil {
		return fmt.Errorf("failed to add channel: %w", err)
	}
	return nil
}

// RemoveChannel deletes a channel with its admin and template assignments
func (db *ClickHouseDB) RemoveChannel(ctx context.Context, channelID string) error {
	for _, table := range []string{"admin_channels", "channel_templates", "channels"} {
		if err := db.conn.Exec(ctx, `DELETE FROM `+table+` WHERE channel_id = ?`, channelID); err != nil {
			return fmt.Errorf("failed to remove channel from %s: %w", table, err)
		}
	}
	return nil
}

// GetChannel returns the channel or nil
func (db *ClickHouseDB) GetChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	channels, err := db.queryChannels(ctx,
		`SELECT channel_id, channel_name, added_at FROM channels FINAL WHERE channel_id = ?`, channelID)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, nil
	}
	return &channels[0], nil
}

// GetChannels returns all channels in the order they were added
func (db *ClickHouseDB) GetChannels(ctx context.Context) ([]models.Channel, error) {
	return db.queryChannels(ctx,
		`SELECT channel_id, channel_name, added_at FROM channels FINAL ORDER BY added_at, channel_id`)
}

// AssignAdminChannel attaches a channel to an admin
func (db *ClickHouseDB) AssignAdminChannel(ctx context.Context, adminID int64, channelID string) error {
	err := db.conn.Exec(ctx, `INSERT INTO admin_channels (admin_id, channel_id) VALUES (?, ?)`, adminID, channelID)
	if err != nil {
		return fmt.Errorf("failed to assign channel: %w", err)
	}
	return nil
}

// UnassignAdminChannel detaches a channel from an admin
func (db *ClickHouseDB) UnassignAdminChannel(ctx context.Context, adminID int64, channelID string) error {
	err := db.conn.Exec(ctx, `DELETE FROM admin_channels WHERE admin_id = ? AND channel_id = ?`, adminID, channelID)
	if err != nil {
		return fmt.Errorf("failed to unassign channel: %w", err)
	}
	return nil
}

// GetAdminChannels returns the channels of an admin sorted by name
func (db *ClickHouseDB) GetAdminChannels(ctx context.Context, adminID int64) ([]models.Channel, error) {
	return db.queryChannels(ctx, `
		SELECT channel_id, channel_name, added_at FROM channels FINAL
		WHERE channel_id IN (SELECT channel_id FROM admin_channels FINAL WHERE admin_id = ?)
		ORDER BY channel_name`, adminID)
}

// AddTemplate stores a new template and returns its ID
func (db *ClickHouseDB) AddTemplate(ctx context.Context, name, body string) (int64, error) {
	db.templateMu.Lock()
	defer db.templateMu.Unlock()

	existing, err := db.GetTemplateByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, fmt.Errorf("template %q already exists", name)
	}

	var maxID int64
	if err := db.conn.QueryRow(ctx, `SELECT max(id) FROM templates FINAL`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("failed to allocate template id: %w", err)
	}

	id := maxID + 1
	err = db.conn.Exec(ctx, `INSERT INTO templates (id, name, body, created_at) VALUES (?, ?, ?, ?)`,
		id, name, body, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to add template: %w", err)
	}
	return id, nil
}

// UpdateTemplate replaces the body of a template
func (db *ClickHouseDB) UpdateTemplate(ctx context.Context, templateID int64, body string) error {
	tpl, err := db.GetTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if tpl == nil {
		return nil
	}

	err = db.conn.Exec(ctx, `INSERT INTO templates (id, name, body, created_at) VALUES (?, ?, ?, ?)`,
		tpl.ID, tpl.Name, body, tpl.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	return nil
}

// RemoveTemplate deletes a template and detaches it from its channels
func (db *ClickHouseDB) RemoveTemplate(ctx context.Context, templateID int64) error {
	if err := db.conn.Exec(ctx, `DELETE FROM channel_templates WHERE template_id = ?`, templateID); err != nil {
		return fmt.Errorf("failed to remove template assignments: %w", err)
	}
	if err := db.conn.Exec(ctx, `DELETE FROM templates WHERE id = ?`, templateID); err != nil {
		return fmt.Errorf("failed to remove template: %w", err)
	}
	return nil
}

// GetTemplate returns the template or nil
func (db *ClickHouseDB) GetTemplate(ctx context.Context, templateID int64) (*models.Template, error) {
	return db.queryTemplate(ctx,
		`SELECT id, name, body, created_at FROM templates FINAL WHERE id = ?`, templateID)
}

// GetTemplateByName returns the template with the given name or nil
func (db *ClickHouseDB) GetTemplateByName(ctx context.Context, name string) (*models.Template, error) {
	return db.queryTemplate(ctx,
		`SELECT id, name, body, created_at FROM templates FINAL WHERE name = ?`, name)
}

// GetTemplates returns all templates sorted by name
func (db *ClickHouseDB) GetTemplates(ctx context.Context) ([]models.Template, error) {
	return db.queryTemplates(ctx, `SELECT id, name, body, created_at FROM templates FINAL ORDER BY name`)
}

// AssignTemplate sets the template of a channel, replacing any previous one
func (db *ClickHouseDB) AssignTemplate(ctx context.Context, channelID string, templateID int64) error {
	err := db.conn.Exec(ctx, `INSERT INTO channel_templates (channel_id, template_id) VALUES (?, ?)`,
		channelID, templateID)
	if err != nil {
		return fmt.Errorf("failed to assign template: %w", err)
	}
	return nil
}

// UnassignTemplate removes the template of a channel
func (db *ClickHouseDB) UnassignTemplate(ctx context.Context, channelID string) error {
	if err := db.conn.Exec(ctx, `DELETE FROM channel_templates WHERE channel_id = ?`, channelID); err != nil {
		return fmt.Errorf("failed to unassign template: %w", err)
	}
	return nil
}

// GetChannelTemplate returns the template assigned to a channel or nil
func (db *ClickHouseDB) GetChannelTemplate(ctx context.Context, channelID string) (*models.Template, error) {
	return db.queryTemplate(ctx, `
		SELECT id, name, body, created_at FROM templates FINAL
		WHERE id IN (SELECT template_id FROM channel_templates FINAL WHERE channel_id = ?)`, channelID)
}

// LogUpload records a published file
func (db *ClickHouseDB) LogUpload(ctx context.Context, upload models.Upload) error {
	uploadedAt := upload.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}

	err := db.conn.Exec(ctx, `
		INSERT INTO uploads (admin_id, channel_id, title, season, episode, file_id, message_id, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		upload.AdminID, upload.ChannelID, upload.Title, int32(upload.Season), int32(upload.Episode),
		upload.FileID, upload.MessageID, uploadedAt)
	if err != nil {
		return fmt.Errorf("failed to log upload: %w", err)
	}
	return nil
}

// GetAdminStats counts the uploads of an admin, per existing channel
func (db *ClickHouseDB) GetAdminStats(ctx context.Context, adminID int64) (models.AdminStats, error) {
	var stats models.AdminStats

	rows, err := db.conn.Query(ctx,
		`SELECT channel_id, count() FROM uploads WHERE admin_id = ? GROUP BY channel_id`, adminID)
	if err != nil {
		return stats, fmt.Errorf("failed to count uploads: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var channelID string
		var count uint64
		if err := rows.Scan(&channelID, &count); err != nil {
			return stats, fmt.Errorf("failed to scan upload count: %w", err)
		}
		counts[channelID] = int(count)
		stats.Total += int(count)
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	channels, err := db.GetChannels(ctx)
	if err != nil {
		return stats, err
	}
	for _, ch := range channels {
		if count, ok := counts[ch.ID]; ok {
			stats.ByChannel = append(stats.ByChannel, models.ChannelCount{ChannelID: ch.ID, ChannelName: ch.Name, Count: count})
		}
	}
	sort.Slice(stats.ByChannel, func(i, j int) bool {
		if stats.ByChannel[i].Count != stats.ByChannel[j].Count {
			return stats.ByChannel[i].Count > stats.ByChannel[j].Count
		}
		return stats.ByChannel[i].ChannelName < stats.ByChannel[j].ChannelName
	})
	return stats, nil
}

// GetAllStats returns the upload total of every admin, busiest first
func (db *ClickHouseDB) GetAllStats(ctx context.Context) ([]models.AdminTotal, error) {
	counts, err := db.countByAdmin(ctx, `SELECT admin_id, count() FROM uploads GROUP BY admin_id`)
	if err != nil {
		return nil, err
	}

	admins, err := db.GetAdmins(ctx)
	if err != nil {
		return nil, err
	}

	totals := make([]models.AdminTotal, 0, len(admins))
	for _, a := range admins {
		totals = append(totals, models.AdminTotal{UserID: a.UserID, Username: a.Username, Total: counts[a.UserID]})
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Total != totals[j].Total {
			return totals[i].Total > totals[j].Total
		}
		return totals[i].UserID < totals[j].UserID
	})
	return totals, nil
}

// GetChannelStats counts the uploads to a channel per admin and returns
// the latest ones
func (db *ClickHouseDB) GetChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	var stats models.ChannelStats

	counts, err := db.countByAdmin(ctx,
		`SELECT admin_id, count() FROM uploads WHERE channel_id = ? GROUP BY admin_id`, channelID)
	if err != nil {
		return stats, err
	}
	for _, count := range counts {
		stats.Total += count
	}

	admins, err := db.GetAdmins(ctx)
	if err != nil {
		return stats, err
	}
	for _, a := range admins {
		if count, ok := counts[a.UserID]; ok {
			stats.ByAdmin = append(stats.ByAdmin, models.AdminCount{UserID: a.UserID, Username: a.Username, Count: count})
		}
	}
	sort.SliceStable(stats.ByAdmin, func(i, j int) bool {
		if stats.ByAdmin[i].Count != stats.ByAdmin[j].Count {
			return stats.ByAdmin[i].Count > stats.ByAdmin[j].Count
		}
		return stats.ByAdmin[i].UserID < stats.ByAdmin[j].UserID
	})

	rows, err := db.conn.Query(ctx, `
		SELECT admin_id, channel_id, title, season, episode, file_id, message_id, uploaded_at
		FROM uploads WHERE channel_id = ?
		ORDER BY uploaded_at DESC LIMIT ?`, channelID, models.RecentUploadsLimit)
	if err != nil {
		return stats, fmt.Errorf("failed to list recent uploads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.Upload
		var season, episode int32
		if err := rows.Scan(&u.AdminID, &u.ChannelID, &u.Title, &season, &episode,
			&u.FileID, &u.MessageID, &u.UploadedAt); err != nil {
			return stats, fmt.Errorf("failed to scan upload: %w", err)
		}
		u.Season = int(season)
		u.Episode = int(episode)
		stats.Recent = append(stats.Recent, u)
	}
	return stats, rows.Err()
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func (db *ClickHouseDB) queryAdmins(ctx context.Context, query string, args ...any) ([]models.Admin, error) {
	rows, err := db.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var admins []models.Admin
	for rows.Next() {
		var a models.Admin
		if err := rows.Scan(&a.UserID, &a.Username, &a.Role, &a.Name, &a.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (db *ClickHouseDB) queryChannels(ctx context.Context, query string, args ...any) ([]models.Channel, error) {
	rows, err := db.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (db *ClickHouseDB) queryTemplates(ctx context.Context, query string, args ...any) ([]models.Template, error) {
	rows, err := db.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		var tpl models.Template
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Body, &tpl.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

func (db *ClickHouseDB) queryTemplate(ctx context.Context, query string, args ...any) (*models.Template, error) {
	templates, err := db.queryTemplates(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, nil
	}
	return &templates[0], nil
}

func (db *ClickHouseDB) countByAdmin(ctx context.Context, query string, args ...any) (map[int64]int, error) {
	rows, err := db.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count uploads: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var adminID int64
		var count uint64
		if err := rows.Scan(&adminID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan upload count: %w", err)
		}
		counts[adminID] = int(count)
	}
	return counts, rows.Err()
}
