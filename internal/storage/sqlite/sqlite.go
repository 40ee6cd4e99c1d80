// Package sqlite implements the bot storage on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tgpublisher/internal/models"
	"tgpublisher/migrations"
)

// SQLiteDB implements storage.Storage using SQLite
type SQLiteDB struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteDB opens (creating if needed) the database file at path
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY between concurrent handlers
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteDB{db: db, now: time.Now}, nil
}

// Initialize applies the embedded migrations
func (s *SQLiteDB) Initialize(ctx context.Context) error {
	provider, err := migrations.NewProvider(migrations.SQLite, s.db)
	if err != nil {
		return err
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// AddAdmin inserts an admin or updates the non-empty fields of the existing one
func (s *SQLiteDB) AddAdmin(ctx context.Context, admin models.Admin) error {
	query := `
	INSERT INTO admins (user_id, username, role, name, added_at)
	VALUES (?, ?, COALESCE(NULLIF(?, ''), 'junior'), ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		username = COALESCE(NULLIF(excluded.username, ''), admins.username),
		role = COALESCE(NULLIF(?, ''), admins.role),
		name = COALESCE(NULLIF(excluded.name, ''), admins.name)`

	_, err := s.db.ExecContext(ctx, query,
		admin.UserID, admin.Username, admin.Role, admin.Name, s.now().Unix(),
		admin.Role,
	)
	if err != nil {
		return fmt.Errorf("add admin: %w", err)
	}
	return nil
}

// RemoveAdmin deletes an admin with its channel assignments
func (s *SQLiteDB) RemoveAdmin(ctx context.Context, userID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM admin_channels WHERE admin_id = ?`, userID); err != nil {
			return fmt.Errorf("remove admin channels: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM admins WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("remove admin: %w", err)
		}
		return nil
	})
}

// GetAdmin returns the admin or nil
func (s *SQLiteDB) GetAdmin(ctx context.Context, userID int64) (*models.Admin, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, role, name, added_at FROM admins WHERE user_id = ?`, userID)

	admin, err := scanAdmin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &admin, nil
}

// GetAdmins returns all admins in the order they were added
func (s *SQLiteDB) GetAdmins(ctx context.Context) ([]models.Admin, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, username, role, name, added_at FROM admins ORDER BY added_at, user_id`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var admins []models.Admin
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, admin)
	}
	return admins, rows.Err()
}

// AddChannel inserts or renames a channel
func (s *SQLiteDB) AddChannel(ctx context.Context, channelID, name string) error {
	query := `
	INSERT INTO channels (channel_id, channel_name, added_at) VALUES (?, ?, ?)
	ON CONFLICT(channel_id) DO UPDATE SET channel_name = excluded.channel_name`

	if _, err := s.db.ExecContext(ctx, query, channelID, name, s.now().Unix()); err != nil {
		return fmt.Errorf("add channel: %w", err)
	}
	return nil
}

// RemoveChannel deletes a channel with its admin and template assignments
func (s *SQLiteDB) RemoveChannel(ctx context.Context, channelID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, query := range []string{
			`DELETE FROM admin_channels WHERE channel_id = ?`,
			`DELETE FROM channel_templates WHERE channel_id = ?`,
			`DELETE FROM channels WHERE channel_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, query, channelID); err != nil {
				return fmt.Errorf("remove channel: %w", err)
			}
		}
		return nil
	})
}

// GetChannel returns the channel or nil
func (s *SQLiteDB) GetChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT channel_id, channel_name, added_at FROM channels WHERE channel_id = ?`, channelID)

	ch, err := scanChannel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return &ch, nil
}

// GetChannels returns all channels in the order they were added
func (s *SQLiteDB) GetChannels(ctx context.Context) ([]models.Channel, error) {
	return s.queryChannels(ctx,
		`SELECT channel_id, channel_name, added_at FROM channels ORDER BY added_at, channel_id`)
}

// AssignAdminChannel attaches a channel to an admin
func (s *SQLiteDB) AssignAdminChannel(ctx context.Context, adminID int64, channelID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO admin_channels (admin_id, channel_id) VALUES (?, ?)`, adminID, channelID)
	if err != nil {
		return fmt.Errorf("assign channel: %w", err)
	}
	return nil
}

// UnassignAdminChannel detaches a channel from an admin
func (s *SQLiteDB) UnassignAdminChannel(ctx context.Context, adminID int64, channelID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM admin_channels WHERE admin_id = ? AND channel_id = ?`, adminID, channelID)
	if err != nil {
		return fmt.Errorf("unassign channel: %w", err)
	}
	return nil
}

// GetAdminChannels returns the channels of an admin sorted by name
func (s *SQLiteDB) GetAdminChannels(ctx context.Context, adminID int64) ([]models.Channel, error) {
	return s.queryChannels(ctx, `
		SELECT c.channel_id, c.channel_name, c.added_at
		FROM channels c
		JOIN admin_channels ac ON ac.channel_id = c.channel_id
		WHERE ac.admin_id = ?
		ORDER BY c.channel_name`, adminID)
}

// AddTemplate stores a new template and returns its ID
func (s *SQLiteDB) AddTemplate(ctx context.Context, name, body string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO templates (name, body, created_at) VALUES (?, ?, ?)`, name, body, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("add template: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get template id: %w", err)
	}
	return id, nil
}

// UpdateTemplate replaces the body of a template
func (s *SQLiteDB) UpdateTemplate(ctx context.Context, templateID int64, body string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE templates SET body = ? WHERE id = ?`, body, templateID); err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

// RemoveTemplate deletes a template and detaches it from its channels
func (s *SQLiteDB) RemoveTemplate(ctx context.Context, templateID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM channel_templates WHERE template_id = ?`, templateID); err != nil {
			return fmt.Errorf("remove template assignments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, templateID); err != nil {
			return fmt.Errorf("remove template: %w", err)
		}
		return nil
	})
}

// GetTemplate returns the template or nil
func (s *SQLiteDB) GetTemplate(ctx context.Context, templateID int64) (*models.Template, error) {
	return s.queryTemplate(ctx,
		`SELECT id, name, body, created_at FROM templates WHERE id = ?`, templateID)
}

// GetTemplateByName returns the template with the given name or nil
func (s *SQLiteDB) GetTemplateByName(ctx context.Context, name string) (*models.Template, error) {
	return s.queryTemplate(ctx,
		`SELECT id, name, body, created_at FROM templates WHERE name = ?`, name)
}

// GetTemplates returns all templates sorted by name
func (s *SQLiteDB) GetTemplates(ctx context.Context) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, body, created_at FROM templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

// AssignTemplate sets the template of a channel, replacing any previous one
func (s *SQLiteDB) AssignTemplate(ctx context.Context, channelID string, templateID int64) error {
	query := `
	INSERT INTO channel_templates (channel_id, template_id) VALUES (?, ?)
	ON CONFLICT(channel_id) DO UPDATE SET template_id = excluded.template_id`

	if _, err := s.db.ExecContext(ctx, query, channelID, templateID); err != nil {
		return fmt.Errorf("assign template: %w", err)
	}
	return nil
}

// UnassignTemplate removes the template of a channel
func (s *SQLiteDB) UnassignTemplate(ctx context.Context, channelID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM channel_templates WHERE channel_id = ?`, channelID); err != nil {
		return fmt.Errorf("unassign template: %w", err)
	}
	return nil
}

// GetChannelTemplate returns the template assigned to a channel or nil
func (s *SQLiteDB) GetChannelTemplate(ctx context.Context, channelID string) (*models.Template, error) {
	return s.queryTemplate(ctx, `
		SELECT t.id, t.name, t.body, t.created_at
		FROM templates t
		JOIN channel_templates ct ON ct.template_id = t.id
		WHERE ct.channel_id = ?`, channelID)
}

// LogUpload records a published file
func (s *SQLiteDB) LogUpload(ctx context.Context, upload models.Upload) error {
	uploadedAt := upload.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO uploads (admin_id, channel_id, title, season, episode, file_id, message_id, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		upload.AdminID, upload.ChannelID, upload.Title, upload.Season, upload.Episode,
		upload.FileID, upload.MessageID, uploadedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("log upload: %w", err)
	}
	return nil
}

// GetAdminStats counts the uploads of an admin, per existing channel
func (s *SQLiteDB) GetAdminStats(ctx context.Context, adminID int64) (models.AdminStats, error) {
	var stats models.AdminStats

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM uploads WHERE admin_id = ?`, adminID).Scan(&stats.Total)
	if err != nil {
		return stats, fmt.Errorf("count uploads: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.channel_id, c.channel_name, COUNT(*) AS cnt
		FROM uploads u
		JOIN channels c ON c.channel_id = u.channel_id
		WHERE u.admin_id = ?
		GROUP BY c.channel_id, c.channel_name
		ORDER BY cnt DESC, c.channel_name`, adminID)
	if err != nil {
		return stats, fmt.Errorf("count uploads by channel: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc models.ChannelCount
		if err := rows.Scan(&cc.ChannelID, &cc.ChannelName, &cc.Count); err != nil {
			return stats, fmt.Errorf("scan channel count: %w", err)
		}
		stats.ByChannel = append(stats.ByChannel, cc)
	}
	return stats, rows.Err()
}

// GetAllStats returns the upload total of every admin, busiest first
func (s *SQLiteDB) GetAllStats(ctx context.Context) ([]models.AdminTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.user_id, a.username, COUNT(u.id) AS total
		FROM admins a
		LEFT JOIN uploads u ON u.admin_id = a.user_id
		GROUP BY a.user_id, a.username
		ORDER BY total DESC, a.user_id`)
	if err != nil {
		return nil, fmt.Errorf("count uploads by admin: %w", err)
	}
	defer rows.Close()

	var totals []models.AdminTotal
	for rows.Next() {
		var at models.AdminTotal
		if err := rows.Scan(&at.UserID, &at.Username, &at.Total); err != nil {
			return nil, fmt.Errorf("scan admin total: %w", err)
		}
		totals = append(totals, at)
	}
	return totals, rows.Err()
}

// GetChannelStats counts the uploads to a channel per admin and returns
// the latest ones
func (s *SQLiteDB) GetChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	var stats models.ChannelStats

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM uploads WHERE channel_id = ?`, channelID).Scan(&stats.Total)
	if err != nil {
		return stats, fmt.Errorf("count uploads: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.user_id, a.username, COUNT(*) AS cnt
		FROM uploads u
		JOIN admins a ON a.user_id = u.admin_id
		WHERE u.channel_id = ?
		GROUP BY a.user_id, a.username
		ORDER BY cnt DESC, a.user_id`, channelID)
	if err != nil {
		return stats, fmt.Errorf("count uploads by admin: %w", err)
	}
	for rows.Next() {
		var ac models.AdminCount
		if err := rows.Scan(&ac.UserID, &ac.Username, &ac.Count); err != nil {
			rows.Close()
			return stats, fmt.Errorf("scan admin count: %w", err)
		}
		stats.ByAdmin = append(stats.ByAdmin, ac)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT admin_id, channel_id, title, season, episode, file_id, message_id, uploaded_at
		FROM uploads
		WHERE channel_id = ?
		ORDER BY uploaded_at DESC, id DESC
		LIMIT ?`, channelID, models.RecentUploadsLimit)
	if err != nil {
		return stats, fmt.Errorf("list recent uploads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.Upload
		var uploadedAt int64
		if err := rows.Scan(&u.AdminID, &u.ChannelID, &u.Title, &u.Season, &u.Episode,
			&u.FileID, &u.MessageID, &uploadedAt); err != nil {
			return stats, fmt.Errorf("scan upload: %w", err)
		}
		u.UploadedAt = time.UnixMilli(uploadedAt)
		stats.Recent = append(stats.Recent, u)
	}
	return stats, rows.Err()
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAdmin(row scanner) (models.Admin, error) {
	var admin models.Admin
	var addedAt int64
	if err := row.Scan(&admin.UserID, &admin.Username, &admin.Role, &admin.Name, &addedAt); err != nil {
		return admin, err
	}
	admin.AddedAt = time.Unix(addedAt, 0)
	return admin, nil
}

func scanChannel(row scanner) (models.Channel, error) {
	var ch models.Channel
	var addedAt int64
	if err := row.Scan(&ch.ID, &ch.Name, &addedAt); err != nil {
		return ch, err
	}
	ch.AddedAt = time.Unix(addedAt, 0)
	return ch, nil
}

func scanTemplate(row scanner) (models.Template, error) {
	var tpl models.Template
	var createdAt int64
	if err := row.Scan(&tpl.ID, &tpl.Name, &tpl.Body, &createdAt); err != nil {
		return tpl, err
	}
	tpl.CreatedAt = time.Unix(createdAt, 0)
	return tpl, nil
}

func (s *SQLiteDB) queryChannels(ctx context.Context, query string, args ...any) ([]models.Channel, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (s *SQLiteDB) queryTemplate(ctx context.Context, query string, args ...any) (*models.Template, error) {
	tpl, err := scanTemplate(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &tpl, nil
}

func (s *SQLiteDB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
