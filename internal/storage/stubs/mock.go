package stubs

import (
	"context"
	"sort"
	"sync"
	"time"

	"tgpublisher/internal/models"
)

// MockDB is an in-memory implementation of the Storage interface for
// testing and for running without a database
type MockDB struct {
	mu               sync.RWMutex
	admins           map[int64]models.Admin
	channels         map[string]models.Channel
	templates        map[int64]models.Template
	adminChannels    map[int64]map[string]bool
	channelTemplates map[string]int64
	uploads          []models.Upload
	nextTemplateID   int64
	now              func() time.Time
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		admins:           make(map[int64]models.Admin),
		channels:         make(map[string]models.Channel),
		templates:        make(map[int64]models.Template),
		adminChannels:    make(map[int64]map[string]bool),
		channelTemplates: make(map[string]int64),
		nextTemplateID:   1,
		now:              time.Now,
	}
}

// Initialize does nothing, the mock starts empty
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// AddAdmin inserts an admin or merges non-empty fields into the existing one
func (m *MockDB) AddAdmin(ctx context.Context, admin models.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.admins[admin.UserID]
	if !ok {
		if admin.Role == "" {
			admin.Role = models.RoleJunior
		}
		admin.AddedAt = m.now()
		m.admins[admin.UserID] = admin
		return nil
	}

	if admin.Username != "" {
		existing.Username = admin.Username
	}
	if admin.Role != "" {
		existing.Role = admin.Role
	}
	if admin.Name != "" {
		existing.Name = admin.Name
	}
	m.admins[admin.UserID] = existing
	return nil
}

// RemoveAdmin deletes an admin together with its channel assignments
func (m *MockDB) RemoveAdmin(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.admins, userID)
	delete(m.adminChannels, userID)
	return nil
}

// GetAdmin returns the admin or nil
func (m *MockDB) GetAdmin(ctx context.Context, userID int64) (*models.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	admin, ok := m.admins[userID]
	if !ok {
		return nil, nil
	}
	return &admin, nil
}

// GetAdmins returns all admins ordered by the time they were added
func (m *MockDB) GetAdmins(ctx context.Context) ([]models.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	admins := make([]models.Admin, 0, len(m.admins))
	for _, a := range m.admins {
		admins = append(admins, a)
	}
	sort.Slice(admins, func(i, j int) bool {
		if !admins[i].AddedAt.Equal(admins[j].AddedAt) {
			return admins[i].AddedAt.Before(admins[j].AddedAt)
		}
		return admins[i].UserID < admins[j].UserID
	})
	return admins, nil
}

// AddChannel inserts or renames a channel
func (m *MockDB) AddChannel(ctx context.Context, channelID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels[channelID]
	if !ok {
		ch = models.Channel{ID: channelID, AddedAt: m.now()}
	}
	ch.Name = name
	m.channels[channelID] = ch
	return nil
}

// RemoveChannel deletes a channel with its admin and template assignments
func (m *MockDB) RemoveChannel(ctx context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.channels, channelID)
	delete(m.channelTemplates, channelID)
	for _, set := range m.adminChannels {
		delete(set, channelID)
	}
	return nil
}

// GetChannel returns the channel or nil
func (m *MockDB) GetChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ch, ok := m.channels[channelID]
	if !ok {
		return nil, nil
	}
	return &ch, nil
}

// GetChannels returns all channels ordered by the time they were added
func (m *MockDB) GetChannels(ctx context.Context) ([]models.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	channels := make([]models.Channel, 0, len(m.channels))
	for _, ch := range m.channels {
		channels = append(channels, ch)
	}
	sortChannelsByAdded(channels)
	return channels, nil
}

// AssignAdminChannel attaches a channel to an admin
func (m *MockDB) AssignAdminChannel(ctx context.Context, adminID int64, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.adminChannels[adminID]
	if !ok {
		set = make(map[string]bool)
		m.adminChannels[adminID] = set
	}
	set[channelID] = true
	return nil
}

// UnassignAdminChannel detaches a channel from an admin
func (m *MockDB) UnassignAdminChannel(ctx context.Context, adminID int64, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.adminChannels[adminID], channelID)
	return nil
}

// GetAdminChannels returns the channels of an admin sorted by name
func (m *MockDB) GetAdminChannels(ctx context.Context, adminID int64) ([]models.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var channels []models.Channel
	for id := range m.adminChannels[adminID] {
		if ch, ok := m.channels[id]; ok {
			channels = append(channels, ch)
		}
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].Name < channels[j].Name
	})
	return channels, nil
}

// AddTemplate stores a template and returns its ID
func (m *MockDB) AddTemplate(ctx context.Context, name, body string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextTemplateID
	m.nextTemplateID++
	m.templates[id] = models.Template{ID: id, Name: name, Body: body, CreatedAt: m.now()}
	return id, nil
}

// UpdateTemplate replaces the template body
func (m *MockDB) UpdateTemplate(ctx context.Context, templateID int64, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tpl, ok := m.templates[templateID]
	if !ok {
		return nil
	}
	tpl.Body = body
	m.templates[templateID] = tpl
	return nil
}

// RemoveTemplate deletes a template and detaches it from its channels
func (m *MockDB) RemoveTemplate(ctx context.Context, templateID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.templates, templateID)
	for channelID, id := range m.channelTemplates {
		if id == templateID {
			delete(m.channelTemplates, channelID)
		}
	}
	return nil
}

// GetTemplate returns the template or nil
func (m *MockDB) GetTemplate(ctx context.Context, templateID int64) (*models.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tpl, ok := m.templates[templateID]
	if !ok {
		return nil, nil
	}
	return &tpl, nil
}

// GetTemplateByName returns the template with the given name or nil
func (m *MockDB) GetTemplateByName(ctx context.Context, name string) (*models.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, tpl := range m.templates {
		if tpl.Name == name {
			return &tpl, nil
		}
	}
	return nil, nil
}

// GetTemplates returns all templates sorted by name
func (m *MockDB) GetTemplates(ctx context.Context) ([]models.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	templates := make([]models.Template, 0, len(m.templates))
	for _, tpl := range m.templates {
		templates = append(templates, tpl)
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

// AssignTemplate sets the template of a channel, replacing any previous one
func (m *MockDB) AssignTemplate(ctx context.Context, channelID string, templateID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.channelTemplates[channelID] = templateID
	return nil
}

// UnassignTemplate removes the template of a channel
func (m *MockDB) UnassignTemplate(ctx context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.channelTemplates, channelID)
	return nil
}

// GetChannelTemplate returns the template assigned to a channel or nil
func (m *MockDB) GetChannelTemplate(ctx context.Context, channelID string) (*models.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.channelTemplates[channelID]
	if !ok {
		return nil, nil
	}
	tpl, ok := m.templates[id]
	if !ok {
		return nil, nil
	}
	return &tpl, nil
}

// LogUpload records a published file
func (m *MockDB) LogUpload(ctx context.Context, upload models.Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if upload.UploadedAt.IsZero() {
		upload.UploadedAt = m.now()
	}
	m.uploads = append(m.uploads, upload)
	return nil
}

// GetAdminStats counts the uploads of an admin, per existing channel
func (m *MockDB) GetAdminStats(ctx context.Context, adminID int64) (models.AdminStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats models.AdminStats
	counts := make(map[string]int)
	for _, u := range m.uploads {
		if u.AdminID != adminID {
			continue
		}
		stats.Total++
		if _, ok := m.channels[u.ChannelID]; ok {
			counts[u.ChannelID]++
		}
	}

	for id, count := range counts {
		stats.ByChannel = append(stats.ByChannel, models.ChannelCount{
			ChannelID:   id,
			ChannelName: m.channels[id].Name,
			Count:       count,
		})
	}

	// Sort by count descending, then by name
	sort.Slice(stats.ByChannel, func(i, j int) bool {
		if stats.ByChannel[i].Count != stats.ByChannel[j].Count {
			return stats.ByChannel[i].Count > stats.ByChannel[j].Count
		}
		return stats.ByChannel[i].ChannelName < stats.ByChannel[j].ChannelName
	})
	return stats, nil
}

// GetAllStats returns the upload total of every admin, busiest first
func (m *MockDB) GetAllStats(ctx context.Context) ([]models.AdminTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[int64]int)
	for _, u := range m.uploads {
		counts[u.AdminID]++
	}

	totals := make([]models.AdminTotal, 0, len(m.admins))
	for id, a := range m.admins {
		totals = append(totals, models.AdminTotal{UserID: id, Username: a.Username, Total: counts[id]})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total != totals[j].Total {
			return totals[i].Total > totals[j].Total
		}
		return totals[i].UserID < totals[j].UserID
	})
	return totals, nil
}

// GetChannelStats counts the uploads to a channel per admin and returns
// the five most recent ones
func (m *MockDB) GetChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats models.ChannelStats
	counts := make(map[int64]int)
	var recent []models.Upload
	for _, u := range m.uploads {
		if u.ChannelID != channelID {
			continue
		}
		stats.Total++
		recent = append(recent, u)
		if _, ok := m.admins[u.AdminID]; ok {
			counts[u.AdminID]++
		}
	}

	for id, count := range counts {
		stats.ByAdmin = append(stats.ByAdmin, models.AdminCount{
			UserID:   id,
			Username: m.admins[id].Username,
			Count:    count,
		})
	}
	sort.Slice(stats.ByAdmin, func(i, j int) bool {
		if stats.ByAdmin[i].Count != stats.ByAdmin[j].Count {
			return stats.ByAdmin[i].Count > stats.ByAdmin[j].Count
		}
		return stats.ByAdmin[i].UserID < stats.ByAdmin[j].UserID
	})

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UploadedAt.After(recent[j].UploadedAt)
	})
	if len(recent) > models.RecentUploadsLimit {
		recent = recent[:models.RecentUploadsLimit]
	}
	stats.Recent = recent
	return stats, nil
}

// Close does nothing for mock DB
func (m *MockDB) Close() error {
	return nil
}

func sortChannelsByAdded(channels []models.Channel) {
	sort.Slice(channels, func(i, j int) bool {
		if !channels[i].AddedAt.Equal(channels[j].AddedAt) {
			return channels[i].AddedAt.Before(channels[j].AddedAt)
		}
		return channels[i].ID < channels[j].ID
	})
}
