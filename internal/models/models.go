package models

import (
	"strconv"
	"time"
)

// Role of an admin record
const (
	RoleSuper  = "super"
	RoleJunior = "junior"
)

// Admin represents a user allowed to publish through the bot
type Admin struct {
	UserID   int64
	Username string
	Role     string
	Name     string
	AddedAt  time.Time
}

// DisplayName returns the username or an "ID: n" fallback
func (a Admin) DisplayName() string {
	if a.Username != "" {
		return a.Username
	}
	return "ID: " + strconv.FormatInt(a.UserID, 10)
}

// Channel represents a managed publishing target
type Channel struct {
	ID      string // canonical reference: @username or -100…
	Name    string
	AddedAt time.Time
}

// Template is a named caption pattern with {title}, {season}, {episode}, {tag}
type Template struct {
	ID        int64
	Name      string
	Body      string
	CreatedAt time.Time
}

// Upload is one published file
type Upload struct {
	AdminID    int64
	ChannelID  string
	Title      string
	Season     int
	Episode    int
	FileID     string
	MessageID  string
	UploadedAt time.Time
}

// ChannelCount is the number of uploads to one channel
type ChannelCount struct {
	ChannelID   string
	ChannelName string
	Count       int
}

// AdminStats is the upload statistics of one admin
type AdminStats struct {
	Total     int
	ByChannel []ChannelCount
}

// AdminTotal is an admin's overall upload count
type AdminTotal struct {
	UserID   int64
	Username string
	Total    int
}

// AdminCount is the number of uploads by one admin
type AdminCount struct {
	UserID   int64
	Username string
	Count    int
}

// ChannelStats is the upload statistics of one channel
type ChannelStats struct {
	Total   int
	ByAdmin []AdminCount
	Recent  []Upload
}

// RecentUploadsLimit is the number of latest uploads in ChannelStats.Recent
const RecentUploadsLimit = 5
