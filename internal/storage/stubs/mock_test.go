package stubs

import (
	"context"
	"testing"
	"time"

	"tgpublisher/internal/models"
)

func TestMockDB_AddAdminMergesFields(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	if err := db.AddAdmin(ctx, models.Admin{UserID: 42, Username: "alice", Name: "Alice"}); err != nil {
		t.Fatalf("Failed to add admin: %v", err)
	}

	admin, err := db.GetAdmin(ctx, 42)
	if err != nil {
		t.Fatalf("Failed to get admin: %v", err)
	}
	if admin == nil {
		t.Fatal("Expected admin to exist")
	}
	if admin.Role != models.RoleJunior {
		t.Errorf("Expected default role %q, got %q", models.RoleJunior, admin.Role)
	}

	// Empty fields must not overwrite stored ones
	if err := db.AddAdmin(ctx, models.Admin{UserID: 42, Username: "alice_new"}); err != nil {
		t.Fatalf("Failed to update admin: %v", err)
	}

	admin, _ = db.GetAdmin(ctx, 42)
	if admin.Username != "alice_new" {
		t.Errorf("Expected username alice_new, got %q", admin.Username)
	}
	if admin.Name != "Alice" {
		t.Errorf("Expected name to be kept, got %q", admin.Name)
	}
}

func TestMockDB_GetAdminMissing(t *testing.T) {
	db := NewMockDB()

	admin, err := db.GetAdmin(context.Background(), 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if admin != nil {
		t.Errorf("Expected nil admin, got %+v", admin)
	}
}

func TestMockDB_RemoveAdminDropsAssignments(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	_ = db.AddAdmin(ctx, models.Admin{UserID: 7})
	_ = db.AddChannel(ctx, "@news", "News")
	_ = db.AssignAdminChannel(ctx, 7, "@news")

	if err := db.RemoveAdmin(ctx, 7); err != nil {
		t.Fatalf("Failed to remove admin: %v", err)
	}

	// Re-adding the admin must not resurrect old assignments
	_ = db.AddAdmin(ctx, models.Admin{UserID: 7})
	channels, err := db.GetAdminChannels(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to get admin channels: %v", err)
	}
	if len(channels) != 0 {
		t.Errorf("Expected no channels, got %d", len(channels))
	}
}

func TestMockDB_AssignAdminChannelIdempotent(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	_ = db.AddChannel(ctx, "@b", "Bravo")
	_ = db.AddChannel(ctx, "@a", "Alpha")

	for i := 0; i < 3; i++ {
		if err := db.AssignAdminChannel(ctx, 1, "@b"); err != nil {
			t.Fatalf("Failed to assign channel: %v", err)
		}
	}
	_ = db.AssignAdminChannel(ctx, 1, "@a")

	channels, _ := db.GetAdminChannels(ctx, 1)
	if len(channels) != 2 {
		t.Fatalf("Expected 2 channels, got %d", len(channels))
	}
	if channels[0].Name != "Alpha" || channels[1].Name != "Bravo" {
		t.Errorf("Expected channels sorted by name, got %q, %q", channels[0].Name, channels[1].Name)
	}

	_ = db.UnassignAdminChannel(ctx, 1, "@b")
	_ = db.UnassignAdminChannel(ctx, 1, "@b")
	channels, _ = db.GetAdminChannels(ctx, 1)
	if len(channels) != 1 {
		t.Errorf("Expected 1 channel after unassign, got %d", len(channels))
	}
}

func TestMockDB_RemoveChannelCascades(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	_ = db.AddChannel(ctx, "@news", "News")
	_ = db.AssignAdminChannel(ctx, 1, "@news")
	id, _ := db.AddTemplate(ctx, "default", "{title}")
	_ = db.AssignTemplate(ctx, "@news", id)

	if err := db.RemoveChannel(ctx, "@news"); err != nil {
		t.Fatalf("Failed to remove channel: %v", err)
	}

	if ch, _ := db.GetChannel(ctx, "@news"); ch != nil {
		t.Error("Expected channel to be removed")
	}
	if channels, _ := db.GetAdminChannels(ctx, 1); len(channels) != 0 {
		t.Errorf("Expected admin assignment to be removed, got %d", len(channels))
	}

	// A channel added again under the same ID starts without a template
	_ = db.AddChannel(ctx, "@news", "News")
	if tpl, _ := db.GetChannelTemplate(ctx, "@news"); tpl != nil {
		t.Errorf("Expected no template, got %q", tpl.Name)
	}
}

func TestMockDB_TemplateAssignmentReplaces(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	first, _ := db.AddTemplate(ctx, "first", "1")
	second, _ := db.AddTemplate(ctx, "second", "2")
	if first == second {
		t.Fatal("Expected distinct template IDs")
	}

	_ = db.AssignTemplate(ctx, "@news", first)
	_ = db.AssignTemplate(ctx, "@news", second)

	tpl, err := db.GetChannelTemplate(ctx, "@news")
	if err != nil {
		t.Fatalf("Failed to get channel template: %v", err)
	}
	if tpl == nil || tpl.ID != second {
		t.Fatalf("Expected template %d, got %+v", second, tpl)
	}

	if err := db.RemoveTemplate(ctx, second); err != nil {
		t.Fatalf("Failed to remove template: %v", err)
	}
	if tpl, _ := db.GetChannelTemplate(ctx, "@news"); tpl != nil {
		t.Errorf("Expected assignment to be dropped with the template")
	}
}

func TestMockDB_TemplateLookupAndUpdate(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	id, _ := db.AddTemplate(ctx, "anime", "🎬 {title}")
	if err := db.UpdateTemplate(ctx, id, "📺 {title} {episode}"); err != nil {
		t.Fatalf("Failed to update template: %v", err)
	}

	tpl, _ := db.GetTemplateByName(ctx, "anime")
	if tpl == nil {
		t.Fatal("Expected template by name")
	}
	if tpl.Body != "📺 {title} {episode}" {
		t.Errorf("Unexpected body %q", tpl.Body)
	}

	if tpl, _ := db.GetTemplateByName(ctx, "missing"); tpl != nil {
		t.Error("Expected nil for unknown name")
	}
}

func TestMockDB_Stats(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	_ = db.AddAdmin(ctx, models.Admin{UserID: 1, Username: "one"})
	_ = db.AddAdmin(ctx, models.Admin{UserID: 2, Username: "two"})
	_ = db.AddChannel(ctx, "@a", "Alpha")
	_ = db.AddChannel(ctx, "@b", "Bravo")

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	uploads := []models.Upload{
		{AdminID: 1, ChannelID: "@a", Title: "T1", UploadedAt: base},
		{AdminID: 1, ChannelID: "@a", Title: "T2", UploadedAt: base.Add(time.Minute)},
		{AdminID: 1, ChannelID: "@b", Title: "T3", UploadedAt: base.Add(2 * time.Minute)},
		{AdminID: 2, ChannelID: "@a", Title: "T4", UploadedAt: base.Add(3 * time.Minute)},
	}
	for _, u := range uploads {
		if err := db.LogUpload(ctx, u); err != nil {
			t.Fatalf("Failed to log upload: %v", err)
		}
	}

	stats, err := db.GetAdminStats(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get admin stats: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("Expected total 3, got %d", stats.Total)
	}
	if len(stats.ByChannel) != 2 || stats.ByChannel[0].ChannelID != "@a" || stats.ByChannel[0].Count != 2 {
		t.Errorf("Unexpected per-channel stats: %+v", stats.ByChannel)
	}

	all, _ := db.GetAllStats(ctx)
	if len(all) != 2 || all[0].UserID != 1 || all[0].Total != 3 || all[1].Total != 1 {
		t.Errorf("Unexpected overall stats: %+v", all)
	}

	chStats, _ := db.GetChannelStats(ctx, "@a")
	if chStats.Total != 3 {
		t.Errorf("Expected channel total 3, got %d", chStats.Total)
	}
	if len(chStats.Recent) == 0 || chStats.Recent[0].Title != "T4" {
		t.Errorf("Expected most recent upload first, got %+v", chStats.Recent)
	}
}

func TestMockDB_ChannelStatsRecentLimit(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < models.RecentUploadsLimit+3; i++ {
		_ = db.LogUpload(ctx, models.Upload{AdminID: 1, ChannelID: "@a", UploadedAt: base.Add(time.Duration(i) * time.Hour)})
	}

	stats, _ := db.GetChannelStats(ctx, "@a")
	if len(stats.Recent) != models.RecentUploadsLimit {
		t.Errorf("Expected %d recent uploads, got %d", models.RecentUploadsLimit, len(stats.Recent))
	}
}

func TestMockDB_Close(t *testing.T) {
	db := NewMockDB()
	if err := db.Close(); err != nil {
		t.Errorf("Expected no error on close, got %v", err)
	}
}
