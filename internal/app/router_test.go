package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tgpublisher/internal/models"
	"tgpublisher/internal/storage/stubs"
)

type recordingHandler struct {
	updates chan tgbotapi.Update
}

func (h *recordingHandler) HandleWebhookUpdate(ctx context.Context, update tgbotapi.Update) {
	h.updates <- update
}

func newTestRouter(webhook bool) (http.Handler, *recordingHandler) {
	h := &recordingHandler{updates: make(chan tgbotapi.Update, 1)}
	return newRouter(context.Background(), h, webhook, zap.NewNop()), h
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_RootShowsMode(t *testing.T) {
	router, _ := newTestRouter(true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mode: webhook")
}

func TestRouter_WebhookDispatchesUpdate(t *testing.T) {
	router, h := newTestRouter(true)

	body := `{"update_id": 10, "message": {"message_id": 1, "text": "hi", "chat": {"id": 5}, "from": {"id": 6}}}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram-webhook", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case update := <-h.updates:
		assert.Equal(t, 10, update.UpdateID)
		require.NotNil(t, update.Message)
		assert.Equal(t, "hi", update.Message.Text)
	case <-time.After(time.Second):
		t.Fatal("update was not dispatched")
	}
}

func TestRouter_WebhookRejectsBadBody(t *testing.T) {
	router, _ := newTestRouter(true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram-webhook", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/telegram-webhook", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "console")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger("warn", "json")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))

	_, err = NewLogger("info", "xml")
	assert.Error(t, err)

	_, err = NewLogger("loud", "json")
	assert.Error(t, err)
}

func TestSeedSuperAdmins(t *testing.T) {
	ctx := context.Background()
	db := stubs.NewMockDB()
	require.NoError(t, db.AddAdmin(ctx, models.Admin{UserID: 2, Username: "known"}))

	require.NoError(t, seedSuperAdmins(ctx, db, []int64{1, 2}))

	admin, err := db.GetAdmin(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, models.RoleSuper, admin.Role)
	assert.Equal(t, "known", admin.Username)

	admin, err = db.GetAdmin(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, admin)
}
