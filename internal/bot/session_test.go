package bot

import (
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgpublisher/internal/parse"
)

func TestSessionStore_GetCreatesIdleSession(t *testing.T) {
	store := NewSessionStore()

	assert.Equal(t, StateIdle, store.Peek(5))
	assert.Equal(t, 0, store.Len())

	s := store.Get(5)
	require.NotNil(t, s)
	assert.Equal(t, StateIdle, s.State)
	assert.Same(t, s, store.Get(5))
	assert.Equal(t, 1, store.Len())
}

func TestSession_ResetDropsPendingData(t *testing.T) {
	s := &Session{
		State:        StateAwaitingMedia,
		Episode:      &parse.Episode{Title: "Show", Season: 1, Number: 2},
		ChannelID:    "@one",
		ChannelTitle: "One",
		AdminID:      7,
		TemplateID:   3,
		TemplateName: "Main",
		AssignMode:   true,
	}

	s.Reset()

	assert.Equal(t, StateIdle, s.State)
	assert.Nil(t, s.Episode)
	assert.Empty(t, s.ChannelID)
	assert.Empty(t, s.ChannelTitle)
	assert.Zero(t, s.AdminID)
	assert.Zero(t, s.TemplateID)
	assert.Empty(t, s.TemplateName)
	assert.False(t, s.AssignMode)
}

func TestSessionStore_ConcurrentAccess(t *testing.T) {
	store := NewSessionStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s := store.Get(id % 5)
			s.mu.Lock()
			s.State = StateAwaitingEpisodeInfo
			s.mu.Unlock()
			_ = store.Peek(id % 5)
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, 5, store.Len())
}

func TestState_RequiredRole(t *testing.T) {
	tests := []struct {
		state State
		want  Role
	}{
		{StateIdle, RoleNone},
		{StateAwaitingEpisodeInfo, RoleAdmin},
		{StateAwaitingChannelSelection, RoleAdmin},
		{StateAwaitingMedia, RoleAdmin},
		{StateAwaitingChannelReference, RoleSuper},
		{StateAwaitingChannelToggle, RoleSuper},
		{StateAwaitingChannelAssignment, RoleSuper},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.RequiredRole())
		})
	}
}

func TestState_EveryStateHasName(t *testing.T) {
	for s := StateIdle; s <= StateAwaitingChannelAssignment; s++ {
		assert.Contains(t, stateNames, s)
	}
}

func TestPayload_RoundTrip(t *testing.T) {
	tests := []struct {
		data   string
		want   Payload
		wantOK bool
	}{
		{data: "home", want: Payload{Action: ActionHome}, wantOK: true},
		{data: "ch_pick:@anime", want: Payload{Action: ActionPickChannel, Key: "@anime"}, wantOK: true},
		{data: "ch_rm:-1001234567890", want: Payload{Action: ActionRemoveChannel, Key: "-1001234567890"}, wantOK: true},
		{data: "", wantOK: false},
		{data: ":key", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, ok := ParsePayload(tt.data)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
				assert.Equal(t, tt.data, got.String())
			}
		})
	}
}

func TestPayload_Int64Key(t *testing.T) {
	id, ok := Payload{Action: ActionPickAdmin, Key: "42"}.Int64Key()
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = Payload{Action: ActionPickAdmin, Key: "x"}.Int64Key()
	assert.False(t, ok)
}

func TestChannelKeyFits(t *testing.T) {
	// "adm_toggle:" and "tpl_toggle:" are the longest channel prefixes
	assert.True(t, channelKeyFits("@"+strings.Repeat("a", 32)))
	assert.True(t, channelKeyFits("-1001234567890"))
	assert.True(t, channelKeyFits(strings.Repeat("a", maxCallbackData-11)))
	assert.False(t, channelKeyFits(strings.Repeat("a", maxCallbackData-10)))
}

func TestKeyboards_CallbackDataFitsLimit(t *testing.T) {
	keyboards := []struct {
		name   string
		markup [][]tgbotapi.InlineKeyboardButton
	}{
		{"super root", rootMenuKeyboard(RoleSuper).InlineKeyboard},
		{"admin root", rootMenuKeyboard(RoleAdmin).InlineKeyboard},
		{"admin actions", adminActionsKeyboard().InlineKeyboard},
		{"template actions", templateActionsKeyboard().InlineKeyboard},
	}

	for _, kb := range keyboards {
		for _, r := range kb.markup {
			for _, btn := range r {
				require.NotNil(t, btn.CallbackData, kb.name)
				assert.LessOrEqual(t, len(*btn.CallbackData), 64, kb.name)
				_, ok := ParsePayload(*btn.CallbackData)
				assert.True(t, ok, kb.name)
			}
		}
	}
}
