package bot

import (
	"sync"

	"tgpublisher/internal/parse"
)

// Session is the in-progress workflow of one user. Its mutex serializes
// the user's events; handlers run with it held.
type Session struct {
	mu sync.Mutex

	State State

	// Upload
	Episode   *parse.Episode
	ChannelID string

	// Channel management
	ChannelTitle string

	// Admin and template browsing
	AdminID      int64
	TemplateID   int64
	TemplateName string

	// AssignMode is set when a template was picked from the "attach to
	// channel" shortcut rather than the template list
	AssignMode bool
}

// Reset returns the session to Idle and drops all pending data
func (s *Session) Reset() {
	s.State = StateIdle
	s.Episode = nil
	s.ChannelID = ""
	s.ChannelTitle = ""
	s.AdminID = 0
	s.TemplateID = 0
	s.TemplateName = ""
	s.AssignMode = false
}

// SessionStore owns the sessions of all users
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewSessionStore creates an empty store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

// Get returns the session of the user, creating an idle one when missing
func (s *SessionStore) Get(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{}
		s.sessions[userID] = sess
	}
	return sess
}

// Peek returns the current state of the user without creating a session
func (s *SessionStore) Peek(userID int64) State {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()

	if !ok {
		return StateIdle
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.State
}

// Len returns the number of known sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
