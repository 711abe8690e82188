package core

import "time"

// SessionStatus describes the lifecycle state of a session.
type SessionStatus string

const (
	// SessionActive sessions are offered to new conversation turns.
	SessionActive SessionStatus = "active"
	// SessionIdle sessions are kept but not currently in a turn.
	SessionIdle SessionStatus = "idle"
	// SessionClosed sessions are terminal but remain queryable for audit
	// and resume; sessions are never physically deleted.
	SessionClosed SessionStatus = "closed"
)

// Session is a resumable scheduling conversation. State holds the opaque
// serialized draft-event blob; the store replaces it wholesale on Save.
type Session struct {
	ID         string        `json:"id"`
	Created    time.Time     `json:"created"`
	LastActive time.Time     `json:"last_active"`
	Status     SessionStatus `json:"status"`
	State      []byte        `json:"state,omitempty"`
}

// NewSession creates an active session with the given id.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{ID: id, Created: now, LastActive: now, Status: SessionActive}
}

// Clone returns a deep copy safe for independent mutation.
func (s *Session) Clone() *Session {
	clone := *s
	if s.State != nil {
		clone.State = make([]byte, len(s.State))
		copy(clone.State, s.State)
	}
	return &clone
}

// MemoryRecord is an extracted long-term fact. It weakly references its
// originating session and may outlive it. Records are never mutated.
type MemoryRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Content   string    `json:"content"`
	Created   time.Time `json:"created"`
}

// SessionStore persists sessions with read-after-write consistency per id:
// a Save followed by GetOrCreate for the same id observes the saved state.
// Save must be atomic per session id (last writer wins); writers to
// different ids never block each other.
type SessionStore interface {
	GetOrCreate(id string) (*Session, error)
	Save(s *Session) error
	// Close flips the session status to closed. The session stays
	// queryable; it is only no longer offered as active.
	Close(id string) error
	// Active lists sessions currently offered to new turns.
	Active() ([]*Session, error)
}

// MemoryStore persists memory records and retrieves them by textual
// relevance. Search scans across all sessions.
type MemoryStore interface {
	Remember(sessionID, content string) (*MemoryRecord, error)
	Search(query string, limit int) ([]MemoryRecord, error)
}
