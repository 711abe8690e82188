package session

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hupe1980/schedmesh/core"
)

// InMemoryStore is a volatile SessionStore + MemoryStore implementation
// storing rows in process-local maps. It is safe for concurrent access.
// Each returned session is cloned to prevent external mutation of internal
// state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
	memories []core.MemoryRecord
	entropy  *rand.Rand
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*core.Session),
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetOrCreate returns an existing session (clone) or creates a new active
// one lazily.
func (s *InMemoryStore) GetOrCreate(id string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess.Clone(), nil
	}
	sess := core.NewSession(id)
	s.sessions[id] = sess
	return sess.Clone(), nil
}

// Save stores a clone of the provided session snapshot, replacing the state
// blob and bumping the last-active time. Last writer for a given id wins.
func (s *InMemoryStore) Save(sess *core.Session) error {
	clone := sess.Clone()
	clone.LastActive = time.Now().UTC()
	if clone.Status == "" {
		clone.Status = core.SessionActive
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[sess.ID]; ok {
		clone.Created = existing.Created
	}
	s.sessions[sess.ID] = clone
	return nil
}

// Close flips the session status to closed. The session remains queryable.
func (s *InMemoryStore) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = core.NewSession(id)
		s.sessions[id] = sess
	}
	sess.Status = core.SessionClosed
	return nil
}

// Active lists sessions currently offered to new turns, most recently
// active first.
func (s *InMemoryStore) Active() ([]*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Session
	for _, sess := range s.sessions {
		if sess.Status == core.SessionActive {
			out = append(out, sess.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActive.After(out[j].LastActive) })
	return out, nil
}

// Remember appends an immutable memory record for the session.
func (s *InMemoryStore) Remember(sessionID, content string) (*core.MemoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := core.MemoryRecord{
		ID:        ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String(),
		SessionID: sessionID,
		Content:   content,
		Created:   time.Now().UTC(),
	}
	s.memories = append(s.memories, rec)
	return &rec, nil
}

// Search returns memory records ranked by term overlap with the query,
// across all sessions. A record is returned only when it shares at least one
// query token or contains the query verbatim; records containing the query
// as an exact substring are always included.
func (s *InMemoryStore) Search(query string, limit int) ([]core.MemoryRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	tokens := tokenize(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		rec   core.MemoryRecord
		score int
	}
	var matches []scored
	for _, rec := range s.memories {
		score := matchScore(rec.Content, query, tokens)
		if score == 0 {
			continue
		}
		matches = append(matches, scored{rec: rec, score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].rec.Created.After(matches[j].rec.Created)
	})

	out := make([]core.MemoryRecord, 0, limit)
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.rec)
	}
	return out, nil
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	return fields
}

// matchScore counts query tokens present in the content, with an exact
// substring match of the full query scoring highest.
func matchScore(content, query string, tokens []string) int {
	lc := strings.ToLower(content)
	score := 0
	if query != "" && strings.Contains(lc, strings.ToLower(query)) {
		score += len(tokens) + 1
	}
	contentTokens := map[string]bool{}
	for _, t := range tokenize(content) {
		contentTokens[t] = true
	}
	for _, t := range tokens {
		if contentTokens[t] {
			score++
		}
	}
	return score
}
