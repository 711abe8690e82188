package session

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/hupe1980/schedmesh/core"
)

// SQLiteStore is a durable SessionStore + MemoryStore backed by SQLite with
// an FTS5 index over memory content. Session saves are single upserts, so
// writes are atomic per session id; writers to different ids never block
// each other beyond SQLite's own page locking.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		created_at  TEXT NOT NULL,
		last_active TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'active',
		state       BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_active ON sessions(last_active DESC);

	CREATE TABLE IF NOT EXISTS memories (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memories_session ON memories(session_id);
	CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at DESC);

	CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
		content,
		content=memories,
		content_rowid=rowid
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS5 triggers for automatic sync
	s.db.Exec(`CREATE TRIGGER IF NOT EXISTS memories_ai AFTER INSERT ON memories BEGIN
		INSERT INTO memories_fts(rowid, content) VALUES (new.rowid, new.content);
	END`)
	s.db.Exec(`CREATE TRIGGER IF NOT EXISTS memories_ad AFTER DELETE ON memories BEGIN
		INSERT INTO memories_fts(memories_fts, rowid, content) VALUES('delete', old.rowid, old.content);
	END`)

	// Backfill FTS for any existing rows not yet indexed
	s.db.Exec(`INSERT OR IGNORE INTO memories_fts(rowid, content) SELECT rowid, content FROM memories`)

	return nil
}

// GetOrCreate returns the stored session or inserts a fresh active one.
func (s *SQLiteStore) GetOrCreate(id string) (*core.Session, error) {
	sess, err := s.get(id)
	if err == nil {
		return sess, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	fresh := core.NewSession(id)
	_, err = s.db.Exec(
		`INSERT INTO sessions (id, created_at, last_active, status, state) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		fresh.ID, fresh.Created.Format(time.RFC3339Nano), fresh.LastActive.Format(time.RFC3339Nano), string(fresh.Status), fresh.State)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	// Re-read in case a concurrent writer won the insert.
	return s.get(id)
}

func (s *SQLiteStore) get(id string) (*core.Session, error) {
	row := s.db.QueryRow(`SELECT id, created_at, last_active, status, state FROM sessions WHERE id = ?`, id)

	var sess core.Session
	var created, lastActive, status string
	if err := row.Scan(&sess.ID, &created, &lastActive, &status, &sess.State); err != nil {
		return nil, err
	}
	sess.Created, _ = time.Parse(time.RFC3339Nano, created)
	sess.LastActive, _ = time.Parse(time.RFC3339Nano, lastActive)
	sess.Status = core.SessionStatus(status)
	return &sess, nil
}

// Save upserts the session row, replacing the state blob and bumping the
// last-active time. The upsert is a single statement, so concurrent savers
// of the same id serialize with last-writer-wins semantics.
func (s *SQLiteStore) Save(sess *core.Session) error {
	now := time.Now().UTC()
	status := sess.Status
	if status == "" {
		status = core.SessionActive
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, created_at, last_active, status, state) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET state = excluded.state, status = excluded.status, last_active = excluded.last_active`,
		sess.ID, now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano), string(status), sess.State)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Close flips the session status to closed without deleting anything.
func (s *SQLiteStore) Close(id string) error {
	res, err := s.db.Exec(`UPDATE sessions SET status = ? WHERE id = ?`, string(core.SessionClosed), id)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		sess := core.NewSession(id)
		sess.Status = core.SessionClosed
		return s.Save(sess)
	}
	return nil
}

// Active lists sessions currently offered to new turns.
func (s *SQLiteStore) Active() ([]*core.Session, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, last_active, status, state FROM sessions WHERE status = ? ORDER BY last_active DESC`,
		string(core.SessionActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*core.Session
	for rows.Next() {
		var sess core.Session
		var created, lastActive, status string
		if err := rows.Scan(&sess.ID, &created, &lastActive, &status, &sess.State); err != nil {
			return nil, err
		}
		sess.Created, _ = time.Parse(time.RFC3339Nano, created)
		sess.LastActive, _ = time.Parse(time.RFC3339Nano, lastActive)
		sess.Status = core.SessionStatus(status)
		out = append(out, &sess)
	}
	return out, rows.Err()
}

// Remember inserts an immutable memory record.
func (s *SQLiteStore) Remember(sessionID, content string) (*core.MemoryRecord, error) {
	rec := core.MemoryRecord{
		ID:        s.newID(),
		SessionID: sessionID,
		Content:   content,
		Created:   time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO memories (id, session_id, content, created_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.Content, rec.Created.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}
	return &rec, nil
}

// Search ranks memory records by FTS5 relevance (bm25) across all sessions,
// unioned with a LIKE substring pass so an exact substring match is never
// omitted even when the tokenizer splits it differently.
func (s *SQLiteStore) Search(query string, limit int) ([]core.MemoryRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	seen := map[string]bool{}
	var out []core.MemoryRecord

	if match := ftsQuery(query); match != "" {
		rows, err := s.db.Query(
			`SELECT m.id, m.session_id, m.content, m.created_at
			 FROM memories_fts f
			 JOIN memories m ON m.rowid = f.rowid
			 WHERE memories_fts MATCH ?
			 ORDER BY bm25(memories_fts), m.created_at DESC
			 LIMIT ?`, match, limit)
		if err != nil {
			return nil, fmt.Errorf("fts search: %w", err)
		}
		out, err = collectMemories(rows, seen, out, limit)
		if err != nil {
			return nil, err
		}
	}

	if len(out) < limit && strings.TrimSpace(query) != "" {
		rows, err := s.db.Query(
			`SELECT id, session_id, content, created_at FROM memories
			 WHERE content LIKE ? ESCAPE '\'
			 ORDER BY created_at DESC
			 LIMIT ?`, "%"+escapeLike(query)+"%", limit)
		if err != nil {
			return nil, fmt.Errorf("substring search: %w", err)
		}
		out, err = collectMemories(rows, seen, out, limit)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

func collectMemories(rows *sql.Rows, seen map[string]bool, out []core.MemoryRecord, limit int) ([]core.MemoryRecord, error) {
	defer rows.Close()
	for rows.Next() {
		var rec core.MemoryRecord
		var created string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Content, &created); err != nil {
			return nil, err
		}
		if seen[rec.ID] || len(out) >= limit {
			continue
		}
		seen[rec.ID] = true
		rec.Created, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ftsQuery quotes each query token so user input cannot inject FTS5 syntax;
// tokens are OR-ed so any term overlap matches.
func ftsQuery(query string) string {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " OR ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// DB exposes the underlying handle for stats tooling.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// CloseDB closes the underlying database handle.
func (s *SQLiteStore) CloseDB() error { return s.db.Close() }
