package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"nocturne/src/nerrors"
)

// Exchange is one recorded chat turn.
type Exchange struct {
	ID         int64
	SessionID  string
	Persona    string
	Tier       string
	Context    string
	UserText   string
	ReplyText  string
	TemplateID string
	Intensity  float64
	CreatedAt  time.Time
}

// HistoryDB records chat exchanges in a local libSQL database.
type HistoryDB struct {
	db *sql.DB
}

// NewHistoryDB opens (and if needed creates) the history database at dbPath.
func NewHistoryDB(dbPath string) (*HistoryDB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("libsql", "file:"+dbPath)
	if err != nil {
		return nil, nerrors.WrapWithContext(nerrors.ErrDatabaseConnection, "open %s", dbPath)
	}

	// Single connection: libSQL has one writer, and an in-memory database
	// exists per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nerrors.WrapWithContext(nerrors.ErrDatabaseConnection, "ping %s", dbPath)
	}

	h := &HistoryDB{db: db}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func (h *HistoryDB) initSchema() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		persona TEXT,
		tier TEXT,
		context TEXT,
		user_text TEXT,
		reply_text TEXT,
		template_id TEXT,
		intensity REAL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := h.db.Exec(createTableSQL); err != nil {
		return nerrors.NewDatabaseError("create", "exchanges", err)
	}

	indexSQL := `CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges(session_id)`
	if _, err := h.db.Exec(indexSQL); err != nil {
		return nerrors.NewDatabaseError("index", "exchanges", err)
	}

	return nil
}

// Record stores one exchange.
func (h *HistoryDB) Record(e Exchange) error {
	insertSQL := `
	INSERT INTO exchanges (session_id, persona, tier, context, user_text, reply_text, template_id, intensity)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := h.db.Exec(insertSQL,
		e.SessionID, e.Persona, e.Tier, e.Context,
		e.UserText, e.ReplyText, e.TemplateID, e.Intensity)
	if err != nil {
		return nerrors.NewDatabaseError("insert", "exchanges", err)
	}
	return nil
}

// RecentBySession returns the most recent exchanges for a session, newest
// first, capped at limit.
func (h *HistoryDB) RecentBySession(sessionID string, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 20
	}
	querySQL := `
	SELECT id, session_id, persona, tier, context, user_text, reply_text, template_id, intensity, created_at
	FROM exchanges
	WHERE session_id = ?
	ORDER BY id DESC
	LIMIT ?
	`
	rows, err := h.db.Query(querySQL, sessionID, limit)
	if err != nil {
		return nil, nerrors.NewDatabaseError("query", "exchanges", err)
	}
	defer rows.Close()

	return scanExchanges(rows)
}

// Recent returns the most recent exchanges across all sessions.
func (h *HistoryDB) Recent(limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 20
	}
	querySQL := `
	SELECT id, session_id, persona, tier, context, user_text, reply_text, template_id, intensity, created_at
	FROM exchanges
	ORDER BY id DESC
	LIMIT ?
	`
	rows, err := h.db.Query(querySQL, limit)
	if err != nil {
		return nil, nerrors.NewDatabaseError("query", "exchanges", err)
	}
	defer rows.Close()

	return scanExchanges(rows)
}

// CountBySession returns the number of recorded exchanges for a session.
func (h *HistoryDB) CountBySession(sessionID string) (int64, error) {
	var n int64
	err := h.db.QueryRow(`SELECT COUNT(*) FROM exchanges WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, nerrors.NewDatabaseError("query", "exchanges", err)
	}
	return n, nil
}

// Close releases the database handle.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func scanExchanges(rows *sql.Rows) ([]Exchange, error) {
	var out []Exchange
	for rows.Next() {
		var e Exchange
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Persona, &e.Tier, &e.Context,
			&e.UserText, &e.ReplyText, &e.TemplateID, &e.Intensity, &e.CreatedAt); err != nil {
			return nil, nerrors.NewDatabaseError("scan", "exchanges", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
