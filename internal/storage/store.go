package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrUnknownMessage is returned when an interaction references a message id
// that was never stored.
var ErrUnknownMessage = errors.New("storage: unknown message id")

// Message is a single logged utterance attributed to one participant.
type Message struct {
	ID        int64
	ModelID   string
	Type      string
	Content   string
	Timestamp time.Time
}

// Interaction links a sender, a receiver and the message exchanged between them.
type Interaction struct {
	ID         int64
	SenderID   string
	ReceiverID string
	MessageID  int64
	Timestamp  time.Time
}

// Exchange pairs an interaction with the message it references.
type Exchange struct {
	Interaction Interaction
	Message     Message
}

// Store owns the SQLite database holding the conversation log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath and ensures the
// schema exists.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model_id TEXT NOT NULL,
    message_type TEXT NOT NULL,
    message_content TEXT NOT NULL,
    timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS model_interactions (
    interaction_id INTEGER PRIMARY KEY AUTOINCREMENT,
    model1_id TEXT NOT NULL,
    model2_id TEXT NOT NULL,
    message_id INTEGER NOT NULL REFERENCES messages(id),
    timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_interactions_message ON model_interactions(message_id);
CREATE INDEX IF NOT EXISTS idx_interactions_receiver ON model_interactions(model2_id, timestamp);
`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// InsertMessage appends one message row and returns the assigned id.
func (s *Store) InsertMessage(ctx context.Context, modelID, msgType, content string) (int64, error) {
	if strings.TrimSpace(modelID) == "" {
		return 0, fmt.Errorf("model id is required")
	}
	if strings.TrimSpace(msgType) == "" {
		return 0, fmt.Errorf("message type is required")
	}
	if content == "" {
		return 0, fmt.Errorf("message content is required")
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO messages (model_id, message_type, message_content)
VALUES (?, ?, ?)
`, modelID, msgType, content)
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("message id: %w", err)
	}
	return id, nil
}

// InsertInteraction appends one interaction row referencing an existing
// message. Referencing an unknown message id fails with ErrUnknownMessage.
func (s *Store) InsertInteraction(ctx context.Context, senderID, receiverID string, messageID int64) (int64, error) {
	if strings.TrimSpace(senderID) == "" || strings.TrimSpace(receiverID) == "" {
		return 0, fmt.Errorf("sender and receiver ids are required")
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM messages WHERE id = ?)`, messageID,
	).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check message %d: %w", messageID, err)
	}
	if !exists {
		return 0, fmt.Errorf("interaction %s -> %s: %w: %d", senderID, receiverID, ErrUnknownMessage, messageID)
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO model_interactions (model1_id, model2_id, message_id)
VALUES (?, ?, ?)
`, senderID, receiverID, messageID)
	if err != nil {
		return 0, fmt.Errorf("insert interaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("interaction id: %w", err)
	}
	return id, nil
}

// Message fetches a single message by id. Returns nil when not found.
func (s *Store) Message(ctx context.Context, id int64) (*Message, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, model_id, message_type, message_content, timestamp
FROM messages
WHERE id = ?
`, id)

	var msg Message
	if err := row.Scan(&msg.ID, &msg.ModelID, &msg.Type, &msg.Content, &msg.Timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &msg, nil
}

// LatestFor returns the most recent message addressed to receiverID, or nil
// when the participant has not received anything yet.
func (s *Store) LatestFor(ctx context.Context, receiverID string) (*Message, error) {
	if strings.TrimSpace(receiverID) == "" {
		return nil, fmt.Errorf("receiver id is required")
	}

	row := s.db.QueryRowContext(ctx, `
SELECT m.id, m.model_id, m.message_type, m.message_content, m.timestamp
FROM messages m
JOIN model_interactions mi ON m.id = mi.message_id
WHERE mi.model2_id = ?
ORDER BY m.timestamp DESC, m.id DESC
LIMIT 1
`, receiverID)

	var msg Message
	if err := row.Scan(&msg.ID, &msg.ModelID, &msg.Type, &msg.Content, &msg.Timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest message for %s: %w", receiverID, err)
	}
	return &msg, nil
}

// History returns every interaction joined with its message, oldest first.
// Re-running it has no side effects.
func (s *Store) History(ctx context.Context) ([]Exchange, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT mi.interaction_id, mi.model1_id, mi.model2_id, mi.message_id, mi.timestamp,
       m.id, m.model_id, m.message_type, m.message_content, m.timestamp
FROM model_interactions mi
JOIN messages m ON m.id = mi.message_id
ORDER BY m.timestamp ASC, m.id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var history []Exchange
	for rows.Next() {
		var ex Exchange
		if err := rows.Scan(
			&ex.Interaction.ID, &ex.Interaction.SenderID, &ex.Interaction.ReceiverID,
			&ex.Interaction.MessageID, &ex.Interaction.Timestamp,
			&ex.Message.ID, &ex.Message.ModelID, &ex.Message.Type,
			&ex.Message.Content, &ex.Message.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		history = append(history, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	return history, nil
}

// Counts reports how many messages and interactions are stored.
func (s *Store) Counts(ctx context.Context) (messages, interactions int64, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&messages); err != nil {
		return 0, 0, fmt.Errorf("count messages: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM model_interactions`).Scan(&interactions); err != nil {
		return 0, 0, fmt.Errorf("count interactions: %w", err)
	}
	return messages, interactions, nil
}

// Clear removes every row from both tables. Calling it on an empty store is
// a no-op.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	// Interactions reference messages, so they go first.
	if _, err := tx.ExecContext(ctx, `DELETE FROM model_interactions`); err != nil {
		return fmt.Errorf("clear interactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}
