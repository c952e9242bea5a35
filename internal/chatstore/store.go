// Package chatstore persists chat records in Postgres. A chat is the
// client-facing unit: a title, the display messages the client chose to
// save, and the checkpoint ID tying it to a conversation thread.
package chatstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no chat matched the given ID and owner.
var ErrNotFound = errors.New("chat not found")

const listLimit = 50

// Chat is one persisted chat record. Messages is stored as-is; the
// server never interprets its contents.
type Chat struct {
	ID           uuid.UUID       `json:"id"`
	UserID       string          `json:"user_id,omitempty"`
	Title        string          `json:"title"`
	Messages     json.RawMessage `json:"messages"`
	CheckpointID string          `json:"checkpoint_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateParams carries the client-supplied fields of a new chat.
// Zero values fall back to defaults: title "New Chat", messages "[]".
type CreateParams struct {
	UserID       string
	Title        string
	Messages     json.RawMessage
	CheckpointID string
}

// UpdateParams carries a partial update. Nil fields keep their stored
// values.
type UpdateParams struct {
	Title        *string
	Messages     json.RawMessage
	CheckpointID *string
}

// Store runs chat queries against a connection pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store.
func New(pool *pgxpool.Pool, logger *slog.Logger) (*Store, error) {
	if pool == nil {
		return nil, errors.New("chatstore: pool is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Create inserts a new chat and returns it with defaults applied.
func (s *Store) Create(ctx context.Context, params CreateParams) (Chat, error) {
	chat := Chat{
		ID:           uuid.New(),
		UserID:       params.UserID,
		Title:        params.Title,
		Messages:     params.Messages,
		CheckpointID: params.CheckpointID,
	}
	if chat.Title == "" {
		chat.Title = "New Chat"
	}
	if len(chat.Messages) == 0 {
		chat.Messages = json.RawMessage("[]")
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO chats (id, user_id, title, messages, checkpoint_id)
		 VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''))
		 RETURNING created_at, updated_at`,
		chat.ID, chat.UserID, chat.Title, chat.Messages, chat.CheckpointID,
	).Scan(&chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return Chat{}, fmt.Errorf("inserting chat: %w", err)
	}

	s.logger.Debug("created chat", "id", chat.ID, "user_id", chat.UserID)
	return chat, nil
}

// Get fetches one chat by ID, scoped to userID. An empty userID
// matches any owner.
func (s *Store) Get(ctx context.Context, id uuid.UUID, userID string) (Chat, error) {
	var (
		chat         Chat
		owner        *string
		checkpointID *string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, title, messages, checkpoint_id, created_at, updated_at
		 FROM chats
		 WHERE id = $1 AND ($2 = '' OR user_id = $2)`,
		id, userID,
	).Scan(&chat.ID, &owner, &chat.Title, &chat.Messages, &checkpointID, &chat.CreatedAt, &chat.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Chat{}, ErrNotFound
	}
	if err != nil {
		return Chat{}, fmt.Errorf("querying chat %s: %w", id, err)
	}

	if owner != nil {
		chat.UserID = *owner
	}
	if checkpointID != nil {
		chat.CheckpointID = *checkpointID
	}
	return chat, nil
}

// List returns chats newest-first, capped at 50. An empty userID lists
// every chat; a non-empty one lists only that owner's chats.
func (s *Store) List(ctx context.Context, userID string) ([]Chat, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, title, messages, checkpoint_id, created_at, updated_at
		 FROM chats
		 WHERE ($1 = '' OR user_id = $1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, listLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	defer rows.Close()

	chats := make([]Chat, 0, listLimit)
	for rows.Next() {
		var (
			chat         Chat
			owner        *string
			checkpointID *string
		)
		if err := rows.Scan(&chat.ID, &owner, &chat.Title, &chat.Messages, &checkpointID, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning chat row: %w", err)
		}
		if owner != nil {
			chat.UserID = *owner
		}
		if checkpointID != nil {
			chat.CheckpointID = *checkpointID
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading chat rows: %w", err)
	}
	return chats, nil
}

// Update applies a partial update to one chat, scoped to userID.
// Returns ErrNotFound when nothing matched.
func (s *Store) Update(ctx context.Context, id uuid.UUID, userID string, params UpdateParams) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE chats
		 SET title = COALESCE($3, title),
		     messages = COALESCE($4, messages),
		     checkpoint_id = COALESCE($5, checkpoint_id),
		     updated_at = now()
		 WHERE id = $1 AND ($2 = '' OR user_id = $2)`,
		id, userID, params.Title, params.Messages, params.CheckpointID,
	)
	if err != nil {
		return fmt.Errorf("updating chat %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated chat", "id", id)
	return nil
}

// Delete removes one chat, scoped to userID. Returns ErrNotFound when
// nothing matched.
func (s *Store) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM chats
		 WHERE id = $1 AND ($2 = '' OR user_id = $2)`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting chat %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted chat", "id", id)
	return nil
}
