package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupanel/edupanel-api/internal/models"
)

// MessageRepository provides database access for direct messages. Threads are
// derived from the (sender, receiver) pair in either order; there is no
// conversation table.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new instance of MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Thread returns the full exchange between two users oldest first.
func (r *MessageRepository) Thread(ctx context.Context, userA, userB string) ([]models.Message, error) {
	const query = `SELECT id, text, sender_id, receiver_id, is_read, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC`
	var messages []models.Message
	if err := r.db.SelectContext(ctx, &messages, query, userA, userB); err != nil {
		return nil, fmt.Errorf("list message thread: %w", err)
	}
	return messages, nil
}

// ListInvolving returns every message the user sent or received, newest
// first, joined with both parties' names and roles. The caller collapses the
// rows into per-contact conversations.
func (r *MessageRepository) ListInvolving(ctx context.Context, userID string) ([]models.ConversationRow, error) {
	const query = `SELECT m.id, m.text, m.sender_id, m.receiver_id, m.is_read, m.created_at,
			su.name AS sender_name, su.role AS sender_role,
			ru.name AS receiver_name, ru.role AS receiver_role
		FROM messages m
		JOIN users su ON su.id = m.sender_id
		JOIN users ru ON ru.id = m.receiver_id
		WHERE m.sender_id = $1 OR m.receiver_id = $1
		ORDER BY m.created_at DESC`
	var rows []models.ConversationRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list messages involving user: %w", err)
	}
	return rows, nil
}

// CountUnread counts messages addressed to the user not yet read.
func (r *MessageRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = FALSE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}

// MarkThreadRead flags everything the contact sent to the reader as read.
func (r *MessageRepository) MarkThreadRead(ctx context.Context, readerID, contactID string) error {
	const query = `UPDATE messages SET is_read = TRUE WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE`
	if _, err := r.db.ExecContext(ctx, query, readerID, contactID); err != nil {
		return fmt.Errorf("mark thread read: %w", err)
	}
	return nil
}

// Create inserts a message.
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO messages (id, text, sender_id, receiver_id, is_read, created_at)
		VALUES (:id, :text, :sender_id, :receiver_id, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}
