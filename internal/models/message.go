package models

import "time"

// Message is one direct message between two users. There is no conversation
// entity; a thread is derived by filtering on the (sender, receiver) pair in
// either order.
type Message struct {
	ID         string    `db:"id" json:"id"`
	Text       string    `db:"text" json:"text"`
	SenderID   string    `db:"sender_id" json:"sender_id"`
	ReceiverID string    `db:"receiver_id" json:"receiver_id"`
	IsRead     bool      `db:"is_read" json:"is_read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Conversation summarises the latest exchange with one contact.
type Conversation struct {
	ContactID   string    `json:"contact_id"`
	ContactName string    `json:"contact_name"`
	ContactRole UserRole  `json:"contact_role"`
	LastMessage string    `json:"last_message"`
	LastAt      time.Time `json:"last_at"`
	Unread      int       `json:"unread"`
}

// ConversationRow is the raw join row behind Conversation.
type ConversationRow struct {
	Message
	SenderName   string   `db:"sender_name"`
	SenderRole   UserRole `db:"sender_role"`
	ReceiverName string   `db:"receiver_name"`
	ReceiverRole UserRole `db:"receiver_role"`
}
