package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupanel/edupanel-api/internal/models"
)

func TestMessageThread(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "text", "sender_id", "receiver_id", "is_read", "created_at"}).
		AddRow("m1", "hi", "u1", "u2", true, now.Add(-time.Minute)).
		AddRow("m2", "hello", "u2", "u1", false, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)")).
		WithArgs("u1", "u2").
		WillReturnRows(rows)

	messages, err := repo.Thread(context.Background(), "u1", "u2")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hi", messages[0].Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageCountUnread(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = FALSE")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUnread(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageMarkThreadRead(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectExec("UPDATE messages SET is_read = TRUE").
		WithArgs("u1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.MarkThreadRead(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectExec("INSERT INTO messages").WillReturnResult(sqlmock.NewResult(1, 1))

	message := &models.Message{Text: "hello", SenderID: "u1", ReceiverID: "u2"}
	err := repo.Create(context.Background(), message)
	require.NoError(t, err)
	assert.NotEmpty(t, message.ID)
	assert.False(t, message.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
