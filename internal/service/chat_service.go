package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edupanel/edupanel-api/internal/models"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
)

type messageRepository interface {
	Thread(ctx context.Context, userA, userB string) ([]models.Message, error)
	ListInvolving(ctx context.Context, userID string) ([]models.ConversationRow, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkThreadRead(ctx context.Context, readerID, contactID string) error
	Create(ctx context.Context, message *models.Message) error
}

type chatUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// SendMessageRequest posts one direct message.
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Text       string `json:"text" validate:"required"`
}

// ChatService provides two-party messaging use cases.
type ChatService struct {
	repo      messageRepository
	users     chatUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChatService constructs a ChatService instance.
func NewChatService(repo messageRepository, users chatUserRepository, validate *validator.Validate, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ChatService{repo: repo, users: users, validator: validate, logger: logger}
}

// Thread returns the full exchange with one contact oldest first and marks
// the contact's messages as read.
func (s *ChatService) Thread(ctx context.Context, userID, contactID string) ([]models.Message, error) {
	messages, err := s.repo.Thread(ctx, userID, contactID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load thread")
	}
	if err := s.repo.MarkThreadRead(ctx, userID, contactID); err != nil {
		s.logger.Warn("failed to mark thread read", zap.Error(err))
	}
	return messages, nil
}

// Conversations collapses the user's messages into one entry per contact,
// keeping the latest exchange and an unread count for each.
func (s *ChatService) Conversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	rows, err := s.repo.ListInvolving(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conversations")
	}

	// Rows arrive newest first, so the first row per contact carries the
	// latest message.
	order := make([]string, 0)
	byContact := make(map[string]*models.Conversation)
	for _, row := range rows {
		contactID := row.SenderID
		contactName := row.SenderName
		contactRole := row.SenderRole
		if row.SenderID == userID {
			contactID = row.ReceiverID
			contactName = row.ReceiverName
			contactRole = row.ReceiverRole
		}

		conv, ok := byContact[contactID]
		if !ok {
			conv = &models.Conversation{
				ContactID:   contactID,
				ContactName: contactName,
				ContactRole: contactRole,
				LastMessage: row.Text,
				LastAt:      row.CreatedAt,
			}
			byContact[contactID] = conv
			order = append(order, contactID)
		}
		if row.ReceiverID == userID && !row.IsRead {
			conv.Unread++
		}
	}

	conversations := make([]models.Conversation, 0, len(order))
	for _, id := range order {
		conversations = append(conversations, *byContact[id])
	}
	return conversations, nil
}

// Send posts a message to another user. Self-messaging is rejected.
func (s *ChatService) Send(ctx context.Context, senderID string, req SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	if req.ReceiverID == senderID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot message yourself")
	}

	if _, err := s.users.FindByID(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "receiver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load receiver")
	}

	message := &models.Message{
		Text:       req.Text,
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}
	return message, nil
}
