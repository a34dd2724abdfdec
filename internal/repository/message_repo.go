package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/matchaapp/matcha-server/internal/db"
)

// MessageRepository provides data access methods for chat messages.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// WithTx returns a copy of the repository bound to tx, so conversation
// seeding can share the match-creation transaction.
func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{db: tx}
}

// Insert stores one immutable message. An empty ID is filled in; a preset
// CreatedAt is respected so seeded openings keep their ordering.
func (r *MessageRepository) Insert(ctx context.Context, msg *db.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = "msg_" + uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListByMatch returns the full message log for a match, oldest first.
func (r *MessageRepository) ListByMatch(ctx context.Context, matchID string) ([]db.ChatMessage, error) {
	var messages []db.ChatMessage
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}
