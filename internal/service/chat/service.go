package chat

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/matchaapp/matcha-server/internal/app"
	"github.com/matchaapp/matcha-server/internal/db"
	svcErr "github.com/matchaapp/matcha-server/internal/errors"
	"github.com/matchaapp/matcha-server/internal/repository"
)

const maxBodyLen = 1000

// Service reads and appends chat messages. A chat is backed by a match; the
// chat id is the match id, and only the match's two users may touch it.
type Service struct {
	appCtx      *app.AppContext
	userRepo    *repository.UserRepository
	matchRepo   *repository.MatchRepository
	messageRepo *repository.MessageRepository
}

// NewService creates the chat service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		userRepo:    repository.NewUserRepository(appCtx.DB),
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		messageRepo: repository.NewMessageRepository(appCtx.DB),
	}
}

// ListMessages returns the ordered message log for a chat. A chat that does
// not exist and a chat the user is not part of are indistinguishable to the
// caller: both are chat_not_found.
func (s *Service) ListMessages(ctx context.Context, chatID, userID string) ([]db.ChatMessage, error) {
	if userID == "" {
		return nil, svcErr.ErrUserIDRequired
	}
	if _, err := s.requireParticipant(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByMatch(ctx, chatID)
}

// PostMessage appends one message to a chat if the sender is a participant.
func (s *Service) PostMessage(ctx context.Context, chatID, userID, body string) (db.ChatMessage, error) {
	if userID == "" {
		return db.ChatMessage{}, svcErr.ErrUserIDRequired
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return db.ChatMessage{}, svcErr.ErrBodyRequired
	}
	if len(body) > maxBodyLen {
		// cut on a rune boundary so the stored body stays valid UTF-8
		cut := maxBodyLen
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}

	match, err := s.requireParticipant(ctx, chatID, userID)
	if err != nil {
		return db.ChatMessage{}, err
	}

	msg := db.ChatMessage{
		MatchID:  chatID,
		SenderID: userID,
		Body:     body,
	}
	if err := s.messageRepo.Insert(ctx, &msg); err != nil {
		return db.ChatMessage{}, err
	}

	s.notifyMessage(match, userID, body)

	return msg, nil
}

// requireParticipant resolves the backing match and verifies membership.
func (s *Service) requireParticipant(ctx context.Context, chatID, userID string) (db.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, chatID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Match{}, svcErr.ErrChatNotFound
	}
	if err != nil {
		return db.Match{}, err
	}
	if match.UserLow != userID && match.UserHigh != userID {
		return db.Match{}, svcErr.ErrChatNotFound
	}
	return match, nil
}

// notifyMessage pings the other participant after the message is stored.
// Fire and forget, off the request path.
func (s *Service) notifyMessage(match db.Match, senderID, body string) {
	if s.appCtx.Notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		users, err := s.userRepo.GetMany(ctx, []string{match.UserLow, match.UserHigh})
		if err != nil {
			s.appCtx.Logger.Warn("message notification skipped, user lookup failed",
				"match", match.ID, "err", err)
			return
		}
		sender, recipient := users[match.UserLow], users[match.UserHigh]
		if sender.ID != senderID {
			sender, recipient = recipient, sender
		}
		if sender.ID == "" || recipient.ID == "" {
			return
		}
		s.appCtx.Notifier.MessageSent(match, sender, recipient, body)
	}()
}
