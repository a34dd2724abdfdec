package swipe

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/matchaapp/matcha-server/internal/app"
	"github.com/matchaapp/matcha-server/internal/db"
	svcErr "github.com/matchaapp/matcha-server/internal/errors"
	"github.com/matchaapp/matcha-server/internal/repository"
)

// Opening lines seeded into every brand-new conversation, alternating
// sender between the two matched users.
var openingLines = []string{
	"Hicimos match en Matcha. Rompe el hielo cuando quieras.",
	"Aca estoy. Decime algo que no este en tu bio.",
}

// Result is the outcome of one recorded swipe.
//
// Match is non-nil whenever a match exists for the pair after this swipe,
// whether this call created it or it already existed. IsNewMatch is true
// only on the call whose insert actually created the row.
type Result struct {
	Swipe      db.Swipe
	IsNewMatch bool
	Match      *db.Match
}

// Service owns the swipe ledger and match reconciliation. It is the one
// place where concurrency correctness matters: a swipe request is a single
// transactional unit, and match uniqueness is delegated to the store's
// pair-key constraint rather than in-process locking.
type Service struct {
	appCtx      *app.AppContext
	userRepo    *repository.UserRepository
	swipeRepo   *repository.SwipeRepository
	matchRepo   *repository.MatchRepository
	messageRepo *repository.MessageRepository
}

// NewService creates the swipe service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		userRepo:    repository.NewUserRepository(appCtx.DB),
		swipeRepo:   repository.NewSwipeRepository(appCtx.DB),
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		messageRepo: repository.NewMessageRepository(appCtx.DB),
	}
}

// RecordSwipe upserts the (actor, target) ledger row and, for a like,
// reconciles the pair into a match inside the same transaction.
//
// Behavior:
//   - Validation failures reject before any store access.
//   - Both users must exist (cheap pre-check, no partial writes).
//   - The ledger upsert is idempotent: like twice == like once; a later
//     pass overwrites the like. A pass never retracts an existing match.
//   - On a like, the reverse edge is probed within the transaction; if it
//     exists the match row is inserted with conflict-safe semantics and,
//     only when this call created it, the conversation is seeded in the
//     same transaction.
//   - Any store error rolls back everything (ledger write included) and
//     surfaces the generic swipe_failed; the client retries the whole
//     swipe safely.
//   - Post-commit only: like-count cache bump and async match notification.
//     Neither can fail the swipe.
func (s *Service) RecordSwipe(ctx context.Context, actorID, targetID, direction string) (Result, error) {
	if actorID == "" || targetID == "" || direction == "" {
		return Result{}, svcErr.ErrMissingFields
	}
	if direction != db.DirectionLike && direction != db.DirectionPass {
		return Result{}, svcErr.ErrInvalidDirection
	}
	if actorID == targetID {
		return Result{}, svcErr.ErrInvalidTarget
	}

	bothExist, err := s.userRepo.ExistsBoth(ctx, actorID, targetID)
	if err != nil {
		s.appCtx.Logger.Error("swipe user pre-check failed", "err", err)
		return Result{}, svcErr.ErrSwipeFailed
	}
	if !bothExist {
		return Result{}, svcErr.ErrUserNotFound
	}

	// Serializable, not the store default: at repeatable read two overlapping
	// reciprocal likes each probe a snapshot without the other's edge and
	// neither creates the match. Serializable makes the probes conflict, so
	// one transaction aborts into the retry-safe swipe_failed path instead.
	var res Result
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		swipes := s.swipeRepo.WithTx(tx)

		sw, err := swipes.Upsert(ctx, actorID, targetID, direction)
		if err != nil {
			return err
		}
		res.Swipe = sw

		if direction != db.DirectionLike {
			return nil
		}

		reciprocal, err := swipes.HasLiked(ctx, targetID, actorID)
		if err != nil {
			return err
		}
		if !reciprocal {
			// common case: one-sided like, no match yet
			return nil
		}

		match, created, err := s.matchRepo.WithTx(tx).CreateIfAbsent(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		res.Match = &match
		res.IsNewMatch = created

		if created {
			return s.seedOpening(ctx, tx, match)
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		s.appCtx.Logger.Error("swipe transaction failed",
			"actor", actorID, "target", targetID, "direction", direction, "err", err)
		return Result{}, svcErr.ErrSwipeFailed
	}

	s.bumpLikeCount(ctx, targetID, direction)

	if res.IsNewMatch {
		s.notifyMatch(*res.Match)
	}

	return res, nil
}

// seedOpening inserts the deterministic opening exchange for a brand-new
// match: one line per user, low side first, timestamps strictly increasing
// so ordering is stable. Runs inside the match-creation transaction; if
// that rolls back, the seeded lines vanish with it.
func (s *Service) seedOpening(ctx context.Context, tx *gorm.DB, match db.Match) error {
	messages := s.messageRepo.WithTx(tx)
	senders := []string{match.UserLow, match.UserHigh}
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i, body := range openingLines {
		msg := db.ChatMessage{
			MatchID:   match.ID,
			SenderID:  senders[i%len(senders)],
			Body:      body,
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
		}
		if err := messages.Insert(ctx, &msg); err != nil {
			return err
		}
	}
	return nil
}

// bumpLikeCount adjusts the target's cached like counter (+1 like, -1 pass).
// The counter is approximate; the count endpoint repopulates from the DB on
// a miss. Cache errors are logged, never surfaced.
func (s *Service) bumpLikeCount(ctx context.Context, targetID, direction string) {
	if s.appCtx.RedisCache == nil {
		return
	}
	delta := int64(1)
	if direction == db.DirectionPass {
		delta = -1
	}
	if err := s.appCtx.RedisCache.BumpLikeCount(ctx, targetID, delta); err != nil {
		s.appCtx.Logger.Debug("like count bump failed", "target", targetID, "err", err)
	}
}

// notifyMatch hands the freshly created match to the dispatcher on a
// detached goroutine. Fire and forget: delivery failures are the
// dispatcher's problem, never the swipe's.
func (s *Service) notifyMatch(match db.Match) {
	if s.appCtx.Notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		users, err := s.userRepo.GetMany(ctx, []string{match.UserLow, match.UserHigh})
		if err != nil {
			s.appCtx.Logger.Warn("match notification skipped, user lookup failed",
				"match", match.ID, "err", err)
			return
		}
		userA, okA := users[match.UserLow]
		userB, okB := users[match.UserHigh]
		if !okA || !okB {
			return
		}
		s.appCtx.Notifier.MatchCreated(match, userA, userB)
	}()
}

// ListMatches resolves every match containing userID into the "other" user's
// profile. Matches whose other side no longer resolves are skipped.
func (s *Service) ListMatches(ctx context.Context, userID string) ([]MatchEntry, error) {
	if userID == "" {
		return nil, svcErr.ErrUserIDRequired
	}

	matches, err := s.matchRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	otherIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		otherIDs = append(otherIDs, otherSide(m, userID))
	}
	users, err := s.userRepo.GetMany(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]MatchEntry, 0, len(matches))
	for _, m := range matches {
		other, ok := users[otherSide(m, userID)]
		if !ok {
			continue
		}
		entries = append(entries, MatchEntry{Match: m, Other: other})
	}
	return entries, nil
}

// MatchEntry pairs a match row with the resolved profile on its other side.
type MatchEntry struct {
	Match db.Match
	Other db.User
}

func otherSide(m db.Match, userID string) string {
	if m.UserLow == userID {
		return m.UserHigh
	}
	return m.UserLow
}
