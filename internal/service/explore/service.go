package explore

import (
	"context"

	"github.com/matchaapp/matcha-server/internal/app"
	"github.com/matchaapp/matcha-server/internal/db"
	svcErr "github.com/matchaapp/matcha-server/internal/errors"
	"github.com/matchaapp/matcha-server/internal/repository"
)

const (
	defaultStackLimit = 8
	maxStackLimit     = 20
	likedYouPageSize  = 5
)

// Service builds the candidate stack and the liked-you views. It contains
// the read-side business logic on top of repository and cache layers.
type Service struct {
	appCtx    *app.AppContext
	userRepo  *repository.UserRepository
	swipeRepo *repository.SwipeRepository
}

// NewService creates the explore service with dependencies from AppContext.
// Dependencies include the DB connection (via repositories) and the Redis
// cache for like counters.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		userRepo:  repository.NewUserRepository(appCtx.DB),
		swipeRepo: repository.NewSwipeRepository(appCtx.DB),
	}
}

// Stack returns the next profiles the user hasn't swiped on, newest users
// first. Limit is clamped to 1..20, defaulting to 8. No relevance ranking.
func (s *Service) Stack(ctx context.Context, userID string, limit int) ([]db.User, error) {
	if userID == "" {
		return nil, svcErr.ErrUserIDRequired
	}
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, svcErr.ErrUserNotFound
	}

	if limit <= 0 {
		limit = defaultStackLimit
	}
	if limit > maxStackLimit {
		limit = maxStackLimit
	}

	return s.userRepo.NextCandidates(ctx, userID, limit)
}

// ListLikedYou returns the users who liked userID, excluding anyone the
// user explicitly passed. Cursor-paginated, newest likes first.
func (s *Service) ListLikedYou(ctx context.Context, userID string, paginationToken *string) ([]db.Swipe, *string, error) {
	if userID == "" {
		return nil, nil, svcErr.ErrUserIDRequired
	}

	s.appCtx.Logger.Debug("ListLikedYou called", "user", userID)

	swipes, nextToken, err := s.swipeRepo.GetLikers(ctx, userID, paginationToken, likedYouPageSize)
	if err != nil {
		s.appCtx.Logger.Error("GetLikers failed", "err", err)
		return nil, nil, err
	}
	return swipes, nextToken, nil
}

// CountLikedYou returns how many users liked userID.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID).
//  2. On cache miss, falls back to the DB.
//  3. On DB fetch, repopulates Redis with a 1h TTL.
func (s *Service) CountLikedYou(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, svcErr.ErrUserIDRequired
	}

	if s.appCtx.RedisCache != nil {
		if n, hit, err := s.appCtx.RedisCache.GetLikeCount(ctx, userID); err == nil && hit {
			return n, nil
		}
	}

	count, err := s.swipeRepo.CountLikers(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.appCtx.RedisCache != nil {
		if err := s.appCtx.RedisCache.SetLikeCount(ctx, userID, count); err != nil {
			s.appCtx.Logger.Debug("like count cache set failed", "user", userID, "err", err)
		}
	}

	return count, nil
}
