package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matchaapp/matcha-server/internal/db"
	"github.com/matchaapp/matcha-server/internal/utils/pagination"
)

// SwipeRepository provides data access methods for the Swipe ledger.
// It encapsulates all queries related to like/pass decisions between users.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// WithTx returns a copy of the repository bound to tx, so ledger writes can
// share a transaction with match reconciliation.
func (r *SwipeRepository) WithTx(tx *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: tx}
}

// Upsert inserts or overwrites the (actor, target) ledger row.
//
// Behavior:
//   - If the ordered pair exists → direction and updated_at are overwritten.
//   - If it doesn't exist → a new row is inserted.
//   - Composite PK ensures at most one row per ordered pair, so repeating
//     the same swipe leaves the ledger in the same state.
func (r *SwipeRepository) Upsert(ctx context.Context, actorID, targetID, direction string) (db.Swipe, error) {
	swipe := db.Swipe{
		ActorID:   actorID,
		TargetID:  targetID,
		Direction: direction,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
		}).
		Create(&swipe).Error
	return swipe, err
}

// HasLiked checks whether an actor has liked a target.
// This is the reverse-edge probe used during match reconciliation.
func (r *SwipeRepository) HasLiked(ctx context.Context, actorID, targetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.actor_id = ? AND s.target_id = ? AND s.direction = ?", actorID, targetID, db.DirectionLike).
		Count(&count).Error
	return count > 0, err
}

// GetLikers returns users who liked the given target.
//
// Behavior:
//   - Only swipes where target_id = X and direction = like are returned.
//   - Excludes actors the target explicitly passed.
//   - Ordered by updated_at DESC, actor_id DESC.
//   - Supports cursor-based pagination via paginationToken.
func (r *SwipeRepository) GetLikers(
	ctx context.Context,
	targetID string,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	var swipes []db.Swipe

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.target_id = ? AND s.direction = ?", targetID, db.DirectionLike).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s2
				WHERE s2.actor_id = ?
				  AND s2.target_id = s.actor_id
				  AND s2.direction = ?
			)`, targetID, db.DirectionPass).
		Order("s.updated_at DESC, s.actor_id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.ActorID != "" && cursor.UpdatedUnix > 0 {
		ts := time.UnixMilli(cursor.UpdatedUnix)
		query = query.Where(
			"(s.updated_at < ? OR (s.updated_at = ? AND s.actor_id < ?))",
			ts, ts, cursor.ActorID,
		)
	}

	if err := query.Find(&swipes).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(swipes) > limit {
		last := swipes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ActorID:     last.ActorID,
			UpdatedUnix: last.UpdatedAt.UnixMilli(),
		})
		nextToken = &token
		swipes = swipes[:limit]
	}

	return swipes, nextToken, nil
}

// CountLikers returns how many users liked the given target, excluding
// actors the target explicitly passed. Used with the Redis cache
// (DB is fallback).
func (r *SwipeRepository) CountLikers(ctx context.Context, targetID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.target_id = ? AND s.direction = ?", targetID, db.DirectionLike).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s2
				WHERE s2.actor_id = ?
				  AND s2.target_id = s.actor_id
				  AND s2.direction = ?
			)`, targetID, db.DirectionPass).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
