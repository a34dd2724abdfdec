package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matchaapp/matcha-server/internal/db"
)

// MatchRepository provides data access methods for Match rows.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// WithTx returns a copy of the repository bound to tx.
func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

// CreateIfAbsent inserts the match row for the unordered pair {a, b} with
// insert-or-ignore-on-conflict semantics on the pair key. The uniqueness
// check happens atomically with the insert, so two reciprocal swipes racing
// to create the same match produce exactly one row: one caller gets
// created=true, the other observes the conflict and gets the existing row.
//
// Never insert-then-check here; that ordering loses the race.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, a, b string) (db.Match, bool, error) {
	low, high, key := db.CanonicalPair(a, b)

	match := db.Match{
		ID:       "m_" + uuid.NewString(),
		UserLow:  low,
		UserHigh: high,
		PairKey:  key,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).
		Create(&match)
	if res.Error != nil {
		return db.Match{}, false, res.Error
	}
	if res.RowsAffected > 0 {
		return match, true, nil
	}

	// Conflict: the pair already matched (duplicate request replay, or the
	// other half of the race got there first). Fetch what exists.
	var existing db.Match
	if err := r.db.WithContext(ctx).Where("pair_key = ?", key).First(&existing).Error; err != nil {
		return db.Match{}, false, err
	}
	return existing, false, nil
}

// GetByID fetches a single match row.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&match).Error
	return match, err
}

// ListForUser returns every match containing the given user, newest first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID string) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_low = ? OR user_high = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&matches).Error
	return matches, err
}
