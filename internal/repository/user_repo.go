package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/matchaapp/matcha-server/internal/db"
)

// UserRepository provides data access methods for user profiles.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID fetches a single user.
func (r *UserRepository) GetByID(ctx context.Context, id string) (db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return user, err
}

// GetMany fetches users by id, keyed for cheap lookup.
func (r *UserRepository) GetMany(ctx context.Context, ids []string) (map[string]db.User, error) {
	byID := make(map[string]db.User, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	var users []db.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

// Exists reports whether a user row exists.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ExistsBoth reports whether both users exist with a single query.
func (r *UserRepository) ExistsBoth(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("id IN ?", []string{a, b}).Count(&count).Error
	return count == 2, err
}

// Count returns the total number of users, for the health endpoint.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Count(&count).Error
	return count, err
}

// NextCandidates returns up to limit profiles the user has not decided on,
// excluding the user themselves. Both likes and passes remove a candidate;
// passed profiles never resurface. Newest profiles first, no relevance
// ranking.
func (r *UserRepository) NextCandidates(ctx context.Context, userID string, limit int) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Table("users u").
		Where("u.id <> ?", userID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s
				WHERE s.actor_id = ?
				  AND s.target_id = u.id
			)`, userID).
		Order("u.created_at DESC, u.id DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
