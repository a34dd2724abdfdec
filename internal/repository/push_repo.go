package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matchaapp/matcha-server/internal/db"
)

// PushRepository provides data access methods for push-delivery
// registrations (web-push subscriptions and FCM device tokens).
type PushRepository struct {
	db *gorm.DB
}

// NewPushRepository creates a new repository bound to the given DB connection.
func NewPushRepository(database *gorm.DB) *PushRepository {
	return &PushRepository{db: database}
}

// UpsertSubscription registers or refreshes a web-push subscription for
// (user, endpoint).
func (r *PushRepository) UpsertSubscription(ctx context.Context, userID, endpoint, subscriptionJSON string) error {
	sub := db.PushSubscription{
		ID:           "ps_" + uuid.NewString(),
		UserID:       userID,
		Endpoint:     endpoint,
		Subscription: subscriptionJSON,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"subscription", "updated_at"}),
		}).
		Create(&sub).Error
}

// UpsertDeviceToken registers or refreshes an FCM token. A token already
// registered moves to the re-registering user.
func (r *PushRepository) UpsertDeviceToken(ctx context.Context, userID, token, platform string) error {
	dt := db.DeviceToken{
		ID:       "dt_" + uuid.NewString(),
		UserID:   userID,
		Token:    token,
		Platform: platform,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at"}),
		}).
		Create(&dt).Error
}

// SubscriptionsFor returns every web-push subscription for a user.
func (r *PushRepository) SubscriptionsFor(ctx context.Context, userID string) ([]db.PushSubscription, error) {
	var subs []db.PushSubscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}

// DeviceTokensFor returns every FCM token for a user.
func (r *PushRepository) DeviceTokensFor(ctx context.Context, userID string) ([]db.DeviceToken, error) {
	var tokens []db.DeviceToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error
	return tokens, err
}

// DeleteSubscriptionsByEndpoint prunes subscriptions whose endpoints the
// push gateway reported gone.
func (r *PushRepository) DeleteSubscriptionsByEndpoint(ctx context.Context, endpoints []string) error {
	if len(endpoints) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("endpoint IN ?", endpoints).Delete(&db.PushSubscription{}).Error
}

// DeleteDeviceTokens prunes tokens FCM reported unregistered.
func (r *PushRepository) DeleteDeviceTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("token IN ?", tokens).Delete(&db.DeviceToken{}).Error
}

// PruneStale deletes registrations not refreshed since the cutoff. Returns
// how many rows were removed across both tables.
func (r *PushRepository) PruneStale(ctx context.Context, cutoff time.Time) (int64, error) {
	subs := r.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&db.PushSubscription{})
	if subs.Error != nil {
		return 0, subs.Error
	}
	tokens := r.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&db.DeviceToken{})
	if tokens.Error != nil {
		return subs.RowsAffected, tokens.Error
	}
	return subs.RowsAffected + tokens.RowsAffected, nil
}
