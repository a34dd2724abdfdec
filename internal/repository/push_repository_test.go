package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/matchaapp/matcha-server/internal/db"
	"github.com/matchaapp/matcha-server/internal/repository"
)

func setupPushDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(&db.PushSubscription{}, &db.DeviceToken{}))
	return database
}

func TestUpsertSubscriptionIdempotent(t *testing.T) {
	ctx := context.Background()
	dbase := setupPushDB(t)
	repo := repository.NewPushRepository(dbase)

	require.NoError(t, repo.UpsertSubscription(ctx, "u1", "https://push.example/a", `{"endpoint":"https://push.example/a"}`))
	require.NoError(t, repo.UpsertSubscription(ctx, "u1", "https://push.example/a", `{"endpoint":"https://push.example/a","v":2}`))

	subs, err := repo.SubscriptionsFor(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	// refresh overwrites the stored payload
	assert.Contains(t, subs[0].Subscription, `"v":2`)

	// a second browser for the same user is a second row
	require.NoError(t, repo.UpsertSubscription(ctx, "u1", "https://push.example/b", `{"endpoint":"https://push.example/b"}`))
	subs, err = repo.SubscriptionsFor(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestDeleteSubscriptionsByEndpoint(t *testing.T) {
	ctx := context.Background()
	dbase := setupPushDB(t)
	repo := repository.NewPushRepository(dbase)

	require.NoError(t, repo.UpsertSubscription(ctx, "u1", "e1", `{"endpoint":"e1"}`))
	require.NoError(t, repo.UpsertSubscription(ctx, "u2", "e2", `{"endpoint":"e2"}`))

	require.NoError(t, repo.DeleteSubscriptionsByEndpoint(ctx, []string{"e1"}))
	require.NoError(t, repo.DeleteSubscriptionsByEndpoint(ctx, nil))

	subs, err := repo.SubscriptionsFor(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, subs)

	subs, err = repo.SubscriptionsFor(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestPruneStale(t *testing.T) {
	ctx := context.Background()
	dbase := setupPushDB(t)
	repo := repository.NewPushRepository(dbase)

	require.NoError(t, repo.UpsertSubscription(ctx, "u1", "e1", `{"endpoint":"e1"}`))
	require.NoError(t, repo.UpsertDeviceToken(ctx, "u1", "tok-old", "android"))
	require.NoError(t, repo.UpsertDeviceToken(ctx, "u1", "tok-new", "android"))

	// backdate one subscription and one token past the retention window
	stale := time.Now().UTC().Add(-200 * 24 * time.Hour)
	require.NoError(t, dbase.Model(&db.PushSubscription{}).
		Where("endpoint = ?", "e1").
		UpdateColumn("updated_at", stale).Error)
	require.NoError(t, dbase.Model(&db.DeviceToken{}).
		Where("token = ?", "tok-old").
		UpdateColumn("updated_at", stale).Error)

	removed, err := repo.PruneStale(ctx, time.Now().UTC().Add(-180*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	tokens, err := repo.DeviceTokensFor(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "tok-new", tokens[0].Token)
}
