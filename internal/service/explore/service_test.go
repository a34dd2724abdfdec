package explore_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/matchaapp/matcha-server/internal/app"
	"github.com/matchaapp/matcha-server/internal/cache"
	"github.com/matchaapp/matcha-server/internal/config"
	"github.com/matchaapp/matcha-server/internal/db"
	svcErr "github.com/matchaapp/matcha-server/internal/errors"
	"github.com/matchaapp/matcha-server/internal/service/explore"
)

func setupExplore(t *testing.T) (*explore.Service, *gorm.DB, *cache.RedisCache) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(&db.User{}, &db.Swipe{}, &db.Match{}))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	redisCache := cache.NewRedisCache(cfg)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(dbase, redisCache, nil, slogger)
	return explore.NewService(appCtx), dbase, redisCache
}

func seedUsers(t *testing.T, dbase *gorm.DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, dbase.Create(&db.User{ID: id, Name: id, Age: 25, Active: true}).Error)
		// created_at ordering drives the stack; keep rows apart
		time.Sleep(2 * time.Millisecond)
	}
}

func TestStackExcludesSelfAndSwiped(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupExplore(t)
	seedUsers(t, dbase, "u1", "u2", "u3", "u4")

	// u1 already swiped on u2 (like) and u3 (pass)
	require.NoError(t, dbase.Create(&db.Swipe{ActorID: "u1", TargetID: "u2", Direction: db.DirectionLike}).Error)
	require.NoError(t, dbase.Create(&db.Swipe{ActorID: "u1", TargetID: "u3", Direction: db.DirectionPass}).Error)

	stack, err := svc.Stack(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, stack, 1)
	assert.Equal(t, "u4", stack[0].ID)
}

func TestStackLimitClamped(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupExplore(t)

	ids := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		ids = append(ids, fmt.Sprintf("u%02d", i))
	}
	seedUsers(t, dbase, ids...)

	stack, err := svc.Stack(ctx, "u00", 0)
	require.NoError(t, err)
	assert.Len(t, stack, 8)

	stack, err = svc.Stack(ctx, "u00", 100)
	require.NoError(t, err)
	assert.Len(t, stack, 20)

	// newest first
	assert.Equal(t, "u24", stack[0].ID)
}

func TestStackUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupExplore(t)

	_, err := svc.Stack(ctx, "u_ghost", 5)
	assert.ErrorIs(t, err, svcErr.ErrUserNotFound)

	_, err = svc.Stack(ctx, "", 5)
	assert.ErrorIs(t, err, svcErr.ErrUserIDRequired)
}

func TestListLikedYouExcludesPassed(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupExplore(t)
	seedUsers(t, dbase, "u1", "u2", "u3")

	// u2 and u3 liked u1, but u1 already passed on u3
	require.NoError(t, dbase.Create(&db.Swipe{ActorID: "u2", TargetID: "u1", Direction: db.DirectionLike}).Error)
	require.NoError(t, dbase.Create(&db.Swipe{ActorID: "u3", TargetID: "u1", Direction: db.DirectionLike}).Error)
	require.NoError(t, dbase.Create(&db.Swipe{ActorID: "u1", TargetID: "u3", Direction: db.DirectionPass}).Error)

	likers, next, err := svc.ListLikedYou(ctx, "u1", nil)
	require.NoError(t, err)
	require.Len(t, likers, 1)
	assert.Equal(t, "u2", likers[0].ActorID)
	assert.Nil(t, next)
}

func TestListLikedYouPagination(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupExplore(t)

	ids := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7"}
	seedUsers(t, dbase, ids...)
	for _, id := range ids[1:] {
		require.NoError(t, dbase.Create(&db.Swipe{ActorID: id, TargetID: "u1", Direction: db.DirectionLike}).Error)
		time.Sleep(2 * time.Millisecond)
	}

	first, next, err := svc.ListLikedYou(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Len(t, first, 5)
	require.NotNil(t, next)

	second, next, err := svc.ListLikedYou(ctx, "u1", next)
	require.NoError(t, err)
	assert.Len(t, second, 1)
	assert.Nil(t, next)

	seen := map[string]bool{}
	for _, sw := range append(first, second...) {
		assert.False(t, seen[sw.ActorID], "liker %s returned twice", sw.ActorID)
		seen[sw.ActorID] = true
	}
}

func TestCountLikedYouCacheFirst(t *testing.T) {
	ctx := context.Background()
	svc, dbase, redisCache := setupExplore(t)
	seedUsers(t, dbase, "u1", "u2", "u3")

	require.NoError(t, dbase.Create(&db.Swipe{ActorID: "u2", TargetID: "u1", Direction: db.DirectionLike}).Error)
	require.NoError(t, dbase.Create(&db.Swipe{ActorID: "u3", TargetID: "u1", Direction: db.DirectionLike}).Error)

	// cold: DB answers and repopulates the cache
	count, err := svc.CountLikedYou(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	cached, hit, err := redisCache.GetLikeCount(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(2), cached)

	// warm: the cache answers even when it disagrees with the DB
	require.NoError(t, redisCache.SetLikeCount(ctx, "u1", 42))
	count, err = svc.CountLikedYou(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}
