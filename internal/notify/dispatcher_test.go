package notify_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/matchaapp/matcha-server/internal/db"
	"github.com/matchaapp/matcha-server/internal/notify"
	"github.com/matchaapp/matcha-server/internal/repository"
)

type webPushCall struct {
	subscription string
	payload      []byte
}

// fakeWebPush records sends and flags configured endpoints as gone.
type fakeWebPush struct {
	mu    sync.Mutex
	calls []webPushCall
	gone  map[string]bool
}

func (f *fakeWebPush) Send(_ context.Context, subscriptionJSON string, payload []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, webPushCall{subscription: subscriptionJSON, payload: payload})

	var sub struct {
		Endpoint string `json:"endpoint"`
	}
	_ = json.Unmarshal([]byte(subscriptionJSON), &sub)
	return f.gone[sub.Endpoint], nil
}

// fakeFCM records multicasts and reports configured tokens as unregistered.
type fakeFCM struct {
	mu      sync.Mutex
	calls   [][]string
	titles  []string
	invalid map[string]bool
}

func (f *fakeFCM) SendMulticast(_ context.Context, tokens []string, title, _ string, _ map[string]string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, tokens)
	f.titles = append(f.titles, title)

	var bad []string
	for _, tok := range tokens {
		if f.invalid[tok] {
			bad = append(bad, tok)
		}
	}
	return bad, nil
}

func setupDispatcher(t *testing.T, wp *fakeWebPush, fcm *fakeFCM) (*notify.Dispatcher, *gorm.DB, *repository.PushRepository) {
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

	require.NoError(t, dbase.AutoMigrate(&db.User{}, &db.PushSubscription{}, &db.DeviceToken{}))

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var wpSender notify.WebPushSender
	if wp != nil {
		wpSender = wp
	}
	var fcmSender notify.FCMSender
	if fcm != nil {
		fcmSender = fcm
	}

	return notify.NewDispatcher(dbase, wpSender, fcmSender, slogger), dbase, repository.NewPushRepository(dbase)
}

func subscriptionJSON(endpoint string) string {
	return fmt.Sprintf(`{"endpoint":"%s","keys":{"p256dh":"k","auth":"a"}}`, endpoint)
}

func TestMatchCreatedNotifiesBothSides(t *testing.T) {
	ctx := context.Background()
	wp := &fakeWebPush{}
	fcm := &fakeFCM{}
	d, _, pushRepo := setupDispatcher(t, wp, fcm)

	require.NoError(t, pushRepo.UpsertSubscription(ctx, "u_alice", "https://push.example/a", subscriptionJSON("https://push.example/a")))
	require.NoError(t, pushRepo.UpsertDeviceToken(ctx, "u_bob", "tok-bob", "android"))

	match := db.Match{ID: "m_1", UserLow: "u_alice", UserHigh: "u_bob"}
	d.MatchCreated(match, db.User{ID: "u_alice", Name: "Alice"}, db.User{ID: "u_bob", Name: "Bob"})

	// alice had one web-push subscription
	require.Len(t, wp.calls, 1)
	var payload struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	require.NoError(t, json.Unmarshal(wp.calls[0].payload, &payload))
	assert.Equal(t, "Nuevo match con Bob", payload.Title)

	// bob had one device token
	require.Len(t, fcm.calls, 1)
	assert.Equal(t, []string{"tok-bob"}, fcm.calls[0])
	assert.Equal(t, "Nuevo match con Alice", fcm.titles[0])
}

func TestDeadWebPushEndpointIsPruned(t *testing.T) {
	ctx := context.Background()
	wp := &fakeWebPush{gone: map[string]bool{"https://push.example/dead": true}}
	d, dbase, pushRepo := setupDispatcher(t, wp, nil)

	require.NoError(t, pushRepo.UpsertSubscription(ctx, "u_alice", "https://push.example/dead", subscriptionJSON("https://push.example/dead")))
	require.NoError(t, pushRepo.UpsertSubscription(ctx, "u_alice", "https://push.example/live", subscriptionJSON("https://push.example/live")))

	match := db.Match{ID: "m_1", UserLow: "u_alice", UserHigh: "u_bob"}
	d.MatchCreated(match, db.User{ID: "u_alice", Name: "Alice"}, db.User{ID: "u_bob", Name: "Bob"})

	var endpoints []string
	require.NoError(t, dbase.Model(&db.PushSubscription{}).
		Where("user_id = ?", "u_alice").
		Pluck("endpoint", &endpoints).Error)
	assert.Equal(t, []string{"https://push.example/live"}, endpoints)
}

func TestUnregisteredTokenIsPruned(t *testing.T) {
	ctx := context.Background()
	fcm := &fakeFCM{invalid: map[string]bool{"tok-stale": true}}
	d, dbase, pushRepo := setupDispatcher(t, nil, fcm)

	require.NoError(t, pushRepo.UpsertDeviceToken(ctx, "u_bob", "tok-stale", "android"))
	require.NoError(t, pushRepo.UpsertDeviceToken(ctx, "u_bob", "tok-fresh", "android"))

	match := db.Match{ID: "m_1", UserLow: "u_alice", UserHigh: "u_bob"}
	d.MessageSent(match, db.User{ID: "u_alice", Name: "Alice"}, db.User{ID: "u_bob", Name: "Bob"}, "hola")

	var tokens []string
	require.NoError(t, dbase.Model(&db.DeviceToken{}).
		Where("user_id = ?", "u_bob").
		Pluck("token", &tokens).Error)
	assert.Equal(t, []string{"tok-fresh"}, tokens)
}

func TestMessageSentPreview(t *testing.T) {
	ctx := context.Background()
	wp := &fakeWebPush{}
	d, _, pushRepo := setupDispatcher(t, wp, nil)

	require.NoError(t, pushRepo.UpsertSubscription(ctx, "u_bob", "https://push.example/b", subscriptionJSON("https://push.example/b")))

	match := db.Match{ID: "m_1", UserLow: "u_alice", UserHigh: "u_bob"}
	long := strings.Repeat("hola ", 50)
	d.MessageSent(match, db.User{ID: "u_alice", Name: "Alice"}, db.User{ID: "u_bob", Name: "Bob"}, long)

	require.Len(t, wp.calls, 1)
	var payload struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	require.NoError(t, json.Unmarshal(wp.calls[0].payload, &payload))
	assert.Equal(t, "Mensaje de Alice", payload.Title)
	assert.LessOrEqual(t, len(payload.Body), 130)
}

func TestNilSendersAreSkipped(t *testing.T) {
	ctx := context.Background()
	d, _, pushRepo := setupDispatcher(t, nil, nil)

	require.NoError(t, pushRepo.UpsertSubscription(ctx, "u_alice", "https://push.example/a", subscriptionJSON("https://push.example/a")))

	// must not panic with neither channel configured
	match := db.Match{ID: "m_1", UserLow: "u_alice", UserHigh: "u_bob"}
	d.MatchCreated(match, db.User{ID: "u_alice", Name: "Alice"}, db.User{ID: "u_bob", Name: "Bob"})
}
