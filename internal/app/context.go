package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/matchaapp/matcha-server/internal/cache"
	"github.com/matchaapp/matcha-server/internal/db"
)

// Notifier delivers post-commit push notifications. Implementations are
// fire-and-forget; calls must never block the request path.
type Notifier interface {
	MatchCreated(match db.Match, userA, userB db.User)
	MessageSent(match db.Match, sender, recipient db.User, body string)
}

// AppContext holds shared dependencies (DB, Redis, Notifier, Logger).
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Notifier   Notifier
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(database *gorm.DB, rdb *cache.RedisCache, notifier Notifier, logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:         database,
		RedisCache: rdb,
		Notifier:   notifier,
		Logger:     logger,
	}
}
