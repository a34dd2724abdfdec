package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/matchaapp/matcha-server/internal/app"
	"github.com/matchaapp/matcha-server/internal/cache"
	"github.com/matchaapp/matcha-server/internal/config"
	"github.com/matchaapp/matcha-server/internal/db"
	"github.com/matchaapp/matcha-server/internal/logger"
	"github.com/matchaapp/matcha-server/internal/notify"
	"github.com/matchaapp/matcha-server/internal/server"
	"github.com/matchaapp/matcha-server/internal/service/chat"
	"github.com/matchaapp/matcha-server/internal/service/explore"
	"github.com/matchaapp/matcha-server/internal/service/profile"
	"github.com/matchaapp/matcha-server/internal/service/swipe"
	"github.com/matchaapp/matcha-server/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	slogger := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		slogger.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		slogger.Error("failed to connect to redis", "err", err)
		return
	}

	// VAPID keys: fall back to a generated pair so web push still works for
	// the current run.
	if cfg.Push.VAPIDPublicKey == "" || cfg.Push.VAPIDPrivateKey == "" {
		priv, pub, err := notify.GenerateVAPIDKeys()
		if err != nil {
			slogger.Error("failed to generate VAPID keys", "err", err)
			return
		}
		cfg.Push.VAPIDPrivateKey, cfg.Push.VAPIDPublicKey = priv, pub
		slogger.Warn("using generated VAPID keys for this run; configure env vars for stable push subscriptions")
	}
	webpushSender := notify.NewVAPIDSender(cfg.Push.VAPIDEmail, cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey)

	var fcmSender notify.FCMSender
	if cfg.Push.FirebaseCredentials != "" {
		sender, err := notify.NewFirebaseSender(context.Background(), cfg.Push.FirebaseCredentials)
		if err != nil {
			slogger.Error("firebase init failed, FCM push disabled", "err", err)
		} else {
			fcmSender = sender
		}
	} else {
		slogger.Warn("firebase not configured, Android FCM push is disabled")
	}

	dispatcher := notify.NewDispatcher(database, webpushSender, fcmSender, slogger)

	appCtx := app.New(database, redisCache, dispatcher, slogger)

	if cfg.App.ENV == "development" {
		if err := db.SeedDemoData(database); err != nil {
			slogger.Error("failed to seed demo data", "err", err)
		}
	}

	sweeper := worker.NewSweeper(database, cfg.Sweep.Interval, cfg.Sweep.Retention, slogger)
	if err := sweeper.Start(); err != nil {
		slogger.Error("failed to start sweeper", "err", err)
		return
	}
	defer sweeper.Stop()

	registrars := []server.Registrar{
		profile.NewRegistrar(appCtx, cfg.Push.VAPIDPublicKey),
		swipe.NewRegistrar(appCtx),
		chat.NewRegistrar(appCtx),
		explore.NewRegistrar(appCtx),
	}

	engine := server.NewRouter(cfg, appCtx, registrars...)

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	slogger.Info("starting http server", "addr", addr)

	if err := server.Start(cfg, appCtx, engine); err != nil {
		slogger.Error("http server exited", "err", err)
	}
}
