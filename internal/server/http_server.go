package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matchaapp/matcha-server/internal/app"
	"github.com/matchaapp/matcha-server/internal/config"
	"github.com/matchaapp/matcha-server/internal/repository"
)

// NewRouter builds the engine, mounts the health endpoint, and registers
// all provided services under /api.
func NewRouter(cfg *config.Config, appCtx *app.AppContext, registrars ...Registrar) *gin.Engine {
	if cfg.App.ENV == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(appCtx))

	userRepo := repository.NewUserRepository(appCtx.DB)
	engine.GET("/health", func(c *gin.Context) {
		users, err := userRepo.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "db_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"service": "matcha",
			"now":     time.Now().UTC().Format(time.RFC3339),
			"users":   users,
		})
	})

	api := engine.Group("/api")
	for _, r := range registrars {
		r.Register(api)
	}

	return engine
}

// Start serves the engine and blocks until SIGINT/SIGTERM, then drains
// in-flight requests before returning.
func Start(cfg *config.Config, appCtx *app.AppContext, engine *gin.Engine) error {
	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		appCtx.Logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// requestLogger emits one structured line per request.
func requestLogger(appCtx *app.AppContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		appCtx.Logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
