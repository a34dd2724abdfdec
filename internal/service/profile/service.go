package profile

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/matchaapp/matcha-server/internal/app"
	"github.com/matchaapp/matcha-server/internal/db"
	svcErr "github.com/matchaapp/matcha-server/internal/errors"
	"github.com/matchaapp/matcha-server/internal/repository"
)

const (
	defaultAge      = 25
	minAge          = 18
	maxAge          = 99
	defaultCity     = "Sin ciudad"
	defaultBio      = "Nuevo en Matcha"
	defaultPhotoURL = "https://images.unsplash.com/photo-1544005313-94ddf0286df2?auto=format&fit=crop&w=900&q=80"
)

// GuestInput is the client-supplied slice of a new guest profile.
type GuestInput struct {
	Name     string `json:"name"`
	Age      int    `json:"age"`
	City     string `json:"city"`
	Bio      string `json:"bio"`
	PhotoURL string `json:"photoUrl"`
}

// Service owns profile plumbing: guest signup, profile reads, and
// push-delivery registration bookkeeping.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
	pushRepo *repository.PushRepository
}

// NewService creates the profile service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
		pushRepo: repository.NewPushRepository(appCtx.DB),
	}
}

// CreateGuest registers a guest profile. Name is mandatory; everything else
// is defaulted and clamped the way the clients expect. Returns the user and
// an opaque session token.
func (s *Service) CreateGuest(ctx context.Context, in GuestInput) (db.User, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return db.User{}, "", svcErr.ErrNameRequired
	}

	age := in.Age
	if age == 0 {
		age = defaultAge
	}
	if age < minAge {
		age = minAge
	}
	if age > maxAge {
		age = maxAge
	}

	user := db.User{
		ID:       "u_" + uuid.NewString(),
		Name:     truncate(name, 30),
		Age:      age,
		City:     truncate(defaultString(in.City, defaultCity), 40),
		Bio:      truncate(defaultString(in.Bio, defaultBio), 180),
		PhotoURL: defaultString(strings.TrimSpace(in.PhotoURL), defaultPhotoURL),
		Active:   true,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		return db.User{}, "", err
	}

	token := base64.RawURLEncoding.EncodeToString([]byte(user.ID))
	return user, token, nil
}

// GetUser fetches one profile.
func (s *Service) GetUser(ctx context.Context, id string) (db.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.User{}, svcErr.ErrUserNotFound
	}
	return user, err
}

// Subscribe upserts a web-push subscription for the user. The raw
// subscription object is stored verbatim; only the endpoint is inspected.
func (s *Service) Subscribe(ctx context.Context, userID string, subscription json.RawMessage) error {
	endpoint := extractEndpoint(subscription)
	if userID == "" || endpoint == "" {
		return svcErr.ErrInvalidPayload
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	return s.pushRepo.UpsertSubscription(ctx, userID, endpoint, string(subscription))
}

// RegisterDevice upserts an FCM device token for the user.
func (s *Service) RegisterDevice(ctx context.Context, userID, token, platform string) error {
	if userID == "" || token == "" {
		return svcErr.ErrInvalidPayload
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	if platform == "" {
		platform = "android"
	}
	return s.pushRepo.UpsertDeviceToken(ctx, userID, token, platform)
}

// UserCount backs the health endpoint.
func (s *Service) UserCount(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

func (s *Service) requireUser(ctx context.Context, userID string) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return svcErr.ErrUserNotFound
	}
	return nil
}

func extractEndpoint(subscription json.RawMessage) string {
	var sub struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.Unmarshal(subscription, &sub); err != nil {
		return ""
	}
	return sub.Endpoint
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func truncate(v string, n int) string {
	if len(v) <= n {
		return v
	}
	return v[:n]
}
