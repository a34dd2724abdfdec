package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/matchaapp/matcha-server/internal/db"
	"github.com/matchaapp/matcha-server/internal/repository"
)

const deliverTimeout = 10 * time.Second

// WebPushSender delivers one payload to one stored subscription.
// gone=true means the endpoint is permanently dead and should be pruned.
type WebPushSender interface {
	Send(ctx context.Context, subscriptionJSON string, payload []byte) (gone bool, err error)
}

// FCMSender delivers one notification to a batch of device tokens and
// reports which tokens are no longer registered.
type FCMSender interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (invalid []string, err error)
}

// Dispatcher fans match/message events out to every push destination of the
// affected users. Strictly best-effort and post-commit: failures are logged
// and dead destinations pruned, nothing propagates back to the request.
type Dispatcher struct {
	pushRepo *repository.PushRepository
	webpush  WebPushSender // nil when VAPID is not configured
	fcm      FCMSender     // nil when Firebase is not configured
	logger   *slog.Logger
}

// NewDispatcher wires the dispatcher against the given DB and senders.
// Either sender may be nil; that channel is simply skipped.
func NewDispatcher(database *gorm.DB, webpush WebPushSender, fcm FCMSender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		pushRepo: repository.NewPushRepository(database),
		webpush:  webpush,
		fcm:      fcm,
		logger:   logger,
	}
}

// MatchCreated notifies both sides of a freshly created match.
func (d *Dispatcher) MatchCreated(match db.Match, userA, userB db.User) {
	data := map[string]string{
		"type":         "match",
		"matchId":      match.ID,
		"click_action": "OPEN_MATCHA",
	}
	d.deliver(userA.ID, "Nuevo match con "+userB.Name, "Hay match en Matcha. Abri la app para verlo.", data)
	d.deliver(userB.ID, "Nuevo match con "+userA.Name, "Hay match en Matcha. Abri la app para verlo.", data)
}

// MessageSent notifies the recipient of a new chat message.
func (d *Dispatcher) MessageSent(match db.Match, sender, recipient db.User, body string) {
	data := map[string]string{
		"type":         "message",
		"chatId":       match.ID,
		"click_action": "OPEN_MATCHA",
	}
	d.deliver(recipient.ID, "Mensaje de "+sender.Name, preview(body), data)
}

func (d *Dispatcher) deliver(userID, title, body string, data map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	d.sendWebPush(ctx, userID, title, body)
	d.sendFCM(ctx, userID, title, body, data)
}

func (d *Dispatcher) sendWebPush(ctx context.Context, userID, title, body string) {
	if d.webpush == nil {
		return
	}

	subs, err := d.pushRepo.SubscriptionsFor(ctx, userID)
	if err != nil {
		d.logger.Warn("webpush subscription lookup failed", "user", userID, "err", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, _ := json.Marshal(map[string]string{
		"title": title,
		"body":  body,
		"url":   "/",
	})

	var dead []string
	for _, sub := range subs {
		gone, err := d.webpush.Send(ctx, sub.Subscription, payload)
		if gone {
			dead = append(dead, sub.Endpoint)
			continue
		}
		if err != nil {
			d.logger.Warn("webpush send failed", "user", userID, "err", err)
		}
	}

	if len(dead) > 0 {
		if err := d.pushRepo.DeleteSubscriptionsByEndpoint(ctx, dead); err != nil {
			d.logger.Warn("webpush prune failed", "user", userID, "err", err)
		} else {
			d.logger.Info("pruned dead webpush endpoints", "user", userID, "count", len(dead))
		}
	}
}

func (d *Dispatcher) sendFCM(ctx context.Context, userID, title, body string, data map[string]string) {
	if d.fcm == nil {
		return
	}

	devices, err := d.pushRepo.DeviceTokensFor(ctx, userID)
	if err != nil {
		d.logger.Warn("device token lookup failed", "user", userID, "err", err)
		return
	}
	if len(devices) == 0 {
		return
	}

	tokens := make([]string, len(devices))
	for i, dev := range devices {
		tokens[i] = dev.Token
	}

	invalid, err := d.fcm.SendMulticast(ctx, tokens, title, body, data)
	if err != nil {
		d.logger.Warn("fcm send failed", "user", userID, "err", err)
		return
	}

	if len(invalid) > 0 {
		if err := d.pushRepo.DeleteDeviceTokens(ctx, invalid); err != nil {
			d.logger.Warn("fcm prune failed", "user", userID, "err", err)
		} else {
			d.logger.Info("pruned unregistered fcm tokens", "user", userID, "count", len(invalid))
		}
	}
}

func preview(body string) string {
	const max = 120
	if len(body) <= max {
		return body
	}
	return body[:max] + "…"
}
