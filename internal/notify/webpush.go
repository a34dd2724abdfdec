package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
)

// VAPIDSender sends web-push notifications using VAPID keys.
type VAPIDSender struct {
	subscriber string
	publicKey  string
	privateKey string
}

// NewVAPIDSender builds a web-push sender. subscriber is the mailto: contact
// the push services may use.
func NewVAPIDSender(subscriber, publicKey, privateKey string) *VAPIDSender {
	return &VAPIDSender{
		subscriber: subscriber,
		publicKey:  publicKey,
		privateKey: privateKey,
	}
}

// GenerateVAPIDKeys produces a fresh keypair for runs without configured keys.
func GenerateVAPIDKeys() (privateKey, publicKey string, err error) {
	return webpush.GenerateVAPIDKeys()
}

// Send pushes one payload to one stored browser subscription. An endpoint
// answering 404/410 is gone for good; a subscription blob that no longer
// parses is equally unusable, so both report gone=true.
func (v *VAPIDSender) Send(ctx context.Context, subscriptionJSON string, payload []byte) (bool, error) {
	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(subscriptionJSON), &sub); err != nil {
		return true, fmt.Errorf("malformed subscription: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &sub, &webpush.Options{
		Subscriber:      v.subscriber,
		VAPIDPublicKey:  v.publicKey,
		VAPIDPrivateKey: v.privateKey,
		TTL:             60,
	})
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return true, nil
	case resp.StatusCode >= 400:
		return false, fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return false, nil
}
