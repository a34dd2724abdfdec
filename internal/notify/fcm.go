package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FirebaseSender delivers notifications through Firebase Cloud Messaging.
type FirebaseSender struct {
	client *messaging.Client
}

// NewFirebaseSender initializes an FCM client from a service-account
// credential, accepted raw or base64-encoded.
func NewFirebaseSender(ctx context.Context, credentials string) (*FirebaseSender, error) {
	raw := strings.TrimSpace(credentials)
	if !strings.HasPrefix(raw, "{") {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("firebase credentials are neither JSON nor base64: %w", err)
		}
		raw = string(decoded)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init fcm client: %w", err)
	}
	return &FirebaseSender{client: client}, nil
}

// SendMulticast pushes one notification to up to 500 tokens and reports the
// tokens FCM says are no longer registered.
func (f *FirebaseSender) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	res, err := f.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	})
	if err != nil {
		return nil, err
	}

	var invalid []string
	for i, r := range res.Responses {
		if r.Error != nil && messaging.IsRegistrationTokenNotRegistered(r.Error) {
			invalid = append(invalid, tokens[i])
		}
	}
	return invalid, nil
}
