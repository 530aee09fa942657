package push

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// Message is one push notification.
type Message struct {
	Title string
	Body  string
	Link  string
}

// Notifier delivers push messages to device tokens. It returns the tokens the
// push service reported as no longer registered.
type Notifier interface {
	Send(ctx context.Context, tokens []string, msg Message) (stale []string, err error)
}

// Nop drops every message. It is used when FCM is not configured.
type Nop struct{}

func (Nop) Send(context.Context, []string, Message) ([]string, error) { return nil, nil }

type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCM sends messages through Firebase Cloud Messaging one token at a time.
type FCM struct {
	client sender
	log    zerolog.Logger
}

// NewFCM initializes the messaging client from a service account JSON, given
// raw or base64 encoded.
func NewFCM(ctx context.Context, serviceAccount string, log zerolog.Logger) (*FCM, error) {
	creds := []byte(strings.TrimSpace(serviceAccount))
	if len(creds) == 0 {
		return nil, fmt.Errorf("FCM_SERVICE_ACCOUNT_JSON is not set")
	}
	if creds[0] != '{' {
		decoded, err := base64.StdEncoding.DecodeString(string(creds))
		if err != nil {
			return nil, fmt.Errorf("decode base64 firebase credentials: %w", err)
		}
		creds = decoded
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}
	return &FCM{client: client, log: log.With().Str("component", "push").Logger()}, nil
}

func (f *FCM) Send(ctx context.Context, tokens []string, msg Message) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	data := map[string]string{}
	if msg.Link != "" {
		data["link"] = msg.Link
	}

	var (
		stale              []string
		success, failures int
		lastErr            error
	)
	for _, token := range tokens {
		_, err := f.client.Send(ctx, &messaging.Message{
			Token:        token,
			Notification: &messaging.Notification{Title: msg.Title, Body: msg.Body},
			Data:         data,
			Android: &messaging.AndroidConfig{
				Priority:     "high",
				Notification: &messaging.AndroidNotification{Sound: "default"},
			},
			Webpush: &messaging.WebpushConfig{
				FCMOptions: &messaging.WebpushFCMOptions{Link: msg.Link},
			},
		})
		if err != nil {
			failures++
			lastErr = err
			if messaging.IsUnregistered(err) {
				stale = append(stale, token)
			}
			continue
		}
		success++
	}

	f.log.Debug().Int("sent", success).Int("failed", failures).Msg("push delivered")
	if success == 0 && failures > 0 && len(stale) < failures {
		return stale, fmt.Errorf("all push notifications failed: %w", lastErr)
	}
	return stale, nil
}
