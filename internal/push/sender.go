package push

import (
	"context"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"condo-portal/internal/models"
)

// Result classifies the outcome of a single device send.
type Result int

const (
	ResultOK Result = iota
	// ResultGone means the provider reported the registration permanently
	// dead (HTTP 410 or 404); it should be cleaned up, not retried.
	ResultGone
	ResultFailed
)

// Sender delivers one payload to one registered device.
type Sender interface {
	Send(ctx context.Context, sub models.PushSubscription, payload []byte) (Result, error)
}

// WebPushSender delivers payloads over the Web Push protocol with VAPID
// authentication.
type WebPushSender struct {
	keys       KeyPair
	subscriber string
	ttl        int
}

// NewWebPushSender constructs a WebPushSender. subscriber is the contact
// mailto: URI required by VAPID.
func NewWebPushSender(keys KeyPair, subscriber string, ttl int) *WebPushSender {
	return &WebPushSender{keys: keys, subscriber: subscriber, ttl: ttl}
}

// Send pushes a payload to a single registration.
func (s *WebPushSender) Send(ctx context.Context, sub models.PushSubscription, payload []byte) (Result, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.keys.Public,
		VAPIDPrivateKey: s.keys.Private,
		TTL:             s.ttl,
	})
	if err != nil {
		return ResultFailed, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return ResultGone, nil
	case resp.StatusCode >= 400:
		return ResultFailed, fmt.Errorf("push endpoint returned %d", resp.StatusCode)
	}
	return ResultOK, nil
}
