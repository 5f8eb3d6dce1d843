package client

import (
	"context"
	"io"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/pkg/errors"
	"yardwatch/internal/model"
)

var ErrPushRejected = errors.New("push endpoint rejected the message")

// WebPushSend wakes the subscription's push endpoint with payload, signed
// with this deployment's VAPID key pair. The payload is opaque to the push
// service; the browser fetches the rich notification content afterwards.
func (c Client) WebPushSend(ctx context.Context, sub model.PushSubscription, payload []byte) error {
	pushSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Auth,
			P256dh: sub.P256dh,
		},
	}
	resp, err := webpush.SendNotificationWithContext(ctx, payload, pushSub, &webpush.Options{
		HTTPClient:      c.Client,
		Subscriber:      c.PushContact,
		VAPIDPublicKey:  c.VapidPublic,
		VAPIDPrivateKey: c.VapidSecret,
		TTL:             3600,
	})
	if err != nil {
		return errors.Wrapf(err, "error sending web push to endpoint: %s", sub.Endpoint)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.Logger.Errorf("WebPushSend: Error closing response body, endpoint: %s, err: %v", sub.Endpoint, err)
		}
	}()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10*1024))

	// 4xx means the subscription is gone or the message was refused.
	if resp.StatusCode >= http.StatusBadRequest {
		return errors.Wrapf(ErrPushRejected, "endpoint: %s, status: %s", sub.Endpoint, resp.Status)
	}
	return nil
}

// GenerateVAPIDKeys returns a fresh VAPID key pair, base64url-encoded.
func GenerateVAPIDKeys() (privateKey string, publicKey string, err error) {
	return webpush.GenerateVAPIDKeys()
}
