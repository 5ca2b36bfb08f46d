package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/arnold/goalfence-api/internal/storage"
)

// sender is the part of *messaging.Client we use.
type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushService delivers notifications to the registered device through
// Firebase Cloud Messaging.
type PushService struct {
	client sender
	repo   *storage.Repository
	logger *zap.Logger
}

// NewPushService initializes FCM. Without a service account, or when
// Firebase cannot be initialized, push stays disabled and NotifyNow only logs.
func NewPushService(ctx context.Context, serviceAccountPath string, repo *storage.Repository, logger *zap.Logger) *PushService {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &PushService{repo: repo, logger: logger}

	if serviceAccountPath == "" {
		logger.Info("FCM: No service account configured, push notifications disabled")
		return p
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		logger.Warn("FCM: Failed to initialize Firebase app", zap.Error(err))
		return p
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		logger.Warn("FCM: Failed to get messaging client", zap.Error(err))
		return p
	}

	p.client = client
	logger.Info("FCM: Push notifications enabled")
	return p
}

func (p *PushService) Enabled() bool {
	return p.client != nil
}

// NotifyNow sends title/body to the device token on file. It is a no-op when
// push is disabled or no token has been registered yet.
func (p *PushService) NotifyNow(ctx context.Context, title, body string) error {
	if p.client == nil {
		p.logger.Debug("FCM: push disabled, notification not sent", zap.String("title", title))
		return nil
	}

	token, err := p.repo.DeviceToken(ctx)
	if err != nil {
		return fmt.Errorf("load device token: %w", err)
	}
	if token == "" {
		p.logger.Debug("FCM: no device token registered", zap.String("title", title))
		return nil
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{"source": "geofence"},
	}

	if _, err := p.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}
