package services

import (
	"fmt"

	appconfig "github.com/StiliyanIliev27/Memora/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// PushService sends APNs alerts to users who are not connected over
// WebSocket. Push is advisory: failures are logged and never
// propagated to the caller.
type PushService struct {
	client *apns2.Client
	topic  string
}

// NewPushService creates a push service. With no key file configured
// the service is a no-op.
func NewPushService(cfg appconfig.APNsConfig) (*PushService, error) {
	if cfg.KeyFile == "" {
		return &PushService{}, nil
	}

	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	}).Production()

	return &PushService{client: client, topic: cfg.Topic}, nil
}

// Enabled reports whether push delivery is configured.
func (s *PushService) Enabled() bool {
	return s.client != nil
}

// Notify sends an alert to a device token. Nil tokens and disabled
// service are silently ignored.
func (s *PushService) Notify(deviceToken *string, alert string) {
	if s.client == nil || deviceToken == nil || *deviceToken == "" {
		return
	}

	n := &apns2.Notification{
		DeviceToken: *deviceToken,
		Topic:       s.topic,
		Payload:     payload.NewPayload().Alert(alert).Sound("default"),
	}

	res, err := s.client.Push(n)
	if err != nil {
		log.Error().Err(err).Msg("Failed to send push notification")
		return
	}
	if !res.Sent() {
		log.Warn().Int("status", res.StatusCode).Str("reason", res.Reason).Msg("Push notification rejected")
	}
}
