package push

import (
	"context"
	"fmt"

	"photo-exchange-bot/internal/config"
	"photo-exchange-bot/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

type pusher interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// APNsNotifier alerts the owner's device when a visitor expresses interest
type APNsNotifier struct {
	client      pusher
	topic       string
	deviceToken string
}

// NewAPNsNotifier loads the push certificate and picks the APNs environment
func NewAPNsNotifier(cfg config.PushConfig) (*APNsNotifier, error) {
	cert, err := certificate.FromP12File(cfg.CertPath, cfg.CertPass)
	if err != nil {
		return nil, fmt.Errorf("failed to load push certificate: %w", err)
	}

	client := apns2.NewClient(cert).Development()
	if cfg.Production {
		client = client.Production()
	}

	return &APNsNotifier{
		client:      client,
		topic:       cfg.Topic,
		deviceToken: cfg.DeviceToken,
	}, nil
}

// NotifyInterest sends one alert per interest record
func (n *APNsNotifier) NotifyInterest(ctx context.Context, rec *models.InterestRecord) error {
	notification := &apns2.Notification{
		DeviceToken: n.deviceToken,
		Topic:       n.topic,
		Payload: payload.NewPayload().
			AlertTitle("New interest").
			AlertBody(fmt.Sprintf("@%s wants to meet you", rec.Username)).
			Sound("default").
			Custom("visitor_id", rec.VisitorID),
	}

	res, err := n.client.PushWithContext(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %d %s", res.StatusCode, res.Reason)
	}

	log.Info().Int64("visitor_id", rec.VisitorID).Str("apns_id", res.ApnsID).Msg("Interest push sent")
	return nil
}
