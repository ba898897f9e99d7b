package notification

import (
	"context"
	"fmt"

	"suraksha/pkg/logger"

	"go.uber.org/zap"
)

type SMSConfig struct {
	AccessKey    string
	TemplateCode string
}

// SMSClient is the carrier-facing send interface, injectable so the real
// gateway SDK and the tests can both sit behind it.
type SMSClient interface {
	Send(ctx context.Context, phone, template string, params map[string]string) error
}

type SMS struct {
	cfg SMSConfig
	cli SMSClient
}

func NewSMS(cfg SMSConfig, cli SMSClient) *SMS {
	return &SMS{cfg: cfg, cli: cli}
}

// SendAlert notifies one emergency contact that a session went active. The
// maps link points at the activation coordinates when they are known.
func (s *SMS) SendAlert(ctx context.Context, phone, name, mapsURL string) error {
	if s.cli == nil {
		return fmt.Errorf("sms client not configured")
	}
	params := map[string]string{"name": name, "link": mapsURL}
	return s.cli.Send(ctx, phone, s.cfg.TemplateCode, params)
}

// LogSMSClient is the development fallback: alerts land in the log instead
// of a carrier gateway.
type LogSMSClient struct{}

func (LogSMSClient) Send(ctx context.Context, phone, template string, params map[string]string) error {
	logger.Info("sms alert (log sink)",
		zap.String("phone", phone),
		zap.String("template", template),
		zap.Any("params", params),
	)
	return nil
}
