package notification

import (
	"context"

	"suraksha/pkg/logger"

	"go.uber.org/zap"
)

type PushConfig struct {
	AppKey       string
	MasterSecret string
}

// PushClient delivers to the user's companion devices (a contact watching a
// shared session, or the user's own second device).
type PushClient interface {
	Push(ctx context.Context, alias []string, title, body string, extras map[string]any) error
}

type Push struct {
	cfg PushConfig
	cli PushClient
}

func NewPush(cfg PushConfig, cli PushClient) *Push { return &Push{cfg: cfg, cli: cli} }

// SessionActivated pushes the live-session link to the given device aliases.
func (p *Push) SessionActivated(ctx context.Context, aliases []string, sessionID, mapsURL string) error {
	if p.cli == nil || len(aliases) == 0 {
		return nil
	}
	return p.cli.Push(ctx, aliases, "Emergency alert", "An emergency session is active", map[string]any{
		"session_id": sessionID,
		"maps_url":   mapsURL,
	})
}

// LogPushClient is the development fallback.
type LogPushClient struct{}

func (LogPushClient) Push(ctx context.Context, alias []string, title, body string, extras map[string]any) error {
	logger.Info("push alert (log sink)",
		zap.Strings("alias", alias),
		zap.String("title", title),
		zap.Any("extras", extras),
	)
	return nil
}
