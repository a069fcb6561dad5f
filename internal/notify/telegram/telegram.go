// Package telegram delivers draw notifications to a Telegram chat via the
// Bot API.
package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.telegram.org"

// Config identifies the bot and target chat.
type Config struct {
	BotToken string
	ChatID   string
	// BaseURL overrides the Bot API host, primarily for testing.
	BaseURL string
	Timeout time.Duration
}

// Notifier implements draw.Notifier against the Telegram Bot API.
type Notifier struct {
	cfg    Config
	client *resty.Client
	logger *zap.Logger
}

// New builds a Notifier. Token and chat ID are required.
func New(cfg Config, logger *zap.Logger) (*Notifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram bot token and chat id are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)
	return &Notifier{cfg: cfg, client: client, logger: logger}, nil
}

// Send posts the message to the configured chat. Link previews are
// disabled since messages may quote the source URL.
func (n *Notifier) Send(ctx context.Context, text string) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"chat_id":                  n.cfg.ChatID,
			"text":                     text,
			"disable_web_page_preview": true,
		}).
		Post("/bot" + n.cfg.BotToken + "/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("telegram send: unexpected status %s", resp.Status())
	}
	n.logger.Info("telegram message sent", zap.Int("status", resp.StatusCode()))
	return nil
}
