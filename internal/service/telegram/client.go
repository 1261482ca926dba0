package telegram

import (
	"context"
	"fmt"
	"time"

	drepo "SectorPulse/internal/domain/repository"
	"SectorPulse/internal/service/ratelimit"
	xhttp "SectorPulse/pkg/http"
	"SectorPulse/pkg/logger"
)

// Bot API ceiling per chat.
const (
	chatBurst     = 1.0
	chatPerSecond = 1.0
)

// apiBase is swapped for a local server in tests.
var apiBase = "https://api.telegram.org"

// Client delivers alert messages through the Telegram Bot API. Messages are
// HTML-formatted with link previews disabled; a 200 response is success.
type Client struct {
	http    *xhttp.Client
	token   string
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

// New creates a Telegram notifier.
func New(botToken string, log *logger.Logger) drepo.Notifier {
	return &Client{
		http:    xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		token:   botToken,
		limiter: ratelimit.New(),
		log:     log,
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers one message to one chat, pacing per-chat sends to the Bot
// API ceiling.
func (c *Client) Send(ctx context.Context, recipient, text string) error {
	if !c.limiter.Allow(recipient, chatBurst, chatPerSecond) {
		wait := c.limiter.Delay(recipient, chatBurst, chatPerSecond)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		c.limiter.Allow(recipient, chatBurst, chatPerSecond)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", apiBase, c.token)
	var resp sendMessageResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    url,
		Body: sendMessageRequest{
			ChatID:                recipient,
			Text:                  text,
			ParseMode:             "HTML",
			DisableWebPagePreview: true,
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("telegram send: %s", resp.Description)
	}

	c.log.Debug("telegram message sent", logger.String("chat", recipient))
	return nil
}
