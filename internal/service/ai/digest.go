package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	drepo "SectorPulse/internal/domain/repository"
	xhttp "SectorPulse/pkg/http"
	"SectorPulse/pkg/logger"
)

// Client asks the AI service for a pre-composed digest. Every failure mode
// (transport error, 503, success=false) is reported as "unavailable"; the
// digest scheduler then falls back to its computed summary.
type Client struct {
	http    *xhttp.Client
	url     string
	timeout time.Duration
	log     *logger.Logger
}

// New creates an AI digest composer for the given API base URL.
func New(url string, timeout time.Duration, log *logger.Logger) drepo.DigestComposer {
	return &Client{
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		url:     url,
		timeout: timeout,
		log:     log,
	}
}

type digestResponse struct {
	Success bool   `json:"success"`
	Digest  string `json:"digest"`
	Error   string `json:"error"`
}

// Compose fetches the digest for a cadence ("daily" or "weekly").
func (c *Client) Compose(ctx context.Context, cadence string) (string, bool) {
	endpoint := "daily-digest"
	if cadence == "weekly" {
		endpoint = "weekly-digest"
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp digestResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    fmt.Sprintf("%s/%s", c.url, endpoint),
		Body:   struct{}{},
	}, &resp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.Code == 503 {
			c.log.Info("ai digest service not available")
		} else {
			c.log.Warn("ai digest fetch failed", logger.Error(err))
		}
		return "", false
	}
	if !resp.Success || resp.Digest == "" {
		c.log.Warn("ai digest declined", logger.String("error", resp.Error))
		return "", false
	}
	return resp.Digest, true
}

// Disabled is a composer that always declines, leaving the scheduler on its
// computed fallback.
type Disabled struct{}

func (Disabled) Compose(context.Context, string) (string, bool) { return "", false }
