package sectormap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"SectorPulse/internal/domain/models"
	drepo "SectorPulse/internal/domain/repository"
	xhttp "SectorPulse/pkg/http"
)

// Client fetches market snapshots from the sector map API. The snapshot
// endpoint and its siblings (market-state, momentum) share a base URL; each
// call carries its own timeout so a slow endpoint cannot stall the pass.
type Client struct {
	http        *xhttp.Client
	url         string
	key         string
	timeout     time.Duration
	sideTimeout time.Duration
}

// New creates a sector map client for the given sheets endpoint.
func New(url, key string, timeout, sideTimeout time.Duration) drepo.MarketData {
	return &Client{
		http:        xhttp.NewClient(xhttp.WithTimeout(timeout)),
		url:         url,
		key:         key,
		timeout:     timeout,
		sideTimeout: sideTimeout,
	}
}

type snapshotEnvelope struct {
	Success      bool                       `json:"success"`
	Data         map[string]*models.Token   `json:"data"`
	Sectors      map[string]*models.Sector  `json:"sectors"`
	SectorTokens map[string][]string        `json:"sectorTokens"`
}

// Snapshot fetches one complete market observation. Any transport failure
// or a success=false envelope is a fetch failure.
func (c *Client) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var env snapshotEnvelope
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.url,
		QueryParams: c.keyParam(),
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("snapshot endpoint reported failure")
	}

	return &models.Snapshot{
		Tokens:       env.Data,
		Sectors:      env.Sectors,
		SectorTokens: env.SectorTokens,
	}, nil
}

// MarketState fetches the coarse regime observation.
func (c *Client) MarketState(ctx context.Context) (*models.MarketState, error) {
	ctx, cancel := context.WithTimeout(ctx, c.sideTimeout)
	defer cancel()

	var state models.MarketState
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.sibling("market-state"),
		QueryParams: c.keyParam(),
	}, &state)
	if err != nil {
		return nil, fmt.Errorf("fetch market state: %w", err)
	}
	return &state, nil
}

// Momentum fetches the ranked momentum leaderboard.
func (c *Client) Momentum(ctx context.Context) (*models.Momentum, error) {
	ctx, cancel := context.WithTimeout(ctx, c.sideTimeout)
	defer cancel()

	var m models.Momentum
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.sibling("momentum"),
		QueryParams: c.keyParam(),
	}, &m)
	if err != nil {
		return nil, fmt.Errorf("fetch momentum: %w", err)
	}
	return &m, nil
}

func (c *Client) keyParam() map[string]string {
	if c.key == "" {
		return nil
	}
	return map[string]string{"key": c.key}
}

// sibling swaps the trailing /sheets path segment for another endpoint.
func (c *Client) sibling(endpoint string) string {
	return strings.Replace(c.url, "/sheets", "/"+endpoint, 1)
}
