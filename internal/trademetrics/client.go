// Package trademetrics is the boundary to the external trade API that serves
// live revenue figures for the current day. Historical days come from the
// database; today's number must always be fetched fresh from here.
package trademetrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tradepulse/huddle-backend/internal/config"
	"github.com/tradepulse/huddle-backend/internal/domain"
	"golang.org/x/oauth2/clientcredentials"
)

// Source is what the pacing service depends on. The client implements it;
// tests substitute fakes.
type Source interface {
	TodayMetrics(ctx context.Context, date time.Time) (*domain.TodayMetrics, error)
}

// Client calls the trade API using a client-credentials token that is cached
// and refreshed by the oauth2 transport.
type Client struct {
	cfg        config.TradeAPIConfig
	httpClient *http.Client
}

func NewClient(cfg config.TradeAPIConfig) *Client {
	creds := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.AuthURL,
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := creds.Client(context.Background())
	httpClient.Timeout = timeout

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
	}
}

// TodayMetrics fetches the live revenue summary for a date, split by trade.
func (c *Client) TodayMetrics(ctx context.Context, date time.Time) (*domain.TodayMetrics, error) {
	url := fmt.Sprintf("%s/revenue/v2/tenant/%s/daily-summary?date=%s",
		c.cfg.BaseURL, c.cfg.TenantID, date.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("trade api: build request: %w", err)
	}
	req.Header.Set("ST-App-Key", c.cfg.AppKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trade api: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("trade api: unexpected status %d: %s", resp.StatusCode, body)
	}

	var raw rawDailySummary
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("trade api: decode response: %w", err)
	}

	metrics, err := mapDailySummary(raw, date)
	if err != nil {
		return nil, fmt.Errorf("trade api: %w", err)
	}

	return metrics, nil
}
