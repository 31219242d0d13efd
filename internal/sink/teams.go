package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/global-trade-alert/ms-teams-push/internal/card"
	"github.com/global-trade-alert/ms-teams-push/internal/config"
	"github.com/global-trade-alert/ms-teams-push/internal/util"
)

type teamsSink struct {
	cfg    config.TeamsConfig
	client *http.Client
}

func NewTeams(cfg config.TeamsConfig) Sink {
	return &teamsSink{cfg: cfg, client: util.NewHTTPClient(cfg.HTTP.Timeout, 10*time.Second)}
}

func (s *teamsSink) Name() string { return "teams" }

// Send posts msg to the incoming webhook. Any non-2xx answer or transport
// failure yields a nil Delivery and an error wrapping ErrDelivery.
func (s *teamsSink) Send(ctx context.Context, msg card.Message) (*Delivery, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal: %v", ErrDelivery, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: new request: %v", ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if ua := s.cfg.HTTP.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	defer resp.Body.Close()

	text := util.ReadSnippet(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: teams webhook %s: %s", ErrDelivery, resp.Status, text)
	}
	return &Delivery{StatusCode: resp.StatusCode, Body: text}, nil
}
