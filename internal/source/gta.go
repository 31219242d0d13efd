package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/global-trade-alert/ms-teams-push/internal/config"
	"github.com/global-trade-alert/ms-teams-push/internal/metrics"
	"github.com/global-trade-alert/ms-teams-push/internal/model"
	"github.com/global-trade-alert/ms-teams-push/internal/util"
)

const (
	gtaDataPath = "/api/v1/data/"

	// Fixed query: the single latest intervention implemented by the USA.
	queryLimit       = 1
	queryOffset      = 0
	queryImplementer = 840
)

type gtaRequest struct {
	Limit       int            `json:"limit"`
	Offset      int            `json:"offset"`
	RequestData gtaRequestData `json:"request_data"`
}

type gtaRequestData struct {
	Implementer []int `json:"implementer"`
}

type GTASource struct {
	cfg     config.GTAConfig
	client  *http.Client
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewGTASource(cfg config.GTAConfig, log zerolog.Logger, m *metrics.Metrics) *GTASource {
	return &GTASource{
		cfg:     cfg,
		client:  util.NewHTTPClient(cfg.HTTP.Timeout, 15*time.Second),
		log:     log,
		metrics: m,
	}
}

func (g *GTASource) Name() string { return "gta" }

// Fetch posts the fixed query and returns the decoded records. A non-200
// answer is logged and reported as an empty result with a nil error; only
// transport and decode failures return an error wrapping ErrFetch.
func (g *GTASource) Fetch(ctx context.Context) ([]model.Intervention, error) {
	base := strings.TrimRight(g.cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.globaltradealert.org"
	}
	endpoint := base + gtaDataPath

	raw, err := json.Marshal(gtaRequest{
		Limit:       queryLimit,
		Offset:      queryOffset,
		RequestData: gtaRequestData{Implementer: []int{queryImplementer}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal body: %v", ErrFetch, err)
	}
	g.log.Debug().RawJSON("body", raw).Str("endpoint", endpoint).Msg("gta request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: new request: %v", ErrFetch, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "APIKey "+strings.TrimSpace(g.cfg.APIKey))
	if ua := g.cfg.HTTP.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.metrics.ObserveFetch(metrics.StatusTransportError, 0)
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.metrics.ObserveFetch(metrics.StatusHTTPError, 0)
		g.log.Error().
			Int("status", resp.StatusCode).
			Str("body", util.ReadSnippet(resp.Body)).
			Msg("Error retrieving interventions")
		return []model.Intervention{}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		g.metrics.ObserveFetch(metrics.StatusTransportError, 0)
		return nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	out, err := parseInterventions(body)
	if err != nil {
		g.metrics.ObserveFetch(metrics.StatusError, 0)
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	g.metrics.ObserveFetch(metrics.StatusOK, len(out))
	g.log.Debug().Int("status", resp.StatusCode).Int("records", len(out)).Msg("gta response")
	return out, nil
}

// parseInterventions accepts either a bare JSON array of records or an object
// carrying them under "results". Elements that are not objects are skipped.
func parseInterventions(body []byte) ([]model.Intervention, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []model.Intervention{}, nil
	}

	var items []any
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
	case '{':
		var obj struct {
			Count   int   `json:"count"`
			Results []any `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		items = obj.Results
	default:
		return nil, fmt.Errorf("unrecognized response shape (len=%d)", len(trimmed))
	}

	out := make([]model.Intervention, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, model.Intervention(m))
		}
	}
	return out, nil
}
