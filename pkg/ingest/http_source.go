package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/model"
)

// DefaultUpstreamTimeout leaves the data service enough room for slow
// FastF1 session loads.
const DefaultUpstreamTimeout = 120 * time.Second

type httpSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource returns a ChunkSource reading chunks from the data
// service's telemetry endpoint.
func NewHTTPSource(baseURL string, timeout time.Duration) ChunkSource {
	if timeout <= 0 {
		timeout = DefaultUpstreamTimeout
	}
	return &httpSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

//nolint:whitespace // editor/linter issue
func (h *httpSource) Fetch(ctx context.Context, year int, race string, chunk int) (
	*model.ChunkResponse, error,
) {
	reqURL := fmt.Sprintf("%s/api/race/%d/%s/telemetry/%d",
		h.baseURL, year, url.PathEscape(race), chunk)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach data service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("data service returned %s", resp.Status)
	}
	var ret model.ChunkResponse
	if err := json.NewDecoder(resp.Body).Decode(&ret); err != nil {
		return nil, fmt.Errorf("decoding chunk response: %w", err)
	}
	return &ret, nil
}
