package server

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ekjyotshinh/f1-replay-engine-go/log"
)

// upstreamProxy forwards requests to the python data service and
// streams the JSON bodies back, keeping status and Cache-Control.
type upstreamProxy struct {
	baseURL string
	client  *http.Client
	admin   *http.Client
}

func newProxy(baseURL string, timeout time.Duration) *upstreamProxy {
	return &upstreamProxy{
		baseURL: baseURL,
		// FastF1 session loads can take a while on cold cache
		client: &http.Client{Timeout: timeout},
		admin:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *upstreamProxy) passthrough(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p.forward(c, p.baseURL+path)
	}
}

// get builds the target URL from path-escaped params and forwards.
func (p *upstreamProxy) get(c *gin.Context, format string, params ...string) {
	escaped := make([]any, len(params))
	for i, param := range params {
		escaped[i] = url.PathEscape(param)
	}
	p.forward(c, p.baseURL+fmt.Sprintf(format, escaped...))
}

func (p *upstreamProxy) forward(c *gin.Context, targetURL string) {
	req, err := http.NewRequestWithContext(
		c.Request.Context(), http.MethodGet, targetURL, http.NoBody)
	if err != nil {
		c.JSON(http.StatusInternalServerError,
			gin.H{"error": fmt.Sprintf("Failed to create request: %v", err)})
		return
	}
	resp, err := p.client.Do(req)
	if err != nil {
		log.Error("data service unreachable",
			log.String("url", targetURL), log.ErrorField(err))
		c.JSON(http.StatusInternalServerError,
			gin.H{"error": fmt.Sprintf("Failed to reach data service: %v", err)})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.JSON(resp.StatusCode, gin.H{"error": "Data service returned error"})
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError,
			gin.H{"error": "Failed to read response body"})
		return
	}

	// pass through caching hints from the data service
	if cacheControl := resp.Header.Get("Cache-Control"); cacheControl != "" {
		c.Header("Cache-Control", cacheControl)
	}
	c.Data(resp.StatusCode, "application/json", body)
}

func (p *upstreamProxy) clearCache(c *gin.Context) {
	targetURL := p.baseURL + "/api/clear-cache"
	req, err := http.NewRequestWithContext(
		c.Request.Context(), http.MethodPost, targetURL, http.NoBody)
	if err != nil {
		c.JSON(http.StatusInternalServerError,
			gin.H{"error": fmt.Sprintf("Failed to create request: %v", err)})
		return
	}
	resp, err := p.admin.Do(req)
	if err != nil {
		log.Error("data service unreachable",
			log.String("url", targetURL), log.ErrorField(err))
		c.JSON(http.StatusInternalServerError,
			gin.H{"error": fmt.Sprintf("Failed to reach data service: %v", err)})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError,
			gin.H{"error": "Failed to read response body"})
		return
	}
	c.Data(resp.StatusCode, "application/json", body)
}
