package purge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// MaxFilesPerRequest is Cloudflare's limit on URLs per purge request.
const MaxFilesPerRequest = 30

// ErrMissingSiteURL indicates URL purges were requested without a site base URL.
var ErrMissingSiteURL = errors.New("site base URL is required to purge URLs")

// APIError is a failure reported in a Cloudflare response body.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cloudflare API error %d (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

// CloudflareSettings configures a Cloudflare client.
type CloudflareSettings struct {
	// BaseURL is the API endpoint, e.g. https://api.cloudflare.com/client/v4
	BaseURL string

	ZoneID string

	// APIToken is preferred over the APIEmail/APIKey pair when set
	APIToken string
	APIEmail string
	APIKey   string

	// SiteURL is prefixed to canonical page URLs
	SiteURL string

	// BatchSize caps URLs per request (defaults to MaxFilesPerRequest)
	BatchSize int

	// Concurrency caps in-flight batch requests (defaults to 1)
	Concurrency int
}

// Cloudflare purges a Cloudflare zone.
type Cloudflare struct {
	settings   CloudflareSettings
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCloudflare creates a Cloudflare client. A nil httpClient uses
// http.DefaultClient and a nil logger discards output.
func NewCloudflare(settings CloudflareSettings, httpClient *http.Client, logger *zap.Logger) *Cloudflare {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.BatchSize < 1 || settings.BatchSize > MaxFilesPerRequest {
		settings.BatchSize = MaxFilesPerRequest
	}
	if settings.Concurrency < 1 {
		settings.Concurrency = 1
	}
	settings.BaseURL = strings.TrimRight(settings.BaseURL, "/")
	return &Cloudflare{
		settings:   settings,
		httpClient: httpClient,
		logger:     logger.Named("cloudflare"),
	}
}

type purgeRequest struct {
	PurgeEverything bool     `json:"purge_everything,omitempty"`
	Files           []string `json:"files,omitempty"`
}

type apiResponse struct {
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// PurgeAll purges everything in the zone.
func (c *Cloudflare) PurgeAll(ctx context.Context, reason string) error {
	c.logger.Info("purging everything", zap.String("zone", c.settings.ZoneID), zap.String("reason", reason))
	return c.send(ctx, purgeRequest{PurgeEverything: true})
}

// PurgeSingle purges one page.
func (c *Cloudflare) PurgeSingle(ctx context.Context, url string) error {
	return c.PurgeMany(ctx, []string{url})
}

// PurgeMany purges pages in batches of at most BatchSize URLs, sending up to
// Concurrency batches at once. The first failing batch cancels the rest.
func (c *Cloudflare) PurgeMany(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	files, err := c.absoluteURLs(urls)
	if err != nil {
		return err
	}

	batches := chunk(files, c.settings.BatchSize)
	c.logger.Info("purging urls",
		zap.String("zone", c.settings.ZoneID),
		zap.Int("urls", len(files)),
		zap.Int("batches", len(batches)),
	)

	p := pool.New().
		WithMaxGoroutines(c.settings.Concurrency).
		WithContext(ctx).
		WithCancelOnError()
	for i, batch := range batches {
		p.Go(func(ctx context.Context) error {
			if err := c.send(ctx, purgeRequest{Files: batch}); err != nil {
				return fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
			}
			c.logger.Debug("batch purged", zap.Int("batch", i+1), zap.Strings("files", batch))
			return nil
		})
	}
	return p.Wait()
}

func (c *Cloudflare) absoluteURLs(urls []string) ([]string, error) {
	site := strings.TrimRight(c.settings.SiteURL, "/")
	if site == "" {
		return nil, ErrMissingSiteURL
	}
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = site + "/" + strings.TrimLeft(u, "/")
	}
	return out, nil
}

func (c *Cloudflare) send(ctx context.Context, body purgeRequest) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal purge request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/zones/%s/purge_cache", c.settings.BaseURL, c.settings.ZoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create purge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.settings.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.settings.APIToken)
	} else {
		req.Header.Set("X-Auth-Email", c.settings.APIEmail)
		req.Header.Set("X-Auth-Key", c.settings.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send purge request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read purge response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		}
		return fmt.Errorf("failed to decode purge response: %w", err)
	}

	if !parsed.Success || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: "request was not successful"}
		if len(parsed.Errors) > 0 {
			apiErr.Code = parsed.Errors[0].Code
			apiErr.Message = parsed.Errors[0].Message
		}
		c.logger.Warn("purge rejected", zap.Int("status", resp.StatusCode), zap.Error(apiErr))
		return apiErr
	}
	return nil
}

func chunk(items []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
