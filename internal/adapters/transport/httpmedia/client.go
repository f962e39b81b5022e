// Package httpmedia is the HTTP transport adapter: it fetches media
// content by reference, posts finished archive volumes to the delivery
// hub, and exposes the ingest endpoint that feeds the pipeline.
package httpmedia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/avrel/mediapack/internal/domain"
	"github.com/avrel/mediapack/internal/ports"
)

var (
	ErrNotFound     = errors.New("httpmedia: resource not found")
	ErrUnauthorized = errors.New("httpmedia: unauthorized")
	ErrServerError  = errors.New("httpmedia: server error")
)

// Options configures the transport client.
type Options struct {
	// MediaBaseURL is prepended to relative media references. Absolute
	// http(s) references are used as-is.
	MediaBaseURL string

	// MediaToken is sent as a bearer token on fetch requests.
	MediaToken string

	// DeliveryBaseURL is the hub that receives volumes and
	// unprocessed-item notices.
	DeliveryBaseURL string

	// DeliveryToken is sent as a bearer token on delivery requests.
	DeliveryToken string

	// RatePerSecond and RateBurst bound outgoing fetch requests. A zero
	// rate means unlimited.
	RatePerSecond float64
	RateBurst     int

	// RetryAttempts is the number of retries after the first try.
	// Default: 3
	RetryAttempts int

	// RetryBackoff is the initial backoff duration. Default: 1s
	RetryBackoff time.Duration

	// RetryMaxBackoff caps the exponential backoff. Default: 30s
	RetryMaxBackoff time.Duration
}

func (o *Options) applyDefaults() {
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = time.Second
	}
	if o.RetryMaxBackoff <= 0 {
		o.RetryMaxBackoff = 30 * time.Second
	}
	if o.RateBurst <= 0 {
		o.RateBurst = 1
	}
}

// Client implements ports.Transport over HTTP.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	opts       Options
	logger     *slog.Logger
}

var _ ports.Transport = (*Client)(nil)

func NewClient(httpClient *http.Client, opts Options, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts.applyDefaults()

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}

	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, opts.RateBurst),
		opts:       opts,
		logger:     logger,
	}
}

// Fetch streams the content behind a media reference. Transport errors
// and 5xx responses are retried with jittered exponential backoff; 4xx
// responses are returned immediately.
func (c *Client) Fetch(ctx context.Context, ref domain.MediaRef) (io.ReadCloser, error) {
	target, err := c.resolveRef(ref)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("create fetch request: %w", err)
		}
		c.authorize(req, c.opts.MediaToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Debug("fetch attempt failed", "ref", string(ref), "attempt", attempt+1, "error", err)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: %s", ErrServerError, resp.Status)
			c.logger.Debug("fetch attempt failed", "ref", string(ref), "attempt", attempt+1, "error", lastErr)
			continue
		}
		if err := checkStatus(resp.StatusCode); err != nil {
			resp.Body.Close()
			return nil, err
		}
		return resp.Body, nil
	}

	return nil, fmt.Errorf("fetch %s after %d attempts: %w", ref, c.opts.RetryAttempts+1, lastErr)
}

// Deliver posts one archive volume to the hub as a multipart upload. No
// retries: a failed volume is handled by the caller's error policy.
func (c *Client) Deliver(ctx context.Context, dest domain.Destination, volume domain.ArchiveVolume) error {
	file, err := os.Open(volume.Path)
	if err != nil {
		return fmt.Errorf("open volume: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := map[string]string{
		"destination": strconv.FormatInt(int64(dest), 10),
		"caption":     volume.Caption(),
		"index":       strconv.Itoa(volume.Index),
		"total":       strconv.Itoa(volume.Total),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("write form field: %w", err)
		}
	}
	part, err := writer.CreateFormFile("volume", volume.Name)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("read volume: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}

	target, err := url.JoinPath(c.opts.DeliveryBaseURL, "v1", "volumes")
	if err != nil {
		return fmt.Errorf("resolve delivery url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &body)
	if err != nil {
		return fmt.Errorf("create delivery request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req, c.opts.DeliveryToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post volume: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp.StatusCode); err != nil {
		return fmt.Errorf("post volume %s: %w", volume.Name, err)
	}
	return nil
}

// NotifyUnprocessed tells the hub that one item could not be archived.
func (c *Client) NotifyUnprocessed(ctx context.Context, dest domain.Destination, ref domain.MediaRef, caption string) error {
	payload, err := json.Marshal(map[string]any{
		"destination": int64(dest),
		"ref":         string(ref),
		"caption":     caption,
	})
	if err != nil {
		return fmt.Errorf("encode notice: %w", err)
	}

	target, err := url.JoinPath(c.opts.DeliveryBaseURL, "v1", "unprocessed")
	if err != nil {
		return fmt.Errorf("resolve notice url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create notice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, c.opts.DeliveryToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post notice: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp.StatusCode); err != nil {
		return fmt.Errorf("post notice for %s: %w", ref, err)
	}
	return nil
}

func (c *Client) resolveRef(ref domain.MediaRef) (string, error) {
	raw := string(ref)
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw, nil
	}
	if c.opts.MediaBaseURL == "" {
		return "", fmt.Errorf("relative media reference %q without media base url", raw)
	}
	target, err := url.JoinPath(c.opts.MediaBaseURL, raw)
	if err != nil {
		return "", fmt.Errorf("resolve media reference: %w", err)
	}
	return target, nil
}

func (c *Client) authorize(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) backoff(ctx context.Context, attempt int) error {
	backoff := c.opts.RetryBackoff * time.Duration(1<<uint(attempt-1))
	if backoff > c.opts.RetryMaxBackoff {
		backoff = c.opts.RetryMaxBackoff
	}

	// Jitter: 0.5 to 1.5 of the nominal backoff.
	jitter := time.Duration(float64(backoff) * (0.5 + rand.Float64()))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(jitter):
		return nil
	}
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrUnauthorized
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrServerError, code)
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}
