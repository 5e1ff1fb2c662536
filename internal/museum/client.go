package museum

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"museumreport/internal/config"
	apperrors "museumreport/internal/errors"
	"museumreport/pkg/contracts/domain"
)

const (
	// DefaultBaseURL is the public Met Museum collection API
	DefaultBaseURL = "https://collectionapi.metmuseum.org"

	objectsPath  = "/public/collection/v1/objects"
	maxBodyBytes = 32 << 20
)

// Config configures the collection API client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
	UserAgent string
	Headers   map[string]string
}

// ObjectList is the response of the object listing endpoint
type ObjectList struct {
	Total     int   `json:"total"`
	ObjectIDs []int `json:"objectIDs"`
}

// Client fetches collection objects over HTTP
type Client struct {
	baseURL   string
	userAgent string
	headers   map[string]string
	client    *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewClient creates a collection API client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultHTTPTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		headers:   cfg.Headers,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: tr,
		},
		logger: logger.With(slog.String("component", "museum_client")),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string { return c.baseURL }

// ListObjects returns the listing of every object id in the collection
func (c *Client) ListObjects(ctx context.Context) (*ObjectList, error) {
	var list ObjectList
	if err := c.getJSON(ctx, objectsPath, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListObjectIDs returns the ids of every object in the collection
func (c *Client) ListObjectIDs(ctx context.Context) ([]int, error) {
	list, err := c.ListObjects(ctx)
	if err != nil {
		return nil, err
	}
	return list.ObjectIDs, nil
}

// GetObject returns the full record of one object, field order preserved
func (c *Client) GetObject(ctx context.Context, id int) (*domain.Record, error) {
	record := domain.NewRecord()
	if err := c.getJSON(ctx, objectsPath+"/"+strconv.Itoa(id), record); err != nil {
		return nil, err
	}
	return record, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	u := c.baseURL + path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return apperrors.NewTimeoutError(u, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return apperrors.NewConnectionError(u, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return classify(ctx, u, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("collection API request",
		slog.String("url", u),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NewNotFoundError(u)
	case resp.StatusCode/100 != 2:
		return apperrors.NewHTTPStatusError(u, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return classify(ctx, u, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.NewResponseError(u, fmt.Errorf("decode: %w", err))
	}
	return nil
}

// classify maps transport errors onto the fetch error kinds. Cancellation of
// the caller's context is returned as is so it is never retried.
func classify(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewTimeoutError(url, err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(url, err)
	}
	return apperrors.NewConnectionError(url, err)
}
