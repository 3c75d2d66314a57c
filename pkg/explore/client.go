package explore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"igviral/pkg/config"
	"igviral/pkg/errors"
	"igviral/pkg/logger"
	"igviral/pkg/ratelimit"
	"igviral/pkg/retry"
)

// Client talks to the first-party explore endpoints and to the third-party
// scrape provider. Both ride the same base URL and API key header.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	headers     map[string]string
	limiter     ratelimit.Limiter
	retryConfig *retry.Config
	logger      logger.Logger
}

// NewClient builds an explore client from configuration
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Upstream.Timeout,
		},
		baseURL: strings.TrimRight(cfg.Upstream.BaseURL, "/"),
		headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": "igviral/1.0",
		},
		limiter: ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute),
		logger:  log,
	}

	if cfg.Upstream.ApifyKey != "" {
		c.headers["Apify-key"] = cfg.Upstream.ApifyKey
	}

	if cfg.Retry.Enabled {
		c.retryConfig = &retry.Config{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Backoff:     retry.NewExponentialBackoff(cfg.Retry.BaseDelay, cfg.Retry.MaxDelay, 2.0),
			Logger:      log,
		}
	}

	return c
}

// SetAPIKey replaces the provider key header
func (c *Client) SetAPIKey(key string) {
	c.headers["Apify-key"] = key
}

// Explore fetches the explore landing feed with its pills and topic sections
func (c *Client) Explore(ctx context.Context) (*ExploreFeed, error) {
	var feed ExploreFeed
	if err := c.getJSON(ctx, "/explore", nil, &feed); err != nil {
		return nil, err
	}
	if feed.Pills == nil {
		feed.Pills = []Pill{}
	}
	if feed.FitSections == nil {
		feed.FitSections = []FitSection{}
	}
	return &feed, nil
}

// ExploreTopic fetches the subtopic drill-down for one explore topic
func (c *Client) ExploreTopic(ctx context.Context, fitID string) (*FitSection, error) {
	if fitID == "" {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: "topic id is required",
		}
	}
	var section FitSection
	params := url.Values{"fit_id": {fitID}}
	if err := c.getJSON(ctx, "/explore/topic", params, &section); err != nil {
		return nil, err
	}
	return &section, nil
}

// Locations fetches location drill-down data. Both ids are optional: empty
// ids return the country list, a country id returns its cities.
func (c *Client) Locations(ctx context.Context, countryID, cityID string) (*Location, error) {
	params := url.Values{}
	if countryID != "" {
		params.Set("country_id", countryID)
	}
	if cityID != "" {
		params.Set("city_id", cityID)
	}
	var loc Location
	if err := c.getJSON(ctx, "/locations", params, &loc); err != nil {
		return nil, err
	}
	if loc.Posts == nil {
		loc.Posts = []LocationPost{}
	}
	return &loc, nil
}

// Search runs a third-party scrape for hashtags or profiles
func (c *Client) Search(ctx context.Context, filters SearchFilters) (*SearchResult, error) {
	if filters.Search == "" {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: "search term is required",
		}
	}

	var result SearchResult
	if err := c.postJSON(ctx, "/scrape/search", filters, &result); err != nil {
		return nil, err
	}
	if result.Hashtags == nil {
		result.Hashtags = []Hashtag{}
	}
	if result.Profiles == nil {
		result.Profiles = []ScrapedProfile{}
	}
	if result.Reels == nil {
		result.Reels = []ScrapedPost{}
	}
	return &result, nil
}

// AccountReels scrapes the latest reels for a set of account URLs
func (c *Client) AccountReels(ctx context.Context, usernames []string, limit int) ([]ScrapedPost, error) {
	if len(usernames) == 0 {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: "at least one username is required",
		}
	}

	urls := make([]string, 0, len(usernames))
	for _, u := range usernames {
		urls = append(urls, "https://www.instagram.com/"+strings.TrimPrefix(u, "@")+"/")
	}

	filters := SearchFilters{
		DirectURLs:   urls,
		ResultsType:  "posts",
		ResultsLimit: limit,
	}

	var result SearchResult
	if err := c.postJSON(ctx, "/scrape/reels", filters, &result); err != nil {
		return nil, err
	}
	if result.Reels == nil {
		return []ScrapedPost{}, nil
	}
	return result.Reels, nil
}

// ProxyImage fetches a remote image through the provider proxy and returns
// the raw bytes with their content type.
func (c *Client) ProxyImage(ctx context.Context, sourceURL string) ([]byte, string, error) {
	if sourceURL == "" {
		return nil, "", &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: "image url is required",
		}
	}

	params := url.Values{"url": {sourceURL}}
	endpoint := c.baseURL + "/proxy-image?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	c.applyHeaders(req)

	c.limiter.Wait()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("image fetch failed: %v", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read image body: %v", err),
		}
	}

	if err := checkStatus(resp.StatusCode, body); err != nil {
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return body, contentType, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	body, err := c.fetch(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return decodeJSON(body, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to encode request body: %v", err),
		}
	}

	body, err := c.fetch(ctx, http.MethodPost, c.baseURL+path, encoded)
	if err != nil {
		return err
	}
	return decodeJSON(body, out)
}

func (c *Client) fetch(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	if c.retryConfig == nil {
		return c.fetchOnce(ctx, method, endpoint, payload)
	}

	cfg := *c.retryConfig
	cfg.Context = ctx
	return retry.DoWithResult(func() ([]byte, error) {
		return c.fetchOnce(ctx, method, endpoint, payload)
	}, &cfg)
}

func (c *Client) fetchOnce(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	c.limiter.Wait()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	c.applyHeaders(req)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("request failed: %v", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
		}
	}

	if err := checkStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
}

func decodeJSON(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse response: %v", err),
		}
	}
	return nil
}

func upstreamDetail(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Message
}

func checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	detail := upstreamDetail(body)

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		if strings.Contains(strings.ToLower(detail), "challenge") {
			return &errors.Error{
				Type:    errors.ErrorTypeChallenge,
				Message: "account requires re-authentication",
				Code:    statusCode,
			}
		}
		return &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "authentication rejected by upstream",
			Code:    statusCode,
		}
	case statusCode == http.StatusNotFound:
		return &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    statusCode,
		}
	case statusCode == http.StatusTooManyRequests:
		return &errors.Error{
			Type:    errors.ErrorTypeRateLimit,
			Message: "upstream rate limit exceeded",
			Code:    statusCode,
		}
	case statusCode >= 500:
		return &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: "upstream server error",
			Code:    statusCode,
		}
	default:
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code %d", statusCode),
			Code:    statusCode,
		}
	}
}
