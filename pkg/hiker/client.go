// Package hiker implements the client for the self-hosted search API that
// backs account and keyword searches: posts by keyword, medias by user id
// and profile lookups, all returning the loosely-typed payload shapes
// handled by pkg/normalize.
package hiker

import (
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
	"igviral/pkg/models"
	"igviral/pkg/normalize"
	"igviral/pkg/ratelimit"
	"igviral/pkg/retry"
)

// Client talks to the self-hosted search API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	headers     map[string]string
	limiter     ratelimit.Limiter
	retryConfig *config.RetryConfig
	logger      logger.Logger
}

// SearchPage is one normalized result page plus its pagination cursor
type SearchPage struct {
	Posts      []models.Post
	NextCursor string
}

// NewClient creates a new search API client
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Upstream.Timeout,
		},
		baseURL: strings.TrimSuffix(cfg.Upstream.HikerURL, "/"),
		headers: map[string]string{
			"Accept":       "application/json",
			"x-access-key": cfg.Upstream.HikerKey,
		},
		limiter:     ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute),
		retryConfig: &cfg.Retry,
		logger:      log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetAccessKey swaps the API access key, e.g. after the operator re-enters
// credentials following a challenge.
func (c *Client) SetAccessKey(key string) {
	c.headers["x-access-key"] = key
}

// PostsByKeyword fetches one page of posts for a keyword search. The keyword
// is lowercased before the request; pageID may be empty for the first page.
func (c *Client) PostsByKeyword(ctx context.Context, keyword, pageID string) (*SearchPage, error) {
	endpoint := fmt.Sprintf("%s/search/keyword/%s/", c.baseURL, url.PathEscape(strings.ToLower(keyword)))
	if pageID != "" {
		endpoint += "?page_id=" + url.QueryEscape(pageID)
	}

	body, err := c.getBody(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	page := &SearchPage{
		Posts:      normalize.HashtagTop(body),
		NextCursor: normalize.NextPageID(body),
	}

	c.logger.DebugWithFields("keyword page fetched", map[string]interface{}{
		"keyword": keyword,
		"page_id": pageID,
		"posts":   len(page.Posts),
	})

	return page, nil
}

// MediasByUserID fetches one page of a user's medias by numeric user id
func (c *Client) MediasByUserID(ctx context.Context, userID, pageID string) (*SearchPage, error) {
	endpoint := fmt.Sprintf("%s/posts/%s/", c.baseURL, url.PathEscape(userID))
	if pageID != "" {
		endpoint += "?page_id=" + url.QueryEscape(pageID)
	}

	body, err := c.getBody(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	page := &SearchPage{
		Posts:      normalize.UserMedias(body),
		NextCursor: normalize.NextPageID(body),
	}

	c.logger.DebugWithFields("user medias page fetched", map[string]interface{}{
		"user_id": userID,
		"page_id": pageID,
		"posts":   len(page.Posts),
	})

	return page, nil
}

// ProfileByUsername fetches and normalizes a profile lookup
func (c *Client) ProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	endpoint := fmt.Sprintf("%s/profile/%s", c.baseURL, url.PathEscape(username))

	body, err := c.getBody(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	profile := normalize.Profile(body)
	return &profile, nil
}

// getBody performs a GET and returns the response body after status checks,
// retrying retryable failures per the configured policy.
func (c *Client) getBody(ctx context.Context, endpoint string) ([]byte, error) {
	if c.retryConfig != nil && c.retryConfig.Enabled {
		return retry.DoWithResult(func() ([]byte, error) {
			return c.getBodyOnce(ctx, endpoint)
		}, &retry.Config{
			MaxAttempts: c.retryConfig.MaxAttempts,
			Backoff:     retry.NewExponentialBackoff(c.retryConfig.BaseDelay, c.retryConfig.MaxDelay, 2.0),
			RetryIf:     retry.DefaultRetryIf,
			Context:     ctx,
			Logger:      c.logger,
		})
	}
	return c.getBodyOnce(ctx, endpoint)
}

func (c *Client) getBodyOnce(ctx context.Context, endpoint string) ([]byte, error) {
	c.limiter.Wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      endpoint,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      endpoint,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := checkResponseStatus(resp.StatusCode, body); err != nil {
		c.logger.WarnWithFields("upstream error response", map[string]interface{}{
			"url":    endpoint,
			"status": resp.StatusCode,
		})
		return nil, err
	}

	return body, nil
}

// upstreamDetail extracts the detail or message field an upstream error
// payload may carry.
func upstreamDetail(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Message
}

// checkResponseStatus maps an HTTP status plus upstream detail into the
// typed error taxonomy. A 4xx whose detail mentions a challenge becomes the
// distinct challenge error so callers can prompt for re-auth.
func checkResponseStatus(statusCode int, body []byte) error {
	if statusCode == http.StatusOK {
		return nil
	}

	detail := upstreamDetail(body)

	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		if strings.Contains(strings.ToLower(detail), "challenge") {
			return &errors.Error{
				Type:    errors.ErrorTypeChallenge,
				Message: detail,
				Code:    statusCode,
			}
		}
		msg := "authentication required"
		if detail != "" {
			msg = detail
		}
		return &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: msg,
			Code:    statusCode,
		}
	}

	switch {
	case statusCode == http.StatusNotFound:
		msg := "resource not found"
		if detail != "" {
			msg = detail
		}
		return &errors.Error{Type: errors.ErrorTypeNotFound, Message: msg, Code: statusCode}
	case statusCode == http.StatusTooManyRequests:
		return &errors.Error{Type: errors.ErrorTypeRateLimit, Message: "rate limit exceeded", Code: statusCode}
	case statusCode >= 500:
		msg := "server error"
		if detail != "" {
			msg = detail
		}
		return &errors.Error{Type: errors.ErrorTypeServerError, Message: msg, Code: statusCode}
	default:
		msg := fmt.Sprintf("unexpected status code: %d", statusCode)
		if detail != "" {
			msg = detail
		}
		return &errors.Error{Type: errors.ErrorTypeUnknown, Message: msg, Code: statusCode}
	}
}
