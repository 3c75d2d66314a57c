package hiker

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"igviral/pkg/config"
	"igviral/pkg/errors"
	"igviral/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

func newMockHTTPClient(handler func(req *http.Request) (*http.Response, error)) *http.Client {
	return &http.Client{
		Transport: &mockRoundTripper{handler: handler},
		Timeout:   30 * time.Second,
	}
}

func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Upstream.HikerURL = "https://hiker.test"
	cfg.Upstream.HikerKey = "test-key"
	cfg.RateLimit.RequestsPerMinute = 10000
	cfg.Retry.Enabled = false
	return cfg
}

func newTestClient(t *testing.T, handler func(req *http.Request) (*http.Response, error)) *Client {
	t.Helper()
	client := NewClient(newTestConfig(), logger.NewTestLogger())
	client.httpClient = newMockHTTPClient(handler)
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient(newTestConfig(), logger.NewTestLogger())

	assert.NotNil(t, client)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, "https://hiker.test", client.baseURL)
	assert.Equal(t, "test-key", client.headers["x-access-key"])
}

func TestPostsByKeywordRequestShape(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return newResponse(http.StatusOK, `{"response":{"sections":[]},"next_page_id":"page2"}`), nil
	})

	page, err := client.PostsByKeyword(context.Background(), "SunSet", "abc def")
	require.NoError(t, err)
	require.NotNil(t, captured)

	// keywords are lowercased and path-escaped
	assert.Equal(t, "/search/keyword/sunset/", captured.URL.Path)
	assert.Equal(t, "abc def", captured.URL.Query().Get("page_id"))
	assert.Equal(t, "test-key", captured.Header.Get("x-access-key"))
	assert.Equal(t, "application/json", captured.Header.Get("Accept"))

	assert.Empty(t, page.Posts)
	assert.Equal(t, "page2", page.NextCursor)
}

func TestPostsByKeywordFirstPageOmitsCursor(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return newResponse(http.StatusOK, `{}`), nil
	})

	_, err := client.PostsByKeyword(context.Background(), "sunset", "")
	require.NoError(t, err)
	assert.Empty(t, captured.URL.RawQuery)
}

func TestPostsByKeywordNormalizesSections(t *testing.T) {
	body := `{
		"response": {
			"sections": [
				{"layout_content": {"one_by_two_item": {"clips": {"items": [
					{"media": {"pk": 1, "code": "clip1", "media_type": 2, "like_count": 10}}
				]}}}},
				{"layout_content": {"medias": [
					{"media": {"pk": 2, "code": "img1", "media_type": 1, "like_count": 20}}
				]}}
			]
		},
		"next_page_id": "n1"
	}`
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusOK, body), nil
	})

	page, err := client.PostsByKeyword(context.Background(), "sunset", "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "clip1", page.Posts[0].Code)
	assert.Equal(t, "img1", page.Posts[1].Code)
	assert.Equal(t, int64(20), page.Posts[1].LikeCount)
	assert.Equal(t, "n1", page.NextCursor)
}

func TestMediasByUserID(t *testing.T) {
	var captured *http.Request
	body := `{"response":{"items":[{"pk":1,"code":"a"},{"pk":2,"code":"b"}]},"next_page_id":""}`
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return newResponse(http.StatusOK, body), nil
	})

	page, err := client.MediasByUserID(context.Background(), "12345", "cur")
	require.NoError(t, err)

	assert.Equal(t, "/posts/12345/", captured.URL.Path)
	assert.Equal(t, "cur", captured.URL.Query().Get("page_id"))
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "a", page.Posts[0].Code)
	assert.Empty(t, page.NextCursor)
}

func TestProfileByUsername(t *testing.T) {
	var captured *http.Request
	body := `{"pk":99,"username":"chef","follower_count":1200,"profile_pic_url":"https://cdn/p.jpg"}`
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return newResponse(http.StatusOK, body), nil
	})

	profile, err := client.ProfileByUsername(context.Background(), "chef")
	require.NoError(t, err)

	assert.Equal(t, "/profile/chef", captured.URL.Path)
	assert.Equal(t, "99", profile.PK)
	assert.Equal(t, "chef", profile.Username)
	assert.Equal(t, int64(1200), profile.FollowerCount)
	assert.Equal(t, "https://cdn/p.jpg", profile.ProfilePicURLHD)
}

func TestChallengeResponseMapping(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusForbidden, `{"detail":"challenge_required: please verify your account"}`), nil
	})

	_, err := client.PostsByKeyword(context.Background(), "sunset", "")
	require.Error(t, err)
	assert.True(t, errors.IsChallenge(err))

	var apiErr *errors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeChallenge, apiErr.Type)
	assert.Equal(t, http.StatusForbidden, apiErr.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantType   errors.ErrorType
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"bad key"}`, errors.ErrorTypeAuth},
		{"forbidden without challenge", http.StatusForbidden, `{}`, errors.ErrorTypeAuth},
		{"not found", http.StatusNotFound, `{}`, errors.ErrorTypeNotFound},
		{"rate limited", http.StatusTooManyRequests, `{}`, errors.ErrorTypeRateLimit},
		{"server error", http.StatusInternalServerError, `{}`, errors.ErrorTypeServerError},
		{"teapot", http.StatusTeapot, `{}`, errors.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				return newResponse(tt.statusCode, tt.body), nil
			})

			_, err := client.PostsByKeyword(context.Background(), "sunset", "")
			require.Error(t, err)

			var apiErr *errors.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.statusCode, apiErr.Code)
		})
	}
}

func TestErrorDetailPreferred(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusNotFound, `{"detail":"user not found"}`), nil
	})

	_, err := client.ProfileByUsername(context.Background(), "ghost")
	require.Error(t, err)

	var apiErr *errors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "user not found", apiErr.Message)
}

func TestNetworkErrorMapping(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, io.ErrUnexpectedEOF
	})

	_, err := client.PostsByKeyword(context.Background(), "sunset", "")
	require.Error(t, err)

	var apiErr *errors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeNetwork, apiErr.Type)
}

func TestSetAccessKey(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return newResponse(http.StatusOK, `{}`), nil
	})

	client.SetAccessKey("rotated")
	_, err := client.PostsByKeyword(context.Background(), "sunset", "")
	require.NoError(t, err)
	assert.Equal(t, "rotated", captured.Header.Get("x-access-key"))
}
