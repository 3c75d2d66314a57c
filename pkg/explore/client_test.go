package explore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"igviral/pkg/config"
	"igviral/pkg/errors"
	"igviral/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Upstream.BaseURL = server.URL
	cfg.Upstream.ApifyKey = "test-apify-key"
	cfg.RateLimit.RequestsPerMinute = 10000
	cfg.Retry.Enabled = false

	return NewClient(cfg, logger.NewTestLogger()), server
}

func TestExploreSendsAPIKey(t *testing.T) {
	var captured *http.Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Write([]byte(`{"pills":[{"name":"Food","fit_id":"f1"}],"fit_sections":[]}`))
	})

	feed, err := client.Explore(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/explore", captured.URL.Path)
	assert.Equal(t, "test-apify-key", captured.Header.Get("Apify-key"))
	require.Len(t, feed.Pills, 1)
	assert.Equal(t, "Food", feed.Pills[0].Name)
	assert.NotNil(t, feed.FitSections)
}

func TestExploreEmptyFeedHasNonNilSlices(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	feed, err := client.Explore(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, feed.Pills)
	assert.NotNil(t, feed.FitSections)
	assert.Empty(t, feed.Pills)
}

func TestExploreTopicRequiresID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.ExploreTopic(context.Background(), "")
	require.Error(t, err)

	var apiErr *errors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeParsing, apiErr.Type)
}

func TestExploreTopicPassesFitID(t *testing.T) {
	var captured *http.Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Write([]byte(`{"l1":{"name":"Travel","fit_id":"f2"},"subtopic":[]}`))
	})

	section, err := client.ExploreTopic(context.Background(), "f2")
	require.NoError(t, err)

	assert.Equal(t, "/explore/topic", captured.URL.Path)
	assert.Equal(t, "f2", captured.URL.Query().Get("fit_id"))
	assert.Equal(t, "Travel", section.L1.Name)
}

func TestLocationsQueryParams(t *testing.T) {
	var captured *http.Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Write([]byte(`{"name":"Lisbon","posts":[{"id":"p1","like_count":50}]}`))
	})

	loc, err := client.Locations(context.Background(), "pt", "lis")
	require.NoError(t, err)

	assert.Equal(t, "pt", captured.URL.Query().Get("country_id"))
	assert.Equal(t, "lis", captured.URL.Query().Get("city_id"))
	assert.Equal(t, "Lisbon", loc.Name)
	require.Len(t, loc.Posts, 1)
	assert.Equal(t, int64(50), loc.Posts[0].LikeCount)
}

func TestLocationsCountryListOnly(t *testing.T) {
	var captured *http.Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Write([]byte(`{"country_list":[{"id":"pt","name":"Portugal"}]}`))
	})

	loc, err := client.Locations(context.Background(), "", "")
	require.NoError(t, err)

	assert.Empty(t, captured.URL.RawQuery)
	require.Len(t, loc.CountryList, 1)
	assert.NotNil(t, loc.Posts)
}

func TestSearchEncodesFilters(t *testing.T) {
	var decoded SearchFilters
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scrape/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&decoded))
		w.Write([]byte(`{"hashtags":[{"name":"sunset","topPosts":[{"id":"x","likesCount":10}]}]}`))
	})

	result, err := client.Search(context.Background(), SearchFilters{
		Search:      "sunset",
		SearchType:  "hashtag",
		ResultsType: "posts",
	})
	require.NoError(t, err)

	assert.Equal(t, "sunset", decoded.Search)
	assert.Equal(t, "hashtag", decoded.SearchType)

	require.Len(t, result.Hashtags, 1)
	assert.Equal(t, "sunset", result.Hashtags[0].Name)
	assert.Equal(t, int64(10), result.Hashtags[0].TopPosts[0].LikesCount)
	assert.NotNil(t, result.Profiles)
	assert.NotNil(t, result.Reels)
}

func TestSearchRequiresTerm(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.Search(context.Background(), SearchFilters{})
	require.Error(t, err)

	var apiErr *errors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeParsing, apiErr.Type)
}

func TestAccountReelsBuildsProfileURLs(t *testing.T) {
	var decoded SearchFilters
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scrape/reels", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&decoded))
		w.Write([]byte(`{"reels":[{"id":"r1","videoPlayCount":900}]}`))
	})

	reels, err := client.AccountReels(context.Background(), []string{"@chef", "baker"}, 25)
	require.NoError(t, err)

	require.Len(t, decoded.DirectURLs, 2)
	assert.Equal(t, "https://www.instagram.com/chef/", decoded.DirectURLs[0])
	assert.Equal(t, "https://www.instagram.com/baker/", decoded.DirectURLs[1])
	assert.Equal(t, 25, decoded.ResultsLimit)

	require.Len(t, reels, 1)
	assert.Equal(t, int64(900), reels[0].VideoPlayCount)
}

func TestAccountReelsRequiresUsernames(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.AccountReels(context.Background(), nil, 10)
	require.Error(t, err)
}

func TestProxyImage(t *testing.T) {
	var captured *http.Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	})

	data, contentType, err := client.ProxyImage(context.Background(), "https://cdn.example/a.png")
	require.NoError(t, err)

	assert.Equal(t, "/proxy-image", captured.URL.Path)
	assert.Equal(t, "https://cdn.example/a.png", captured.URL.Query().Get("url"))
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Equal(t, "image/png", contentType)
}

func TestProxyImageDefaultsContentType(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write([]byte("raw"))
	})

	_, contentType, err := client.ProxyImage(context.Background(), "https://cdn.example/a")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantType   errors.ErrorType
	}{
		{"challenge detail", http.StatusUnauthorized, `{"detail":"challenge_required"}`, errors.ErrorTypeChallenge},
		{"plain forbidden", http.StatusForbidden, `{}`, errors.ErrorTypeAuth},
		{"not found", http.StatusNotFound, `{}`, errors.ErrorTypeNotFound},
		{"rate limited", http.StatusTooManyRequests, `{}`, errors.ErrorTypeRateLimit},
		{"bad gateway", http.StatusBadGateway, `{}`, errors.ErrorTypeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			})

			_, err := client.Explore(context.Background())
			require.Error(t, err)

			var apiErr *errors.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.statusCode, apiErr.Code)
		})
	}
}

func TestSetAPIKey(t *testing.T) {
	var captured *http.Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Write([]byte(`{}`))
	})

	client.SetAPIKey("rotated-key")
	_, err := client.Explore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rotated-key", captured.Header.Get("Apify-key"))
}
