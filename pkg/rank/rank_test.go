package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igviral/pkg/explore"
	"igviral/pkg/models"
)

func reel(id string, likes, comments, views int64) models.Post {
	return models.Post{
		ID:           id,
		ProductType:  models.ProductTypeClips,
		LikeCount:    likes,
		CommentCount: comments,
		PlayCount:    views,
	}
}

func image(id string, likes, comments int64) models.Post {
	return models.Post{
		ID:           id,
		ProductType:  models.ProductTypeFeed,
		LikeCount:    likes,
		CommentCount: comments,
	}
}

func TestPageScoresReelsAgainstMedianViews(t *testing.T) {
	results := Page([]models.Post{
		reel("A", 100, 10, 1000),
		reel("B", 50, 5, 500),
	})

	require.Len(t, results.Clips, 2)
	assert.Empty(t, results.Posts)

	// median views = (500+1000)/2 = 750
	assert.Equal(t, "A", results.Clips[0].ID)
	assert.InDelta(t, 0.58667, results.Clips[0].Virality, 0.0001)
	assert.Equal(t, "B", results.Clips[1].ID)
	assert.InDelta(t, 0.29333, results.Clips[1].Virality, 0.0001)
}

func TestPagePartitionsClipsFromImages(t *testing.T) {
	results := Page([]models.Post{
		reel("r1", 10, 1, 100),
		image("i1", 20, 2),
		{ID: "v1", ProductType: models.ProductTypeFeed, VideoURL: "https://cdn/v.mp4", PlayCount: 50},
		image("i2", 30, 3),
	})

	// playable video counts as a clip even without the clips product type
	require.Len(t, results.Clips, 2)
	require.Len(t, results.Posts, 2)
}

func TestPageExcludesZeroSamplesFromMedian(t *testing.T) {
	results := Page([]models.Post{
		reel("a", 10, 0, 0),
		reel("b", 10, 0, 600),
		reel("c", 10, 0, 1000),
	})

	// zero views are withheld metrics, not samples: median = 800, not 600
	require.Len(t, results.Clips, 3)
	for _, p := range results.Clips {
		if p.ID == "b" {
			// (10*1.2 + 0 + 600*0.3) / 800
			assert.InDelta(t, 0.24, p.Virality, 0.0001)
		}
	}
}

func TestPageAllZeroViewsUsesFallbackBaseline(t *testing.T) {
	results := Page([]models.Post{
		reel("a", 100, 10, 0),
	})

	// empty sample set -> median 1, formula still applies
	require.Len(t, results.Clips, 1)
	assert.InDelta(t, 140.0, results.Clips[0].Virality, 0.0001)
}

func TestPageSortsImagesByScoreDescending(t *testing.T) {
	results := Page([]models.Post{
		image("low", 10, 1),
		image("high", 100, 50),
		image("mid", 50, 10),
	})

	require.Len(t, results.Posts, 3)
	assert.Equal(t, "high", results.Posts[0].ID)
	assert.Equal(t, "mid", results.Posts[1].ID)
	assert.Equal(t, "low", results.Posts[2].ID)
}

func TestPageStableOnTies(t *testing.T) {
	results := Page([]models.Post{
		image("first", 10, 5),
		image("second", 10, 5),
		image("third", 10, 5),
	})

	require.Len(t, results.Posts, 3)
	assert.Equal(t, "first", results.Posts[0].ID)
	assert.Equal(t, "second", results.Posts[1].ID)
	assert.Equal(t, "third", results.Posts[2].ID)
}

func TestPageDoesNotMutateInput(t *testing.T) {
	input := []models.Post{
		image("a", 1, 0),
		image("b", 100, 10),
	}
	Page(input)

	assert.Equal(t, "a", input[0].ID)
	assert.Equal(t, float64(0), input[0].Virality)
}

func TestPageEmptyInput(t *testing.T) {
	results := Page(nil)
	assert.Empty(t, results.Clips)
	assert.Empty(t, results.Posts)
}

func TestHashtagMedia(t *testing.T) {
	t.Run("images ranked by the hashtag formula", func(t *testing.T) {
		results := HashtagMedia([]explore.ScrapedPost{
			{ID: "a", Type: "Image", LikesCount: 10, CommentsCount: 5, ReshareCount: 2},
			{ID: "b", Type: "Image", LikesCount: 100, CommentsCount: 0, ReshareCount: 0},
		})

		require.Len(t, results.Posts, 2)
		assert.Empty(t, results.Reels)
		assert.Equal(t, "b", results.Posts[0].ID)
		assert.InDelta(t, 200.0, results.Posts[0].Virality, 0.0001)
		assert.InDelta(t, 45.0, results.Posts[1].Virality, 0.0001)
	})

	t.Run("videos scored against the median play count", func(t *testing.T) {
		results := HashtagMedia([]explore.ScrapedPost{
			{ID: "v1", Type: "Video", LikesCount: 100, CommentsCount: 10, VideoPlayCount: 1000},
			{ID: "v2", Type: "Video", LikesCount: 50, CommentsCount: 5, IGPlayCount: 500},
		})

		require.Len(t, results.Reels, 2)
		assert.Empty(t, results.Posts)

		// median views = (500+1000)/2 = 750, reel formula applies
		assert.Equal(t, "v1", results.Reels[0].ID)
		assert.InDelta(t, 0.58667, results.Reels[0].Virality, 0.0001)
		assert.Equal(t, "v2", results.Reels[1].ID)
		assert.InDelta(t, 0.29333, results.Reels[1].Virality, 0.0001)
	})

	t.Run("mixed sets split into reel and image partitions", func(t *testing.T) {
		results := HashtagMedia([]explore.ScrapedPost{
			{ID: "clip", ProductType: "clips", LikesCount: 10, VideoPlayCount: 100},
			{ID: "video-url", Type: "Image", VideoURL: "https://cdn/v.mp4", IGPlayCount: 50},
			{ID: "img", Type: "Image", LikesCount: 20},
		})

		require.Len(t, results.Reels, 2)
		require.Len(t, results.Posts, 1)
		assert.Equal(t, "img", results.Posts[0].ID)
	})

	t.Run("sidecar boosted by image count", func(t *testing.T) {
		results := HashtagMedia([]explore.ScrapedPost{
			{ID: "carousel", Type: "Sidecar", LikesCount: 10, CommentsCount: 5, ReshareCount: 2,
				Images: []string{"1.jpg", "2.jpg", "3.jpg"}},
			{ID: "single", Type: "Image", LikesCount: 10, CommentsCount: 5, ReshareCount: 2},
		})

		require.Len(t, results.Posts, 2)
		// 45 * log2(4) = 90 beats the plain 45
		assert.Equal(t, "carousel", results.Posts[0].ID)
		assert.InDelta(t, 90.0, results.Posts[0].Virality, 0.0001)
	})

	t.Run("carousel product type also boosted", func(t *testing.T) {
		results := HashtagMedia([]explore.ScrapedPost{
			{ID: "ct", Type: "Image", ProductType: "carousel_container",
				LikesCount: 10, CommentsCount: 5, ReshareCount: 2,
				Images: []string{"1.jpg", "2.jpg", "3.jpg"}},
		})

		require.Len(t, results.Posts, 1)
		assert.InDelta(t, 90.0, results.Posts[0].Virality, 0.0001)
	})

	t.Run("carousel without image list counts as one image", func(t *testing.T) {
		results := HashtagMedia([]explore.ScrapedPost{
			{ID: "bare", Type: "Sidecar", LikesCount: 10, CommentsCount: 5, ReshareCount: 2},
		})

		require.Len(t, results.Posts, 1)
		// log2(1+1) = 1, the boost is a no-op
		assert.InDelta(t, 45.0, results.Posts[0].Virality, 0.0001)
	})

	t.Run("input order preserved in the copy", func(t *testing.T) {
		input := []explore.ScrapedPost{
			{ID: "a", LikesCount: 1},
			{ID: "b", LikesCount: 100},
		}
		HashtagMedia(input)
		assert.Equal(t, "a", input[0].ID)
		assert.Equal(t, float64(0), input[0].Virality)
	})
}

func TestProfiles(t *testing.T) {
	ranked := Profiles([]explore.ScrapedProfile{
		{
			Username:       "big_but_flat",
			FollowersCount: 1000000,
			LatestPosts: []explore.ScrapedPost{
				{LikesCount: 100, CommentsCount: 10},
			},
		},
		{
			Username:       "small_but_viral",
			FollowersCount: 1000,
			LatestPosts: []explore.ScrapedPost{
				{LikesCount: 500, CommentsCount: 50},
				{LikesCount: 300, CommentsCount: 30},
			},
		},
	})

	require.Len(t, ranked, 2)
	assert.Equal(t, "small_but_viral", ranked[0].Username)
	// (500+150)/1000 + (300+90)/1000 = 1.04
	assert.InDelta(t, 1.04, ranked[0].Virality, 0.0001)
	assert.InDelta(t, 0.00013, ranked[1].Virality, 0.000001)
}

func TestProfilesZeroFollowers(t *testing.T) {
	ranked := Profiles([]explore.ScrapedProfile{
		{Username: "new", FollowersCount: 0, LatestPosts: []explore.ScrapedPost{
			{LikesCount: 10, CommentsCount: 0},
		}},
	})

	require.Len(t, ranked, 1)
	assert.InDelta(t, 10.0, ranked[0].Virality, 0.0001, "divisor clamps to 1")
}
