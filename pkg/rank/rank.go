// Package rank scores and orders media by virality against the median
// engagement of the set it arrived in.
package rank

import (
	"sort"
	"strings"

	"igviral/pkg/explore"
	"igviral/pkg/models"
	"igviral/pkg/stats"
)

// Results holds one ranked page split into its two scored partitions
type Results struct {
	Clips []models.Post `json:"clips"`
	Posts []models.Post `json:"posts"`
}

// Page partitions a page of posts into clips and images, scores each
// partition against its own median, and sorts both descending by score.
// The input slice is not mutated; ties keep their upstream order.
func Page(posts []models.Post) Results {
	clips := make([]models.Post, 0, len(posts))
	images := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.IsClip() {
			clips = append(clips, p)
		} else {
			images = append(images, p)
		}
	}

	medianViews := medianOf(clips, func(p *models.Post) int64 { return p.PlayCount })
	medianLikes := medianOf(images, func(p *models.Post) int64 { return p.LikeCount })

	for i := range clips {
		clips[i].Virality = stats.ScoreReel(
			float64(clips[i].LikeCount),
			float64(clips[i].CommentCount),
			float64(clips[i].PlayCount),
			medianViews,
		)
	}
	for i := range images {
		images[i].Virality = stats.ScorePost(
			float64(images[i].LikeCount),
			float64(images[i].CommentCount),
			medianLikes,
		)
	}

	sortByVirality(clips)
	sortByVirality(images)

	return Results{Clips: clips, Posts: images}
}

// medianOf collects non-zero samples from one partition. Zero counters mean
// the upstream withheld the metric, so they would only drag the median down.
func medianOf(posts []models.Post, value func(*models.Post) int64) float64 {
	samples := make([]float64, 0, len(posts))
	for i := range posts {
		if v := value(&posts[i]); v > 0 {
			samples = append(samples, float64(v))
		}
	}
	return stats.Median(samples)
}

func sortByVirality(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Virality > posts[j].Virality
	})
}

// HashtagResults holds one hashtag media set split into its two scored
// partitions
type HashtagResults struct {
	Reels []explore.ScrapedPost `json:"reels"`
	Posts []explore.ScrapedPost `json:"posts"`
}

// HashtagMedia partitions hashtag-sourced posts into reels and images, scores
// reels against the partition's median play count and images with the hashtag
// formula, and sorts both descending. Carousels are boosted by image count,
// defaulting to a single image when the list is absent.
func HashtagMedia(posts []explore.ScrapedPost) HashtagResults {
	reels := make([]explore.ScrapedPost, 0, len(posts))
	images := make([]explore.ScrapedPost, 0, len(posts))
	for _, p := range posts {
		if p.IsVideo() {
			reels = append(reels, p)
		} else {
			images = append(images, p)
		}
	}

	samples := make([]float64, 0, len(reels))
	for i := range reels {
		if v := reels[i].PlayCount(); v > 0 {
			samples = append(samples, float64(v))
		}
	}
	medianViews := stats.Median(samples)

	for i := range reels {
		p := &reels[i]
		p.Virality = stats.ScoreReel(
			float64(p.LikesCount),
			float64(p.CommentsCount),
			float64(p.PlayCount()),
			medianViews,
		)
	}

	for i := range images {
		p := &images[i]
		likes := float64(p.LikesCount)
		comments := float64(p.CommentsCount)
		shares := float64(p.ReshareCount)

		if p.Type == "Sidecar" || strings.Contains(p.ProductType, "carousel") {
			count := len(p.Images)
			if count == 0 {
				count = 1
			}
			p.Virality = stats.ScoreHashtagCarousel(likes, comments, shares, count)
		} else {
			p.Virality = stats.ScoreHashtagImage(likes, comments, shares)
		}
	}

	sortScrapedByVirality(reels)
	sortScrapedByVirality(images)

	return HashtagResults{Reels: reels, Posts: images}
}

func sortScrapedByVirality(posts []explore.ScrapedPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Virality > posts[j].Virality
	})
}

// Profiles ranks profiles by the follower-normalized engagement summed over
// each profile's latest posts, descending.
func Profiles(profiles []explore.ScrapedProfile) []explore.ScrapedProfile {
	ranked := make([]explore.ScrapedProfile, len(profiles))
	copy(ranked, profiles)

	for i := range ranked {
		p := &ranked[i]
		total := 0.0
		for j := range p.LatestPosts {
			post := &p.LatestPosts[j]
			total += stats.ScoreAgainstFollowers(
				float64(post.LikesCount),
				float64(post.CommentsCount),
				float64(p.FollowersCount),
			)
		}
		p.Virality = total
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Virality > ranked[j].Virality
	})
	return ranked
}
