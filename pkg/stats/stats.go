// Package stats holds the numeric utilities behind the virality scores:
// median baselines, engagement formulas and display formatting.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Median returns the median of xs: the middle element for odd-length input,
// the average of the two middle elements for even-length input. The empty
// sequence returns 1, the fallback baseline used when a result set has no
// usable sample. The input slice is not modified.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 1
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 != 0 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// ScoreReel computes the virality score of a reel relative to the median
// view count of its result set. Returns 0 when the baseline is 0 to guard
// division by zero.
func ScoreReel(likes, comments, views, medianViews float64) float64 {
	if medianViews == 0 {
		return 0
	}
	return (likes*1.2 + comments*2 + views*0.3) / medianViews
}

// ScorePost computes the median-relative virality score of an image or
// carousel post within one account's or keyword's result set.
func ScorePost(likes, comments, medianLikes float64) float64 {
	if medianLikes == 0 {
		return 0
	}
	return (likes*1.2 + comments*2) / medianLikes
}

// ScoreAgainstFollowers computes the follower-normalized engagement ratio
// used when ranking profiles by aggregate post engagement.
func ScoreAgainstFollowers(likes, comments, followerCount float64) float64 {
	return (likes + 3*comments) / math.Max(1, followerCount)
}

// ScoreHashtagImage scores a single hashtag-sourced image. Hashtag content
// weights engagement directly rather than against a median baseline.
func ScoreHashtagImage(likes, comments, shares float64) float64 {
	return likes*2 + comments*3 + shares*5
}

// ScoreHashtagCarousel scores a hashtag-sourced sidecar, boosting the base
// image score by log2 of the image count.
func ScoreHashtagCarousel(likes, comments, shares float64, imageCount int) float64 {
	return ScoreHashtagImage(likes, comments, shares) * math.Log2(float64(imageCount)+1)
}

// FormatNumber renders a count in compact 1.2K / 3.4M / 1B notation,
// dropping a trailing ".0".
func FormatNumber(num float64) string {
	abbrev := func(v float64, suffix string) string {
		s := fmt.Sprintf("%.1f", v)
		s = strings.TrimSuffix(s, ".0")
		return s + suffix
	}

	switch {
	case num >= 1e9:
		return abbrev(num/1e9, "B")
	case num >= 1e6:
		return abbrev(num/1e6, "M")
	case num >= 1e3:
		return abbrev(num/1e3, "K")
	default:
		return fmt.Sprintf("%d", int64(num))
	}
}
