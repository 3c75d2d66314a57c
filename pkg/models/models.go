// Package models defines the canonical post and profile shapes that every
// upstream payload variant is normalized into before scoring and rendering.
package models

import "fmt"

// Product types recognized by the ranking engine. Unrecognized upstream
// types normalize to ProductTypeFeed.
const (
	ProductTypeClips    = "clips"
	ProductTypeFeed     = "feed"
	ProductTypeCarousel = "carousel_container"
)

// Post is the canonical, post-normalization media item
type Post struct {
	ID           string     `json:"id"`
	Code         string     `json:"code"`
	CaptionText  string     `json:"caption_text"`
	LikeCount    int64      `json:"like_count"`
	CommentCount int64      `json:"comment_count"`
	PlayCount    int64      `json:"play_count"`
	VideoURL     string     `json:"video_url,omitempty"`
	TakenAt      string     `json:"taken_at"`
	ProductType  string     `json:"product_type"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	Resources    []Resource `json:"resources"`
	Virality     float64    `json:"virality,omitempty"`
	User         *PostUser  `json:"user,omitempty"`
}

// Resource is a child media entry of a carousel post
type Resource struct {
	PK           string `json:"pk"`
	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	MediaType    int    `json:"media_type"`
}

// PostUser is the lightweight profile reference embedded in a post
type PostUser struct {
	PK              string `json:"pk"`
	Username        string `json:"username"`
	FullName        string `json:"full_name"`
	ProfilePicURL   string `json:"profile_pic_url"`
	ProfilePicURLHD string `json:"profile_pic_url_hd"`
	IsPrivate       bool   `json:"is_private"`
}

// IsClip reports whether the post is a reel/video for partitioning purposes:
// an explicit clips product type or a playable video URL both qualify.
func (p *Post) IsClip() bool {
	return p.ProductType == ProductTypeClips || p.VideoURL != ""
}

// PermalinkURL builds the public Instagram permalink for the post. Clips live
// under /reel/, everything else under /p/.
func (p *Post) PermalinkURL() string {
	if p.Code == "" {
		return ""
	}
	if p.ProductType == ProductTypeClips {
		return fmt.Sprintf("https://www.instagram.com/reel/%s/", p.Code)
	}
	return fmt.Sprintf("https://www.instagram.com/p/%s/", p.Code)
}

// Profile is the canonical normalized user profile
type Profile struct {
	PK              string    `json:"pk"`
	Username        string    `json:"username"`
	FullName        string    `json:"full_name"`
	IsPrivate       bool      `json:"is_private"`
	ProfilePicURL   string    `json:"profile_pic_url"`
	ProfilePicURLHD string    `json:"profile_pic_url_hd"`
	IsVerified      bool      `json:"is_verified"`
	MediaCount      int64     `json:"media_count"`
	FollowerCount   int64     `json:"follower_count"`
	FollowingCount  int64     `json:"following_count"`
	Biography       string    `json:"biography"`
	BioLinks        []BioLink `json:"bio_links"`
	ExternalURL     string    `json:"external_url"`
	IsBusiness      bool      `json:"is_business"`
	Category        string    `json:"category"`
	CategoryName    string    `json:"category_name"`
}

// BioLink is one external link from a profile biography
type BioLink struct {
	URL string `json:"url"`
}

// CachedPage is one normalized, scored result page held by the pagination
// cache, keyed by cursor within a search context.
type CachedPage struct {
	Posts      []Post `json:"posts"`
	NextCursor string `json:"next_cursor,omitempty"`
}
