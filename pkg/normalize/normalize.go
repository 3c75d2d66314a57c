// Package normalize converts the structurally different upstream API payload
// shapes into the canonical Post and Profile models. The normalizers are
// total over arbitrary JSON: absent or mistyped fields default to empty
// string, zero, false or an empty sequence, never an error.
package normalize

import (
	"encoding/json"

	"igviral/pkg/models"
)

// urlEntry is one {url} candidate from image_versions2 or video_versions
type urlEntry struct {
	URL flexString `json:"url"`
}

// media is the shared upstream media object appearing in both the user-medias
// and hashtag-top shapes.
type media struct {
	PK             flexString `json:"pk"`
	ID             flexString `json:"id"`
	Code           flexString `json:"code"`
	Caption        caption    `json:"caption"`
	LikeCount      flexInt    `json:"like_count"`
	CommentCount   flexInt    `json:"comment_count"`
	PlayCount      flexInt    `json:"play_count"`
	IGPlayCount    flexInt    `json:"ig_play_count"`
	VideoVersions  []urlEntry `json:"video_versions"`
	ImageVersions2 struct {
		Candidates           []urlEntry `json:"candidates"`
		AdditionalCandidates struct {
			FirstFrame urlEntry `json:"first_frame"`
		} `json:"additional_candidates"`
	} `json:"image_versions2"`
	TakenAt       flexTime   `json:"taken_at"`
	ProductType   flexString `json:"product_type"`
	MediaType     flexInt    `json:"media_type"`
	CarouselMedia []media    `json:"carousel_media"`
	User          *mediaUser `json:"user"`
}

// caption tolerates both the usual {text} object and a bare string
type caption struct {
	Text flexString `json:"text"`
}

func (c *caption) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s flexString
		_ = s.UnmarshalJSON(b)
		c.Text = s
		return nil
	}
	type alias caption
	var a alias
	if json.Unmarshal(b, &a) == nil {
		*c = caption(a)
	}
	return nil
}

type mediaUser struct {
	PK              flexString `json:"pk"`
	ID              flexString `json:"id"`
	Username        flexString `json:"username"`
	FullName        flexString `json:"full_name"`
	ProfilePicURL   flexString `json:"profile_pic_url"`
	ProfilePicURLHD flexString `json:"profile_pic_url_hd"`
	IsPrivate       flexBool   `json:"is_private"`
}

// productType resolves the canonical product type: the explicit upstream
// field wins, otherwise the numeric media-type code decides.
func (m *media) productType() string {
	if m.ProductType != "" {
		return string(m.ProductType)
	}
	switch m.MediaType {
	case 2:
		return models.ProductTypeClips
	case 8:
		return models.ProductTypeCarousel
	default:
		return models.ProductTypeFeed
	}
}

// firstURL extracts the first entry of a url candidate sequence
func firstURL(entries []urlEntry) string {
	if len(entries) == 0 {
		return ""
	}
	return string(entries[0].URL)
}

// thumbnail is the first image candidate, falling back to the first-frame
// candidate used for videos.
func (m *media) thumbnail() string {
	if url := firstURL(m.ImageVersions2.Candidates); url != "" {
		return url
	}
	return string(m.ImageVersions2.AdditionalCandidates.FirstFrame.URL)
}

// playCount prefers play_count over the ig_play_count alias
func (m *media) playCount() int64 {
	if m.PlayCount != 0 {
		return int64(m.PlayCount)
	}
	return int64(m.IGPlayCount)
}

// toPost applies the shared media-mapping rule
func (m *media) toPost() models.Post {
	productType := m.productType()

	id := string(m.PK)
	if id == "" {
		id = string(m.ID)
	}

	post := models.Post{
		ID:           id,
		Code:         string(m.Code),
		CaptionText:  string(m.Caption.Text),
		LikeCount:    int64(m.LikeCount),
		CommentCount: int64(m.CommentCount),
		PlayCount:    m.playCount(),
		VideoURL:     firstURL(m.VideoVersions),
		TakenAt:      string(m.TakenAt),
		ProductType:  productType,
		ThumbnailURL: m.thumbnail(),
		Resources:    []models.Resource{},
	}

	if productType == models.ProductTypeCarousel {
		post.Resources = make([]models.Resource, 0, len(m.CarouselMedia))
		for _, child := range m.CarouselMedia {
			mediaType := int(child.MediaType)
			if mediaType == 0 {
				mediaType = 1
			}
			post.Resources = append(post.Resources, models.Resource{
				PK:           string(child.PK),
				VideoURL:     firstURL(child.VideoVersions),
				ThumbnailURL: child.thumbnail(),
				MediaType:    mediaType,
			})
		}
	}

	if m.User != nil {
		pk := string(m.User.PK)
		if pk == "" {
			pk = string(m.User.ID)
		}
		hd := string(m.User.ProfilePicURLHD)
		if hd == "" {
			hd = string(m.User.ProfilePicURL)
		}
		post.User = &models.PostUser{
			PK:              pk,
			Username:        string(m.User.Username),
			FullName:        string(m.User.FullName),
			ProfilePicURL:   string(m.User.ProfilePicURL),
			ProfilePicURLHD: hd,
			IsPrivate:       bool(m.User.IsPrivate),
		}
	}

	return post
}

// decodeMedia decodes one raw media object, tolerating partial failures:
// whatever decoded before an error keeps its value, the rest defaults.
func decodeMedia(raw json.RawMessage) media {
	var m media
	_ = json.Unmarshal(raw, &m)
	return m
}

// UserMedias normalizes a user-medias payload (response.items[]) into
// canonical posts, preserving item order.
func UserMedias(doc []byte) []models.Post {
	var payload struct {
		Response struct {
			Items []json.RawMessage `json:"items"`
		} `json:"response"`
	}
	_ = json.Unmarshal(doc, &payload)

	posts := make([]models.Post, 0, len(payload.Response.Items))
	for _, raw := range payload.Response.Items {
		m := decodeMedia(raw)
		posts = append(posts, m.toPost())
	}
	return posts
}

// HashtagTop normalizes a hashtag-top payload. Each section's layout_content
// holds either a one-by-two clip grid or a plain media grid; all media
// objects are flattened across sections in document order.
func HashtagTop(doc []byte) []models.Post {
	var payload struct {
		Response struct {
			Sections []struct {
				LayoutContent struct {
					OneByTwoItem struct {
						Clips struct {
							Items []struct {
								Media json.RawMessage `json:"media"`
							} `json:"items"`
						} `json:"clips"`
					} `json:"one_by_two_item"`
					Medias []struct {
						Media json.RawMessage `json:"media"`
					} `json:"medias"`
				} `json:"layout_content"`
			} `json:"sections"`
		} `json:"response"`
	}
	_ = json.Unmarshal(doc, &payload)

	var posts []models.Post
	for _, section := range payload.Response.Sections {
		lc := section.LayoutContent
		for _, item := range lc.OneByTwoItem.Clips.Items {
			if len(item.Media) == 0 {
				continue
			}
			m := decodeMedia(item.Media)
			posts = append(posts, m.toPost())
		}
		for _, item := range lc.Medias {
			if len(item.Media) == 0 {
				continue
			}
			m := decodeMedia(item.Media)
			posts = append(posts, m.toPost())
		}
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts
}

// Profile normalizes a user-lookup payload into the canonical profile.
// This upstream never supplies bio link data, so BioLinks is always empty.
func Profile(doc []byte) models.Profile {
	var raw struct {
		PK              flexString `json:"pk"`
		Username        flexString `json:"username"`
		FullName        flexString `json:"full_name"`
		IsPrivate       flexBool   `json:"is_private"`
		ProfilePicURL   flexString `json:"profile_pic_url"`
		ProfilePicURLHD flexString `json:"profile_pic_url_hd"`
		IsVerified      flexBool   `json:"is_verified"`
		MediaCount      flexInt    `json:"media_count"`
		FollowerCount   flexInt    `json:"follower_count"`
		FollowingCount  flexInt    `json:"following_count"`
		Biography       flexString `json:"biography"`
		ExternalURL     flexString `json:"external_url"`
		IsBusiness      flexBool   `json:"is_business"`
		Category        flexString `json:"category"`
		CategoryName    flexString `json:"category_name"`
	}
	_ = json.Unmarshal(doc, &raw)

	hd := string(raw.ProfilePicURLHD)
	if hd == "" {
		hd = string(raw.ProfilePicURL)
	}

	return models.Profile{
		PK:              string(raw.PK),
		Username:        string(raw.Username),
		FullName:        string(raw.FullName),
		IsPrivate:       bool(raw.IsPrivate),
		ProfilePicURL:   string(raw.ProfilePicURL),
		ProfilePicURLHD: hd,
		IsVerified:      bool(raw.IsVerified),
		MediaCount:      int64(raw.MediaCount),
		FollowerCount:   int64(raw.FollowerCount),
		FollowingCount:  int64(raw.FollowingCount),
		Biography:       string(raw.Biography),
		BioLinks:        []models.BioLink{},
		ExternalURL:     string(raw.ExternalURL),
		IsBusiness:      bool(raw.IsBusiness),
		Category:        string(raw.Category),
		CategoryName:    string(raw.CategoryName),
	}
}

// NextPageID extracts the top-level pagination cursor from a search payload
func NextPageID(doc []byte) string {
	var payload struct {
		NextPageID flexString `json:"next_page_id"`
	}
	_ = json.Unmarshal(doc, &payload)
	return string(payload.NextPageID)
}
