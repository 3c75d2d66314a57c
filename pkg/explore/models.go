package explore

// Pill is one explore feed filter chip
type Pill struct {
	Name  string `json:"name"`
	FitID string `json:"fit_id"`
}

// Subtopic is one drill-down entry under an explore topic, with media covers
type Subtopic struct {
	FitID  string `json:"fit_id"`
	Name   string `json:"name"`
	Medias []struct {
		DisplayURI string `json:"display_uri"`
	} `json:"medias"`
}

// FitSection is one top-level explore topic with its subtopics
type FitSection struct {
	L1 struct {
		Name  string `json:"name"`
		FitID string `json:"fit_id"`
	} `json:"l1"`
	Subtopic []Subtopic `json:"subtopic"`
}

// ExploreFeed is the explore landing payload
type ExploreFeed struct {
	Pills       []Pill       `json:"pills"`
	FitSections []FitSection `json:"fit_sections"`
}

// LocationInfo identifies one country or city entry
type LocationInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// LocationPost is one trending post attached to a location
type LocationPost struct {
	ID           string `json:"id"`
	DisplayURI   string `json:"display_uri"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
}

// Location is the location drill-down payload
type Location struct {
	Name        string         `json:"name"`
	CountryInfo LocationInfo   `json:"country_info"`
	CityInfo    LocationInfo   `json:"city_info"`
	CountryList []LocationInfo `json:"country_list,omitempty"`
	CityList    []LocationInfo `json:"city_list,omitempty"`
	Posts       []LocationPost `json:"posts"`
}

// ScrapedPost is one post in the third-party data-provider result shape.
// Field names follow that provider's camelCase convention.
type ScrapedPost struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	ShortCode      string   `json:"shortCode"`
	Caption        string   `json:"caption"`
	Hashtags       []string `json:"hashtags"`
	URL            string   `json:"url"`
	CommentsCount  int64    `json:"commentsCount"`
	DisplayURL     string   `json:"displayUrl"`
	Images         []string `json:"images"`
	VideoURL       string   `json:"videoUrl"`
	LikesCount     int64    `json:"likesCount"`
	ReshareCount   int64    `json:"reshareCount"`
	VideoViewCount int64    `json:"videoViewCount"`
	VideoPlayCount int64    `json:"videoPlayCount"`
	IGPlayCount    int64    `json:"igPlayCount"`
	Timestamp      string   `json:"timestamp"`
	OwnerFullName  string   `json:"ownerFullName"`
	OwnerUsername  string   `json:"ownerUsername"`
	OwnerID        string   `json:"ownerId"`
	ProductType    string   `json:"productType"`
	Virality       float64  `json:"virality,omitempty"`
}

// PlayCount resolves the best available view counter for a scraped post
func (p *ScrapedPost) PlayCount() int64 {
	if p.VideoPlayCount != 0 {
		return p.VideoPlayCount
	}
	return p.IGPlayCount
}

// IsVideo reports whether a scraped post is playable video content
func (p *ScrapedPost) IsVideo() bool {
	return p.VideoURL != "" ||
		p.Type == "Video" ||
		p.ProductType == "clips"
}

// Hashtag is one hashtag result with its top and latest post sets
type Hashtag struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	URL         string        `json:"url"`
	PostsCount  string        `json:"posts"`
	TopPosts    []ScrapedPost `json:"topPosts"`
	LatestPosts []ScrapedPost `json:"latestPosts"`
}

// ScrapedProfile is one profile result with its latest posts attached
type ScrapedProfile struct {
	ID                   string        `json:"id"`
	Username             string        `json:"username"`
	FullName             string        `json:"fullName"`
	Biography            string        `json:"biography"`
	URL                  string        `json:"url"`
	ProfilePicURL        string        `json:"profilePicUrl"`
	ProfilePicURLHD      string        `json:"profilePicUrlHD"`
	FollowersCount       int64         `json:"followersCount"`
	FollowsCount         int64         `json:"followsCount"`
	Verified             bool          `json:"verified"`
	IsBusinessAccount    bool          `json:"isBusinessAccount"`
	BusinessCategoryName string        `json:"businessCategoryName,omitempty"`
	PostsCount           int64         `json:"postsCount"`
	Private              bool          `json:"private"`
	LatestPosts          []ScrapedPost `json:"latestPosts"`
	Virality             float64       `json:"virality,omitempty"`
}

// SearchFilters parameterizes a third-party scrape request
type SearchFilters struct {
	Search             string   `json:"search"`
	ResultsType        string   `json:"resultsType"`
	SearchType         string   `json:"searchType"`
	OnlyPostsNewerThan string   `json:"onlyPostsNewerThan"`
	DirectURLs         []string `json:"directUrls,omitempty"`
	ResultsLimit       int      `json:"resultsLimit"`
	SearchLimit        int      `json:"searchLimit"`
}

// SearchResult is the third-party scrape response: depending on the requested
// results type, one of the three sets is populated.
type SearchResult struct {
	Hashtags []Hashtag        `json:"hashtags"`
	Profiles []ScrapedProfile `json:"profiles"`
	Reels    []ScrapedPost    `json:"reels"`
}
