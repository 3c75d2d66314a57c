package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"os"

	"igviral/pkg/errors"
	"igviral/pkg/logger"
	"igviral/pkg/models"
	"igviral/pkg/rank"
	"igviral/pkg/settings"
)

// searchResponse is one ranked result page
type searchResponse struct {
	Profile    *models.Profile `json:"profile,omitempty"`
	Clips      []models.Post   `json:"clips"`
	Posts      []models.Post   `json:"posts"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// applyStoredCredential refreshes the search client's access key from the
// settings store at the start of a search action. A stored credential wins
// over the configured key; absence keeps the key the client already carries.
func (s *Server) applyStoredCredential(ctx context.Context) {
	if s.settings == nil {
		return
	}

	key, err := s.settings.Get(ctx, settings.KeyAPICredential)
	if err != nil {
		if !stderrors.Is(err, settings.ErrNotFound) {
			s.logger.WithError(err).Warn("failed to read stored API credential")
		}
		return
	}
	if key != "" {
		s.hiker.SetAccessKey(key)
	}
}

func (s *Server) handleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}
	cursor := r.URL.Query().Get("page_id")

	s.applyStoredCredential(r.Context())

	p := s.contexts.get(ModeKeyword, q)
	posts, err := p.FetchPage(r.Context(), cursor)
	logger.LogSearch(ModeKeyword, q, cursor, len(posts), err)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	s.respondRanked(w, r, nil, posts, p.NextCursor())
}

func (s *Server) handleAccountSearch(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username parameter is required")
		return
	}
	cursor := r.URL.Query().Get("page_id")

	s.applyStoredCredential(r.Context())

	profile, err := s.hiker.ProfileByUsername(r.Context(), username)
	if err != nil {
		logger.LogSearch(ModeAccount, username, cursor, 0, err)
		writeUpstreamError(w, err)
		return
	}

	p := s.contexts.get(ModeAccount, username)
	posts, err := p.FetchPage(r.Context(), cursor)
	logger.LogSearch(ModeAccount, username, cursor, len(posts), err)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	s.respondRanked(w, r, profile, posts, p.NextCursor())
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username parameter is required")
		return
	}

	profile, err := s.hiker.ProfileByUsername(r.Context(), username)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	feed, err := s.explore.Explore(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

func (s *Server) handleExploreTopic(w http.ResponseWriter, r *http.Request) {
	fitID := r.URL.Query().Get("fit_id")
	if fitID == "" {
		writeError(w, http.StatusBadRequest, "fit_id parameter is required")
		return
	}

	section, err := s.explore.ExploreTopic(r.Context(), fitID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, section)
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	countryID := r.URL.Query().Get("country_id")
	cityID := r.URL.Query().Get("city_id")

	loc, err := s.explore.Locations(r.Context(), countryID, cityID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")

	blob, contentType, err := s.blobs.Open(ref)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "media not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to open media")
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	io.Copy(w, blob)
}

// respondRanked scores a page, rewrites thumbnails to local references, and
// writes the result.
func (s *Server) respondRanked(w http.ResponseWriter, r *http.Request, profile *models.Profile, posts []models.Post, nextCursor string) {
	ranked := rank.Page(posts)

	// Warm the cache concurrently before the serial resolution pass.
	// Duplicate in-flight fetches for the same URL are tolerated.
	if s.prefetch != nil {
		s.prefetch.WarmPage(posts)
	}

	s.resolveThumbnails(r.Context(), ranked.Clips)
	s.resolveThumbnails(r.Context(), ranked.Posts)

	writeJSON(w, http.StatusOK, searchResponse{
		Profile:    profile,
		Clips:      ranked.Clips,
		Posts:      ranked.Posts,
		NextCursor: nextCursor,
	})
}

func (s *Server) resolveThumbnails(ctx context.Context, posts []models.Post) {
	if s.media == nil {
		return
	}
	for i := range posts {
		if posts[i].ThumbnailURL == "" {
			continue
		}
		posts[i].ThumbnailURL = s.media.Resolve(ctx, posts[i].ThumbnailURL)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// apiError mirrors the upstream error conveyance: an HTTP status plus a
// human-readable detail.
type apiError struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, apiError{Status: status, Detail: detail})
}

// writeUpstreamError maps the typed error taxonomy onto API statuses. The
// challenge condition keeps a distinct detail so the dashboard can prompt
// for re-authentication instead of showing a generic failure.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var typed *errors.Error
	if !stderrors.As(err, &typed) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch typed.Type {
	case errors.ErrorTypeChallenge:
		writeError(w, http.StatusUnauthorized, "pending challenge: re-authentication required")
	case errors.ErrorTypeAuth:
		writeError(w, http.StatusUnauthorized, typed.Message)
	case errors.ErrorTypeNotFound:
		writeError(w, http.StatusNotFound, typed.Message)
	case errors.ErrorTypeRateLimit:
		writeError(w, http.StatusTooManyRequests, typed.Message)
	case errors.ErrorTypeParsing:
		writeError(w, http.StatusBadRequest, typed.Message)
	case errors.ErrorTypeNetwork, errors.ErrorTypeServerError:
		writeError(w, http.StatusBadGateway, typed.Message)
	default:
		writeError(w, http.StatusInternalServerError, typed.Message)
	}
}
