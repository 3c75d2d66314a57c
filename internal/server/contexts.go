package server

import (
	"context"
	"sync"

	"igviral/pkg/logger"
	"igviral/pkg/models"
	"igviral/pkg/pager"
)

// Search modes
const (
	ModeKeyword = "keyword"
	ModeAccount = "account"
)

type contextKey struct {
	mode    string
	subject string
}

// contextRegistry hands out one pager per (mode, subject) search context.
// Cached pages are meaningless across subjects, so each subject gets its own
// cursor cache; a repeated search within a subject reuses it.
type contextRegistry struct {
	mu       sync.Mutex
	pagers   map[contextKey]*pager.Pager
	fetchFor func(mode, subject string) pager.FetchFunc
	log      logger.Logger
}

func newContextRegistry(fetchFor func(mode, subject string) pager.FetchFunc, log logger.Logger) *contextRegistry {
	return &contextRegistry{
		pagers:   make(map[contextKey]*pager.Pager),
		fetchFor: fetchFor,
		log:      log,
	}
}

// get returns the pager for a search context, creating it on first use
func (r *contextRegistry) get(mode, subject string) *pager.Pager {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := contextKey{mode: mode, subject: subject}
	if p, ok := r.pagers[key]; ok {
		return p
	}

	p := pager.New(r.fetchFor(mode, subject), r.log)
	r.pagers[key] = p
	return p
}

// reset drops the pager for a search context
func (r *contextRegistry) reset(mode, subject string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := contextKey{mode: mode, subject: subject}
	if p, ok := r.pagers[key]; ok {
		p.Reset()
		delete(r.pagers, key)
	}
}

// fetchFuncFor builds the upstream fetch closure for a search context.
// Account subjects are usernames; the numeric user id is resolved through a
// profile lookup on the first page and memoized for the rest of the context.
func (s *Server) fetchFuncFor(mode, subject string) pager.FetchFunc {
	switch mode {
	case ModeAccount:
		var userID string
		return func(ctx context.Context, cursor string) (*models.CachedPage, error) {
			if userID == "" {
				profile, err := s.hiker.ProfileByUsername(ctx, subject)
				if err != nil {
					return nil, err
				}
				userID = profile.PK
			}
			page, err := s.hiker.MediasByUserID(ctx, userID, cursor)
			if err != nil {
				return nil, err
			}
			return &models.CachedPage{Posts: page.Posts, NextCursor: page.NextCursor}, nil
		}
	default:
		return func(ctx context.Context, cursor string) (*models.CachedPage, error) {
			page, err := s.hiker.PostsByKeyword(ctx, subject, cursor)
			if err != nil {
				return nil, err
			}
			return &models.CachedPage{Posts: page.Posts, NextCursor: page.NextCursor}, nil
		}
	}
}
