package seo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/niledreams/backend-travel/internal/common"
	"github.com/niledreams/backend-travel/internal/store"
)

type queryProvider interface {
	GetSEOEntryByPath(ctx context.Context, path string) (store.SEOEntry, error)
	ListSEOEntries(ctx context.Context, limit, offset int) ([]store.SEOEntry, error)
	UpsertSEOEntry(ctx context.Context, e store.SEOEntry) (store.SEOEntry, error)
	DeleteSEOEntry(ctx context.Context, id string) error
}

// Service resolves page metadata and redirects for marketing paths.
type Service struct {
	Queries queryProvider
}

// Resolution is the outcome of resolving a path.
type Resolution struct {
	Path        string  `json:"path"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	RedirectTo  *string `json:"redirect_to,omitempty"`
	StatusCode  int     `json:"status_code"`
}

// Resolve returns metadata or a redirect for the given path.
func (s *Service) Resolve(ctx context.Context, path string) (Resolution, error) {
	if s == nil || s.Queries == nil {
		return Resolution{}, errors.New("seo: service not configured")
	}
	path = normalizePath(path)
	if path == "" {
		return Resolution{}, common.NewAppError("VALIDATION", "path is required", http.StatusBadRequest, nil)
	}
	entry, err := s.Queries.GetSEOEntryByPath(ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		return Resolution{}, common.NewAppError("NOT_FOUND", "no seo entry for path", http.StatusNotFound, err)
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve seo path: %w", err)
	}
	return Resolution{
		Path:        entry.Path,
		Title:       entry.Title,
		Description: entry.Description,
		RedirectTo:  entry.RedirectTo,
		StatusCode:  entry.StatusCode,
	}, nil
}

// EntryInput captures payload for creating or updating an entry.
type EntryInput struct {
	Path        string  `json:"path"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	RedirectTo  *string `json:"redirect_to"`
	StatusCode  int     `json:"status_code"`
}

// Upsert validates and stores an entry.
func (s *Service) Upsert(ctx context.Context, in EntryInput) (store.SEOEntry, error) {
	if s == nil || s.Queries == nil {
		return store.SEOEntry{}, errors.New("seo: service not configured")
	}
	path := normalizePath(in.Path)
	if path == "" {
		return store.SEOEntry{}, common.NewAppError("VALIDATION", "path is required", http.StatusBadRequest, nil)
	}
	status := in.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	if in.RedirectTo != nil {
		target := normalizePath(*in.RedirectTo)
		if target == "" || target == path {
			return store.SEOEntry{}, common.NewAppError("VALIDATION", "redirect target must be a different path", http.StatusBadRequest, nil)
		}
		in.RedirectTo = &target
		if status != http.StatusMovedPermanently && status != http.StatusFound {
			status = http.StatusMovedPermanently
		}
	}
	entry, err := s.Queries.UpsertSEOEntry(ctx, store.SEOEntry{
		Path:        path,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		RedirectTo:  in.RedirectTo,
		StatusCode:  status,
	})
	if err != nil {
		return store.SEOEntry{}, fmt.Errorf("upsert seo entry: %w", err)
	}
	return entry, nil
}

// List returns entries for the dashboard.
func (s *Service) List(ctx context.Context, limit, offset int) ([]store.SEOEntry, error) {
	if s == nil || s.Queries == nil {
		return nil, errors.New("seo: service not configured")
	}
	return s.Queries.ListSEOEntries(ctx, limit, offset)
}

// Delete removes an entry by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s == nil || s.Queries == nil {
		return errors.New("seo: service not configured")
	}
	err := s.Queries.DeleteSEOEntry(ctx, strings.TrimSpace(id))
	if errors.Is(err, store.ErrNotFound) {
		return common.NewAppError("NOT_FOUND", "seo entry not found", http.StatusNotFound, err)
	}
	return err
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
