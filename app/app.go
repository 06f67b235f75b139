// Package app is the crateview service layer. It owns uploaded archive
// trees and open file tabs, and routes tree and table operations to the
// archive, tree, tabular and query packages.
package app

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crateview/app/archive"
	"crateview/app/cache"
	"crateview/app/query"
	"crateview/app/settings"
	"crateview/app/tabular"
)

// Upload is one extracted archive held in memory.
type Upload struct {
	ID         string
	Name       string
	Hash       string
	Root       *archive.Node
	UploadedAt time.Time
	Entries    int
	Skipped    int
	Dropped    int
}

// UploadSummary is the client-facing description of an upload.
type UploadSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploadedAt"`
	Nodes      int       `json:"nodes"`
	Skipped    int       `json:"skipped"`
	Dropped    int       `json:"dropped"`
}

// App holds all server state.
type App struct {
	logger   *zap.Logger
	settings settings.Settings

	mu      sync.RWMutex
	uploads map[string]*Upload  // keyed by upload ID
	tabs    map[string]*FileTab // keyed by tab ID

	viewCache *cache.Cache
}

// New creates an App wired to the given logger, with the view cache sized
// from effective settings.
func New(logger *zap.Logger) *App {
	s := settings.GetEffectiveSettings()
	a := &App{
		logger:    logger,
		settings:  s,
		uploads:   make(map[string]*Upload),
		tabs:      make(map[string]*FileTab),
		viewCache: cache.New(int64(s.CacheSizeLimitMB) * 1024 * 1024),
	}
	a.viewCache.SetLogger(zapCacheLogger{logger})
	return a
}

// Settings returns the settings the app was started with.
func (a *App) Settings() settings.Settings {
	return a.settings
}

// GetUpload returns the upload with the given ID.
func (a *App) GetUpload(id string) (*Upload, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	up, ok := a.uploads[id]
	if !ok {
		return nil, fmt.Errorf("unknown upload %q", id)
	}
	return up, nil
}

// ListUploads returns summaries of all uploads, newest first.
func (a *App) ListUploads() []UploadSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]UploadSummary, 0, len(a.uploads))
	for _, up := range a.uploads {
		out = append(out, summarizeUpload(up))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// RemoveUpload drops an upload, closes its tabs and invalidates its cached
// views.
func (a *App) RemoveUpload(id string) error {
	a.mu.Lock()
	up, ok := a.uploads[id]
	if !ok {
		a.mu.Unlock()
		return fmt.Errorf("unknown upload %q", id)
	}
	delete(a.uploads, id)
	var closed []string
	for tabID, tab := range a.tabs {
		if tab.UploadID == id {
			delete(a.tabs, tabID)
			closed = append(closed, tabID)
		}
	}
	openTabs := len(a.tabs)
	a.mu.Unlock()

	evicted := a.viewCache.InvalidatePrefix(cache.DatasetPrefix(up.Hash))
	a.logger.Info("upload removed",
		zap.String("uploadId", id),
		zap.Int("tabsClosed", len(closed)),
		zap.Int("viewsEvicted", evicted))
	updateTabGauge(openTabs)
	return nil
}

// CacheStats reports view cache usage.
func (a *App) CacheStats() cache.Stats {
	return a.viewCache.Stats()
}

func summarizeUpload(up *Upload) UploadSummary {
	return UploadSummary{
		ID:         up.ID,
		Name:       up.Name,
		UploadedAt: up.UploadedAt,
		Nodes:      archive.CountNodes(up.Root),
		Skipped:    up.Skipped,
		Dropped:    up.Dropped,
	}
}

func newID() string {
	return uuid.NewString()
}

// zapCacheLogger adapts the zap logger to the cache's Log interface.
type zapCacheLogger struct {
	l *zap.Logger
}

func (z zapCacheLogger) Log(level, message string) {
	switch level {
	case "warning", "error":
		z.l.Warn(message)
	default:
		z.l.Debug(message)
	}
}

func (a *App) newEngine(ds *tabular.Dataset) *query.Engine {
	if a.settings.ItemsPerPage > 0 && a.settings.ItemsPerPage != query.DefaultItemsPerPage {
		return query.NewEngineWithPageSize(ds, a.settings.ItemsPerPage)
	}
	return query.NewEngine(ds)
}
