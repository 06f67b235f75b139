package app

import (
	"fmt"
	"path"
	"sort"
	"time"

	"go.uber.org/zap"

	"crateview/app/archive"
	"crateview/app/cache"
	"crateview/app/metrics"
	"crateview/app/query"
	"crateview/app/tabular"
)

// FileTab is one opened file. CSV tabs carry a query engine over the parsed
// dataset; PDF tabs carry the raw payload for client-side rendering.
type FileTab struct {
	ID       string
	UploadID string
	Path     string
	Name     string
	FileType archive.FileType
	Hash     string
	OpenedAt time.Time

	// csv only
	Engine *query.Engine

	// pdf only
	Payload []byte
}

// TabSummary is the client-facing description of a tab.
type TabSummary struct {
	ID       string           `json:"id"`
	UploadID string           `json:"uploadId"`
	Path     string           `json:"path"`
	Name     string           `json:"name"`
	FileType archive.FileType `json:"fileType"`
	OpenedAt time.Time        `json:"openedAt"`
	Rows     int              `json:"rows,omitempty"`
	Columns  int              `json:"columns,omitempty"`
	Bytes    int              `json:"bytes,omitempty"`
}

// OpenFile opens the file at the given slash-separated path (relative to the
// upload's root) in a new tab. CSV payloads are parsed into a dataset; PDF
// payloads are handed over untouched.
func (a *App) OpenFile(uploadID, filePath string) (TabSummary, error) {
	up, err := a.GetUpload(uploadID)
	if err != nil {
		return TabSummary{}, err
	}
	node := up.Root.Find(filePath)
	if node == nil {
		return TabSummary{}, fmt.Errorf("no such file %q in upload %q", filePath, uploadID)
	}
	if node.IsDir {
		return TabSummary{}, fmt.Errorf("%q is a folder, not a file", filePath)
	}

	hash, err := HashBytes(node.Payload)
	if err != nil {
		return TabSummary{}, err
	}

	tab := &FileTab{
		ID:       newID(),
		UploadID: uploadID,
		Path:     filePath,
		Name:     path.Base(filePath),
		FileType: node.FileType,
		Hash:     hash,
		OpenedAt: time.Now(),
	}

	switch node.FileType {
	case archive.FileTypeCSV:
		ds, err := tabular.Parse(string(node.Payload))
		if err != nil {
			return TabSummary{}, fmt.Errorf("parse %s: %w", filePath, err)
		}
		tab.Engine = a.newEngine(ds)
	case archive.FileTypePDF:
		tab.Payload = node.Payload
	default:
		return TabSummary{}, fmt.Errorf("unsupported file type %q", node.FileType)
	}

	a.mu.Lock()
	a.tabs[tab.ID] = tab
	open := len(a.tabs)
	a.mu.Unlock()

	updateTabGauge(open)
	a.logger.Info("file opened",
		zap.String("tabId", tab.ID),
		zap.String("uploadId", uploadID),
		zap.String("path", filePath),
		zap.String("fileType", string(tab.FileType)))
	return summarizeTab(tab), nil
}

// GetTab returns the tab with the given ID.
func (a *App) GetTab(id string) (*FileTab, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	tab, ok := a.tabs[id]
	if !ok {
		return nil, fmt.Errorf("unknown tab %q", id)
	}
	return tab, nil
}

// ListTabs returns summaries of all open tabs, oldest first.
func (a *App) ListTabs() []TabSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]TabSummary, 0, len(a.tabs))
	for _, tab := range a.tabs {
		out = append(out, summarizeTab(tab))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].OpenedAt.Before(out[j].OpenedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CloseTab closes a tab and invalidates its cached views.
func (a *App) CloseTab(id string) error {
	a.mu.Lock()
	tab, ok := a.tabs[id]
	if !ok {
		a.mu.Unlock()
		return fmt.Errorf("unknown tab %q", id)
	}
	delete(a.tabs, id)
	open := len(a.tabs)
	a.mu.Unlock()

	evicted := a.viewCache.InvalidatePrefix(cache.DatasetPrefix(tab.Hash))
	updateTabGauge(open)
	a.logger.Info("tab closed",
		zap.String("tabId", id),
		zap.Int("viewsEvicted", evicted))
	return nil
}

// PDFPayload returns the raw bytes of a PDF tab.
func (a *App) PDFPayload(id string) ([]byte, error) {
	tab, err := a.GetTab(id)
	if err != nil {
		return nil, err
	}
	if tab.FileType != archive.FileTypePDF {
		return nil, fmt.Errorf("tab %q is not a pdf", id)
	}
	return tab.Payload, nil
}

func summarizeTab(tab *FileTab) TabSummary {
	s := TabSummary{
		ID:       tab.ID,
		UploadID: tab.UploadID,
		Path:     tab.Path,
		Name:     tab.Name,
		FileType: tab.FileType,
		OpenedAt: tab.OpenedAt,
	}
	if tab.Engine != nil {
		ds := tab.Engine.Dataset()
		s.Rows = len(ds.Rows)
		s.Columns = len(ds.Columns)
	}
	if tab.Payload != nil {
		s.Bytes = len(tab.Payload)
	}
	return s
}

func updateTabGauge(open int) {
	metrics.SetOpenTabs(open)
}
