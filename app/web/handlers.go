package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"crateview/app/archive"
	"crateview/app/query"
	"crateview/app/tree"
)

// maxUploadMemory bounds the multipart parse buffer; larger parts spill to
// temp files.
const maxUploadMemory = 32 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.respondError(w, r, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
		return
	}
	file, header, err := r.FormFile("archive")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, fmt.Errorf("missing archive file field: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	uploadedBy := r.FormValue("uploadedBy")
	if uploadedBy == "" {
		uploadedBy = "anonymous"
	}

	sum, err := s.app.UploadArchive(header.Filename, data, uploadedBy)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, archive.ErrUnsupportedFile) {
			status = http.StatusUnsupportedMediaType
		}
		s.respondError(w, r, status, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, sum)
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.app.ListUploads())
}

func (s *Server) handleRemoveUpload(w http.ResponseWriter, r *http.Request) {
	if err := s.app.RemoveUpload(chi.URLParam(r, "uploadID")); err != nil {
		s.respondError(w, r, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTree serves an upload's tree, optionally filtered by ?q= (name
// search) or ?glob= (path pattern) and reordered by ?sort=.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "uploadID")

	var (
		root *archive.Node
		err  error
	)
	switch {
	case r.URL.Query().Get("glob") != "":
		root, err = s.app.GlobTree(uploadID, r.URL.Query().Get("glob"))
	case r.URL.Query().Get("q") != "":
		root, err = s.app.SearchTree(uploadID, r.URL.Query().Get("q"))
	default:
		root, err = s.app.Tree(uploadID)
	}
	if err != nil {
		status := http.StatusNotFound
		if strings.Contains(err.Error(), "pattern") {
			status = http.StatusBadRequest
		}
		s.respondError(w, r, status, err)
		return
	}

	// Sort applies after search or glob so a filtered tree comes back
	// ordered too.
	if key := r.URL.Query().Get("sort"); key != "" && root != nil {
		sortKey := tree.SortKey(key)
		switch sortKey {
		case tree.SortByName, tree.SortByCreated:
			root = tree.Sort(root, sortKey)
		default:
			s.respondError(w, r, http.StatusBadRequest, fmt.Errorf("unknown sort key %q", key))
			return
		}
	}
	s.respondJSON(w, http.StatusOK, root)
}

// The request bodies below are named types rather than anonymous structs:
// ojg's recomposer caches struct metadata under PkgPath()+"/"+Name(), which
// is the same key ("/") for every anonymous struct, so the first anonymous
// struct decoded anywhere in the process hijacks all later ones.

type openFileRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleOpenFile(w http.ResponseWriter, r *http.Request) {
	var req openFileRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}
	sum, err := s.app.OpenFile(chi.URLParam(r, "uploadID"), req.Path)
	if err != nil {
		s.respondError(w, r, http.StatusNotFound, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, sum)
}

func (s *Server) handleListTabs(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.app.ListTabs())
}

func (s *Server) handleCloseTab(w http.ResponseWriter, r *http.Request) {
	if err := s.app.CloseTab(chi.URLParam(r, "tabID")); err != nil {
		s.respondError(w, r, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTabView(w http.ResponseWriter, r *http.Request) {
	view, err := s.app.TabView(chi.URLParam(r, "tabID"))
	if err != nil {
		s.respondError(w, r, http.StatusNotFound, err)
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleTabState(w http.ResponseWriter, r *http.Request) {
	st, err := s.app.TabState(chi.URLParam(r, "tabID"))
	if err != nil {
		s.respondError(w, r, http.StatusNotFound, err)
		return
	}
	s.respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleTabPayload(w http.ResponseWriter, r *http.Request) {
	payload, err := s.app.PDFPayload(chi.URLParam(r, "tabID"))
	if err != nil {
		s.respondError(w, r, http.StatusNotFound, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Write(payload)
}

type searchRequest struct {
	Term string `json:"term"`
}

func (s *Server) handleSetSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}
	s.tabMutation(w, r, s.app.SetTabSearch(chi.URLParam(r, "tabID"), req.Term))
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var f query.ColumnFilter
	if err := decodeBody(r, &f); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}
	s.tabMutation(w, r, s.app.SetTabFilter(chi.URLParam(r, "tabID"), f))
}

func (s *Server) handleRemoveFilter(w http.ResponseWriter, r *http.Request) {
	s.tabMutation(w, r, s.app.RemoveTabFilter(chi.URLParam(r, "tabID"), chi.URLParam(r, "column")))
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	s.tabMutation(w, r, s.app.ClearTabFilters(chi.URLParam(r, "tabID")))
}

type sortRequest struct {
	Column string `json:"column"`
}

func (s *Server) handleSetSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}
	s.tabMutation(w, r, s.app.SetTabSort(chi.URLParam(r, "tabID"), req.Column))
}

type pageRequest struct {
	Page int `json:"page"`
}

func (s *Server) handleSetPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}
	s.tabMutation(w, r, s.app.SetTabPage(chi.URLParam(r, "tabID"), req.Page))
}

type pageSizeRequest struct {
	ItemsPerPage int `json:"itemsPerPage"`
}

func (s *Server) handleSetPageSize(w http.ResponseWriter, r *http.Request) {
	var req pageSizeRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}
	s.tabMutation(w, r, s.app.SetTabItemsPerPage(chi.URLParam(r, "tabID"), req.ItemsPerPage))
}

type columnVisibleRequest struct {
	Column  string `json:"column"`
	Visible bool   `json:"visible"`
}

func (s *Server) handleSetColumnVisible(w http.ResponseWriter, r *http.Request) {
	var req columnVisibleRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}
	s.tabMutation(w, r, s.app.SetTabColumnVisible(chi.URLParam(r, "tabID"), req.Column, req.Visible))
}

// tabMutation finishes a state-changing tab request by replying with the
// refreshed view, so clients repaint without a second round trip.
func (s *Server) tabMutation(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "unknown tab") {
			status = http.StatusNotFound
		}
		s.respondError(w, r, status, err)
		return
	}
	view, err := s.app.TabView(chi.URLParam(r, "tabID"))
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.app.ExportCSV(chi.URLParam(r, "tabID"))
	if err != nil {
		s.respondError(w, r, http.StatusNotFound, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.app.ExportXLSX(chi.URLParam(r, "tabID"))
	if err != nil {
		s.respondError(w, r, http.StatusNotFound, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats := s.app.CacheStats()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"entries":     stats.Entries,
		"currentSize": stats.CurrentSize,
		"maxSize":     stats.MaxSize,
		"hits":        stats.Hits,
		"misses":      stats.Misses,
	})
}
