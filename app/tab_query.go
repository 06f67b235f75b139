package app

import (
	"fmt"
	"time"

	"crateview/app/archive"
	"crateview/app/cache"
	"crateview/app/metrics"
	"crateview/app/query"
)

// withCSVTab runs fn against a CSV tab's engine under the app lock. Engines
// are not internally synchronized, so every engine touch goes through here.
func (a *App) withCSVTab(id string, fn func(*FileTab) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	tab, ok := a.tabs[id]
	if !ok {
		return fmt.Errorf("unknown tab %q", id)
	}
	if tab.FileType != archive.FileTypeCSV || tab.Engine == nil {
		return fmt.Errorf("tab %q has no table data", id)
	}
	return fn(tab)
}

// SetTabSearch sets the global search term for a tab.
func (a *App) SetTabSearch(id, term string) error {
	return a.withCSVTab(id, func(tab *FileTab) error {
		tab.Engine.SetGlobalSearch(term)
		return nil
	})
}

// SetTabFilter adds a column filter to a tab, replacing any existing filter
// on the same column.
func (a *App) SetTabFilter(id string, f query.ColumnFilter) error {
	if !query.ValidOperator(f.Operator) {
		return fmt.Errorf("unknown filter operator %q", f.Operator)
	}
	return a.withCSVTab(id, func(tab *FileTab) error {
		if !hasColumn(tab.Engine.Dataset().Columns, f.Column) {
			return fmt.Errorf("unknown column %q", f.Column)
		}
		tab.Engine.UpsertColumnFilter(f)
		return nil
	})
}

// RemoveTabFilter removes the filter on the given column, if any.
func (a *App) RemoveTabFilter(id, column string) error {
	return a.withCSVTab(id, func(tab *FileTab) error {
		tab.Engine.RemoveColumnFilter(column)
		return nil
	})
}

// ClearTabFilters removes the search term and all column filters.
func (a *App) ClearTabFilters(id string) error {
	return a.withCSVTab(id, func(tab *FileTab) error {
		tab.Engine.ClearAll()
		return nil
	})
}

// SetTabSort sorts a tab by the given column, toggling direction when the
// column is already the sort key.
func (a *App) SetTabSort(id, column string) error {
	return a.withCSVTab(id, func(tab *FileTab) error {
		if !hasColumn(tab.Engine.Dataset().Columns, column) {
			return fmt.Errorf("unknown column %q", column)
		}
		tab.Engine.SetSort(column)
		return nil
	})
}

// SetTabPage moves a tab to the given page, clamped to the valid range.
func (a *App) SetTabPage(id string, page int) error {
	return a.withCSVTab(id, func(tab *FileTab) error {
		tab.Engine.GoToPage(page)
		return nil
	})
}

// SetTabItemsPerPage changes a tab's page size.
func (a *App) SetTabItemsPerPage(id string, n int) error {
	if n <= 0 {
		return fmt.Errorf("items per page must be positive, got %d", n)
	}
	return a.withCSVTab(id, func(tab *FileTab) error {
		tab.Engine.SetItemsPerPage(n)
		return nil
	})
}

// SetTabColumnVisible toggles a column in or out of the rendered view.
// Hidden columns still participate in search, filter, sort and export.
func (a *App) SetTabColumnVisible(id, column string, visible bool) error {
	return a.withCSVTab(id, func(tab *FileTab) error {
		if !hasColumn(tab.Engine.Dataset().Columns, column) {
			return fmt.Errorf("unknown column %q", column)
		}
		tab.Engine.SetColumnVisible(column, visible)
		return nil
	})
}

// TabState returns a tab's current query state.
func (a *App) TabState(id string) (query.State, error) {
	var st query.State
	err := a.withCSVTab(id, func(tab *FileTab) error {
		st = tab.Engine.State()
		return nil
	})
	return st, err
}

// TabView materializes the current page for a tab, consulting the view
// cache first when caching is enabled.
func (a *App) TabView(id string) (*query.View, error) {
	var view *query.View
	err := a.withCSVTab(id, func(tab *FileTab) error {
		key := cache.BuildKey(tab.Hash, tab.Engine.State().Key())
		if a.settings.EnableViewCache {
			if cached, ok := a.viewCache.Get(key); ok {
				metrics.RecordViewCache("hit")
				view = cached
				return nil
			}
			metrics.RecordViewCache("miss")
		}

		start := time.Now()
		view = tab.Engine.View()
		metrics.ObserveQuerySeconds(time.Since(start).Seconds())

		if a.settings.EnableViewCache {
			a.viewCache.Store(key, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func hasColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}
