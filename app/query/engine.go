package query

import (
	"sort"
	"strconv"
	"strings"

	"crateview/app/tabular"
)

// Engine serves interactive queries over one parsed dataset. It owns the
// current query State and derives views from scratch on demand; the dataset
// itself is never mutated, so previous views stay valid for their holders.
type Engine struct {
	ds    *tabular.Dataset
	state State
}

// NewEngine creates an engine over a parsed dataset with default state.
func NewEngine(ds *tabular.Dataset) *Engine {
	return &Engine{ds: ds, state: NewState()}
}

// NewEngineWithPageSize creates an engine with a configured page size.
func NewEngineWithPageSize(ds *tabular.Dataset, itemsPerPage int) *Engine {
	e := NewEngine(ds)
	if itemsPerPage > 0 {
		e.state.ItemsPerPage = itemsPerPage
	}
	return e
}

// Dataset returns the underlying dataset.
func (e *Engine) Dataset() *tabular.Dataset {
	return e.ds
}

// State returns a copy of the current query state.
func (e *Engine) State() State {
	return e.state.clone()
}

// SetGlobalSearch sets the search term matched against every column of every
// row. Changing the search resets pagination to the first page.
func (e *Engine) SetGlobalSearch(term string) {
	e.state.Search = term
	e.state.Page = 1
}

// UpsertColumnFilter adds a filter, or replaces the existing filter for the
// same column in place. Resets pagination to the first page.
func (e *Engine) UpsertColumnFilter(f ColumnFilter) {
	for i := range e.state.Filters {
		if e.state.Filters[i].Column == f.Column {
			e.state.Filters[i] = f
			e.state.Page = 1
			return
		}
	}
	e.state.Filters = append(e.state.Filters, f)
	e.state.Page = 1
}

// RemoveColumnFilter removes the filter on the given column, if any.
func (e *Engine) RemoveColumnFilter(column string) {
	for i := range e.state.Filters {
		if e.state.Filters[i].Column == column {
			e.state.Filters = append(e.state.Filters[:i], e.state.Filters[i+1:]...)
			e.state.Page = 1
			return
		}
	}
}

// ClearAll removes every column filter and the global search term in one
// reset, returning to the first page.
func (e *Engine) ClearAll() {
	e.state.Search = ""
	e.state.Filters = nil
	e.state.Page = 1
}

// SetSort selects the sort column. Selecting the current sort key flips the
// direction; selecting a new key starts ascending.
func (e *Engine) SetSort(column string) {
	if e.state.Sort != nil && e.state.Sort.Key == column {
		if e.state.Sort.Direction == SortAsc {
			e.state.Sort.Direction = SortDesc
		} else {
			e.state.Sort.Direction = SortAsc
		}
	} else {
		e.state.Sort = &SortConfig{Key: column, Direction: SortAsc}
	}
	e.state.Page = 1
}

// SetItemsPerPage changes the page size and returns to the first page.
func (e *Engine) SetItemsPerPage(n int) {
	if n <= 0 {
		n = DefaultItemsPerPage
	}
	e.state.ItemsPerPage = n
	e.state.Page = 1
}

// GoToPage moves to the requested page, clamped to the valid range for the
// current filtered set. There is always at least one page, even when empty.
func (e *Engine) GoToPage(n int) {
	total := len(Apply(e.ds, e.state))
	e.state.Page = clampPage(n, total, e.state.ItemsPerPage)
}

// SetColumnVisible toggles the render-time visibility of a column. This is a
// pure projection: it never affects search, filters, sort, counts or export.
func (e *Engine) SetColumnVisible(column string, visible bool) {
	if e.state.Hidden == nil {
		e.state.Hidden = make(map[string]bool)
	}
	e.state.Hidden[column] = !visible
}

// FilteredRows returns the full filtered and sorted row set, not just the
// visible page. This is what export serializes.
func (e *Engine) FilteredRows() []tabular.Row {
	return Apply(e.ds, e.state)
}

// View materializes the current page. The evaluation order is fixed: global
// search, then each column filter in the order it was added, then the stable
// sort, then pagination over the surviving set.
func (e *Engine) View() *View {
	rows := Apply(e.ds, e.state)

	total := len(rows)
	totalPages := pageCount(total, e.state.ItemsPerPage)
	page := clampPage(e.state.Page, total, e.state.ItemsPerPage)
	e.state.Page = page

	start := (page - 1) * e.state.ItemsPerPage
	end := start + e.state.ItemsPerPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	visible := make([]string, 0, len(e.ds.Columns))
	for _, col := range e.ds.Columns {
		if !e.state.Hidden[col] {
			visible = append(visible, col)
		}
	}

	return &View{
		Columns:        e.ds.Columns,
		VisibleColumns: visible,
		Rows:           rows[start:end],
		Page:           page,
		TotalPages:     totalPages,
		ItemsPerPage:   e.state.ItemsPerPage,
		TotalRows:      total,
	}
}

// Apply evaluates search, column filters and sort over the dataset and
// returns the surviving rows as a new slice. It is a pure function of its
// inputs; the dataset's own row slice is never reordered.
func Apply(ds *tabular.Dataset, st State) []tabular.Row {
	rows := ds.Rows

	if term := strings.ToLower(strings.TrimSpace(st.Search)); term != "" {
		matched := make([]tabular.Row, 0, len(rows))
		for _, row := range rows {
			if rowMatchesSearch(row, ds.Columns, term) {
				matched = append(matched, row)
			}
		}
		rows = matched
	}

	for _, f := range st.Filters {
		matched := make([]tabular.Row, 0, len(rows))
		for _, row := range rows {
			if matchFilter(row, f) {
				matched = append(matched, row)
			}
		}
		rows = matched
	}

	if st.Sort != nil {
		sorted := make([]tabular.Row, len(rows))
		copy(sorted, rows)
		sortRows(sorted, st.Sort.Key, st.Sort.Direction == SortDesc)
		rows = sorted
	} else if len(rows) == len(ds.Rows) {
		// Hand out a copy so callers cannot alias the dataset's backing slice
		rows = append([]tabular.Row(nil), rows...)
	}

	return rows
}

// rowMatchesSearch reports whether any column's stringified value contains
// the lower-cased search term.
func rowMatchesSearch(row tabular.Row, columns []string, term string) bool {
	for _, col := range columns {
		if strings.Contains(strings.ToLower(row[col].Text()), term) {
			return true
		}
	}
	return false
}

// matchFilter applies one column filter to a row. Text operators compare
// lower-cased string forms; greater/less compare numerically and degenerate
// to false when either side is not a number.
func matchFilter(row tabular.Row, f ColumnFilter) bool {
	val := row[f.Column]

	switch f.Operator {
	case OpGreater, OpLess:
		n, ok := val.Float()
		if !ok {
			return false
		}
		want, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
		if err != nil {
			return false
		}
		if f.Operator == OpGreater {
			return n > want
		}
		return n < want
	}

	have := strings.ToLower(val.Text())
	want := strings.ToLower(f.Value)
	switch f.Operator {
	case OpEquals:
		return have == want
	case OpStartsWith:
		return strings.HasPrefix(have, want)
	case OpEndsWith:
		return strings.HasSuffix(have, want)
	default: // OpContains and anything unrecognized
		return strings.Contains(have, want)
	}
}

// sortRows stable-sorts rows by one key. When both values are numbers the
// comparison is numeric; otherwise it falls back to lower-cased strings, so
// equal keys keep their relative input order.
func sortRows(rows []tabular.Row, key string, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][key], rows[j][key]

		var cmp int
		an, aok := a.Float()
		bn, bok := b.Float()
		if aok && bok {
			switch {
			case an < bn:
				cmp = -1
			case an > bn:
				cmp = 1
			}
		} else {
			cmp = strings.Compare(strings.ToLower(a.Text()), strings.ToLower(b.Text()))
		}

		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// pageCount returns the number of pages for a filtered total, minimum one.
func pageCount(total, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultItemsPerPage
	}
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	return pages
}

// clampPage clamps a requested page into [1, pageCount].
func clampPage(page, total, perPage int) int {
	max := pageCount(total, perPage)
	if page < 1 {
		return 1
	}
	if page > max {
		return max
	}
	return page
}
