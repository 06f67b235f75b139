package query

import (
	"fmt"
	"sort"
	"strings"

	"crateview/app/tabular"
)

// Operator enumerates the column filter comparisons.
type Operator string

const (
	OpContains   Operator = "contains"
	OpEquals     Operator = "equals"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpGreater    Operator = "greater"
	OpLess       Operator = "less"
)

// ValidOperator reports whether op is one of the supported comparisons.
func ValidOperator(op Operator) bool {
	switch op {
	case OpContains, OpEquals, OpStartsWith, OpEndsWith, OpGreater, OpLess:
		return true
	}
	return false
}

// ColumnFilter narrows the row set on a single column. At most one filter is
// active per column; upserting a filter for an already-filtered column
// replaces it in place.
type ColumnFilter struct {
	Column   string   `json:"column"`
	Value    string   `json:"value"`
	Operator Operator `json:"operator"`
}

// SortDirection is the sort order for a sort key.
type SortDirection int

const (
	SortAsc SortDirection = iota
	SortDesc
)

func (d SortDirection) String() string {
	if d == SortDesc {
		return "desc"
	}
	return "asc"
}

// SortConfig names the active sort column and direction.
type SortConfig struct {
	Key       string        `json:"key"`
	Direction SortDirection `json:"direction"`
}

// DefaultItemsPerPage is used when no page size has been configured.
const DefaultItemsPerPage = 25

// State is the complete query configuration for one dataset: global search,
// ordered column filters, sort, pagination and the render-time column
// visibility projection. A view is always a pure function of (dataset, State).
type State struct {
	Search       string
	Filters      []ColumnFilter
	Sort         *SortConfig
	Page         int
	ItemsPerPage int
	Hidden       map[string]bool
}

// NewState returns a State with first-page defaults.
func NewState() State {
	return State{Page: 1, ItemsPerPage: DefaultItemsPerPage}
}

// Key returns a stable string identifying this state, used for view cache
// lookups. Identical query configurations always produce identical keys.
func (s State) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "search:%s", strings.ToLower(s.Search))
	for _, f := range s.Filters {
		fmt.Fprintf(&b, "|filter:%s:%s:%s", f.Column, f.Operator, f.Value)
	}
	if s.Sort != nil {
		fmt.Fprintf(&b, "|sort:%s:%s", s.Sort.Key, s.Sort.Direction)
	}
	fmt.Fprintf(&b, "|page:%d:%d", s.Page, s.ItemsPerPage)
	if len(s.Hidden) > 0 {
		hidden := make([]string, 0, len(s.Hidden))
		for col, off := range s.Hidden {
			if off {
				hidden = append(hidden, col)
			}
		}
		sort.Strings(hidden)
		fmt.Fprintf(&b, "|hidden:%s", strings.Join(hidden, ","))
	}
	return b.String()
}

// clone returns a copy safe to hand out without sharing filter or hidden state.
func (s State) clone() State {
	out := s
	out.Filters = append([]ColumnFilter(nil), s.Filters...)
	if s.Sort != nil {
		sc := *s.Sort
		out.Sort = &sc
	}
	if s.Hidden != nil {
		out.Hidden = make(map[string]bool, len(s.Hidden))
		for k, v := range s.Hidden {
			out.Hidden[k] = v
		}
	}
	return out
}

// View is the materialized result of applying search, filters, sort and
// pagination to a dataset. Rows holds only the current page, but TotalRows
// and TotalPages describe the whole filtered set.
type View struct {
	Columns        []string      `json:"columns"`
	VisibleColumns []string      `json:"visibleColumns"`
	Rows           []tabular.Row `json:"rows"`
	Page           int           `json:"page"`
	TotalPages     int           `json:"totalPages"`
	ItemsPerPage   int           `json:"itemsPerPage"`
	TotalRows      int           `json:"totalRows"`
}

// DisplayRows projects the page rows onto the visible columns, stringified
// for rendering. Hidden columns never affect search, filter, sort or export.
func (v *View) DisplayRows() [][]string {
	out := make([][]string, len(v.Rows))
	for i, row := range v.Rows {
		cells := make([]string, len(v.VisibleColumns))
		for j, col := range v.VisibleColumns {
			cells[j] = row[col].Text()
		}
		out[i] = cells
	}
	return out
}

// Size estimates the memory footprint of the view for cache accounting.
func (v *View) Size() int64 {
	size := int64(0)
	for _, col := range v.Columns {
		size += int64(len(col))
	}
	for _, row := range v.Rows {
		for col, val := range row {
			size += int64(len(col) + len(val.Str) + 16)
		}
	}
	return size
}
