// internal/domain/filter.go
package domain

import (
	"sort"
	"strings"
	"time"
)

// Grouping modes for analysis rows.
const (
	GroupBySKU      = "sku"
	GroupByCategory = "category"
	GroupByCustom   = "custom"
)

// Searchable fields for the free-text filter.
const (
	SearchFieldName       = "name"
	SearchFieldSKU        = "sku"
	SearchFieldVendor     = "vendor"
	SearchFieldCategory   = "category"
	SearchFieldDepartment = "department"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// FilterState carries every query parameter governing an analysis pass.
// Empty slices mean "no restriction"; an empty Properties slice matches
// all store locations.
type FilterState struct {
	DateStart time.Time `json:"dateStart"`
	DateEnd   time.Time `json:"dateEnd"`

	Properties []string `json:"properties,omitempty"`

	Search       string   `json:"search,omitempty"`
	SearchFields []string `json:"searchFields,omitempty"`

	Categories  []string `json:"categories,omitempty"`
	Departments []string `json:"departments,omitempty"`
	Vendors     []string `json:"vendors,omitempty"`

	GroupBy       string `json:"groupBy"`
	SortField     string `json:"sortField,omitempty"`
	SortDirection string `json:"sortDirection,omitempty"`

	HideZeroSales  bool `json:"hideZeroSales,omitempty"`
	HideZeroOnHand bool `json:"hideZeroOnHand,omitempty"`

	// VisibleColumns is presentation state carried through for the
	// caller; it never affects computed values.
	VisibleColumns []string `json:"visibleColumns,omitempty"`
}

// EffectiveSearchFields returns the configured search fields, defaulting
// to name+SKU when none are chosen.
func (f *FilterState) EffectiveSearchFields() []string {
	if len(f.SearchFields) == 0 {
		return []string{SearchFieldName, SearchFieldSKU}
	}
	return f.SearchFields
}

// MatchesProperty reports whether a store location passes the selected
// location set. An empty set matches everything.
func (f *FilterState) MatchesProperty(property string) bool {
	if len(f.Properties) == 0 {
		return true
	}
	for _, p := range f.Properties {
		if p == property {
			return true
		}
	}
	return false
}

// InDateRange reports whether a date's calendar-day component falls
// inside [DateStart, DateEnd], inclusive. Time-of-day is ignored.
func (f *FilterState) InDateRange(date time.Time) bool {
	day := date.Format(time.DateOnly)
	return day >= f.DateStart.Format(time.DateOnly) && day <= f.DateEnd.Format(time.DateOnly)
}

// MonthsDiff returns the window length in 30-day months, floored at 1 so
// sub-30-day windows still count as one month of exposure.
func (f *FilterState) MonthsDiff() float64 {
	days := f.DateEnd.Sub(f.DateStart).Hours() / 24
	months := days / 30
	if months < 1 {
		return 1
	}
	return months
}

// Fingerprint serializes the filter into a canonical string for cache
// keys and memoization. Slice order is normalized so two equivalent
// filters always produce the same key. VisibleColumns is deliberately
// excluded: toggling a column must not invalidate cached results.
func (f *FilterState) Fingerprint() string {
	var b strings.Builder
	b.WriteString("range=")
	b.WriteString(f.DateStart.Format(time.DateOnly))
	b.WriteString("..")
	b.WriteString(f.DateEnd.Format(time.DateOnly))
	writeSet(&b, "props", f.Properties)
	b.WriteString("|search=")
	b.WriteString(strings.ToLower(f.Search))
	writeSet(&b, "searchFields", f.EffectiveSearchFields())
	writeSet(&b, "categories", f.Categories)
	writeSet(&b, "departments", f.Departments)
	writeSet(&b, "vendors", f.Vendors)
	b.WriteString("|groupBy=")
	b.WriteString(f.GroupBy)
	b.WriteString("|sort=")
	b.WriteString(f.SortField)
	b.WriteString(":")
	b.WriteString(f.SortDirection)
	if f.HideZeroSales {
		b.WriteString("|hideZeroSales")
	}
	if f.HideZeroOnHand {
		b.WriteString("|hideZeroOnHand")
	}
	return b.String()
}

func writeSet(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	b.WriteString("|")
	b.WriteString(label)
	b.WriteString("=")
	b.WriteString(strings.Join(sorted, ","))
}
