package httpapi

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"companion_mock/internal/model"
)

const (
	defaultPageSize = 10
	tagPageSize     = 50
)

type pageQuery struct {
	Page int
	Size int
}

// readPage parses 1-based page/size. Missing, malformed or non-positive values
// fall back to page 1 and defSize.
func readPage(q url.Values, defSize int) pageQuery {
	return pageQuery{
		Page: positiveInt(q.Get("page"), 1),
		Size: positiveInt(q.Get("size"), defSize),
	}
}

func positiveInt(v string, def int) int {
	n, err := parseInt(v, def)
	if err != nil || n < 1 {
		return def
	}
	return n
}

type pageResult[T any] struct {
	List       []T  `json:"list"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Size       int  `json:"size"`
	TotalPages *int `json:"totalPages,omitempty"`
}

// paginate returns the half-open window [(page-1)*size, page*size) of items.
// A page past the end yields an empty list.
func paginate[T any](items []T, p pageQuery, withTotalPages bool) pageResult[T] {
	total := len(items)
	pages := pageCount(total, p.Size)
	// page and size come straight from the query, so page*size may overflow;
	// only multiply once the page is known to be in range.
	start := total
	if p.Page-1 < pages {
		start = (p.Page - 1) * p.Size
	}
	end := start + min(p.Size, total-start)

	list := make([]T, 0, end-start)
	list = append(list, items[start:end]...)

	res := pageResult[T]{List: list, Total: total, Page: p.Page, Size: p.Size}
	if withTotalPages {
		res.TotalPages = &pages
	}
	return res
}

func pageCount(total, size int) int {
	n := total / size
	if total%size != 0 {
		n++
	}
	return n
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// newestFirst sorts by creation time, descending. Equal timestamps keep
// insertion order.
func newestFirst[T any](items []T, createdAt func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		return model.ParseTime(createdAt(b)).Compare(model.ParseTime(createdAt(a)))
	})
}

// queryList collects a repeated parameter, accepting both key=a&key=b and
// key[]=a&key[]=b. Empty values are dropped.
func queryList(q url.Values, key string) []string {
	var out []string
	for _, v := range append(q[key], q[key+"[]"]...) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// queryFloat reports false when the parameter is absent or not a number.
func queryFloat(q url.Values, key string) (float64, bool) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseInt(v string, def int) (int, error) {
	if strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}
	return n, nil
}

// formatHours renders an hour count without a trailing ".0".
func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func unixMilli(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
