// Package pagination reads limit/offset query parameters and pages
// in-memory result sets.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Params struct {
	Limit  int
	Offset int
}

// FromContext reads ?limit and ?offset. Missing or non-positive limits fall
// back to DefaultLimit, large ones are capped at MaxLimit, and a negative
// offset becomes zero.
func FromContext(c echo.Context) Params {
	p := Params{Limit: atoi(c.QueryParam("limit")), Offset: atoi(c.QueryParam("offset"))}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	p.Offset = max(p.Offset, 0)
	return p
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Page is one window of a larger result set.
type Page[T any] struct {
	Data    []T  `json:"data"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// Paginate cuts the window p selects out of items. Data is never nil, so an
// empty page encodes as [].
func Paginate[T any](items []T, p Params) Page[T] {
	data := []T{}
	if p.Offset < len(items) {
		end := min(p.Offset+p.Limit, len(items))
		data = items[p.Offset:end]
	}
	return Page[T]{
		Data:    data,
		Total:   len(items),
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.Offset+p.Limit < len(items),
	}
}
