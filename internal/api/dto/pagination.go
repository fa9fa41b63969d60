package dto

import (
	"math"
	"net/url"
	"strconv"
)

// Pagination is a validated page-number request.
type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePagination reads the page and limit query values. Invalid or missing
// values fall back to the first page and the default size, limit is capped
// at maxLimit. Absurdly large pages are clamped to an empty page.
func ParsePagination(page, limit string, defaultLimit, maxLimit int) Pagination {
	p := Pagination{Page: 1, Limit: defaultLimit}
	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limit); err == nil && n > 0 {
		p.Limit = n
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	// keep Page*Limit inside int32 so offsets never wrap
	if p.Limit > 0 && p.Page > math.MaxInt32/p.Limit {
		p.Page = math.MaxInt32 / p.Limit
	}
	return p
}

// Paginated is the list envelope of paginated endpoints.
type Paginated[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPaginated builds the envelope. Next and previous links are derived from
// requestURL by rewriting its page parameter.
func NewPaginated[T any](results []T, count int64, p Pagination, requestURL *url.URL) Paginated[T] {
	if results == nil {
		results = []T{}
	}
	out := Paginated[T]{Count: count, Results: results}
	if requestURL == nil {
		return out
	}
	if int64(p.Page*p.Limit) < count {
		next := pageURL(requestURL, p.Page+1)
		out.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(requestURL, p.Page-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(u *url.URL, page int) string {
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	cp := *u
	cp.RawQuery = q.Encode()
	return cp.String()
}
