package api

import (
	"net/url"
	"strconv"
)

// ListParams are the common query parameters of paginated list endpoints.
// Zero values are omitted from the query string.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Status string
}

func (p ListParams) encode() string {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
