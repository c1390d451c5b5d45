package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	applog "convivio/internal/log"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

// writeErrors renders the flat {"errors": "..."} envelope used by every
// domain-rule rejection.
func writeErrors(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"errors": message})
}

type pageParams struct {
	page   int
	limit  int
	offset int
}

func pagination(r *http.Request) pageParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return pageParams{page: page, limit: limit, offset: (page - 1) * limit}
}

type paginatedResponse struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// paginate wraps results with page metadata. Next and previous are the
// request URL with only the page parameter rewritten.
func paginate(r *http.Request, params pageParams, count int64, results any) paginatedResponse {
	resp := paginatedResponse{Count: count, Results: results}

	if int64(params.offset+params.limit) < count {
		next := pageURL(r, params.page+1)
		resp.Next = &next
	}
	if params.page > 1 {
		previous := pageURL(r, params.page-1)
		resp.Previous = &previous
	}

	return resp
}

func pageURL(r *http.Request, page int) string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
