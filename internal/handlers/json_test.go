package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPagination(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   pageParams
	}{
		{"defaults", "/api/recipes", pageParams{page: 1, limit: 6, offset: 0}},
		{"explicit", "/api/recipes?page=3&limit=10", pageParams{page: 3, limit: 10, offset: 20}},
		{"zero page clamps", "/api/recipes?page=0", pageParams{page: 1, limit: 6, offset: 0}},
		{"oversized limit resets", "/api/recipes?limit=5000", pageParams{page: 1, limit: 6, offset: 0}},
		{"garbage ignored", "/api/recipes?page=abc&limit=xyz", pageParams{page: 1, limit: 6, offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if got := pagination(req); got != tt.want {
				t.Fatalf("pagination() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPaginateLinks(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/recipes?page=2&limit=2&tags=dinner", nil)
	params := pagination(req)

	resp := paginate(req, params, 5, []int{3, 4})
	if resp.Count != 5 {
		t.Fatalf("unexpected count %d", resp.Count)
	}
	if resp.Next == nil || !strings.Contains(*resp.Next, "page=3") {
		t.Fatalf("unexpected next link %v", resp.Next)
	}
	if !strings.Contains(*resp.Next, "tags=dinner") {
		t.Fatalf("next link dropped other query parameters: %v", *resp.Next)
	}
	if resp.Previous == nil || !strings.Contains(*resp.Previous, "page=1") {
		t.Fatalf("unexpected previous link %v", resp.Previous)
	}

	resp = paginate(req, pageParams{page: 1, limit: 10, offset: 0}, 5, nil)
	if resp.Next != nil || resp.Previous != nil {
		t.Fatalf("single page must carry no links, got next=%v previous=%v", resp.Next, resp.Previous)
	}
}
