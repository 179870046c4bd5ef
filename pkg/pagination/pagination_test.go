package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextFor(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(contextFor("/"))

	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", p.Offset)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	p := FromContext(contextFor("/?limit=5&offset=10"))

	if p.Limit != 5 {
		t.Errorf("expected limit 5, got %d", p.Limit)
	}
	if p.Offset != 10 {
		t.Errorf("expected offset 10, got %d", p.Offset)
	}
}

func TestFromContext_MaxLimit(t *testing.T) {
	p := FromContext(contextFor("/?limit=500"))
	if p.Limit != MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_NegativeOffset(t *testing.T) {
	p := FromContext(contextFor("/?offset=-3"))
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name    string
		p       Params
		want    []int
		hasMore bool
	}{
		{"first page", Params{Limit: 2, Offset: 0}, []int{1, 2}, true},
		{"last partial page", Params{Limit: 2, Offset: 4}, []int{5}, false},
		{"exact last page", Params{Limit: 2, Offset: 3}, []int{4, 5}, false},
		{"past the end", Params{Limit: 2, Offset: 9}, []int{}, false},
		{"everything", Params{Limit: 20, Offset: 0}, items, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(items, tt.p)
			if page.Total != len(items) || page.Limit != tt.p.Limit || page.Offset != tt.p.Offset {
				t.Errorf("unexpected page header %+v", page)
			}
			if page.HasMore != tt.hasMore {
				t.Errorf("expected HasMore=%v", tt.hasMore)
			}
			if page.Data == nil || len(page.Data) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, page.Data)
			}
			for i := range page.Data {
				if page.Data[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, page.Data)
				}
			}
		})
	}
}
