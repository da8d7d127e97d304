package httpx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gunvolt24/order_notifier/pkg/httpx"
	"github.com/gin-gonic/gin"
)

// Утилита для создания *gin.Context с query-строкой
func ctxWithQuery(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/?"+rawQuery, http.NoBody)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func TestClampInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		v, lo, hi int
		want      int
	}{
		{"below_min", 0, 1, 10, 1},
		{"above_max", 11, 1, 10, 10},
		{"inside", 5, 1, 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := httpx.ClampInt(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Fatalf("ClampInt(%d,%d,%d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rawQuery string
		want     httpx.Page
		wantErr  bool
	}{
		{"defaults", "", httpx.Page{Limit: 20}, false},
		{"both", "limit=25&offset=10", httpx.Page{Limit: 25, Offset: 10}, false},
		{"limit_zero_clamped", "limit=0", httpx.Page{Limit: 1}, false},
		{"limit_above_max_clamped", "limit=999", httpx.Page{Limit: 50}, false},
		{"limit_not_int", "limit=foo", httpx.Page{}, true},
		{"offset_not_int", "offset=bar", httpx.Page{}, true},
		{"offset_negative", "offset=-3", httpx.Page{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := httpx.ParsePage(ctxWithQuery(tt.rawQuery), 20, 50)
			if tt.wantErr {
				if !errors.Is(err, httpx.ErrBadPage) {
					t.Fatalf("want ErrBadPage, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("got %+v err=%v, want %+v (query=%q)", got, err, tt.want, tt.rawQuery)
			}
		})
	}
}

func TestParsePage_DefaultAboveMax(t *testing.T) {
	t.Parallel()
	got, err := httpx.ParsePage(ctxWithQuery(""), 100, 50)
	if err != nil || got.Limit != 50 {
		t.Fatalf("got %+v err=%v, want limit 50", got, err)
	}
}

func TestPageBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page     httpx.Page
		total    int
		from, to int
	}{
		{httpx.Page{Limit: 2, Offset: 1}, 5, 1, 3},
		{httpx.Page{Limit: 10, Offset: 3}, 5, 3, 5},
		{httpx.Page{Limit: 10, Offset: 9}, 5, 5, 5},
		{httpx.Page{Limit: 10}, 0, 0, 0},
	}
	for _, tt := range tests {
		from, to := tt.page.Bounds(tt.total)
		if from != tt.from || to != tt.to {
			t.Fatalf("%+v.Bounds(%d) = [%d,%d), want [%d,%d)", tt.page, tt.total, from, to, tt.from, tt.to)
		}
	}
}
