package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) (Params, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("GET", "/notes?"+query, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	return FromContext(c)
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLimit int
		wantErr   bool
	}{
		{"absent limit defaults", "", DefaultLimit, false},
		{"explicit limit", "limit=5", 5, false},
		{"limit of one", "limit=1", 1, false},
		{"at the cap", "limit=100", 100, false},
		{"above the cap clamps", "limit=500", MaxLimit, false},
		{"zero rejected", "limit=0", 0, true},
		{"negative rejected", "limit=-3", 0, true},
		{"non-numeric rejected", "limit=ten", 0, true},
		{"float rejected", "limit=1.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := paramsFor(t, tt.query)
			if tt.wantErr {
				if err != ErrInvalidLimit {
					t.Fatalf("expected ErrInvalidLimit, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Limit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, p.Limit)
			}
		})
	}
}

func TestFromContext_CursorPassthrough(t *testing.T) {
	p, err := paramsFor(t, "cursor=eyJmb28iOiJiYXIifQ==")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Cursor != "eyJmb28iOiJiYXIifQ==" {
		t.Errorf("cursor must pass through untouched, got %q", p.Cursor)
	}
}
