package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func callerThrough(t *testing.T, mode string, secret []byte, decorate func(*http.Request)) (Caller, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var got Caller
	e.GET("/probe", func(c echo.Context) error {
		got = FromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}, Middleware(mode, secret))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return got, rec
}

func TestFromContext_Placeholder(t *testing.T) {
	c := FromContext(context.Background())
	if c.UserID != DefaultUserID || c.ClinicID != DefaultClinicID {
		t.Errorf("expected placeholder identity, got %+v", c)
	}
}

func TestWithCaller(t *testing.T) {
	ctx := WithCaller(context.Background(), Caller{UserID: "M001", ClinicID: "C001"})
	c := FromContext(ctx)
	if c.UserID != "M001" || c.ClinicID != "C001" {
		t.Errorf("unexpected caller: %+v", c)
	}
}

func TestMiddleware_HeadersMode(t *testing.T) {
	got, rec := callerThrough(t, ModeHeaders, nil, func(r *http.Request) {
		r.Header.Set(UserIDHeader, "M005")
		r.Header.Set(ClinicIDHeader, "C002")
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.UserID != "M005" || got.ClinicID != "C002" {
		t.Errorf("unexpected caller: %+v", got)
	}
}

func TestMiddleware_HeadersModeDefaults(t *testing.T) {
	got, rec := callerThrough(t, ModeHeaders, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.UserID != DefaultUserID || got.ClinicID != DefaultClinicID {
		t.Errorf("expected placeholder identity, got %+v", got)
	}
}

func TestMiddleware_JWTMode(t *testing.T) {
	secret := []byte("test-secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "M009",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		ClinicID: "C004",
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	got, rec := callerThrough(t, ModeJWT, secret, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+signed)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.UserID != "M009" || got.ClinicID != "C004" {
		t.Errorf("unexpected caller: %+v", got)
	}
}

func TestMiddleware_JWTModeRejections(t *testing.T) {
	secret := []byte("test-secret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "M009",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredSigned, err := expired.SignedString(secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	wrongKey := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "M009"},
	})
	wrongKeySigned, err := wrongKey.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{})
	noSubjectSigned, err := noSubject.SignedString(secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"no token", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.token"},
		{"expired", "Bearer " + expiredSigned},
		{"wrong key", "Bearer " + wrongKeySigned},
		{"missing subject", "Bearer " + noSubjectSigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rec := callerThrough(t, ModeJWT, secret, func(r *http.Request) {
				if tt.header != "" {
					r.Header.Set("Authorization", tt.header)
				}
			})
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}
