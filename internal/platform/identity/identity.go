// Package identity resolves the calling clinician and clinic for a request.
//
// The default mode is a development stand-in for the real identity provider:
// the caller is taken from the X-User-Id / X-Clinic-Id headers, with fixed
// placeholder identities when the headers are absent. An optional jwt mode
// verifies an HMAC-signed bearer token instead.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	UserIDHeader   = "X-User-Id"
	ClinicIDHeader = "X-Clinic-Id"

	DefaultUserID   = "user-001"
	DefaultClinicID = "clinic-001"

	// Modes accepted by Middleware.
	ModeHeaders = "headers"
	ModeJWT     = "jwt"
)

type contextKey string

const callerKey contextKey = "caller"

// Caller identifies who is making the request.
type Caller struct {
	UserID   string
	ClinicID string
}

// Claims is the token payload accepted in jwt mode.
type Claims struct {
	jwt.RegisteredClaims
	ClinicID string `json:"clinic_id"`
}

// FromContext returns the caller resolved by the middleware. Requests that
// bypass the middleware (tests, CLI paths) get the placeholder identities.
func FromContext(ctx context.Context) Caller {
	if c, ok := ctx.Value(callerKey).(Caller); ok {
		return c
	}
	return Caller{UserID: DefaultUserID, ClinicID: DefaultClinicID}
}

// WithCaller stores a caller on the context. Exposed for tests and for the
// CLI, which acts as a fixed operator identity.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// Middleware resolves the caller and stores it on the request context.
// In headers mode missing headers fall back to the placeholder identities;
// in jwt mode a missing or unverifiable bearer token rejects the request.
func Middleware(mode string, jwtSecret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var caller Caller
			if mode == ModeJWT {
				var err error
				caller, err = fromBearerToken(c.Request(), jwtSecret)
				if err != nil {
					return c.JSON(http.StatusUnauthorized, map[string]interface{}{
						"error": map[string]string{
							"code":    "UNAUTHORIZED",
							"message": "A valid bearer token is required",
						},
					})
				}
			} else {
				caller = fromHeaders(c.Request())
			}

			ctx := WithCaller(c.Request().Context(), caller)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func fromHeaders(r *http.Request) Caller {
	caller := Caller{
		UserID:   r.Header.Get(UserIDHeader),
		ClinicID: r.Header.Get(ClinicIDHeader),
	}
	if caller.UserID == "" {
		caller.UserID = DefaultUserID
	}
	if caller.ClinicID == "" {
		caller.ClinicID = DefaultClinicID
	}
	return caller
}

func fromBearerToken(r *http.Request, secret []byte) (Caller, error) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return Caller{}, fmt.Errorf("missing bearer token")
	}
	raw := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Caller{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return Caller{}, fmt.Errorf("invalid token")
	}

	caller := Caller{UserID: claims.Subject, ClinicID: claims.ClinicID}
	if caller.ClinicID == "" {
		caller.ClinicID = DefaultClinicID
	}
	return caller, nil
}
