// Package pagination parses list-endpoint paging parameters. Pages are
// continued with an opaque cursor token minted by the storage layer; this
// package only validates the limit and passes the cursor through untouched.
package pagination

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidLimit is returned for a non-numeric or non-positive limit.
// Values above MaxLimit are clamped, not rejected.
var ErrInvalidLimit = errors.New("Limit must be a positive number")

// Params holds the validated paging parameters of a list request.
type Params struct {
	Limit  int
	Cursor string
}

// FromContext reads limit and cursor from the request query. An absent limit
// defaults to DefaultLimit.
func FromContext(c echo.Context) (Params, error) {
	p := Params{Limit: DefaultLimit, Cursor: c.QueryParam("cursor")}

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return Params{}, ErrInvalidLimit
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		p.Limit = limit
	}
	return p, nil
}
