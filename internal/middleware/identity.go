package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated operator's id for use in
// rate-limit keys. Unauthenticated requests share the "anon" bucket
// per client IP.
func currentUserID(c echo.Context) string {
	switch v := c.Get(CtxUserID).(type) {
	case uint64:
		if v != 0 {
			return strconv.FormatUint(v, 10)
		}
	case string:
		if v != "" {
			return v
		}
	}
	return "anon"
}
