package handler

import (
	"database/sql/driver"
	"errors"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
)

// getUserID reads the authenticated user ID injected by the auth middleware.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := c.Get("user_id").(uint64)
	if !ok || id == 0 {
		return 0, errors.New("no authenticated user in context")
	}
	return id, nil
}

// storeErrStatus maps a repository error to a response status. Connectivity
// failures (store not up yet, connection dropped) become 503 so clients see
// a retryable condition instead of a generic 500. The server starts before
// the store is verified, so this path is expected during boot.
func storeErrStatus(err error) int {
	var ne net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &ne) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
