package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type binder struct {
	echo.DefaultBinder
	methodsWithBody map[string]bool
}

// NewBinder returns a wrapp of the default binder implementation with extra checks.
func NewBinder() echo.Binder {
	return &binder{
		methodsWithBody: map[string]bool{
			http.MethodPost:  true,
			http.MethodPatch: true,
			http.MethodPut:   true,
		},
	}
}

// Bind implements the echo.Bind interface.
// Query parameters are only bound on GET and DELETE requests.
func (b *binder) Bind(i any, c echo.Context) error {
	req := c.Request()
	if !b.methodsWithBody[req.Method] {
		if err := b.BindPathParams(c, i); err != nil {
			return err
		}
		return b.BindQueryParams(c, i)
	}

	if req.ContentLength == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body can't be empty")
	}
	if ctype := req.Header.Get(echo.HeaderContentType); ctype != "" && !strings.HasPrefix(ctype, echo.MIMEApplicationJSON) &&
		!strings.HasPrefix(ctype, echo.MIMEApplicationForm) && !strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "Unsupported content type")
	}
	return b.DefaultBinder.Bind(i, c)
}
