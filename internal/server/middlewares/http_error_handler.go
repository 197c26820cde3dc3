package middlewares

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// HTTPErrorHandler returns an error handler that formats rendered errors.
func HTTPErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var herr *echo.HTTPError
		if errors.As(err, &herr) {
			if herr.Internal != nil {
				logger.WithError(herr.Internal).WithField("status", herr.Code).Warn("request failed")
			}
			_ = c.JSON(herr.Code, echo.Map{
				"error": echo.Map{
					"message": herr.Message,
				},
			})
			return
		}

		var lferr *lferror.LFError
		if !errors.As(err, &lferr) {
			internal(logger, err, c)
			return
		}

		status := lferr.HTTPCode
		if status >= http.StatusInternalServerError {
			id := errorID()
			logger.WithError(err).WithFields(logrus.Fields{"error_id": id, "tag": lferr.Tag()}).Error("store failure")
			_ = c.JSON(status, echo.Map{
				"error": echo.Map{
					"tag":     lferr.Tag(),
					"message": fmt.Sprintf("%s (id: %s)", lferr.FieldError.Message, id),
				},
			})
			return
		}
		_ = c.JSON(status, lferr)
	}
}

func internal(logger logrus.FieldLogger, err error, c echo.Context) {
	id := errorID()
	logger.WithError(err).WithField("error_id", id).Error("unexpected error")

	_ = c.JSON(http.StatusInternalServerError, echo.Map{
		"error": echo.Map{
			"message": fmt.Sprintf("Unexpected error (id: %s)", id),
		},
	})
}

func errorID() string {
	return uuid.Must(uuid.NewV4()).String()
}
