package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"go.uber.org/zap"
)

// ErrorHandler renders every error as {"success":false,"error":...,"code":...}.
// Internal failures are logged and only expose their cause outside production.
func ErrorHandler(log *zap.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		code := apperrors.CodeInternal
		message := "internal server error"

		var apiErr *apperrors.APIError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &apiErr):
			status, code, message = apiErr.Status, apiErr.Code, apiErr.Message
		case errors.As(err, &httpErr):
			status = httpErr.Code
			code = codeForStatus(status)
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		}

		body := echo.Map{
			"success": false,
			"error":   message,
			"code":    code,
		}

		fields := []zap.Field{
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
			if !production {
				body["details"] = err.Error()
			}
		} else {
			log.Debug("request rejected", fields...)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			log.Error("failed to write error response", zap.Error(writeErr))
		}
	}
}

func codeForStatus(status int) apperrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	case http.StatusConflict:
		return apperrors.CodeConflict
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType, http.StatusMethodNotAllowed:
		return apperrors.CodeBadRequest
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		if status < http.StatusInternalServerError {
			return apperrors.CodeBadRequest
		}
		return apperrors.CodeInternal
	}
}

// bindAndValidate binds the request body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}
	return c.Validate(req)
}
