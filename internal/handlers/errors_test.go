package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func render(t *testing.T, production bool, err error) (*httptest.ResponseRecorder, map[string]any, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ErrorHandler(zap.New(core), production)(err, c)

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body, logs
}

func TestErrorHandlerRendersAPIErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.NotFound("photo"), http.StatusNotFound, "NOT_FOUND"},
		{apperrors.Validation("text", "is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{apperrors.Conflict("already following this user"), http.StatusBadRequest, "CONFLICT"},
		{apperrors.Forbidden("not yours"), http.StatusForbidden, "FORBIDDEN"},
		{echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), http.StatusTooManyRequests, "RATE_LIMITED"},
		{echo.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		rec, body, _ := render(t, true, tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Equal(t, false, body["success"])
		assert.Equal(t, tc.code, body["code"])
		assert.NotEmpty(t, body["error"])
		assert.NotContains(t, body, "details")
	}
}

func TestErrorHandlerHidesInternalDetailsInProduction(t *testing.T) {
	cause := apperrors.Wrapf(errors.New("pq: connection refused"), "load feed")

	rec, body, logs := render(t, true, cause)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, body, "details")
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())

	_, body, _ = render(t, false, cause)
	assert.Contains(t, body["details"], "connection refused")
}

func TestErrorHandlerPlainErrorIsInternal(t *testing.T) {
	rec, body, _ := render(t, true, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
}

func TestParsePage(t *testing.T) {
	e := echo.New()
	cases := map[string]pageParams{
		"":                  {Page: 1, Limit: defaultPageSize},
		"?page=3&limit=10":  {Page: 3, Limit: 10},
		"?page=-1&limit=99": {Page: 1, Limit: defaultPageSize},
		"?page=x&limit=0":   {Page: 1, Limit: defaultPageSize},
	}
	for query, want := range cases {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/"+query, nil), httptest.NewRecorder())
		assert.Equal(t, want, parsePage(c), query)
	}

	meta := pageMeta(pageParams{Page: 2, Limit: 10}, 25)
	assert.Equal(t, 3, meta["totalPages"])
	assert.Equal(t, true, meta["hasNextPage"])
	assert.Equal(t, true, meta["hasPreviousPage"])
}

func TestSplitTags(t *testing.T) {
	assert.Nil(t, splitTags("  "))
	assert.Equal(t, []string{"a", " b"}, splitTags("a, b"))
}
