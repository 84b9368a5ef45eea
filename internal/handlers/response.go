package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// pageParams holds the parsed page and limit query parameters.
type pageParams struct {
	Page  int
	Limit int
}

func (p pageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

func parsePage(c echo.Context) pageParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return pageParams{Page: page, Limit: limit}
}

func pageMeta(p pageParams, totalItems int64) echo.Map {
	totalPages := int(math.Ceil(float64(totalItems) / float64(p.Limit)))
	return echo.Map{
		"currentPage":     p.Page,
		"totalPages":      totalPages,
		"totalItems":      totalItems,
		"itemsPerPage":    p.Limit,
		"hasNextPage":     p.Page < totalPages,
		"hasPreviousPage": p.Page > 1,
	}
}

func respondPage(c echo.Context, key string, items any, p pageParams, total int64) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{key: items},
		"meta":    pageMeta(p, total),
	})
}

func respondData(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{
		"success": true,
		"data":    data,
	})
}

// notFoundOr maps a missing row to a 404 for resource and anything else to a 500.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource)
	}
	return apperrors.Wrapf(err, "load %s", resource)
}
