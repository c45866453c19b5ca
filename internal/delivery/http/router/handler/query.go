package handler

import (
	"strconv"
	"strings"
	"time"

	domainerrors "assettrack/internal/domain/errors"
	"assettrack/internal/infra/assetapi"
	"assettrack/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb"
)

// pageParams reads page and pageSize; missing values fall back to defaults
// in response.Paginate.
func pageParams(c echo.Context) (page, pageSize int, err error) {
	if page, err = intParam(c, "page"); err != nil {
		return 0, 0, err
	}
	if pageSize, err = intParam(c, "pageSize"); err != nil {
		return 0, 0, err
	}

	return page, pageSize, nil
}

func intParam(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, domainerrors.ErrValidation.WithDetails(name + " must be a non-negative integer")
	}

	return v, nil
}

func floatParam(c echo.Context, name string) (float64, bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, domainerrors.ErrValidation.WithDetails(name + " must be a number")
	}

	return v, true, nil
}

// assetQuery reads search, status, priority, type, sort, order, refresh and
// the lat/lng/radius triple.
func assetQuery(c echo.Context) (usecase.AssetQuery, error) {
	query := usecase.AssetQuery{
		Search:        c.QueryParam("search"),
		Status:        c.QueryParam("status"),
		Priority:      c.QueryParam("priority"),
		AssetType:     c.QueryParam("type"),
		SortField:     c.QueryParam("sort"),
		SortDirection: c.QueryParam("order"),
	}
	if raw := c.QueryParam("refresh"); raw != "" {
		refresh, err := strconv.ParseBool(raw)
		if err != nil {
			return query, domainerrors.ErrValidation.WithDetails("refresh must be a boolean")
		}
		query.Refresh = refresh
	}

	lat, hasLat, err := floatParam(c, "lat")
	if err != nil {
		return query, err
	}
	lng, hasLng, err := floatParam(c, "lng")
	if err != nil {
		return query, err
	}
	radius, hasRadius, err := floatParam(c, "radius")
	if err != nil {
		return query, err
	}
	if !hasLat && !hasLng && !hasRadius {
		return query, nil
	}
	if !hasLat || !hasLng || !hasRadius {
		return query, domainerrors.ErrValidation.WithDetails("lat, lng and radius must be given together")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 || radius <= 0 {
		return query, domainerrors.ErrValidation.WithDetails("lat, lng or radius out of range")
	}
	query.Near = &usecase.NearbyQuery{Center: orb.Point{lng, lat}, RadiusMeters: radius}

	return query, nil
}

// auditQuery reads search, action, resourceType, sort, order and the
// startDate/endDate range (YYYY-MM-DD).
func auditQuery(c echo.Context) (usecase.AuditLogQuery, error) {
	query := usecase.AuditLogQuery{
		Search:        c.QueryParam("search"),
		Action:        c.QueryParam("action"),
		ResourceType:  c.QueryParam("resourceType"),
		SortField:     c.QueryParam("sort"),
		SortDirection: c.QueryParam("order"),
	}

	var err error
	if query.StartDate, err = dateParam(c, "startDate"); err != nil {
		return query, err
	}
	if query.EndDate, err = dateParam(c, "endDate"); err != nil {
		return query, err
	}

	return query, nil
}

func dateParam(c echo.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := assetapi.ParseAuditDate(raw)
	if err != nil {
		return time.Time{}, domainerrors.ErrValidation.WithDetails(name + " must be YYYY-MM-DD")
	}

	return t, nil
}
