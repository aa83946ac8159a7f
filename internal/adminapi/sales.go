package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/pos"
	"github.com/talkincode/toughpos/internal/webserver"
)

type createSalePayload struct {
	Items []pos.SaleItemInput `json:"items" validate:"required,min=1,dive"`
}

// registerSaleRoutes registers sale recording and dashboard endpoints
func registerSaleRoutes() {
	webserver.ApiPOST("/sales", createSale)
	webserver.ApiGET("/sales", listSales)
	webserver.ApiGET("/sales/dashboard/stats", getDashboardStats)
	webserver.ApiGET("/sales/today/revenue", getTodayRevenue)
	webserver.ApiGET("/sales/:id", getSale)
}

func createSale(c echo.Context) error {
	var payload createSalePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse sale", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	sale, err := pos.NewSaleService(GetDB(c)).CreateSale(c.Request().Context(), payload.Items)
	if err != nil {
		return failErr(c, err)
	}
	return created(c, sale)
}

// parseDateParam parses a date query param leniently; empty means unset.
func parseDateParam(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	t, err := dateparse.ParseIn(raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func listSales(c echo.Context) error {
	page, pageSize := parsePagination(c)

	startDate, err := parseDateParam(c, "startDate")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid startDate", nil)
	}
	endDate, err := parseDateParam(c, "endDate")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid endDate", nil)
	}

	result, err := pos.NewSaleService(GetDB(c)).ListSales(c.Request().Context(), page, pageSize, startDate, endDate)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, result)
}

func getSale(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid sale ID", nil)
	}
	sale, err := pos.NewSaleService(GetDB(c)).GetSale(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, sale)
}

func getDashboardStats(c echo.Context) error {
	stats, err := pos.NewSaleService(GetDB(c)).GetDashboardStats(c.Request().Context())
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, stats)
}

func getTodayRevenue(c echo.Context) error {
	revenue, err := pos.NewSaleService(GetDB(c)).GetTodayRevenue(c.Request().Context())
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, revenue)
}
