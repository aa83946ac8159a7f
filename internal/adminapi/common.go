package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/toughpos/config"
	"github.com/talkincode/toughpos/internal/pos"
	"github.com/talkincode/toughpos/internal/webserver"
)

// Init registers every admin API route group.
func Init() {
	registerAuthRoutes()
	registerUserRoutes()
	registerProductRoutes()
	registerSaleRoutes()
	registerDbmsRoutes()
}

// GetDB returns the request-scoped gorm handle.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(webserver.ContextDBKey).(*gorm.DB)
}

// GetConfig returns the application configuration.
func GetConfig(c echo.Context) *config.AppConfig {
	return c.Get(webserver.ContextConfigKey).(*config.AppConfig)
}

type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, errorBody{Code: code, Message: message, Details: details})
}

// failErr maps a pos domain error onto the HTTP error envelope.
func failErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, pos.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", domainMessage(err, pos.ErrNotFound), nil)
	case errors.Is(err, pos.ErrConflict):
		return fail(c, http.StatusConflict, "CONFLICT", domainMessage(err, pos.ErrConflict), nil)
	case errors.Is(err, pos.ErrInsufficientStock):
		return fail(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", domainMessage(err, pos.ErrInsufficientStock), nil)
	case errors.Is(err, pos.ErrValidation):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", domainMessage(err, pos.ErrValidation), nil)
	case errors.Is(err, pos.ErrUnauthorized):
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", domainMessage(err, pos.ErrUnauthorized), nil)
	default:
		zap.L().Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error", nil)
	}
}

// domainMessage strips the sentinel suffix that pkg/errors wrapping appends.
func domainMessage(err, sentinel error) string {
	msg := err.Error()
	if suffix := ": " + sentinel.Error(); strings.HasSuffix(msg, suffix) {
		return strings.TrimSuffix(msg, suffix)
	}
	return msg
}

func handleValidationError(c echo.Context, err error) error {
	return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Request validation failed", err.Error())
}

// parsePagination reads page/limit query params; perPage and pageSize are
// accepted as aliases for front-end compatibility.
func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 10
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	for _, key := range []string{"limit", "perPage", "pageSize"} {
		if v := c.QueryParam(key); v != "" {
			if ps, err := strconv.Atoi(v); err == nil && ps > 0 && ps <= 500 {
				pageSize = ps
			}
			break
		}
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// currentUserID extracts the authenticated user id from the bearer token.
func currentUserID(c echo.Context) int64 {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return 0
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0
	}
	return cast.ToInt64(claims["sub"])
}
