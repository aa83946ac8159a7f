package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/pos"
	"github.com/talkincode/toughpos/internal/webserver"
)

type userUpdatePayload struct {
	Email *string `json:"email" validate:"omitempty,email"`
	Name  *string `json:"name" validate:"omitempty,min=2,max=64"`
}

// registerUserRoutes registers user account routes
func registerUserRoutes() {
	webserver.ApiGET("/users/me", getCurrentUser)
	webserver.ApiGET("/users/:id", getUser)
	webserver.ApiPUT("/users/:id", updateUser)
	webserver.ApiDELETE("/users/:id", deleteUser)
}

func getCurrentUser(c echo.Context) error {
	id := currentUserID(c)
	if id == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
	}
	user, err := pos.NewUserService(GetDB(c)).GetUser(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, user)
}

func getUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	user, err := pos.NewUserService(GetDB(c)).GetUser(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, user)
}

func updateUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}

	var payload userUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	user, err := pos.NewUserService(GetDB(c)).UpdateUser(c.Request().Context(), id, payload.Email, payload.Name)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, user)
}

func deleteUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	if err := pos.NewUserService(GetDB(c)).DeleteUser(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}
