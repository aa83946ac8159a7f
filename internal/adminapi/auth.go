package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/pos"
	"github.com/talkincode/toughpos/internal/webserver"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=2,max=64"`
}

type authUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type authResponse struct {
	AccessToken string   `json:"access_token"`
	User        authUser `json:"user"`
}

// registerAuthRoutes registers the unauthenticated login/register endpoints
func registerAuthRoutes() {
	webserver.ApiPOST("/auth/login", login)
	webserver.ApiPOST("/auth/register", register)
}

func issueAuthResponse(c echo.Context, user *domain.SysUser) (*authResponse, error) {
	cfg := GetConfig(c).Web
	expire := time.Duration(cfg.TokenExpireHr) * time.Hour
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	token, err := webserver.IssueToken(cfg.Secret, expire, user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}
	return &authResponse{
		AccessToken: token,
		User:        authUser{ID: user.ID, Email: user.Email, Name: user.Name},
	}, nil
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	user, err := pos.NewUserService(GetDB(c)).Authenticate(c.Request().Context(), payload.Email, payload.Password)
	if err != nil {
		return failErr(c, err)
	}
	resp, err := issueAuthResponse(c, user)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, resp)
}

func register(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	user, err := pos.NewUserService(GetDB(c)).Register(c.Request().Context(),
		payload.Email, payload.Password, payload.Name)
	if err != nil {
		return failErr(c, err)
	}
	resp, err := issueAuthResponse(c, user)
	if err != nil {
		return failErr(c, err)
	}
	return created(c, resp)
}
