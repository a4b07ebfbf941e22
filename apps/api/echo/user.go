package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/auth"
	"github.com/tutorlink/backend/core/user"
	identitysvc "github.com/tutorlink/backend/services/identity"
)

type userApi struct {
	conf     *core.Config
	identity *identitysvc.Service
	gate     *auth.Gate
	validate *validator.Validate
}

func registerUserAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	conf *core.Config,
	identity *identitysvc.Service,
	gate *auth.Gate,
	validate *validator.Validate,
) {
	api := userApi{
		conf:     conf,
		identity: identity,
		gate:     gate,
		validate: validate,
	}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/register", api.register)
	ug.POST("/login", api.login)
	g.GET("/gate", api.canEnter)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/logout", api.logout)
	ag.GET("/me", api.me)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.identity.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering account")
	}
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusCreated, LoginResponse{
		Token: token,
		User:  usr,
		Route: landingRoute(usr.Role),
	})
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.identity.Login(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == identitysvc.ErrAuthenticationFailed {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  usr,
		Route: landingRoute(usr.Role),
	})
}

func (api *userApi) logout(ctx echo.Context) error {
	api.identity.Logout()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) me(ctx echo.Context) error {
	usr, ok := api.identity.Current()
	if !ok {
		return errUnauthorized
	}
	return ctx.JSON(http.StatusOK, usr)
}

// canEnter asks the authorization gate whether the given route may be
// entered; the check suspends until identity readiness is known and is
// abandoned when the request is cancelled.
func (api *userApi) canEnter(ctx echo.Context) error {
	route := ctx.QueryParam("route")
	decision, err := api.gate.CanEnter(ctx.Request().Context(), route)
	if err != nil {
		return errors.Wrap(err, "checking gate")
	}
	return ctx.JSON(http.StatusOK, decision)
}
