package echoapi

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/user"
	"github.com/JoanAquinoVasquez/SISCON-sub000/services/googleauth"
)

var errGoogleUserNotRegistered = echo.NewHTTPError(http.StatusForbidden, "el usuario no está registrado en el sistema")

type googleAuthApi struct {
	provider *googleauth.Provider
	auth     *authenticator
	users    user.Service
	conf     *core.Config
}

func registerGoogleAuthAPI(g *echo.Group, auth *authenticator, provider *googleauth.Provider, users user.Service, conf *core.Config) {
	api := googleAuthApi{provider: provider, auth: auth, users: users, conf: conf}

	gg := g.Group("/auth/google")
	gg.GET("", api.redirect)
	gg.GET("/callback", api.callback)
}

func (api *googleAuthApi) redirect(ctx echo.Context) error {
	if api.provider == nil || !api.provider.Enabled() {
		return errServiceUnavailable
	}
	authURL, err := api.provider.AuthCodeURL()
	if err != nil {
		return errors.Wrap(err, "building google auth URL")
	}
	return ctx.Redirect(http.StatusFound, authURL)
}

func (api *googleAuthApi) callback(ctx echo.Context) error {
	if api.provider == nil || !api.provider.Enabled() {
		return errServiceUnavailable
	}

	info, err := api.provider.Callback(ctx.Request().Context(), ctx.QueryParam("state"), ctx.QueryParam("code"))
	if err != nil {
		switch errors.Cause(err) {
		case googleauth.ErrInvalidState:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case googleauth.ErrEmailNotVerified, googleauth.ErrDomainNotAllowed:
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return errors.Wrap(err, "completing google auth")
	}

	usr, err := api.users.GetByEmail(ctx.Request().Context(), core.CleanString(info.Email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errGoogleUserNotRegistered
		}
		return errors.Wrap(err, "finding user by email")
	}

	claims, err := api.auth.login(ctx.Request().Context(), usr, api.users)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	token, err := api.auth.generateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	q := make(url.Values)
	q.Set("token", token)
	return ctx.Redirect(http.StatusFound, api.conf.FrontendBaseURL+"/auth/callback?"+q.Encode())
}
