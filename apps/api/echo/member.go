package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
)

type memberApi struct {
	svc      *member.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerMemberAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps Deps) {
	api := memberApi{
		svc:      deps.MemberSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	mg := g.Group("/members")

	// un-authed endpoints
	mg.POST("/register", api.register)
	mg.POST("/login", api.login)

	// authed endpoints
	ag := mg.Group("", authed...)
	ag.GET("", api.query)
	ag.GET("/me", api.me)
	ag.GET("/me/messages", api.messages)
	ag.PUT("/:id/role", api.changeRole)
	ag.PUT("/:id/rate", api.setRate)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

func (api *memberApi) register(ctx echo.Context) error {
	var data member.NewMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMember")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering member")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *memberApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == member.ErrInvalidCredentials {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.conf, NewClaims(api.conf, m))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Member: m})
}

func (api *memberApi) me(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, actor.Member)
}

func (api *memberApi) messages(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	msgs, err := api.svc.Inbox(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "getting inbox")
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *memberApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	filter := new(member.QueryFilter)
	if err = ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	members, err := api.svc.Query(ctx.Request().Context(), actor, *filter)
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *memberApi) changeRole(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	var data member.RoleUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RoleUpdate")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.ChangeRole(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "changing role")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *memberApi) setRate(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	var data member.RateUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RateUpdate")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.SetRate(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "setting rate")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *memberApi) destroy(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token  string        `json:"token"`
		Member member.Member `json:"member"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
