package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/rating"
)

type ratingApi struct {
	svc      *rating.Service
	validate *validator.Validate
}

func registerRatingAPI(g *echo.Group, deps Deps) {
	api := ratingApi{svc: deps.RatingSvc, validate: deps.Validate}

	g.GET("/dashboard", api.dashboard)
	g.POST("/hr-rating", api.submitHRRating)
	g.GET("/history/:memberId", api.history)
	g.GET("/committee/:committee", api.committeePerformance)
}

func (api *ratingApi) dashboard(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	filter := new(rating.DashboardFilter)
	if err = ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to DashboardFilter")
	}
	if err = filter.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Dashboard(ctx.Request().Context(), actor, *filter)
	if err != nil {
		return errors.Wrap(err, "getting dashboard")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *ratingApi) submitHRRating(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	var data rating.NewHRRating
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewHRRating")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.SubmitHRRating(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "submitting HR rating")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *ratingApi) history(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.History(ctx.Request().Context(), actor, ctx.Param("memberId"))
	if err != nil {
		return errors.Wrap(err, "getting history")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *ratingApi) committeePerformance(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.CommitteePerformance(ctx.Request().Context(), actor, ctx.Param("committee"))
	if err != nil {
		return errors.Wrap(err, "getting committee performance")
	}
	return ctx.JSON(http.StatusOK, res)
}
