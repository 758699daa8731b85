package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/task"
)

type taskApi struct {
	svc      *task.Service
	validate *validator.Validate
}

func registerTaskAPI(g *echo.Group, deps Deps) {
	api := taskApi{svc: deps.TaskSvc, validate: deps.Validate}

	g.POST("/assign", api.assign)
	g.POST("/submit", api.submit)
	g.PUT("/rate", api.rate)
	g.GET("/my-tasks", api.myTasks)
	g.GET("/completed", api.completed)
}

func (api *taskApi) assign(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	var data task.NewTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Assign(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "assigning task")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *taskApi) submit(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	var data task.SubmitTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitTask")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Submit(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "submitting task")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *taskApi) rate(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	var data task.RateTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RateTask")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Rate(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "rating task")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *taskApi) myTasks(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.MyTasks(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "getting tasks")
	}
	return ctx.JSON(http.StatusOK, res)
}

// completed lists the completed tasks of ?memberId (defaults to the caller).
func (api *taskApi) completed(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.CompletedTasks(ctx.Request().Context(), actor, ctx.QueryParam("memberId"))
	if err != nil {
		return errors.Wrap(err, "getting completed tasks")
	}
	return ctx.JSON(http.StatusOK, res)
}
