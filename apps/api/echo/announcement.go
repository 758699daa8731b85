package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/track"
)

type announcementApi struct {
	svc      *track.Service
	validate *validator.Validate
}

func registerAnnouncementAPI(g *echo.Group, deps Deps) {
	api := announcementApi{svc: deps.TrackSvc, validate: deps.Validate}

	g.POST("", api.create)
	g.GET("", api.query)
	g.PUT("/:id", api.update)
	g.DELETE("/:id", api.destroy)
}

func (api *announcementApi) create(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	var data track.NewAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.AddAnnouncement(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "adding announcement")
	}
	return ctx.JSON(http.StatusCreated, a)
}

// query lists the live announcements, those of ?trackId only when given.
func (api *announcementApi) query(ctx echo.Context) error {
	filter := new(track.AnnouncementFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to AnnouncementFilter")
	}
	anns, err := api.svc.Announcements(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "listing announcements")
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *announcementApi) update(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	var data track.NewAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.UpdateAnnouncement(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating announcement")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteAnnouncement(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return ctx.NoContent(http.StatusNoContent)
}
