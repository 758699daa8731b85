package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/track"
)

type trackApi struct {
	svc      *track.Service
	validate *validator.Validate
}

func registerTrackAPI(g *echo.Group, deps Deps) {
	api := trackApi{svc: deps.TrackSvc, validate: deps.Validate}

	g.POST("", api.create)
	g.GET("", api.query)
	g.GET("/applicants", api.applicants)
	g.GET("/:id", api.retrieve)
	g.DELETE("/:id", api.destroy)
	g.PUT("/:id/members/:memberId", api.addMember)
	g.DELETE("/:id/members/:memberId", api.removeMember)
	g.POST("/:id/courses", api.addCourse)
	g.PUT("/:id/courses/:courseId/start", api.startCourse)
	g.POST("/:id/announce", api.announce)
	g.GET("/:id/announcements", api.announcements)
	g.POST("/:id/apply", api.apply)
	g.PUT("/:id/applicants/:memberId", api.acceptApplicant)
	g.DELETE("/:id/applicants/:memberId", api.rejectApplicant)
}

func (api *trackApi) create(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	var data track.NewTrack
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTrack")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating track")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *trackApi) query(ctx echo.Context) error {
	filter := new(track.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	tracks, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying tracks")
	}
	return ctx.JSON(http.StatusOK, tracks)
}

func (api *trackApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting track")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *trackApi) destroy(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting track")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *trackApi) addMember(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	t, err := api.svc.AddMember(ctx.Request().Context(), actor, ctx.Param("id"), ctx.Param("memberId"))
	if err != nil {
		return errors.Wrap(err, "adding track member")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *trackApi) removeMember(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	t, err := api.svc.RemoveMember(ctx.Request().Context(), actor, ctx.Param("id"), ctx.Param("memberId"))
	if err != nil {
		return errors.Wrap(err, "removing track member")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *trackApi) addCourse(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	var data track.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.AddCourse(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *trackApi) startCourse(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	progress, err := api.svc.StartCourse(ctx.Request().Context(), actor, ctx.Param("id"), ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "starting course")
	}
	return ctx.JSON(http.StatusOK, progress)
}

func (api *trackApi) announce(ctx echo.Context) error {
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

	res, err := api.svc.Announce(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "announcing")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *trackApi) announcements(ctx echo.Context) error {
	filter := track.AnnouncementFilter{TrackID: ctx.Param("id")}
	anns, err := api.svc.Announcements(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing track announcements")
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *trackApi) apply(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	t, err := api.svc.Apply(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "applying to track")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *trackApi) applicants(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.Applicants(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "listing applicants")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *trackApi) acceptApplicant(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	t, err := api.svc.AcceptApplicant(ctx.Request().Context(), actor, ctx.Param("id"), ctx.Param("memberId"))
	if err != nil {
		return errors.Wrap(err, "accepting applicant")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *trackApi) rejectApplicant(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	t, err := api.svc.RejectApplicant(ctx.Request().Context(), actor, ctx.Param("id"), ctx.Param("memberId"))
	if err != nil {
		return errors.Wrap(err, "rejecting applicant")
	}
	return ctx.JSON(http.StatusOK, t)
}
