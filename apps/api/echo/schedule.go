package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kymawa/ratiba/core/schedule"
)

type scheduleApi struct {
	service *schedule.Service
}

func registerScheduleAPI(g *echo.Group, svc *schedule.Service) {
	api := scheduleApi{service: svc}

	lg := g.Group("/lectures")
	lg.POST("/check-conflict", api.lectureCheckConflict)
	lg.POST("", api.lectureCreate)
	lg.POST("/bulk", api.lectureBulkCreate)
	lg.PUT("/:id", api.lectureUpdate)

	g.POST("/timetables/:id/publish", api.timetablePublish)
	g.GET("/venues/availability", api.venueAvailability)
}

func (api *scheduleApi) lectureCheckConflict(ctx echo.Context) error {
	data := new(schedule.NewLecture)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	report, err := api.service.CheckConflict(*data)
	if err != nil {
		return err
	}
	countConflictCheck(report.HasConflicts)
	return ctx.JSON(http.StatusOK, report)
}

func (api *scheduleApi) lectureCreate(ctx echo.Context) error {
	data := new(schedule.NewLecture)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	lec, err := api.service.Create(*data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, lec)
}

type bulkLecturesRequest struct {
	Lectures []schedule.NewLecture `json:"lectures"`
}

func (api *scheduleApi) lectureBulkCreate(ctx echo.Context) error {
	data := new(bulkLecturesRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	res, err := api.service.BulkCreate(data.Lectures)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *scheduleApi) lectureUpdate(ctx echo.Context) error {
	data := new(schedule.NewLecture)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	lec, err := api.service.Update(ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lec)
}

func (api *scheduleApi) timetablePublish(ctx echo.Context) error {
	tt, err := api.service.PublishTimetable(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tt)
}

func (api *scheduleApi) venueAvailability(ctx echo.Context) error {
	query := new(schedule.VenueQuery)
	if err := ctx.Bind(query); err != nil {
		return err
	}

	res, err := api.service.VenueAvailability(*query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
