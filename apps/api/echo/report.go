package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kymawa/ratiba/core/report"
)

type reportApi struct {
	service *report.Service
}

func registerReportAPI(g *echo.Group, svc *report.Service) {
	api := reportApi{service: svc}

	g.GET("/students/:id/attendance", api.studentAttendance)
	g.GET("/students/:id/units/:unitID/attendance", api.studentUnitAttendance)
	g.GET("/users/:id/schedule", api.userSchedule)
}

func (api *reportApi) studentAttendance(ctx echo.Context) error {
	summary, err := api.service.Attendance(ctx.Param("id"), ctx.QueryParam("semester_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *reportApi) studentUnitAttendance(ctx echo.Context) error {
	ua, err := api.service.UnitAttendance(ctx.Param("id"), ctx.Param("unitID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ua)
}

func (api *reportApi) userSchedule(ctx echo.Context) error {
	week, err := api.service.WeeklySchedule(ctx.Param("id"), ctx.QueryParam("semester_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, week)
}
