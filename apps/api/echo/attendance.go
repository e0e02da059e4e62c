package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kymawa/ratiba/core/attendance"
)

type attendanceApi struct {
	service *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service) {
	api := attendanceApi{service: svc}

	g.POST("/lectures/:id/instances", api.instanceEnsure)
	g.PUT("/instances/:id/status", api.instanceSetStatus)
	g.POST("/instances/:id/check-in", api.instanceCheckIn)
}

type ensureInstanceRequest struct {
	Date time.Time `json:"date"`
}

func (api *attendanceApi) instanceEnsure(ctx echo.Context) error {
	data := new(ensureInstanceRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if data.Date.IsZero() {
		data.Date = time.Now()
	}

	inst, err := api.service.EnsureInstance(ctx.Param("id"), data.Date)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, inst)
}

type setInstanceStatusRequest struct {
	Status attendance.InstanceStatus `json:"status"`
}

func (api *attendanceApi) instanceSetStatus(ctx echo.Context) error {
	data := new(setInstanceStatusRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	inst, err := api.service.SetStatus(ctx.Param("id"), data.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inst)
}

type checkInRequest struct {
	StudentID string            `json:"student_id"`
	Status    attendance.Status `json:"status"`
}

func (api *attendanceApi) instanceCheckIn(ctx echo.Context) error {
	data := new(checkInRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	inst, err := api.service.CheckIn(ctx.Param("id"), data.StudentID, data.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inst)
}
