package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kymawa/ratiba/core/registration"
)

type registrationApi struct {
	engine *registration.Engine
}

func registerRegistrationAPI(g *echo.Group, eng *registration.Engine) {
	api := registrationApi{engine: eng}

	rg := g.Group("/registrations")
	rg.POST("/validate", api.registrationValidate)
	rg.POST("", api.registrationCreate)
	rg.DELETE("/:id", api.registrationDrop)
}

type registrationRequest struct {
	StudentID  string `json:"student_id"`
	UnitID     string `json:"unit_id"`
	SemesterID string `json:"semester_id"`
}

func (api *registrationApi) registrationValidate(ctx echo.Context) error {
	data := new(registrationRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	res, err := api.engine.Validate(data.StudentID, data.UnitID, data.SemesterID)
	if err != nil {
		return err
	}
	countRegistrationValidation(res.IsValid)
	return ctx.JSON(http.StatusOK, res)
}

type registrationResponse struct {
	Registration registration.UnitRegistration `json:"registration"`
	Result       registration.Result           `json:"result"`
}

func (api *registrationApi) registrationCreate(ctx echo.Context) error {
	data := new(registrationRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	reg, res, err := api.engine.Register(data.StudentID, data.UnitID, data.SemesterID)
	if err != nil {
		return err
	}
	countRegistrationValidation(res.IsValid)
	if !res.IsValid {
		return ctx.JSON(http.StatusBadRequest, res)
	}
	return ctx.JSON(http.StatusCreated, registrationResponse{Registration: reg, Result: res})
}

func (api *registrationApi) registrationDrop(ctx echo.Context) error {
	reg, err := api.engine.Drop(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reg)
}
