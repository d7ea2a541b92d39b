package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/timetable"
)

type timeSlotApi struct {
	svc      timetable.ServiceInterface
	validate *validator.Validate
}

func registerTimeSlotAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := timeSlotApi{
		svc:      deps.TimeSlotSvc,
		validate: deps.Validate,
	}

	admin := adminMiddleware(deps.StaffSvc)
	id := idParamMiddleware(timetable.ErrNotFound)

	tg := g.Group("/timeslots", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create, admin)
	tg.DELETE("", api.destroyMultiple, admin)
	tg.POST("/check", api.check)
	tg.GET("/:id", api.retrieve, id)
	tg.PUT("/:id", api.update, admin, id)
	tg.DELETE("/:id", api.destroy, admin, id)
}

// Handlers

func (api *timeSlotApi) create(ctx echo.Context) error {
	var data timetable.NewTimeSlot
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTimeSlot")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	ts, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating time slot")
	}
	return ctx.JSON(http.StatusCreated, ts)
}

func (api *timeSlotApi) query(ctx echo.Context) error {
	filter := new(timetable.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []timetable.TimeSlot{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	slots, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying time slots")
	}
	if slots == nil {
		slots = []timetable.TimeSlot{}
	}
	return ctx.JSON(http.StatusOK, slots)
}

func (api *timeSlotApi) retrieve(ctx echo.Context) error {
	ts, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting time slot")
	}
	return ctx.JSON(http.StatusOK, ts)
}

func (api *timeSlotApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting time slot")
	}

	var data timetable.UpdateTimeSlot
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTimeSlot")
	}
	nts, err := data.Validate(ctx.Request().Context(), orig, api.validate, api.svc)
	if err != nil {
		return err
	}

	ts, err := api.svc.Update(ctx.Request().Context(), orig, nts)
	if err != nil {
		return errors.Wrap(err, "updating time slot")
	}
	return ctx.JSON(http.StatusOK, ts)
}

func (api *timeSlotApi) destroy(ctx echo.Context) error {
	n, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "deleting time slot")
	}
	if n == 0 {
		return timetable.ErrNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *timeSlotApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if _, err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting time slots")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// check tells whether a slot could be scheduled, without saving it.
func (api *timeSlotApi) check(ctx echo.Context) error {
	var data timetable.CheckRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	slot, found, err := api.svc.CheckConflict(ctx.Request().Context(), data.Candidate(), data.ExcludeID)
	if err != nil {
		return errors.Wrap(err, "checking conflict")
	}
	resp := CheckResponse{Conflict: found}
	if found {
		resp.Slot = &slot
	}
	return ctx.JSON(http.StatusOK, resp)
}

// queryWeekDays lists the days, Monday first, with both numbering conventions.
func queryWeekDays(ctx echo.Context) error {
	days := make([]WeekDayResponse, 0, 7)
	for _, day := range timetable.WeekDays() {
		number, _ := timetable.MapDayToNumber(day)
		isoNumber, _ := timetable.MapDayToTimetableNumber(day)
		days = append(days, WeekDayResponse{Name: day, Number: number, ISONumber: isoNumber})
	}
	return ctx.JSON(http.StatusOK, days)
}

type (
	CheckResponse struct {
		Conflict bool                `json:"conflict"`
		Slot     *timetable.TimeSlot `json:"slot,omitempty"`
	}

	WeekDayResponse struct {
		Name      timetable.WeekDay `json:"name"`
		Number    int               `json:"number"`     // 0 = Sunday
		ISONumber int               `json:"iso_number"` // 1 = Monday, 7 = Sunday
	}
)
