package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/section"
	"github.com/trezcool/ratiba/core/timetable"
)

type sectionApi struct {
	svc      section.ServiceInterface
	slotSvc  timetable.ServiceInterface
	validate *validator.Validate
}

func registerSectionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := sectionApi{
		svc:      deps.SectionSvc,
		slotSvc:  deps.TimeSlotSvc,
		validate: deps.Validate,
	}

	admin := adminMiddleware(deps.StaffSvc)
	id := idParamMiddleware(section.ErrNotFound)

	sg := g.Group("/sections", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create, admin)
	sg.GET("/:id", api.retrieve, id)
	sg.PUT("/:id", api.update, admin, id)
	sg.DELETE("/:id", api.destroy, admin, id)
	sg.GET("/:id/timetable", api.timetable, id)
	sg.GET("/:id/timeslots/audit", api.audit, admin, id)
}

// Handlers

func (api *sectionApi) create(ctx echo.Context) error {
	var data section.NewSection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSection")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	sec, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating section")
	}
	return ctx.JSON(http.StatusCreated, sec)
}

func (api *sectionApi) query(ctx echo.Context) error {
	filter := new(section.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []section.Section{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	sections, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying sections")
	}
	if sections == nil {
		sections = []section.Section{}
	}
	return ctx.JSON(http.StatusOK, sections)
}

func (api *sectionApi) retrieve(ctx echo.Context) error {
	sec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting section")
	}
	return ctx.JSON(http.StatusOK, sec)
}

func (api *sectionApi) update(ctx echo.Context) error {
	sec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting section")
	}

	var data section.UpdateSection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSection")
	}
	if err := data.Validate(ctx.Request().Context(), sec, api.validate, api.svc); err != nil {
		return err
	}

	sec, err = api.svc.Update(ctx.Request().Context(), sec, data)
	if err != nil {
		return errors.Wrap(err, "updating section")
	}
	return ctx.JSON(http.StatusOK, sec)
}

func (api *sectionApi) destroy(ctx echo.Context) error {
	n, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "deleting section")
	}
	if n == 0 {
		return section.ErrNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

// timetable returns the section's week, Monday first.
func (api *sectionApi) timetable(ctx echo.Context) error {
	sec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting section")
	}
	slots, err := api.slotSvc.Query(ctx.Request().Context(), &timetable.QueryFilter{SectionID: sec.ID})
	if err != nil {
		return errors.Wrap(err, "querying time slots")
	}

	byDay := make(map[timetable.WeekDay][]timetable.TimeSlot)
	for _, ts := range slots {
		byDay[ts.DayOfWeek] = append(byDay[ts.DayOfWeek], ts)
	}

	days := make([]TimetableDay, 0, 7)
	for _, day := range timetable.WeekDays() {
		isoNumber, _ := timetable.MapDayToTimetableNumber(day)
		daySlots := byDay[day]
		if daySlots == nil {
			daySlots = []timetable.TimeSlot{}
		}
		days = append(days, TimetableDay{Day: day, ISONumber: isoNumber, Slots: daySlots})
	}
	return ctx.JSON(http.StatusOK, TimetableResponse{Section: sec, Days: days})
}

func (api *sectionApi) audit(ctx echo.Context) error {
	malformed, err := api.slotSvc.Audit(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "auditing time slots")
	}
	return ctx.JSON(http.StatusOK, malformed)
}

type (
	TimetableDay struct {
		Day       timetable.WeekDay    `json:"day"`
		ISONumber int                  `json:"iso_number"`
		Slots     []timetable.TimeSlot `json:"slots"`
	}

	TimetableResponse struct {
		Section section.Section `json:"section"`
		Days    []TimetableDay  `json:"days"`
	}
)
