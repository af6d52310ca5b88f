package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tickethive/ticketing/internal/dto"
	"github.com/tickethive/ticketing/internal/middleware"
	"github.com/tickethive/ticketing/internal/models"
	"github.com/tickethive/ticketing/internal/service"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(e *echo.Echo, authn echo.MiddlewareFunc) {
	events := e.Group("/api/v1/events")

	events.GET("", h.ListEvents)

	organizer := middleware.RequireRole(models.RoleOrganizer)
	events.POST("", h.CreateEvent, authn, organizer)
	events.GET("/mine", h.ListMyEvents, authn, organizer)
	events.GET("/analytics", h.GetMyAnalytics, authn, organizer)
	events.PUT("/:id", h.UpdateEvent, authn, organizer)
	events.DELETE("/:id", h.DeleteEvent, authn, organizer)

	admin := middleware.RequireRole(models.RoleAdmin)
	events.GET("/all", h.ListAllEvents, authn, admin)
	events.PATCH("/:id/status", h.SetEventStatus, authn, admin)

	events.GET("/:id/analytics", h.GetEventAnalytics, authn,
		middleware.RequireRole(models.RoleOrganizer, models.RoleAdmin))

	// Registered last: static segments above take precedence over :id.
	events.GET("/:id", h.GetEvent)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	principal, _ := middleware.GetPrincipal(c)

	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" || req.Location == "" || req.Date.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "title, location and date are required")
	}
	if req.Capacity <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "capacity must be greater than zero")
	}
	if req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price cannot be negative")
	}

	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Price:       req.Price,
		Capacity:    req.Capacity,
	}
	if err := h.svc.Create(c.Request().Context(), principal, event); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.svc.ListApproved(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	event, err := h.svc.GetApproved(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapEventError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) ListAllEvents(c echo.Context) error {
	events, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

func (h *EventHandler) ListMyEvents(c echo.Context) error {
	principal, _ := middleware.GetPrincipal(c)

	events, err := h.svc.ListMine(c.Request().Context(), principal)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

func (h *EventHandler) UpdateEvent(c echo.Context) error {
	principal, _ := middleware.GetPrincipal(c)

	var req dto.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Capacity <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "capacity must be greater than zero")
	}

	event, err := h.svc.Update(c.Request().Context(), principal, c.Param("id"), service.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Price:       req.Price,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return mapEventError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) SetEventStatus(c echo.Context) error {
	var req dto.UpdateEventStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	event, err := h.svc.SetStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return mapEventError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) DeleteEvent(c echo.Context) error {
	principal, _ := middleware.GetPrincipal(c)

	if err := h.svc.Delete(c.Request().Context(), principal, c.Param("id")); err != nil {
		return mapEventError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *EventHandler) GetMyAnalytics(c echo.Context) error {
	principal, _ := middleware.GetPrincipal(c)

	rows, err := h.svc.AnalyticsForOrganizer(c.Request().Context(), principal)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.EventAnalyticsResponse, len(rows))
	for i := range rows {
		resp[i] = dto.ToAnalyticsResponse(&rows[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) GetEventAnalytics(c echo.Context) error {
	principal, _ := middleware.GetPrincipal(c)

	row, err := h.svc.AnalyticsForEvent(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return mapEventError(err)
	}

	return c.JSON(http.StatusOK, dto.ToAnalyticsResponse(row))
}

func toEventResponses(events []models.Event) []dto.EventResponse {
	resp := make([]dto.EventResponse, len(events))
	for i := range events {
		resp[i] = dto.ToEventResponse(&events[i])
	}
	return resp
}

func mapEventError(err error) error {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrEventNotApproved):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrCapacityTooLow),
		errors.Is(err, service.ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
