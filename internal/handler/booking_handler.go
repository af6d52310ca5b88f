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

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo, authn echo.MiddlewareFunc) {
	user := middleware.RequireRole(models.RoleUser)

	e.POST("/api/v1/events/:id/bookings", h.CreateBooking, authn, user)

	bookings := e.Group("/api/v1/bookings", authn, user)
	bookings.GET("", h.ListBookings)
	bookings.GET("/:id", h.GetBooking)
	bookings.DELETE("/:id", h.CancelBooking)
	bookings.PATCH("/:id", h.PartialCancelBooking)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	principal, _ := middleware.GetPrincipal(c)

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	booking, err := h.svc.Reserve(c.Request().Context(), principal, c.Param("id"), req.Tickets)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	principal, _ := middleware.GetPrincipal(c)

	bookings, err := h.svc.ListForUser(c.Request().Context(), principal)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToBookingResponse(&bookings[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	principal, _ := middleware.GetPrincipal(c)

	booking, err := h.svc.GetForUser(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	principal, _ := middleware.GetPrincipal(c)

	booking, err := h.svc.Cancel(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) PartialCancelBooking(c echo.Context) error {
	principal, _ := middleware.GetPrincipal(c)

	var req dto.PartialCancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	booking, err := h.svc.PartialCancel(c.Request().Context(), principal, c.Param("id"), req.Tickets)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func mapBookingError(c echo.Context, err error) error {
	var insufficient *service.InsufficientTicketsError
	if errors.As(err, &insufficient) {
		return c.JSON(http.StatusConflict, dto.ErrorResponse{
			Message:   insufficient.Error(),
			Remaining: &insufficient.Remaining,
		})
	}

	switch {
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrEventNotBookable),
		errors.Is(err, service.ErrInvalidTicketCount),
		errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, service.ErrCancelTooMany):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTicketsConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
