package dto

import (
	"time"

	"github.com/tickethive/ticketing/internal/models"
	"github.com/tickethive/ticketing/internal/repository"
)

type UserResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type EventResponse struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Date             time.Time          `json:"date"`
	Location         string             `json:"location"`
	Price            float64            `json:"price"`
	Capacity         int                `json:"capacity"`
	TicketsAvailable int                `json:"tickets_available"`
	Status           models.EventStatus `json:"status"`
	OrganizerID      string             `json:"organizer_id"`
	CreatedAt        time.Time          `json:"created_at"`
}

type BookingResponse struct {
	ID          string               `json:"id"`
	EventID     string               `json:"event_id"`
	UserID      string               `json:"user_id"`
	TicketCount int                  `json:"ticket_count"`
	TotalPrice  float64              `json:"total_price"`
	Status      models.BookingStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	Event       *EventResponse       `json:"event,omitempty"`
}

type EventAnalyticsResponse struct {
	EventID        string  `json:"event_id"`
	Title          string  `json:"title"`
	Capacity       int     `json:"capacity"`
	TicketsSold    int     `json:"tickets_sold"`
	PercentageSold float64 `json:"percentage_sold"`
	Revenue        float64 `json:"revenue"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	// Remaining is set on insufficient-inventory errors so clients can retry
	// with a smaller quantity.
	Remaining *int `json:"tickets_remaining,omitempty"`
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

func ToEventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Date:             e.Date,
		Location:         e.Location,
		Price:            e.Price,
		Capacity:         e.Capacity,
		TicketsAvailable: e.TicketsAvailable,
		Status:           e.Status,
		OrganizerID:      e.OrganizerID,
		CreatedAt:        e.CreatedAt,
	}
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:          b.ID,
		EventID:     b.EventID,
		UserID:      b.UserID,
		TicketCount: b.TicketCount,
		TotalPrice:  b.TotalPrice,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
	}
	if b.Event != nil {
		event := ToEventResponse(b.Event)
		resp.Event = &event
	}
	return resp
}

func ToAnalyticsResponse(a *repository.EventAnalytics) EventAnalyticsResponse {
	var pct float64
	if a.Capacity > 0 {
		pct = float64(a.TicketsSold) / float64(a.Capacity) * 100
	}
	return EventAnalyticsResponse{
		EventID:        a.EventID,
		Title:          a.Title,
		Capacity:       a.Capacity,
		TicketsSold:    a.TicketsSold,
		PercentageSold: pct,
		Revenue:        a.Revenue,
	}
}
