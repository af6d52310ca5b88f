package dto

import (
	"time"

	"github.com/tickethive/ticketing/internal/models"
)

type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Price       float64   `json:"price"`
	Capacity    int       `json:"capacity"`
}

type UpdateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Price       float64   `json:"price"`
	Capacity    int       `json:"capacity"`
}

type UpdateEventStatusRequest struct {
	Status models.EventStatus `json:"status"`
}

type CreateBookingRequest struct {
	Tickets int `json:"tickets"`
}

// PartialCancelRequest names the number of tickets to return, not the number
// to keep.
type PartialCancelRequest struct {
	Tickets int `json:"tickets"`
}
