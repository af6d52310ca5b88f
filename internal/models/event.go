package models

import "time"

type EventStatus string

const (
	EventPending  EventStatus = "pending"
	EventApproved EventStatus = "approved"
	EventDeclined EventStatus = "declined"
)

type Event struct {
	ID               string      `gorm:"primaryKey;type:uuid" json:"id"`
	Title            string      `gorm:"not null" json:"title"`
	Description      string      `json:"description"`
	Date             time.Time   `gorm:"not null" json:"date"`
	Location         string      `gorm:"not null" json:"location"`
	Price            float64     `gorm:"not null" json:"price"`
	Capacity         int         `gorm:"not null" json:"capacity"`
	TicketsAvailable int         `gorm:"not null" json:"tickets_available"`
	Status           EventStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	OrganizerID      string      `gorm:"type:uuid;not null;index" json:"organizer_id"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Sold returns the number of tickets currently held by confirmed bookings,
// derived from the availability counter.
func (e *Event) Sold() int {
	return e.Capacity - e.TicketsAvailable
}

// Bookable reports whether the event accepts new bookings.
func (e *Event) Bookable() bool {
	return e.Status == EventApproved
}
