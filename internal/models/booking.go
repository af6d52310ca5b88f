package models

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID          string        `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string        `gorm:"type:uuid;not null;index" json:"user_id"`
	EventID     string        `gorm:"type:uuid;not null;index" json:"event_id"`
	TicketCount int           `gorm:"not null" json:"ticket_count"`
	TotalPrice  float64       `gorm:"not null" json:"total_price"`
	Status      BookingStatus `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

// OwnedBy reports whether the booking belongs to the given user.
func (b *Booking) OwnedBy(userID string) bool {
	return b.UserID == userID
}

// ReduceTickets removes n tickets from the booking, recomputing the total
// price pro-rata from the frozen per-ticket price. n must be in
// [1, b.TicketCount); callers handle n == b.TicketCount as a full cancel.
func (b *Booking) ReduceTickets(n int) {
	unit := b.TotalPrice / float64(b.TicketCount)
	b.TicketCount -= n
	b.TotalPrice = unit * float64(b.TicketCount)
}
