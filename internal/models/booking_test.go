package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduceTickets_ProRata(t *testing.T) {
	b := &Booking{TicketCount: 4, TotalPrice: 200}

	b.ReduceTickets(1)

	assert.Equal(t, 3, b.TicketCount)
	assert.InDelta(t, 150.0, b.TotalPrice, 0.001)
}

func TestReduceTickets_KeepsUnitPriceStable(t *testing.T) {
	b := &Booking{TicketCount: 3, TotalPrice: 150}

	b.ReduceTickets(1)
	b.ReduceTickets(1)

	assert.Equal(t, 1, b.TicketCount)
	assert.InDelta(t, 50.0, b.TotalPrice, 0.001)
}

func TestOwnedBy(t *testing.T) {
	b := &Booking{UserID: "user-1"}

	assert.True(t, b.OwnedBy("user-1"))
	assert.False(t, b.OwnedBy("user-2"))
}

func TestEventSold(t *testing.T) {
	e := &Event{Capacity: 10, TicketsAvailable: 7}

	assert.Equal(t, 3, e.Sold())
}

func TestEventBookable(t *testing.T) {
	assert.True(t, (&Event{Status: EventApproved}).Bookable())
	assert.False(t, (&Event{Status: EventPending}).Bookable())
	assert.False(t, (&Event{Status: EventDeclined}).Bookable())
}
