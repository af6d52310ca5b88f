package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tickethive/ticketing/internal/models"
	"github.com/tickethive/ticketing/internal/repository"
	"github.com/tickethive/ticketing/pkg/rabbitmq"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrForbidden          = errors.New("access denied")
	ErrEventNotBookable   = errors.New("event is not available for booking")
	ErrInvalidTicketCount = errors.New("ticket count must be a positive integer")
	ErrAlreadyCancelled   = errors.New("booking is already cancelled")
	ErrCancelTooMany      = errors.New("cannot cancel more tickets than the booking holds")
	ErrTicketsConflict    = errors.New("ticket availability changed, retry with fresh data")
)

// InsufficientTicketsError reports how many tickets remain so the caller can
// retry with a smaller quantity.
type InsufficientTicketsError struct {
	Remaining int
}

func (e *InsufficientTicketsError) Error() string {
	return fmt.Sprintf("not enough tickets available (%d remaining)", e.Remaining)
}

type BookingService interface {
	Reserve(ctx context.Context, principal models.Principal, eventID string, tickets int) (*models.Booking, error)
	Cancel(ctx context.Context, principal models.Principal, bookingID string) (*models.Booking, error)
	PartialCancel(ctx context.Context, principal models.Principal, bookingID string, tickets int) (*models.Booking, error)
	ListForUser(ctx context.Context, principal models.Principal) ([]models.Booking, error)
	GetForUser(ctx context.Context, principal models.Principal, bookingID string) (*models.Booking, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	eventRepo   repository.EventRepository
	publisher   *rabbitmq.Publisher
}

func NewBookingService(bookingRepo repository.BookingRepository, eventRepo repository.EventRepository, publisher *rabbitmq.Publisher) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		publisher:   publisher,
	}
}

// Reserve books tickets against an approved event. The availability check and
// decrement run inside one transaction holding a row lock on the event, so
// two concurrent reservations for the last tickets cannot both succeed.
func (s *bookingService) Reserve(ctx context.Context, principal models.Principal, eventID string, tickets int) (*models.Booking, error) {
	var result *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if !event.Bookable() {
			return ErrEventNotBookable
		}

		if tickets < 1 {
			return ErrInvalidTicketCount
		}

		if event.TicketsAvailable < tickets {
			return &InsufficientTicketsError{Remaining: event.TicketsAvailable}
		}

		// Guarded decrement. The row lock above already serializes writers;
		// zero rows affected here means availability moved underneath us,
		// which the caller should treat as a retryable conflict.
		affected, err := s.eventRepo.ReserveTickets(ctx, tx, eventID, tickets)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrTicketsConflict
		}

		booking := &models.Booking{
			ID:          uuid.New().String(),
			UserID:      principal.ID,
			EventID:     eventID,
			TicketCount: tickets,
			TotalPrice:  event.Price * float64(tickets),
			Status:      models.BookingConfirmed,
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			return err
		}

		event.TicketsAvailable -= tickets
		booking.Event = event
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("booking.created", result)
	return result, nil
}

// Cancel marks the booking cancelled and returns its tickets to the event.
// If the event was deleted after booking, the booking is still cancelled and
// the inventory return is skipped.
func (s *bookingService) Cancel(ctx context.Context, principal models.Principal, bookingID string) (*models.Booking, error) {
	var result *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if !booking.OwnedBy(principal.ID) {
			return ErrForbidden
		}
		if booking.Status == models.BookingCancelled {
			return ErrAlreadyCancelled
		}

		if err := s.creditEvent(ctx, tx, booking.EventID, booking.TicketCount); err != nil {
			return err
		}

		booking.Status = models.BookingCancelled
		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return err
		}

		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("booking.cancelled", result)
	return result, nil
}

// PartialCancel returns a portion of a booking's tickets to the event. A
// quantity equal to the full booking degenerates into a full cancel;
// otherwise the booking stays confirmed with a pro-rata total price.
func (s *bookingService) PartialCancel(ctx context.Context, principal models.Principal, bookingID string, tickets int) (*models.Booking, error) {
	var result *models.Booking
	routingKey := "booking.updated"

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if !booking.OwnedBy(principal.ID) {
			return ErrForbidden
		}
		if booking.Status == models.BookingCancelled {
			return ErrAlreadyCancelled
		}
		if tickets < 1 {
			return ErrInvalidTicketCount
		}
		if tickets > booking.TicketCount {
			return ErrCancelTooMany
		}

		if err := s.creditEvent(ctx, tx, booking.EventID, tickets); err != nil {
			return err
		}

		if tickets == booking.TicketCount {
			booking.Status = models.BookingCancelled
			routingKey = "booking.cancelled"
		} else {
			booking.ReduceTickets(tickets)
		}
		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return err
		}

		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(routingKey, result)
	return result, nil
}

func (s *bookingService) ListForUser(ctx context.Context, principal models.Principal) ([]models.Booking, error) {
	return s.bookingRepo.FindByUser(ctx, principal.ID)
}

func (s *bookingService) GetForUser(ctx context.Context, principal models.Principal, bookingID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if !booking.OwnedBy(principal.ID) {
		return nil, ErrForbidden
	}
	return booking, nil
}

// creditEvent returns tickets to the event's availability under the event row
// lock. A deleted event is tolerated: the cancellation proceeds and the skip
// is logged as a known inconsistency.
func (s *bookingService) creditEvent(ctx context.Context, tx *gorm.DB, eventID string, tickets int) error {
	_, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithFields(logrus.Fields{
				"event_id": eventID,
				"tickets":  tickets,
			}).Warn("event deleted, skipping inventory return on cancel")
			return nil
		}
		return err
	}
	return s.eventRepo.ReturnTickets(ctx, tx, eventID, tickets)
}

func (s *bookingService) publish(routingKey string, booking *models.Booking) {
	if s.publisher == nil || booking == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, booking); err != nil {
		logrus.WithError(err).WithField("routing_key", routingKey).Warn("failed to publish booking message")
	}
}
