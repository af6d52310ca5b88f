package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tickethive/ticketing/internal/models"
	"github.com/tickethive/ticketing/internal/repository"
	"github.com/tickethive/ticketing/pkg/rabbitmq"
	"gorm.io/gorm"
)

var (
	ErrEventNotApproved = errors.New("event is not approved")
	ErrCapacityTooLow   = errors.New("capacity cannot drop below tickets already sold")
	ErrInvalidStatus    = errors.New("invalid status value")
)

// EventUpdate carries the organizer-editable fields of an event.
type EventUpdate struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Price       float64
	Capacity    int
}

type EventService interface {
	Create(ctx context.Context, principal models.Principal, event *models.Event) error
	GetApproved(ctx context.Context, id string) (*models.Event, error)
	ListApproved(ctx context.Context) ([]models.Event, error)
	ListAll(ctx context.Context) ([]models.Event, error)
	ListMine(ctx context.Context, principal models.Principal) ([]models.Event, error)
	Update(ctx context.Context, principal models.Principal, id string, update EventUpdate) (*models.Event, error)
	SetStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error)
	Delete(ctx context.Context, principal models.Principal, id string) error
	AnalyticsForOrganizer(ctx context.Context, principal models.Principal) ([]repository.EventAnalytics, error)
	AnalyticsForEvent(ctx context.Context, principal models.Principal, id string) (*repository.EventAnalytics, error)
}

type eventService struct {
	eventRepo repository.EventRepository
	publisher *rabbitmq.Publisher
}

func NewEventService(eventRepo repository.EventRepository, publisher *rabbitmq.Publisher) EventService {
	return &eventService{eventRepo: eventRepo, publisher: publisher}
}

// Create inserts a new event owned by the principal. Events start pending and
// fully stocked: tickets_available equals capacity until bookings arrive.
func (s *eventService) Create(ctx context.Context, principal models.Principal, event *models.Event) error {
	event.ID = uuid.New().String()
	event.OrganizerID = principal.ID
	event.Status = models.EventPending
	event.TicketsAvailable = event.Capacity

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return err
	}

	s.publish("event.created", event)
	return nil
}

func (s *eventService) GetApproved(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.Status != models.EventApproved {
		return nil, ErrEventNotApproved
	}
	return event, nil
}

func (s *eventService) ListApproved(ctx context.Context) ([]models.Event, error) {
	return s.eventRepo.FindApproved(ctx)
}

func (s *eventService) ListAll(ctx context.Context) ([]models.Event, error) {
	return s.eventRepo.FindAll(ctx)
}

func (s *eventService) ListMine(ctx context.Context, principal models.Principal) ([]models.Event, error) {
	return s.eventRepo.FindByOrganizer(ctx, principal.ID)
}

// Update applies organizer edits to their own event. Capacity may change, but
// never below the count already sold; availability is rebased so that
// capacity - tickets_available stays equal to the sold count. Any edit sends
// the event back to pending for re-approval.
func (s *eventService) Update(ctx context.Context, principal models.Principal, id string, update EventUpdate) (*models.Event, error) {
	var result *models.Event

	err := s.eventRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if event.OrganizerID != principal.ID {
			return ErrForbidden
		}

		sold := event.Sold()
		if update.Capacity < sold {
			return ErrCapacityTooLow
		}

		event.Title = update.Title
		event.Description = update.Description
		event.Date = update.Date
		event.Location = update.Location
		event.Price = update.Price
		event.Capacity = update.Capacity
		event.TicketsAvailable = update.Capacity - sold
		event.Status = models.EventPending

		if err := s.eventRepo.Save(ctx, tx, event); err != nil {
			return err
		}
		result = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("event.updated", result)
	return result, nil
}

// SetStatus is the admin approve/decline action. Only the status column is
// written: the availability counter is mutated exclusively by the booking
// transactions, and a read-then-save here would race them.
func (s *eventService) SetStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error) {
	switch status {
	case models.EventApproved, models.EventDeclined, models.EventPending:
	default:
		return nil, ErrInvalidStatus
	}

	affected, err := s.eventRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrEventNotFound
	}

	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish("event.status_changed", event)
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, principal models.Principal, id string) error {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if event.OrganizerID != principal.ID {
		return ErrForbidden
	}
	return s.eventRepo.Delete(ctx, id)
}

func (s *eventService) AnalyticsForOrganizer(ctx context.Context, principal models.Principal) ([]repository.EventAnalytics, error) {
	return s.eventRepo.AnalyticsByOrganizer(ctx, principal.ID)
}

// AnalyticsForEvent returns the aggregate for a single event, visible to the
// event's organizer and to admins.
func (s *eventService) AnalyticsForEvent(ctx context.Context, principal models.Principal, id string) (*repository.EventAnalytics, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.OrganizerID != principal.ID && principal.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.eventRepo.AnalyticsByEvent(ctx, id)
}

func (s *eventService) publish(routingKey string, event *models.Event) {
	if s.publisher == nil || event == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, event); err != nil {
		logrus.WithError(err).WithField("routing_key", routingKey).Warn("failed to publish event message")
	}
}
