package calendar

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/Domenick1991/opdqueue/internal/kafka"
	"github.com/Domenick1991/opdqueue/internal/metrics"
	"github.com/Domenick1991/opdqueue/internal/repository"
	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type CalendarUseCase interface {
	AddEvent(ctx context.Context, doctorID, date, eventType string) (*domain.DoctorEvent, error)
	DeleteEvent(ctx context.Context, doctorID, eventID string) error
	ListEventsForDate(ctx context.Context, doctorID, date string) ([]domain.DoctorEvent, error)
	ListEvents(ctx context.Context, doctorID string) ([]domain.DoctorEvent, error)
	HasEventType(ctx context.Context, doctorID, date, eventType string) (bool, error)
	ExportICS(ctx context.Context, doctorID string) ([]byte, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CalendarService struct {
	events   repository.EventRepository
	producer Producer
	topic    string
	metrics  *metrics.Metrics
	log      zerolog.Logger
	now      func() time.Time
}

type CalendarServiceOption func(*CalendarService)

func WithProducer(producer Producer, topic string) CalendarServiceOption {
	return func(s *CalendarService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithMetrics(m *metrics.Metrics) CalendarServiceOption {
	return func(s *CalendarService) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) CalendarServiceOption {
	return func(s *CalendarService) {
		s.now = now
	}
}

func NewCalendarService(events repository.EventRepository, log zerolog.Logger, opts ...CalendarServiceOption) *CalendarService {
	service := &CalendarService{
		events: events,
		log:    log.With().Str("component", "calendar").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// AddEvent blocks date for doctorID. A second event of the same type on the
// same day is rejected with domain.ErrDuplicateEvent.
func (s *CalendarService) AddEvent(ctx context.Context, doctorID, date, eventType string) (*domain.DoctorEvent, error) {
	if strings.TrimSpace(doctorID) == "" {
		return nil, &domain.ValidationError{Field: "doctorId", Reason: "is required"}
	}
	day, err := domain.ParseEventDate(date)
	if err != nil {
		return nil, err
	}
	typ, err := domain.ParseEventType(eventType)
	if err != nil {
		return nil, err
	}

	existing, err := s.events.ListByDoctorAndDate(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", domain.ErrStoreUnavailable, err)
	}
	if slices.ContainsFunc(existing, func(e domain.DoctorEvent) bool { return e.Type == typ }) {
		return nil, domain.ErrDuplicateEvent
	}

	event := &domain.DoctorEvent{
		ID:       uuid.NewString(),
		DoctorID: doctorID,
		Date:     day.Format(domain.DateLayout),
		Type:     typ,
	}
	if err := s.events.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrDuplicateEvent) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create event: %v", domain.ErrStoreUnavailable, err)
	}

	s.count("add", typ)
	s.log.Info().Str("doctor_id", doctorID).Str("date", event.Date).Str("type", string(typ)).Msg("calendar event added")
	s.publish(ctx, kafka.EventDoctorEventAdded, event)
	return event, nil
}

// DeleteEvent removes one of doctorID's events. Unknown ids are ignored.
func (s *CalendarService) DeleteEvent(ctx context.Context, doctorID, eventID string) error {
	if strings.TrimSpace(eventID) == "" {
		return &domain.ValidationError{Field: "eventId", Reason: "is required"}
	}
	deleted, err := s.events.Delete(ctx, doctorID, eventID)
	if err != nil {
		return fmt.Errorf("%w: delete event: %v", domain.ErrStoreUnavailable, err)
	}
	if !deleted {
		return nil
	}

	s.count("delete", "")
	s.log.Info().Str("doctor_id", doctorID).Str("event_id", eventID).Msg("calendar event deleted")
	s.publish(ctx, kafka.EventDoctorEventDeleted, &domain.DoctorEvent{ID: eventID, DoctorID: doctorID})
	return nil
}

func (s *CalendarService) ListEventsForDate(ctx context.Context, doctorID, date string) ([]domain.DoctorEvent, error) {
	day, err := domain.ParseEventDate(date)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListByDoctorAndDate(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", domain.ErrStoreUnavailable, err)
	}
	return events, nil
}

func (s *CalendarService) ListEvents(ctx context.Context, doctorID string) ([]domain.DoctorEvent, error) {
	events, err := s.events.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", domain.ErrStoreUnavailable, err)
	}
	return events, nil
}

func (s *CalendarService) HasEventType(ctx context.Context, doctorID, date, eventType string) (bool, error) {
	typ, err := domain.ParseEventType(eventType)
	if err != nil {
		return false, err
	}
	events, err := s.ListEventsForDate(ctx, doctorID, date)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(events, func(e domain.DoctorEvent) bool { return e.Type == typ }), nil
}

// ExportICS renders the doctor's calendar as all-day VEVENTs.
func (s *CalendarService) ExportICS(ctx context.Context, doctorID string) ([]byte, error) {
	events, err := s.ListEvents(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return renderICS(events, s.now().UTC()), nil
}

func renderICS(events []domain.DoctorEvent, stamp time.Time) []byte {
	cal := ics.NewCalendar()
	cal.SetProductId("-//opdqueue//doctor calendar//EN")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	for _, e := range events {
		day, err := time.Parse(domain.DateLayout, e.Date)
		if err != nil {
			continue
		}
		event := cal.AddEvent(e.ID + "@opdqueue")
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(summary(e.Type))
	}
	return []byte(cal.Serialize())
}

func summary(t domain.EventType) string {
	switch t {
	case domain.EventTypeSurgery:
		return "Surgery"
	case domain.EventTypePersonal:
		return "Personal time"
	}
	return string(t)
}

func (s *CalendarService) count(action string, typ domain.EventType) {
	if s.metrics != nil {
		s.metrics.CalendarEvents.WithLabelValues(action, string(typ)).Inc()
	}
}

func (s *CalendarService) publish(ctx context.Context, eventType string, event *domain.DoctorEvent) {
	if s.producer == nil || s.topic == "" {
		return
	}
	payload := kafka.QueueEvent{
		Type:       eventType,
		DoctorID:   event.DoctorID,
		EventID:    event.ID,
		EventDate:  event.Date,
		EventType:  string(event.Type),
		OccurredAt: s.now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.topic, event.DoctorID, payload); err != nil {
		s.log.Warn().Err(err).Str("event_id", event.ID).Msg("failed to publish calendar event")
	}
}

var _ CalendarUseCase = (*CalendarService)(nil)
