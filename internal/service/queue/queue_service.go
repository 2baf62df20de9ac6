package queue

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/Domenick1991/opdqueue/internal/repository"
)

type QueueUseCase interface {
	GetQueueForDoctor(ctx context.Context, doctorID string) (*View, error)
}

type Entry struct {
	Booking              domain.Booking
	Position             int
	EstimatedWaitMinutes int
}

type Stats struct {
	Total          int
	Pending        int
	InConsultation int
	Completed      int
}

type View struct {
	DoctorID string
	Entries  []Entry
	Stats    Stats
}

type QueueService struct {
	bookings         repository.BookingRepository
	estimator        Estimator
	excludeCompleted bool
}

type QueueServiceOption func(*QueueService)

// WithExcludeCompleted stops completed bookings from counting as patients ahead.
func WithExcludeCompleted(exclude bool) QueueServiceOption {
	return func(s *QueueService) {
		s.excludeCompleted = exclude
	}
}

func NewQueueService(bookings repository.BookingRepository, averageConsultMinutes int, opts ...QueueServiceOption) *QueueService {
	service := &QueueService{
		bookings:  bookings,
		estimator: Estimator{MinutesPerPatient: averageConsultMinutes},
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *QueueService) GetQueueForDoctor(ctx context.Context, doctorID string) (*View, error) {
	if strings.TrimSpace(doctorID) == "" {
		return nil, &domain.ValidationError{Field: "doctorId", Reason: "is required"}
	}
	bookings, err := s.bookings.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%w: list bookings: %v", domain.ErrStoreUnavailable, err)
	}
	view := BuildView(doctorID, bookings, s.estimator, s.excludeCompleted)
	return &view, nil
}

// BuildView orders bookings by token (ties by creation time, then id) and
// attaches a wait estimate and the status counts.
func BuildView(doctorID string, bookings []domain.Booking, estimator Estimator, excludeCompleted bool) View {
	ordered := slices.Clone(bookings)
	slices.SortStableFunc(ordered, func(a, b domain.Booking) int {
		return cmp.Or(
			cmp.Compare(a.Token, b.Token),
			a.CreatedAt.Compare(b.CreatedAt),
			cmp.Compare(a.ID, b.ID),
		)
	})

	view := View{DoctorID: doctorID, Entries: make([]Entry, 0, len(ordered))}
	ahead := 0
	for i, b := range ordered {
		entry := Entry{Booking: b, Position: i, EstimatedWaitMinutes: estimator.At(i)}
		if excludeCompleted {
			entry.EstimatedWaitMinutes = estimator.At(ahead)
			if b.Status.IsTerminal() {
				entry.EstimatedWaitMinutes = 0
			} else {
				ahead++
			}
		}
		view.Entries = append(view.Entries, entry)

		view.Stats.Total++
		switch b.Status {
		case domain.BookingStatusInConsultation:
			view.Stats.InConsultation++
		case domain.BookingStatusCompleted:
			view.Stats.Completed++
		default:
			view.Stats.Pending++
		}
	}
	return view
}

var _ QueueUseCase = (*QueueService)(nil)
