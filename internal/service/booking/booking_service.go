package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/Domenick1991/opdqueue/internal/kafka"
	"github.com/Domenick1991/opdqueue/internal/metrics"
	"github.com/Domenick1991/opdqueue/internal/repository"
	"github.com/Domenick1991/opdqueue/internal/service/queue"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	MinToken = 1000
	MaxToken = 9999
	MaxAge   = 120
)

type BookingUseCase interface {
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
	SetStatus(ctx context.Context, doctorID, bookingID, status string) (*domain.Booking, error)
}

type Directory interface {
	FindDoctorByName(ctx context.Context, name string) (*domain.Doctor, bool)
}

type TokenClaims interface {
	ClaimToken(ctx context.Context, scope string, token int, ttl time.Duration) (bool, error)
	ReleaseToken(ctx context.Context, scope string, token int) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// TokenScope is the set of bookings within which a token must be unique.
type TokenScope string

const (
	TokenScopeNone   TokenScope = "none"
	TokenScopeDoctor TokenScope = "doctor"
	TokenScopeGlobal TokenScope = "global"
)

type SubmitInput struct {
	PatientName    string `json:"patient_name"`
	PatientProblem string `json:"patient_problem"`
	Age            int    `json:"age"`
	Phone          string `json:"phone"`
	DoctorName     string `json:"doctor_name"`
}

type SubmitResult struct {
	Booking                 *domain.Booking
	Token                   int
	WaitTimeEstimateMinutes int
}

type BookingService struct {
	bookings           repository.BookingRepository
	directory          Directory
	estimator          queue.Estimator
	claims             TokenClaims
	producer           Producer
	metrics            *metrics.Metrics
	log                zerolog.Logger
	queueTopic         string
	notificationsTopic string
	tokenScope         TokenScope
	tokenMaxAttempts   int
	claimTTL           time.Duration
	strictTransitions  bool
	nextToken          func() int
}

type BookingServiceOption func(*BookingService)

func WithProducer(producer Producer, queueTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.queueTopic = queueTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithUniqueTokens turns on check-and-retry allocation within scope. claims
// may be nil, in which case only the store is consulted.
func WithUniqueTokens(scope TokenScope, maxAttempts int, claims TokenClaims, claimTTL time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.tokenScope = scope
		s.tokenMaxAttempts = maxAttempts
		s.claims = claims
		s.claimTTL = claimTTL
	}
}

// WithStrictTransitions rejects moves back along pending -> in_consultation -> completed.
func WithStrictTransitions(strict bool) BookingServiceOption {
	return func(s *BookingService) {
		s.strictTransitions = strict
	}
}

func WithMetrics(m *metrics.Metrics) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

func WithTokenGenerator(next func() int) BookingServiceOption {
	return func(s *BookingService) {
		s.nextToken = next
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	directory Directory,
	estimator queue.Estimator,
	log zerolog.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:   bookings,
		directory:  directory,
		estimator:  estimator,
		log:        log.With().Str("component", "booking").Logger(),
		tokenScope: TokenScopeNone,
		nextToken:  RandomToken,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// RandomToken draws uniformly from [MinToken, MaxToken].
func RandomToken() int {
	return MinToken + rand.IntN(MaxToken-MinToken+1)
}

func (s *BookingService) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	doctorID, doctorName, specialization := "", strings.TrimSpace(input.DoctorName), domain.DefaultSpecialization
	if doctor, ok := s.directory.FindDoctorByName(ctx, input.DoctorName); ok {
		doctorID, specialization = doctor.ID, doctor.Specialization
	} else {
		s.log.Warn().Str("doctor_name", input.DoctorName).Msg("doctor not in directory, booking as General")
	}

	token, scope, err := s.allocateToken(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	_, wait, err := s.estimator.Estimate(ctx, doctorID)
	if err != nil {
		s.log.Warn().Err(err).Str("doctor_id", doctorID).Msg("wait estimate unavailable")
		wait = 0
	}

	booking := &domain.Booking{
		ID:             uuid.NewString(),
		PatientName:    strings.TrimSpace(input.PatientName),
		PatientProblem: strings.TrimSpace(input.PatientProblem),
		Age:            input.Age,
		Phone:          strings.TrimSpace(input.Phone),
		DoctorID:       doctorID,
		DoctorName:     doctorName,
		Specialization: specialization,
		Token:          token,
		Status:         domain.BookingStatusPending,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		if scope != "" && s.claims != nil {
			_ = s.claims.ReleaseToken(ctx, scope, token)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrIntake, err)
	}

	if s.metrics != nil {
		s.metrics.BookingsSubmitted.WithLabelValues(specialization).Inc()
	}
	s.log.Info().
		Str("booking_id", booking.ID).
		Str("doctor_id", doctorID).
		Int("token", token).
		Int("wait_minutes", wait).
		Msg("booking submitted")

	if err := s.publish(ctx, kafka.EventBookingSubmitted, booking, wait); err != nil {
		s.log.Warn().Err(err).Str("booking_id", booking.ID).Msg("failed to publish booking_submitted")
	}

	return &SubmitResult{Booking: booking, Token: token, WaitTimeEstimateMinutes: wait}, nil
}

func validate(input SubmitInput) error {
	required := []struct{ field, value string }{
		{"patientName", input.PatientName},
		{"patientProblem", input.PatientProblem},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &domain.ValidationError{Field: r.field, Reason: "is required"}
		}
	}
	if input.Age < 1 || input.Age > MaxAge {
		return &domain.ValidationError{Field: "age", Reason: fmt.Sprintf("must be between 1 and %d", MaxAge)}
	}
	if strings.TrimSpace(input.Phone) == "" {
		return &domain.ValidationError{Field: "phone", Reason: "is required"}
	}
	if strings.TrimSpace(input.DoctorName) == "" {
		return &domain.ValidationError{Field: "doctorName", Reason: "is required"}
	}
	return nil
}

// allocateToken returns the token and, when a claim was taken, the scope it
// was claimed in.
func (s *BookingService) allocateToken(ctx context.Context, doctorID string) (int, string, error) {
	if s.tokenScope == TokenScopeNone || s.tokenScope == "" {
		return s.nextToken(), "", nil
	}

	scope := s.scopeKey(doctorID)
	for attempt := 1; attempt <= s.tokenMaxAttempts; attempt++ {
		token := s.nextToken()

		if s.claims != nil {
			ok, err := s.claims.ClaimToken(ctx, scope, token, s.claimTTL)
			if err != nil {
				return 0, "", fmt.Errorf("%w: claim token: %w", domain.ErrIntake, err)
			}
			if !ok {
				s.collision(scope, token, attempt)
				continue
			}
		}

		taken, err := s.tokenTaken(ctx, doctorID, token)
		if err != nil {
			return 0, "", fmt.Errorf("%w: check token: %w", domain.ErrIntake, err)
		}
		if taken {
			s.collision(scope, token, attempt)
			continue
		}
		return token, scope, nil
	}
	return 0, "", fmt.Errorf("%w: no free token in scope %s after %d attempts", domain.ErrIntake, scope, s.tokenMaxAttempts)
}

func (s *BookingService) scopeKey(doctorID string) string {
	if s.tokenScope == TokenScopeGlobal {
		return string(TokenScopeGlobal)
	}
	if doctorID == "" {
		return "doctor/unassigned"
	}
	return "doctor/" + doctorID
}

func (s *BookingService) tokenTaken(ctx context.Context, doctorID string, token int) (bool, error) {
	if s.tokenScope == TokenScopeGlobal {
		return s.bookings.TokenExists(ctx, token)
	}
	return s.bookings.TokenExistsForDoctor(ctx, doctorID, token)
}

func (s *BookingService) collision(scope string, token, attempt int) {
	if s.metrics != nil {
		s.metrics.TokenCollisions.Inc()
	}
	s.log.Debug().Str("scope", scope).Int("token", token).Int("attempt", attempt).Msg("token collision")
}

// SetStatus overwrites the status of one of doctorID's bookings. Setting the
// current status again is a no-op.
func (s *BookingService) SetStatus(ctx context.Context, doctorID, bookingID, status string) (*domain.Booking, error) {
	next, err := domain.ParseBookingStatus(status)
	if err != nil {
		return nil, err
	}

	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get booking: %v", domain.ErrStoreUnavailable, err)
	}
	if current.DoctorID == "" || current.DoctorID != doctorID {
		return nil, domain.ErrBookingNotFound
	}
	if current.Status == next {
		return current, nil
	}
	if s.strictTransitions && next.Rank() < current.Status.Rank() {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, next)
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, next)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update status: %v", domain.ErrStoreUnavailable, err)
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(next)).Inc()
	}
	s.log.Info().
		Str("booking_id", bookingID).
		Str("doctor_id", doctorID).
		Str("from", string(current.Status)).
		Str("to", string(next)).
		Msg("booking status changed")

	if err := s.publish(ctx, kafka.EventBookingStatusChanged, updated, 0); err != nil {
		s.log.Warn().Err(err).Str("booking_id", bookingID).Msg("failed to publish booking_status_changed")
	}
	return updated, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, wait int) error {
	if s.producer == nil || s.queueTopic == "" {
		return nil
	}
	event := kafka.QueueEvent{
		Type:        eventType,
		BookingID:   booking.ID,
		Token:       booking.Token,
		DoctorID:    booking.DoctorID,
		PatientName: booking.PatientName,
		Phone:       booking.Phone,
		Status:      string(booking.Status),
		WaitMinutes: wait,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.queueTopic, booking.DoctorID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
