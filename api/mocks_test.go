package api

import (
	"context"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/Domenick1991/opdqueue/internal/service/booking"
	"github.com/Domenick1991/opdqueue/internal/service/queue"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Submit(ctx context.Context, input booking.SubmitInput) (*booking.SubmitResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.SubmitResult), args.Error(1)
}

func (m *MockBookingUseCase) SetStatus(ctx context.Context, doctorID, bookingID, status string) (*domain.Booking, error) {
	args := m.Called(ctx, doctorID, bookingID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockQueueUseCase struct {
	mock.Mock
}

func (m *MockQueueUseCase) GetQueueForDoctor(ctx context.Context, doctorID string) (*queue.View, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.View), args.Error(1)
}

type MockCalendarUseCase struct {
	mock.Mock
}

func (m *MockCalendarUseCase) AddEvent(ctx context.Context, doctorID, date, eventType string) (*domain.DoctorEvent, error) {
	args := m.Called(ctx, doctorID, date, eventType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DoctorEvent), args.Error(1)
}

func (m *MockCalendarUseCase) DeleteEvent(ctx context.Context, doctorID, eventID string) error {
	args := m.Called(ctx, doctorID, eventID)
	return args.Error(0)
}

func (m *MockCalendarUseCase) ListEventsForDate(ctx context.Context, doctorID, date string) ([]domain.DoctorEvent, error) {
	args := m.Called(ctx, doctorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DoctorEvent), args.Error(1)
}

func (m *MockCalendarUseCase) ListEvents(ctx context.Context, doctorID string) ([]domain.DoctorEvent, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DoctorEvent), args.Error(1)
}

func (m *MockCalendarUseCase) HasEventType(ctx context.Context, doctorID, date, eventType string) (bool, error) {
	args := m.Called(ctx, doctorID, date, eventType)
	return args.Bool(0), args.Error(1)
}

func (m *MockCalendarUseCase) ExportICS(ctx context.Context, doctorID string) ([]byte, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockDirectoryUseCase struct {
	mock.Mock
}

func (m *MockDirectoryUseCase) ListDoctors(ctx context.Context) []domain.Doctor {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Doctor)
}

func (m *MockDirectoryUseCase) FindDoctorByName(ctx context.Context, name string) (*domain.Doctor, bool) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.Doctor), args.Bool(1)
}

func (m *MockDirectoryUseCase) FindDoctorByUID(ctx context.Context, uid string) (*domain.Doctor, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Doctor), args.Error(1)
}

func (m *MockDirectoryUseCase) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
