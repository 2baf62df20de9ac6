package queue_service_api

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/Domenick1991/opdqueue/internal/service/booking"
	"github.com/Domenick1991/opdqueue/internal/service/calendar"
	"github.com/Domenick1991/opdqueue/internal/service/directory"
	"github.com/Domenick1991/opdqueue/internal/service/queue"
	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const calendarContentType = "text/calendar; charset=utf-8"

// Server implements QueueServiceServer on top of the domain services.
type Server struct {
	directory directory.DirectoryUseCase
	bookings  booking.BookingUseCase
	queue     queue.QueueUseCase
	calendar  calendar.CalendarUseCase
}

func NewServer(
	directory directory.DirectoryUseCase,
	bookings booking.BookingUseCase,
	queue queue.QueueUseCase,
	calendar calendar.CalendarUseCase,
) *Server {
	return &Server{directory: directory, bookings: bookings, queue: queue, calendar: calendar}
}

func (s *Server) ListDoctors(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	doctors := s.directory.ListDoctors(ctx)
	list := make([]any, 0, len(doctors))
	for _, d := range doctors {
		list = append(list, map[string]any{
			"id":             d.ID,
			"name":           d.Name,
			"specialization": d.Specialization,
		})
	}
	return newStruct(map[string]any{"doctors": list})
}

func (s *Server) SubmitBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	age, err := intField(req, "age")
	if err != nil {
		return nil, toStatus(err)
	}
	result, err := s.bookings.Submit(ctx, booking.SubmitInput{
		PatientName:    stringField(req, "patient_name"),
		PatientProblem: stringField(req, "patient_problem"),
		Age:            age,
		Phone:          stringField(req, "phone"),
		DoctorName:     stringField(req, "doctor_name"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		"booking":                    bookingFields(*result.Booking),
		"token":                      result.Token,
		"wait_time_estimate_minutes": result.WaitTimeEstimateMinutes,
	})
}

func (s *Server) GetQueue(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	doctor, err := requireDoctor(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.queue.GetQueueForDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	entries := make([]any, 0, len(view.Entries))
	for _, e := range view.Entries {
		fields := bookingFields(e.Booking)
		fields["position"] = e.Position
		fields["estimated_wait_minutes"] = e.EstimatedWaitMinutes
		entries = append(entries, fields)
	}
	return newStruct(map[string]any{
		"doctor_id": view.DoctorID,
		"entries":   entries,
		"stats": map[string]any{
			"total":           view.Stats.Total,
			"pending":         view.Stats.Pending,
			"in_consultation": view.Stats.InConsultation,
			"completed":       view.Stats.Completed,
		},
	})
}

func (s *Server) SetStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	doctor, err := requireDoctor(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := s.bookings.SetStatus(ctx, doctor.ID, stringField(req, "booking_id"), stringField(req, "status"))
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(bookingFields(*updated))
}

func (s *Server) AddEvent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	doctor, err := requireDoctor(ctx)
	if err != nil {
		return nil, err
	}
	event, err := s.calendar.AddEvent(ctx, doctor.ID, stringField(req, "date"), stringField(req, "type"))
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(eventFields(*event))
}

func (s *Server) DeleteEvent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	doctor, err := requireDoctor(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.calendar.DeleteEvent(ctx, doctor.ID, stringField(req, "event_id")); err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{}, nil
}

// ListEvents returns the doctor's whole calendar, or one day when "date" is set.
func (s *Server) ListEvents(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	doctor, err := requireDoctor(ctx)
	if err != nil {
		return nil, err
	}

	var events []domain.DoctorEvent
	if date := stringField(req, "date"); date != "" {
		events, err = s.calendar.ListEventsForDate(ctx, doctor.ID, date)
	} else {
		events, err = s.calendar.ListEvents(ctx, doctor.ID)
	}
	if err != nil {
		return nil, toStatus(err)
	}

	list := make([]any, 0, len(events))
	for _, e := range events {
		list = append(list, eventFields(e))
	}
	return newStruct(map[string]any{"events": list})
}

func (s *Server) ExportCalendar(ctx context.Context, _ *structpb.Struct) (*httpbody.HttpBody, error) {
	doctor, err := requireDoctor(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.calendar.ExportICS(ctx, doctor.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &httpbody.HttpBody{ContentType: calendarContentType, Data: data}, nil
}

func requireDoctor(ctx context.Context) (*domain.Doctor, error) {
	doctor, ok := DoctorFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "doctor identity required")
	}
	return doctor, nil
}

func bookingFields(b domain.Booking) map[string]any {
	fields := map[string]any{
		"id":              b.ID,
		"patient_name":    b.PatientName,
		"patient_problem": b.PatientProblem,
		"age":             b.Age,
		"phone":           b.Phone,
		"doctor_id":       b.DoctorID,
		"doctor_name":     b.DoctorName,
		"specialization":  b.Specialization,
		"token":           b.Token,
		"status":          string(b.Status),
	}
	if !b.CreatedAt.IsZero() {
		fields["created_at"] = b.CreatedAt.UTC().Format(time.RFC3339)
	}
	return fields
}

func eventFields(e domain.DoctorEvent) map[string]any {
	return map[string]any{
		"id":        e.ID,
		"doctor_id": e.DoctorID,
		"date":      e.Date,
		"type":      string(e.Type),
	}
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// intField accepts a JSON number or a numeric string, as gateways send either.
// A missing field reads as 0; anything that is not a whole number is rejected.
func intField(s *structpb.Struct, key string) (int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, nil
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
			return 0, &domain.ValidationError{Field: key, Reason: "must be a whole number"}
		}
		return int(n), nil
	case *structpb.Value_StringValue:
		n, err := strconv.Atoi(strings.TrimSpace(k.StringValue))
		if err != nil {
			return 0, &domain.ValidationError{Field: key, Reason: "must be a whole number"}
		}
		return n, nil
	}
	return 0, &domain.ValidationError{Field: key, Reason: "must be a whole number"}
}

var _ QueueServiceServer = (*Server)(nil)
