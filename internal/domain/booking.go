package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending        BookingStatus = "pending"
	BookingStatusInConsultation BookingStatus = "in_consultation"
	BookingStatusCompleted      BookingStatus = "completed"
)

// DefaultSpecialization is recorded when the requested doctor is not in the directory.
const DefaultSpecialization = "General"

type Booking struct {
	ID             string
	PatientName    string
	PatientProblem string
	Age            int
	Phone          string
	DoctorID       string
	DoctorName     string
	Specialization string
	Token          int
	Status         BookingStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ParseBookingStatus accepts only the three canonical states.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingStatusPending, BookingStatusInConsultation, BookingStatusCompleted:
		return BookingStatus(s), nil
	}
	return "", ErrInvalidStatus
}

// NormalizeStoredStatus maps whatever an older writer left in the store onto a
// canonical state. Blank and unknown values read as pending.
func NormalizeStoredStatus(s string) BookingStatus {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, " ", "_")
	switch BookingStatus(v) {
	case BookingStatusInConsultation:
		return BookingStatusInConsultation
	case BookingStatusCompleted:
		return BookingStatusCompleted
	default:
		return BookingStatusPending
	}
}

// Rank orders states along the forward path.
func (s BookingStatus) Rank() int {
	switch s {
	case BookingStatusPending:
		return 0
	case BookingStatusInConsultation:
		return 1
	case BookingStatusCompleted:
		return 2
	default:
		return -1
	}
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted
}
