package domain

import (
	"fmt"
	"time"
)

type EventType string

const (
	EventTypeSurgery  EventType = "surgery"
	EventTypePersonal EventType = "personal"
)

// DateLayout is the calendar-day format used for doctor events.
const DateLayout = "2006-01-02"

type DoctorEvent struct {
	ID        string
	DoctorID  string
	Date      string
	Type      EventType
	CreatedAt time.Time
}

func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventTypeSurgery, EventTypePersonal:
		return EventType(s), nil
	}
	return "", &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown event type %q", s)}
}

// ParseEventDate validates a YYYY-MM-DD day and returns it at UTC midnight.
func ParseEventDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	return d, nil
}
