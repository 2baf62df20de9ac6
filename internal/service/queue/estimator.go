package queue

import (
	"context"
	"math/rand/v2"
)

// PositionSource reports how many patients are ahead of a new arrival for a doctor.
type PositionSource interface {
	PatientsAhead(ctx context.Context, doctorID string) (int, error)
}

// ActiveCounter is the slice of the booking store LiveCount needs.
type ActiveCounter interface {
	CountActiveByDoctor(ctx context.Context, doctorID string) (int, error)
}

// LiveCount counts the doctor's bookings that are not completed yet.
type LiveCount struct {
	Bookings ActiveCounter
}

func (l LiveCount) PatientsAhead(ctx context.Context, doctorID string) (int, error) {
	if doctorID == "" {
		return 0, nil
	}
	return l.Bookings.CountActiveByDoctor(ctx, doctorID)
}

// RandomPlaceholder draws a position in [0, Max). It stands in for a real
// count where none is available.
type RandomPlaceholder struct {
	Max int
}

func (r RandomPlaceholder) PatientsAhead(context.Context, string) (int, error) {
	if r.Max <= 0 {
		return 0, nil
	}
	return rand.IntN(r.Max), nil
}

// Estimator turns a queue position into minutes of waiting. The submission
// path asks its Source for the position; the queue view passes the index.
type Estimator struct {
	MinutesPerPatient int
	Source            PositionSource
}

func (e Estimator) At(position int) int {
	if position < 0 {
		return 0
	}
	return position * e.MinutesPerPatient
}

func (e Estimator) Estimate(ctx context.Context, doctorID string) (position, minutes int, err error) {
	if e.Source == nil {
		return 0, 0, nil
	}
	position, err = e.Source.PatientsAhead(ctx, doctorID)
	if err != nil {
		return 0, 0, err
	}
	return position, e.At(position), nil
}
