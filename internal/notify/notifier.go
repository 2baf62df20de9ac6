package notify

import (
	"context"
	"fmt"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/Domenick1991/opdqueue/internal/kafka"
	"github.com/rs/zerolog"
)

// Notifier renders patient-facing messages for queue events. Delivery is not
// wired to any SMS gateway; messages are only logged.
type Notifier struct {
	log zerolog.Logger
}

func NewNotifier(log zerolog.Logger) *Notifier {
	return &Notifier{log: log.With().Str("component", "notifier").Logger()}
}

func (n *Notifier) Send(ctx context.Context, event kafka.QueueEvent) error {
	msg, ok := Message(event)
	if !ok {
		return nil
	}
	n.log.Info().
		Str("phone", event.Phone).
		Str("booking_id", event.BookingID).
		Int("token", event.Token).
		Str("event", event.Type).
		Msg(msg)
	return nil
}

// Message returns the text sent to the patient, or false when the event does
// not concern the patient.
func Message(event kafka.QueueEvent) (string, bool) {
	if event.Phone == "" {
		return "", false
	}
	switch event.Type {
	case kafka.EventBookingSubmitted:
		return fmt.Sprintf("Hello %s, your token is #%d. Estimated wait: %d minutes.", event.PatientName, event.Token, event.WaitMinutes), true
	case kafka.EventBookingStatusChanged:
		switch domain.BookingStatus(event.Status) {
		case domain.BookingStatusInConsultation:
			return fmt.Sprintf("Token #%d, please proceed to the consultation room.", event.Token), true
		case domain.BookingStatusCompleted:
			return fmt.Sprintf("Token #%d, your consultation is complete. Get well soon.", event.Token), true
		}
	}
	return "", false
}
