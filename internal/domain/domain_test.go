package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingStatus(t *testing.T) {
	for _, s := range []string{"pending", "in_consultation", "completed"} {
		got, err := ParseBookingStatus(s)
		require.NoError(t, err)
		assert.Equal(t, BookingStatus(s), got)
	}

	for _, s := range []string{"", "Pending", "cancelled", "done"} {
		_, err := ParseBookingStatus(s)
		assert.ErrorIs(t, err, ErrInvalidStatus, s)
	}
}

func TestNormalizeStoredStatus(t *testing.T) {
	testCases := map[string]BookingStatus{
		"":                BookingStatusPending,
		"Pending":         BookingStatusPending,
		"pending":         BookingStatusPending,
		"In Consultation": BookingStatusInConsultation,
		"in_consultation": BookingStatusInConsultation,
		"COMPLETED":       BookingStatusCompleted,
		"garbage":         BookingStatusPending,
	}
	for in, want := range testCases {
		assert.Equal(t, want, NormalizeStoredStatus(in), in)
	}
}

func TestBookingStatus_Rank(t *testing.T) {
	assert.Less(t, BookingStatusPending.Rank(), BookingStatusInConsultation.Rank())
	assert.Less(t, BookingStatusInConsultation.Rank(), BookingStatusCompleted.Rank())
	assert.Equal(t, -1, BookingStatus("x").Rank())
	assert.True(t, BookingStatusCompleted.IsTerminal())
	assert.False(t, BookingStatusPending.IsTerminal())
}

func TestParseEventType(t *testing.T) {
	got, err := ParseEventType("surgery")
	require.NoError(t, err)
	assert.Equal(t, EventTypeSurgery, got)

	_, err = ParseEventType("holiday")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "type", ve.Field)
}

func TestParseEventDate(t *testing.T) {
	d, err := ParseEventDate("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", d.Format(DateLayout))

	for _, bad := range []string{"", "2025-3-1", "01/03/2025", "2025-02-30"} {
		_, err := ParseEventDate(bad)
		assert.True(t, IsValidation(err), bad)
	}
}

func TestIsValidation_Wrapped(t *testing.T) {
	err := fmt.Errorf("submit: %w", &ValidationError{Field: "age", Reason: "out of range"})
	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(errors.New("plain")))
	assert.Equal(t, "submit: invalid age: out of range", err.Error())
}
