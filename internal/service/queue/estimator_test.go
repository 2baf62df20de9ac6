package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEstimator_At(t *testing.T) {
	e := Estimator{MinutesPerPatient: 7}
	for i := 0; i < 50; i++ {
		assert.Equal(t, i*7, e.At(i))
	}
	assert.Equal(t, 0, e.At(-3))
}

func TestEstimator_EstimateLiveCount(t *testing.T) {
	repo := &MockBookingRepository{}
	ctx := context.Background()
	e := Estimator{MinutesPerPatient: 15, Source: LiveCount{Bookings: repo}}

	repo.On("CountActiveByDoctor", ctx, "d-1").Return(3, nil).Once()

	position, minutes, err := e.Estimate(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, 3, position)
	assert.Equal(t, 45, minutes)
	repo.AssertExpectations(t)
}

func TestEstimator_EstimateUnknownDoctor(t *testing.T) {
	repo := &MockBookingRepository{}
	e := Estimator{MinutesPerPatient: 15, Source: LiveCount{Bookings: repo}}

	position, minutes, err := e.Estimate(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, position)
	assert.Zero(t, minutes)
	repo.AssertNotCalled(t, "CountActiveByDoctor", mock.Anything, mock.Anything)
}

func TestEstimator_EstimateSourceError(t *testing.T) {
	repo := &MockBookingRepository{}
	ctx := context.Background()
	e := Estimator{MinutesPerPatient: 15, Source: LiveCount{Bookings: repo}}

	repo.On("CountActiveByDoctor", ctx, "d-1").Return(0, errors.New("down")).Once()

	_, _, err := e.Estimate(ctx, "d-1")
	assert.Error(t, err)
}

func TestEstimator_RandomPlaceholder(t *testing.T) {
	e := Estimator{MinutesPerPatient: 15, Source: RandomPlaceholder{Max: 5}}
	for i := 0; i < 200; i++ {
		position, minutes, err := e.Estimate(context.Background(), "d-1")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, position, 0)
		assert.Less(t, position, 5)
		assert.Equal(t, position*15, minutes)
	}

	position, err := RandomPlaceholder{}.PatientsAhead(context.Background(), "d-1")
	require.NoError(t, err)
	assert.Zero(t, position)
}

func TestEstimator_NoSource(t *testing.T) {
	position, minutes, err := Estimator{MinutesPerPatient: 15}.Estimate(context.Background(), "d-1")
	require.NoError(t, err)
	assert.Zero(t, position)
	assert.Zero(t, minutes)
}
