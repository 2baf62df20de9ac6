package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCalendarHandler_add(t *testing.T) {
	mockService := &MockCalendarUseCase{}
	handler := NewCalendarHandler(mockService)

	c, w := newTestContext("POST", "/api/doctor/events", addEventRequest{Date: "2024-06-10", Type: "surgery"})
	c.Set(doctorContextKey, mehta)

	event := &domain.DoctorEvent{ID: "e-1", DoctorID: "d-mehta", Date: "2024-06-10", Type: domain.EventTypeSurgery}
	mockService.On("AddEvent", c.Request.Context(), "d-mehta", "2024-06-10", "surgery").Return(event, nil)

	handler.add(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response eventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, eventResponse{ID: "e-1", DoctorID: "d-mehta", Date: "2024-06-10", Type: "surgery"}, response)
}

func TestCalendarHandler_add_Duplicate(t *testing.T) {
	mockService := &MockCalendarUseCase{}
	handler := NewCalendarHandler(mockService)

	c, w := newTestContext("POST", "/api/doctor/events", addEventRequest{Date: "2024-06-10", Type: "surgery"})
	c.Set(doctorContextKey, mehta)
	mockService.On("AddEvent", c.Request.Context(), "d-mehta", "2024-06-10", "surgery").Return(nil, domain.ErrDuplicateEvent)

	handler.add(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCalendarHandler_add_InvalidDate(t *testing.T) {
	mockService := &MockCalendarUseCase{}
	handler := NewCalendarHandler(mockService)

	c, w := newTestContext("POST", "/api/doctor/events", addEventRequest{Date: "tomorrow", Type: "surgery"})
	c.Set(doctorContextKey, mehta)
	mockService.On("AddEvent", c.Request.Context(), "d-mehta", "tomorrow", "surgery").
		Return(nil, &domain.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"})

	handler.add(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"date"`)
}

func TestCalendarHandler_list(t *testing.T) {
	mockService := &MockCalendarUseCase{}
	handler := NewCalendarHandler(mockService)

	c, w := newTestContext("GET", "/api/doctor/events", nil)
	c.Set(doctorContextKey, mehta)
	mockService.On("ListEvents", c.Request.Context(), "d-mehta").Return([]domain.DoctorEvent{
		{ID: "e-1", DoctorID: "d-mehta", Date: "2024-06-10", Type: domain.EventTypeSurgery},
		{ID: "e-2", DoctorID: "d-mehta", Date: "2024-06-12", Type: domain.EventTypePersonal},
	}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []eventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 2)
	mockService.AssertNotCalled(t, "ListEventsForDate", mock.Anything, mock.Anything, mock.Anything)
}

func TestCalendarHandler_list_ForDate(t *testing.T) {
	mockService := &MockCalendarUseCase{}
	handler := NewCalendarHandler(mockService)

	c, w := newTestContext("GET", "/api/doctor/events?date=2024-06-10", nil)
	c.Set(doctorContextKey, mehta)
	mockService.On("ListEventsForDate", c.Request.Context(), "d-mehta", "2024-06-10").Return([]domain.DoctorEvent{}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestCalendarHandler_delete(t *testing.T) {
	mockService := &MockCalendarUseCase{}
	handler := NewCalendarHandler(mockService)

	c, w := newTestContext("DELETE", "/api/doctor/events/e-1", nil)
	c.Params = []gin.Param{{Key: "id", Value: "e-1"}}
	c.Set(doctorContextKey, mehta)
	mockService.On("DeleteEvent", c.Request.Context(), "d-mehta", "e-1").Return(nil)

	handler.delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockService.AssertExpectations(t)
}
