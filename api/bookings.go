package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/Domenick1991/opdqueue/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type submitBookingRequest struct {
	PatientName    string `json:"patient_name"`
	PatientProblem string `json:"patient_problem"`
	Age            int    `json:"age"`
	Phone          string `json:"phone"`
	DoctorName     string `json:"doctor_name"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type bookingResponse struct {
	ID             string `json:"id"`
	PatientName    string `json:"patient_name"`
	PatientProblem string `json:"patient_problem"`
	Age            int    `json:"age"`
	Phone          string `json:"phone"`
	DoctorID       string `json:"doctor_id"`
	DoctorName     string `json:"doctor_name"`
	Specialization string `json:"specialization"`
	Token          int    `json:"token"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at,omitempty"`
}

type submitBookingResponse struct {
	Booking                 bookingResponse `json:"booking"`
	Token                   int             `json:"token"`
	WaitTimeEstimateMinutes int             `json:"wait_time_estimate_minutes"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register mounts the public intake route.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.submit)
}

// RegisterDoctor mounts routes that need an authenticated doctor.
func (h *BookingHandler) RegisterDoctor(router *gin.RouterGroup) {
	router.PUT("/bookings/:id/status", h.setStatus)
}

func (h *BookingHandler) submit(c *gin.Context) {
	var req submitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := h.service.Submit(c.Request.Context(), booking.SubmitInput{
		PatientName:    req.PatientName,
		PatientProblem: req.PatientProblem,
		Age:            req.Age,
		Phone:          req.Phone,
		DoctorName:     req.DoctorName,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submitBookingResponse{
		Booking:                 toBookingResponse(*result.Booking),
		Token:                   result.Token,
		WaitTimeEstimateMinutes: result.WaitTimeEstimateMinutes,
	})
}

func (h *BookingHandler) setStatus(c *gin.Context) {
	doctor, ok := currentDoctor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "doctor identity required"})
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	updated, err := h.service.SetStatus(c.Request.Context(), doctor.ID, c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(*updated))
}

func toBookingResponse(b domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:             b.ID,
		PatientName:    b.PatientName,
		PatientProblem: b.PatientProblem,
		Age:            b.Age,
		Phone:          b.Phone,
		DoctorID:       b.DoctorID,
		DoctorName:     b.DoctorName,
		Specialization: b.Specialization,
		Token:          b.Token,
		Status:         string(b.Status),
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = b.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
