package api

import (
	"net/http"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/Domenick1991/opdqueue/internal/service/calendar"
	"github.com/gin-gonic/gin"
)

type CalendarHandler struct {
	service calendar.CalendarUseCase
}

type addEventRequest struct {
	Date string `json:"date"`
	Type string `json:"type"`
}

type eventResponse struct {
	ID       string `json:"id"`
	DoctorID string `json:"doctor_id"`
	Date     string `json:"date"`
	Type     string `json:"type"`
}

func NewCalendarHandler(service calendar.CalendarUseCase) *CalendarHandler {
	return &CalendarHandler{service: service}
}

func (h *CalendarHandler) Register(router *gin.RouterGroup) {
	router.GET("/events", h.list)
	router.POST("/events", h.add)
	router.DELETE("/events/:id", h.delete)
}

// list returns the whole calendar, or a single day when ?date= is set.
func (h *CalendarHandler) list(c *gin.Context) {
	doctor, ok := currentDoctor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "doctor identity required"})
		return
	}

	var (
		events []domain.DoctorEvent
		err    error
	)
	if date := c.Query("date"); date != "" {
		events, err = h.service.ListEventsForDate(c.Request.Context(), doctor.ID, date)
	} else {
		events, err = h.service.ListEvents(c.Request.Context(), doctor.ID)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CalendarHandler) add(c *gin.Context) {
	doctor, ok := currentDoctor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "doctor identity required"})
		return
	}

	var req addEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	event, err := h.service.AddEvent(c.Request.Context(), doctor.ID, req.Date, req.Type)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEventResponse(*event))
}

func (h *CalendarHandler) delete(c *gin.Context) {
	doctor, ok := currentDoctor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "doctor identity required"})
		return
	}

	if err := h.service.DeleteEvent(c.Request.Context(), doctor.ID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toEventResponse(e domain.DoctorEvent) eventResponse {
	return eventResponse{ID: e.ID, DoctorID: e.DoctorID, Date: e.Date, Type: string(e.Type)}
}
