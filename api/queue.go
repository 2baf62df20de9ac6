package api

import (
	"net/http"

	"github.com/Domenick1991/opdqueue/internal/service/queue"
	"github.com/gin-gonic/gin"
)

type QueueHandler struct {
	service queue.QueueUseCase
}

type queueEntryResponse struct {
	bookingResponse
	Position             int `json:"position"`
	EstimatedWaitMinutes int `json:"estimated_wait_minutes"`
}

type queueStatsResponse struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	InConsultation int `json:"in_consultation"`
	Completed      int `json:"completed"`
}

type queueResponse struct {
	DoctorID string               `json:"doctor_id"`
	Entries  []queueEntryResponse `json:"entries"`
	Stats    queueStatsResponse   `json:"stats"`
}

func NewQueueHandler(service queue.QueueUseCase) *QueueHandler {
	return &QueueHandler{service: service}
}

func (h *QueueHandler) Register(router *gin.RouterGroup) {
	router.GET("/queue", h.get)
}

func (h *QueueHandler) get(c *gin.Context) {
	doctor, ok := currentDoctor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "doctor identity required"})
		return
	}

	view, err := h.service.GetQueueForDoctor(c.Request.Context(), doctor.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQueueResponse(view))
}

func toQueueResponse(view *queue.View) queueResponse {
	entries := make([]queueEntryResponse, 0, len(view.Entries))
	for _, e := range view.Entries {
		entries = append(entries, queueEntryResponse{
			bookingResponse:      toBookingResponse(e.Booking),
			Position:             e.Position,
			EstimatedWaitMinutes: e.EstimatedWaitMinutes,
		})
	}
	return queueResponse{
		DoctorID: view.DoctorID,
		Entries:  entries,
		Stats: queueStatsResponse{
			Total:          view.Stats.Total,
			Pending:        view.Stats.Pending,
			InConsultation: view.Stats.InConsultation,
			Completed:      view.Stats.Completed,
		},
	}
}
