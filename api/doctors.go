package api

import (
	"net/http"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/Domenick1991/opdqueue/internal/service/directory"
	"github.com/gin-gonic/gin"
)

type DoctorHandler struct {
	directory directory.DirectoryUseCase
}

type doctorResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

func NewDoctorHandler(directory directory.DirectoryUseCase) *DoctorHandler {
	return &DoctorHandler{directory: directory}
}

func (h *DoctorHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
}

func (h *DoctorHandler) list(c *gin.Context) {
	doctors := h.directory.ListDoctors(c.Request.Context())
	resp := make([]doctorResponse, 0, len(doctors))
	for _, d := range doctors {
		resp = append(resp, toDoctorResponse(d))
	}
	c.JSON(http.StatusOK, resp)
}

func toDoctorResponse(d domain.Doctor) doctorResponse {
	return doctorResponse{ID: d.ID, Name: d.Name, Specialization: d.Specialization}
}
