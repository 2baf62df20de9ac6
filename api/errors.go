package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/opdqueue/internal/auth"
	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatusFor maps a service error onto an HTTP status code.
func StatusFor(err error) int {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrDoctorNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEvent):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, domain.ErrIntake):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	resp := errorResponse{Error: err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	c.AbortWithStatusJSON(StatusFor(err), resp)
}
