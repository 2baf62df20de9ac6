package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/opdqueue/internal/auth"
	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const doctorContextKey = "doctor"

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type DoctorResolver interface {
	FindDoctorByUID(ctx context.Context, uid string) (*domain.Doctor, error)
}

// DoctorAuth admits requests carrying a valid bearer token whose subject
// belongs to a known doctor, and stores that doctor on the context.
func DoctorAuth(tokens TokenParser, doctors DoctorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			writeError(c, err)
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		doctor, err := doctors.FindDoctorByUID(c.Request.Context(), claims.Subject)
		if errors.Is(err, domain.ErrDoctorNotFound) {
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Error: "token subject is not a registered doctor"})
			return
		}
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(doctorContextKey, doctor)
		c.Next()
	}
}

func currentDoctor(c *gin.Context) (*domain.Doctor, bool) {
	v, ok := c.Get(doctorContextKey)
	if !ok {
		return nil, false
	}
	d, ok := v.(*domain.Doctor)
	return d, ok && d != nil
}

// RequestLogger writes one zerolog line per request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}
