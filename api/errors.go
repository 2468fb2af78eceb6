package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/skyconnect/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrWrongStep),
		errors.Is(err, domain.ErrAlreadyConfirmed),
		errors.Is(err, domain.ErrNotConfirmed),
		errors.Is(err, domain.ErrSessionBusy),
		errors.Is(err, domain.ErrDuplicateCode):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDataUnavailable),
		errors.Is(err, domain.ErrPersistence):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
