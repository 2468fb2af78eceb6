package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/skyconnect/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// BookingHandler reads confirmed bookings back from storage.
type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/:code", h.get)
}

func (h *BookingHandler) get(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))
	stored, err := h.service.GetBooking(c.Request.Context(), code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}
