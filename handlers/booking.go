package handlers

import (
	"context"
	"net/http"

	"meetmydesigners/middleware"
	"meetmydesigners/models"
	"meetmydesigners/services/booking"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	Bookings booking.BookingService
}

func NewBookingHandler(bs booking.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: bs}
}

// CreateBookingHandler handles POST /api/bookings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.Bookings.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListBookingsHandler lists the caller's bookings as client or designer.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	userID, role := middleware.CurrentUser(c)
	bookings, err := h.Bookings.ListBookings(c.Request.Context(), userID, role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	h.apply(c, h.Bookings.GetBooking)
}

func (h *BookingHandler) AcceptBookingHandler(c *gin.Context) {
	h.apply(c, h.Bookings.AcceptBooking)
}

func (h *BookingHandler) RejectBookingHandler(c *gin.Context) {
	h.apply(c, h.Bookings.RejectBooking)
}

func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	h.apply(c, h.Bookings.CancelBooking)
}

type bookingAction func(ctx context.Context, userID, bookingID string) (*models.Booking, error)

func (h *BookingHandler) apply(c *gin.Context, action bookingAction) {
	userID, _ := middleware.CurrentUser(c)
	b, err := action(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
