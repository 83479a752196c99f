package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// BookingHandler handles HTTP requests for seat bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// RequestBookingRequest is the HTTP request body for requesting seats.
type RequestBookingRequest struct {
	Seats   int    `json:"seats"`
	Message string `json:"message,omitempty"`
}

// InvitePassengerRequest is the HTTP request body for inviting a passenger.
type InvitePassengerRequest struct {
	PassengerID string `json:"passenger_id"`
	Seats       int    `json:"seats,omitempty"`
	Message     string `json:"message,omitempty"`
}

// CancelBookingRequest is the HTTP request body for cancelling a booking.
type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}

// BookingResponse is the HTTP representation of a booking.
type BookingResponse struct {
	ID           string `json:"id"`
	RideID       string `json:"ride_id"`
	PassengerID  string `json:"passenger_id"`
	Seats        int    `json:"seats"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	CreatedAt    string `json:"created_at"`
	RespondedAt  string `json:"responded_at,omitempty"`
	CancelledAt  string `json:"cancelled_at,omitempty"`
	CancelReason string `json:"cancel_reason,omitempty"`
}

func bookingResponse(booking *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:           booking.ID,
		RideID:       booking.RideID,
		PassengerID:  booking.PassengerID,
		Seats:        booking.Seats,
		Status:       string(booking.Status),
		Message:      booking.Message,
		CreatedAt:    booking.CreatedAt.Format(timeFormat),
		RespondedAt:  formatTime(booking.RespondedAt),
		CancelledAt:  formatTime(booking.CancelledAt),
		CancelReason: booking.CancelReason,
	}
}

// RequestBooking handles POST /v1/rides/:id/bookings
func (h *BookingHandler) RequestBooking(c *gin.Context) {
	var req RequestBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.RequestBooking(c.Request.Context(), service.RequestBookingRequest{
		RideID:      c.Param("id"),
		PassengerID: userID(c),
		Seats:       req.Seats,
		Message:     req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, bookingResponse(booking))
}

// InvitePassenger handles POST /v1/rides/:id/invite
func (h *BookingHandler) InvitePassenger(c *gin.Context) {
	var req InvitePassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.InvitePassenger(c.Request.Context(), service.InvitePassengerRequest{
		RideID:      c.Param("id"),
		PosterID:    userID(c),
		PassengerID: req.PassengerID,
		Seats:       req.Seats,
		Message:     req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, bookingResponse(booking))
}

// Confirm handles POST /v1/bookings/:id/confirm
func (h *BookingHandler) Confirm(c *gin.Context) {
	booking, err := h.bookingService.Confirm(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, bookingResponse(booking))
}

// Accept handles POST /v1/bookings/:id/accept
func (h *BookingHandler) Accept(c *gin.Context) {
	booking, err := h.bookingService.AcceptInvite(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, bookingResponse(booking))
}

// Decline handles POST /v1/bookings/:id/decline
func (h *BookingHandler) Decline(c *gin.Context) {
	booking, err := h.bookingService.Decline(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, bookingResponse(booking))
}

// Cancel handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.Cancel(c.Request.Context(), c.Param("id"), userID(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, bookingResponse(booking))
}

// MyBookings handles GET /v1/bookings/mine
func (h *BookingHandler) MyBookings(c *gin.Context) {
	bookings, err := h.bookingService.MyBookings(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		response = append(response, bookingResponse(booking))
	}
	respondJSON(c, http.StatusOK, response)
}

// ReceivedBookings handles GET /v1/bookings/received
func (h *BookingHandler) ReceivedBookings(c *gin.Context) {
	bookings, err := h.bookingService.ReceivedBookings(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		response = append(response, bookingResponse(booking))
	}
	respondJSON(c, http.StatusOK, response)
}
