package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rideshare/internal/repository"
	"rideshare/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrNoPlaceFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPosterID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidOrigin),
		errors.Is(err, service.ErrInvalidDestination),
		errors.Is(err, service.ErrDepartureInPast),
		errors.Is(err, service.ErrInvalidSeats),
		errors.Is(err, service.ErrReturnBeforeOutbound),
		errors.Is(err, service.ErrSeriesWithReturn),
		errors.Is(err, service.ErrInvalidScope),
		errors.Is(err, service.ErrDateChangeNeedsSingleScope),
		errors.Is(err, service.ErrInvalidTimeOfDay),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrSelfConversation),
		errors.Is(err, service.ErrSelfBlock),
		errors.Is(err, service.ErrSelfReport),
		errors.Is(err, service.ErrInvalidReason),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidDisplayName),
		errors.Is(err, service.ErrInvalidQuery):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrSeatsBelowBooked),
		errors.Is(err, service.ErrRideNotActive),
		errors.Is(err, service.ErrRideDeparted),
		errors.Is(err, service.ErrRideNotDeparted),
		errors.Is(err, service.ErrBookingExists),
		errors.Is(err, service.ErrNotEnoughSeats),
		errors.Is(err, service.ErrRideBusy),
		errors.Is(err, service.ErrInvalidBookingState),
		errors.Is(err, service.ErrBookingAlreadyCancelled),
		errors.Is(err, service.ErrReportClosed),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrNotRideOwner),
		errors.Is(err, service.ErrOwnRide),
		errors.Is(err, service.ErrNotDriverRide),
		errors.Is(err, service.ErrNotBookingParty),
		errors.Is(err, service.ErrBlocked),
		errors.Is(err, service.ErrBanned),
		errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrNotAdmin),
		errors.Is(err, service.ErrNotVehicleOwner):
		return http.StatusForbidden

	// Service unavailable
	case errors.Is(err, service.ErrGeocodeUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// userID returns the authenticated user ID set by the auth middleware.
func userID(c *gin.Context) string {
	return c.GetString("userID")
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

// formatTime renders a timestamp, or "" for the zero value.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeFormat)
}
