package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// RideHandler handles HTTP requests for ride postings.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// PlaceRequest is a named coordinate pair in a request body.
type PlaceRequest struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// CreateRideRequest is the HTTP request body for creating a posting.
// return_at makes it a round trip; extra_dates make it a series.
type CreateRideRequest struct {
	Role         string       `json:"role"` // DRIVER, PASSENGER
	Origin       PlaceRequest `json:"origin"`
	Dest         PlaceRequest `json:"dest"`
	DepartureAt  time.Time    `json:"departure_at"`
	ReturnAt     *time.Time   `json:"return_at,omitempty"`
	ExtraDates   []time.Time  `json:"extra_dates,omitempty"`
	SeatsTotal   int          `json:"seats_total"`
	PricePerSeat float64      `json:"price_per_seat"`
	Notes        string       `json:"notes,omitempty"`
	VehicleID    string       `json:"vehicle_id,omitempty"`
}

// RideResponse is the HTTP representation of a ride posting.
type RideResponse struct {
	ID           string  `json:"id"`
	PosterID     string  `json:"poster_id"`
	Role         string  `json:"role"`
	OriginName   string  `json:"origin_name"`
	OriginLat    float64 `json:"origin_lat"`
	OriginLng    float64 `json:"origin_lng"`
	DestName     string  `json:"dest_name"`
	DestLat      float64 `json:"dest_lat"`
	DestLng      float64 `json:"dest_lng"`
	DepartureAt  string  `json:"departure_at"`
	SeatsTotal   int     `json:"seats_total"`
	SeatsFree    *int    `json:"seats_free,omitempty"`
	PricePerSeat float64 `json:"price_per_seat"`
	Notes        string  `json:"notes,omitempty"`
	Status       string  `json:"status"`
	GroupID      string  `json:"group_id,omitempty"`
	IsRecurring  bool    `json:"is_recurring,omitempty"`
	IsReturnLeg  bool    `json:"is_return_leg,omitempty"`
	VehicleID    string  `json:"vehicle_id,omitempty"`
	CancelledAt  string  `json:"cancelled_at,omitempty"`
	CancelReason string  `json:"cancel_reason,omitempty"`
}

// RideGroupResponse is a logical posting group in the "my rides" view.
type RideGroupResponse struct {
	Kind  string         `json:"kind"` // SINGLE, ROUND_TRIP, SERIES
	Rides []RideResponse `json:"rides"`
}

func rideResponse(ride *domain.Ride) RideResponse {
	return RideResponse{
		ID:           ride.ID,
		PosterID:     ride.PosterID,
		Role:         string(ride.Role),
		OriginName:   ride.OriginName,
		OriginLat:    ride.OriginLat,
		OriginLng:    ride.OriginLng,
		DestName:     ride.DestName,
		DestLat:      ride.DestLat,
		DestLng:      ride.DestLng,
		DepartureAt:  ride.DepartureAt.Format(timeFormat),
		SeatsTotal:   ride.SeatsTotal,
		PricePerSeat: ride.PricePerSeat,
		Notes:        ride.Notes,
		Status:       string(ride.Status),
		GroupID:      ride.RoundTripGroupID,
		IsRecurring:  ride.IsRecurring,
		IsReturnLeg:  ride.IsReturnLeg,
		VehicleID:    ride.VehicleID,
		CancelledAt:  formatTime(ride.CancelledAt),
		CancelReason: ride.CancelReason,
	}
}

func listedRideResponse(lr service.ListedRide) RideResponse {
	resp := rideResponse(lr.Ride)
	free := lr.SeatsFree
	resp.SeatsFree = &free
	return resp
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	createReq := service.CreateRideRequest{
		PosterID:     userID(c),
		Role:         domain.RideRole(req.Role),
		Origin:       service.PlaceInput{Name: req.Origin.Name, Lat: req.Origin.Lat, Lng: req.Origin.Lng},
		Dest:         service.PlaceInput{Name: req.Dest.Name, Lat: req.Dest.Lat, Lng: req.Dest.Lng},
		DepartureAt:  req.DepartureAt,
		ExtraDates:   req.ExtraDates,
		SeatsTotal:   req.SeatsTotal,
		PricePerSeat: req.PricePerSeat,
		Notes:        req.Notes,
		VehicleID:    req.VehicleID,
	}
	if req.ReturnAt != nil {
		createReq.ReturnAt = *req.ReturnAt
	}

	rides, err := h.rideService.CreateRide(c.Request.Context(), createReq)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		response = append(response, rideResponse(ride))
	}
	respondJSON(c, http.StatusCreated, response)
}

// Search handles GET /v1/rides
func (h *RideHandler) Search(c *gin.Context) {
	req := service.SearchRequest{
		ViewerID: userID(c),
		Role:     domain.RideRole(c.Query("role")),
		NearLat:  parseFloat(c.Query("near_lat")),
		NearLng:  parseFloat(c.Query("near_lng")),
		RadiusKm: parseFloat(c.Query("radius_km")),
		Limit:    parseInt(c.Query("limit")),
	}
	req.MinFreeSeats = parseInt(c.Query("min_free_seats"))
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(timeFormat, from); err == nil {
			req.FromDate = t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(timeFormat, to); err == nil {
			req.ToDate = t
		}
	}

	listed, err := h.rideService.Search(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(listed))
	for _, lr := range listed {
		response = append(response, listedRideResponse(lr))
	}
	respondJSON(c, http.StatusOK, response)
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	lr, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, listedRideResponse(*lr))
}

// MyRides handles GET /v1/rides/mine
func (h *RideHandler) MyRides(c *gin.Context) {
	groups, err := h.rideService.MyRides(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideGroupResponse, 0, len(groups))
	for _, group := range groups {
		gr := RideGroupResponse{Kind: string(group.Kind)}
		for _, ride := range group.Rides {
			gr.Rides = append(gr.Rides, rideResponse(ride))
		}
		response = append(response, gr)
	}
	respondJSON(c, http.StatusOK, response)
}

// EditRideRequest is the HTTP request body for a scoped edit.
// Omitted fields are unchanged.
type EditRideRequest struct {
	Scope        string     `json:"scope"` // SINGLE, FUTURE, ALL
	DepartureAt  *time.Time `json:"departure_at,omitempty"`
	TimeOfDay    *string    `json:"time_of_day,omitempty"` // "15:04"
	SeatsTotal   *int       `json:"seats_total,omitempty"`
	PricePerSeat *float64   `json:"price_per_seat,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	VehicleID    *string    `json:"vehicle_id,omitempty"`
}

// EditRide handles PATCH /v1/rides/:id
func (h *RideHandler) EditRide(c *gin.Context) {
	var req EditRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rides, err := h.rideService.EditRide(c.Request.Context(), service.EditRideRequest{
		RideID:       c.Param("id"),
		EditorID:     userID(c),
		Scope:        service.EditScope(req.Scope),
		DepartureAt:  req.DepartureAt,
		TimeOfDay:    req.TimeOfDay,
		SeatsTotal:   req.SeatsTotal,
		PricePerSeat: req.PricePerSeat,
		Notes:        req.Notes,
		VehicleID:    req.VehicleID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		response = append(response, rideResponse(ride))
	}
	respondJSON(c, http.StatusOK, response)
}

// CancelRideRequest is the HTTP request body for a scoped cancellation.
type CancelRideRequest struct {
	Scope  string `json:"scope"` // SINGLE, FUTURE, ALL
	Reason string `json:"reason,omitempty"`
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rides, err := h.rideService.CancelRide(c.Request.Context(), service.CancelRideRequest{
		RideID:      c.Param("id"),
		RequesterID: userID(c),
		Scope:       service.EditScope(req.Scope),
		Reason:      req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		response = append(response, rideResponse(ride))
	}
	respondJSON(c, http.StatusOK, response)
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *RideHandler) CompleteRide(c *gin.Context) {
	ride, err := h.rideService.CompleteRide(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, rideResponse(ride))
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
