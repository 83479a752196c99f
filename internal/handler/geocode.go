package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/service"
)

// GeocodeHandler handles HTTP requests for place lookups.
type GeocodeHandler struct {
	geocodeService *service.GeocodeService
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(geocodeService *service.GeocodeService) *GeocodeHandler {
	return &GeocodeHandler{geocodeService: geocodeService}
}

// GeocodeResponse is the HTTP representation of a resolved place.
type GeocodeResponse struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// Forward handles GET /v1/geocode?q=
func (h *GeocodeHandler) Forward(c *gin.Context) {
	place, err := h.geocodeService.Forward(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, GeocodeResponse{
		DisplayName: place.DisplayName,
		Lat:         place.Lat,
		Lng:         place.Lng,
	})
}
