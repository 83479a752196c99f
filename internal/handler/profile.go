package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// ProfileHandler handles HTTP requests for profiles, vehicles, and blocks.
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// RegisterRequest is the HTTP request body for creating a profile.
type RegisterRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// ProfileResponse is the HTTP representation of a profile.
type ProfileResponse struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	PhoneVerified bool   `json:"phone_verified"`
	Bio           string `json:"bio,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	IsAdmin       bool   `json:"is_admin,omitempty"`
	Banned        bool   `json:"banned,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func profileResponse(profile *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:            profile.ID,
		DisplayName:   profile.DisplayName,
		Email:         profile.Email,
		Phone:         profile.Phone,
		PhoneVerified: profile.PhoneVerified,
		Bio:           profile.Bio,
		AvatarURL:     profile.AvatarURL,
		IsAdmin:       profile.IsAdmin,
		Banned:        profile.Banned,
		CreatedAt:     profile.CreatedAt.Format(timeFormat),
	}
}

// publicProfileResponse strips contact details for viewers other than
// the profile owner.
func publicProfileResponse(profile *domain.Profile) ProfileResponse {
	resp := profileResponse(profile)
	resp.Email = ""
	resp.Phone = ""
	return resp
}

// Register handles POST /v1/profiles/register
func (h *ProfileHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	profile, err := h.profileService.Register(c.Request.Context(), service.RegisterRequest{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, profileResponse(profile))
}

// GetProfile handles GET /v1/profiles/:id
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if profile.ID == userID(c) {
		respondJSON(c, http.StatusOK, profileResponse(profile))
		return
	}
	respondJSON(c, http.StatusOK, publicProfileResponse(profile))
}

// UpdateProfileRequest is the HTTP request body for a partial profile
// update. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// UpdateProfile handles PATCH /v1/profiles/me
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), service.UpdateProfileRequest{
		UserID:      userID(c),
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, profileResponse(profile))
}

// Deactivate handles DELETE /v1/profiles/me
func (h *ProfileHandler) Deactivate(c *gin.Context) {
	if _, err := h.profileService.Deactivate(c.Request.Context(), userID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddVehicleRequest is the HTTP request body for registering a vehicle.
type AddVehicleRequest struct {
	Make      string `json:"make"`
	Model     string `json:"model"`
	Color     string `json:"color,omitempty"`
	Year      int    `json:"year,omitempty"`
	Seats     int    `json:"seats"`
	PlateHint string `json:"plate_hint,omitempty"`
}

// VehicleResponse is the HTTP representation of a vehicle.
type VehicleResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	Color     string `json:"color,omitempty"`
	Year      int    `json:"year,omitempty"`
	Seats     int    `json:"seats"`
	PlateHint string `json:"plate_hint,omitempty"`
	CreatedAt string `json:"created_at"`
}

func vehicleResponse(vehicle *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:        vehicle.ID,
		OwnerID:   vehicle.OwnerID,
		Make:      vehicle.Make,
		Model:     vehicle.Model,
		Color:     vehicle.Color,
		Year:      vehicle.Year,
		Seats:     vehicle.Seats,
		PlateHint: vehicle.PlateHint,
		CreatedAt: vehicle.CreatedAt.Format(timeFormat),
	}
}

// AddVehicle handles POST /v1/vehicles
func (h *ProfileHandler) AddVehicle(c *gin.Context) {
	var req AddVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	vehicle, err := h.profileService.AddVehicle(c.Request.Context(), service.AddVehicleRequest{
		OwnerID:   userID(c),
		Make:      req.Make,
		Model:     req.Model,
		Color:     req.Color,
		Year:      req.Year,
		Seats:     req.Seats,
		PlateHint: req.PlateHint,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, vehicleResponse(vehicle))
}

// ListVehicles handles GET /v1/vehicles
func (h *ProfileHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.profileService.ListVehicles(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]VehicleResponse, 0, len(vehicles))
	for _, vehicle := range vehicles {
		response = append(response, vehicleResponse(vehicle))
	}
	respondJSON(c, http.StatusOK, response)
}

// DeleteVehicle handles DELETE /v1/vehicles/:id
func (h *ProfileHandler) DeleteVehicle(c *gin.Context) {
	if err := h.profileService.DeleteVehicle(c.Request.Context(), c.Param("id"), userID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BlockRequest is the HTTP request body for blocking a user.
type BlockRequest struct {
	BlockedID string `json:"blocked_id"`
}

// BlockResponse is the HTTP representation of a block.
type BlockResponse struct {
	BlockerID string `json:"blocker_id"`
	BlockedID string `json:"blocked_id"`
	CreatedAt string `json:"created_at"`
}

// Block handles POST /v1/blocks
func (h *ProfileHandler) Block(c *gin.Context) {
	var req BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.profileService.Block(c.Request.Context(), userID(c), req.BlockedID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unblock handles DELETE /v1/blocks/:id
func (h *ProfileHandler) Unblock(c *gin.Context) {
	if err := h.profileService.Unblock(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListBlocks handles GET /v1/blocks
func (h *ProfileHandler) ListBlocks(c *gin.Context) {
	blocks, err := h.profileService.ListBlocks(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BlockResponse, 0, len(blocks))
	for _, block := range blocks {
		response = append(response, BlockResponse{
			BlockerID: block.BlockerID,
			BlockedID: block.BlockedID,
			CreatedAt: block.CreatedAt.Format(timeFormat),
		})
	}
	respondJSON(c, http.StatusOK, response)
}
