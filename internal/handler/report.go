package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// ReportHandler handles HTTP requests for reports and admin moderation.
type ReportHandler struct {
	moderationService *service.ModerationService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(moderationService *service.ModerationService) *ReportHandler {
	return &ReportHandler{moderationService: moderationService}
}

// CreateReportRequest is the HTTP request body for filing a report.
type CreateReportRequest struct {
	ReportedID string `json:"reported_id"`
	RideID     string `json:"ride_id,omitempty"`
	Reason     string `json:"reason"`
	Details    string `json:"details,omitempty"`
}

// ReportResponse is the HTTP representation of a report.
type ReportResponse struct {
	ID         string `json:"id"`
	ReporterID string `json:"reporter_id"`
	ReportedID string `json:"reported_id"`
	RideID     string `json:"ride_id,omitempty"`
	Reason     string `json:"reason"`
	Details    string `json:"details,omitempty"`
	Status     string `json:"status"`
	Resolution string `json:"resolution,omitempty"`
	ResolvedBy string `json:"resolved_by,omitempty"`
	CreatedAt  string `json:"created_at"`
	ResolvedAt string `json:"resolved_at,omitempty"`
}

func reportResponse(report *domain.Report) ReportResponse {
	return ReportResponse{
		ID:         report.ID,
		ReporterID: report.ReporterID,
		ReportedID: report.ReportedID,
		RideID:     report.RideID,
		Reason:     report.Reason,
		Details:    report.Details,
		Status:     string(report.Status),
		Resolution: report.Resolution,
		ResolvedBy: report.ResolvedBy,
		CreatedAt:  report.CreatedAt.Format(timeFormat),
		ResolvedAt: formatTime(report.ResolvedAt),
	}
}

// CreateReport handles POST /v1/reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	report, err := h.moderationService.CreateReport(c.Request.Context(), service.CreateReportRequest{
		ReporterID: userID(c),
		ReportedID: req.ReportedID,
		RideID:     req.RideID,
		Reason:     req.Reason,
		Details:    req.Details,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, reportResponse(report))
}

// OpenReports handles GET /v1/admin/reports
func (h *ReportHandler) OpenReports(c *gin.Context) {
	reports, err := h.moderationService.OpenReports(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ReportResponse, 0, len(reports))
	for _, report := range reports {
		response = append(response, reportResponse(report))
	}
	respondJSON(c, http.StatusOK, response)
}

// ResolveReportRequest is the HTTP request body for closing a report.
type ResolveReportRequest struct {
	Dismiss    bool   `json:"dismiss,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

// ResolveReport handles POST /v1/admin/reports/:id/resolve
func (h *ReportHandler) ResolveReport(c *gin.Context) {
	var req ResolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	report, err := h.moderationService.ResolveReport(c.Request.Context(), service.ResolveReportRequest{
		ReportID:   c.Param("id"),
		AdminID:    userID(c),
		Dismiss:    req.Dismiss,
		Resolution: req.Resolution,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, reportResponse(report))
}

// BanUserRequest is the HTTP request body for banning a user.
type BanUserRequest struct {
	Reason string `json:"reason,omitempty"`
}

// BanUser handles POST /v1/admin/users/:id/ban
func (h *ReportHandler) BanUser(c *gin.Context) {
	var req BanUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	profile, err := h.moderationService.BanUser(c.Request.Context(), userID(c), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, profileResponse(profile))
}

// UnbanUser handles POST /v1/admin/users/:id/unban
func (h *ReportHandler) UnbanUser(c *gin.Context) {
	profile, err := h.moderationService.UnbanUser(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, profileResponse(profile))
}
