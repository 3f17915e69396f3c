package handlers

import (
	"net/http"
	"time"

	"meetmydesigners/middleware"
	"meetmydesigners/models"
	"meetmydesigners/services/availability"
	"meetmydesigners/services/profile"

	"github.com/gin-gonic/gin"
)

// DesignerHandler serves the designer directory, availability queries and
// designer self-service.
type DesignerHandler struct {
	Designers    profile.DesignerService
	Availability availability.AvailabilityService
}

func NewDesignerHandler(ds profile.DesignerService, as availability.AvailabilityService) *DesignerHandler {
	return &DesignerHandler{Designers: ds, Availability: as}
}

// ListDesignersHandler handles GET /api/designers?online=true.
func (h *DesignerHandler) ListDesignersHandler(c *gin.Context) {
	designers, err := h.Designers.ListDesigners(c.Request.Context(), c.Query("online") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"designers": designers})
}

func (h *DesignerHandler) GetDesignerHandler(c *gin.Context) {
	d, err := h.Designers.GetDesigner(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// AvailabilityHandler handles GET /api/designers/:id/availability. Without
// ?at= it answers whether the designer can start a session now.
func (h *DesignerHandler) AvailabilityHandler(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	at := c.Query("at")
	if at == "" {
		c.JSON(http.StatusOK, h.Availability.CheckDesignerBookingAvailability(ctx, id))
		return
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Availability.CheckDesignerAvailabilityForDateTime(ctx, id, t))
}

// SlotsHandler handles GET /api/designers/:id/slots?date=YYYY-MM-DD.
func (h *DesignerHandler) SlotsHandler(c *gin.Context) {
	slots, err := h.Availability.GetDesignerSlotsForDate(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// self resolves the calling designer's record.
func (h *DesignerHandler) self(c *gin.Context) (*models.Designer, bool) {
	userID, _ := middleware.CurrentUser(c)
	d, err := h.Designers.GetDesignerByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return d, true
}

func (h *DesignerHandler) GetOwnDesignerHandler(c *gin.Context) {
	if d, ok := h.self(c); ok {
		c.JSON(http.StatusOK, d)
	}
}

func (h *DesignerHandler) UpdateOwnDesignerHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var req models.UpdateDesignerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Designers.UpdateDesigner(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// SetOnlineHandler handles PUT /api/designer/online.
func (h *DesignerHandler) SetOnlineHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var req struct {
		Online *bool `json:"online" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Designers.SetOnline(c.Request.Context(), userID, *req.Online)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DesignerHandler) GetScheduleHandler(c *gin.Context) {
	d, ok := h.self(c)
	if !ok {
		return
	}
	slots, err := h.Availability.ListWeeklySchedule(c.Request.Context(), d.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// ReplaceScheduleHandler handles PUT /api/designer/schedule.
func (h *DesignerHandler) ReplaceScheduleHandler(c *gin.Context) {
	d, ok := h.self(c)
	if !ok {
		return
	}
	var req models.WeeklyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	slots, err := h.Availability.ReplaceWeeklySchedule(c.Request.Context(), d.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// ListSpecialDaysHandler handles GET /api/designer/special-days?from=YYYY-MM-DD.
func (h *DesignerHandler) ListSpecialDaysHandler(c *gin.Context) {
	d, ok := h.self(c)
	if !ok {
		return
	}
	days, err := h.Availability.ListSpecialDays(c.Request.Context(), d.ID, c.Query("from"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"special_days": days})
}

func (h *DesignerHandler) SetSpecialDayHandler(c *gin.Context) {
	d, ok := h.self(c)
	if !ok {
		return
	}
	var req models.SpecialDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	day, err := h.Availability.SetSpecialDay(c.Request.Context(), d.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

func (h *DesignerHandler) DeleteSpecialDayHandler(c *gin.Context) {
	d, ok := h.self(c)
	if !ok {
		return
	}
	if err := h.Availability.DeleteSpecialDay(c.Request.Context(), d.ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Special day removed"})
}
