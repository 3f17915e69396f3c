package handlers

import (
	"net/http"

	"meetmydesigners/middleware"
	"meetmydesigners/models"
	"meetmydesigners/services/complaint"

	"github.com/gin-gonic/gin"
)

type ComplaintHandler struct {
	Complaints complaint.ComplaintService
}

func NewComplaintHandler(cs complaint.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{Complaints: cs}
}

func (h *ComplaintHandler) FileComplaintHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var req models.ComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmp, err := h.Complaints.FileComplaint(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cmp)
}

func (h *ComplaintHandler) ListComplaintsHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	list, err := h.Complaints.ListComplaints(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": list})
}
