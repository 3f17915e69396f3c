package handlers

import (
	"net/http"
	"time"

	"meetmydesigners/models"
	"meetmydesigners/services/booking"
	"meetmydesigners/services/complaint"
	"meetmydesigners/services/payment"
	"meetmydesigners/services/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates elevated admin-level operations.
type AdminHandler struct {
	Complaints complaint.ComplaintService
	Payments   payment.PaymentService
	Bookings   booking.BookingService
	Sessions   session.SessionService
}

func NewAdminHandler(cs complaint.ComplaintService, ps payment.PaymentService, bs booking.BookingService, ss session.SessionService) *AdminHandler {
	return &AdminHandler{Complaints: cs, Payments: ps, Bookings: bs, Sessions: ss}
}

// ListComplaintsHandler handles GET /api/admin/complaints?status=open.
func (ah *AdminHandler) ListComplaintsHandler(c *gin.Context) {
	list, err := ah.Complaints.ListAllComplaints(c.Request.Context(), models.ComplaintStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": list})
}

// UpdateComplaintStatusHandler handles PUT /api/admin/complaints/:id/status.
func (ah *AdminHandler) UpdateComplaintStatusHandler(c *gin.Context) {
	var req struct {
		Status models.ComplaintStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmp, err := ah.Complaints.UpdateComplaintStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

// RefundSessionHandler handles POST /api/admin/sessions/:id/refund.
func (ah *AdminHandler) RefundSessionHandler(c *gin.Context) {
	res, err := ah.Payments.RefundSessionPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("admin refunded session", zap.String("sessionID", c.Param("id")), zap.Float64("amount", res.Amount))
	c.JSON(http.StatusOK, res)
}

// ExpireBookingsHandler handles POST /api/admin/bookings/expire, running the
// scheduled sweep immediately.
func (ah *AdminHandler) ExpireBookingsHandler(c *gin.Context) {
	n, err := ah.Bookings.ExpireStaleBookings(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": n})
}

// ExpireSessionsHandler handles POST /api/admin/sessions/expire.
func (ah *AdminHandler) ExpireSessionsHandler(c *gin.Context) {
	n, err := ah.Sessions.ExpireSessions(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed": n})
}
