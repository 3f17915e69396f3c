package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"meetmydesigners/middleware"
	"meetmydesigners/models"
	"meetmydesigners/services/session"
	"meetmydesigners/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxSessionFileBytes bounds a single shared file.
const maxSessionFileBytes = 25 << 20

// multipartOverhead leaves room for boundaries and part headers.
const multipartOverhead = 1 << 20

type SessionHandler struct {
	Sessions     session.SessionService
	MaxFileBytes int64
}

func NewSessionHandler(ss session.SessionService) *SessionHandler {
	return &SessionHandler{Sessions: ss, MaxFileBytes: maxSessionFileBytes}
}

// StartSessionHandler handles POST /api/sessions.
func (h *SessionHandler) StartSessionHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var req models.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.Sessions.StartSession(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *SessionHandler) ListSessionsHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	sessions, err := h.Sessions.ListSessions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *SessionHandler) GetSessionHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	s, err := h.Sessions.GetSession(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// JoinSessionHandler handles POST /api/sessions/:id/join.
func (h *SessionHandler) JoinSessionHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	s, err := h.Sessions.JoinSession(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// EndSessionHandler handles POST /api/sessions/:id/end. When the charge fails
// the session is still closed and returned alongside the error.
func (h *SessionHandler) EndSessionHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	s, err := h.Sessions.EndSession(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, session.ErrPaymentIncomplete) && s != nil {
		getLogger(c).Warn("session closed without payment", zap.String("sessionID", s.ID), zap.Error(err))
		c.JSON(http.StatusPaymentRequired, gin.H{"message": err.Error(), "session": s})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// SubmitReviewHandler handles POST /api/sessions/:id/review.
func (h *SessionHandler) SubmitReviewHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	review, err := h.Sessions.SubmitReview(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// UploadFileHandler handles multipart POST /api/sessions/:id/files with a "file" field.
func (h *SessionHandler) UploadFileHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	limit := h.MaxFileBytes
	if limit <= 0 {
		limit = maxSessionFileBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	header, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || (err == nil && header.Size > limit) {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "File too large",
			fmt.Sprintf("files are limited to %d MB", limit>>20))
		return
	}
	if err != nil {
		badRequest(c, err)
		return
	}
	f, err := header.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()

	file, err := h.Sessions.UploadSessionFile(c.Request.Context(), userID, c.Param("id"), header.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

func (h *SessionHandler) ListFilesHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	files, err := h.Sessions.ListSessionFiles(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (h *SessionHandler) DeleteFileHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	if err := h.Sessions.DeleteSessionFile(c.Request.Context(), userID, c.Param("id"), c.Param("fileId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}
