package handlers

import (
	"net/http"

	"meetmydesigners/middleware"
	"meetmydesigners/models"
	"meetmydesigners/services/profile"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves sign-up, sign-in and the caller's own profile.
type AuthHandler struct {
	Profiles profile.ProfileService
}

func NewAuthHandler(ps profile.ProfileService) *AuthHandler {
	return &AuthHandler{Profiles: ps}
}

// SignUpHandler handles POST /api/auth/signup.
func (h *AuthHandler) SignUpHandler(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.Profiles.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("profile created", zap.String("userID", resp.Profile.ID))
	c.JSON(http.StatusCreated, resp)
}

// SignInHandler handles POST /api/auth/login.
func (h *AuthHandler) SignInHandler(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.Profiles.SignIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SignOutHandler handles POST /api/auth/logout.
func (h *AuthHandler) SignOutHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	if err := h.Profiles.SignOut(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func (h *AuthHandler) GetProfileHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	p, err := h.Profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *AuthHandler) UpdateProfileHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Profiles.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateFCMTokenHandler handles PUT /api/profile/fcm.
func (h *AuthHandler) UpdateFCMTokenHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var req struct {
		Token string `json:"fcm_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Profiles.UpdateFCMToken(c.Request.Context(), userID, req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Push token updated"})
}
