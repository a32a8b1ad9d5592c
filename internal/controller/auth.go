package controller

import (
	"net/http"

	"taskboard/internal/middleware"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

// Auth serves the /api/auth routes.
type Auth struct {
	svc *service.AuthService
}

func NewAuth(svc *service.AuthService) *Auth {
	return &Auth{svc: svc}
}

// Register creates an account and returns 201 with a session token.
func (h *Auth) Register(c *gin.Context) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	res, err := h.svc.Register(c.Request.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		writeError(c, "Register", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Login returns a fresh session token. A malformed body counts as missing
// credentials.
func (h *Auth) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = c.ShouldBindJSON(&body)
	res, err := h.svc.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		writeError(c, "Login", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Logout revokes the bearer token if one is sent. Always 200.
func (h *Auth) Logout(c *gin.Context) {
	h.svc.Logout(c.Request.Context(), middleware.BearerToken(c))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ForgotPassword answers 200 for any well-formed email; resetToken is null
// when the email is unknown.
func (h *Auth) ForgotPassword(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	token, err := h.svc.ForgotPassword(c.Request.Context(), body.Email)
	if err != nil {
		writeError(c, "ForgotPassword", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resetToken": token})
}

func (h *Auth) ResetPassword(c *gin.Context) {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), body.Token, body.NewPassword); err != nil {
		writeError(c, "ResetPassword", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
