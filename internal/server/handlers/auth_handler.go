package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/internal/server/middleware"
)

// AccountService registers and authenticates dashboard users.
type AccountService interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	svc    AccountService
	logger *zap.Logger
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(svc AccountService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: orNop(logger)}
}

// Register creates a new account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "userId": user.ID})
}

// Login issues a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UserID echoes the id carried by the bearer token.
func (h *AuthHandler) UserID(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"userId": middleware.UserID(c)})
}
