package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/developerstore/sales-backend/internal/platform/logger"
	"github.com/developerstore/sales-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{
		log:         log.With("handler", "UserHandler"),
		userService: userService,
	}
}

type updateNameRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.userService.GetCurrentUser(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	RespondOK(c, gin.H{"user": u})
}

func (h *UserHandler) UpdateName(c *gin.Context) {
	var req updateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	u, err := h.userService.UpdateName(c.Request.Context(), req.FirstName, req.LastName)
	if err != nil {
		h.log.Error("UpdateName failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "update_name_failed", err)
		return
	}
	RespondOK(c, gin.H{"user": u})
}
