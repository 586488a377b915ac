package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/interfaces/http/response"
	"mechamind.backend/internal/usecases"
)

// AdminHandler serves the admin endpoints
type AdminHandler struct {
	adminUsecase *usecases.AdminUsecase
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminUsecase *usecases.AdminUsecase) *AdminHandler {
	return &AdminHandler{adminUsecase: adminUsecase}
}

// Check reports whether the caller is an admin
// GET /api/v1/admin/check
func (h *AdminHandler) Check(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	check, err := h.adminUsecase.Check(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, notFoundAs(err, domainerrors.CodeUserNotFound))
		return
	}
	response.Success(c, http.StatusOK, check)
}

// Stats returns the dashboard counters (admin)
// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminUsecase.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// Setup creates or promotes the first admin with the shared secret
// POST /api/v1/admin/setup
func (h *AdminHandler) Setup(c *gin.Context) {
	var input entities.AdminSetupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.adminUsecase.Setup(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"success": true, "user": user})
}

// SetRole promotes or demotes a user (admin)
// PUT /api/v1/admin/users/role
func (h *AdminHandler) SetRole(c *gin.Context) {
	var input entities.SetAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.adminUsecase.SetRole(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, notFoundAs(err, domainerrors.CodeUserNotFound))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true, "user": user})
}
