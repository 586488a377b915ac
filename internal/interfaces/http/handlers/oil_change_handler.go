package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/interfaces/http/response"
	"mechamind.backend/internal/usecases"
)

// OilChangeHandler serves the oil change tracker
type OilChangeHandler struct {
	maintenanceUsecase *usecases.MaintenanceUsecase
}

// NewOilChangeHandler creates a new oil change handler
func NewOilChangeHandler(maintenanceUsecase *usecases.MaintenanceUsecase) *OilChangeHandler {
	return &OilChangeHandler{maintenanceUsecase: maintenanceUsecase}
}

// ListRecords returns the caller's records, most recent change first
// GET /api/v1/oil-change
func (h *OilChangeHandler) ListRecords(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	records, err := h.maintenanceUsecase.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if records == nil {
		records = []*entities.OilChangeRecord{}
	}
	response.Success(c, http.StatusOK, gin.H{"records": records})
}

// CreateRecord logs an oil change
// POST /api/v1/oil-change
func (h *OilChangeHandler) CreateRecord(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.CreateOilChangeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	record, err := h.maintenanceUsecase.Create(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"success": true, "record": record})
}

// Status derives the oil status from the latest record
// GET /api/v1/oil-change/status?currentKm=
func (h *OilChangeHandler) Status(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var currentKm *int
	if raw := c.Query("currentKm"); raw != "" {
		km, err := strconv.Atoi(raw)
		if err != nil || km < 0 {
			response.Error(c, domainerrors.BadRequest("currentKm must be a non-negative integer"))
			return
		}
		currentKm = &km
	}

	status, err := h.maintenanceUsecase.Status(c.Request.Context(), userID, currentKm)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, status)
}

// UpdateRecord changes the supplied fields of an owned record
// PUT /api/v1/oil-change/:id
func (h *OilChangeHandler) UpdateRecord(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := pathID(c, domainerrors.CodeRecordNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.UpdateOilChangeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	record, err := h.maintenanceUsecase.Update(c.Request.Context(), userID, id, &input)
	if err != nil {
		response.Error(c, notFoundAs(err, domainerrors.CodeRecordNotFound))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true, "record": record})
}

// DeleteRecord removes an owned record
// DELETE /api/v1/oil-change/:id
func (h *OilChangeHandler) DeleteRecord(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := pathID(c, domainerrors.CodeRecordNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.maintenanceUsecase.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, notFoundAs(err, domainerrors.CodeRecordNotFound))
		return
	}
	response.Notice(c, http.StatusOK, "DELETED", gin.H{"success": true})
}
