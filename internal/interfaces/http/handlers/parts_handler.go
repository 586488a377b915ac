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

// PartHandler serves the spare parts inventory
type PartHandler struct {
	inventoryUsecase *usecases.InventoryUsecase
}

// NewPartHandler creates a new part handler
func NewPartHandler(inventoryUsecase *usecases.InventoryUsecase) *PartHandler {
	return &PartHandler{inventoryUsecase: inventoryUsecase}
}

// ListParts lists parts with optional filters
// GET /api/v1/parts?category=&search=&inStock=true&page=1&limit=20
func (h *PartHandler) ListParts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	inStock, _ := strconv.ParseBool(c.Query("inStock"))

	parts, meta, err := h.inventoryUsecase.List(c.Request.Context(), entities.CarPartFilter{
		Category:    c.Query("category"),
		Search:      c.Query("search"),
		InStockOnly: inStock,
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if parts == nil {
		parts = []*entities.CarPart{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"parts": parts,
		"meta":  meta,
	})
}

// GetPart returns one part
// GET /api/v1/parts/:id
func (h *PartHandler) GetPart(c *gin.Context) {
	id, err := pathID(c, domainerrors.CodePartNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	part, err := h.inventoryUsecase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, notFoundAs(err, domainerrors.CodePartNotFound))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"part": part})
}

// CreatePart adds a part (admin)
// POST /api/v1/parts
func (h *PartHandler) CreatePart(c *gin.Context) {
	var input entities.CreateCarPartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	part, err := h.inventoryUsecase.Create(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"success": true, "part": part})
}

// UpdatePart changes the supplied fields of a part (admin)
// PUT /api/v1/parts/:id
func (h *PartHandler) UpdatePart(c *gin.Context) {
	id, err := pathID(c, domainerrors.CodePartNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.UpdateCarPartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	part, err := h.inventoryUsecase.Update(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, notFoundAs(err, domainerrors.CodePartNotFound))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true, "part": part})
}

// DeletePart removes a part (admin)
// DELETE /api/v1/parts/:id
func (h *PartHandler) DeletePart(c *gin.Context) {
	id, err := pathID(c, domainerrors.CodePartNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.inventoryUsecase.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, notFoundAs(err, domainerrors.CodePartNotFound))
		return
	}
	response.Notice(c, http.StatusOK, "DELETED", gin.H{"success": true})
}
