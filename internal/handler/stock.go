package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"farmasys/internal/apierror"
	"farmasys/internal/dto"
	"farmasys/internal/middleware"
	"farmasys/internal/repository"
	"farmasys/internal/service"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler { return &StockHandler{svc: svc} }

// SyncBatch godoc
// @Summary Sincroniza movimentos de estoque registrados offline
// @Description Processa o lote na ordem enviada; cada item e independente e
// @Description o resultado individual (SUCCESS, CONFLICT, ERROR) volta no corpo.
// @Tags stock
// @Accept json
// @Produce json
// @Param body body dto.SyncBatchRequest true "Lote de movimentos"
// @Success 200 {object} offline.BatchResult
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/stock/sync-batch [post]
func (h *StockHandler) SyncBatch(c *gin.Context) {
	var req dto.SyncBatchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	result, err := h.svc.SyncBatch(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *StockHandler) ListMovements(c *gin.Context) {
	filter := repository.StockMovementFilter{
		Type:  c.Query("type"),
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 50),
	}
	if raw := c.Query("product_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("product_id invalido"))
			return
		}
		filter.ProductID = &pid
	}
	movements, total, err := h.svc.ListMovements(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao listar movimentos"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": movements, "total": total})
}
