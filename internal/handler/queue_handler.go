package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/brickops/backend/internal/service"
	"github.com/labstack/echo/v4"
)

type QueueHandler struct {
	svc service.QueueService
}

func NewQueueHandler(svc service.QueueService) *QueueHandler {
	return &QueueHandler{svc: svc}
}

type ResolveRequest struct {
	InventoryItemIDs []uint64 `json:"inventoryItemIds"`
}

type SkipRequest struct {
	Reason string `json:"reason"`
}

func (h *QueueHandler) Resolve(c echo.Context) error {
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	err := h.svc.Resolve(c.Request().Context(), c.Param("id"), req.InventoryItemIDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, OperationResponse{Success: false, Error: err.Error()})
		case errors.Is(err, service.ErrAlreadyResolved),
			errors.Is(err, service.ErrCountMismatch),
			errors.Is(err, service.ErrItemNotSellable):
			return c.JSON(http.StatusConflict, OperationResponse{Success: false, Error: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, OperationResponse{Success: false, Error: err.Error()})
		}
	}
	return c.JSON(http.StatusOK, OperationResponse{Success: true})
}

func (h *QueueHandler) Skip(c echo.Context) error {
	var req SkipRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	err := h.svc.Skip(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, OperationResponse{Success: false, Error: err.Error()})
		case errors.Is(err, service.ErrAlreadyResolved), errors.Is(err, service.ErrInvalidSkipReason):
			return c.JSON(http.StatusConflict, OperationResponse{Success: false, Error: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, OperationResponse{Success: false, Error: err.Error()})
		}
	}
	return c.JSON(http.StatusOK, OperationResponse{Success: true})
}

func (h *QueueHandler) ListPending(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "userId is required"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	items, err := h.svc.ListPending(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch queue"))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}
