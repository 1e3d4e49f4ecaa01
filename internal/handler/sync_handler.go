package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/brickops/backend/internal/service"
	"github.com/labstack/echo/v4"
)

type SyncHandler struct {
	syncSvc      service.SyncService
	reconcileSvc service.ReconcileService
}

func NewSyncHandler(syncSvc service.SyncService, reconcileSvc service.ReconcileService) *SyncHandler {
	return &SyncHandler{syncSvc: syncSvc, reconcileSvc: reconcileSvc}
}

type SyncOrdersRequest struct {
	UserID             string  `json:"userId"`
	FullSync           bool    `json:"fullSync"`
	FromDate           *string `json:"fromDate"`
	ToDate             *string `json:"toDate"`
	EnrichTransactions bool    `json:"enrichTransactions"`
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *SyncHandler) SyncOrders(c echo.Context) error {
	var req SyncOrdersRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "userId is required"))
	}
	from, err := parseOptionalDate(req.FromDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "fromDate must be RFC3339"))
	}
	to, err := parseOptionalDate(req.ToDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "toDate must be RFC3339"))
	}

	res, err := h.syncSvc.SyncOrders(c.Request().Context(), req.UserID, service.SyncOptions{
		FullSync:           req.FullSync,
		FromDate:           from,
		ToDate:             to,
		EnrichTransactions: req.EnrichTransactions,
	})
	if err != nil {
		if errors.Is(err, service.ErrSyncAlreadyRunning) {
			return c.JSON(http.StatusConflict, res)
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, res)
}

func (h *SyncHandler) GetSyncStatus(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "userId is required"))
	}
	status, err := h.syncSvc.GetSyncStatus(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "no sync has run for this user"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch sync status"))
	}
	return c.JSON(http.StatusOK, status)
}

func (h *SyncHandler) GetStats(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "userId is required"))
	}
	stats, err := h.reconcileSvc.Stats(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to compute stats"))
	}
	return c.JSON(http.StatusOK, stats)
}

type ProcessHistoricalRequest struct {
	UserID      string `json:"userId"`
	PageSize    int    `json:"pageSize"`
	IncludeSold bool   `json:"includeSold"`
}

func (h *SyncHandler) ProcessHistorical(c echo.Context) error {
	var req ProcessHistoricalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "userId is required"))
	}
	res, err := h.reconcileSvc.ProcessHistoricalOrders(c.Request().Context(), req.UserID, service.HistoricalOptions{
		PageSize:    req.PageSize,
		IncludeSold: req.IncludeSold,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, res)
}
