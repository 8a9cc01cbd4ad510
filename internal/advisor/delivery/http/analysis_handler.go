package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/internal/advisor/service"
	"golang-stock-advisor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// UserIDHeader identifies the caller. Authentication happens upstream.
const UserIDHeader = "X-User-ID"

// AsyncAnalysisRequest queues an analysis and optionally pushes the result to Telegram.
type AsyncAnalysisRequest struct {
	dto.StockAnalysisRequest
	TelegramID int64 `json:"telegram_id,omitempty"`
}

// AnalysisHandler handles HTTP requests for stock analyses.
type AnalysisHandler struct {
	orchestrator service.Orchestrator
	taskService  service.RecommendationTaskService
	history      service.HistoryService
	logger       *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler. taskService and history may be nil
// when Redis or the database is disabled; the matching routes then answer 503.
func NewAnalysisHandler(orchestrator service.Orchestrator, taskService service.RecommendationTaskService,
	history service.HistoryService, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{orchestrator: orchestrator, taskService: taskService, history: history, logger: log}
}

// RegisterRoutes registers the analysis routes to the Echo group.
func (h *AnalysisHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Analyze)
	g.POST("/async", h.AnalyzeAsync)
	g.GET("/history", h.GetHistory)
	g.GET("/latest/:ticker", h.GetLatest)
	g.DELETE("/:id", h.DeleteRecommendation)
}

// Analyze godoc
// @Summary Analyse a stock
// @Description Run the full recommendation pipeline for a ticker and user profile
// @Tags stock-analysis
// @Accept  json
// @Produce  json
// @Param   X-User-ID  header  string  false  "User ID"
// @Param   request  body    dto.StockAnalysisRequest   true    "Analysis request"
// @Success 200 {object} dto.Recommendation
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock-analysis [post]
func (h *AnalysisHandler) Analyze(c echo.Context) error {
	var req dto.StockAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	ctx := c.Request().Context()
	rec, err := h.orchestrator.Analyze(ctx, c.Request().Header.Get(UserIDHeader), req)
	if err != nil {
		return h.analysisError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// AnalyzeAsync godoc
// @Summary Queue a stock analysis
// @Description Queue the pipeline on the recommendation stream; the result is stored in history and sent to Telegram when telegram_id is set
// @Tags stock-analysis
// @Accept  json
// @Produce  json
// @Param   X-User-ID  header  string  false  "User ID"
// @Param   request  body    AsyncAnalysisRequest   true    "Analysis request"
// @Success 202 {object} dto.AsyncAnalysisResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /stock-analysis/async [post]
func (h *AnalysisHandler) AnalyzeAsync(c echo.Context) error {
	if h.taskService == nil {
		return c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "async analysis is not enabled"})
	}
	var req AsyncAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	resp, err := h.taskService.Enqueue(c.Request().Context(), dto.StreamDataRecommendation{
		UserID:     c.Request().Header.Get(UserIDHeader),
		Request:    req.StockAnalysisRequest,
		NotifyUser: req.TelegramID != 0,
		TelegramID: req.TelegramID,
	})
	if err != nil {
		if errors.Is(err, dto.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Error("Failed to enqueue analysis", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to enqueue analysis"})
	}
	return c.JSON(http.StatusAccepted, resp)
}

// GetHistory godoc
// @Summary List past recommendations
// @Description Paged analysis history of the calling user, newest first
// @Tags stock-analysis
// @Produce  json
// @Param   X-User-ID  header  string  true  "User ID"
// @Param   page  query  int  false  "Page (1-based)"
// @Param   limit  query  int  false  "Page size"
// @Success 200 {object} dto.HistoryPage
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock-analysis/history [get]
func (h *AnalysisHandler) GetHistory(c echo.Context) error {
	userID, ok := h.requireHistory(c)
	if !ok {
		return nil
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.history.List(c.Request().Context(), userID, page, limit)
	if err != nil {
		h.logger.Error("Failed to list history", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get history"})
	}
	return c.JSON(http.StatusOK, result)
}

// GetLatest godoc
// @Summary Latest recommendation for a ticker
// @Tags stock-analysis
// @Produce  json
// @Param   X-User-ID  header  string  true  "User ID"
// @Param   ticker  path  string  true  "Ticker"
// @Success 200 {object} dto.Recommendation
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock-analysis/latest/{ticker} [get]
func (h *AnalysisHandler) GetLatest(c echo.Context) error {
	userID, ok := h.requireHistory(c)
	if !ok {
		return nil
	}

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	rec, err := h.history.Latest(c.Request().Context(), userID, ticker)
	if err != nil {
		if errors.Is(err, service.ErrRecommendationNotFound) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Error("Failed to get latest recommendation", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get recommendation"})
	}
	return c.JSON(http.StatusOK, rec)
}

// DeleteRecommendation godoc
// @Summary Delete a stored recommendation
// @Tags stock-analysis
// @Produce  json
// @Param   X-User-ID  header  string  true  "User ID"
// @Param   id  path    int true    "Recommendation ID"
// @Success 204 {object} nil
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock-analysis/{id} [delete]
func (h *AnalysisHandler) DeleteRecommendation(c echo.Context) error {
	userID, ok := h.requireHistory(c)
	if !ok {
		return nil
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid recommendation ID"})
	}

	if err := h.history.Delete(c.Request().Context(), userID, uint(id)); err != nil {
		if errors.Is(err, service.ErrRecommendationNotFound) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete recommendation"})
	}
	return c.NoContent(http.StatusNoContent)
}

// requireHistory writes the error response itself when it returns false.
func (h *AnalysisHandler) requireHistory(c echo.Context) (string, bool) {
	if h.history == nil {
		_ = c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "history is not enabled"})
		return "", false
	}
	userID := c.Request().Header.Get(UserIDHeader)
	if userID == "" {
		_ = c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "missing " + UserIDHeader + " header"})
		return "", false
	}
	return userID, true
}

func (h *AnalysisHandler) analysisError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, dto.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, dto.ErrorResponse{Error: "analysis timed out"})
	case errors.Is(err, service.ErrSynthesisFailed):
		h.logger.Error("Recommendation synthesis failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: service.ErrSynthesisFailed.Error()})
	default:
		h.logger.Error("Analysis failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to analyse stock"})
	}
}
