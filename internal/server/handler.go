// Package server exposes the deal memo endpoint over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cre-analyst/deal-memo-agent/internal/agent"
	"github.com/cre-analyst/deal-memo-agent/internal/models"
)

const (
	msgInvalidPayload = "Invalid JSON payload or empty request body."
	msgMissingAddress = "Missing 'address' in request payload."
	msgEmptyMemo      = "Agent failed to generate a comprehensive memo. Gemini's output was empty."
)

// MemoGenerator produces the deal memo for an address. The agent implements
// it; tests substitute a mock.
type MemoGenerator interface {
	GenerateDealMemo(ctx context.Context, address string) (string, error)
}

type Handler struct {
	memos MemoGenerator
	log   *zap.Logger
}

func NewHandler(memos MemoGenerator, log *zap.Logger) *Handler {
	return &Handler{memos: memos, log: log}
}

// Routes registers the endpoint surface on the router.
func (h *Handler) Routes(router *gin.Engine) {
	router.POST("/", h.AnalyzeProperty)
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
}

// AnalyzeProperty handles POST / with a {"address": ...} body and responds
// with {"deal_memo": ...} or an {"error": ...} envelope.
func (h *Handler) AnalyzeProperty(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("received empty or invalid JSON payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidPayload})
		return
	}

	if req.Address == "" {
		h.log.Warn("missing address in request payload")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgMissingAddress})
		return
	}

	h.log.Info("received request to analyze property", zap.String("address", req.Address))

	memo, err := h.memos.GenerateDealMemo(c.Request.Context(), req.Address)
	if err != nil {
		if errors.Is(err, agent.ErrEmptyMemo) {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgEmptyMemo})
			return
		}
		h.log.Error("property analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.MemoResponse{DealMemo: memo})
}
