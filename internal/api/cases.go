package api

import (
	"errors"
	"net/http"
	"strconv"

	"crime-case-workers/internal/common/logger"
	"crime-case-workers/internal/models"
	"crime-case-workers/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type CaseHandler struct {
	cases  CaseStore
	logger logger.Logger
}

func NewCaseHandler(cases CaseStore, log logger.Logger) *CaseHandler {
	return &CaseHandler{cases: cases, logger: log}
}

// Get handles GET /api/v1/cases/:caseNumber
func (h *CaseHandler) Get(c *gin.Context) {
	if h.cases == nil {
		writeError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Case storage is not configured")
		return
	}

	caseNumber := c.Param("caseNumber")
	record, err := h.cases.GetByCaseNumber(c.Request.Context(), caseNumber)
	if errors.Is(err, repository.ErrCaseNotFound) {
		writeError(c, http.StatusNotFound, "CASE_NOT_FOUND", "Case not found: "+caseNumber)
		return
	}
	if err != nil {
		h.logger.Error("case lookup failed", map[string]interface{}{
			"error":      err,
			"caseNumber": caseNumber,
		})
		writeError(c, http.StatusInternalServerError, "QUERY_EXECUTION_FAILED", "Case lookup failed")
		return
	}

	c.JSON(http.StatusOK, record)
}

// List handles GET /api/v1/cases?stage=published&limit=N
func (h *CaseHandler) List(c *gin.Context) {
	if h.cases == nil {
		writeError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Case storage is not configured")
		return
	}

	stage := models.WorkflowStage(c.DefaultQuery("stage", string(models.StagePublished)))
	if !stage.IsValid() {
		writeError(c, http.StatusBadRequest, "INVALID_STAGE", "Unknown workflow stage: "+string(stage))
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	records, err := h.cases.ListByStage(c.Request.Context(), stage, limit)
	if err != nil {
		h.logger.Error("case listing failed", map[string]interface{}{
			"error": err,
			"stage": stage,
		})
		writeError(c, http.StatusInternalServerError, "QUERY_EXECUTION_FAILED", "Case listing failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cases": records,
		"count": len(records),
		"stage": stage,
	})
}
