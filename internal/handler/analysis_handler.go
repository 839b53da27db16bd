package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fundscope/internal/service"
)

// AnalysisHandler handles analysis-run endpoints.
type AnalysisHandler struct {
	analysisService service.AnalysisService
	logger          *log.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService, logger *log.Logger) *AnalysisHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &AnalysisHandler{analysisService: analysisService, logger: logger}
}

// StartRunRequest is the request body for POST /api/v1/analyses.
type StartRunRequest struct {
	RootPath string `json:"root_path" binding:"required"`
}

// StartRun handles POST /api/v1/analyses. The pipeline runs
// synchronously; partial results with embedded error markers are a
// success.
func (h *AnalysisHandler) StartRun(c *gin.Context) {
	var req StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "root_path is required")
		return
	}

	result, err := h.analysisService.Run(c.Request.Context(), req.RootPath)
	if err != nil {
		h.logger.Printf("[ERROR] analysis run for %s failed: %v", req.RootPath, err)
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}
	RespondCreated(c, result)
}

// GetRun handles GET /api/v1/analyses/:id.
func (h *AnalysisHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "run id must be a valid UUID")
		return
	}

	run, err := h.analysisService.GetRun(c.Request.Context(), id)
	if err != nil {
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}
	RespondOK(c, run)
}

// ListRuns handles GET /api/v1/analyses.
func (h *AnalysisHandler) ListRuns(c *gin.Context) {
	offset, limit := parsePagination(c)

	runs, total, err := h.analysisService.ListRuns(c.Request.Context(), offset, limit)
	if err != nil {
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}
	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, limit = 0, 20
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	return offset, limit
}
