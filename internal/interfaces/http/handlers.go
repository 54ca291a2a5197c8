package http

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/attendance-sheet/internal/application/service"
	"github.com/garyjia/attendance-sheet/pkg/utils"
)

const (
	uploadField    = "file"
	sourceFileName = "source.xlsx"
	defaultLimit   = 20
	maxLimit       = 100
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	deps           Dependencies
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Dependencies, maxUploadBytes int64, logger *zap.Logger) *Handlers {
	return &Handlers{
		deps:           deps,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Version    string      `json:"version"`
	Components interface{} `json:"components,omitempty"`
}

// ListRunsRequest represents query parameters for listing runs
type ListRunsRequest struct {
	Limit int `form:"limit"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	healthy := true
	var components interface{}
	if h.deps.Health != nil {
		healthy, components = h.deps.Health(c.Request.Context())
	}

	response := HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Version:    "1.0.0",
		Components: components,
	}
	status := http.StatusOK
	if !healthy {
		response.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, Response{
		Success: healthy,
		Data:    response,
	})
}

// CreateRun handles POST /api/v1/runs with the DingTalk export as multipart "file"
func (h *Handlers) CreateRun(c *gin.Context) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "multipart field \"file\" is required"})
		return
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, Response{Error: "uploaded file is too large"})
		return
	}
	if err := utils.ValidateWorkbookName(header.Filename); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "only .xlsx exports are accepted"})
		return
	}

	runID := uuid.NewString()
	h.logger.Info("Received source export",
		zap.String("run_id", runID),
		zap.String("filename", utils.SanitizeString(header.Filename)),
		zap.Int64("size", header.Size))

	folder, err := h.deps.UploadFolders.CreateRunFolder(runID)
	if err != nil {
		h.logger.Error("Failed to create upload folder", zap.String("run_id", runID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Error: "failed to store upload"})
		return
	}

	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "failed to read upload"})
		return
	}
	defer src.Close()

	sourcePath := filepath.Join(folder, sourceFileName)
	if _, err := h.deps.Uploads.SaveFile(sourcePath, src); err != nil {
		h.logger.Error("Failed to save upload", zap.String("run_id", runID), zap.Error(err))
		if err := h.deps.UploadFolders.DeleteRunFolder(runID); err != nil {
			h.logger.Warn("Failed to clean up upload folder", zap.String("run_id", runID), zap.Error(err))
		}
		c.JSON(http.StatusInternalServerError, Response{Error: "failed to store upload"})
		return
	}

	result, err := h.deps.Sheets.Generate(c.Request.Context(), service.Request{
		RunID:      runID,
		SourcePath: sourcePath,
		OutputDir:  h.deps.OutputFolders.RunFolderPath(runID),
	})
	if err != nil {
		h.logger.Error("Sheet generation failed", zap.String("run_id", runID), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, Response{
			Data:  gin.H{"run_id": runID},
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: result})
}

// ListRuns handles GET /api/v1/runs
func (h *Handlers) ListRuns(c *gin.Context) {
	var req ListRunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid query parameters"})
		return
	}
	if req.Limit <= 0 || req.Limit > maxLimit {
		req.Limit = defaultLimit
	}

	runs, err := h.deps.Runs.List(c.Request.Context(), req.Limit)
	if err != nil {
		h.logger.Error("Failed to list runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Error: "failed to retrieve runs"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: runs})
}

// GetRun handles GET /api/v1/runs/:id
func (h *Handlers) GetRun(c *gin.Context) {
	run, err := h.deps.Runs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to get run", zap.String("run_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Error: "failed to retrieve run"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, Response{Error: "run not found"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: run})
}

// DownloadOutput handles GET /api/v1/runs/:id/output
func (h *Handlers) DownloadOutput(c *gin.Context) {
	run, err := h.deps.Runs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Error: "failed to retrieve run"})
		return
	}
	if run == nil || run.OutputFile == "" {
		c.JSON(http.StatusNotFound, Response{Error: "output not found"})
		return
	}

	if err := h.deps.Outputs.ValidatePath(run.OutputFile); err != nil {
		h.logger.Warn("Refusing to serve output outside the output directory",
			zap.String("run_id", run.ID),
			zap.String("path", run.OutputFile),
			zap.Error(err))
		c.JSON(http.StatusForbidden, Response{Error: "output not available"})
		return
	}

	c.FileAttachment(run.OutputFile, filepath.Base(run.OutputFile))
}
