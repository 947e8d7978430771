package incidents

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/scamwatch/internal/risk"
	"github.com/richxcame/scamwatch/pkg/common"
	"github.com/richxcame/scamwatch/pkg/logger"
	"github.com/richxcame/scamwatch/pkg/pagination"
	"github.com/richxcame/scamwatch/pkg/validation"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for risk scores and reports
type Handler struct {
	service *Service
}

// NewHandler creates a new incidents handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// respondError writes err as an API error, logging server-side failures
func respondError(c *gin.Context, err error, fallback string) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= http.StatusInternalServerError {
			logger.WithContext(c.Request.Context()).Error(fallback, zap.Error(err))
			common.ErrorResponse(c, appErr.Code, fallback)
			return
		}
		common.AppErrorResponse(c, appErr)
		return
	}

	logger.WithContext(c.Request.Context()).Error(fallback, zap.Error(err))
	common.ErrorResponse(c, http.StatusInternalServerError, fallback)
}

// GetRisk returns the risk score of one report with its nearby incidents
func (h *Handler) GetRisk(c *gin.Context) {
	reportID := strings.TrimSpace(c.Query("reportId"))
	if reportID == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "reportId parameter is required")
		return
	}

	scored, err := h.service.GetRiskScore(c.Request.Context(), reportID)
	if err != nil {
		respondError(c, err, "Failed to fetch risk score")
		return
	}

	common.SuccessResponse(c, ToRiskResponse(scored, true))
}

// ComputeRisk scores one report, or every report when batchMode is set
func (h *Handler) ComputeRisk(c *gin.Context) {
	var req RiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.BatchMode {
		scores, _, err := h.service.ComputeBatch(c.Request.Context())
		if err != nil {
			respondError(c, err, "Failed to calculate risk score")
			return
		}

		results := make([]BatchResult, 0, len(scores))
		for id, score := range scores {
			results = append(results, BatchResult{
				ID:             id,
				RiskScore:      score.Score,
				RiskComponents: score.Components,
				RiskLevel:      score.Level,
			})
		}
		sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })

		common.SuccessResponseWithStatus(c, http.StatusOK, gin.H{"results": results},
			fmt.Sprintf("Calculated risk scores for %d reports", len(results)))
		return
	}

	reportID := strings.TrimSpace(req.ReportID)
	if reportID == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "reportId is required when not in batch mode")
		return
	}

	scored, err := h.service.GetRiskScore(c.Request.Context(), reportID)
	if err != nil {
		respondError(c, err, "Failed to calculate risk score")
		return
	}

	common.SuccessResponse(c, ToRiskResponse(scored, false))
}

// ListReports returns a page of reports with their risk scores
func (h *Handler) ListReports(c *gin.Context) {
	page := pagination.ParseParams(c)
	params := ListParams{
		Category: risk.Category(c.Query("category")),
		City:     c.Query("city"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	}

	reports, total, err := h.service.ListReports(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list reports")
		return
	}

	common.SuccessResponse(c, ReportListResponse{
		Reports: reports,
		Meta:    pagination.BuildMeta(page.Limit, page.Offset, total),
	})
}

// GetStatistics returns aggregate statistics over the reports
func (h *Handler) GetStatistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to compute statistics")
		return
	}

	common.SuccessResponse(c, stats)
}

// GetScamMeter returns the credibility score of a report
func (h *Handler) GetScamMeter(c *gin.Context) {
	meter, err := h.service.ScamMeter(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to compute scam meter")
		return
	}

	common.SuccessResponse(c, meter)
}

// RegisterRoutes registers risk and report routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/risk", h.GetRisk)
	rg.POST("/risk", h.ComputeRisk)
	rg.GET("/statistics", h.GetStatistics)

	reports := rg.Group("/reports")
	{
		reports.GET("", h.ListReports)
		reports.GET("/:id/scam-meter", h.GetScamMeter)
	}
}
