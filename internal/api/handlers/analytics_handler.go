package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/analytics"
	"github.com/alligatorO15/fin-dashboard/internal/api/middleware"
	"github.com/alligatorO15/fin-dashboard/internal/export"
	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/alligatorO15/fin-dashboard/internal/service"
	"github.com/gin-gonic/gin"
)

// период по умолчанию, если в запросе нет ни period, ни from/to
const defaultPeriod = models.PeriodLast6Months

const maxTopN = 20

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetAnalytics GET /analytics?period=6m | ?from=2025-01-01&to=2025-03-31, &top=5
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AnalyticsHandler) GetTrendsChart(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	png, err := export.RenderTrendChart(report.Trends)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *AnalyticsHandler) GetMonthlyChart(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	png, err := export.RenderMonthlyChart(report.Monthly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.analyticsService.GetDashboard(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *AnalyticsHandler) GetCategories(c *gin.Context) {
	categories, err := h.analyticsService.GetCategories(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *AnalyticsHandler) report(c *gin.Context) (*models.AnalyticsReport, bool) {
	desc, err := parsePeriod(c)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	topN := 0
	if top := c.Query("top"); top != "" {
		topN, err = strconv.Atoi(top)
		if err != nil || topN < 1 || topN > maxTopN {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("top must be between 1 and %d", maxTopN)})
			return nil, false
		}
	}

	report, err := h.analyticsService.GetAnalytics(c.Request.Context(), middleware.GetUserID(c), desc, topN)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return report, true
}

// parsePeriod from и to задаются только парой
func parsePeriod(c *gin.Context) (models.PeriodDescriptor, error) {
	var desc models.PeriodDescriptor

	from, to := c.Query("from"), c.Query("to")
	if from != "" || to != "" {
		if from == "" || to == "" {
			return desc, fmt.Errorf("%w: from and to must be given together", analytics.ErrInvalidPeriod)
		}
		fromDate, err := time.Parse(dateLayout, from)
		if err != nil {
			return desc, fmt.Errorf("%w: bad from date %q", analytics.ErrInvalidPeriod, from)
		}
		toDate, err := time.Parse(dateLayout, to)
		if err != nil {
			return desc, fmt.Errorf("%w: bad to date %q", analytics.ErrInvalidPeriod, to)
		}
		desc.From, desc.To = &fromDate, &toDate
		return desc, nil
	}

	period := c.Query("period")
	if period == "" {
		desc.Preset = defaultPeriod
		return desc, nil
	}
	preset, err := analytics.ParsePreset(period)
	if err != nil {
		return desc, err
	}
	desc.Preset = preset
	return desc, nil
}
