// internal/handlers/dashboard/dashboard.go
package dashboard

import (
	"errors"
	"net/http"

	"crm-insight/internal/domain/customer"
	"crm-insight/internal/domain/snapshot"
	"crm-insight/internal/middleware"
	"crm-insight/internal/normalize"
	xerrors "crm-insight/internal/pkg/errors"
	"crm-insight/internal/pkg/response"
	service "crm-insight/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// ListCustomers returns every customer ID known to the CRM.
func (h *DashboardHandler) ListCustomers(c *gin.Context) {
	ids, err := h.dashboardService.ListCustomerIDs(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to list customers", err)
		return
	}
	response.Success(c, http.StatusOK, "customers retrieved", ids)
}

func (h *DashboardHandler) GetProfile(c *gin.Context) {
	p, err := h.dashboardService.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to load customer profile", err)
		return
	}
	response.Success(c, http.StatusOK, "customer profile retrieved", p)
}

func (h *DashboardHandler) GetSupportHistory(c *gin.Context) {
	hist, err := h.dashboardService.GetSupportHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to load support history", err)
		return
	}
	response.Success(c, http.StatusOK, "support history retrieved", hist)
}

func (h *DashboardHandler) GetPurchaseHistory(c *gin.Context) {
	hist, err := h.dashboardService.GetPurchaseHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to load purchase history", err)
		return
	}
	response.Success(c, http.StatusOK, "purchase history retrieved", hist)
}

func (h *DashboardHandler) GetSocialMediaHistory(c *gin.Context) {
	hist, err := h.dashboardService.GetSocialMediaHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to load social media history", err)
		return
	}
	response.Success(c, http.StatusOK, "social media history retrieved", hist)
}

func (h *DashboardHandler) AddSupportRecord(c *gin.Context) {
	var req customer.CreateSupportRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	res, err := h.dashboardService.AddSupportRecord(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.fail(c, "failed to add support record", err)
		return
	}
	response.Success(c, http.StatusCreated, "support record submitted", res)
}

func (h *DashboardHandler) AddPurchaseRecord(c *gin.Context) {
	var req customer.CreatePurchaseRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	res, err := h.dashboardService.AddPurchaseRecord(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.fail(c, "failed to add purchase record", err)
		return
	}
	response.Success(c, http.StatusCreated, "purchase record submitted", res)
}

func (h *DashboardHandler) AddSocialMediaRecord(c *gin.Context) {
	var req customer.CreateSocialMediaRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	res, err := h.dashboardService.AddSocialMediaRecord(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.fail(c, "failed to add social media record", err)
		return
	}
	response.Success(c, http.StatusCreated, "social media record submitted", res)
}

// GetInsights returns the derived classifications for one customer.
func (h *DashboardHandler) GetInsights(c *gin.Context) {
	res, err := h.dashboardService.GetInsights(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to compute insights", err)
		return
	}
	response.Success(c, http.StatusOK, "insights computed", res)
}

func (h *DashboardHandler) ListInsightHistory(c *gin.Context) {
	var req snapshot.ListHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	snaps, err := h.dashboardService.ListInsightHistory(c.Request.Context(), c.Param("id"), req.Limit)
	if err != nil {
		h.fail(c, "failed to list insight history", err)
		return
	}
	response.Success(c, http.StatusOK, "insight history retrieved", snaps)
}

func (h *DashboardHandler) LatestInsight(c *gin.Context) {
	snap, err := h.dashboardService.LatestInsight(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "no insight snapshot", err)
		return
	}
	response.Success(c, http.StatusOK, "latest insight retrieved", snap)
}

// RunAI triggers the scoring job; the refreshed profile is read separately.
func (h *DashboardHandler) RunAI(c *gin.Context) {
	operatorID, _ := middleware.GetOperatorID(c)

	res, err := h.dashboardService.RunAI(c.Request.Context(), c.Param("id"), operatorID)
	if err != nil {
		h.fail(c, "failed to run ai", err)
		return
	}
	response.Success(c, http.StatusAccepted, "ai run triggered", res)
}

func (h *DashboardHandler) ListAIRuns(c *gin.Context) {
	var req snapshot.ListHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	runs, err := h.dashboardService.ListAIRuns(c.Request.Context(), c.Param("id"), req.Limit)
	if err != nil {
		h.fail(c, "failed to list ai runs", err)
		return
	}
	response.Success(c, http.StatusOK, "ai runs retrieved", runs)
}

// ResetAIRunLimit lets an admin lift the AI-run throttle for a customer.
func (h *DashboardHandler) ResetAIRunLimit(c *gin.Context) {
	operatorID, _ := middleware.GetOperatorID(c)

	if err := h.dashboardService.ResetAIRunLimit(c.Request.Context(), c.Param("id"), operatorID); err != nil {
		h.fail(c, "failed to reset ai run limit", err)
		return
	}
	response.Success(c, http.StatusOK, "ai run limit reset", nil)
}

// fail maps service errors onto HTTP responses.
func (h *DashboardHandler) fail(c *gin.Context, message string, err error) {
	var (
		domainErr     *xerrors.DomainError
		transportErr  *xerrors.TransportError
		decodeErr     *normalize.DecodeError
		validationErr *xerrors.ValidationError
	)

	switch {
	case errors.As(err, &validationErr):
		response.ValidationError(c, message, err)
	case errors.As(err, &domainErr):
		response.NotFound(c, domainErr.Message)
	case errors.As(err, &decodeErr):
		response.Unprocessable(c, message, err, decodeErr)
	case errors.As(err, &transportErr):
		h.logger.Warn("upstream unavailable",
			zap.String("path", c.FullPath()),
			zap.String("customer_id", c.Param("id")),
			zap.Error(err),
		)
		response.UpstreamUnavailable(c, err)
	case errors.Is(err, xerrors.ErrRateLimited):
		response.TooManyRequests(c, message, err)
	case errors.Is(err, xerrors.ErrNotFound):
		response.NotFound(c, message)
	default:
		h.logger.Error(message,
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, message, nil)
	}
}
