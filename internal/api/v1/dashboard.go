package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/service"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           *logger.Logger
}

func NewDashboardHandler(dashboardService service.DashboardService, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// @Summary Dashboard
// @Description Invoice count, outstanding balance and count per status for the signed in user
// @Tags Dashboard
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.DashboardResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	resp, err := h.dashboardService.GetDashboard(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
