package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/coderr-app/coderr-backend/internal/app/service"
	apperrors "github.com/coderr-app/coderr-backend/internal/errors"
	"github.com/coderr-app/coderr-backend/internal/middleware"
)

type BaseInfoController struct {
	statsService service.StatsService
}

func NewBaseInfoController(statsService service.StatsService) *BaseInfoController {
	return &BaseInfoController{
		statsService: statsService,
	}
}

// GetBaseInfo returns the platform-wide counts and average rating
// GET /base-info/
func (ctrl *BaseInfoController) GetBaseInfo(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	info, err := ctrl.statsService.BaseInfo(c.Request.Context())
	if err != nil {
		log.Error("Failed to compute platform stats", err, nil)
		apperrors.HandleError(c, err, "stats")
		return
	}

	c.JSON(http.StatusOK, info)
}
