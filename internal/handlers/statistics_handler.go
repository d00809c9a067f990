package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogmodapk-backend/internal/middleware"
	"blogmodapk-backend/internal/service"
)

type StatisticsHandler struct {
	statsService *service.StatsService
}

func NewStatisticsHandler(statsService *service.StatsService) *StatisticsHandler {
	return &StatisticsHandler{statsService: statsService}
}

func (h *StatisticsHandler) Dashboard(c *gin.Context) {
	stats, err := h.statsService.Dashboard(middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *StatisticsHandler) Downloads(c *gin.Context) {
	stats, err := h.statsService.Downloads(middleware.ActorFrom(c), c.Query("days"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
