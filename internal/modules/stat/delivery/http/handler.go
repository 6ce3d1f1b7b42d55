package handler

import (
	"net/http"

	newsService "anoa.com/newsportal/internal/modules/news/service"
	"anoa.com/newsportal/internal/modules/stat/dto"
	stat "anoa.com/newsportal/internal/modules/stat/service"
	"anoa.com/newsportal/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	statService stat.StatService
	newsService newsService.NewsService
}

func NewStatHandler(statService stat.StatService, newsService newsService.NewsService) *StatHandler {
	return &StatHandler{
		statService: statService,
		newsService: newsService,
	}
}

func (h *StatHandler) GetPortalStats(c *gin.Context) {
	stats, err := h.statService.GetPortalStats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatHandler) GetTrendingNews(c *gin.Context) {
	var query dto.TrendingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	items, err := h.newsService.GetTrendingNews(c.Request.Context(), query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}
