package handler

import (
	"net/http"

	"anoa.com/newsportal/internal/middleware"
	"anoa.com/newsportal/internal/modules/news/dto"
	news "anoa.com/newsportal/internal/modules/news/service"
	"anoa.com/newsportal/pkg/response"
	"github.com/gin-gonic/gin"
)

type NewsHandler struct {
	service news.NewsService
}

func NewNewsHandler(service news.NewsService) *NewsHandler {
	return &NewsHandler{service: service}
}

func (h *NewsHandler) GetAllNews(c *gin.Context) {
	items, err := h.service.GetAllNews(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *NewsHandler) GetNews(c *gin.Context) {
	id, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	viewer := news.Viewer{
		UserID:   middleware.CurrentIdentity(c).UserID,
		ClientIP: c.ClientIP(),
	}

	item, err := h.service.GetNews(c.Request.Context(), id, viewer)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *NewsHandler) CreateNews(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	item, err := h.service.CreateNews(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *NewsHandler) ReplaceNews(c *gin.Context) {
	id, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	item, err := h.service.ReplaceNews(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *NewsHandler) PatchNews(c *gin.Context) {
	id, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.PatchNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	item, err := h.service.PatchNews(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *NewsHandler) DeleteNews(c *gin.Context) {
	id, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteNews(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NewsHandler) UploadImage(c *gin.Context) {
	id, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer f.Close()

	image, err := h.service.AddImage(c.Request.Context(), id, dto.ImageFile{Reader: f, FileName: fh.Filename})
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, image)
}

func (h *NewsHandler) DeleteImage(c *gin.Context) {
	id, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	imageID, err := response.ParamUint(c, "image_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteImage(c.Request.Context(), id, imageID); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
