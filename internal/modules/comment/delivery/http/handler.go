package handler

import (
	"net/http"

	"anoa.com/newsportal/internal/middleware"
	"anoa.com/newsportal/internal/modules/comment/dto"
	comment "anoa.com/newsportal/internal/modules/comment/service"
	"anoa.com/newsportal/pkg/response"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service comment.CommentService
}

func NewCommentHandler(service comment.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	created, err := h.service.CreateComment(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *CommentHandler) GetAllComments(c *gin.Context) {
	var filter dto.CommentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	id, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	found, err := h.service.GetComment(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *CommentHandler) ReplaceComment(c *gin.Context) {
	var req dto.ReplaceCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	h.update(c, dto.UpdateCommentRequest{Content: &req.Content})
}

func (h *CommentHandler) PatchComment(c *gin.Context) {
	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	h.update(c, req)
}

func (h *CommentHandler) update(c *gin.Context, req dto.UpdateCommentRequest) {
	id, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	updated, err := h.service.UpdateComment(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
