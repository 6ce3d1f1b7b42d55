package handler

import (
	"net/http"

	like "anoa.com/newsportal/internal/modules/like/service"
	"anoa.com/newsportal/pkg/response"
	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	service like.LikeService
}

func NewLikeHandler(service like.LikeService) *LikeHandler {
	return &LikeHandler{service: service}
}

// ToggleLike answers 201 when the like was created and 200 when removed.
func (h *LikeHandler) ToggleLike(c *gin.Context) {
	newsID, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.Toggle(c.Request.Context(), userID, newsID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	status := http.StatusOK
	if result.Liked {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}
