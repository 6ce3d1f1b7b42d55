package handler

import (
	"net/http"
	"strings"

	"anoa.com/newsportal/internal/modules/sponsor/dto"
	sponsor "anoa.com/newsportal/internal/modules/sponsor/service"
	"anoa.com/newsportal/pkg/response"
	"github.com/gin-gonic/gin"
)

type SponsorHandler struct {
	service sponsor.SponsorService
}

func NewSponsorHandler(service sponsor.SponsorService) *SponsorHandler {
	return &SponsorHandler{service: service}
}

func (h *SponsorHandler) ListSponsors(c *gin.Context) {
	sponsors, err := h.service.ListSponsors(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, sponsors)
}

func (h *SponsorHandler) ListActiveSponsors(c *gin.Context) {
	sponsors, err := h.service.ListActiveSponsors(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, sponsors)
}

func (h *SponsorHandler) GetSponsor(c *gin.Context) {
	id, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	sp, err := h.service.GetSponsor(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, sp)
}

func (h *SponsorHandler) CreateSponsor(c *gin.Context) {
	var req dto.SponsorRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	logo, closeLogo, err := logoFile(c)
	if err != nil {
		response.BindError(c, err)
		return
	}
	defer closeLogo()

	sp, err := h.service.CreateSponsor(c.Request.Context(), req, logo)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sp)
}

func (h *SponsorHandler) ReplaceSponsor(c *gin.Context) {
	id, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.SponsorRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	logo, closeLogo, err := logoFile(c)
	if err != nil {
		response.BindError(c, err)
		return
	}
	defer closeLogo()

	sp, err := h.service.ReplaceSponsor(c.Request.Context(), id, req, logo)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, sp)
}

func (h *SponsorHandler) PatchSponsor(c *gin.Context) {
	id, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.PatchSponsorRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	logo, closeLogo, err := logoFile(c)
	if err != nil {
		response.BindError(c, err)
		return
	}
	defer closeLogo()

	sp, err := h.service.PatchSponsor(c.Request.Context(), id, req, logo)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, sp)
}

func (h *SponsorHandler) DeleteSponsor(c *gin.Context) {
	id, err := response.ParamUint(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteSponsor(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// logoFile opens the optional multipart "logo" part.
func logoFile(c *gin.Context) (*dto.LogoFile, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, noop, nil
	}

	fh, err := c.FormFile("logo")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, noop, nil
		}
		return nil, noop, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &dto.LogoFile{Reader: f, FileName: fh.Filename}, func() { _ = f.Close() }, nil
}
