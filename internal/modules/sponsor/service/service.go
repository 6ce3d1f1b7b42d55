package sponsor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/internal/modules/sponsor/dto"
	"anoa.com/newsportal/internal/modules/sponsor/repository"
	"anoa.com/newsportal/pkg/apperror"
	"anoa.com/newsportal/pkg/storage"
	"github.com/rs/zerolog"
)

const logoFolder = "sponsors"

type SponsorService interface {
	CreateSponsor(ctx context.Context, req dto.SponsorRequest, logo *dto.LogoFile) (*dto.SponsorResponse, error)
	GetSponsor(ctx context.Context, id uint) (*dto.SponsorResponse, error)
	ListSponsors(ctx context.Context) ([]dto.SponsorResponse, error)
	ListActiveSponsors(ctx context.Context) ([]dto.SponsorResponse, error)
	ReplaceSponsor(ctx context.Context, id uint, req dto.SponsorRequest, logo *dto.LogoFile) (*dto.SponsorResponse, error)
	PatchSponsor(ctx context.Context, id uint, req dto.PatchSponsorRequest, logo *dto.LogoFile) (*dto.SponsorResponse, error)
	DeleteSponsor(ctx context.Context, id uint) error
}

type sponsorService struct {
	repo    repository.SponsorRepository
	storage storage.MediaStorage
	log     zerolog.Logger
	now     func() time.Time
}

func NewSponsorService(repo repository.SponsorRepository, storage storage.MediaStorage, log zerolog.Logger) SponsorService {
	return &sponsorService{
		repo:    repo,
		storage: storage,
		log:     log,
		now:     time.Now,
	}
}

func (s *sponsorService) CreateSponsor(ctx context.Context, req dto.SponsorRequest, logo *dto.LogoFile) (*dto.SponsorResponse, error) {
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	sponsor := &entity.Sponsor{
		Name:        strings.TrimSpace(req.Name),
		Website:     req.Website,
		StartDate:   start,
		EndDate:     end,
		IsActive:    req.IsActive == nil || *req.IsActive,
		Description: req.Description,
	}

	if logo != nil {
		url, err := s.uploadLogo(ctx, logo)
		if err != nil {
			return nil, err
		}
		sponsor.LogoURL = &url
	}

	if err := s.repo.Create(ctx, sponsor); err != nil {
		s.discardLogo(ctx, sponsor.LogoURL)
		return nil, err
	}
	return s.toResponse(sponsor), nil
}

func (s *sponsorService) GetSponsor(ctx context.Context, id uint) (*dto.SponsorResponse, error) {
	sponsor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(sponsor), nil
}

func (s *sponsorService) ListSponsors(ctx context.Context) ([]dto.SponsorResponse, error) {
	sponsors, err := s.repo.FindAll(ctx, false)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SponsorResponse, 0, len(sponsors))
	for _, sp := range sponsors {
		out = append(out, *s.toResponse(sp))
	}
	return out, nil
}

// ListActiveSponsors returns flagged-active sponsors whose date range
// contains today.
func (s *sponsorService) ListActiveSponsors(ctx context.Context) ([]dto.SponsorResponse, error) {
	sponsors, err := s.repo.FindAll(ctx, true)
	if err != nil {
		return nil, err
	}

	today := s.now()
	out := make([]dto.SponsorResponse, 0, len(sponsors))
	for _, sp := range sponsors {
		if sp.IsCurrentlyActive(today) {
			out = append(out, *s.toResponse(sp))
		}
	}
	return out, nil
}

func (s *sponsorService) ReplaceSponsor(ctx context.Context, id uint, req dto.SponsorRequest, logo *dto.LogoFile) (*dto.SponsorResponse, error) {
	sponsor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	sponsor.Name = strings.TrimSpace(req.Name)
	sponsor.Website = req.Website
	sponsor.StartDate = start
	sponsor.EndDate = end
	sponsor.IsActive = req.IsActive == nil || *req.IsActive
	sponsor.Description = req.Description

	return s.save(ctx, sponsor, logo)
}

func (s *sponsorService) PatchSponsor(ctx context.Context, id uint, req dto.PatchSponsorRequest, logo *dto.LogoFile) (*dto.SponsorResponse, error) {
	sponsor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	startRaw := sponsor.StartDate.Format(dto.DateLayout)
	endRaw := sponsor.EndDate.Format(dto.DateLayout)
	if req.StartDate != nil {
		startRaw = *req.StartDate
	}
	if req.EndDate != nil {
		endRaw = *req.EndDate
	}
	start, end, err := parseRange(startRaw, endRaw)
	if err != nil {
		return nil, err
	}
	sponsor.StartDate = start
	sponsor.EndDate = end

	if req.Name != nil {
		sponsor.Name = strings.TrimSpace(*req.Name)
	}
	if req.Website != nil {
		sponsor.Website = req.Website
	}
	if req.IsActive != nil {
		sponsor.IsActive = *req.IsActive
	}
	if req.Description != nil {
		sponsor.Description = req.Description
	}

	return s.save(ctx, sponsor, logo)
}

func (s *sponsorService) save(ctx context.Context, sponsor *entity.Sponsor, logo *dto.LogoFile) (*dto.SponsorResponse, error) {
	oldLogo := sponsor.LogoURL
	if logo != nil {
		url, err := s.uploadLogo(ctx, logo)
		if err != nil {
			return nil, err
		}
		sponsor.LogoURL = &url
	}

	if err := s.repo.Update(ctx, sponsor); err != nil {
		if logo != nil {
			s.discardLogo(ctx, sponsor.LogoURL)
		}
		return nil, err
	}

	if logo != nil {
		s.discardLogo(ctx, oldLogo)
	}
	return s.toResponse(sponsor), nil
}

func (s *sponsorService) DeleteSponsor(ctx context.Context, id uint) error {
	sponsor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.discardLogo(ctx, sponsor.LogoURL)
	return nil
}

func (s *sponsorService) uploadLogo(ctx context.Context, logo *dto.LogoFile) (string, error) {
	if !isImage(logo.FileName) {
		return "", fmt.Errorf("%w: logo must be an image file", apperror.ErrValidation)
	}
	url, err := s.storage.Upload(ctx, logo.Reader, logoFolder, logo.FileName)
	if err != nil {
		return "", fmt.Errorf("failed to upload sponsor logo: %w", err)
	}
	return url, nil
}

// discardLogo is best effort; a stale object in media storage is harmless.
func (s *sponsorService) discardLogo(ctx context.Context, url *string) {
	if url == nil || *url == "" {
		return
	}
	if err := s.storage.Delete(ctx, *url); err != nil {
		s.log.Warn().Err(err).Str("url", *url).Msg("failed to delete sponsor logo")
	}
}

func (s *sponsorService) toResponse(sp *entity.Sponsor) *dto.SponsorResponse {
	return &dto.SponsorResponse{
		ID:                sp.ID,
		Name:              sp.Name,
		Logo:              sp.LogoURL,
		Website:           sp.Website,
		StartDate:         sp.StartDate.Format(dto.DateLayout),
		EndDate:           sp.EndDate.Format(dto.DateLayout),
		IsActive:          sp.IsActive,
		IsCurrentlyActive: sp.IsCurrentlyActive(s.now()),
		Description:       sp.Description,
		CreatedAt:         sp.CreatedAt,
	}
}

func parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(dto.DateLayout, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", apperror.ErrValidation)
	}
	end, err := time.Parse(dto.DateLayout, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", apperror.ErrValidation)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date must not be before start_date", apperror.ErrValidation)
	}
	return start, end, nil
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg":
		return true
	}
	return false
}
