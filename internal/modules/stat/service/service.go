package stat

import (
	"context"

	"anoa.com/newsportal/internal/modules/stat/dto"
	"anoa.com/newsportal/internal/modules/stat/repository"
)

type StatService interface {
	GetPortalStats(ctx context.Context) (*dto.PortalStats, error)
}

type statService struct {
	repo repository.StatRepository
}

func NewStatService(repo repository.StatRepository) StatService {
	return &statService{
		repo: repo,
	}
}

func (s *statService) GetPortalStats(ctx context.Context) (*dto.PortalStats, error) {
	return s.repo.Totals(ctx)
}
