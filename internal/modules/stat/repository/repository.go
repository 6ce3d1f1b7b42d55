package repository

import (
	"context"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/internal/modules/stat/dto"
	"gorm.io/gorm"
)

type StatRepository interface {
	Totals(ctx context.Context) (*dto.PortalStats, error)
}

type statRepository struct {
	db *gorm.DB
}

func NewStatRepository(db *gorm.DB) StatRepository {
	return &statRepository{db: db}
}

func (r *statRepository) Totals(ctx context.Context) (*dto.PortalStats, error) {
	var stats dto.PortalStats
	db := r.db.WithContext(ctx)

	counts := []struct {
		model any
		dst   *int64
	}{
		{&entity.User{}, &stats.TotalUsers},
		{&entity.News{}, &stats.TotalNews},
		{&entity.Comment{}, &stats.TotalComments},
		{&entity.NewsLike{}, &stats.TotalLikes},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Model(&entity.News{}).Select("COALESCE(SUM(views), 0)").Scan(&stats.TotalViews).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
