package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/pkg/apperror"
	"gorm.io/gorm"
)

type SponsorRepository interface {
	Create(ctx context.Context, sponsor *entity.Sponsor) error
	FindByID(ctx context.Context, id uint) (*entity.Sponsor, error)
	FindByIDs(ctx context.Context, ids []uint) ([]entity.Sponsor, error)
	FindAll(ctx context.Context, onlyFlaggedActive bool) ([]*entity.Sponsor, error)
	Update(ctx context.Context, sponsor *entity.Sponsor) error
	Delete(ctx context.Context, id uint) error
}

type sponsorRepository struct {
	db *gorm.DB
}

func NewSponsorRepository(db *gorm.DB) SponsorRepository {
	return &sponsorRepository{db: db}
}

func (r *sponsorRepository) Create(ctx context.Context, sponsor *entity.Sponsor) error {
	return r.db.WithContext(ctx).Create(sponsor).Error
}

func (r *sponsorRepository) FindByID(ctx context.Context, id uint) (*entity.Sponsor, error) {
	var sponsor entity.Sponsor
	if err := r.db.WithContext(ctx).First(&sponsor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sponsor %d", apperror.ErrNotFound, id)
		}
		return nil, err
	}
	return &sponsor, nil
}

// FindByIDs returns the sponsors for ids and fails validation when any id
// is unknown.
func (r *sponsorRepository) FindByIDs(ctx context.Context, ids []uint) ([]entity.Sponsor, error) {
	if len(ids) == 0 {
		return []entity.Sponsor{}, nil
	}

	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var sponsors []entity.Sponsor
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&sponsors).Error; err != nil {
		return nil, err
	}
	if len(sponsors) != len(unique) {
		return nil, fmt.Errorf("%w: one or more sponsors do not exist", apperror.ErrValidation)
	}
	return sponsors, nil
}

func (r *sponsorRepository) FindAll(ctx context.Context, onlyFlaggedActive bool) ([]*entity.Sponsor, error) {
	var sponsors []*entity.Sponsor
	query := r.db.WithContext(ctx)
	if onlyFlaggedActive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name ASC").Order("id ASC").Find(&sponsors).Error; err != nil {
		return nil, err
	}
	return sponsors, nil
}

func (r *sponsorRepository) Update(ctx context.Context, sponsor *entity.Sponsor) error {
	return r.db.WithContext(ctx).
		Model(sponsor).
		Select("name", "logo_url", "website", "start_date", "end_date", "is_active", "description").
		Updates(sponsor).Error
}

func (r *sponsorRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM news_sponsors WHERE sponsor_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Sponsor{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: sponsor %d", apperror.ErrNotFound, id)
		}
		return nil
	})
}
