package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepository interface {
	// Toggle removes the (user, news) like when present and creates it
	// otherwise. It reports whether the like exists afterwards.
	Toggle(ctx context.Context, userID uuid.UUID, newsID uint) (bool, error)
	Count(ctx context.Context, newsID uint) (int64, error)
	Exists(ctx context.Context, userID uuid.UUID, newsID uint) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle deletes first so a repeated click never inserts. The insert relies
// on the (user_id, news_id) unique index: when a concurrent request wins
// the insert, this one collapses into a delete instead of a duplicate.
func (r *likeRepository) Toggle(ctx context.Context, userID uuid.UUID, newsID uint) (bool, error) {
	db := r.db.WithContext(ctx)

	removed, err := r.remove(db, userID, newsID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}

	res := db.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.NewsLike{UserID: userID, NewsID: newsID})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return false, fmt.Errorf("%w: news %d", apperror.ErrNotFound, newsID)
		}
		if !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, res.Error
		}
	} else if res.RowsAffected > 0 {
		return true, nil
	}

	// lost the race to a concurrent like
	if _, err := r.remove(db, userID, newsID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *likeRepository) remove(db *gorm.DB, userID uuid.UUID, newsID uint) (bool, error) {
	res := db.Where("user_id = ? AND news_id = ?", userID, newsID).Delete(&entity.NewsLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) Count(ctx context.Context, newsID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.NewsLike{}).Where("news_id = ?", newsID).Count(&count).Error
	return count, err
}

func (r *likeRepository) Exists(ctx context.Context, userID uuid.UUID, newsID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.NewsLike{}).
		Where("user_id = ? AND news_id = ?", userID, newsID).
		Count(&count).Error
	return count > 0, err
}
