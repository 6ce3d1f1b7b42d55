package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/pkg/apperror"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id uint) (*entity.Comment, error)
	FindAll(ctx context.Context, newsID uint) ([]*entity.Comment, error)
	UpdateContent(ctx context.Context, comment *entity.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	err := r.db.WithContext(ctx).Omit("User").Create(comment).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: news %d", apperror.ErrNotFound, comment.NewsID)
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).First(&comment.User, "id = ?", comment.UserID).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uint) (*entity.Comment, error) {
	var comment entity.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: comment %d", apperror.ErrNotFound, id)
		}
		return nil, err
	}
	return &comment, nil
}

// FindAll lists comments oldest first. A zero newsID lists every comment.
func (r *commentRepository) FindAll(ctx context.Context, newsID uint) ([]*entity.Comment, error) {
	query := r.db.WithContext(ctx).Preload("User").Order("created_at ASC").Order("id ASC")
	if newsID != 0 {
		query = query.Where("news_id = ?", newsID)
	}

	var comments []*entity.Comment
	if err := query.Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Model(comment).Select("content", "updated_at").Updates(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: comment %d", apperror.ErrNotFound, id)
	}
	return nil
}
