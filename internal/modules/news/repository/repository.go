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

var updatableColumns = []string{
	"title", "content", "category_id", "video", "original_link", "author", "highlight",
}

type NewsRepository interface {
	// Create stores news together with its sponsor links.
	Create(ctx context.Context, news *entity.News) error
	FindByID(ctx context.Context, id uint) (*entity.News, error)
	FindDetail(ctx context.Context, id uint) (*entity.News, error)
	FindAll(ctx context.Context) ([]*entity.News, error)
	FindMostViewed(ctx context.Context, limit int) ([]*entity.News, error)
	// Update writes the scalar columns and, when sponsors is non-nil,
	// replaces the sponsor links in the same transaction.
	Update(ctx context.Context, news *entity.News, sponsors *[]entity.Sponsor) error
	Delete(ctx context.Context, id uint) ([]string, error)
	Exists(ctx context.Context, id uint) (bool, error)
	TitleTaken(ctx context.Context, title string, excludeID uint) (bool, error)
	IncrementViews(ctx context.Context, id uint) error
	CountLikes(ctx context.Context, ids []uint) (map[uint]int64, error)
	CountComments(ctx context.Context, ids []uint) (map[uint]int64, error)
	AuthorName(ctx context.Context, userID uuid.UUID) (string, error)

	AddImage(ctx context.Context, image *entity.NewsImage) error
	FindImage(ctx context.Context, newsID, imageID uint) (*entity.NewsImage, error)
	DeleteImage(ctx context.Context, image *entity.NewsImage) error
}

type newsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) Create(ctx context.Context, news *entity.News) error {
	err := r.db.WithContext(ctx).Omit("Category", "CreatedBy", "Sponsors.*").Create(news).Error
	return translate(err, news.Title)
}

func (r *newsRepository) FindByID(ctx context.Context, id uint) (*entity.News, error) {
	var news entity.News
	if err := r.db.WithContext(ctx).First(&news, id).Error; err != nil {
		return nil, notFound(err, id)
	}
	return &news, nil
}

func (r *newsRepository) FindDetail(ctx context.Context, id uint) (*entity.News, error) {
	var news entity.News
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Sponsors", func(db *gorm.DB) *gorm.DB { return db.Order("sponsors.name ASC") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("news_images.id ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("comments.created_at ASC").Order("comments.id ASC") }).
		Preload("Comments.User").
		First(&news, id).Error
	if err != nil {
		return nil, notFound(err, id)
	}
	return &news, nil
}

func (r *newsRepository) FindAll(ctx context.Context) ([]*entity.News, error) {
	var news []*entity.News
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Sponsors").
		Preload("Images").
		Order("published_date DESC").
		Order("id DESC").
		Find(&news).Error
	if err != nil {
		return nil, err
	}
	return news, nil
}

func (r *newsRepository) FindMostViewed(ctx context.Context, limit int) ([]*entity.News, error) {
	var news []*entity.News
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Sponsors").
		Preload("Images").
		Order("views DESC").
		Order("published_date DESC").
		Limit(limit).
		Find(&news).Error
	if err != nil {
		return nil, err
	}
	return news, nil
}

func (r *newsRepository) Update(ctx context.Context, news *entity.News, sponsors *[]entity.Sponsor) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(news).Omit(clause.Associations).Select(updatableColumns).Updates(news).Error; err != nil {
			return err
		}
		if sponsors == nil {
			return nil
		}
		association := tx.Model(news).Association("Sponsors")
		if len(*sponsors) == 0 {
			if err := association.Clear(); err != nil {
				return err
			}
		} else if err := association.Replace(*sponsors); err != nil {
			return err
		}
		news.Sponsors = *sponsors
		return nil
	})
	return translate(err, news.Title)
}

// Delete removes the news row; images, comments and likes follow through
// their foreign keys. It returns the image URLs so the caller can clean up
// media storage.
func (r *newsRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.NewsImage{}).Where("news_id = ?", id).Pluck("image_url", &urls).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM news_sponsors WHERE news_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.News{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: news %d", apperror.ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return urls, nil
}

func (r *newsRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.News{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *newsRepository) TitleTaken(ctx context.Context, title string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.News{}).Where("title = ?", title)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *newsRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&entity.News{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

type countRow struct {
	NewsID uint
	Count  int64
}

func (r *newsRepository) CountLikes(ctx context.Context, ids []uint) (map[uint]int64, error) {
	return r.countBy(ctx, &entity.NewsLike{}, ids)
}

func (r *newsRepository) CountComments(ctx context.Context, ids []uint) (map[uint]int64, error) {
	return r.countBy(ctx, &entity.Comment{}, ids)
}

func (r *newsRepository) countBy(ctx context.Context, model any, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []countRow
	err := r.db.WithContext(ctx).
		Model(model).
		Select("news_id, COUNT(*) AS count").
		Where("news_id IN ?", ids).
		Group("news_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.NewsID] = row.Count
	}
	return counts, nil
}

func (r *newsRepository) AuthorName(ctx context.Context, userID uuid.UUID) (string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", userID).Limit(1).Pluck("username", &names).Error
	if err != nil || len(names) == 0 {
		return "", err
	}
	return names[0], nil
}

func (r *newsRepository) AddImage(ctx context.Context, image *entity.NewsImage) error {
	err := r.db.WithContext(ctx).Create(image).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: news %d", apperror.ErrNotFound, image.NewsID)
	}
	return err
}

func (r *newsRepository) FindImage(ctx context.Context, newsID, imageID uint) (*entity.NewsImage, error) {
	var image entity.NewsImage
	err := r.db.WithContext(ctx).Where("id = ? AND news_id = ?", imageID, newsID).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: image %d", apperror.ErrNotFound, imageID)
		}
		return nil, err
	}
	return &image, nil
}

func (r *newsRepository) DeleteImage(ctx context.Context, image *entity.NewsImage) error {
	return r.db.WithContext(ctx).Delete(image).Error
}

func notFound(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: news %d", apperror.ErrNotFound, id)
	}
	return err
}

func translate(err error, title string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: news with title %q already exists", apperror.ErrValidation, title)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: category or sponsor does not exist", apperror.ErrNotFound)
	}
	return err
}
