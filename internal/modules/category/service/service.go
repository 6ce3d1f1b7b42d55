package category

import (
	"context"
	"strings"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/internal/modules/category/dto"
	"anoa.com/newsportal/internal/modules/category/repository"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, req dto.CategoryRequest) (*dto.CategoryResponse, error)
	GetCategory(ctx context.Context, id uint) (*dto.CategoryResponse, error)
	GetAllCategories(ctx context.Context) ([]dto.CategoryResponse, error)
	ReplaceCategory(ctx context.Context, id uint, req dto.CategoryRequest) (*dto.CategoryResponse, error)
	PatchCategory(ctx context.Context, id uint, req dto.PatchCategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	category := &entity.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Color:       normalizeColor(req.Color),
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return toResponse(category), nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uint) (*dto.CategoryResponse, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(category), nil
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, *toResponse(cat))
	}
	return out, nil
}

func (s *categoryService) ReplaceCategory(ctx context.Context, id uint, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Description = strings.TrimSpace(req.Description)
	category.Color = normalizeColor(req.Color)

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return toResponse(category), nil
}

func (s *categoryService) PatchCategory(ctx context.Context, id uint, req dto.PatchCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		category.Description = strings.TrimSpace(*req.Description)
	}
	if req.Color != nil {
		category.Color = normalizeColor(*req.Color)
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return toResponse(category), nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func normalizeColor(color string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return entity.DefaultCategoryColor
	}
	return strings.ToUpper(color)
}

func toResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		CreatedAt:   c.CreatedAt,
	}
}
