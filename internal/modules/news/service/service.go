package news

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/internal/modules/news/dto"
	"anoa.com/newsportal/internal/modules/news/repository"
	"anoa.com/newsportal/pkg/apperror"
	"anoa.com/newsportal/pkg/sanitizer"
	"anoa.com/newsportal/pkg/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const imageFolder = "news"

type CategoryLookup interface {
	FindByID(ctx context.Context, id uint) (*entity.Category, error)
}

type SponsorLookup interface {
	FindByIDs(ctx context.Context, ids []uint) ([]entity.Sponsor, error)
}

type LikeCounter interface {
	Count(ctx context.Context, newsID uint) (int64, error)
	HasLiked(ctx context.Context, userID uuid.UUID, newsID uint) (bool, error)
}

type ViewRecorder interface {
	RecordView(ctx context.Context, newsID uint, viewer string) (bool, error)
}

// Viewer identifies who is reading for view dedupe.
type Viewer struct {
	UserID   uuid.UUID
	ClientIP string
}

func (v Viewer) key() string {
	if v.UserID != uuid.Nil {
		return "user:" + v.UserID.String()
	}
	if v.ClientIP != "" {
		return "ip:" + v.ClientIP
	}
	return ""
}

type NewsService interface {
	CreateNews(ctx context.Context, userID uuid.UUID, req dto.NewsRequest) (*dto.NewsResponse, error)
	GetAllNews(ctx context.Context) ([]dto.NewsResponse, error)
	GetTrendingNews(ctx context.Context, limit int) ([]dto.NewsResponse, error)
	GetNews(ctx context.Context, id uint, viewer Viewer) (*dto.NewsDetailResponse, error)
	ReplaceNews(ctx context.Context, id uint, req dto.NewsRequest) (*dto.NewsResponse, error)
	PatchNews(ctx context.Context, id uint, req dto.PatchNewsRequest) (*dto.NewsResponse, error)
	DeleteNews(ctx context.Context, id uint) error

	AddImage(ctx context.Context, newsID uint, file dto.ImageFile) (*dto.ImageResponse, error)
	DeleteImage(ctx context.Context, newsID, imageID uint) error
}

type newsService struct {
	repo       repository.NewsRepository
	categories CategoryLookup
	sponsors   SponsorLookup
	likes      LikeCounter
	views      ViewRecorder
	storage    storage.MediaStorage
	log        zerolog.Logger
}

func NewNewsService(
	repo repository.NewsRepository,
	categories CategoryLookup,
	sponsors SponsorLookup,
	likes LikeCounter,
	views ViewRecorder,
	storage storage.MediaStorage,
	log zerolog.Logger,
) NewsService {
	return &newsService{
		repo:       repo,
		categories: categories,
		sponsors:   sponsors,
		likes:      likes,
		views:      views,
		storage:    storage,
		log:        log,
	}
}

func (s *newsService) CreateNews(ctx context.Context, userID uuid.UUID, req dto.NewsRequest) (*dto.NewsResponse, error) {
	title := strings.TrimSpace(req.Title)
	if err := s.ensureTitleFree(ctx, title, 0); err != nil {
		return nil, err
	}

	category, err := s.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	sponsors, err := s.sponsors.FindByIDs(ctx, req.SponsorIDs)
	if err != nil {
		return nil, err
	}

	author := strings.TrimSpace(req.Author)
	if author == "" {
		if author, err = s.repo.AuthorName(ctx, userID); err != nil {
			return nil, err
		}
	}

	news := &entity.News{
		Title:        title,
		Content:      sanitizer.RichText(req.Content),
		CategoryID:   category.ID,
		Category:     *category,
		Video:        req.Video,
		OriginalLink: req.OriginalLink,
		Author:       author,
		Highlight:    req.Highlight,
		CreatedByID:  &userID,
		Sponsors:     sponsors,
	}
	if err := s.repo.Create(ctx, news); err != nil {
		return nil, err
	}

	return toResponse(news, 0, 0), nil
}

func (s *newsService) GetAllNews(ctx context.Context) ([]dto.NewsResponse, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, items)
}

// GetTrendingNews lists the most viewed news.
func (s *newsService) GetTrendingNews(ctx context.Context, limit int) ([]dto.NewsResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	items, err := s.repo.FindMostViewed(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, items)
}

func (s *newsService) summarize(ctx context.Context, items []*entity.News) ([]dto.NewsResponse, error) {
	ids := make([]uint, 0, len(items))
	for _, n := range items {
		ids = append(ids, n.ID)
	}
	likes, err := s.repo.CountLikes(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.CountComments(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.NewsResponse, 0, len(items))
	for _, n := range items {
		out = append(out, *toResponse(n, likes[n.ID], comments[n.ID]))
	}
	return out, nil
}

// GetNews records the read before loading so the returned counter includes
// it.
func (s *newsService) GetNews(ctx context.Context, id uint, viewer Viewer) (*dto.NewsDetailResponse, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: news %d", apperror.ErrNotFound, id)
	}

	if _, err := s.views.RecordView(ctx, id, viewer.key()); err != nil {
		s.log.Warn().Err(err).Uint("news_id", id).Msg("failed to record view")
	}

	news, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	likes, err := s.likes.Count(ctx, id)
	if err != nil {
		return nil, err
	}
	liked, err := s.likes.HasLiked(ctx, viewer.UserID, id)
	if err != nil {
		return nil, err
	}

	comments := make([]dto.CommentSummary, 0, len(news.Comments))
	for _, c := range news.Comments {
		comments = append(comments, dto.CommentSummary{
			ID:        c.ID,
			UserID:    c.UserID,
			Username:  c.User.Username,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}

	return &dto.NewsDetailResponse{
		NewsResponse: *toResponse(news, likes, int64(len(comments))),
		Comments:     comments,
		Liked:        liked,
	}, nil
}

func (s *newsService) ReplaceNews(ctx context.Context, id uint, req dto.NewsRequest) (*dto.NewsResponse, error) {
	news, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if err := s.ensureTitleFree(ctx, title, id); err != nil {
		return nil, err
	}
	category, err := s.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	sponsors, err := s.sponsors.FindByIDs(ctx, req.SponsorIDs)
	if err != nil {
		return nil, err
	}

	news.Title = title
	news.Content = sanitizer.RichText(req.Content)
	news.CategoryID = category.ID
	news.Category = *category
	news.Video = req.Video
	news.OriginalLink = req.OriginalLink
	if author := strings.TrimSpace(req.Author); author != "" {
		news.Author = author
	}
	news.Highlight = req.Highlight

	if err := s.repo.Update(ctx, news, &sponsors); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *newsService) PatchNews(ctx context.Context, id uint, req dto.PatchNewsRequest) (*dto.NewsResponse, error) {
	news, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := s.ensureTitleFree(ctx, title, id); err != nil {
			return nil, err
		}
		news.Title = title
	}
	if req.Content != nil {
		news.Content = sanitizer.RichText(*req.Content)
	}
	if req.CategoryID != nil {
		category, err := s.categories.FindByID(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		news.CategoryID = category.ID
	}
	if req.Video != nil {
		news.Video = req.Video
	}
	if req.OriginalLink != nil {
		news.OriginalLink = req.OriginalLink
	}
	if req.Author != nil {
		news.Author = strings.TrimSpace(*req.Author)
	}
	if req.Highlight != nil {
		news.Highlight = *req.Highlight
	}

	var sponsors *[]entity.Sponsor
	if req.SponsorIDs != nil {
		found, err := s.sponsors.FindByIDs(ctx, *req.SponsorIDs)
		if err != nil {
			return nil, err
		}
		sponsors = &found
	}

	if err := s.repo.Update(ctx, news, sponsors); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *newsService) DeleteNews(ctx context.Context, id uint) error {
	urls, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	for _, url := range urls {
		s.discard(ctx, url)
	}
	return nil
}

func (s *newsService) AddImage(ctx context.Context, newsID uint, file dto.ImageFile) (*dto.ImageResponse, error) {
	exists, err := s.repo.Exists(ctx, newsID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: news %d", apperror.ErrNotFound, newsID)
	}
	if !isImage(file.FileName) {
		return nil, fmt.Errorf("%w: upload a valid image", apperror.ErrValidation)
	}

	url, err := s.storage.Upload(ctx, file.Reader, imageFolder, file.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	image := &entity.NewsImage{NewsID: newsID, ImageURL: url}
	if err := s.repo.AddImage(ctx, image); err != nil {
		s.discard(ctx, url)
		return nil, err
	}

	return &dto.ImageResponse{ID: image.ID, Image: image.ImageURL, CreatedAt: image.CreatedAt}, nil
}

func (s *newsService) DeleteImage(ctx context.Context, newsID, imageID uint) error {
	image, err := s.repo.FindImage(ctx, newsID, imageID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteImage(ctx, image); err != nil {
		return err
	}
	s.discard(ctx, image.ImageURL)
	return nil
}

func (s *newsService) ensureTitleFree(ctx context.Context, title string, excludeID uint) error {
	if title == "" {
		return fmt.Errorf("%w: title may not be blank", apperror.ErrValidation)
	}
	taken, err := s.repo.TitleTaken(ctx, title, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: news with this title already exists", apperror.ErrValidation)
	}
	return nil
}

func (s *newsService) reload(ctx context.Context, id uint) (*dto.NewsResponse, error) {
	news, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	likes, err := s.likes.Count(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(news, likes, int64(len(news.Comments))), nil
}

// discard removes a media object best effort.
func (s *newsService) discard(ctx context.Context, url string) {
	if err := s.storage.Delete(ctx, url); err != nil {
		s.log.Warn().Err(err).Str("url", url).Msg("failed to delete news media")
	}
}

func toResponse(n *entity.News, likes, comments int64) *dto.NewsResponse {
	sponsors := make([]dto.SponsorSummary, 0, len(n.Sponsors))
	for _, sp := range n.Sponsors {
		sponsors = append(sponsors, dto.SponsorSummary{ID: sp.ID, Name: sp.Name, Logo: sp.LogoURL, Website: sp.Website})
	}

	images := make([]dto.ImageResponse, 0, len(n.Images))
	for _, img := range n.Images {
		images = append(images, dto.ImageResponse{ID: img.ID, Image: img.ImageURL, CreatedAt: img.CreatedAt})
	}

	return &dto.NewsResponse{
		ID:            n.ID,
		Title:         n.Title,
		Content:       n.Content,
		PublishedDate: n.PublishedDate,
		Category: dto.CategorySummary{
			ID:    n.Category.ID,
			Name:  n.Category.Name,
			Color: n.Category.Color,
		},
		Views:         n.Views,
		Video:         n.Video,
		OriginalLink:  n.OriginalLink,
		Author:        n.Author,
		Highlight:     n.Highlight,
		CreatedBy:     n.CreatedByID,
		Sponsors:      sponsors,
		Images:        images,
		LikesCount:    likes,
		CommentsCount: comments,
		UpdatedAt:     n.UpdatedAt,
	}
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}
