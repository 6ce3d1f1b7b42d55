package comment

import (
	"context"
	"fmt"
	"time"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/internal/modules/comment/dto"
	"anoa.com/newsportal/internal/modules/comment/repository"
	"anoa.com/newsportal/internal/rbac"
	"anoa.com/newsportal/pkg/apperror"
	"anoa.com/newsportal/pkg/ratelimiter"
	"anoa.com/newsportal/pkg/sanitizer"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type NewsLookup interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

type CommentService interface {
	CreateComment(ctx context.Context, caller rbac.Identity, req dto.CommentRequest) (*dto.CommentResponse, error)
	GetComment(ctx context.Context, id uint) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, filter dto.CommentFilter) ([]dto.CommentResponse, error)
	UpdateComment(ctx context.Context, caller rbac.Identity, id uint, req dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, caller rbac.Identity, id uint) error
}

type commentService struct {
	repo        repository.CommentRepository
	news        NewsLookup
	policy      rbac.Policy
	redisClient *redis.Client
	cooldown    time.Duration
	log         zerolog.Logger
}

// NewCommentService applies a per user cooldown between comments when
// redisClient is set and cooldown is positive.
func NewCommentService(
	repo repository.CommentRepository,
	news NewsLookup,
	policy rbac.Policy,
	redisClient *redis.Client,
	cooldown time.Duration,
	log zerolog.Logger,
) CommentService {
	return &commentService{
		repo:        repo,
		news:        news,
		policy:      policy,
		redisClient: redisClient,
		cooldown:    cooldown,
		log:         log,
	}
}

func (s *commentService) CreateComment(ctx context.Context, caller rbac.Identity, req dto.CommentRequest) (*dto.CommentResponse, error) {
	if err := s.policy.Check(caller, rbac.ActionCreate, rbac.ResourceComment); err != nil {
		return nil, err
	}

	content, err := cleanContent(req.Content)
	if err != nil {
		return nil, err
	}

	exists, err := s.news.Exists(ctx, req.News)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: news %d", apperror.ErrNotFound, req.News)
	}

	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, caller.UserID, ratelimiter.ScopeComment, s.cooldown)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		return nil, ratelimiter.Limited(ctx, s.redisClient, caller.UserID, ratelimiter.ScopeComment)
	}

	comment := &entity.Comment{
		Content: content,
		UserID:  caller.UserID,
		NewsID:  req.News,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		if clearErr := ratelimiter.ClearRateLimit(ctx, s.redisClient, caller.UserID, ratelimiter.ScopeComment); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("failed to clear comment cooldown")
		}
		return nil, err
	}

	return toResponse(comment), nil
}

func (s *commentService) GetComment(ctx context.Context, id uint) (*dto.CommentResponse, error) {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(comment), nil
}

func (s *commentService) ListComments(ctx context.Context, filter dto.CommentFilter) ([]dto.CommentResponse, error) {
	comments, err := s.repo.FindAll(ctx, filter.News)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, *toResponse(c))
	}
	return out, nil
}

func (s *commentService) UpdateComment(ctx context.Context, caller rbac.Identity, id uint, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckObject(caller, rbac.ActionUpdate, rbac.ResourceComment, comment.UserID); err != nil {
		return nil, err
	}

	if req.Content == nil {
		return toResponse(comment), nil
	}
	content, err := cleanContent(*req.Content)
	if err != nil {
		return nil, err
	}
	comment.Content = content

	if err := s.repo.UpdateContent(ctx, comment); err != nil {
		return nil, err
	}
	return toResponse(comment), nil
}

func (s *commentService) DeleteComment(ctx context.Context, caller rbac.Identity, id uint) error {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.CheckObject(caller, rbac.ActionDelete, rbac.ResourceComment, comment.UserID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func cleanContent(raw string) (string, error) {
	content := sanitizer.PlainText(raw)
	if content == "" {
		return "", fmt.Errorf("%w: comment may not be blank", apperror.ErrValidation)
	}
	return content, nil
}

func toResponse(c *entity.Comment) *dto.CommentResponse {
	return &dto.CommentResponse{
		ID:        c.ID,
		News:      c.NewsID,
		UserID:    c.UserID,
		Username:  c.User.Username,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
