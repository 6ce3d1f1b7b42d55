package like

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"anoa.com/newsportal/internal/modules/like/dto"
	"anoa.com/newsportal/internal/modules/like/repository"
	"anoa.com/newsportal/internal/observability"
	"anoa.com/newsportal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const countTTL = 10 * time.Minute

// NewsLookup reports whether a news item exists.
type NewsLookup interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

type LikeService interface {
	Toggle(ctx context.Context, userID uuid.UUID, newsID uint) (*dto.LikeResponse, error)
	Count(ctx context.Context, newsID uint) (int64, error)
	HasLiked(ctx context.Context, userID uuid.UUID, newsID uint) (bool, error)
}

type likeService struct {
	repo        repository.LikeRepository
	news        NewsLookup
	redisClient *redis.Client
	metrics     *observability.Metrics
	log         zerolog.Logger
}

func NewLikeService(repo repository.LikeRepository, news NewsLookup, redisClient *redis.Client, metrics *observability.Metrics, log zerolog.Logger) LikeService {
	return &likeService{
		repo:        repo,
		news:        news,
		redisClient: redisClient,
		metrics:     metrics,
		log:         log,
	}
}

func countKey(newsID uint) string {
	return fmt.Sprintf("news:likes:%d", newsID)
}

func (s *likeService) Toggle(ctx context.Context, userID uuid.UUID, newsID uint) (*dto.LikeResponse, error) {
	exists, err := s.news.Exists(ctx, newsID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: news %d", apperror.ErrNotFound, newsID)
	}

	liked, err := s.repo.Toggle(ctx, userID, newsID)
	if err != nil {
		return nil, err
	}

	outcome, detail := "unliked", "like removed"
	if liked {
		outcome, detail = "liked", "news liked"
	}
	s.metrics.RecordLikeToggle(outcome)

	count, err := s.repo.Count(ctx, newsID)
	if err != nil {
		return nil, err
	}
	s.storeCount(ctx, newsID, count)

	return &dto.LikeResponse{Liked: liked, LikesCount: count, Detail: detail}, nil
}

// Count serves from Redis when possible and rebuilds from the database on
// a miss. The rebuild only fills an empty key so it never overwrites the
// count a toggle wrote after this read.
func (s *likeService) Count(ctx context.Context, newsID uint) (int64, error) {
	if s.redisClient != nil {
		val, err := s.redisClient.Get(ctx, countKey(newsID)).Result()
		if err == nil {
			if n, convErr := strconv.ParseInt(val, 10, 64); convErr == nil {
				return n, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Uint("news_id", newsID).Msg("like count cache read failed")
		}
	}

	count, err := s.repo.Count(ctx, newsID)
	if err != nil {
		return 0, err
	}

	if s.redisClient != nil {
		if err := s.redisClient.SetNX(ctx, countKey(newsID), count, countTTL).Err(); err != nil {
			s.log.Warn().Err(err).Uint("news_id", newsID).Msg("like count cache write failed")
		}
	}
	return count, nil
}

func (s *likeService) HasLiked(ctx context.Context, userID uuid.UUID, newsID uint) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	return s.repo.Exists(ctx, userID, newsID)
}

func (s *likeService) storeCount(ctx context.Context, newsID uint, count int64) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Set(ctx, countKey(newsID), count, countTTL).Err(); err != nil {
		s.log.Warn().Err(err).Uint("news_id", newsID).Msg("like count cache write failed")
	}
}
