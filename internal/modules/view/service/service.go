package view

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ViewCounter persists a single additional view.
type ViewCounter interface {
	IncrementViews(ctx context.Context, newsID uint) error
}

type ViewService interface {
	// RecordView counts a view unless the same viewer was counted within
	// the dedupe window. It reports whether the view was counted.
	RecordView(ctx context.Context, newsID uint, viewer string) (bool, error)
}

type viewService struct {
	redisClient *redis.Client
	counter     ViewCounter
	window      time.Duration
	log         zerolog.Logger
}

// NewViewService counts every read when redisClient is nil or window is
// not positive.
func NewViewService(redisClient *redis.Client, counter ViewCounter, window time.Duration, log zerolog.Logger) ViewService {
	return &viewService{
		redisClient: redisClient,
		counter:     counter,
		window:      window,
		log:         log,
	}
}

func (s *viewService) RecordView(ctx context.Context, newsID uint, viewer string) (bool, error) {
	if s.redisClient != nil && s.window > 0 && viewer != "" {
		viewerKey := fmt.Sprintf("news:viewer:%d:%s", newsID, viewer)

		first, err := s.redisClient.SetNX(ctx, viewerKey, "viewed", s.window).Result()
		if err != nil {
			// count the view rather than lose it while redis is down
			s.log.Warn().Err(err).Uint("news_id", newsID).Msg("view dedupe unavailable")
		} else if !first {
			return false, nil
		}
	}

	if err := s.counter.IncrementViews(ctx, newsID); err != nil {
		return false, fmt.Errorf("failed to increment views: %w", err)
	}
	return true, nil
}
