package calls

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"voiceagent-platform/pkg/logger"
)

var ErrNotFound = errors.New("calls: not found")

const (
	defaultListLimit = 50
	maxListLimit     = 200

	// statsCacheTTL keeps the overview snappy without hammering the stored
	// procedure; the numbers may lag by up to this much.
	statsCacheTTL = 30 * time.Second
)

type Repository interface {
	List(ctx context.Context, userID string, f ListFilter) ([]Call, error)
	Get(ctx context.Context, id string) (Call, error)
	Statistics(ctx context.Context, userID string) (Statistics, error)
}

// Service reads call history and statistics. rdb is optional; without it
// statistics hit the database every time.
type Service struct {
	repo Repository
	rdb  *redis.Client
}

func NewService(repo Repository, rdb *redis.Client) *Service {
	return &Service{repo: repo, rdb: rdb}
}

func (s *Service) List(ctx context.Context, userID string, f ListFilter) ([]Call, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, userID, f)
}

func (s *Service) Get(ctx context.Context, userID, id string) (Call, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Call{}, err
	}
	if c.UserID != userID {
		return Call{}, ErrNotFound
	}
	return c, nil
}

// Statistics returns the aggregate view, cached briefly in Redis. Cache
// failures degrade to a direct read.
func (s *Service) Statistics(ctx context.Context, userID string) (Statistics, error) {
	key := "call_stats:" + userID

	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, key).Result()
		if err == nil {
			var cached Statistics
			if jerr := json.Unmarshal([]byte(raw), &cached); jerr == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.From(ctx).Warn("stats cache read failed", slog.String("error", err.Error()))
		}
	}

	stats, err := s.repo.Statistics(ctx, userID)
	if err != nil {
		return Statistics{}, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, key, raw, statsCacheTTL).Err(); err != nil {
				logger.From(ctx).Warn("stats cache write failed", slog.String("error", err.Error()))
			}
		}
	}
	return stats, nil
}
