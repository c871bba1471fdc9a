package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"postboard/internal/core/board"
	boardPort "postboard/internal/ports/board"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "board:"

// BoardRepositoryRedis stores each board as a JSON string under
// "board:<id>". Every save refreshes the key's TTL, so idle boards expire
// without a sweeper.
type BoardRepositoryRedis struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

var _ boardPort.BoardRepository = (*BoardRepositoryRedis)(nil)

func NewBoardRepositoryRedis(client *redis.Client, ttl time.Duration, logger *zap.Logger) *BoardRepositoryRedis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardRepositoryRedis{
		Client: client,
		TTL:    ttl,
		Logger: logger,
	}
}

func (r *BoardRepositoryRedis) Get(ctx context.Context, id string) (*board.Board, error) {
	raw, err := r.Client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, boardPort.ErrBoardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get board %s: %w", id, err)
	}

	var b board.Board
	if err := json.Unmarshal(raw, &b); err != nil {
		r.Logger.Warn("discarding unreadable board", zap.String("boardID", id), zap.Error(err))
		return nil, boardPort.ErrBoardNotFound
	}
	return &b, nil
}

func (r *BoardRepositoryRedis) Save(ctx context.Context, b *board.Board) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode board %s: %w", b.ID, err)
	}
	if err := r.Client.Set(ctx, keyPrefix+b.ID, raw, r.TTL).Err(); err != nil {
		return fmt.Errorf("save board %s: %w", b.ID, err)
	}
	return nil
}

func (r *BoardRepositoryRedis) Delete(ctx context.Context, id string) error {
	if err := r.Client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete board %s: %w", id, err)
	}
	return nil
}
