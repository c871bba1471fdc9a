package board

import (
	"context"
	"errors"
	"time"

	"postboard/internal/core/board"
)

var ErrBoardNotFound = errors.New("board not found")

// BoardRepository persists per-session boards.
type BoardRepository interface {
	Get(ctx context.Context, id string) (*board.Board, error)
	Save(ctx context.Context, b *board.Board) error
	Delete(ctx context.Context, id string) error
}

// Sweeper is implemented by stores that need idle boards removed
// explicitly.
type Sweeper interface {
	Sweep(ctx context.Context, idleSince time.Time) (int, error)
}
