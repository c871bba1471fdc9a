package memory

import (
	"context"
	"sync"
	"time"

	"postboard/internal/core/board"
	boardPort "postboard/internal/ports/board"
)

// BoardRepositoryMemory keeps boards in process memory. Stored boards are
// copies, so callers never share state through the repository.
type BoardRepositoryMemory struct {
	mu     sync.RWMutex
	boards map[string]*board.Board
}

var (
	_ boardPort.BoardRepository = (*BoardRepositoryMemory)(nil)
	_ boardPort.Sweeper         = (*BoardRepositoryMemory)(nil)
)

func NewBoardRepositoryMemory() *BoardRepositoryMemory {
	return &BoardRepositoryMemory{boards: make(map[string]*board.Board)}
}

func (repo *BoardRepositoryMemory) Get(_ context.Context, id string) (*board.Board, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	b, ok := repo.boards[id]
	if !ok {
		return nil, boardPort.ErrBoardNotFound
	}
	return b.Clone(), nil
}

func (repo *BoardRepositoryMemory) Save(_ context.Context, b *board.Board) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.boards[b.ID] = b.Clone()
	return nil
}

func (repo *BoardRepositoryMemory) Delete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.boards, id)
	return nil
}

// Sweep removes boards not updated since idleSince.
func (repo *BoardRepositoryMemory) Sweep(_ context.Context, idleSince time.Time) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	removed := 0
	for id, b := range repo.boards {
		if b.UpdatedAt.Before(idleSince) {
			delete(repo.boards, id)
			removed++
		}
	}
	return removed, nil
}

func (repo *BoardRepositoryMemory) Len() int {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	return len(repo.boards)
}
