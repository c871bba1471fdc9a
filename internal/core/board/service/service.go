package boardapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postboard/internal/core/board"
	"postboard/internal/core/post"
	boardPort "postboard/internal/ports/board"
	postPort "postboard/internal/ports/post"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// Options configures a BoardService.
type Options struct {
	PageSize int
	UserID   int
	Rule     board.Rule
}

// BoardService runs the page actions of one visitor against the remote
// API and records the outcome on the visitor's board.
type BoardService struct {
	BoardRepository boardPort.BoardRepository
	PostAPI         postPort.PostAPI
	Options         Options
	Logger          *zap.Logger

	locks *keyedMutex
	now   func() time.Time
}

func NewBoardService(boardRepo boardPort.BoardRepository, api postPort.PostAPI, opts Options, logger *zap.Logger) *BoardService {
	if opts.PageSize <= 0 {
		opts.PageSize = board.DefaultPageSize
	}
	if opts.UserID <= 0 {
		opts.UserID = 1
	}
	if opts.Rule == "" {
		opts.Rule = board.RuleStrict
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardService{
		BoardRepository: boardRepo,
		PostAPI:         api,
		Options:         opts,
		Logger:          logger,
		locks:           newKeyedMutex(),
		now:             time.Now,
	}
}

// Open returns the board with the given id, creating a fresh one when the
// id is empty or unknown.
func (s *BoardService) Open(ctx context.Context, id string) (*board.Board, error) {
	if id != "" {
		b, err := s.BoardRepository.Get(ctx, id)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, boardPort.ErrBoardNotFound) {
			return nil, fmt.Errorf("open board: %w", err)
		}
	}

	newID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("open board: %w", err)
	}
	b := board.New(newID.String(), s.Options.PageSize)
	if err := s.BoardRepository.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("open board: %w", err)
	}
	s.Logger.Info("board created", zap.String("boardID", b.ID))
	return b, nil
}

// View returns the board for rendering. A board that never loaded performs
// its initial load first; the check and the page reservation happen under
// the board's lock, so concurrent first renders load one page. The pending
// alert is handed out once.
func (s *BoardService) View(ctx context.Context, id string) (*board.Board, string, error) {
	var (
		start, limit int
		initial      bool
	)
	if _, err := s.mutate(ctx, id, func(b *board.Board) error {
		if !b.Loaded {
			start, limit = b.ReservePage()
			initial = true
		}
		return nil
	}); err != nil {
		return nil, "", fmt.Errorf("view board: %w", err)
	}
	if initial {
		if err := s.fetchPage(ctx, id, start, limit); err != nil {
			return nil, "", fmt.Errorf("view board: %w", err)
		}
	}

	var alert string
	b, err := s.mutate(ctx, id, func(b *board.Board) error {
		alert = b.TakeAlert()
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("view board: %w", err)
	}
	return b, alert, nil
}

// Snapshot returns the board as stored, without loading or consuming the
// alert.
func (s *BoardService) Snapshot(ctx context.Context, id string) (*board.Board, error) {
	b, err := s.BoardRepository.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("snapshot board: %w", err)
	}
	return b, nil
}

// LoadMore fetches the next page and appends it. The cursor is reserved
// before the request, so it advances even when the request fails.
func (s *BoardService) LoadMore(ctx context.Context, id string) error {
	var start, limit int
	if _, err := s.mutate(ctx, id, func(b *board.Board) error {
		start, limit = b.ReservePage()
		return nil
	}); err != nil {
		return fmt.Errorf("load more: %w", err)
	}
	if err := s.fetchPage(ctx, id, start, limit); err != nil {
		return fmt.Errorf("load more: %w", err)
	}
	return nil
}

// fetchPage requests an already reserved page and records the outcome.
func (s *BoardService) fetchPage(ctx context.Context, id string, start, limit int) error {
	posts, callErr := s.PostAPI.List(ctx, start, limit)
	if callErr != nil {
		s.Logger.Warn("load more failed", zap.String("boardID", id), zap.Int("start", start), zap.Error(callErr))
	} else {
		s.Logger.Info("page loaded", zap.String("boardID", id), zap.Int("start", start), zap.Int("count", len(posts)))
	}

	_, err := s.mutate(ctx, id, func(b *board.Board) error {
		if callErr != nil {
			b.Alert = AlertText(callErr)
			return nil
		}
		b.Append(posts)
		return nil
	})
	return err
}

func (s *BoardService) OpenCreate(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, id, func(b *board.Board) error {
		b.OpenCreate()
		return nil
	})
	return err
}

// OpenEdit shows the form pre-filled with the post's current text. An
// unknown post id raises an alert instead.
func (s *BoardService) OpenEdit(ctx context.Context, id string, postID int) error {
	_, err := s.mutate(ctx, id, func(b *board.Board) error {
		if err := b.OpenEdit(postID); err != nil {
			b.Alert = notFoundText(postID)
		}
		return nil
	})
	return err
}

func (s *BoardService) CloseForm(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, id, func(b *board.Board) error {
		b.CloseForm()
		return nil
	})
	return err
}

// Submit validates the form fields and runs the request selected by the
// form's current mode. The text is sent and stored exactly as submitted.
func (s *BoardService) Submit(ctx context.Context, id, title, body string) error {
	var (
		mode     board.Mode
		target   post.Post
		proceed  bool
		provOnly bool
	)
	if _, err := s.mutate(ctx, id, func(b *board.Board) error {
		if !b.Form.Visible {
			return nil
		}
		mode = b.Form.Mode
		if !s.Options.Rule.Validate(title, body) {
			b.FailForm(title, body, board.MsgEmptyFields)
			return nil
		}
		if mode.IsUpdate() {
			p, ok := b.Get(mode.PostID)
			if !ok {
				b.FailForm(title, body, notFoundText(mode.PostID))
				return nil
			}
			target = p
			provOnly = p.Provisional()
		}
		proceed = true
		return nil
	}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if !proceed {
		return nil
	}

	var (
		created *post.Post
		callErr error
	)
	switch {
	case !mode.IsUpdate():
		created, callErr = s.PostAPI.Create(ctx, post.Draft{UserID: s.Options.UserID, Title: title, Body: body})
	case !provOnly:
		_, callErr = s.PostAPI.Update(ctx, target.ID, post.Draft{UserID: target.UserID, Title: title, Body: body})
	}
	if callErr != nil {
		s.Logger.Warn("form request failed", zap.String("boardID", id), zap.Stringer("mode", mode), zap.Error(callErr))
	}

	_, err := s.mutate(ctx, id, func(b *board.Board) error {
		if callErr != nil {
			b.FailForm(title, body, AlertText(callErr))
			return nil
		}
		if mode.IsUpdate() {
			if err := b.Patch(target.ID, title, body); err != nil {
				s.Logger.Info("updated post left the board", zap.Int("postID", target.ID))
			}
		} else {
			p := post.Post{UserID: s.Options.UserID, Title: title, Body: body}
			if created != nil {
				p.ID = created.ID
			}
			p = b.AddCreated(p)
			s.Logger.Info("post created", zap.String("boardID", id), zap.Int("postID", p.ID))
		}
		b.CloseForm()
		return nil
	})
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}

// Delete removes the post remotely and then from the board. Provisional
// posts only exist locally and are removed without a request.
func (s *BoardService) Delete(ctx context.Context, id string, postID int) error {
	var (
		target  post.Post
		present bool
	)
	if _, err := s.mutate(ctx, id, func(b *board.Board) error {
		target, present = b.Get(postID)
		if !present {
			b.Alert = notFoundText(postID)
			return nil
		}
		if target.Provisional() {
			return b.Remove(postID)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if !present || target.Provisional() {
		return nil
	}

	callErr := s.PostAPI.Delete(ctx, postID)
	if callErr != nil {
		s.Logger.Warn("delete failed", zap.String("boardID", id), zap.Int("postID", postID), zap.Error(callErr))
	}

	_, err := s.mutate(ctx, id, func(b *board.Board) error {
		if callErr != nil {
			b.Alert = AlertText(callErr)
			return nil
		}
		if err := b.Remove(postID); err != nil {
			s.Logger.Info("deleted post already gone", zap.Int("postID", postID))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Inspect fetches a single post. The board is not changed on success.
func (s *BoardService) Inspect(ctx context.Context, id string, postID int) error {
	p, callErr := s.PostAPI.Get(ctx, postID)
	if callErr == nil {
		s.Logger.Debug("post fetched", zap.String("boardID", id), zap.Int("postID", p.ID), zap.String("title", p.Title))
		return nil
	}

	s.Logger.Warn("fetch post failed", zap.String("boardID", id), zap.Int("postID", postID), zap.Error(callErr))
	_, err := s.mutate(ctx, id, func(b *board.Board) error {
		b.Alert = AlertText(callErr)
		return nil
	})
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	return nil
}

// mutate loads the board, applies fn and saves it under the board's lock.
func (s *BoardService) mutate(ctx context.Context, id string, fn func(b *board.Board) error) (*board.Board, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	b, err := s.BoardRepository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	b.Touch(s.now())
	if err := s.BoardRepository.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// AlertText turns a request failure into the message shown to the user.
func AlertText(err error) string {
	var se *postPort.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("Error %d", se.StatusCode)
	}
	if u := errors.Unwrap(err); u != nil {
		err = u
	}
	return "Error: " + err.Error()
}

func notFoundText(postID int) string {
	return fmt.Sprintf("Post %d not found", postID)
}
