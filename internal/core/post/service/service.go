package postapp

import (
	"context"
	"fmt"

	postEntity "postboard/internal/core/post"
	postPort "postboard/internal/ports/post"

	"go.uber.org/zap"
)

// PostService backs the placeholder /posts API.
type PostService struct {
	PostRepository postPort.PostRepository
	Logger         *zap.Logger
}

func NewPostService(postRepo postPort.PostRepository, logger *zap.Logger) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostService{
		PostRepository: postRepo,
		Logger:         logger,
	}
}

func (s *PostService) ListPosts(ctx context.Context, start, limit int) ([]*postEntity.Post, error) {
	if start < 0 {
		start = 0
	}
	posts, err := s.PostRepository.FindRange(ctx, start, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, id int) (*postEntity.Post, error) {
	p, err := s.PostRepository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return p, nil
}

func (s *PostService) CreatePost(ctx context.Context, draft postEntity.Draft) (*postEntity.Post, error) {
	p := &postEntity.Post{
		UserID: draft.UserID,
		Title:  draft.Title,
		Body:   draft.Body,
	}
	created, err := s.PostRepository.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.Logger.Info("post stored", zap.Int("postID", created.ID), zap.Int("userID", created.UserID))
	return created, nil
}

func (s *PostService) UpdatePost(ctx context.Context, id int, draft postEntity.Draft) (*postEntity.Post, error) {
	updated, err := s.PostRepository.Update(ctx, &postEntity.Post{
		ID:     id,
		UserID: draft.UserID,
		Title:  draft.Title,
		Body:   draft.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	return updated, nil
}

func (s *PostService) DeletePost(ctx context.Context, id int) error {
	if err := s.PostRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	s.Logger.Info("post removed", zap.Int("postID", id))
	return nil
}

// Seed fills an empty store with n generated posts, ten per author.
func (s *PostService) Seed(ctx context.Context, n int) (int, error) {
	count, err := s.PostRepository.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed posts: %w", err)
	}
	if count > 0 || n <= 0 {
		return 0, nil
	}
	for i := 1; i <= n; i++ {
		_, err := s.PostRepository.Create(ctx, &postEntity.Post{
			UserID: (i-1)/10 + 1,
			Title:  fmt.Sprintf("post %d", i),
			Body:   fmt.Sprintf("body of post %d", i),
		})
		if err != nil {
			return i - 1, fmt.Errorf("seed posts: %w", err)
		}
	}
	s.Logger.Info("placeholder posts seeded", zap.Int("count", n))
	return n, nil
}
