package post

import (
	"context"
	"errors"
	"fmt"

	"postboard/internal/core/post"
)

var ErrPostNotFound = errors.New("post not found")

// StatusError is returned when the remote answers with a status that does
// not count as success for the operation.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

// PostAPI is the outbound port to the remote collection endpoint.
type PostAPI interface {
	List(ctx context.Context, start, limit int) ([]post.Post, error)
	Get(ctx context.Context, id int) (*post.Post, error)
	Create(ctx context.Context, draft post.Draft) (*post.Post, error)
	Update(ctx context.Context, id int, draft post.Draft) (*post.Post, error)
	Delete(ctx context.Context, id int) error
}

// PostRepository stores posts for the placeholder API.
type PostRepository interface {
	Create(ctx context.Context, p *post.Post) (*post.Post, error)
	FindByID(ctx context.Context, id int) (*post.Post, error)
	FindRange(ctx context.Context, start, limit int) ([]*post.Post, error)
	Update(ctx context.Context, p *post.Post) (*post.Post, error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int64, error)
}
