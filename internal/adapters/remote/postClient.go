package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"postboard/internal/core/post"
	postPort "postboard/internal/ports/post"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// PostClient implements postPort.PostAPI over HTTP.
type PostClient struct {
	BaseURL string
	Client  *http.Client
	Logger  *zap.Logger
}

var _ postPort.PostAPI = (*PostClient)(nil)

func NewPostClient(baseURL string, timeout time.Duration, logger *zap.Logger) *PostClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

func (c *PostClient) List(ctx context.Context, start, limit int) ([]post.Post, error) {
	q := url.Values{}
	q.Set("_start", strconv.Itoa(start))
	q.Set("_limit", strconv.Itoa(limit))

	var posts []post.Post
	if err := c.do(ctx, "list posts", http.MethodGet, "/posts?"+q.Encode(), nil, okStatus, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *PostClient) Get(ctx context.Context, id int) (*post.Post, error) {
	var p post.Post
	if err := c.do(ctx, "get post", http.MethodGet, postPath(id), nil, okStatus, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create succeeds only on 201 Created.
func (c *PostClient) Create(ctx context.Context, draft post.Draft) (*post.Post, error) {
	var p post.Post
	if err := c.do(ctx, "create post", http.MethodPost, "/posts", draft, exactStatus(http.StatusCreated), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update succeeds only on 200 OK.
func (c *PostClient) Update(ctx context.Context, id int, draft post.Draft) (*post.Post, error) {
	var p post.Post
	if err := c.do(ctx, "update post", http.MethodPut, postPath(id), draft, exactStatus(http.StatusOK), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete succeeds only on 200 OK.
func (c *PostClient) Delete(ctx context.Context, id int) error {
	return c.do(ctx, "delete post", http.MethodDelete, postPath(id), nil, exactStatus(http.StatusOK), nil)
}

func postPath(id int) string {
	return "/posts/" + strconv.Itoa(id)
}

func okStatus(code int) bool { return code >= 200 && code < 300 }

func exactStatus(want int) func(int) bool {
	return func(code int) bool { return code == want }
}

func (c *PostClient) do(ctx context.Context, op, method, path string, in any, ok func(int) bool, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	started := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		c.Logger.Warn("remote request failed", zap.String("op", op), zap.String("url", req.URL.String()), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.Logger.Debug("remote request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(started)),
	)

	if !ok(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &postPort.StatusError{Op: op, StatusCode: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
