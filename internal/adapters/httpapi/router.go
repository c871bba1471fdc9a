package httpapi

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"postboard/internal/adapters/httpapi/middleware"
	"postboard/internal/core/board"
	"postboard/internal/core/post"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html static/*
var assets embed.FS

// BoardUseCase: inbound port for the page controller.
type BoardUseCase interface {
	Open(ctx context.Context, id string) (*board.Board, error)
	View(ctx context.Context, id string) (*board.Board, string, error)
	Snapshot(ctx context.Context, id string) (*board.Board, error)
	LoadMore(ctx context.Context, id string) error
	OpenCreate(ctx context.Context, id string) error
	OpenEdit(ctx context.Context, id string, postID int) error
	CloseForm(ctx context.Context, id string) error
	Submit(ctx context.Context, id, title, body string) error
	Delete(ctx context.Context, id string, postID int) error
	Inspect(ctx context.Context, id string, postID int) error
}

// PostUseCase: inbound port for the placeholder /posts API.
type PostUseCase interface {
	ListPosts(ctx context.Context, start, limit int) ([]*post.Post, error)
	GetPost(ctx context.Context, id int) (*post.Post, error)
	CreatePost(ctx context.Context, draft post.Draft) (*post.Post, error)
	UpdatePost(ctx context.Context, id int, draft post.Draft) (*post.Post, error)
	DeletePost(ctx context.Context, id int) error
}

// SetupRoutes builds the page server. Only routing happens here; the use
// case is injected.
func SetupRoutes(boardUC BoardUseCase, sessionTTL time.Duration, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(pageTemplates())

	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	r.StaticFS("/static", http.FS(static))
	r.GET("/healthz", health)

	bc := NewBoardController(boardUC)

	page := r.Group("/")
	page.Use(middleware.Logger(logger), middleware.Session(boardUC, sessionTTL, logger))
	{
		page.GET("/", bc.Page)
		page.POST("/load", bc.LoadMore)
		page.POST("/form/new", bc.OpenCreate)
		page.POST("/form", bc.Submit)
		page.POST("/form/close", bc.CloseForm)
		page.GET("/posts/:id", bc.Inspect)
		page.POST("/posts/:id/edit", bc.OpenEdit)
		page.POST("/posts/:id/delete", bc.Delete)
		page.GET("/api/board", bc.Snapshot)
	}
	return r
}

// SetupPlaceholderRoutes builds the local JSONPlaceholder-compatible API.
func SetupPlaceholderRoutes(postUC PostUseCase, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(logger))
	pc := NewPostController(postUC)

	r.GET("/healthz", health)
	r.GET("/posts", pc.ListPosts)
	r.GET("/posts/:id", pc.GetPost)
	r.POST("/posts", pc.CreatePost)
	r.PUT("/posts/:id", pc.UpdatePost)
	r.DELETE("/posts/:id", pc.DeletePost)
	return r
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func pageTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(assets, "templates/*.html"))
}
