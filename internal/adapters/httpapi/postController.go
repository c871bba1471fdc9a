package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"postboard/internal/core/post"
	postPort "postboard/internal/ports/post"

	"github.com/gin-gonic/gin"
)

// PostController serves the placeholder /posts API with the same shapes
// and status codes as JSONPlaceholder.
type PostController struct{ pc PostUseCase }

func NewPostController(pc PostUseCase) *PostController { return &PostController{pc: pc} }

func (ctl *PostController) ListPosts(c *gin.Context) {
	start, err := strconv.Atoi(c.DefaultQuery("_start", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid _start"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("_limit", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid _limit"})
		return
	}

	posts, err := ctl.pc.ListPosts(c.Request.Context(), start, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list posts"})
		return
	}
	if posts == nil {
		posts = []*post.Post{}
	}
	c.JSON(http.StatusOK, posts)
}

func (ctl *PostController) GetPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := ctl.pc.GetPost(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "could not fetch post")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (ctl *PostController) CreatePost(c *gin.Context) {
	var req post.Draft
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	res, err := ctl.pc.CreatePost(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create post"})
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (ctl *PostController) UpdatePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req post.Draft
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	res, err := ctl.pc.UpdatePost(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err, "could not update post")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *PostController) DeletePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := ctl.pc.DeletePost(c.Request.Context(), id); err != nil {
		writeError(c, err, "could not delete post")
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error, msg string) {
	if errors.Is(err, postPort.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
