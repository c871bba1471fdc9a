package httpapi

import (
	"net/http"
	"strconv"

	"postboard/internal/adapters/httpapi/middleware"
	"postboard/internal/core/board"

	"github.com/gin-gonic/gin"
)

type BoardController struct{ bc BoardUseCase }

func NewBoardController(bc BoardUseCase) *BoardController { return &BoardController{bc: bc} }

type cardView struct {
	ID      int
	IDLabel string
	UserID  int
	Title   string
	Body    string
	Local   bool
}

func cardViews(b *board.Board) []cardView {
	cards := b.Cards()
	views := make([]cardView, 0, len(cards))
	for _, p := range cards {
		label := strconv.Itoa(p.ID)
		if p.Provisional() {
			label = "NEW"
		}
		views = append(views, cardView{
			ID:      p.ID,
			IDLabel: label,
			UserID:  p.UserID,
			Title:   p.Title,
			Body:    p.Body,
			Local:   p.Provisional(),
		})
	}
	return views
}

func (ctl *BoardController) Page(c *gin.Context) {
	b, alert, err := ctl.bc.View(c.Request.Context(), boardID(c))
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	c.HTML(http.StatusOK, "page.html", gin.H{
		"Cards": cardViews(b),
		"Form":  b.Form,
		"Alert": alert,
	})
}

func (ctl *BoardController) Snapshot(c *gin.Context) {
	b, err := ctl.bc.Snapshot(c.Request.Context(), boardID(c))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read board"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       b.ID,
		"cursor":   b.Cursor,
		"pageSize": b.PageSize,
		"cards":    b.Cards(),
		"form":     b.Form,
		"alert":    b.Alert,
	})
}

func (ctl *BoardController) LoadMore(c *gin.Context) {
	ctl.finish(c, ctl.bc.LoadMore(c.Request.Context(), boardID(c)))
}

func (ctl *BoardController) OpenCreate(c *gin.Context) {
	ctl.finish(c, ctl.bc.OpenCreate(c.Request.Context(), boardID(c)))
}

func (ctl *BoardController) CloseForm(c *gin.Context) {
	ctl.finish(c, ctl.bc.CloseForm(c.Request.Context(), boardID(c)))
}

func (ctl *BoardController) Submit(c *gin.Context) {
	var req struct {
		Title string `form:"title"`
		Body  string `form:"body"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "invalid form")
		return
	}
	ctl.finish(c, ctl.bc.Submit(c.Request.Context(), boardID(c), req.Title, req.Body))
}

func (ctl *BoardController) OpenEdit(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	ctl.finish(c, ctl.bc.OpenEdit(c.Request.Context(), boardID(c), id))
}

func (ctl *BoardController) Delete(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	ctl.finish(c, ctl.bc.Delete(c.Request.Context(), boardID(c), id))
}

func (ctl *BoardController) Inspect(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	ctl.finish(c, ctl.bc.Inspect(c.Request.Context(), boardID(c), id))
}

// finish redirects back to the page. Outcomes the user should see are on
// the board already; err only reports infrastructure failures.
func (ctl *BoardController) finish(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func boardID(c *gin.Context) string {
	return c.GetString(middleware.BoardIDKey)
}

func postID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid post id")
		return 0, false
	}
	return id, true
}
