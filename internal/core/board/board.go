package board

import (
	"errors"
	"fmt"
	"time"

	"postboard/internal/core/post"
)

// DefaultPageSize is the number of posts requested per "load more".
const DefaultPageSize = 9

var ErrPostNotFound = errors.New("post not found on board")

// ModeKind selects what a form submission does.
type ModeKind int

const (
	ModeCreate ModeKind = iota
	ModeUpdate
)

// Mode is either Create or UpdateFor(id).
type Mode struct {
	Kind   ModeKind `json:"kind"`
	PostID int      `json:"postId,omitempty"`
}

func CreateMode() Mode { return Mode{Kind: ModeCreate} }

func UpdateFor(id int) Mode { return Mode{Kind: ModeUpdate, PostID: id} }

func (m Mode) IsUpdate() bool { return m.Kind == ModeUpdate }

func (m Mode) String() string {
	if m.IsUpdate() {
		return fmt.Sprintf("update(%d)", m.PostID)
	}
	return "create"
}

// Form is the state of the shared modal form.
type Form struct {
	Visible bool   `json:"visible"`
	Mode    Mode   `json:"mode"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Error   string `json:"error,omitempty"`
}

// Board is the page state of one visitor: posts in display order, the page
// cursor, the modal form and a pending alert.
type Board struct {
	ID          string            `json:"id"`
	Cursor      int               `json:"cursor"`
	PageSize    int               `json:"pageSize"`
	Loaded      bool              `json:"loaded"`
	Order       []int             `json:"order"`
	Posts       map[int]post.Post `json:"posts"`
	Form        Form              `json:"form"`
	Alert       string            `json:"alert,omitempty"`
	NextLocalID int               `json:"nextLocalId"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func New(id string, pageSize int) *Board {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Board{
		ID:          id,
		PageSize:    pageSize,
		Posts:       make(map[int]post.Post),
		NextLocalID: -1,
		UpdatedAt:   time.Now(),
	}
}

// ReservePage returns the offset for the next page and advances the cursor
// by one page. The cursor moves whether or not the request later succeeds.
func (b *Board) ReservePage() (start, limit int) {
	start = b.Cursor
	b.Cursor += b.PageSize
	b.Loaded = true
	return start, b.PageSize
}

// Put appends p, or replaces the stored post in place when its id is
// already on the board.
func (b *Board) Put(p post.Post) {
	if b.Posts == nil {
		b.Posts = make(map[int]post.Post)
	}
	if _, ok := b.Posts[p.ID]; !ok {
		b.Order = append(b.Order, p.ID)
	}
	b.Posts[p.ID] = p
}

func (b *Board) Append(posts []post.Post) {
	for _, p := range posts {
		b.Put(p)
	}
}

// AddCreated appends a post returned by a create call. When the id is not
// usable (zero, or already on the board) a provisional id is assigned.
func (b *Board) AddCreated(p post.Post) post.Post {
	if _, taken := b.Posts[p.ID]; p.ID <= 0 || taken {
		p.ID = b.NextLocalID
		b.NextLocalID--
	}
	b.Put(p)
	return p
}

func (b *Board) Get(id int) (post.Post, bool) {
	p, ok := b.Posts[id]
	return p, ok
}

// Patch changes title and body of the post with the given id.
func (b *Board) Patch(id int, title, body string) error {
	p, ok := b.Posts[id]
	if !ok {
		return fmt.Errorf("patch %d: %w", id, ErrPostNotFound)
	}
	p.Title = title
	p.Body = body
	b.Posts[id] = p
	return nil
}

func (b *Board) Remove(id int) error {
	if _, ok := b.Posts[id]; !ok {
		return fmt.Errorf("remove %d: %w", id, ErrPostNotFound)
	}
	delete(b.Posts, id)
	for i, v := range b.Order {
		if v == id {
			b.Order = append(b.Order[:i], b.Order[i+1:]...)
			break
		}
	}
	return nil
}

// Cards returns the posts in display order.
func (b *Board) Cards() []post.Post {
	cards := make([]post.Post, 0, len(b.Order))
	for _, id := range b.Order {
		if p, ok := b.Posts[id]; ok {
			cards = append(cards, p)
		}
	}
	return cards
}

func (b *Board) OpenCreate() {
	b.Form = Form{Visible: true, Mode: CreateMode()}
}

func (b *Board) OpenEdit(id int) error {
	p, ok := b.Posts[id]
	if !ok {
		return fmt.Errorf("edit %d: %w", id, ErrPostNotFound)
	}
	b.Form = Form{Visible: true, Mode: UpdateFor(id), Title: p.Title, Body: p.Body}
	return nil
}

// CloseForm hides the form. The mode is kept so reopening is explicit.
func (b *Board) CloseForm() {
	b.Form = Form{Mode: b.Form.Mode}
}

// FailForm keeps the submitted values and shows msg as the only error.
func (b *Board) FailForm(title, body, msg string) {
	b.Form.Visible = true
	b.Form.Title = title
	b.Form.Body = body
	b.Form.Error = msg
}

// TakeAlert returns the pending alert and clears it.
func (b *Board) TakeAlert() string {
	a := b.Alert
	b.Alert = ""
	return a
}

func (b *Board) Touch(now time.Time) {
	b.UpdatedAt = now
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	c := *b
	c.Order = append([]int(nil), b.Order...)
	c.Posts = make(map[int]post.Post, len(b.Posts))
	for id, p := range b.Posts {
		c.Posts[id] = p
	}
	return &c
}
