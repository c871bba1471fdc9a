package boardapp

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"

	"postboard/internal/adapters/memory"
	"postboard/internal/core/board"
	"postboard/internal/core/post"
	postPort "postboard/internal/ports/post"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type call struct {
	Op    string
	ID    int
	Start int
	Limit int
	Draft post.Draft
}

// fakeAPI serves posts 1..total and records every call.
type fakeAPI struct {
	mu      sync.Mutex
	total   int
	calls   []call
	failOn  map[string]error
	nextNew int
}

func newFakeAPI(total int) *fakeAPI {
	return &fakeAPI{total: total, failOn: map[string]error{}, nextNew: 101}
}

func (f *fakeAPI) record(c call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.failOn[c.Op]
}

func (f *fakeAPI) fail(op string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn[op] = &postPort.StatusError{Op: op, StatusCode: status}
}

func (f *fakeAPI) heal(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failOn, op)
}

func (f *fakeAPI) callsOf(op string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) List(_ context.Context, start, limit int) ([]post.Post, error) {
	if err := f.record(call{Op: "list", Start: start, Limit: limit}); err != nil {
		return nil, err
	}
	var posts []post.Post
	for id := start + 1; id <= start+limit && id <= f.total; id++ {
		posts = append(posts, post.Post{ID: id, UserID: (id-1)/10 + 1, Title: "title", Body: "body"})
	}
	return posts, nil
}

func (f *fakeAPI) Get(_ context.Context, id int) (*post.Post, error) {
	if err := f.record(call{Op: "get", ID: id}); err != nil {
		return nil, err
	}
	return &post.Post{ID: id, UserID: 1, Title: "remote", Body: "remote"}, nil
}

func (f *fakeAPI) Create(_ context.Context, d post.Draft) (*post.Post, error) {
	if err := f.record(call{Op: "create", Draft: d}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &post.Post{ID: f.nextNew, UserID: d.UserID, Title: d.Title, Body: d.Body}, nil
}

func (f *fakeAPI) Update(_ context.Context, id int, d post.Draft) (*post.Post, error) {
	if err := f.record(call{Op: "update", ID: id, Draft: d}); err != nil {
		return nil, err
	}
	return &post.Post{ID: id, UserID: d.UserID, Title: d.Title, Body: d.Body}, nil
}

func (f *fakeAPI) Delete(_ context.Context, id int) error {
	return f.record(call{Op: "delete", ID: id})
}

type fixture struct {
	svc   *BoardService
	api   *fakeAPI
	store *memory.BoardRepositoryMemory
	id    string
}

func setup(t *testing.T, rule board.Rule) *fixture {
	t.Helper()
	api := newFakeAPI(100)
	store := memory.NewBoardRepositoryMemory()
	svc := NewBoardService(store, api, Options{PageSize: 9, UserID: 1, Rule: rule}, zaptest.NewLogger(t))

	b, err := svc.Open(context.Background(), "")
	require.NoError(t, err)
	return &fixture{svc: svc, api: api, store: store, id: b.ID}
}

func (f *fixture) board(t *testing.T) *board.Board {
	t.Helper()
	b, err := f.store.Get(context.Background(), f.id)
	require.NoError(t, err)
	return b
}

func (f *fixture) loaded(t *testing.T) *fixture {
	t.Helper()
	require.NoError(t, f.svc.LoadMore(context.Background(), f.id))
	return f
}

func ids(b *board.Board) []int {
	var out []int
	for _, p := range b.Cards() {
		out = append(out, p.ID)
	}
	return out
}

func TestOpenReusesKnownBoard(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()

	same, err := f.svc.Open(ctx, f.id)
	require.NoError(t, err)
	assert.Equal(t, f.id, same.ID)

	fresh, err := f.svc.Open(ctx, "unknown")
	require.NoError(t, err)
	assert.NotEqual(t, "unknown", fresh.ID)
	assert.Equal(t, 2, f.store.Len())
}

func TestLoadMoreAdvancesCursorByPageSize(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, f.svc.LoadMore(ctx, f.id))
	}

	var starts []int
	for _, c := range f.api.callsOf("list") {
		starts = append(starts, c.Start)
		assert.Equal(t, 9, c.Limit)
	}
	assert.Equal(t, []int{0, 9, 18}, starts)
	assert.Len(t, f.board(t).Cards(), 27)
	assert.Equal(t, 27, f.board(t).Cursor)
}

func TestLoadMoreFailureStillAdvancesCursor(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()

	f.api.fail("list", http.StatusInternalServerError)
	require.NoError(t, f.svc.LoadMore(ctx, f.id))

	b := f.board(t)
	assert.Empty(t, b.Cards())
	assert.Equal(t, "Error 500", b.Alert)

	f.api.heal("list")
	require.NoError(t, f.svc.LoadMore(ctx, f.id))

	calls := f.api.callsOf("list")
	require.Len(t, calls, 2)
	assert.Equal(t, 9, calls[1].Start)
	assert.Equal(t, []int{10, 11, 12, 13, 14, 15, 16, 17, 18}, ids(f.board(t)))
}

func TestConcurrentLoadsGetDistinctOffsets(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.svc.LoadMore(ctx, f.id))
		}()
	}
	wg.Wait()

	var starts []int
	for _, c := range f.api.callsOf("list") {
		starts = append(starts, c.Start)
	}
	sort.Ints(starts)
	assert.Equal(t, []int{0, 9, 18, 27}, starts)
	assert.Len(t, f.board(t).Cards(), 36)
}

func TestViewPerformsInitialLoadOnce(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()

	b, alert, err := f.svc.View(ctx, f.id)
	require.NoError(t, err)
	assert.Empty(t, alert)
	assert.Len(t, b.Cards(), 9)

	_, _, err = f.svc.View(ctx, f.id)
	require.NoError(t, err)
	assert.Len(t, f.api.callsOf("list"), 1)
}

func TestConcurrentFirstViewsLoadOnePage(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.View(ctx, f.id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lists := f.api.callsOf("list")
	require.Len(t, lists, 1)
	assert.Equal(t, 0, lists[0].Start)
	b := f.board(t)
	assert.Equal(t, 9, b.Cursor)
	assert.Len(t, b.Cards(), 9)
}

func TestViewHandsOutAlertOnce(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()
	f.api.fail("list", http.StatusNotFound)

	_, alert, err := f.svc.View(ctx, f.id)
	require.NoError(t, err)
	assert.Equal(t, "Error 404", alert)

	_, alert, err = f.svc.View(ctx, f.id)
	require.NoError(t, err)
	assert.Empty(t, alert)
}

func TestSnapshotDoesNotConsumeAlert(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()
	f.api.fail("list", http.StatusBadGateway)
	require.NoError(t, f.svc.LoadMore(ctx, f.id))

	b, err := f.svc.Snapshot(ctx, f.id)
	require.NoError(t, err)
	assert.Equal(t, "Error 502", b.Alert)
	assert.Equal(t, "Error 502", f.board(t).Alert)
}

func TestCreateAppendsExactlyOneCard(t *testing.T) {
	f := setup(t, board.RuleStrict).loaded(t)
	ctx := context.Background()
	before := f.board(t).Cards()

	require.NoError(t, f.svc.OpenCreate(ctx, f.id))
	require.NoError(t, f.svc.Submit(ctx, f.id, "new title", "new body"))

	creates := f.api.callsOf("create")
	require.Len(t, creates, 1)
	assert.Equal(t, post.Draft{UserID: 1, Title: "new title", Body: "new body"}, creates[0].Draft)

	b := f.board(t)
	cards := b.Cards()
	require.Len(t, cards, len(before)+1)
	assert.Equal(t, before, cards[:len(before)])
	last := cards[len(cards)-1]
	assert.Equal(t, 101, last.ID)
	assert.Equal(t, "new title", last.Title)
	assert.Equal(t, "new body", last.Body)

	assert.False(t, b.Form.Visible)
	assert.Empty(t, b.Form.Title)
	assert.Empty(t, b.Form.Error)
}

func TestSecondCreateWithSameServerIDIsProvisional(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()

	for _, title := range []string{"one", "two"} {
		require.NoError(t, f.svc.OpenCreate(ctx, f.id))
		require.NoError(t, f.svc.Submit(ctx, f.id, title, "body"))
	}

	assert.Equal(t, []int{101, -1}, ids(f.board(t)))
}

func TestCreateFailureShowsInlineError(t *testing.T) {
	f := setup(t, board.RuleStrict).loaded(t)
	ctx := context.Background()
	f.api.fail("create", http.StatusInternalServerError)

	require.NoError(t, f.svc.OpenCreate(ctx, f.id))
	require.NoError(t, f.svc.Submit(ctx, f.id, "t", "b"))

	b := f.board(t)
	assert.Len(t, b.Cards(), 9)
	assert.True(t, b.Form.Visible)
	assert.Equal(t, "Error 500", b.Form.Error)
	assert.Equal(t, "t", b.Form.Title)
	assert.Empty(t, b.Alert)
}

func TestUpdateChangesOnlyMatchingCard(t *testing.T) {
	f := setup(t, board.RuleStrict).loaded(t)
	ctx := context.Background()

	require.NoError(t, f.svc.OpenEdit(ctx, f.id, 4))
	b := f.board(t)
	assert.Equal(t, board.UpdateFor(4), b.Form.Mode)
	assert.Equal(t, "title", b.Form.Title)

	require.NoError(t, f.svc.Submit(ctx, f.id, "edited", "edited body"))

	updates := f.api.callsOf("update")
	require.Len(t, updates, 1)
	assert.Equal(t, 4, updates[0].ID)
	assert.Equal(t, post.Draft{UserID: 1, Title: "edited", Body: "edited body"}, updates[0].Draft)

	b = f.board(t)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, ids(b))
	for _, p := range b.Cards() {
		if p.ID == 4 {
			assert.Equal(t, "edited", p.Title)
			assert.Equal(t, "edited body", p.Body)
		} else {
			assert.Equal(t, "title", p.Title)
			assert.Equal(t, "body", p.Body)
		}
	}
	assert.False(t, b.Form.Visible)
}

func TestUpdateFailureLeavesCardUntouched(t *testing.T) {
	f := setup(t, board.RuleStrict).loaded(t)
	ctx := context.Background()
	f.api.fail("update", http.StatusInternalServerError)

	require.NoError(t, f.svc.OpenEdit(ctx, f.id, 2))
	require.NoError(t, f.svc.Submit(ctx, f.id, "edited", "edited"))

	b := f.board(t)
	p, _ := b.Get(2)
	assert.Equal(t, "title", p.Title)
	assert.Equal(t, "Error 500", b.Form.Error)
	assert.Equal(t, board.UpdateFor(2), b.Form.Mode)
}

func TestProvisionalPostIsEditedAndDeletedLocally(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()
	for _, title := range []string{"one", "two"} {
		require.NoError(t, f.svc.OpenCreate(ctx, f.id))
		require.NoError(t, f.svc.Submit(ctx, f.id, title, "body"))
	}

	require.NoError(t, f.svc.OpenEdit(ctx, f.id, -1))
	require.NoError(t, f.svc.Submit(ctx, f.id, "two edited", "body"))
	p, ok := f.board(t).Get(-1)
	require.True(t, ok)
	assert.Equal(t, "two edited", p.Title)

	require.NoError(t, f.svc.Delete(ctx, f.id, -1))
	assert.Equal(t, []int{101}, ids(f.board(t)))

	assert.Empty(t, f.api.callsOf("update"))
	assert.Empty(t, f.api.callsOf("delete"))
}

func TestDeleteRemovesOnlyMatchingCard(t *testing.T) {
	f := setup(t, board.RuleStrict).loaded(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, f.id, 5))

	assert.Equal(t, []int{1, 2, 3, 4, 6, 7, 8, 9}, ids(f.board(t)))
	deletes := f.api.callsOf("delete")
	require.Len(t, deletes, 1)
	assert.Equal(t, 5, deletes[0].ID)
}

func TestDeleteFailureRaisesAlert(t *testing.T) {
	f := setup(t, board.RuleStrict).loaded(t)
	ctx := context.Background()
	f.api.fail("delete", http.StatusForbidden)

	require.NoError(t, f.svc.Delete(ctx, f.id, 5))

	b := f.board(t)
	assert.Len(t, b.Cards(), 9)
	assert.Equal(t, "Error 403", b.Alert)
}

func TestDeleteUnknownPost(t *testing.T) {
	f := setup(t, board.RuleStrict).loaded(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, f.id, 77))

	assert.Equal(t, "Post 77 not found", f.board(t).Alert)
	assert.Empty(t, f.api.callsOf("delete"))
}

func TestOpenEditUnknownPostRaisesAlert(t *testing.T) {
	f := setup(t, board.RuleStrict).loaded(t)

	require.NoError(t, f.svc.OpenEdit(context.Background(), f.id, 42))

	b := f.board(t)
	assert.False(t, b.Form.Visible)
	assert.Equal(t, "Post 42 not found", b.Alert)
}

func TestStrictValidationRejectsEitherEmptyField(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()
	require.NoError(t, f.svc.OpenCreate(ctx, f.id))

	require.NoError(t, f.svc.Submit(ctx, f.id, "", "body only"))
	require.NoError(t, f.svc.Submit(ctx, f.id, "   ", "  "))

	b := f.board(t)
	assert.Empty(t, f.api.callsOf("create"))
	assert.Equal(t, board.MsgEmptyFields, b.Form.Error)
	assert.True(t, b.Form.Visible)
	assert.Empty(t, b.Cards())
}

func TestLenientValidationAcceptsOneEmptyField(t *testing.T) {
	f := setup(t, board.RuleLenient)
	ctx := context.Background()

	require.NoError(t, f.svc.OpenCreate(ctx, f.id))
	require.NoError(t, f.svc.Submit(ctx, f.id, "", "body only"))
	assert.Len(t, f.api.callsOf("create"), 1)

	require.NoError(t, f.svc.OpenCreate(ctx, f.id))
	require.NoError(t, f.svc.Submit(ctx, f.id, " ", ""))
	assert.Len(t, f.api.callsOf("create"), 1)
	assert.Equal(t, board.MsgEmptyFields, f.board(t).Form.Error)
}

func TestErrorMessageReplacesPrevious(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()
	require.NoError(t, f.svc.OpenCreate(ctx, f.id))

	require.NoError(t, f.svc.Submit(ctx, f.id, "", ""))
	f.api.fail("create", http.StatusInternalServerError)
	require.NoError(t, f.svc.Submit(ctx, f.id, "t", "b"))

	assert.Equal(t, "Error 500", f.board(t).Form.Error)
}

func TestSubmitWithHiddenFormDoesNothing(t *testing.T) {
	f := setup(t, board.RuleStrict)

	require.NoError(t, f.svc.Submit(context.Background(), f.id, "t", "b"))

	assert.Empty(t, f.api.callsOf("create"))
	assert.Empty(t, f.board(t).Cards())
}

func TestSubmitKeepsTextAsTyped(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()
	require.NoError(t, f.svc.OpenCreate(ctx, f.id))

	title, body := "  Generics <T> in Go", "use <b>bold</b> & x<y>z"
	require.NoError(t, f.svc.Submit(ctx, f.id, title, body))

	creates := f.api.callsOf("create")
	require.Len(t, creates, 1)
	assert.Equal(t, title, creates[0].Draft.Title)
	assert.Equal(t, body, creates[0].Draft.Body)

	cards := f.board(t).Cards()
	require.NotEmpty(t, cards)
	last := cards[len(cards)-1]
	assert.Equal(t, title, last.Title)
	assert.Equal(t, body, last.Body)
}

func TestCloseFormHidesAndClears(t *testing.T) {
	f := setup(t, board.RuleStrict)
	ctx := context.Background()
	require.NoError(t, f.svc.OpenCreate(ctx, f.id))
	require.NoError(t, f.svc.Submit(ctx, f.id, "", ""))

	require.NoError(t, f.svc.CloseForm(ctx, f.id))

	form := f.board(t).Form
	assert.False(t, form.Visible)
	assert.Empty(t, form.Error)
}

func TestInspectLeavesBoardUnchanged(t *testing.T) {
	f := setup(t, board.RuleStrict).loaded(t)
	ctx := context.Background()
	before := f.board(t)

	require.NoError(t, f.svc.Inspect(ctx, f.id, 3))

	after := f.board(t)
	assert.Equal(t, before.Cards(), after.Cards())
	assert.Empty(t, after.Alert)
	gets := f.api.callsOf("get")
	require.Len(t, gets, 1)
	assert.Equal(t, 3, gets[0].ID)
}

func TestInspectFailureRaisesAlert(t *testing.T) {
	f := setup(t, board.RuleStrict).loaded(t)
	f.api.fail("get", http.StatusNotFound)

	require.NoError(t, f.svc.Inspect(context.Background(), f.id, 3))

	assert.Equal(t, "Error 404", f.board(t).Alert)
}

func TestActionsOnUnknownBoardFail(t *testing.T) {
	f := setup(t, board.RuleStrict)

	err := f.svc.LoadMore(context.Background(), "missing")
	assert.Error(t, err)
	assert.Empty(t, f.api.callsOf("list"))
}

func TestAlertText(t *testing.T) {
	assert.Equal(t, "Error 418", AlertText(&postPort.StatusError{Op: "x", StatusCode: 418}))
	assert.Equal(t, "Error: boom", AlertText(errors.New("boom")))
	assert.Equal(t, "Error: dial failed", AlertText(wrap("list posts", errors.New("dial failed"))))
}

func wrap(op string, err error) error {
	return &wrapped{op: op, err: err}
}

type wrapped struct {
	op  string
	err error
}

func (w *wrapped) Error() string { return w.op + ": " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }
