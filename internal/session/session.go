// Package session implements the interaction session a viewer has while
// paging through a list of memories: which memory is shown, its likes and
// comments, and the optimistic like/comment mutations made on it.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lazypower/memoria/internal/journal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultCloseDelay is how long a closed session keeps its last item before
// the teardown clears it.
const DefaultCloseDelay = 300 * time.Millisecond

// User-facing failure notifications.
const (
	MsgLikeFailed    = "could not like"
	MsgUnlikeFailed  = "could not unlike"
	MsgCommentFailed = "could not post comment"
	MsgUnexpected    = "unexpected error"
)

// Store is the remote data service the session reads and mutates.
// Visibility is enforced by the store; the session never filters.
type Store interface {
	ListLikes(ctx context.Context, memoryID string) ([]journal.Like, error)
	// ListComments returns comments with their authors, oldest first.
	ListComments(ctx context.Context, memoryID string) ([]journal.Comment, error)
	InsertLike(ctx context.Context, userID, memoryID string) error
	DeleteLike(ctx context.Context, userID, memoryID string) error
	// InsertComment returns the stored row with its author.
	InsertComment(ctx context.Context, userID, memoryID, content string) (*journal.Comment, error)
}

// Viewer reports the authenticated user, if any. It is read at call time.
type Viewer interface {
	ViewerID() (string, bool)
}

// ViewerFunc adapts a function to Viewer.
type ViewerFunc func() (string, bool)

func (f ViewerFunc) ViewerID() (string, bool) { return f() }

// Notifier shows non-blocking failure messages to the user.
type Notifier interface {
	Error(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Error(msg string) { f(msg) }

// Direction is a paging direction for Navigate.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Option configures a Controller.
type Option func(*Controller)

// WithCloseDelay overrides DefaultCloseDelay.
func WithCloseDelay(d time.Duration) Option {
	return func(c *Controller) { c.closeDelay = d }
}

// WithLogger sets the logger used for degraded reads and failed mutations.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// Controller owns one interaction session. Create one per application and
// share the pointer; all methods are safe for concurrent use.
type Controller struct {
	store      Store
	viewer     Viewer
	notify     Notifier
	log        *zap.Logger
	closeDelay time.Duration

	mu         sync.Mutex
	open       bool
	list       []journal.MemoryWithAuthor
	cursor     int
	item       *journal.MemoryWithAuthor
	likes      []journal.Like
	comments   []journal.Comment
	liking     bool
	commenting bool

	// loading is set while the details fetch for the shown item is
	// pending. Mutations are refused until it clears.
	loading bool

	// itemGen changes whenever the shown item changes (open, navigate,
	// teardown). Fetch results and mutation follow-ups tagged with an older
	// generation are dropped.
	itemGen    uint64
	closeGen   uint64
	closeTimer *time.Timer
}

// New creates a closed Controller.
func New(store Store, viewer Viewer, notify Notifier, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		viewer:     viewer,
		notify:     notify,
		log:        zap.NewNop(),
		closeDelay: DefaultCloseDelay,
		cursor:     -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open shows list[start] and loads its likes and comments. It returns false
// and leaves the session untouched when start is out of range. A pending
// teardown from an earlier Close is cancelled.
func (c *Controller) Open(ctx context.Context, list []journal.MemoryWithAuthor, start int) bool {
	c.mu.Lock()
	if start < 0 || start >= len(list) {
		c.mu.Unlock()
		return false
	}

	c.cancelTeardown()
	c.list = append([]journal.MemoryWithAuthor(nil), list...)
	c.open = true
	gen, id := c.show(start)
	c.mu.Unlock()

	c.fetchDetails(ctx, gen, id)
	return true
}

// Close marks the session closed immediately and clears its contents after
// the close delay.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.open = false
	c.cancelTeardown()
	gen := c.closeGen
	c.closeTimer = time.AfterFunc(c.closeDelay, func() { c.teardown(gen) })
}

// Navigate moves one item in dir and reloads its metadata. Moving past
// either end of the list does nothing and returns false.
func (c *Controller) Navigate(ctx context.Context, dir Direction) bool {
	c.mu.Lock()
	if !c.open || c.item == nil {
		c.mu.Unlock()
		return false
	}
	next := c.cursor + int(dir)
	if next < 0 || next >= len(c.list) {
		c.mu.Unlock()
		return false
	}
	gen, id := c.show(next)
	c.mu.Unlock()

	c.fetchDetails(ctx, gen, id)
	return true
}

// Reload refetches likes and comments for the shown item.
func (c *Controller) Reload(ctx context.Context) bool {
	c.mu.Lock()
	if !c.open || c.item == nil {
		c.mu.Unlock()
		return false
	}
	gen, id := c.show(c.cursor)
	c.mu.Unlock()

	c.fetchDetails(ctx, gen, id)
	return true
}

// show moves the cursor to idx and resets metadata. Caller holds mu.
func (c *Controller) show(idx int) (uint64, string) {
	c.cursor = idx
	c.item = &c.list[idx]
	c.likes = nil
	c.comments = nil
	c.loading = true
	c.itemGen++
	return c.itemGen, c.item.ID
}

// cancelTeardown stops a scheduled teardown. Caller holds mu.
func (c *Controller) cancelTeardown() {
	c.closeGen++
	if c.closeTimer != nil {
		c.closeTimer.Stop()
		c.closeTimer = nil
	}
}

func (c *Controller) teardown(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A timer that fired after Stop still lands here; only the newest
	// scheduled teardown applies, and never on an open session.
	if gen != c.closeGen || c.open {
		return
	}
	c.list = nil
	c.cursor = -1
	c.item = nil
	c.likes = nil
	c.comments = nil
	c.loading = false
	c.itemGen++
	c.closeTimer = nil
}

// fetchDetails loads likes and comments for memoryID concurrently. Read
// failures leave the collection empty. Results are dropped if the session
// moved to another item in the meantime.
func (c *Controller) fetchDetails(ctx context.Context, gen uint64, memoryID string) {
	var (
		g        errgroup.Group
		likes    []journal.Like
		comments []journal.Comment
	)

	g.Go(func() error {
		l, err := c.store.ListLikes(ctx, memoryID)
		if err != nil {
			c.log.Debug("list likes failed", zap.String("memory_id", memoryID), zap.Error(err))
			return nil
		}
		likes = l
		return nil
	})
	g.Go(func() error {
		cm, err := c.store.ListComments(ctx, memoryID)
		if err != nil {
			c.log.Debug("list comments failed", zap.String("memory_id", memoryID), zap.Error(err))
			return nil
		}
		comments = cm
		return nil
	})
	g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.itemGen {
		c.log.Debug("dropping stale details", zap.String("memory_id", memoryID))
		return
	}
	c.likes = likes
	c.comments = comments
	c.loading = false
}

// ToggleLike likes or unlikes the shown memory as the current viewer. The
// local like list changes before the remote call and is restored if the
// call fails. It does nothing without a shown item or a viewer, while the
// item's likes are still loading, or while a previous like toggle is still
// in flight.
func (c *Controller) ToggleLike(ctx context.Context) {
	c.mutate(ctx, &c.liking, func(userID string, item *journal.MemoryWithAuthor) mutation {
		memoryID := item.ID

		if idx := indexOfLike(c.likes, userID); idx >= 0 {
			removed := c.likes[idx]
			return mutation{
				apply: func() { c.likes = removeLike(c.likes, idx) },
				remote: func(ctx context.Context) error {
					return c.store.DeleteLike(ctx, userID, memoryID)
				},
				compensate: func() {
					if indexOfLike(c.likes, userID) < 0 {
						c.likes = insertLike(c.likes, idx, removed)
					}
				},
				failure: MsgUnlikeFailed,
			}
		}

		added := journal.Like{UserID: userID, MemoryID: memoryID, CreatedAt: time.Now()}
		return mutation{
			apply: func() { c.likes = append(c.likes, added) },
			remote: func(ctx context.Context) error {
				return c.store.InsertLike(ctx, userID, memoryID)
			},
			compensate: func() {
				if i := indexOfLike(c.likes, userID); i >= 0 {
					c.likes = removeLike(c.likes, i)
				}
			},
			failure: MsgLikeFailed,
		}
	})
}

// PostComment adds a comment to the shown memory. Content is trimmed and
// blank content is ignored. Nothing is shown until the store confirms; the
// stored row is then appended as the newest comment.
func (c *Controller) PostComment(ctx context.Context, content string) {
	content = strings.TrimSpace(content)
	c.mutate(ctx, &c.commenting, func(userID string, item *journal.MemoryWithAuthor) mutation {
		if content == "" {
			return mutation{}
		}
		memoryID := item.ID

		var created *journal.Comment
		return mutation{
			remote: func(ctx context.Context) error {
				cm, err := c.store.InsertComment(ctx, userID, memoryID, content)
				if err != nil {
					return err
				}
				created = cm
				return nil
			},
			commit: func() {
				if created != nil {
					c.comments = append(c.comments, *created)
				}
			},
			failure: MsgCommentFailed,
		}
	})
}
