package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/lazypower/memoria/internal/journal"
	"go.uber.org/zap"
)

var errUnexpected = errors.New("unexpected failure")

// mutation is one optimistic change against the shown item. apply,
// compensate, and commit run under the controller lock; remote does not.
// A zero mutation (nil remote) aborts without touching state.
type mutation struct {
	apply      func()
	remote     func(ctx context.Context) error
	compensate func()
	commit     func()
	failure    string
}

// mutate runs a guarded mutation. prepare is called under the lock with the
// viewer and shown item and describes the change. Nothing happens while the
// shown item's details are loading. The guard is held until
// the remote call returns or panics. Follow-up effects only apply if the
// session still shows the same item.
func (c *Controller) mutate(ctx context.Context, guard *bool, prepare func(userID string, item *journal.MemoryWithAuthor) mutation) {
	userID, ok := c.viewer.ViewerID()
	if !ok || userID == "" {
		return
	}

	c.mu.Lock()
	if c.item == nil || c.loading || *guard {
		c.mu.Unlock()
		return
	}
	m := prepare(userID, c.item)
	if m.remote == nil {
		c.mu.Unlock()
		return
	}
	*guard = true
	gen := c.itemGen
	memoryID := c.item.ID
	if m.apply != nil {
		m.apply()
	}
	c.mu.Unlock()

	err := call(ctx, m.remote)

	c.mu.Lock()
	*guard = false
	if gen == c.itemGen {
		if err != nil && m.compensate != nil {
			m.compensate()
		}
		if err == nil && m.commit != nil {
			m.commit()
		}
	}
	c.mu.Unlock()

	if err == nil {
		return
	}
	msg := m.failure
	if errors.Is(err, errUnexpected) {
		msg = MsgUnexpected
	}
	c.log.Warn("mutation failed",
		zap.String("memory_id", memoryID),
		zap.String("user_id", userID),
		zap.Error(err),
	)
	c.notify.Error(msg)
}

// call runs fn, converting a panic into errUnexpected.
func call(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errUnexpected, r)
		}
	}()
	return fn(ctx)
}

func indexOfLike(likes []journal.Like, userID string) int {
	for i, l := range likes {
		if l.UserID == userID {
			return i
		}
	}
	return -1
}

// removeLike returns a new slice without likes[i].
func removeLike(likes []journal.Like, i int) []journal.Like {
	out := make([]journal.Like, 0, len(likes)-1)
	out = append(out, likes[:i]...)
	return append(out, likes[i+1:]...)
}

// insertLike returns a new slice with l at position i (clamped to the end).
func insertLike(likes []journal.Like, i int, l journal.Like) []journal.Like {
	if i > len(likes) {
		i = len(likes)
	}
	out := make([]journal.Like, 0, len(likes)+1)
	out = append(out, likes[:i]...)
	out = append(out, l)
	return append(out, likes[i:]...)
}
