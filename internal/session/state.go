package session

import "github.com/lazypower/memoria/internal/journal"

// State is a point-in-time copy of a session, safe to read without locking.
type State struct {
	Open       bool
	Cursor     int
	Len        int
	Item       *journal.MemoryWithAuthor
	Likes      []journal.Like
	Comments   []journal.Comment
	Loading    bool
	Liking     bool
	Commenting bool
}

// HasPrev reports whether Navigate(Prev) would move.
func (s State) HasPrev() bool { return s.Item != nil && s.Cursor > 0 }

// HasNext reports whether Navigate(Next) would move.
func (s State) HasNext() bool { return s.Item != nil && s.Cursor < s.Len-1 }

// LikedBy reports whether userID has a like on the shown item.
func (s State) LikedBy(userID string) bool { return journal.HasLiked(s.Likes, userID) }

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Open:       c.open,
		Cursor:     c.cursor,
		Len:        len(c.list),
		Likes:      append([]journal.Like(nil), c.likes...),
		Comments:   append([]journal.Comment(nil), c.comments...),
		Loading:    c.loading,
		Liking:     c.liking,
		Commenting: c.commenting,
	}
	if c.item != nil {
		it := *c.item
		s.Item = &it
	}
	return s
}
