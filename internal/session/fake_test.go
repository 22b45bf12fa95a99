package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lazypower/memoria/internal/journal"
)

// fakeStore is an in-memory Store that records calls. Gates let a test hold
// a call open until it is released.
type fakeStore struct {
	mu       sync.Mutex
	likes    map[string][]journal.Like
	comments map[string][]journal.Comment
	calls    []string

	listErr    error
	insertErr  error
	deleteErr  error
	commentErr error
	panicLike  bool

	likesGate  map[string]chan struct{}
	insertGate chan struct{}
	entered    chan string
	nextID     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		likes:     make(map[string][]journal.Like),
		comments:  make(map[string][]journal.Comment),
		likesGate: make(map[string]chan struct{}),
		entered:   make(chan string, 16),
	}
}

func (f *fakeStore) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStore) count(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeStore) ListLikes(ctx context.Context, memoryID string) ([]journal.Like, error) {
	f.record("likes:" + memoryID)
	f.mu.Lock()
	gate := f.likesGate[memoryID]
	f.mu.Unlock()
	if gate != nil {
		f.entered <- "likes:" + memoryID
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]journal.Like(nil), f.likes[memoryID]...), nil
}

func (f *fakeStore) ListComments(ctx context.Context, memoryID string) ([]journal.Comment, error) {
	f.record("comments:" + memoryID)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]journal.Comment(nil), f.comments[memoryID]...), nil
}

func (f *fakeStore) InsertLike(ctx context.Context, userID, memoryID string) error {
	f.record("insert-like:" + memoryID)
	if f.insertGate != nil {
		f.entered <- "insert-like:" + memoryID
		<-f.insertGate
	}
	if f.panicLike {
		panic("boom")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.likes[memoryID] = append(f.likes[memoryID], journal.Like{UserID: userID, MemoryID: memoryID})
	return nil
}

func (f *fakeStore) DeleteLike(ctx context.Context, userID, memoryID string) error {
	f.record("delete-like:" + memoryID)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	var kept []journal.Like
	for _, l := range f.likes[memoryID] {
		if l.UserID != userID {
			kept = append(kept, l)
		}
	}
	f.likes[memoryID] = kept
	return nil
}

func (f *fakeStore) InsertComment(ctx context.Context, userID, memoryID, content string) (*journal.Comment, error) {
	f.record("insert-comment:" + memoryID + ":" + content)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commentErr != nil {
		return nil, f.commentErr
	}
	f.nextID++
	c := journal.Comment{
		ID:        fmt.Sprintf("c%d", f.nextID),
		UserID:    userID,
		MemoryID:  memoryID,
		Content:   content,
		CreatedAt: time.Now(),
		Author:    &journal.Profile{ID: userID, Username: userID},
	}
	f.comments[memoryID] = append(f.comments[memoryID], c)
	return &c, nil
}

// notes collects notifications.
type notes struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notes) Error(msg string) {
	n.mu.Lock()
	n.msgs = append(n.msgs, msg)
	n.mu.Unlock()
}

func (n *notes) All() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

func viewer(id string) Viewer {
	return ViewerFunc(func() (string, bool) { return id, id != "" })
}

func memories(ids ...string) []journal.MemoryWithAuthor {
	out := make([]journal.MemoryWithAuthor, len(ids))
	for i, id := range ids {
		out[i] = journal.MemoryWithAuthor{
			Memory: journal.Memory{ID: id, UserID: "author", Title: "memory " + id},
			Author: &journal.Profile{ID: "author", Username: "author"},
		}
	}
	return out
}

// eventually polls cond until it holds or the deadline passes.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
