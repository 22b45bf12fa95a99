package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/lazypower/memoria/internal/journal"
)

// The methods in this file satisfy session.Store. The userID arguments are
// ignored: the server acts as the token's subject.

func memoryPath(memoryID, sub string) string {
	return "/api/memories/" + url.PathEscape(memoryID) + "/" + sub
}

func (c *Client) ListLikes(ctx context.Context, memoryID string) ([]journal.Like, error) {
	var out []journal.Like
	if err := c.do(ctx, http.MethodGet, memoryPath(memoryID, "likes"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListComments(ctx context.Context, memoryID string) ([]journal.Comment, error) {
	var out []journal.Comment
	if err := c.do(ctx, http.MethodGet, memoryPath(memoryID, "comments"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) InsertLike(ctx context.Context, _, memoryID string) error {
	return c.do(ctx, http.MethodPost, memoryPath(memoryID, "likes"), nil, nil)
}

func (c *Client) DeleteLike(ctx context.Context, _, memoryID string) error {
	return c.do(ctx, http.MethodDelete, memoryPath(memoryID, "likes"), nil, nil)
}

func (c *Client) InsertComment(ctx context.Context, _, memoryID, content string) (*journal.Comment, error) {
	var out journal.Comment
	in := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, memoryPath(memoryID, "comments"), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
