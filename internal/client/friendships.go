package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/lazypower/memoria/internal/relationship"
)

// Friendships returns the edges touching the viewer. A non-empty with
// narrows them to the edges between the viewer and that user.
func (c *Client) Friendships(ctx context.Context, with string) ([]relationship.Edge, error) {
	path := "/api/friendships"
	if with != "" {
		path += "?with=" + url.QueryEscape(with)
	}
	var out []relationship.Edge
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Relationship returns the viewer's resolved state with userID.
func (c *Client) Relationship(ctx context.Context, userID string) (relationship.State, error) {
	return c.state(ctx, http.MethodGet, "/api/relationships/"+url.PathEscape(userID))
}

// Friends returns every user the viewer has an edge with, annotated.
func (c *Client) Friends(ctx context.Context) ([]relationship.WithState, error) {
	var out []relationship.WithState
	if err := c.do(ctx, http.MethodGet, "/api/friends", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RequestFriendship(ctx context.Context, receiverID string) (*relationship.Edge, error) {
	var e relationship.Edge
	in := map[string]string{"receiver_id": receiverID}
	if err := c.do(ctx, http.MethodPost, "/api/friendships", in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) AcceptFriendship(ctx context.Context, requesterID string) (relationship.State, error) {
	return c.state(ctx, http.MethodPost, "/api/friendships/"+url.PathEscape(requesterID)+"/accept")
}

func (c *Client) RejectFriendship(ctx context.Context, requesterID string) (relationship.State, error) {
	return c.state(ctx, http.MethodPost, "/api/friendships/"+url.PathEscape(requesterID)+"/reject")
}

func (c *Client) Block(ctx context.Context, userID string) (relationship.State, error) {
	return c.state(ctx, http.MethodPost, "/api/friendships/"+url.PathEscape(userID)+"/block")
}

// Unfriend removes the viewer's outbound edge to userID: an unfollow, a
// cancelled request, or an unblock.
func (c *Client) Unfriend(ctx context.Context, userID string) (relationship.State, error) {
	return c.state(ctx, http.MethodDelete, "/api/friendships/"+url.PathEscape(userID))
}

func (c *Client) state(ctx context.Context, method, path string) (relationship.State, error) {
	var out relationship.WithState
	if err := c.do(ctx, method, path, nil, &out); err != nil {
		return "", err
	}
	return out.State, nil
}
