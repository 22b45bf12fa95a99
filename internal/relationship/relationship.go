// Package relationship derives the friendship state between two users from
// the directed edges stored for the pair.
package relationship

import "time"

// Status is the stored status of one directed edge.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusBlocked  Status = "blocked"
)

// Valid reports whether s is a known edge status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusBlocked:
		return true
	}
	return false
}

// Edge is a directed friendship record from Requester to Receiver.
type Edge struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	ReceiverID  string    `json:"receiver_id"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// State is the relationship as seen from the viewer. It is never stored.
type State string

const (
	NotFriends      State = "not_friends"
	Following       State = "following"
	FollowerOnly    State = "follower_only"
	Mutual          State = "mutual"
	RequestSent     State = "request_sent"
	RequestReceived State = "request_received"
	Blocked         State = "blocked"
)

// Valid reports whether s is one of the seven relationship states.
func (s State) Valid() bool {
	switch s {
	case NotFriends, Following, FollowerOnly, Mutual, RequestSent, RequestReceived, Blocked:
		return true
	}
	return false
}

// Resolve returns the state of viewerID's relationship with targetID.
//
// Edges not between the two users are ignored. If the store ever holds more
// than one edge for the same direction, the first one in slice order wins.
// Rules apply in order and the first match decides:
//
//	viewer blocked target           -> Blocked
//	target blocked viewer           -> NotFriends
//	viewer has a pending request    -> RequestSent
//	target has a pending request    -> RequestReceived
//	accepted both ways              -> Mutual
//	accepted viewer->target only    -> Following
//	accepted target->viewer only    -> FollowerOnly
//	otherwise                       -> NotFriends
//
// A target who blocked the viewer is indistinguishable from a stranger.
func Resolve(viewerID string, edges []Edge, targetID string) State {
	outbound := find(edges, viewerID, targetID)
	inbound := find(edges, targetID, viewerID)

	switch {
	case is(outbound, StatusBlocked):
		return Blocked
	case is(inbound, StatusBlocked):
		return NotFriends
	case is(outbound, StatusPending):
		return RequestSent
	case is(inbound, StatusPending):
		return RequestReceived
	}

	out := is(outbound, StatusAccepted)
	in := is(inbound, StatusAccepted)
	switch {
	case out && in:
		return Mutual
	case out:
		return Following
	case in:
		return FollowerOnly
	}
	return NotFriends
}

func find(edges []Edge, from, to string) *Edge {
	for i := range edges {
		if edges[i].RequesterID == from && edges[i].ReceiverID == to {
			return &edges[i]
		}
	}
	return nil
}

func is(e *Edge, s Status) bool {
	return e != nil && e.Status == s
}

// Counterpart returns the user on the other end of e from userID, or ""
// if userID is not part of the edge.
func Counterpart(e Edge, userID string) string {
	switch userID {
	case e.RequesterID:
		return e.ReceiverID
	case e.ReceiverID:
		return e.RequesterID
	}
	return ""
}

// WithState pairs a user with the viewer's resolved relationship to them.
type WithState struct {
	UserID string `json:"user_id"`
	State  State  `json:"state"`
}

// Annotate resolves the viewer's state with every distinct counterpart found
// in edges, in order of first appearance.
func Annotate(viewerID string, edges []Edge) []WithState {
	seen := make(map[string]bool)
	var out []WithState
	for _, e := range edges {
		other := Counterpart(e, viewerID)
		if other == "" || other == viewerID || seen[other] {
			continue
		}
		seen[other] = true
		out = append(out, WithState{UserID: other, State: Resolve(viewerID, edges, other)})
	}
	return out
}

// Redact returns the edges viewerID is allowed to see. A user who blocked
// the viewer disappears entirely: their block and every other edge with
// them are dropped, except a block the viewer placed on them.
func Redact(viewerID string, edges []Edge) []Edge {
	blockedBy := make(map[string]bool)
	for _, e := range edges {
		if e.ReceiverID == viewerID && e.Status == StatusBlocked {
			blockedBy[e.RequesterID] = true
		}
	}

	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if blockedBy[Counterpart(e, viewerID)] && !(e.RequesterID == viewerID && e.Status == StatusBlocked) {
			continue
		}
		out = append(out, e)
	}
	return out
}
