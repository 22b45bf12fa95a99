package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lazypower/memoria/internal/journal"
	"github.com/lazypower/memoria/internal/relationship"
	"github.com/lazypower/memoria/internal/store"
)

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	p, err := s.db.GetProfile(viewer(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if p == nil {
		notFound(w, "profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var p journal.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	p.ID = viewer(r)

	updated, err := s.db.UpdateProfile(p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleProfileByUsername(w http.ResponseWriter, r *http.Request) {
	p, err := s.db.GetProfileByUsername(chi.URLParam(r, "username"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if p == nil {
		notFound(w, "profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleVisibleMemories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	memories, err := s.db.VisibleMemories(viewer(r), chi.URLParam(r, "userID"), store.MemoryFilter{
		From: q.Get("from"),
		To:   q.Get("to"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if memories == nil {
		memories = []journal.MemoryWithAuthor{}
	}
	writeJSON(w, http.StatusOK, memories)
}

func (s *Server) handleCountMemories(w http.ResponseWriter, r *http.Request) {
	n, err := s.db.CountVisibleMemories(viewer(r), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": n})
}

func (s *Server) handleVisiblePeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := s.db.VisiblePeriods(viewer(r), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if periods == nil {
		periods = []journal.Period{}
	}
	writeJSON(w, http.StatusOK, periods)
}

// handleListFriendships returns the edges touching the viewer. With ?with=
// only the edges between the viewer and that user are returned. Users who
// blocked the viewer are redacted.
func (s *Server) handleListFriendships(w http.ResponseWriter, r *http.Request) {
	var (
		edges []relationship.Edge
		err   error
	)
	if other := r.URL.Query().Get("with"); other != "" {
		edges, err = s.db.FriendshipsBetween(viewer(r), other)
	} else {
		edges, err = s.db.FriendshipsOf(viewer(r))
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, relationship.Redact(viewer(r), edges))
}

func (s *Server) handleRequestFriendship(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReceiverID string `json:"receiver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ReceiverID == "" {
		http.Error(w, `{"error":"receiver_id required"}`, http.StatusBadRequest)
		return
	}

	edge, err := s.db.RequestFriendship(viewer(r), req.ReceiverID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

func (s *Server) handleAcceptFriendship(w http.ResponseWriter, r *http.Request) {
	if err := s.db.AcceptFriendship(chi.URLParam(r, "userID"), viewer(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, r, chi.URLParam(r, "userID"))
}

func (s *Server) handleRejectFriendship(w http.ResponseWriter, r *http.Request) {
	if err := s.db.RejectFriendship(chi.URLParam(r, "userID"), viewer(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, r, chi.URLParam(r, "userID"))
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	if err := s.db.BlockUser(viewer(r), chi.URLParam(r, "userID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, r, chi.URLParam(r, "userID"))
}

func (s *Server) handleDeleteFriendship(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteFriendship(viewer(r), chi.URLParam(r, "userID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, r, chi.URLParam(r, "userID"))
}

func (s *Server) handleRelationship(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, r, chi.URLParam(r, "userID"))
}

// writeState responds with the viewer's resolved relationship to targetID.
func (s *Server) writeState(w http.ResponseWriter, r *http.Request, targetID string) {
	me := viewer(r)
	edges, err := s.db.FriendshipsBetween(me, targetID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, relationship.WithState{
		UserID: targetID,
		State:  relationship.Resolve(me, edges, targetID),
	})
}

func (s *Server) handleFriends(w http.ResponseWriter, r *http.Request) {
	me := viewer(r)
	edges, err := s.db.FriendshipsOf(me)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	friends := relationship.Annotate(me, relationship.Redact(me, edges))
	if friends == nil {
		friends = []relationship.WithState{}
	}
	writeJSON(w, http.StatusOK, friends)
}

func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.db.ListsOf(viewer(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if lists == nil {
		lists = []journal.List{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	l, err := s.db.CreateList(viewer(r), req.Name, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleAddListMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, `{"error":"user_id required"}`, http.StatusBadRequest)
		return
	}
	if err := s.db.AddListMember(viewer(r), chi.URLParam(r, "listID"), req.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var p journal.Person
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	p.CreatorID = viewer(r)
	p.InvitedAt = nil

	created, err := s.db.CreatePerson(p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
