package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lazypower/memoria/internal/events"
	"github.com/lazypower/memoria/internal/journal"
	"go.uber.org/zap"
)

// visibleMemory writes 404 and returns false unless the viewer may read
// the memory in the URL.
func (s *Server) visibleMemory(w http.ResponseWriter, r *http.Request) (string, bool) {
	memoryID := chi.URLParam(r, "memoryID")
	ok, err := s.db.CanViewMemory(viewer(r), memoryID)
	if err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	if !ok {
		notFound(w, "memory")
		return "", false
	}
	return memoryID, true
}

func (s *Server) handleCreateMemory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		journal.Memory
		ListIDs []string `json:"list_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.UserID = viewer(r)

	m, err := s.db.CreateMemory(req.Memory, req.ListIDs...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	m, err := s.db.GetMemory(viewer(r), chi.URLParam(r, "memoryID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if m == nil {
		notFound(w, "memory")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleListLikes(w http.ResponseWriter, r *http.Request) {
	memoryID, ok := s.visibleMemory(w, r)
	if !ok {
		return
	}
	likes, err := s.db.ListLikes(memoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	memoryID, ok := s.visibleMemory(w, r)
	if !ok {
		return
	}
	like, err := s.db.InsertLike(viewer(r), memoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(r.Context(), events.Event{Type: events.Like, UserID: like.UserID, MemoryID: memoryID})
	writeJSON(w, http.StatusCreated, like)
}

func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request) {
	memoryID, ok := s.visibleMemory(w, r)
	if !ok {
		return
	}
	userID := viewer(r)
	if err := s.db.DeleteLike(userID, memoryID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(r.Context(), events.Event{Type: events.Unlike, UserID: userID, MemoryID: memoryID})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	memoryID, ok := s.visibleMemory(w, r)
	if !ok {
		return
	}
	comments, err := s.db.ListComments(memoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	memoryID, ok := s.visibleMemory(w, r)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	c, err := s.db.InsertComment(viewer(r), memoryID, req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(r.Context(), events.Event{Type: events.Comment, UserID: c.UserID, MemoryID: memoryID, CommentID: c.ID})
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	memoryID, ok := s.visibleMemory(w, r)
	if !ok {
		return
	}
	people, err := s.db.TaggedPeople(memoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if people == nil {
		people = []journal.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handleSetTags(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PersonIDs []string `json:"person_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if err := s.db.TagPeople(viewer(r), chi.URLParam(r, "memoryID"), req.PersonIDs); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tagged": len(req.PersonIDs)})
}

func (s *Server) handleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		journal.Period
		ListIDs []string `json:"list_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.UserID = viewer(r)

	p, err := s.db.CreatePeriod(req.Period, req.ListIDs...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// publish sends an interaction event without failing the request.
func (s *Server) publish(ctx context.Context, e events.Event) {
	e.Timestamp = time.Now()
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn("publish event failed", zap.String("key", e.Key()), zap.Error(err))
	}
}
