package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lumen-home/lumen-core/internal/light"
)

// createGroupRequest is the request body for POST /groups.
type createGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// addMemberRequest is the request body for POST /groups/{id}/members.
type addMemberRequest struct {
	ID string `json:"id"`
}

// groupView is the wire representation of a group.
type groupView struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// handleListGroups returns every group created through this server, in
// creation order.
func (s *Server) handleListGroups(w http.ResponseWriter, _ *http.Request) {
	s.groupsMu.RLock()
	views := make([]groupView, 0, len(s.groups))
	for _, id := range s.groupOrder {
		g := s.groups[id]
		views = append(views, groupView{ID: g.ID(), Name: g.Name(), Members: g.Members()})
	}
	s.groupsMu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"groups": views,
		"count":  len(views),
	})
}

// handleGetGroup returns one group's membership.
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	g, ok := s.group(id)
	if !ok {
		writeNotFound(w, "group not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, groupView{ID: g.ID(), Name: g.Name(), Members: g.Members()})
}

// handleCreateGroup creates a group over the given member lights and
// registers it so it is addressable like any other light.
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}
	for _, member := range req.Members {
		if !s.lights.Has(member) {
			writeBadRequest(w, "unknown member: "+member)
			return
		}
	}

	// Groups are virtual: the identifier is generated, not discovered.
	id := "group-" + uuid.NewString()
	g := light.NewGroup(id, req.Name, s.lights, req.Members)

	if _, err := s.lights.Register(r.Context(), g); err != nil {
		writeInternalError(w, "registering group: "+err.Error())
		return
	}

	s.groupsMu.Lock()
	s.groups[id] = g
	s.groupOrder = append(s.groupOrder, id)
	s.groupsMu.Unlock()

	s.logger.Info("group created", "id", id, "name", req.Name, "members", len(req.Members))
	writeJSON(w, http.StatusCreated, groupView{ID: g.ID(), Name: g.Name(), Members: g.Members()})
}

// handleAddGroupMember appends a light to an existing group.
func (s *Server) handleAddGroupMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	g, ok := s.group(id)
	if !ok {
		writeNotFound(w, "group not found: "+id)
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.ID == "" {
		writeBadRequest(w, "id is required")
		return
	}

	if err := g.AddMember(req.ID); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, groupView{ID: g.ID(), Name: g.Name(), Members: g.Members()})
}

// handleRemoveGroupMember removes a light from an existing group.
func (s *Server) handleRemoveGroupMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberID")

	g, ok := s.group(id)
	if !ok {
		writeNotFound(w, "group not found: "+id)
		return
	}

	if err := g.RemoveMember(memberID); err != nil {
		if errors.Is(err, light.ErrGroupMember) {
			writeNotFound(w, err.Error())
			return
		}
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, groupView{ID: g.ID(), Name: g.Name(), Members: g.Members()})
}

// group looks up a group handle by identifier.
func (s *Server) group(id string) (*light.Group, bool) {
	s.groupsMu.RLock()
	defer s.groupsMu.RUnlock()
	g, ok := s.groups[id]
	return g, ok
}
