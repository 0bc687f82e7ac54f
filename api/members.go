package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/alleyclub/club-server/league"
	"github.com/alleyclub/club-server/store/sqlite"
)

// MemberDTO is a roster row in API responses.
type MemberDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

func toMemberDTO(m sqlite.Member) MemberDTO {
	return MemberDTO{
		ID:        m.ID,
		Name:      m.Name,
		IsActive:  m.IsActive,
		CreatedAt: league.FormatKST(m.CreatedAt),
	}
}

// ListMembers returns the roster, active members only unless
// include_inactive is set; q filters by name substring.
// GET /api/members?q=&include_inactive=1
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	inactive := r.URL.Query().Get("include_inactive")
	includeInactive := inactive == "1" || inactive == "true"

	members, err := h.Store.ListMembers(r.Context(), q, includeInactive)
	if err != nil {
		writeServerError(w, err)
		return
	}

	dtos := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, toMemberDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateMember adds a new member. Names are unique: a collision is a
// 409, never a silent overwrite.
// POST /api/members
func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "잘못된 요청 본문입니다.")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeInvalid(w, "name이 필요합니다.")
		return
	}

	member, err := h.Store.CreateMember(r.Context(), name)
	if errors.Is(err, sqlite.ErrDuplicateName) {
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "duplicate name"})
		return
	}
	if err != nil {
		writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "member": toMemberDTO(*member)})
}

// PatchMember renames a member and/or toggles is_active.
// PATCH /api/members
func (h *Handler) PatchMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       *int64  `json:"id"`
		Name     *string `json:"name"`
		IsActive *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == nil {
		writeInvalid(w, "id가 올바르지 않습니다.")
		return
	}
	if req.Name == nil && req.IsActive == nil {
		writeInvalid(w, "변경할 필드가 없습니다.")
		return
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			writeInvalid(w, "name이 필요합니다.")
			return
		}
		req.Name = &trimmed
	}

	h.updateMember(w, r, *req.ID, req.Name, req.IsActive)
}

// PutMember replaces a member's mutable fields wholesale.
// PUT /api/members
func (h *Handler) PutMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       *int64  `json:"id"`
		Name     *string `json:"name"`
		IsActive *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == nil {
		writeInvalid(w, "id가 올바르지 않습니다.")
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" || req.IsActive == nil {
		writeInvalid(w, "name, is_active가 필요합니다.")
		return
	}
	trimmed := strings.TrimSpace(*req.Name)

	h.updateMember(w, r, *req.ID, &trimmed, req.IsActive)
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request, id int64, name *string, isActive *bool) {
	member, err := h.Store.UpdateMember(r.Context(), id, name, isActive)
	if errors.Is(err, sqlite.ErrDuplicateName) {
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "duplicate name"})
		return
	}
	if err != nil {
		writeServerError(w, err)
		return
	}
	if member == nil {
		writeNotFound(w, "멤버를 찾을 수 없습니다.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "member": toMemberDTO(*member)})
}

// DeleteMember soft-disables a member; history keeps pointing at the id.
// DELETE /api/members?id=
func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "id")
	if !ok {
		writeInvalid(w, "id가 올바르지 않습니다.")
		return
	}

	found, err := h.Store.DeactivateMember(r.Context(), id)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if !found {
		writeNotFound(w, "멤버를 찾을 수 없습니다.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// PatternDTO is a lane-condition lookup row.
type PatternDTO struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	LengthFt *int    `json:"length_ft"`
	Note     *string `json:"note"`
}

// ListPatterns returns the static lane-condition lookup list.
// GET /api/patterns
func (h *Handler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.Store.ListPatterns(r.Context())
	if err != nil {
		writeServerError(w, err)
		return
	}

	dtos := make([]PatternDTO, 0, len(patterns))
	for _, p := range patterns {
		dtos = append(dtos, PatternDTO{ID: p.ID, Name: p.Name, LengthFt: p.LengthFt, Note: p.Note})
	}
	writeJSON(w, http.StatusOK, dtos)
}
