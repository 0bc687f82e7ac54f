package api

import (
	"encoding/json"
	"net/http"

	"github.com/alleyclub/club-server/league"
	"github.com/alleyclub/club-server/store/sqlite"
)

// BungDTO is a bung row with its derived attendance figures. Timestamps
// render in the club timezone.
type BungDTO struct {
	ID            int64   `json:"id"`
	BungAt        string  `json:"bung_at"`
	Title         *string `json:"title"`
	CenterName    *string `json:"center_name"`
	Note          *string `json:"note"`
	CreatedAt     string  `json:"created_at"`
	AttendeeCount int     `json:"attendee_count"`
	IsValid       bool    `json:"is_valid"`
}

func toBungDTO(b sqlite.BungWithCount) BungDTO {
	return BungDTO{
		ID:            b.ID,
		BungAt:        league.FormatKST(b.BungAt),
		Title:         b.Title,
		CenterName:    b.CenterName,
		Note:          b.Note,
		CreatedAt:     league.FormatKST(b.CreatedAt),
		AttendeeCount: b.AttendeeCount,
		IsValid:       league.IsValidBung(b.AttendeeCount),
	}
}

// ListBungs returns bungs newest-first with attendee_count/is_valid
// derived fresh. from inclusive, to exclusive, limit clamped to 500.
// GET /api/bungs?from=&to=&limit=
func (h *Handler) ListBungs(w http.ResponseWriter, r *http.Request) {
	from, err := optionalTime(r.URL.Query().Get("from"))
	if err != nil {
		writeInvalid(w, "from이 올바르지 않습니다.")
		return
	}
	to, err := optionalTime(r.URL.Query().Get("to"))
	if err != nil {
		writeInvalid(w, "to가 올바르지 않습니다.")
		return
	}
	limit := clampLimit(r.URL.Query().Get("limit"))

	bungs, err := h.Store.ListBungs(r.Context(), from, to, limit)
	if err != nil {
		writeServerError(w, err)
		return
	}

	dtos := make([]BungDTO, 0, len(bungs))
	for _, b := range bungs {
		dtos = append(dtos, toBungDTO(b))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpsertBung creates a bung, or overwrites title/center/note when one
// already sits at the same (normalized) timestamp. Offset-less
// timestamps are read as KST.
// POST /api/bungs
func (h *Handler) UpsertBung(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BungAt     string  `json:"bung_at"`
		Title      *string `json:"title"`
		CenterName *string `json:"center_name"`
		Note       *string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "잘못된 요청 본문입니다.")
		return
	}

	at, err := league.NormalizeEventTime(req.BungAt)
	if err != nil {
		writeInvalid(w, "bung_at이 필요합니다.")
		return
	}

	bung, err := h.Store.UpsertBung(r.Context(), at, req.Title, req.CenterName, req.Note)
	if err != nil {
		writeServerError(w, err)
		return
	}

	count, err := h.Store.CountAttendees(r.Context(), bung.ID)
	if err != nil {
		writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"bung": toBungDTO(sqlite.BungWithCount{Bung: *bung, AttendeeCount: count}),
	})
}

// DeleteBung hard-deletes a bung; attendance rows cascade away with it.
// DELETE /api/bungs?id=
func (h *Handler) DeleteBung(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "id")
	if !ok {
		writeInvalid(w, "id가 올바르지 않습니다.")
		return
	}

	if err := h.Store.DeleteBung(r.Context(), id); err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// AttendeeDTO is one member on a bung's roster.
type AttendeeDTO struct {
	BungID   int64  `json:"bung_id"`
	MemberID int64  `json:"member_id"`
	Name     string `json:"name"`
	JoinedAt string `json:"joined_at"`
}

// ListAttendees returns a bung's roster in join order.
// GET /api/bung-attendees?bung_id=
func (h *Handler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	bungID, ok := queryID(r, "bung_id")
	if !ok {
		writeInvalid(w, "bung_id가 필요합니다.")
		return
	}

	attendees, err := h.Store.ListAttendees(r.Context(), bungID)
	if err != nil {
		writeServerError(w, err)
		return
	}

	dtos := make([]AttendeeDTO, 0, len(attendees))
	for _, a := range attendees {
		dtos = append(dtos, AttendeeDTO{
			BungID:   a.BungID,
			MemberID: a.MemberID,
			Name:     a.Name,
			JoinedAt: league.FormatKST(a.JoinedAt),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddAttendee marks a member attending; adding twice is a no-op.
// POST /api/bung-attendees
func (h *Handler) AddAttendee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BungID   *int64 `json:"bung_id"`
		MemberID *int64 `json:"member_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BungID == nil || req.MemberID == nil {
		writeInvalid(w, "bung_id, member_id가 필요합니다.")
		return
	}

	if err := h.Store.AddAttendee(r.Context(), *req.BungID, *req.MemberID); err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// RemoveAttendee takes a member off a bung's roster.
// DELETE /api/bung-attendees?bung_id=&member_id=
func (h *Handler) RemoveAttendee(w http.ResponseWriter, r *http.Request) {
	bungID, ok1 := queryID(r, "bung_id")
	memberID, ok2 := queryID(r, "member_id")
	if !ok1 || !ok2 {
		writeInvalid(w, "bung_id, member_id가 필요합니다.")
		return
	}

	if err := h.Store.RemoveAttendee(r.Context(), bungID, memberID); err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
