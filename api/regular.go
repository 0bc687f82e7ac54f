package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/alleyclub/club-server/league"
	"github.com/alleyclub/club-server/store/sqlite"
)

// MeetingDTO is a regular-meeting row.
type MeetingDTO struct {
	ID          int64   `json:"id"`
	Season      int     `json:"season"`
	MeetingNo   int     `json:"meeting_no"`
	MeetingDate *string `json:"meeting_date"`
}

func toMeetingDTO(m sqlite.Meeting) MeetingDTO {
	return MeetingDTO{ID: m.ID, Season: m.Season, MeetingNo: m.MeetingNo, MeetingDate: m.MeetingDate}
}

// ListRegularMeetings returns a season's meetings in order.
// GET /api/regular-meetings?season=
func (h *Handler) ListRegularMeetings(w http.ResponseWriter, r *http.Request) {
	season := currentSeason()
	if raw := r.URL.Query().Get("season"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeInvalid(w, "season이 올바르지 않습니다.")
			return
		}
		season = n
	}

	meetings, err := h.Store.ListMeetings(r.Context(), season)
	if err != nil {
		writeServerError(w, err)
		return
	}

	dtos := make([]MeetingDTO, 0, len(meetings))
	for _, m := range meetings {
		dtos = append(dtos, toMeetingDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpsertRegularMeeting creates or refreshes a meeting keyed by
// (season, meeting_no). Posting without a date keeps the stored one.
// POST /api/regular-meetings
func (h *Handler) UpsertRegularMeeting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Season      *int    `json:"season"`
		MeetingNo   *int    `json:"meeting_no"`
		MeetingDate *string `json:"meeting_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "잘못된 요청 본문입니다.")
		return
	}
	if req.Season == nil || req.MeetingNo == nil || *req.MeetingNo <= 0 {
		writeInvalid(w, "season, meeting_no가 필요합니다.")
		return
	}

	meeting, err := h.Store.UpsertMeeting(r.Context(), *req.Season, *req.MeetingNo, req.MeetingDate)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMeetingDTO(*meeting))
}

// SeasonResultDTO is one (meeting, member) line of a season listing.
type SeasonResultDTO struct {
	Season      int     `json:"season"`
	MeetingNo   int     `json:"meeting_no"`
	MeetingDate *string `json:"meeting_date"`
	Name        string  `json:"name"`
	TotalPins   int     `json:"total_pins"`
}

// ListRegularResults returns a season's participation rows with derived
// totals, optionally narrowed to one meeting.
// GET /api/regular-results?season=&meeting_no=
func (h *Handler) ListRegularResults(w http.ResponseWriter, r *http.Request) {
	season := currentSeason()
	if raw := r.URL.Query().Get("season"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeInvalid(w, "season이 올바르지 않습니다.")
			return
		}
		season = n
	}

	var meetingNo *int
	if raw := r.URL.Query().Get("meeting_no"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeInvalid(w, "meeting_no가 올바르지 않습니다.")
			return
		}
		meetingNo = &n
	}

	results, err := h.Store.SeasonResults(r.Context(), season, meetingNo)
	if err != nil {
		writeServerError(w, err)
		return
	}

	dtos := make([]SeasonResultDTO, 0, len(results))
	for _, res := range results {
		dtos = append(dtos, SeasonResultDTO{
			Season:      res.Season,
			MeetingNo:   res.MeetingNo,
			MeetingDate: res.MeetingDate,
			Name:        res.Name,
			TotalPins:   res.TotalPins,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitRegularResult records a member's games for a meeting in one
// shot: meeting upsert, member upsert by name, participation, then the
// provided game scores. The steps are independent statements, so a
// failure partway can leave the earlier writes committed.
// POST /api/regular-results
func (h *Handler) SubmitRegularResult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Season      *int            `json:"season"`
		MeetingNo   *int            `json:"meeting_no"`
		MeetingDate *string         `json:"meeting_date"`
		Name        string          `json:"name"`
		Game1       json.RawMessage `json:"game1"`
		Game2       json.RawMessage `json:"game2"`
		Game3       json.RawMessage `json:"game3"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "잘못된 요청 본문입니다.")
		return
	}
	if req.Season == nil || req.MeetingNo == nil || *req.MeetingNo <= 0 {
		writeInvalid(w, "season, meeting_no가 필요합니다.")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeInvalid(w, "name이 필요합니다.")
		return
	}

	// Validate every provided score before touching the database.
	type entry struct {
		gameNo int
		score  *int
		clear  bool
	}
	entries := make([]entry, 0, league.GamesPerMeeting)
	for i, raw := range []json.RawMessage{req.Game1, req.Game2, req.Game3} {
		gameNo := i + 1
		score, clear, err := parseScoreInput(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:  "invalid_score",
				Detail: fmt.Sprintf("game%d 점수는 0~300 정수", gameNo),
			})
			return
		}
		entries = append(entries, entry{gameNo: gameNo, score: score, clear: clear})
	}

	ctx := r.Context()
	meeting, err := h.Store.UpsertMeeting(ctx, *req.Season, *req.MeetingNo, req.MeetingDate)
	if err != nil {
		writeServerError(w, err)
		return
	}

	member, err := h.Store.UpsertMemberByName(ctx, name)
	if err != nil {
		writeServerError(w, err)
		return
	}

	if err := h.Store.AddParticipant(ctx, meeting.ID, member.ID); err != nil {
		writeServerError(w, err)
		return
	}

	for _, e := range entries {
		if e.clear {
			continue
		}
		if err := h.Store.UpsertGame(ctx, meeting.ID, member.ID, e.gameNo, *e.score); err != nil {
			writeServerError(w, err)
			return
		}
	}

	total, err := h.Store.MemberMeetingTotal(ctx, meeting.ID, member.ID)
	if err != nil {
		writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"meeting": toMeetingDTO(*meeting),
		"member":  map[string]any{"id": member.ID, "name": member.Name},
		"result": map[string]any{
			"meeting_id": meeting.ID,
			"member_id":  member.ID,
			"total_pins": total,
			"average":    league.Round1(total, league.GamesPerMeeting),
		},
	})
}

// SaveRegularGames upserts a participant's game scores for a meeting.
// An empty or null game clears that score, so corrections can blank a
// mis-entered game.
// POST /api/regular/games (also /api/regular-games)
func (h *Handler) SaveRegularGames(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MeetingID *int64          `json:"meeting_id"`
		MemberID  *int64          `json:"member_id"`
		Game1     json.RawMessage `json:"game1"`
		Game2     json.RawMessage `json:"game2"`
		Game3     json.RawMessage `json:"game3"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MeetingID == nil || req.MemberID == nil {
		writeInvalid(w, "meeting_id, member_id 필요")
		return
	}

	// Validate every field before the first write.
	type entry struct {
		score *int
		clear bool
	}
	var entries [3]entry
	for i, raw := range []json.RawMessage{req.Game1, req.Game2, req.Game3} {
		score, clear, err := parseScoreInput(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:  "invalid_score",
				Detail: fmt.Sprintf("game%d 점수는 0~300 정수", i+1),
			})
			return
		}
		entries[i] = entry{score: score, clear: clear}
	}

	ctx := r.Context()
	if err := h.Store.AddParticipant(ctx, *req.MeetingID, *req.MemberID); err != nil {
		writeServerError(w, err)
		return
	}

	for i, e := range entries {
		gameNo := i + 1
		if e.clear {
			if err := h.Store.DeleteGame(ctx, *req.MeetingID, *req.MemberID, gameNo); err != nil {
				writeServerError(w, err)
				return
			}
			continue
		}
		if err := h.Store.UpsertGame(ctx, *req.MeetingID, *req.MemberID, gameNo, *e.score); err != nil {
			writeServerError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// MeetingSummaryDTO is a meeting with its participation counters.
type MeetingSummaryDTO struct {
	MeetingID        int64   `json:"meeting_id"`
	Season           int     `json:"season"`
	MeetingNo        int     `json:"meeting_no"`
	MeetingDate      *string `json:"meeting_date"`
	ParticipantCount int     `json:"participant_count"`
	CompleteCount    int     `json:"complete_count"`
}

// ListMeetingSummaries returns every meeting with participant and
// completion counts, newest first.
// GET /api/regular/meetings?limit=
func (h *Handler) ListMeetingSummaries(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(r.URL.Query().Get("limit"))

	summaries, err := h.Store.ListMeetingSummaries(r.Context(), limit)
	if err != nil {
		writeServerError(w, err)
		return
	}

	dtos := make([]MeetingSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		dtos = append(dtos, MeetingSummaryDTO{
			MeetingID:        s.ID,
			Season:           s.Season,
			MeetingNo:        s.MeetingNo,
			MeetingDate:      s.MeetingDate,
			ParticipantCount: s.ParticipantCount,
			CompleteCount:    s.CompleteCount,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"meetings": dtos})
}

// GetMeetingLeaderboard returns one meeting with its full leaderboard:
// per-member games, totals and averages, ranked.
// GET /api/regular/meeting?id=
func (h *Handler) GetMeetingLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "id")
	if !ok {
		writeInvalid(w, "id(meeting_id)가 필요합니다.")
		return
	}

	ctx := r.Context()
	meeting, err := h.Store.GetMeeting(ctx, id)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if meeting == nil {
		writeNotFound(w, "정기전 회차를 찾을 수 없습니다.")
		return
	}

	participants, err := h.Store.ListParticipants(ctx, id)
	if err != nil {
		writeServerError(w, err)
		return
	}
	games, err := h.Store.ListMeetingGames(ctx, id)
	if err != nil {
		writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"meeting": map[string]any{
			"meeting_id":   meeting.ID,
			"season":       meeting.Season,
			"meeting_no":   meeting.MeetingNo,
			"meeting_date": meeting.MeetingDate,
		},
		"results": league.BuildLeaderboard(participants, games),
	})
}

// AddParticipant enters a member into a meeting; entering twice is a
// no-op.
// POST /api/regular/participants
func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MeetingID *int64 `json:"meeting_id"`
		MemberID  *int64 `json:"member_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MeetingID == nil || req.MemberID == nil {
		writeInvalid(w, "meeting_id, member_id 필요")
		return
	}

	if err := h.Store.AddParticipant(r.Context(), *req.MeetingID, *req.MemberID); err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// RemoveParticipant removes a member from a meeting along with their
// recorded games.
// DELETE /api/regular/participants?meeting_id=&member_id=
func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	meetingID, ok1 := queryID(r, "meeting_id")
	memberID, ok2 := queryID(r, "member_id")
	if !ok1 || !ok2 {
		writeInvalid(w, "meeting_id, member_id 필요")
		return
	}

	if err := h.Store.RemoveParticipant(r.Context(), meetingID, memberID); err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// parseScoreInput reads one game field. Absent, null and "" mean
// "clear"; anything else must be an integer in [0, 300] (numeric
// strings from form inputs are accepted).
func parseScoreInput(raw json.RawMessage) (score *int, clear bool, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, true, nil
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, false, fmt.Errorf("invalid score payload")
	}

	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, true, nil
		}
		parsed, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			return nil, false, fmt.Errorf("invalid score %q", s)
		}
		f = parsed
	default:
		return nil, false, fmt.Errorf("invalid score type")
	}

	n := int(f)
	if float64(n) != f || !league.ValidScore(n) {
		return nil, false, fmt.Errorf("score out of range")
	}
	return &n, false, nil
}
