package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/alleyclub/club-server/league"
	"github.com/alleyclub/club-server/store/sqlite"
)

var logDateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// SaveDailyLog records one person's practice session for a date. The
// (name, date) pair is the key, so re-posting the same day replaces
// the earlier entry including its games and balls.
// POST /api/logs
func (h *Handler) SaveDailyLog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string          `json:"display_name"`
		LogDate     string          `json:"log_date"`
		StartTime   string          `json:"start_time"`
		CenterName  *string         `json:"center_name"`
		PatternID   *int64          `json:"pattern_id"`
		Memo        *string         `json:"memo"`
		Balls       string          `json:"balls"`
		Games       json.RawMessage `json:"games"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "잘못된 요청 본문입니다.")
		return
	}

	name := strings.TrimSpace(req.DisplayName)
	logDate := strings.TrimSpace(req.LogDate)
	if name == "" || logDate == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "display_name and log_date are required"})
		return
	}
	if !logDateRE.MatchString(logDate) {
		writeInvalid(w, "log_date는 YYYY-MM-DD 형식이어야 합니다.")
		return
	}

	startTime := strings.TrimSpace(req.StartTime)
	if startTime == "" {
		startTime = "22:00"
	}
	start, err := league.NormalizeEventTime(logDate + " " + startTime + ":00")
	if err != nil {
		writeInvalid(w, "start_time이 올바르지 않습니다.")
		return
	}

	games, err := parseLogGames(req.Games)
	if err != nil {
		writeInvalid(w, err.Error())
		return
	}

	ctx := r.Context()
	userID, err := h.Store.UpsertUser(ctx, name)
	if err != nil {
		writeServerError(w, err)
		return
	}

	logID, err := h.Store.UpsertDailyLog(ctx, userID, logDate, start, req.CenterName, req.PatternID, req.Memo)
	if err != nil {
		writeServerError(w, err)
		return
	}

	if err := h.Store.ReplaceBalls(ctx, logID, splitBalls(req.Balls)); err != nil {
		writeServerError(w, err)
		return
	}
	if err := h.Store.ReplaceGames(ctx, logID, games); err != nil {
		writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "log_id": logID})
}

// DailyLogDTO is one practice log with its games and balls.
type DailyLogDTO struct {
	LogID         int64        `json:"log_id"`
	LogDate       string       `json:"log_date"`
	StartDatetime string       `json:"start_datetime"`
	CenterName    *string      `json:"center_name"`
	Memo          *string      `json:"memo"`
	PatternID     *int64       `json:"pattern_id"`
	PatternName   *string      `json:"pattern_name"`
	Games         []LogGameDTO `json:"games"`
	Balls         []string     `json:"balls"`
}

// LogGameDTO is one game line of a practice log.
type LogGameDTO struct {
	GameNo int `json:"game_no"`
	Score  int `json:"score"`
}

// ListDailyLogs returns one person's logs for a month, newest first.
// GET /api/logs?name=&month=YYYY-MM
func (h *Handler) ListDailyLogs(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if name == "" || month == "" {
		writeInvalid(w, "name, month가 필요합니다.")
		return
	}

	monthStart, monthEnd, err := league.MonthRange(month)
	if err != nil {
		writeInvalid(w, "month는 YYYY-MM 형식이어야 합니다.")
		return
	}

	logs, err := h.Store.MonthLogs(r.Context(), name, monthStart, monthEnd)
	if err != nil {
		writeServerError(w, err)
		return
	}

	dtos := make([]DailyLogDTO, 0, len(logs))
	for _, l := range logs {
		dtos = append(dtos, toDailyLogDTO(l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": dtos})
}

func toDailyLogDTO(l sqlite.DailyLogRow) DailyLogDTO {
	games := make([]LogGameDTO, 0, len(l.Games))
	for _, g := range l.Games {
		games = append(games, LogGameDTO{GameNo: g.GameNo, Score: g.Score})
	}
	return DailyLogDTO{
		LogID:         l.LogID,
		LogDate:       l.LogDate,
		StartDatetime: league.FormatKST(l.StartDatetime),
		CenterName:    l.CenterName,
		Memo:          l.Memo,
		PatternID:     l.PatternID,
		PatternName:   l.PatternName,
		Games:         games,
		Balls:         l.Balls,
	}
}

// splitBalls turns a comma-separated ball list into trimmed, de-duped
// names in input order.
func splitBalls(raw string) []string {
	seen := map[string]bool{}
	var balls []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		balls = append(balls, name)
	}
	return balls
}

// parseLogGames reads the games array. Entries arrive either as
// {game_no, score} objects or as bare scores (numbered in order).
// Blank and non-numeric entries are skipped (empty form inputs), but a
// numeric score outside the valid range is rejected.
func parseLogGames(raw json.RawMessage) ([]sqlite.GameEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("games는 배열이어야 합니다.")
	}

	games := make([]sqlite.GameEntry, 0, len(items))
	seq := 0
	for _, item := range items {
		var gameNo int
		var f float64
		switch v := item.(type) {
		case map[string]any:
			no, okNo := jsonNumber(v["game_no"])
			score, okScore := jsonNumber(v["score"])
			if !okNo || !okScore || float64(int(no)) != no || int(no) < 1 {
				continue
			}
			gameNo, f = int(no), score
		case float64:
			seq++
			gameNo, f = seq, v
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			parsed, err := strconv.ParseFloat(s, 64)
			if err != nil {
				continue
			}
			seq++
			gameNo, f = seq, parsed
		default:
			continue
		}

		score := int(f)
		if float64(score) != f || !league.ValidScore(score) {
			return nil, fmt.Errorf("점수는 0~300 정수여야 합니다.")
		}
		games = append(games, sqlite.GameEntry{GameNo: gameNo, Score: score})
	}
	return games, nil
}

// jsonNumber reads a field that may arrive as a JSON number or a
// numeric string.
func jsonNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}
