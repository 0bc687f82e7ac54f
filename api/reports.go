package api

import (
	"context"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alleyclub/club-server/league"
)

var (
	monthRE = regexp.MustCompile(`^\d{4}-\d{2}$`)
	dateRE  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// BungRanking returns the participation board for a date range: valid
// bungs attended plus regular meetings attended, per member.
// GET /api/reports/bungs/ranking?from=&to=
func (h *Handler) BungRanking(w http.ResponseWriter, r *http.Request) {
	rawFrom := r.URL.Query().Get("from")
	rawTo := r.URL.Query().Get("to")

	from, err := optionalTime(rawFrom)
	if err != nil {
		writeInvalid(w, "from이 올바르지 않습니다.")
		return
	}
	to, err := optionalTime(rawTo)
	if err != nil {
		writeInvalid(w, "to가 올바르지 않습니다.")
		return
	}

	ctx := r.Context()
	validCounts, err := h.Store.ValidBungCounts(ctx, from, to)
	if err != nil {
		writeServerError(w, err)
		return
	}

	// Regular meetings are keyed by calendar date, so the instant
	// bounds collapse to their KST dates.
	fromDate, toDate := "", ""
	if from != nil {
		fromDate = league.DayKey(*from)
	}
	if to != nil {
		toDate = league.DayKey(*to)
	}
	regularCounts, err := h.Store.RegularAttendanceCounts(ctx, fromDate, toDate)
	if err != nil {
		writeServerError(w, err)
		return
	}

	names, err := h.Store.MemberNames(ctx)
	if err != nil {
		writeServerError(w, err)
		return
	}

	total, valid, err := h.Store.BungSummary(ctx, from, to)
	if err != nil {
		writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"filter":   map[string]any{"from": rawFrom, "to": rawTo},
		"summary":  map[string]any{"total_bungs": total, "valid_bungs": valid},
		"rankings": league.BuildRanking(validCounts, regularCounts, names),
	})
}

// BungCalendar returns a month of bungs and regular meetings bucketed
// by KST calendar date.
// GET /api/reports/bungs/calendar?month=YYYY-MM
func (h *Handler) BungCalendar(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if !monthRE.MatchString(month) {
		writeInvalid(w, "month는 YYYY-MM 형식이어야 합니다.")
		return
	}

	monthStart, monthEnd, err := league.MonthRange(month)
	if err != nil {
		writeInvalid(w, "month는 YYYY-MM 형식이어야 합니다.")
		return
	}
	from, _, err := league.DayRange(monthStart)
	if err != nil {
		writeServerError(w, err)
		return
	}
	to, _, err := league.DayRange(monthEnd)
	if err != nil {
		writeServerError(w, err)
		return
	}

	events, err := h.monthEvents(r.Context(), from, to, monthStart, monthEnd)
	if err != nil {
		writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"month":        month,
		"calendarDays": league.BucketByDay(events),
	})
}

func (h *Handler) monthEvents(ctx context.Context, from, to time.Time, fromDate, toDate string) ([]league.CalendarEvent, error) {
	bungs, err := h.Store.BungsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var events []league.CalendarEvent
	for _, b := range bungs {
		names, err := h.Store.AttendeeNames(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		events = append(events, league.BungEvent(
			b.ID, b.BungAt, strOrEmpty(b.Title), strOrEmpty(b.CenterName),
			b.AttendeeCount, names))
	}

	meetings, err := h.Store.MeetingsBetween(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	for _, m := range meetings {
		participants, err := h.Store.ListParticipants(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(participants))
		for _, p := range participants {
			names = append(names, p.Name)
		}
		events = append(events, league.RegularEvent(
			m.ID, strOrEmpty(m.MeetingDate), m.MeetingNo, len(participants), names))
	}
	return events, nil
}

// DayBungDTO is one bung on the day report, with its full attendee
// list.
type DayBungDTO struct {
	BungDTO
	Attendees []DayAttendeeDTO `json:"attendees"`
}

// DayAttendeeDTO is one attendee line of the day report.
type DayAttendeeDTO struct {
	MemberID int64  `json:"member_id"`
	Name     string `json:"name"`
}

// BungDay returns every bung inside one KST calendar day with full
// attendee lists.
// GET /api/reports/bungs/day?date=YYYY-MM-DD
func (h *Handler) BungDay(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if !dateRE.MatchString(date) {
		writeInvalid(w, "date는 YYYY-MM-DD 형식이어야 합니다.")
		return
	}

	from, to, err := league.DayRange(date)
	if err != nil {
		writeInvalid(w, "date는 YYYY-MM-DD 형식이어야 합니다.")
		return
	}

	ctx := r.Context()
	bungs, err := h.Store.BungsBetween(ctx, from, to)
	if err != nil {
		writeServerError(w, err)
		return
	}

	items := make([]DayBungDTO, 0, len(bungs))
	for _, b := range bungs {
		attendees, err := h.Store.ListAttendees(ctx, b.ID)
		if err != nil {
			writeServerError(w, err)
			return
		}
		list := make([]DayAttendeeDTO, 0, len(attendees))
		for _, a := range attendees {
			list = append(list, DayAttendeeDTO{MemberID: a.MemberID, Name: a.Name})
		}
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Name < list[j].Name
		})
		items = append(items, DayBungDTO{BungDTO: toBungDTO(b), Attendees: list})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"date":  date,
		"bungs": items,
	})
}

// MemberBungs returns one member's attended bungs, newest first.
// GET /api/reports/bungs/member?member_id=&from=&to=
func (h *Handler) MemberBungs(w http.ResponseWriter, r *http.Request) {
	memberID, ok := queryID(r, "member_id")
	if !ok {
		writeInvalid(w, "member_id가 필요합니다.")
		return
	}

	rawFrom := r.URL.Query().Get("from")
	rawTo := r.URL.Query().Get("to")
	from, err := optionalTime(rawFrom)
	if err != nil {
		writeInvalid(w, "from이 올바르지 않습니다.")
		return
	}
	to, err := optionalTime(rawTo)
	if err != nil {
		writeInvalid(w, "to가 올바르지 않습니다.")
		return
	}

	bungs, err := h.Store.MemberBungs(r.Context(), memberID, from, to)
	if err != nil {
		writeServerError(w, err)
		return
	}

	items := make([]BungDTO, 0, len(bungs))
	for _, b := range bungs {
		items = append(items, toBungDTO(b))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"filter": map[string]any{"member_id": memberID, "from": rawFrom, "to": rawTo},
		"items":  items,
	})
}

// MonthlyReport aggregates one month of practice logs: headline
// figures, ball usage, per-pattern and per-day blocks. An empty name
// aggregates everyone.
// GET /api/reports/monthly?month=YYYY-MM&name=
func (h *Handler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if !monthRE.MatchString(month) {
		writeInvalid(w, "month는 YYYY-MM 형식이어야 합니다.")
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))

	start, end, err := league.MonthRange(month)
	if err != nil {
		writeInvalid(w, "month는 YYYY-MM 형식이어야 합니다.")
		return
	}

	ctx := r.Context()
	summary, err := h.Store.MonthlyReportSummary(ctx, start, end, name)
	if err != nil {
		writeServerError(w, err)
		return
	}
	balls, err := h.Store.TopBalls(ctx, start, end, name, 10)
	if err != nil {
		writeServerError(w, err)
		return
	}
	patterns, err := h.Store.PatternAggregates(ctx, start, end, name, 20)
	if err != nil {
		writeServerError(w, err)
		return
	}
	daily, err := h.Store.DailyAggregates(ctx, start, end, name)
	if err != nil {
		writeServerError(w, err)
		return
	}

	ballsTop := make([]map[string]any, 0, len(balls))
	for _, b := range balls {
		ballsTop = append(ballsTop, map[string]any{
			"ball_name": b.BallName,
			"used_days": b.UsedDays,
		})
	}
	byPattern := make([]map[string]any, 0, len(patterns))
	for _, p := range patterns {
		byPattern = append(byPattern, map[string]any{
			"pattern_name":  p.PatternName,
			"days":          p.Days,
			"games":         p.Games,
			"avg_score":     p.AvgScore,
			"max_score":     p.MaxScore,
			"games_200plus": p.Games200Plus,
		})
	}
	dailyOut := make([]map[string]any, 0, len(daily))
	for _, d := range daily {
		dailyOut = append(dailyOut, map[string]any{
			"log_date":  d.LogDate,
			"games":     d.Games,
			"avg_score": d.AvgScore,
			"max_score": d.MaxScore,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"month": month,
		"name":  name,
		"summary": map[string]any{
			"total_days":    summary.TotalDays,
			"total_games":   summary.TotalGames,
			"avg_score":     summary.AvgScore,
			"max_score":     summary.MaxScore,
			"min_score":     summary.MinScore,
			"games_200plus": summary.Games200Plus,
		},
		"ballsTop":  ballsTop,
		"byPattern": byPattern,
		"daily":     dailyOut,
	})
}

// SeasonReport returns the season's meetings and the aggregated
// per-member standings.
// GET /api/reports/season?season=
func (h *Handler) SeasonReport(w http.ResponseWriter, r *http.Request) {
	season := currentSeason()
	if raw := r.URL.Query().Get("season"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeInvalid(w, "season이 올바르지 않습니다.")
			return
		}
		season = n
	}

	ctx := r.Context()
	meetings, err := h.Store.ListMeetings(ctx, season)
	if err != nil {
		writeServerError(w, err)
		return
	}
	results, err := h.Store.SeasonResults(ctx, season, nil)
	if err != nil {
		writeServerError(w, err)
		return
	}

	seasonResults := make([]league.SeasonResult, 0, len(results))
	for _, res := range results {
		seasonResults = append(seasonResults, league.SeasonResult{
			MeetingNo: res.MeetingNo,
			Name:      res.Name,
			TotalPins: res.TotalPins,
		})
	}

	meetingDTOs := make([]MeetingDTO, 0, len(meetings))
	for _, m := range meetings {
		meetingDTOs = append(meetingDTOs, toMeetingDTO(m))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"season":   season,
		"meetings": meetingDTOs,
		"rows":     league.AggregateSeason(seasonResults),
	})
}
