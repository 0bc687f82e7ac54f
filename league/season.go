package league

import "sort"

// SeasonResult is one (meeting, member) row of a season: the member's
// three-game total at that meeting.
type SeasonResult struct {
	MeetingNo int
	Name      string
	TotalPins int
}

// SeasonRow is a member's aggregated season line. Average and Level are
// nil for members with no attendance.
type SeasonRow struct {
	Name        string      `json:"name"`
	TotalPins   int         `json:"total_pins"`
	AttendCount int         `json:"attend_count"`
	GamesPlayed int         `json:"games_played"`
	Average     *float64    `json:"average"`
	Level       *int        `json:"level"`
	Scores      map[int]int `json:"scores"`
}

// AggregateSeason folds per-meeting results into one row per member:
// total pins, attendance count, a meeting_no -> pins map, the derived
// average (pins over attendance*3) and its level band. Rows are ordered
// by total pins desc, then average desc, then name (Korean collation).
func AggregateSeason(results []SeasonResult) []SeasonRow {
	byName := make(map[string]*SeasonRow)
	for _, r := range results {
		row := byName[r.Name]
		if row == nil {
			row = &SeasonRow{Name: r.Name, Scores: make(map[int]int)}
			byName[r.Name] = row
		}
		if _, seen := row.Scores[r.MeetingNo]; !seen {
			row.AttendCount++
		}
		row.Scores[r.MeetingNo] = r.TotalPins
		row.TotalPins += r.TotalPins
	}

	rows := make([]SeasonRow, 0, len(byName))
	for _, row := range byName {
		row.GamesPlayed = row.AttendCount * GamesPerMeeting
		if row.GamesPlayed > 0 {
			// The level comes from the exact average; rounding is
			// display only, so a near-boundary average never bands low.
			avg := Round1(row.TotalPins, row.GamesPlayed)
			lvl := LevelForAverage(float64(row.TotalPins) / float64(row.GamesPlayed))
			row.Average = &avg
			row.Level = &lvl
		}
		rows = append(rows, *row)
	}

	col := newCollator()
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TotalPins != b.TotalPins {
			return a.TotalPins > b.TotalPins
		}
		av, bv := avgOrNeg(a.Average), avgOrNeg(b.Average)
		if av != bv {
			return av > bv
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
	return rows
}

func avgOrNeg(p *float64) float64 {
	if p == nil {
		return -1
	}
	return *p
}

// Participant is one member entered into a meeting.
type Participant struct {
	MemberID int64
	Name     string
}

// GameScore is one recorded game for a meeting participant.
type GameScore struct {
	MemberID int64
	GameNo   int
	Score    int
}

// MatchRow is one member's line on a single meeting's leaderboard.
// Unentered games stay nil; the total treats them as zero.
type MatchRow struct {
	MemberID  int64   `json:"member_id"`
	Name      string  `json:"name"`
	Game1     *int    `json:"game1"`
	Game2     *int    `json:"game2"`
	Game3     *int    `json:"game3"`
	TotalPins int     `json:"total_pins"`
	Average   float64 `json:"average"`
}

// BuildLeaderboard joins participants with their game scores into
// leaderboard rows: average desc, then total desc, then name (Korean
// collation). Average is always over three games.
func BuildLeaderboard(participants []Participant, games []GameScore) []MatchRow {
	scores := make(map[int64][GamesPerMeeting]*int)
	for _, g := range games {
		if g.GameNo < 1 || g.GameNo > GamesPerMeeting {
			continue
		}
		entry := scores[g.MemberID]
		s := g.Score
		entry[g.GameNo-1] = &s
		scores[g.MemberID] = entry
	}

	rows := make([]MatchRow, 0, len(participants))
	for _, p := range participants {
		entry := scores[p.MemberID]
		total := 0
		for _, s := range entry {
			if s != nil {
				total += *s
			}
		}
		rows = append(rows, MatchRow{
			MemberID:  p.MemberID,
			Name:      p.Name,
			Game1:     entry[0],
			Game2:     entry[1],
			Game3:     entry[2],
			TotalPins: total,
			Average:   Round1(total, GamesPerMeeting),
		})
	}

	col := newCollator()
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		if a.TotalPins != b.TotalPins {
			return a.TotalPins > b.TotalPins
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
	return rows
}
