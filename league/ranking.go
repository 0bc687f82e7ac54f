package league

import "sort"

// RankingRow is one member's participation over a date range.
// Participation combines valid-bung attendance and regular-meeting
// attendance.
type RankingRow struct {
	MemberID     int64  `json:"member_id"`
	Name         string `json:"name"`
	ValidCount   int    `json:"valid_count"`
	RegularCount int    `json:"regular_count"`
	TotalCount   int    `json:"total_count"`
}

// BuildRanking merges valid-bung and regular-meeting attendance counts
// into ordered ranking rows. Members with zero combined participation
// are excluded (they remain in the member table, just not on the board).
func BuildRanking(validCounts, regularCounts map[int64]int, names map[int64]string) []RankingRow {
	rows := make([]RankingRow, 0, len(names))
	for id, name := range names {
		v := validCounts[id]
		g := regularCounts[id]
		if v+g == 0 {
			continue
		}
		rows = append(rows, RankingRow{
			MemberID:     id,
			Name:         name,
			ValidCount:   v,
			RegularCount: g,
			TotalCount:   v + g,
		})
	}
	SortRanking(rows)
	return rows
}

// SortRanking orders rows by total desc, valid desc, regular desc, then
// name with Korean collation. Names are unique, so the order is a strict
// total order: sorting twice always yields the same output.
func SortRanking(rows []RankingRow) {
	col := newCollator()
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TotalCount != b.TotalCount {
			return a.TotalCount > b.TotalCount
		}
		if a.ValidCount != b.ValidCount {
			return a.ValidCount > b.ValidCount
		}
		if a.RegularCount != b.RegularCount {
			return a.RegularCount > b.RegularCount
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
}
