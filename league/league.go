/*
Package league contains the pure aggregation logic of the club server.

PURPOSE:
  Everything that derives a view from raw rows lives here: attendance
  validity, level banding, ranking order, calendar day-bucketing, and
  season/meeting score folding. Nothing in this package performs I/O;
  the api package feeds it rows loaded from the store and serializes
  whatever comes back.

KEY RULES (club policy, fixed):
  - A bung counts for ranking once it has 4 or more attendees.
  - Levels are an 11-band table over the per-game average.
  - A regular meeting is always 3 games.
  - Every reported average is rounded half-up to one decimal place.
  - Name ties are broken with Korean collation, never byte order.

SEE ALSO:
  - ranking.go:  participation ranking order
  - calendar.go: monthly calendar bucketing
  - season.go:   season and single-meeting aggregation
  - kst.go:      the fixed club timezone
*/
package league

// MinValidAttendees is the attendance threshold that makes a bung count
// for ranking purposes.
const MinValidAttendees = 4

// GamesPerMeeting is fixed: a regular meeting is always three games.
const GamesPerMeeting = 3

// IsValidBung reports whether a bung with the given attendee count is
// valid. Validity is always recomputed from the current count, never
// stored.
func IsValidBung(attendeeCount int) bool {
	return attendeeCount >= MinValidAttendees
}

// levelBands maps an average upper bound (inclusive) to a level.
// Anything above the last bound is level 11.
var levelBands = []struct {
	maxAvg float64
	level  int
}{
	{120, 1},
	{140, 2},
	{150, 3},
	{160, 4},
	{170, 5},
	{180, 6},
	{190, 7},
	{200, 8},
	{210, 9},
	{220, 10},
}

// LevelForAverage returns the club level band for a per-game average.
// Monotonically non-decreasing in avg.
func LevelForAverage(avg float64) int {
	for _, b := range levelBands {
		if avg <= b.maxAvg {
			return b.level
		}
	}
	return 11
}
