package league

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Event types on the calendar.
const (
	EventBung    = "bung"
	EventRegular = "regular"
)

// CalendarEvent is one entry on a calendar day: either a bung or a
// regular meeting.
type CalendarEvent struct {
	EventType            string `json:"event_type"`
	BungID               int64  `json:"bung_id,omitempty"`
	BungAt               string `json:"bung_at,omitempty"`
	MeetingID            int64  `json:"meeting_id,omitempty"`
	MeetingDate          string `json:"meeting_date,omitempty"`
	Title                string `json:"title"`
	CenterName           string `json:"center_name,omitempty"`
	AttendeeCount        int    `json:"attendee_count"`
	IsValid              bool   `json:"is_valid"`
	AttendeeNamesPreview string `json:"attendee_names_preview"`

	dayKey string
	at     time.Time
}

// BungEvent builds the calendar entry for a bung. The day it lands on is
// the KST calendar date of bung_at.
func BungEvent(id int64, at time.Time, title, centerName string, attendeeCount int, names []string) CalendarEvent {
	return CalendarEvent{
		EventType:            EventBung,
		BungID:               id,
		BungAt:               FormatKST(at),
		Title:                title,
		CenterName:           centerName,
		AttendeeCount:        attendeeCount,
		IsValid:              IsValidBung(attendeeCount),
		AttendeeNamesPreview: NamesPreview(names, 2),
		dayKey:               DayKey(at),
		at:                   at,
	}
}

// RegularEvent builds the calendar entry for a regular meeting. Regular
// meetings are always shown as valid.
func RegularEvent(id int64, date string, meetingNo, attendeeCount int, names []string) CalendarEvent {
	return CalendarEvent{
		EventType:            EventRegular,
		MeetingID:            id,
		MeetingDate:          date,
		Title:                fmt.Sprintf("정기전 %d회차", meetingNo),
		AttendeeCount:        attendeeCount,
		IsValid:              true,
		AttendeeNamesPreview: NamesPreview(names, 2),
		dayKey:               date,
	}
}

// BucketByDay groups events by day key and orders each day: valid bungs
// first, then invalid bungs, then regular meetings, each sub-group by
// time ascending.
func BucketByDay(events []CalendarEvent) map[string][]CalendarEvent {
	days := make(map[string][]CalendarEvent)
	for _, ev := range events {
		days[ev.dayKey] = append(days[ev.dayKey], ev)
	}
	for key := range days {
		day := days[key]
		sort.SliceStable(day, func(i, j int) bool {
			ri, rj := eventRank(day[i]), eventRank(day[j])
			if ri != rj {
				return ri < rj
			}
			return day[i].at.Before(day[j].at)
		})
		days[key] = day
	}
	return days
}

func eventRank(ev CalendarEvent) int {
	switch ev.EventType {
	case EventBung:
		if ev.IsValid {
			return 0
		}
		return 1
	case EventRegular:
		return 2
	}
	return 9
}

// NamesPreview truncates an attendee name list to the first max names,
// with an ellipsis marker when more remain. Empty names are dropped.
func NamesPreview(names []string, max int) string {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			cleaned = append(cleaned, n)
		}
	}
	head := cleaned
	if len(head) > max {
		head = head[:max]
	}
	preview := strings.Join(head, ", ")
	if len(cleaned) > max {
		preview += "…"
	}
	return preview
}
