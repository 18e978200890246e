package model

import (
	"sort"
	"time"
)

// ReviewMarker classifies a calendar day by urgency
type ReviewMarker string

const (
	ReviewMarkerOverdue ReviewMarker = "overdue"
	ReviewMarkerSoon    ReviewMarker = "soon"
	ReviewMarkerLater   ReviewMarker = "later"
)

// CalendarDay is every review scheduled on one date
type CalendarDay struct {
	Date    string        `json:"date"`
	Marker  ReviewMarker  `json:"marker"`
	Reviews []*ReviewItem `json:"reviews"`
}

// MarkerFor returns the marker of a review date relative to the calendar
// date of now
func MarkerFor(date, now time.Time) ReviewMarker {
	today := calendarDate(now)
	day := reviewDay(date)
	switch {
	case day.Before(today):
		return ReviewMarkerOverdue
	case !day.After(today.AddDate(0, 0, SoonReviewDays)):
		return ReviewMarkerSoon
	default:
		return ReviewMarkerLater
	}
}

// BuildCalendar groups every scheduled review by YYYY-MM-DD, ordered by date
func BuildCalendar(risks []*Risk, now time.Time) []*CalendarDay {
	days := map[string]*CalendarDay{}
	all := collectReviews(risks, func(time.Time) bool { return true })
	for _, item := range all {
		key := reviewDay(item.ReviewDate).Format(time.DateOnly)
		day, ok := days[key]
		if !ok {
			day = &CalendarDay{Date: key, Marker: MarkerFor(item.ReviewDate, now)}
			days[key] = day
		}
		day.Reviews = append(day.Reviews, item)
	}

	out := make([]*CalendarDay, 0, len(days))
	for _, d := range days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
