// Package calendar renders the inline month picker used by date steps.
package calendar

import (
	"fmt"
	"strconv"
	"time"

	"ledgerbot/internal/menu"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

var weekdays = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

var blank = menu.Button{Label: " ", Action: menu.Do(menu.OpCalendarIgnore)}

// MonthOf truncates t to the first day of its month, UTC.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Keyboard renders month as a Monday-first grid with navigation and a skip row.
func Keyboard(month time.Time, skip menu.Action) [][]menu.Button {
	month = MonthOf(month)
	prev := month.AddDate(0, -1, 0)
	next := month.AddDate(0, 1, 0)

	rows := [][]menu.Button{{
		{Label: "<<", Action: menu.With(menu.OpCalendarNav, prev.Format(monthLayout))},
		{Label: month.Format("January 2006"), Action: menu.Do(menu.OpCalendarIgnore)},
		{Label: ">>", Action: menu.With(menu.OpCalendarNav, next.Format(monthLayout))},
	}}

	header := make([]menu.Button, len(weekdays))
	for i, d := range weekdays {
		header[i] = menu.Button{Label: d, Action: menu.Do(menu.OpCalendarIgnore)}
	}
	rows = append(rows, header)

	// Monday = 0
	offset := (int(month.Weekday()) + 6) % 7
	week := make([]menu.Button, 0, 7)
	for i := 0; i < offset; i++ {
		week = append(week, blank)
	}
	for day := month; day.Month() == month.Month(); day = day.AddDate(0, 0, 1) {
		week = append(week, menu.Button{
			Label:  strconv.Itoa(day.Day()),
			Action: menu.With(menu.OpCalendarDay, day.Format(dayLayout)),
		})
		if len(week) == 7 {
			rows = append(rows, week)
			week = make([]menu.Button, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, blank)
		}
		rows = append(rows, week)
	}

	return append(rows, []menu.Button{{Label: "Skip", Action: skip}})
}

// ParseDay decodes a day action value as UTC midnight.
func ParseDay(v string) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar day %q: %w", v, err)
	}
	return t, nil
}

// ParseMonth decodes a navigation action value.
func ParseMonth(v string) (time.Time, error) {
	t, err := time.ParseInLocation(monthLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar month %q: %w", v, err)
	}
	return t, nil
}
