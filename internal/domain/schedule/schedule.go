// Package schedule holds the date-window logic every view shares: a
// calendar pinned to one fixed time zone, week and month boundary
// arithmetic, and the assignment filter/sort pipeline built on top.
package schedule

import (
	"sort"
	"time"

	"github.com/semesterdesk/core/internal/domain/entities"
)

// DefaultTimeZone is the zone the whole dashboard is pinned to. Every
// "today" and week boundary is computed here regardless of where the
// viewer happens to be.
const DefaultTimeZone = "America/New_York"

// Window names a date range used to filter assignments for display.
type Window string

const (
	WindowToday     Window = "today"
	WindowThisWeek  Window = "this_week"
	WindowThisMonth Window = "this_month"
	WindowOverdue   Window = "overdue"
	WindowAll       Window = "all"
)

// ParseWindow coerces arbitrary input into a known window, defaulting
// to this_week.
func ParseWindow(s string) Window {
	switch Window(s) {
	case WindowToday, WindowThisMonth, WindowOverdue, WindowAll:
		return Window(s)
	default:
		return WindowThisWeek
	}
}

// UrgencyHorizonDays is how far ahead an undone assignment counts as
// urgent.
const UrgencyHorizonDays = 3

// Calendar performs all date arithmetic in a single fixed zone.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a calendar pinned to loc. A nil location falls
// back to the default zone, and to UTC if the zone database is missing.
func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		var err error
		loc, err = time.LoadLocation(DefaultTimeZone)
		if err != nil {
			loc = time.UTC
		}
	}
	return &Calendar{loc: loc}
}

// Location returns the calendar's fixed zone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// DateOf reinterprets an instant in the fixed zone and strips the
// time of day. Applying it twice yields the same result as once.
func (c *Calendar) DateOf(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// StartOfWeek returns the Monday on or before d. Weeks are Monday-start
// and tile the calendar with no gaps.
func (c *Calendar) StartOfWeek(d time.Time) time.Time {
	d = c.DateOf(d)
	// Weekday runs Sunday=0; shift so Monday=0.
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -back)
}

// EndOfWeek returns the Sunday of the week starting at start.
func (c *Calendar) EndOfWeek(start time.Time) time.Time {
	return c.DateOf(start).AddDate(0, 0, 6)
}

// MonthGrid returns the 42 consecutive dates of a 6x7 month view,
// beginning on the Monday on or before the 1st of the month. Leading
// and trailing cells belong to the adjacent months.
func (c *Calendar) MonthGrid(year int, month time.Month) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, c.loc)
	cur := c.StartOfWeek(first)
	grid := make([]time.Time, 0, 42)
	for i := 0; i < 42; i++ {
		grid = append(grid, cur)
		cur = cur.AddDate(0, 0, 1)
	}
	return grid
}

// Filter applies a window to a set of assignments relative to now.
//
// Today/this_week/this_month keep records due inside the window,
// inclusive on both ends. Overdue keeps records strictly before today
// that are not done. All is the identity filter. No-class markers are
// excluded from every window except all. Records whose due date fails
// to parse are kept under all but dropped from date-bounded windows;
// their IDs come back in the second result so callers can surface a
// data-quality warning.
func (c *Calendar) Filter(assignments []*entities.Assignment, w Window, now time.Time) ([]*entities.Assignment, []string) {
	today := c.DateOf(now)
	weekStart := c.StartOfWeek(today)
	weekEnd := c.EndOfWeek(weekStart)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, c.loc)
	monthEnd := monthStart.AddDate(0, 1, -1)

	var kept []*entities.Assignment
	var malformed []string

	for _, a := range assignments {
		if w == WindowAll {
			kept = append(kept, a)
			continue
		}
		if a.IsNoClass() {
			continue
		}
		due, ok := a.DueOn(c.loc)
		if !ok {
			malformed = append(malformed, a.ID.String())
			continue
		}
		switch w {
		case WindowToday:
			if due.Equal(today) {
				kept = append(kept, a)
			}
		case WindowThisWeek:
			if !due.Before(weekStart) && !due.After(weekEnd) {
				kept = append(kept, a)
			}
		case WindowThisMonth:
			if !due.Before(monthStart) && !due.After(monthEnd) {
				kept = append(kept, a)
			}
		case WindowOverdue:
			if due.Before(today) && !a.IsDone() {
				kept = append(kept, a)
			}
		}
	}
	return kept, malformed
}

// GroupByDay buckets assignments by due date for calendar cells. Keys
// are the raw due-date strings; values keep insertion order, and
// consumers sort before display. Records with unparseable dates are
// omitted.
func (c *Calendar) GroupByDay(assignments []*entities.Assignment) map[string][]*entities.Assignment {
	byDay := make(map[string][]*entities.Assignment)
	for _, a := range assignments {
		if _, ok := a.DueOn(c.loc); !ok {
			continue
		}
		byDay[a.DueDate] = append(byDay[a.DueDate], a)
	}
	return byDay
}

// IsUrgent reports whether an assignment is due in the future within
// the urgency horizon and still needs doing.
func (c *Calendar) IsUrgent(a *entities.Assignment, now time.Time) bool {
	if a.IsDone() || a.IsNoClass() {
		return false
	}
	due, ok := a.DueOn(c.loc)
	if !ok {
		return false
	}
	today := c.DateOf(now)
	return due.After(today) && !due.After(today.AddDate(0, 0, UrgencyHorizonDays))
}

// SortChronological sorts assignments by due date ascending with title
// as tiebreak. The sort is stable, so equal-key records keep their
// relative order; malformed due dates sort after everything parseable.
// The input slice is left untouched.
func SortChronological(assignments []*entities.Assignment) []*entities.Assignment {
	out := make([]*entities.Assignment, len(assignments))
	copy(out, assignments)
	sort.SliceStable(out, func(i, j int) bool {
		di, iok := out[i].DueOn(time.UTC)
		dj, jok := out[j].DueOn(time.UTC)
		if iok != jok {
			return iok
		}
		if iok && !di.Equal(dj) {
			return di.Before(dj)
		}
		return out[i].Title < out[j].Title
	})
	return out
}
