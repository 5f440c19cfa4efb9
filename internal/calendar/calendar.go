// Package calendar lays offers out on a Monday-to-Sunday grid and renders
// it as an HTML table.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/nhle/offercal/internal/model"
)

// ErrUnordered is returned when offers are not in calendar order. Build
// walks them with a single cursor and would otherwise drop offers.
var ErrUnordered = errors.New("offers are not in calendar order")

// DateCell is one day of the grid with the subjects of the offers that
// arrived that day, in input order.
type DateCell struct {
	Date     time.Time
	Subjects []string
}

// HasOffers reports whether any offer falls on the cell's day.
func (c DateCell) HasOffers() bool {
	return len(c.Subjects) > 0
}

// Week is one row of the grid, Monday first.
type Week struct {
	// Label is the most common "<year> <month>" among the seven days.
	Label string
	Days  [7]DateCell
}

// Build buckets offers into whole weeks spanning the Monday on or before
// the first offer's date up to the Sunday on or after the last one.
// Offers must be in calendar order (see model.SortOffers).
func Build(offers []model.Offer) ([]Week, error) {
	if len(offers) == 0 {
		return nil, model.ErrEmptyInput
	}

	for i := 1; i < len(offers); i++ {
		if offers[i].Date().Before(offers[i-1].Date()) {
			return nil, fmt.Errorf("%w: offer %d (%s) is dated before offer %d (%s)",
				ErrUnordered,
				i, offers[i].Date().Format(time.DateOnly),
				i-1, offers[i-1].Date().Format(time.DateOnly),
			)
		}
	}

	start := mondayOnOrBefore(offers[0].Date())
	end := mondayOnOrBefore(offers[len(offers)-1].Date()).AddDate(0, 0, 7)

	var weeks []Week
	cursor := 0
	for day := start; day.Before(end); {
		var w Week
		for i := range w.Days {
			cell := DateCell{Date: day}
			for cursor < len(offers) && offers[cursor].Date().Equal(day) {
				cell.Subjects = append(cell.Subjects, offers[cursor].Subject)
				cursor++
			}
			w.Days[i] = cell
			day = day.AddDate(0, 0, 1)
		}
		w.Label = monthLabel(w.Days[:])
		weeks = append(weeks, w)
	}

	return weeks, nil
}

// mondayOnOrBefore returns the Monday of d's week. d must be a date at
// midnight UTC.
func mondayOnOrBefore(d time.Time) time.Time {
	sinceMonday := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -sinceMonday)
}

// monthLabel returns the most frequent year and month among days. Ties go
// to the month seen first.
func monthLabel(days []DateCell) string {
	type yearMonth struct {
		year  int
		month time.Month
	}

	counts := make(map[yearMonth]int)
	var order []yearMonth
	for _, c := range days {
		ym := yearMonth{c.Date.Year(), c.Date.Month()}
		if counts[ym] == 0 {
			order = append(order, ym)
		}
		counts[ym]++
	}

	best := order[0]
	for _, ym := range order[1:] {
		if counts[ym] > counts[best] {
			best = ym
		}
	}

	return fmt.Sprintf("%04d %s", best.year, best.month)
}
