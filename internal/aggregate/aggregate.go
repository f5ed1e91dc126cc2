// Package aggregate computes display summaries over observation history.
//
// This package is internal to callwatch and exists for the dashboard: it
// folds a link's raw observation rows into the hourly, daily, and weekday
// sums the charts render. It is purely derived data; the event files remain
// the source of truth.
package aggregate

import (
	"sort"
	"time"

	"github.com/apillai/callwatch/internal/store"
)

// dateLayout is a sortable day key.
const dateLayout = "2006-01-02"

// weekdayOrder lists weekdays Monday-first, the order the charts use.
var weekdayOrder = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// Totals sums the two signals over one bucket.
type Totals struct {
	AvailableForCall int `json:"available_for_call"`
	OnCall           int `json:"on_call"`
}

func (t *Totals) add(obs store.Observation) {
	if obs.AvailableForCall {
		t.AvailableForCall++
	}
	if obs.OnCall {
		t.OnCall++
	}
}

// HourTotals is the signal sum for one hour of the day (0-23).
type HourTotals struct {
	Hour int `json:"hour"`
	Totals
}

// DayTotals is the signal sum for one calendar day.
type DayTotals struct {
	Date string `json:"date"`
	Totals
}

// WeekdayTotals is the signal sum for one day of the week.
type WeekdayTotals struct {
	Weekday string `json:"weekday"`
	Totals
}

// Summary holds every aggregate the dashboard displays for one link.
type Summary struct {
	// TotalObservations counts the successful samples the sums are built
	// from. Failed probes are absent from history, so they under-count
	// rather than mis-count.
	TotalObservations int `json:"total_observations"`

	// Hourly always has 24 entries, hour 0 through 23.
	Hourly []HourTotals `json:"hourly"`

	// Daily is sorted by date, one entry per observed day.
	Daily []DayTotals `json:"daily"`

	// Weekday always has 7 entries, Monday first.
	Weekday []WeekdayTotals `json:"weekday"`
}

// Summarize folds observation history into a [Summary].
// An empty history yields zeroed hourly and weekday buckets and no daily rows.
func Summarize(observations []store.Observation) Summary {
	var hourly [24]Totals
	byDay := make(map[string]*Totals)
	byWeekday := make(map[time.Weekday]*Totals)

	for _, obs := range observations {
		hourly[obs.Timestamp.Hour()].add(obs)

		day := obs.Timestamp.Format(dateLayout)
		if byDay[day] == nil {
			byDay[day] = &Totals{}
		}
		byDay[day].add(obs)

		wd := obs.Timestamp.Weekday()
		if byWeekday[wd] == nil {
			byWeekday[wd] = &Totals{}
		}
		byWeekday[wd].add(obs)
	}

	summary := Summary{
		TotalObservations: len(observations),
		Hourly:            make([]HourTotals, 24),
		Daily:             make([]DayTotals, 0, len(byDay)),
		Weekday:           make([]WeekdayTotals, 0, len(weekdayOrder)),
	}

	for h := range summary.Hourly {
		summary.Hourly[h] = HourTotals{Hour: h, Totals: hourly[h]}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		summary.Daily = append(summary.Daily, DayTotals{Date: day, Totals: *byDay[day]})
	}

	for _, wd := range weekdayOrder {
		totals := Totals{}
		if t := byWeekday[wd]; t != nil {
			totals = *t
		}
		summary.Weekday = append(summary.Weekday, WeekdayTotals{Weekday: wd.String(), Totals: totals})
	}

	return summary
}
