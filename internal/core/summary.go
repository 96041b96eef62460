package core

import (
	"sort"
)

// GroupCounts holds one day's quantities for a category group, split by status group.
type GroupCounts struct {
	Dead int64
	Live int64
}

// Total is dead plus live.
func (c GroupCounts) Total() int64 {
	return c.Dead + c.Live
}

// Running holds the season-to-date figures for a category group at a given date.
//
// Dead is a prefix sum of daily dead counts. All is that prefix sum plus the
// same day's live count only, not a cumulative live count.
type Running struct {
	Dead int64
	All  int64
}

// DailyAggregate is every tracked figure for one survey date.
type DailyAggregate struct {
	Date    Date
	Groups  map[string]GroupCounts
	Nests   int64
	Running map[string]Running
}

// Counts returns the day's counts for a group; unknown groups are zero.
func (d DailyAggregate) Counts(group string) GroupCounts {
	return d.Groups[group]
}

// RunningFor returns the season-to-date figures for a group; unknown groups are zero.
func (d DailyAggregate) RunningFor(group string) Running {
	return d.Running[group]
}

// Summary is the aggregate of all loaded records, oldest date first.
type Summary struct {
	Days   []DailyAggregate
	Groups []string
}

// YearlyTotal is the peak of a group's running "all" total over the season.
type YearlyTotal struct {
	Category string `json:"category"`
	Value    int64  `json:"value"`
	Date     Date   `json:"date"`
}

// Aggregate groups records by survey date and computes running totals per category group.
// Records sharing a date are merged into one bucket; any missing combination is zero.
func Aggregate(records []Record, tax Taxonomy) Summary {
	groups := make([]string, 0, len(tax.Categories))
	for _, g := range tax.Categories {
		groups = append(groups, g.Name)
	}

	buckets := make(map[string]*DailyAggregate)
	for _, r := range records {
		key := r.Date.String()
		day, ok := buckets[key]
		if !ok {
			day = &DailyAggregate{
				Date:    r.Date.CalendarDay(),
				Groups:  make(map[string]GroupCounts, len(groups)),
				Running: make(map[string]Running, len(groups)),
			}
			for _, name := range groups {
				day.Groups[name] = GroupCounts{}
			}
			buckets[key] = day
		}

		if tax.NestStatus != "" && r.Status == tax.NestStatus {
			day.Nests += r.Quantity
			continue
		}

		for _, g := range tax.Categories {
			if !g.includes(r.Category) {
				continue
			}
			c := day.Groups[g.Name]
			switch {
			case r.Status == tax.LiveStatus:
				c.Live += r.Quantity
			case g.isDead(r.Status, tax.DeadStatuses):
				c.Dead += r.Quantity
			}
			day.Groups[g.Name] = c
		}
	}

	days := make([]DailyAggregate, 0, len(buckets))
	for _, d := range buckets {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})

	deadSoFar := make(map[string]int64, len(groups))
	for i := range days {
		for _, name := range groups {
			c := days[i].Groups[name]
			deadSoFar[name] += c.Dead
			days[i].Running[name] = Running{
				Dead: deadSoFar[name],
				All:  deadSoFar[name] + c.Live,
			}
		}
	}

	return Summary{Days: days, Groups: groups}
}

// Newest returns the daily aggregates most recent first.
func (s Summary) Newest() []DailyAggregate {
	out := make([]DailyAggregate, len(s.Days))
	for i, d := range s.Days {
		out[len(s.Days)-1-i] = d
	}
	return out
}

// LatestDate returns the most recent survey date, or the zero Date when empty.
func (s Summary) LatestDate() Date {
	if len(s.Days) == 0 {
		return Date{}
	}
	return s.Days[len(s.Days)-1].Date
}

// YearlyMax returns the date at which the group's running "all" total peaks.
// The earliest date wins a tie. ok is false when there are no survey dates.
func (s Summary) YearlyMax(group string) (YearlyTotal, bool) {
	if len(s.Days) == 0 {
		return YearlyTotal{Category: group}, false
	}
	best := YearlyTotal{Category: group, Value: s.Days[0].RunningFor(group).All, Date: s.Days[0].Date}
	for _, d := range s.Days[1:] {
		if v := d.RunningFor(group).All; v > best.Value {
			best.Value = v
			best.Date = d.Date
		}
	}
	return best, true
}

// YearlyTotals returns YearlyMax for every yearly group, in taxonomy order.
func (s Summary) YearlyTotals(tax Taxonomy) []YearlyTotal {
	var out []YearlyTotal
	for _, g := range tax.YearlyGroups() {
		if t, ok := s.YearlyMax(g.Name); ok {
			out = append(out, t)
		}
	}
	return out
}
