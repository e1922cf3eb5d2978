// Package analysis computes aggregate reports over the web database:
// temporal trends, category breakdowns and backer-funding patterns.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fundlens/fundlens/internal/kickstarter"
)

// FullDatabase is the timeframe value selecting the whole database.
const FullDatabase = "N/A"

// timeframeDays maps CLI timeframe names to window lengths in days.
var timeframeDays = map[string]int{
	"7d":   7,
	"30d":  30,
	"90d":  90,
	"180d": 180,
	"1y":   365,
	"2y":   730,
}

// Timeframes lists the accepted timeframe values, shortest first.
func Timeframes() []string {
	names := make([]string, 0, len(timeframeDays)+1)
	for name := range timeframeDays {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return timeframeDays[names[i]] < timeframeDays[names[j]]
	})
	return append(names, FullDatabase)
}

// TimeframeDays returns the window length for a timeframe name.
func TimeframeDays(name string) (int, error) {
	if name == FullDatabase {
		return 0, nil
	}
	days, ok := timeframeDays[name]
	if !ok {
		return 0, fmt.Errorf("unknown timeframe %q (valid: %v)", name, Timeframes())
	}
	return days, nil
}

// EndDate resolves the analysis anchor. When spec is empty the latest
// deadline in the database is used, so windows track the scrape date.
func EndDate(spec string, projects []kickstarter.Project) (time.Time, error) {
	if spec != "" {
		t, err := time.ParseInLocation("02/01/2006", spec, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid end date %q (want dd/mm/yyyy): %w", spec, err)
		}
		return t, nil
	}
	var latest int64
	for _, p := range projects {
		if p.CalDeadline > latest {
			latest = p.CalDeadline
		}
	}
	if latest == 0 {
		return time.Time{}, fmt.Errorf("database has no deadlines to anchor the analysis window")
	}
	return time.Unix(latest, 0).UTC(), nil
}

// filterWindow keeps projects of the given category (FullDatabase for all)
// whose deadline falls inside [start, end]. Zero bounds are unbounded.
func filterWindow(projects []kickstarter.Project, category string, start, end int64) []kickstarter.Project {
	var out []kickstarter.Project
	for _, p := range projects {
		if category != FullDatabase && category != "" && p.Category != category {
			continue
		}
		if start != 0 && p.CalDeadline < start {
			continue
		}
		if end != 0 && p.CalDeadline > end {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PercentChange computes the relative change between two window values.
// A previous value of zero yields +Inf when the recent value is positive,
// zero otherwise.
func PercentChange(recent, previous float64) float64 {
	if previous == 0 {
		if recent > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return (recent - previous) / previous * 100
}

// FormatDate renders a unix timestamp as dd/mm/yyyy.
func FormatDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("02/01/2006")
}
