package analysis

import (
	"sort"
	"strings"

	"github.com/fundlens/fundlens/internal/kickstarter"
)

// BackerAverage is the average pledge per backer within one category.
type BackerAverage struct {
	Category         string  `json:"category"`
	FundingPerBacker float64 `json:"funding_per_backer"`
	TotalBackers     int     `json:"total_backers"`
}

// BackerReport combines per-category backer funding with the top funded
// projects of the window.
type BackerReport struct {
	Timeframe string                `json:"timeframe"`
	Category  string                `json:"category"`
	Averages  []BackerAverage       `json:"averages"`
	TopFunded []kickstarter.Project `json:"top_funded"`
}

// topFundedCount is how many top projects the report lists.
const topFundedCount = 5

// Backers computes average funding per backer by category and the top
// funded projects for the window. Projects without backers are excluded
// from the averages.
func Backers(projects []kickstarter.Project, category, timeframe, endDate string) (*BackerReport, error) {
	days, err := TimeframeDays(timeframe)
	if err != nil {
		return nil, err
	}

	var start, end int64
	if timeframe != FullDatabase {
		anchor, err := EndDate(endDate, projects)
		if err != nil {
			return nil, err
		}
		end = anchor.Unix()
		start = end - int64(days)*24*3600
	}
	windowed := filterWindow(projects, FullDatabase, start, end)

	if category != "" && category != FullDatabase {
		var matched []kickstarter.Project
		for _, p := range windowed {
			if strings.EqualFold(p.Category, category) {
				matched = append(matched, p)
			}
		}
		windowed = matched
	}

	return &BackerReport{
		Timeframe: timeframe,
		Category:  category,
		Averages:  backerAverages(windowed),
		TopFunded: topFunded(windowed, topFundedCount),
	}, nil
}

// backerAverages aggregates pledge-per-backer by category, highest first.
func backerAverages(projects []kickstarter.Project) []BackerAverage {
	type totals struct {
		funds   float64
		backers int
	}
	byCategory := make(map[string]*totals)
	for _, p := range projects {
		if p.BackersCount <= 0 {
			continue
		}
		name := titleCase(p.Category)
		t, ok := byCategory[name]
		if !ok {
			t = &totals{}
			byCategory[name] = t
		}
		t.funds += p.PledgedUSD
		t.backers += p.BackersCount
	}

	out := make([]BackerAverage, 0, len(byCategory))
	for name, t := range byCategory {
		out = append(out, BackerAverage{
			Category:         name,
			FundingPerBacker: t.funds / float64(t.backers),
			TotalBackers:     t.backers,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FundingPerBacker != out[j].FundingPerBacker {
			return out[i].FundingPerBacker > out[j].FundingPerBacker
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// topFunded returns the n highest-pledged unique projects.
func topFunded(projects []kickstarter.Project, n int) []kickstarter.Project {
	sorted := make([]kickstarter.Project, len(projects))
	copy(sorted, projects)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PledgedUSD > sorted[j].PledgedUSD
	})

	seen := make(map[int64]bool)
	var top []kickstarter.Project
	for _, p := range sorted {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		top = append(top, p)
		if len(top) == n {
			break
		}
	}
	return top
}
