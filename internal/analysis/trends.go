package analysis

import (
	"fmt"
	"math"

	"github.com/fundlens/fundlens/internal/kickstarter"
)

// Metrics are the aggregate figures for one analysis window.
type Metrics struct {
	PeriodStart        int64   `json:"period_start"`
	PeriodEnd          int64   `json:"period_end"`
	TotalProjects      int     `json:"total_projects"`
	TotalFunds         float64 `json:"total_funds"`
	SuccessfulProjects int     `json:"successful_projects"`
	SuccessRate        float64 `json:"success_rate"`
}

// Period renders the window bounds for report output.
func (m Metrics) Period() string {
	return FormatDate(m.PeriodStart) + " - " + FormatDate(m.PeriodEnd)
}

// Changes are the percentage changes between two equal-length windows.
type Changes struct {
	TotalProjects      float64 `json:"total_projects"`
	TotalFunds         float64 `json:"total_funds"`
	SuccessfulProjects float64 `json:"successful_projects"`
	SuccessRate        float64 `json:"success_rate"`
}

// TrendsReport compares the most recent window against the immediately
// preceding one. Previous and Deltas are nil for full-database analysis.
type TrendsReport struct {
	Category  string   `json:"category"`
	Timeframe string   `json:"timeframe"`
	Recent    Metrics  `json:"recent"`
	Previous  *Metrics `json:"previous,omitempty"`
	Deltas    *Changes `json:"changes,omitempty"`
}

// calculateMetrics aggregates one window. Zero bounds mean "derive from
// the data": the window then spans earliest launch to latest deadline.
func calculateMetrics(projects []kickstarter.Project, category string, start, end int64) Metrics {
	filtered := filterWindow(projects, category, start, end)

	if start == 0 || end == 0 {
		for _, p := range filtered {
			if p.CalLaunchedAt > 0 && (start == 0 || p.CalLaunchedAt < start) {
				start = p.CalLaunchedAt
			}
			if p.CalDeadline > end {
				end = p.CalDeadline
			}
		}
	}

	m := Metrics{PeriodStart: start, PeriodEnd: end}
	for _, p := range filtered {
		m.TotalProjects++
		m.TotalFunds += p.PledgedUSD
		if p.State == "successful" {
			m.SuccessfulProjects++
		}
	}
	if m.TotalProjects > 0 {
		m.SuccessRate = float64(m.SuccessfulProjects) / float64(m.TotalProjects) * 100
	}
	return m
}

// Trends computes the trend report for a category and timeframe, with
// windows anchored at endDate.
func Trends(projects []kickstarter.Project, category, timeframe, endDate string) (*TrendsReport, error) {
	days, err := TimeframeDays(timeframe)
	if err != nil {
		return nil, err
	}

	report := &TrendsReport{Category: category, Timeframe: timeframe}

	if timeframe == FullDatabase {
		report.Recent = calculateMetrics(projects, category, 0, 0)
		return report, nil
	}

	anchor, err := EndDate(endDate, projects)
	if err != nil {
		return nil, err
	}
	end := anchor.Unix()
	recentStart := end - int64(days)*24*3600
	previousStart := recentStart - int64(days)*24*3600

	recent := calculateMetrics(projects, category, recentStart, end)
	previous := calculateMetrics(projects, category, previousStart, recentStart)

	report.Recent = recent
	report.Previous = &previous
	report.Deltas = &Changes{
		TotalProjects:      PercentChange(float64(recent.TotalProjects), float64(previous.TotalProjects)),
		TotalFunds:         PercentChange(recent.TotalFunds, previous.TotalFunds),
		SuccessfulProjects: PercentChange(float64(recent.SuccessfulProjects), float64(previous.SuccessfulProjects)),
		SuccessRate:        PercentChange(recent.SuccessRate, previous.SuccessRate),
	}
	return report, nil
}

// FormatPercent renders a percentage change, including the infinite case.
func FormatPercent(v float64) string {
	if math.IsInf(v, 1) {
		return "n/a (no previous activity)"
	}
	return fmt.Sprintf("%+.1f%%", v)
}
