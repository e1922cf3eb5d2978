package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundlens/fundlens/internal/kickstarter"
)

const anchorDate = "31/12/2020"

var anchor = time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC).Unix()

func daysBefore(n int) int64 {
	return anchor - int64(n)*24*3600
}

func trendProjects() []kickstarter.Project {
	return []kickstarter.Project{
		{ID: 1, Category: "games", State: "successful", PledgedUSD: 100, CalLaunchedAt: daysBefore(31), CalDeadline: daysBefore(1)},
		{ID: 2, Category: "games", State: "failed", PledgedUSD: 50, CalLaunchedAt: daysBefore(32), CalDeadline: daysBefore(2)},
		{ID: 3, Category: "games", State: "successful", PledgedUSD: 200, CalLaunchedAt: daysBefore(38), CalDeadline: daysBefore(8)},
		{ID: 4, Category: "music", State: "successful", PledgedUSD: 75, CalLaunchedAt: daysBefore(33), CalDeadline: daysBefore(3)},
		{ID: 5, Category: "games", State: "failed", PledgedUSD: 10, CalLaunchedAt: daysBefore(50), CalDeadline: daysBefore(20)},
	}
}

func TestTrendsWindowed(t *testing.T) {
	report, err := Trends(trendProjects(), "games", "7d", anchorDate)
	require.NoError(t, err)

	// Recent window: deadlines within 7 days of the anchor.
	assert.Equal(t, 2, report.Recent.TotalProjects)
	assert.InDelta(t, 150.0, report.Recent.TotalFunds, 1e-9)
	assert.Equal(t, 1, report.Recent.SuccessfulProjects)
	assert.InDelta(t, 50.0, report.Recent.SuccessRate, 1e-9)

	// Previous window: 8-14 days before the anchor.
	require.NotNil(t, report.Previous)
	assert.Equal(t, 1, report.Previous.TotalProjects)
	assert.InDelta(t, 200.0, report.Previous.TotalFunds, 1e-9)
	assert.InDelta(t, 100.0, report.Previous.SuccessRate, 1e-9)

	require.NotNil(t, report.Deltas)
	assert.InDelta(t, 100.0, report.Deltas.TotalProjects, 1e-9)
	assert.InDelta(t, -25.0, report.Deltas.TotalFunds, 1e-9)
	assert.InDelta(t, 0.0, report.Deltas.SuccessfulProjects, 1e-9)
	assert.InDelta(t, -50.0, report.Deltas.SuccessRate, 1e-9)
}

func TestTrendsFullDatabase(t *testing.T) {
	projects := trendProjects()
	report, err := Trends(projects, FullDatabase, FullDatabase, "")
	require.NoError(t, err)

	assert.Nil(t, report.Previous)
	assert.Nil(t, report.Deltas)
	assert.Equal(t, 5, report.Recent.TotalProjects)
	assert.InDelta(t, 435.0, report.Recent.TotalFunds, 1e-9)
	assert.Equal(t, 3, report.Recent.SuccessfulProjects)
	assert.InDelta(t, 60.0, report.Recent.SuccessRate, 1e-9)

	// Period derives from the data itself.
	assert.Equal(t, daysBefore(50), report.Recent.PeriodStart)
	assert.Equal(t, daysBefore(1), report.Recent.PeriodEnd)
}

func TestTrendsEmptyPreviousWindow(t *testing.T) {
	projects := []kickstarter.Project{
		{ID: 1, Category: "games", State: "successful", PledgedUSD: 100, CalDeadline: daysBefore(1)},
	}
	report, err := Trends(projects, "games", "7d", anchorDate)
	require.NoError(t, err)

	require.NotNil(t, report.Deltas)
	assert.True(t, math.IsInf(report.Deltas.TotalProjects, 1))
	assert.True(t, math.IsInf(report.Deltas.TotalFunds, 1))
}

func TestTrendsUnknownTimeframe(t *testing.T) {
	_, err := Trends(trendProjects(), "games", "14d", anchorDate)
	assert.Error(t, err)
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+50.0%", FormatPercent(50))
	assert.Equal(t, "-25.0%", FormatPercent(-25))
	assert.Equal(t, "+0.0%", FormatPercent(0))
	assert.Equal(t, "n/a (no previous activity)", FormatPercent(math.Inf(1)))
}
