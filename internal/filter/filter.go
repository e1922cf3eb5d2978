// Package filter retains projects whose lifecycle state is usable for
// training and applies the canceled-conversion rule.
package filter

import (
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/fundlens/fundlens/internal/kickstarter"
)

// ConversionThreshold is the maximum percentage of campaign time that may
// remain at cancellation for a canceled project to count as failed.
// Cancellations earlier than that say nothing about whether the campaign
// would have funded, so those projects are excluded.
const ConversionThreshold = 60.0

// excludedStates never reach the filtered dataset: their outcome is not
// known yet.
var excludedStates = map[string]bool{
	"suspended": true,
	"started":   true,
	"live":      true,
	"submitted": true,
}

// CanceledStats breaks down how canceled projects were handled.
type CanceledStats struct {
	Total             int            `json:"total"`
	ConvertedToFailed int            `json:"converted_to_failed"`
	ExcludedEarly     int            `json:"excluded_early"`
	InvalidTimestamps int            `json:"invalid_timestamps"`
	ByTimeRemaining   map[string]int `json:"by_time_remaining"`
}

// Stats summarizes a filtering run.
type Stats struct {
	TotalProcessed int            `json:"total_processed"`
	Included       int            `json:"included"`
	Excluded       int            `json:"excluded"`
	MalformedLines int            `json:"malformed_lines"`
	ByState        map[string]int `json:"by_state"`
	Canceled       CanceledStats  `json:"canceled"`
}

// decision is the outcome of evaluating one project.
type decision int

const (
	exclude decision = iota
	include
	convertToFailed
)

// remainingTimePercentage computes how much of the campaign window was left
// at cancellation: (deadline - canceled_at) / (deadline - created_at) * 100.
func remainingTimePercentage(deadline, canceledAt, createdAt int64) float64 {
	total := deadline - createdAt
	if total <= 0 {
		return 0
	}
	return float64(deadline-canceledAt) / float64(total) * 100
}

// evaluate decides whether a project survives filtering. For canceled
// projects the returned percentage is the time remaining at cancellation.
func evaluate(env kickstarter.Envelope) (decision, float64) {
	state := env.State()

	if excludedStates[state] {
		return exclude, 0
	}

	switch state {
	case "successful", "failed":
		return include, 0
	case "canceled":
		deadline, okD := env.Timestamp("deadline")
		canceledAt, okC := env.Timestamp("state_changed_at")
		createdAt, okB := env.Timestamp("created_at")
		if !okD || !okC || !okB || deadline == 0 || canceledAt == 0 || createdAt == 0 {
			return exclude, -1 // invalid timestamps
		}
		remaining := remainingTimePercentage(deadline, canceledAt, createdAt)
		if remaining <= ConversionThreshold {
			return convertToFailed, remaining
		}
		return exclude, remaining
	default:
		// unknown state
		return exclude, 0
	}
}

// Run streams scrape lines from in to out, keeping successful and failed
// projects and converting qualifying canceled projects to failed.
func Run(in io.Reader, out io.Writer, logger *zap.Logger) (*Stats, error) {
	stats := &Stats{
		ByState:  make(map[string]int),
		Canceled: CanceledStats{ByTimeRemaining: make(map[string]int)},
	}

	err := kickstarter.ForEachLine(in, func(n int, line []byte) error {
		stats.TotalProcessed++

		env, err := kickstarter.DecodeEnvelope(line)
		if err != nil {
			stats.MalformedLines++
			stats.Excluded++
			logger.Warn("skipping malformed line",
				zap.Int("line", n),
				zap.Error(err),
			)
			return nil
		}

		state := env.State()
		stats.ByState[state]++
		if state == "canceled" {
			stats.Canceled.Total++
		}

		d, remaining := evaluate(env)
		if state == "canceled" {
			switch {
			case remaining < 0:
				stats.Canceled.InvalidTimestamps++
			case d == convertToFailed:
				stats.Canceled.ConvertedToFailed++
				stats.Canceled.ByTimeRemaining[bucket(remaining)]++
			default:
				stats.Canceled.ExcludedEarly++
				stats.Canceled.ByTimeRemaining[bucket(remaining)]++
			}
		}

		if d == exclude {
			stats.Excluded++
			return nil
		}

		if d == convertToFailed {
			env.SetState("failed")
			encoded, err := env.Encode()
			if err != nil {
				stats.Excluded++
				logger.Error("re-encoding converted project",
					zap.String("project_id", env.ID()),
					zap.Error(err),
				)
				return nil
			}
			line = encoded
		}

		if _, err := out.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		stats.Included++
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("filtering completed",
		zap.Int("total", stats.TotalProcessed),
		zap.Int("included", stats.Included),
		zap.Int("excluded", stats.Excluded),
		zap.Int("canceled_converted", stats.Canceled.ConvertedToFailed),
		zap.Int("canceled_excluded", stats.Canceled.ExcludedEarly),
	)
	return stats, nil
}

// bucket groups a time-remaining percentage for the stats histogram.
func bucket(remaining float64) string {
	return fmt.Sprintf("%.1f%%", remaining)
}

// SortedStates returns the observed states in lexical order, for report
// output stability.
func (s *Stats) SortedStates() []string {
	states := make([]string, 0, len(s.ByState))
	for state := range s.ByState {
		states = append(states, state)
	}
	sort.Strings(states)
	return states
}
