package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundlens/fundlens/internal/kickstarter"
)

func line(id int, state string) string {
	return fmt.Sprintf(`{"data":{"id":%d,"state":%q}}`, id, state)
}

func canceledLine(id int, createdAt, canceledAt, deadline int64) string {
	return fmt.Sprintf(
		`{"data":{"id":%d,"state":"canceled","created_at":%d,"state_changed_at":%d,"deadline":%d}}`,
		id, createdAt, canceledAt, deadline)
}

func TestRemainingTimePercentage(t *testing.T) {
	tests := []struct {
		name       string
		deadline   int64
		canceledAt int64
		createdAt  int64
		want       float64
	}{
		{"canceled at creation", 2000, 1000, 1000, 100},
		{"canceled at deadline", 2000, 2000, 1000, 0},
		{"canceled halfway", 2000, 1500, 1000, 50},
		{"degenerate window", 1000, 900, 1000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := remainingTimePercentage(tt.deadline, tt.canceledAt, tt.createdAt)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRunStates(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		included bool
	}{
		{"successful kept", line(1, "successful"), true},
		{"failed kept", line(1, "failed"), true},
		{"live excluded", line(1, "live"), false},
		{"suspended excluded", line(1, "suspended"), false},
		{"started excluded", line(1, "started"), false},
		{"submitted excluded", line(1, "submitted"), false},
		{"unknown state excluded", line(1, "purged"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			stats, err := Run(strings.NewReader(tt.input), &out, zap.NewNop())
			require.NoError(t, err)

			if tt.included {
				assert.Equal(t, 1, stats.Included)
				assert.NotEmpty(t, out.String())
			} else {
				assert.Equal(t, 1, stats.Excluded)
				assert.Empty(t, strings.TrimSpace(out.String()))
			}
		})
	}
}

func TestRunCanceledConversion(t *testing.T) {
	// Campaign window 1000..2000 (created_at..deadline).
	tests := []struct {
		name       string
		canceledAt int64
		converted  bool
	}{
		// 40% of the window remained: convert.
		{"late cancellation converts", 1600, true},
		// Exactly at the threshold: convert.
		{"boundary converts", 1400, true},
		// 70% remained: too early, exclude.
		{"early cancellation excludes", 1300, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			input := canceledLine(42, 1000, tt.canceledAt, 2000)
			stats, err := Run(strings.NewReader(input), &out, zap.NewNop())
			require.NoError(t, err)

			assert.Equal(t, 1, stats.Canceled.Total)
			if tt.converted {
				require.Equal(t, 1, stats.Included)
				assert.Equal(t, 1, stats.Canceled.ConvertedToFailed)

				env, err := kickstarter.DecodeEnvelope([]byte(strings.TrimSpace(out.String())))
				require.NoError(t, err)
				assert.Equal(t, "failed", env.State())
				// The rest of the record survives conversion.
				assert.Equal(t, "42", env.ID())
			} else {
				assert.Equal(t, 1, stats.Excluded)
				assert.Equal(t, 1, stats.Canceled.ExcludedEarly)
				assert.Empty(t, strings.TrimSpace(out.String()))
			}
		})
	}
}

func TestRunCanceledInvalidTimestamps(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing deadline", `{"data":{"id":1,"state":"canceled","created_at":1000,"state_changed_at":1500}}`},
		{"zero created_at", canceledLine(1, 0, 1500, 2000)},
		{"missing all", line(1, "canceled")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			stats, err := Run(strings.NewReader(tt.input), &out, zap.NewNop())
			require.NoError(t, err)

			assert.Equal(t, 1, stats.Excluded)
			assert.Equal(t, 1, stats.Canceled.InvalidTimestamps)
			assert.Zero(t, stats.Canceled.ConvertedToFailed)
			assert.Empty(t, strings.TrimSpace(out.String()))
		})
	}
}

func TestRunStatsConsistency(t *testing.T) {
	input := strings.Join([]string{
		line(1, "successful"),
		line(2, "failed"),
		line(3, "live"),
		canceledLine(4, 1000, 1600, 2000),
		canceledLine(5, 1000, 1100, 2000),
		`not json`,
	}, "\n")

	var out bytes.Buffer
	stats, err := Run(strings.NewReader(input), &out, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalProcessed)
	assert.Equal(t, stats.TotalProcessed, stats.Included+stats.Excluded)
	assert.Equal(t, 3, stats.Included)
	assert.Equal(t, 1, stats.MalformedLines)
	assert.Equal(t, 2, stats.Canceled.Total)
	assert.Equal(t, 1, stats.Canceled.ConvertedToFailed)
	assert.Equal(t, 1, stats.Canceled.ExcludedEarly)
	assert.Equal(t, []string{"canceled", "failed", "live", "successful"}, stats.SortedStates())

	// Stats marshal cleanly for the --stats file.
	_, err = json.Marshal(stats)
	require.NoError(t, err)
}

func TestRunIdempotent(t *testing.T) {
	input := strings.Join([]string{
		line(1, "successful"),
		line(2, "failed"),
		canceledLine(3, 1000, 1700, 2000),
		line(4, "live"),
	}, "\n")

	var first bytes.Buffer
	firstStats, err := Run(strings.NewReader(input), &first, zap.NewNop())
	require.NoError(t, err)

	var second bytes.Buffer
	secondStats, err := Run(strings.NewReader(first.String()), &second, zap.NewNop())
	require.NoError(t, err)

	// Converted projects are already failed, so a second pass changes nothing.
	assert.Equal(t, firstStats.Included, secondStats.Included)
	assert.Zero(t, secondStats.Excluded)
	assert.Zero(t, secondStats.Canceled.Total)
	assert.Equal(t, nonEmptyLineCount(first.String()), nonEmptyLineCount(second.String()))
}

func nonEmptyLineCount(s string) int {
	n := 0
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}
