package dedupe

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func line(id int, state string) string {
	return fmt.Sprintf(`{"data":{"id":%d,"state":%q}}`, id, state)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name          string
		input         []string
		wantLines     int
		wantRemoved   int
		wantUnique    int
		wantMalformed int
		wantByState   map[string]int
	}{
		{
			name: "duplicate id keeps first occurrence",
			input: []string{
				line(1, "successful"),
				line(1, "successful"),
				line(2, "live"),
			},
			wantLines:   2,
			wantRemoved: 1,
			wantUnique:  2,
			wantByState: map[string]int{"successful": 1, "live": 1},
		},
		{
			name: "no duplicates",
			input: []string{
				line(1, "failed"),
				line(2, "failed"),
			},
			wantLines:   2,
			wantRemoved: 0,
			wantUnique:  2,
			wantByState: map[string]int{"failed": 2},
		},
		{
			name: "malformed lines are skipped",
			input: []string{
				line(1, "successful"),
				`{"data":`,
				line(2, "failed"),
			},
			wantLines:     2,
			wantRemoved:   0,
			wantUnique:    2,
			wantMalformed: 1,
			wantByState:   map[string]int{"successful": 1, "failed": 1},
		},
		{
			name: "records without id are kept",
			input: []string{
				`{"data":{"state":"successful"}}`,
				`{"data":{"state":"failed"}}`,
			},
			wantLines:   2,
			wantRemoved: 0,
			wantUnique:  0,
			wantByState: map[string]int{"successful": 1, "failed": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			stats, err := Run(strings.NewReader(strings.Join(tt.input, "\n")), &out, zap.NewNop())
			require.NoError(t, err)

			got := nonEmptyLines(out.String())
			assert.Len(t, got, tt.wantLines)
			assert.Equal(t, len(tt.input), stats.TotalProjects)
			assert.Equal(t, tt.wantRemoved, stats.DuplicatesRemoved)
			assert.Equal(t, tt.wantUnique, stats.UniqueProjects)
			assert.Equal(t, tt.wantMalformed, stats.MalformedLines)
			assert.Equal(t, tt.wantByState, stats.ByState)
		})
	}
}

func TestRunFirstOccurrenceWins(t *testing.T) {
	input := strings.Join([]string{
		`{"data":{"id":7,"state":"successful","name":"first"}}`,
		`{"data":{"id":7,"state":"failed","name":"second"}}`,
	}, "\n")

	var out bytes.Buffer
	stats, err := Run(strings.NewReader(input), &out, zap.NewNop())
	require.NoError(t, err)

	got := nonEmptyLines(out.String())
	require.Len(t, got, 1)
	assert.Contains(t, got[0], `"first"`)

	require.Len(t, stats.DuplicateGroups, 1)
	assert.Equal(t, "7", stats.DuplicateGroups[0].ProjectID)
	assert.Equal(t, 2, stats.DuplicateGroups[0].Occurrences)
}

func TestRunIdempotent(t *testing.T) {
	input := strings.Join([]string{
		line(1, "successful"),
		line(1, "successful"),
		line(2, "failed"),
		line(3, "canceled"),
		line(3, "canceled"),
		line(3, "canceled"),
	}, "\n")

	var first bytes.Buffer
	_, err := Run(strings.NewReader(input), &first, zap.NewNop())
	require.NoError(t, err)

	var second bytes.Buffer
	stats, err := Run(strings.NewReader(first.String()), &second, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String())
	assert.Zero(t, stats.DuplicatesRemoved)
	assert.Empty(t, stats.DuplicateGroups)
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
