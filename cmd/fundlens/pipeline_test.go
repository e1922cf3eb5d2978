package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundlens/fundlens/internal/dedupe"
	"github.com/fundlens/fundlens/internal/filter"
	"github.com/fundlens/fundlens/internal/kickstarter"
	"github.com/fundlens/fundlens/internal/webdb"
)

// TestPipelineStages runs a raw dump through dedupe, filter and the
// web-database builder in sequence, the way the CLI chains them.
func TestPipelineStages(t *testing.T) {
	raw := strings.Join([]string{
		`{"data":{"id":1,"state":"successful","goal":100,"pledged":250,"static_usd_rate":1.0,"backers_count":5,"launched_at":1600000000,"deadline":1602592000,"category":{"slug":"games/tabletop games"}}}`,
		`{"data":{"id":1,"state":"successful","goal":100,"pledged":250}}`,
		`{"data":{"id":2,"state":"live","goal":50}}`,
	}, "\n")

	var deduped bytes.Buffer
	dedupeStats, err := dedupe.Run(strings.NewReader(raw), &deduped, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, dedupeStats.TotalProjects)
	assert.Equal(t, 1, dedupeStats.DuplicatesRemoved)
	assert.Equal(t, 2, dedupeStats.UniqueProjects)

	var filtered bytes.Buffer
	filterStats, err := filter.Run(strings.NewReader(deduped.String()), &filtered, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, filterStats.TotalProcessed)
	assert.Equal(t, 1, filterStats.Included)
	assert.Equal(t, 1, filterStats.Excluded)

	var database bytes.Buffer
	webdbStats, err := webdb.NewBuilder(zap.NewNop()).Run(strings.NewReader(filtered.String()), &database)
	require.NoError(t, err)
	assert.Equal(t, 1, webdbStats.Included)

	var projects []kickstarter.Project
	require.NoError(t, json.Unmarshal(database.Bytes(), &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, int64(1), projects[0].ID)
	assert.Equal(t, "successful", projects[0].State)
	assert.Equal(t, "games", projects[0].Category)
	assert.Equal(t, 30, projects[0].CampaignDuration)
}

// TestPipelineCanceledConversion verifies a late cancellation survives the
// full chain as a failed project.
func TestPipelineCanceledConversion(t *testing.T) {
	raw := fmt.Sprintf(
		`{"data":{"id":9,"state":"canceled","created_at":%d,"state_changed_at":%d,"deadline":%d,"goal":10}}`,
		1600000000, 1600000000+800000, 1600000000+1000000)

	var filtered bytes.Buffer
	filterStats, err := filter.Run(strings.NewReader(raw), &filtered, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, filterStats.Included)
	assert.Equal(t, 1, filterStats.Canceled.ConvertedToFailed)

	var database bytes.Buffer
	_, err = webdb.NewBuilder(nil).Run(strings.NewReader(filtered.String()), &database)
	require.NoError(t, err)

	var projects []kickstarter.Project
	require.NoError(t, json.Unmarshal(database.Bytes(), &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "failed", projects[0].State)
}

func TestRootCommandWiring(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"dedupe", "filter", "webdb", "preinput", "features", "validate", "analyze"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	var analyzeNames []string
	for _, c := range analyzeCmd.Commands() {
		analyzeNames = append(analyzeNames, c.Name())
	}
	assert.Contains(t, analyzeNames, "trends")
	assert.Contains(t, analyzeNames, "categories")
	assert.Contains(t, analyzeNames, "backers")
}
