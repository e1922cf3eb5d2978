// Package dedupe removes duplicate projects from a raw scrape dump.
package dedupe

import (
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/fundlens/fundlens/internal/kickstarter"
)

// Group records one project id that appeared more than once.
type Group struct {
	ProjectID   string `json:"project_id"`
	Occurrences int    `json:"occurrences"`
}

// Stats summarizes a deduplication run.
type Stats struct {
	TotalProjects     int            `json:"total_projects"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	UniqueProjects    int            `json:"unique_projects"`
	MalformedLines    int            `json:"malformed_lines"`
	ByState           map[string]int `json:"by_state"`
	DuplicateGroups   []Group        `json:"duplicate_groups"`
}

// Run streams scrape lines from in, writing the first occurrence of every
// project id to out. Records without an id are kept; malformed lines are
// logged and skipped.
func Run(in io.Reader, out io.Writer, logger *zap.Logger) (*Stats, error) {
	stats := &Stats{ByState: make(map[string]int)}
	seen := make(map[string]int)

	err := kickstarter.ForEachLine(in, func(n int, line []byte) error {
		stats.TotalProjects++

		env, err := kickstarter.DecodeEnvelope(line)
		if err != nil {
			stats.MalformedLines++
			logger.Warn("skipping malformed line",
				zap.Int("line", n),
				zap.Error(err),
			)
			return nil
		}

		id := env.ID()
		if id != "" {
			seen[id]++
			if seen[id] > 1 {
				stats.DuplicatesRemoved++
				return nil
			}
		}

		if state := env.State(); state != "" {
			stats.ByState[state]++
		}

		if _, err := out.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats.UniqueProjects = len(seen)
	for id, count := range seen {
		if count > 1 {
			stats.DuplicateGroups = append(stats.DuplicateGroups, Group{
				ProjectID:   id,
				Occurrences: count,
			})
		}
	}
	sort.Slice(stats.DuplicateGroups, func(i, j int) bool {
		return stats.DuplicateGroups[i].ProjectID < stats.DuplicateGroups[j].ProjectID
	})

	logger.Info("duplicate removal completed",
		zap.Int("total", stats.TotalProjects),
		zap.Int("removed", stats.DuplicatesRemoved),
		zap.Int("unique", stats.UniqueProjects),
	)
	return stats, nil
}
