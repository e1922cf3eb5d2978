// Package webdb builds the normalized web database from filtered scrape
// lines. Its output schema is the contract for the analysis commands and
// the pre-input stage.
package webdb

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fundlens/fundlens/internal/kickstarter"
)

// excludedStates are projects still in flight; they carry no outcome and
// are dropped here as well in case the builder runs on unfiltered input.
var excludedStates = map[string]bool{
	"submitted": true,
	"live":      true,
	"started":   true,
}

// Stats summarizes a web-database build.
type Stats struct {
	TotalProcessed  int            `json:"total_processed"`
	Included        int            `json:"included"`
	Excluded        int            `json:"excluded"`
	ByState         map[string]int `json:"by_state"`
	ExcludedByState map[string]int `json:"excluded_by_state"`
	ByCategory      map[string]int `json:"by_category"`
	Errors          map[string]int `json:"errors"`
}

// Builder maps raw scrape records onto the normalized schema.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Run streams scrape lines from in and writes a JSON array of normalized
// projects to out. A malformed record is logged and skipped, never fatal.
func (b *Builder) Run(in io.Reader, out io.Writer) (*Stats, error) {
	stats := &Stats{
		ByState:         make(map[string]int),
		ExcludedByState: make(map[string]int),
		ByCategory:      make(map[string]int),
		Errors:          make(map[string]int),
	}

	w := kickstarter.NewArrayWriter(out)

	err := kickstarter.ForEachLine(in, func(n int, line []byte) error {
		stats.TotalProcessed++

		var env kickstarter.RawEnvelope
		if err := json.Unmarshal(line, &env); err != nil {
			stats.Errors["json_decode"]++
			stats.Excluded++
			b.logger.Warn("skipping malformed line",
				zap.Int("line", n),
				zap.Error(err),
			)
			return nil
		}

		project, ok := b.build(env.Data, stats)
		if !ok {
			stats.Excluded++
			return nil
		}

		if err := w.Write(project); err != nil {
			return fmt.Errorf("writing project %d: %w", project.ID, err)
		}
		stats.Included++
		if stats.Included%1000 == 0 {
			b.logger.Info("progress", zap.Int("included", stats.Included))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing output: %w", err)
	}

	b.logger.Info("web database completed",
		zap.Int("total", stats.TotalProcessed),
		zap.Int("included", stats.Included),
		zap.Int("excluded", stats.Excluded),
	)
	return stats, nil
}

// build normalizes one raw project. The bool is false when the record is
// excluded or unusable.
func (b *Builder) build(data kickstarter.RawProject, stats *Stats) (kickstarter.Project, bool) {
	state := strings.ToLower(data.State)
	stats.ByState[state]++

	if excludedStates[state] {
		stats.ExcludedByState[state]++
		return kickstarter.Project{}, false
	}
	if data.ID == 0 || state == "" {
		stats.Errors["missing_identity"]++
		b.logger.Warn("skipping record without id or state", zap.Int64("id", data.ID))
		return kickstarter.Project{}, false
	}

	usdRate := data.StaticUSDRate
	if usdRate == 0 {
		usdRate = 1
	}
	goalUSD := data.Goal * usdRate
	pledgedUSD := data.Pledged * usdRate

	pledgePerBacker := 0.0
	if data.BackersCount > 0 {
		pledgePerBacker = round2(pledgedUSD / float64(data.BackersCount))
	}

	parentCategory := "unknown"
	if data.Category.Slug != "" {
		parentCategory = strings.SplitN(data.Category.Slug, "/", 2)[0]
	}
	stats.ByCategory[parentCategory]++

	imageCount, videoCount := b.mediaCounts(data)

	return kickstarter.Project{
		ID:               data.ID,
		State:            state,
		Name:             data.Name,
		Blurb:            data.Blurb,
		Category:         parentCategory,
		Subcategory:      data.Category.Slug,
		Country:          data.Location.ExpandedCountry,
		Location:         data.Location.Name,
		GoalUSD:          goalUSD,
		PledgedUSD:       pledgedUSD,
		BackersCount:     data.BackersCount,
		Currency:         data.Currency,
		CalLaunchedAt:    data.LaunchedAt,
		CalDeadline:      data.Deadline,
		LaunchedAt:       formatDate(data.LaunchedAt),
		Deadline:         formatDate(data.Deadline),
		CampaignDuration: durationDays(data.LaunchedAt, data.Deadline),
		PercentFunded:    data.PercentFunded,
		PledgePerBacker:  pledgePerBacker,
		IsStaffPick:      data.StaffPick,
		Links: kickstarter.Links{
			Project: data.URLs.Web.Project,
			Creator: data.Creator.URLs.Web.User,
		},
		CreatorID:   data.Creator.ID,
		ImageCount:  imageCount,
		VideoCount:  videoCount,
		Description: data.Description,
		Risk:        data.Risk,
	}, true
}

// mediaCounts returns the scraper-provided media counts, falling back to
// counting tags in the description HTML when the scraper omitted them.
func (b *Builder) mediaCounts(data kickstarter.RawProject) (int, int) {
	if data.ImageCount != nil && data.VideoCount != nil {
		return *data.ImageCount, *data.VideoCount
	}
	if data.Description == "" {
		return 0, 0
	}
	images, videos, err := CountMedia(data.Description)
	if err != nil {
		b.logger.Warn("counting media in description",
			zap.Int64("id", data.ID),
			zap.Error(err),
		)
		return 0, 0
	}
	return images, videos
}

// formatDate converts a unix timestamp to dd/mm/yyyy, or "" when zero.
func formatDate(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format("02/01/2006")
}

// durationDays computes the whole days between launch and deadline.
func durationDays(launched, deadline int64) int {
	if launched == 0 || deadline == 0 || deadline < launched {
		return 0
	}
	return int(time.Unix(deadline, 0).Sub(time.Unix(launched, 0)).Hours() / 24)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
