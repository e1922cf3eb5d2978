// Package preinput assembles the feature-processor input: cleaned campaign
// text joined with creator-history metrics computed over the web database.
package preinput

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/fundlens/fundlens/internal/kickstarter"
)

// Build produces the pre-input map keyed by project id.
//
// When descriptions is non-empty, it is treated as the authoritative source
// of page-scraped text and the output covers exactly those ids; an id
// missing from the web database is an input-consistency error. When
// descriptions is empty, the text embedded in the web database itself is
// used and every project produces a row.
func Build(projects []kickstarter.Project, descriptions []kickstarter.DescriptionRecord, logger *zap.Logger) (map[string]kickstarter.PreInput, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	byID := make(map[int64]*kickstarter.Project, len(projects))
	byCreator := make(map[int64][]*kickstarter.Project)
	for i := range projects {
		p := &projects[i]
		byID[p.ID] = p
		if p.CreatorID != 0 {
			byCreator[p.CreatorID] = append(byCreator[p.CreatorID], p)
		}
	}

	out := make(map[string]kickstarter.PreInput)

	if len(descriptions) > 0 {
		for _, desc := range descriptions {
			project, ok := byID[desc.ID]
			if !ok {
				return nil, fmt.Errorf("project %d present in descriptions but missing from web database", desc.ID)
			}
			row := buildRow(project, desc.Description, desc.Risk, byCreator)
			if desc.ImageCount != nil {
				row.ImageCount = *desc.ImageCount
			}
			if desc.VideoCount != nil {
				row.VideoCount = *desc.VideoCount
			}
			out[strconv.FormatInt(desc.ID, 10)] = row
		}
	} else {
		for i := range projects {
			p := &projects[i]
			out[strconv.FormatInt(p.ID, 10)] = buildRow(p, p.Description, p.Risk, byCreator)
		}
	}

	logger.Info("pre-input build completed",
		zap.Int("projects", len(projects)),
		zap.Int("rows", len(out)),
	)
	return out, nil
}

// buildRow assembles one pre-input row for a project.
func buildRow(project *kickstarter.Project, description, risk string, byCreator map[int64][]*kickstarter.Project) kickstarter.PreInput {
	cleanedDescription := CleanText(description)

	history := creatorHistory(project, byCreator)

	state := 0
	if project.State == "successful" {
		state = 1
	}

	return kickstarter.PreInput{
		Description:                cleanedDescription,
		Blurb:                      CleanBlurb(project.Blurb),
		Risk:                       CleanText(risk),
		Subcategory:                project.Subcategory,
		Category:                   project.Category,
		Country:                    project.Country,
		DescriptionLength:          wordCount(cleanedDescription),
		FundingGoal:                project.GoalUSD,
		ImageCount:                 project.ImageCount,
		VideoCount:                 project.VideoCount,
		CampaignDuration:           project.CampaignDuration,
		PreviousProjects:           history.total,
		PreviousSuccessfulProjects: history.successful,
		PreviousFailedProjects:     history.failed,
		HavePreviousProject:        history.have,
		AverageFundingGoal:         history.avgGoal,
		AveragePledged:             history.avgPledged,
		State:                      state,
	}
}

type history struct {
	total      int
	successful int
	failed     int
	have       int
	avgGoal    float64
	avgPledged float64
}

// creatorHistory summarizes the creator's past campaigns: everything by the
// same creator whose deadline fell before this project's launch.
func creatorHistory(project *kickstarter.Project, byCreator map[int64][]*kickstarter.Project) history {
	var h history
	if project.CreatorID == 0 {
		return h
	}

	var sumGoal, sumPledged float64
	for _, past := range byCreator[project.CreatorID] {
		if past.ID == project.ID || past.CalDeadline >= project.CalLaunchedAt {
			continue
		}
		h.total++
		sumGoal += past.GoalUSD
		sumPledged += past.PledgedUSD
		switch past.State {
		case "successful":
			h.successful++
		case "failed":
			h.failed++
		}
	}
	if h.total > 0 {
		h.have = 1
		h.avgGoal = sumGoal / float64(h.total)
		h.avgPledged = sumPledged / float64(h.total)
	}
	return h
}
