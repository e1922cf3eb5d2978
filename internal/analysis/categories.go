package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fundlens/fundlens/internal/kickstarter"
)

// GroupMetrics are the aggregate figures for one category or subcategory.
type GroupMetrics struct {
	Name               string  `json:"name"`
	TotalProjects      int     `json:"total_projects"`
	TotalFunds         float64 `json:"total_funds"`
	SuccessfulProjects int     `json:"successful_projects"`
	SuccessRate        float64 `json:"success_rate"`
}

// CategoryReport breaks the window down by category and subcategory.
type CategoryReport struct {
	Timeframe     string         `json:"timeframe"`
	SortBy        string         `json:"sort_by"`
	Categories    []GroupMetrics `json:"categories"`
	Subcategories []GroupMetrics `json:"subcategories"`
}

// Categories computes per-category and per-subcategory metrics for the
// window. sortBy is "projects" or "funds".
func Categories(projects []kickstarter.Project, timeframe, endDate, sortBy string) (*CategoryReport, error) {
	if sortBy != "projects" && sortBy != "funds" {
		return nil, fmt.Errorf("unknown sort key %q (valid: projects, funds)", sortBy)
	}
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

	byCategory := make(map[string]*GroupMetrics)
	bySubcategory := make(map[string]*GroupMetrics)
	for _, p := range windowed {
		accumulate(byCategory, titleCase(p.Category), p)
		if p.Subcategory != "" && p.Subcategory != p.Category {
			accumulate(bySubcategory, p.Subcategory, p)
		}
	}

	report := &CategoryReport{
		Timeframe:     timeframe,
		SortBy:        sortBy,
		Categories:    finalize(byCategory, sortBy),
		Subcategories: finalize(bySubcategory, sortBy),
	}
	return report, nil
}

// titleCase uppercases the first letter of each word, matching how
// category names are displayed on the site.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func accumulate(groups map[string]*GroupMetrics, name string, p kickstarter.Project) {
	g, ok := groups[name]
	if !ok {
		g = &GroupMetrics{Name: name}
		groups[name] = g
	}
	g.TotalProjects++
	g.TotalFunds += p.PledgedUSD
	if p.State == "successful" {
		g.SuccessfulProjects++
	}
}

func finalize(groups map[string]*GroupMetrics, sortBy string) []GroupMetrics {
	out := make([]GroupMetrics, 0, len(groups))
	for _, g := range groups {
		if g.TotalProjects > 0 {
			g.SuccessRate = float64(g.SuccessfulProjects) / float64(g.TotalProjects) * 100
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if sortBy == "funds" {
			if out[i].TotalFunds != out[j].TotalFunds {
				return out[i].TotalFunds > out[j].TotalFunds
			}
		} else if out[i].TotalProjects != out[j].TotalProjects {
			return out[i].TotalProjects > out[j].TotalProjects
		}
		return out[i].Name < out[j].Name
	})
	return out
}
