// Package kickstarter defines the record types flowing between pipeline
// stages and the streaming readers/writers that move them.
package kickstarter

// RawProject is the typed view of a scrape payload used by the web-database
// builder. Fields the builder does not consume are left to the Envelope.
type RawProject struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Blurb          string      `json:"blurb"`
	State          string      `json:"state"`
	Goal           float64     `json:"goal"`
	Pledged        float64     `json:"pledged"`
	StaticUSDRate  float64     `json:"static_usd_rate"`
	Currency       string      `json:"currency"`
	BackersCount   int         `json:"backers_count"`
	Country        string      `json:"country"`
	PercentFunded  float64     `json:"percent_funded"`
	StaffPick      bool        `json:"staff_pick"`
	CreatedAt      int64       `json:"created_at"`
	LaunchedAt     int64       `json:"launched_at"`
	Deadline       int64       `json:"deadline"`
	StateChangedAt int64       `json:"state_changed_at"`
	Category       RawCategory `json:"category"`
	Location       RawLocation `json:"location"`
	Creator        RawCreator  `json:"creator"`
	URLs           RawURLs     `json:"urls"`

	// Captured by the page scraper; absent in API-only dumps.
	Description string `json:"description"`
	Risk        string `json:"risk"`
	ImageCount  *int   `json:"image_count"`
	VideoCount  *int   `json:"video_count"`
}

// RawEnvelope wraps one scrape line for typed decoding.
type RawEnvelope struct {
	Data RawProject `json:"data"`
}

// RawCategory carries the category slug ("games/tabletop games").
type RawCategory struct {
	Slug string `json:"slug"`
}

// RawLocation carries the campaign location.
type RawLocation struct {
	Name            string `json:"name"`
	ExpandedCountry string `json:"expanded_country"`
}

// RawCreator carries the creator id and profile links.
type RawCreator struct {
	ID   int64   `json:"id"`
	URLs RawURLs `json:"urls"`
}

// RawURLs carries the nested web links block.
type RawURLs struct {
	Web RawWebURLs `json:"web"`
}

// RawWebURLs carries the individual page links.
type RawWebURLs struct {
	Project string `json:"project"`
	User    string `json:"user"`
}

// Links holds the outbound links kept in the web database.
type Links struct {
	Project string `json:"project"`
	Creator string `json:"creator"`
}

// Project is one normalized web-database row. Every row has a non-zero id
// and non-empty state, goal and category; goal and pledged are always USD.
type Project struct {
	ID               int64   `json:"id"`
	State            string  `json:"state"`
	Name             string  `json:"name"`
	Blurb            string  `json:"blurb"`
	Category         string  `json:"category"`
	Subcategory      string  `json:"subcategory"`
	Country          string  `json:"country"`
	Location         string  `json:"location"`
	GoalUSD          float64 `json:"goal_usd"`
	PledgedUSD       float64 `json:"pledged_usd"`
	BackersCount     int     `json:"backers_count"`
	Currency         string  `json:"currency"`
	CalLaunchedAt    int64   `json:"cal_launched_at"`
	CalDeadline      int64   `json:"cal_deadline"`
	LaunchedAt       string  `json:"launched_at"`
	Deadline         string  `json:"deadline"`
	CampaignDuration int     `json:"campaign_duration"`
	PercentFunded    float64 `json:"percent_funded"`
	PledgePerBacker  float64 `json:"pledge_per_backer"`
	IsStaffPick      bool    `json:"is_staff_pick"`
	Links            Links   `json:"links"`
	CreatorID        int64   `json:"creator_id,omitempty"`
	ImageCount       int     `json:"image_count"`
	VideoCount       int     `json:"video_count"`
	Description      string  `json:"description,omitempty"`
	Risk             string  `json:"risk,omitempty"`
}

// DescriptionRecord is one row of an external page-scrape file used to
// enrich the pre-input stage when descriptions were scraped separately.
type DescriptionRecord struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Risk        string `json:"risk"`
	ImageCount  *int   `json:"image_count"`
	VideoCount  *int   `json:"video_count"`
}

// PreInput is one model-input row keyed by project id: cleaned text plus
// the creator-history metrics computed over the web database.
type PreInput struct {
	Description                string  `json:"description"`
	Blurb                      string  `json:"blurb"`
	Risk                       string  `json:"risk"`
	Subcategory                string  `json:"subcategory"`
	Category                   string  `json:"category"`
	Country                    string  `json:"country"`
	DescriptionLength          int     `json:"description_length"`
	FundingGoal                float64 `json:"funding_goal"`
	ImageCount                 int     `json:"image_count"`
	VideoCount                 int     `json:"video_count"`
	CampaignDuration           int     `json:"campaign_duration"`
	PreviousProjects           int     `json:"previous_projects"`
	PreviousSuccessfulProjects int     `json:"previous_successful_projects"`
	PreviousFailedProjects     int     `json:"previous_failed_projects"`
	HavePreviousProject        int     `json:"have_previous_project"`
	AverageFundingGoal         float64 `json:"average_funding_goal"`
	AveragePledged             float64 `json:"average_pledged"`
	State                      int     `json:"state"`
}

// FeatureRow is the final per-campaign output: numeric features plus
// fixed-width embedding vectors, ready for model training.
type FeatureRow struct {
	ID                    string    `json:"id"`
	DescriptionEmbedding  []float32 `json:"description_embedding"`
	DescriptionLength     int       `json:"description_length"`
	BlurbEmbedding        []float32 `json:"blurb_embedding"`
	RiskEmbedding         []float32 `json:"risk_embedding"`
	CategoryEmbedding     []int     `json:"category_embedding"`
	SubcategoryEmbedding  []float32 `json:"subcategory_embedding"`
	CountryEmbedding      []float32 `json:"country_embedding"`
	FundingGoal           float64   `json:"funding_goal"`
	ImageCount            int       `json:"image_count"`
	VideoCount            int       `json:"video_count"`
	CampaignDuration      int       `json:"campaign_duration"`
	PreviousProjectsCount int       `json:"previous_projects_count"`
	PreviousSuccessRate   float64   `json:"previous_success_rate"`
	PreviousPledged       float64   `json:"previous_pledged"`
	PreviousFundingGoal   float64   `json:"previous_funding_goal"`
	State                 int       `json:"state"`
}
