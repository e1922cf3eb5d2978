package features

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/fundlens/fundlens/internal/kickstarter"
)

// Sink receives description embeddings as rows are produced. Used to feed
// the optional embedded vector store.
type Sink interface {
	Store(ctx context.Context, id string, text string, embedding []float32) error
}

// Processor turns pre-input rows into feature rows. A single record's
// failure never aborts the batch: failed embeddings degrade to zero
// vectors of the correct width.
type Processor struct {
	long       Encoder
	short      Encoder
	words      Encoder
	categories []string
	logger     *zap.Logger
}

// NewProcessor creates a Processor. The one-hot category vocabulary is the
// sorted set of categories observed in inputs.
func NewProcessor(long, short, words Encoder, inputs map[string]kickstarter.PreInput, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}

	seen := make(map[string]bool)
	for _, row := range inputs {
		seen[row.Category] = true
	}
	categories := make([]string, 0, len(seen))
	for cat := range seen {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	return &Processor{
		long:       long,
		short:      short,
		words:      words,
		categories: categories,
		logger:     logger,
	}
}

// Categories returns the one-hot vocabulary in encoding order.
func (p *Processor) Categories() []string {
	return p.categories
}

// Process computes the feature row for a single campaign.
func (p *Processor) Process(ctx context.Context, id string, row kickstarter.PreInput) kickstarter.FeatureRow {
	return kickstarter.FeatureRow{
		ID:                    id,
		DescriptionEmbedding:  p.embed(ctx, p.long, id, "description", row.Description),
		DescriptionLength:     row.DescriptionLength,
		BlurbEmbedding:        p.embed(ctx, p.short, id, "blurb", row.Blurb),
		RiskEmbedding:         p.embed(ctx, p.short, id, "risk", row.Risk),
		CategoryEmbedding:     p.oneHotCategory(row.Category),
		SubcategoryEmbedding:  p.embed(ctx, p.words, id, "subcategory", row.Subcategory),
		CountryEmbedding:      p.embed(ctx, p.words, id, "country", row.Country),
		FundingGoal:           LogCompress(row.FundingGoal),
		ImageCount:            row.ImageCount,
		VideoCount:            row.VideoCount,
		CampaignDuration:      row.CampaignDuration,
		PreviousProjectsCount: row.PreviousProjects,
		PreviousSuccessRate:   SuccessRate(row.PreviousSuccessfulProjects, row.PreviousProjects),
		PreviousPledged:       LogCompress(row.AveragePledged),
		PreviousFundingGoal:   LogCompress(row.AverageFundingGoal),
		State:                 row.State,
	}
}

// embed encodes text, degrading to the zero vector for missing text and
// inference errors.
func (p *Processor) embed(ctx context.Context, enc Encoder, id, field, text string) []float32 {
	if text == "" {
		return ZeroVector(enc.Dimension())
	}
	vec, err := enc.Encode(ctx, text)
	if err != nil {
		p.logger.Warn("embedding failed, using zero vector",
			zap.String("campaign_id", id),
			zap.String("field", field),
			zap.Error(err),
		)
		return ZeroVector(enc.Dimension())
	}
	if len(vec) != enc.Dimension() {
		p.logger.Warn("unexpected embedding width, using zero vector",
			zap.String("campaign_id", id),
			zap.String("field", field),
			zap.Int("got", len(vec)),
			zap.Int("want", enc.Dimension()),
		)
		return ZeroVector(enc.Dimension())
	}
	return vec
}

// oneHotCategory encodes the category over the observed vocabulary.
// Unknown categories encode to all zeros.
func (p *Processor) oneHotCategory(category string) []int {
	encoding := make([]int, len(p.categories))
	for i, cat := range p.categories {
		if cat == category {
			encoding[i] = 1
		}
	}
	return encoding
}

// LogCompress applies log1p base 10: compresses extreme monetary values
// while preserving relative differences.
func LogCompress(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Log1p(v) / math.Ln10
}

// SuccessRate is the creator's past success ratio, zero when there is
// nothing to measure.
func SuccessRate(successful, total int) float64 {
	if successful == 0 || total == 0 {
		return 0
	}
	return float64(successful) / float64(total)
}

// Run processes every pre-input row in ascending id order, streaming
// feature rows to out. When sink is non-nil, description embeddings are
// forwarded to it as well; sink errors are logged, not fatal.
func (p *Processor) Run(ctx context.Context, inputs map[string]kickstarter.PreInput, out io.Writer, sink Sink) (int, error) {
	ids := sortedIDs(inputs)

	w := kickstarter.NewArrayWriter(out)
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return w.Count(), err
		}

		row := p.Process(ctx, id, inputs[id])
		if err := w.Write(row); err != nil {
			return w.Count(), fmt.Errorf("writing feature row %s: %w", id, err)
		}

		if sink != nil && inputs[id].Description != "" {
			if err := sink.Store(ctx, id, inputs[id].Description, row.DescriptionEmbedding); err != nil {
				p.logger.Warn("storing embedding in vector sink",
					zap.String("campaign_id", id),
					zap.Error(err),
				)
			}
		}

		if (i+1)%100 == 0 {
			p.logger.Info("progress",
				zap.Int("processed", i+1),
				zap.Int("total", len(ids)),
			)
		}
	}
	if err := w.Close(); err != nil {
		return w.Count(), fmt.Errorf("closing output: %w", err)
	}

	p.logger.Info("feature processing completed", zap.Int("rows", w.Count()))
	return w.Count(), nil
}

// sortedIDs orders ids numerically when possible, lexically otherwise.
func sortedIDs(inputs map[string]kickstarter.PreInput) []string {
	ids := make([]string, 0, len(inputs))
	for id := range inputs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		b, errB := strconv.ParseInt(ids[j], 10, 64)
		if errA == nil && errB == nil {
			return a < b
		}
		return ids[i] < ids[j]
	})
	return ids
}
