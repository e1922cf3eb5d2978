package features

import (
	"fmt"
	"math"
)

// ExpectedWidths are the embedding widths a feature row must carry. The
// category width depends on the observed vocabulary and is checked for
// consistency across rows instead.
type ExpectedWidths struct {
	Description int
	Blurb       int
	Risk        int
	Subcategory int
	Country     int
}

// DefaultWidths matches the default encoder configuration.
func DefaultWidths() ExpectedWidths {
	return ExpectedWidths{
		Description: 768,
		Blurb:       384,
		Risk:        384,
		Subcategory: 100,
		Country:     100,
	}
}

// lowVarianceThreshold flags embeddings that are suspiciously flat.
const lowVarianceThreshold = 1e-6

// ValidateVector checks a single embedding and returns human-readable
// findings, empty when the vector looks healthy.
func ValidateVector(name string, vec []float32, expectedWidth int) []string {
	var findings []string

	if len(vec) == 0 {
		return []string{fmt.Sprintf("%s is empty", name)}
	}
	if expectedWidth > 0 && len(vec) != expectedWidth {
		findings = append(findings, fmt.Sprintf("%s has width %d, expected %d", name, len(vec), expectedWidth))
	}

	allZero := true
	allSame := true
	var sum, sumSq float64
	for _, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			findings = append(findings, fmt.Sprintf("%s contains NaN or infinite values", name))
			return findings
		}
		if v != 0 {
			allZero = false
		}
		if v != vec[0] {
			allSame = false
		}
		sum += f
		sumSq += f * f
	}

	if allZero {
		findings = append(findings, fmt.Sprintf("%s contains all zeros", name))
	}
	if allSame {
		findings = append(findings, fmt.Sprintf("%s contains all identical values", name))
	}

	n := float64(len(vec))
	mean := sum / n
	variance := sumSq/n - mean*mean
	if !allZero && !allSame && variance < lowVarianceThreshold {
		findings = append(findings, fmt.Sprintf("%s has very low variance", name))
	}

	return findings
}

// ValidateRow checks every embedding field of a feature row.
func ValidateRow(row FeatureRowVectors, widths ExpectedWidths) []string {
	var findings []string
	findings = append(findings, ValidateVector("description_embedding", row.Description, widths.Description)...)
	findings = append(findings, ValidateVector("blurb_embedding", row.Blurb, widths.Blurb)...)
	findings = append(findings, ValidateVector("risk_embedding", row.Risk, widths.Risk)...)
	findings = append(findings, ValidateVector("subcategory_embedding", row.Subcategory, widths.Subcategory)...)
	findings = append(findings, ValidateVector("country_embedding", row.Country, widths.Country)...)

	if len(row.Category) == 0 {
		findings = append(findings, "category_embedding is empty")
	} else {
		ones := 0
		for _, v := range row.Category {
			if v == 1 {
				ones++
			} else if v != 0 {
				findings = append(findings, "category_embedding contains values other than 0 and 1")
				break
			}
		}
		if ones > 1 {
			findings = append(findings, fmt.Sprintf("category_embedding has %d hot positions", ones))
		}
	}
	return findings
}

// FeatureRowVectors is the embedding view of a feature row, decoupled from
// the full record so the validator can run over partial decodes.
type FeatureRowVectors struct {
	Description []float32
	Blurb       []float32
	Risk        []float32
	Category    []int
	Subcategory []float32
	Country     []float32
}
