package models

import (
	"strings"

	"github.com/google/uuid"
)

// ClauseCategory classifies a contract clause. Model-provided category
// strings must be normalized through ParseClauseCategory so that anything
// unrecognized collapses to CategoryOther.
type ClauseCategory string

const (
	CategoryIndemnification      ClauseCategory = "indemnification"
	CategoryLiability            ClauseCategory = "liability"
	CategoryTermination          ClauseCategory = "termination"
	CategoryConfidentiality      ClauseCategory = "confidentiality"
	CategoryIntellectualProperty ClauseCategory = "intellectual_property"
	CategoryPayment              ClauseCategory = "payment"
	CategoryWarranty             ClauseCategory = "warranty"
	CategoryDisputeResolution    ClauseCategory = "dispute_resolution"
	CategoryForceMajeure         ClauseCategory = "force_majeure"
	CategoryGoverningLaw         ClauseCategory = "governing_law"
	CategoryNonCompete           ClauseCategory = "non_compete"
	CategoryAssignment           ClauseCategory = "assignment"
	CategoryOther                ClauseCategory = "other"
)

// AllClauseCategories lists every category in declaration order.
var AllClauseCategories = []ClauseCategory{
	CategoryIndemnification,
	CategoryLiability,
	CategoryTermination,
	CategoryConfidentiality,
	CategoryIntellectualProperty,
	CategoryPayment,
	CategoryWarranty,
	CategoryDisputeResolution,
	CategoryForceMajeure,
	CategoryGoverningLaw,
	CategoryNonCompete,
	CategoryAssignment,
	CategoryOther,
}

// ParseClauseCategory normalizes a model-provided category string.
// Unrecognized values map to CategoryOther.
func ParseClauseCategory(s string) ClauseCategory {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	for _, c := range AllClauseCategories {
		if normalized == string(c) {
			return c
		}
	}
	return CategoryOther
}

// RiskLevel is an ordinal severity classification. Declaration order is the
// severity order and drives every comparison and keyword scan.
type RiskLevel string

const (
	RiskNone     RiskLevel = "no_risk"
	RiskLow      RiskLevel = "low_risk"
	RiskMedium   RiskLevel = "medium_risk"
	RiskHigh     RiskLevel = "high_risk"
	RiskCritical RiskLevel = "critical_risk"
)

// AllRiskLevels lists every risk level in ascending severity.
var AllRiskLevels = []RiskLevel{RiskNone, RiskLow, RiskMedium, RiskHigh, RiskCritical}

// Ordinal returns the numeric weight of a risk level (no_risk=0 .. critical_risk=4).
func (r RiskLevel) Ordinal() int {
	for i, level := range AllRiskLevels {
		if r == level {
			return i
		}
	}
	return 0
}

// ParseRiskLevel normalizes a model-provided risk level string, falling back
// to the supplied default when unrecognized.
func ParseRiskLevel(s string, fallback RiskLevel) RiskLevel {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	for _, level := range AllRiskLevels {
		if normalized == string(level) {
			return level
		}
	}
	return fallback
}

// RiskLevelFromText scans free text for the first risk level whose literal
// name appears, checking levels in declaration order. Defaults to medium_risk.
func RiskLevelFromText(text string) RiskLevel {
	lower := strings.ToLower(text)
	for _, level := range AllRiskLevels {
		if strings.Contains(lower, string(level)) {
			return level
		}
	}
	return RiskMedium
}

// ClausePosition locates a clause inside the source contract text.
// Start is -1 when the clause text was not found verbatim.
type ClausePosition struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ContractClause is a categorized, risk-rated excerpt of a contract.
// Immutable after extraction.
type ContractClause struct {
	ID              uuid.UUID      `json:"id"`
	Title           string         `json:"title"`
	Text            string         `json:"text"`
	Category        ClauseCategory `json:"category"`
	RiskLevel       RiskLevel      `json:"risk_level"`
	RiskExplanation string         `json:"risk_explanation"`
	Position        ClausePosition `json:"position"`
}

// TemplateMatch records how closely a clause matches a standard template clause.
type TemplateMatch struct {
	TemplateID      string  `json:"template_id"`
	TemplateName    string  `json:"template_name"`
	SimilarityScore float64 `json:"similarity_score"`
	Differences     string  `json:"differences"`
}

// ClauseAnalysis is the per-clause analysis output.
type ClauseAnalysis struct {
	Clause                ContractClause    `json:"clause"`
	AlternativeWording    *string           `json:"alternative_wording,omitempty"`
	ProvincialDifferences map[string]string `json:"provincial_differences,omitempty"`
	LegalConcerns         []string          `json:"legal_concerns"`
	TemplateMatches       []TemplateMatch   `json:"template_matches,omitempty"`
}

// RiskAssessmentSettings configures category weighting for risk aggregation.
// A category absent from RiskWeights carries weight 1.0.
type RiskAssessmentSettings struct {
	Jurisdiction string                     `json:"jurisdiction"`
	RiskWeights  map[ClauseCategory]float64 `json:"risk_weights"`
}

// DefaultRiskSettings returns the stock Canadian weighting profile.
func DefaultRiskSettings() RiskAssessmentSettings {
	return RiskAssessmentSettings{
		Jurisdiction: "Canada",
		RiskWeights: map[ClauseCategory]float64{
			CategoryIndemnification:      1.5,
			CategoryLiability:            1.5,
			CategoryTermination:          1.2,
			CategoryConfidentiality:      1.0,
			CategoryIntellectualProperty: 1.3,
		},
	}
}

// ContractSummary captures headline facts about a contract.
type ContractSummary struct {
	Title           string   `json:"title"`
	ContractType    string   `json:"contract_type"`
	Parties         []string `json:"parties"`
	EffectiveDate   *string  `json:"effective_date,omitempty"`
	TerminationDate *string  `json:"termination_date,omitempty"`
	KeyPoints       []string `json:"key_points"`
	MissingClauses  []string `json:"missing_clauses"`
}

// ContractAnalysisResult is the full single-contract analysis output.
type ContractAnalysisResult struct {
	Summary                ContractSummary   `json:"summary"`
	Clauses                []ClauseAnalysis  `json:"clauses"`
	OverallRiskLevel       RiskLevel         `json:"overall_risk_level"`
	OverallRiskExplanation string            `json:"overall_risk_explanation"`
	OverallScore           int               `json:"overall_score"`
	Recommendations        []string          `json:"recommendations"`
	Metadata               map[string]string `json:"metadata"`
}

// ClauseDifference describes a same-category divergence between two contracts.
type ClauseDifference struct {
	Category      ClauseCategory `json:"category"`
	Title         string         `json:"title"`
	ContractAText string         `json:"contract_a_text"`
	ContractBText string         `json:"contract_b_text"`
	Significance  RiskLevel      `json:"significance"`
	Explanation   string         `json:"explanation"`
}

// ContractComparisonResult is the output of comparing two contracts.
type ContractComparisonResult struct {
	ContractAName  string             `json:"contract_a_name"`
	ContractBName  string             `json:"contract_b_name"`
	CommonClauses  []ClauseCategory   `json:"common_clauses"`
	UniqueToA      []ClauseCategory   `json:"unique_to_a"`
	UniqueToB      []ClauseCategory   `json:"unique_to_b"`
	Differences    []ClauseDifference `json:"differences"`
	Recommendation string             `json:"recommendation"`
}
