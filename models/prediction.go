package models

// ConfidenceLevel qualifies how confident an outcome prediction is.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// PrecedentOutcome classifies how a cited precedent was decided.
type PrecedentOutcome string

const (
	OutcomeFavorable   PrecedentOutcome = "Favorable"
	OutcomeUnfavorable PrecedentOutcome = "Unfavorable"
	OutcomeMixed       PrecedentOutcome = "Mixed/Unclear"
)

// PrecedentCase is one precedent recovered from the model's analysis.
type PrecedentCase struct {
	CaseCitation   string           `json:"case_citation"`
	RelevanceScore int              `json:"relevance_score"`
	Outcome        PrecedentOutcome `json:"outcome"`
	KeyFactors     []string         `json:"key_factors"`
}

// AlternativeOutcome is one alternative resolution scenario with its
// estimated probability and impact label.
type AlternativeOutcome struct {
	Scenario    string `json:"scenario"`
	Probability int    `json:"probability"`
	Impact      string `json:"impact"`
}

// CaseOutcomePrediction is the structured forecast of a case's likely result.
// RawAnalysis carries the unparsed model reply when extraction had to fall
// back to defaults.
type CaseOutcomePrediction struct {
	CaseSummary                 string               `json:"case_summary"`
	FavorableOutcomePercentage  int                  `json:"favorable_outcome_percentage"`
	ConfidenceLevel             ConfidenceLevel      `json:"confidence_level"`
	PredictionRationale         string               `json:"prediction_rationale"`
	SimilarPrecedents           []PrecedentCase      `json:"similar_precedents"`
	Strengths                   []string             `json:"strengths"`
	Weaknesses                  []string             `json:"weaknesses"`
	Opportunities               []string             `json:"opportunities"`
	Threats                     []string             `json:"threats"`
	RecommendedStrategies       []string             `json:"recommended_strategies"`
	AlternativeOutcomes         []AlternativeOutcome `json:"alternative_outcomes"`
	RawAnalysis                 string               `json:"raw_analysis,omitempty"`
	Disclaimer                  string               `json:"disclaimer"`
}
