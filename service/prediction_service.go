package service

import (
	"context"
	"regexp"
	"strings"

	"lawpath-backend/models"
	"lawpath-backend/textparse"
)

// PredictiveAnalysisService forecasts case outcomes from free-text model
// analysis. The model's reply is never trusted to be well-formed: every
// field has a documented default and a reply that defeats the extractor
// still yields a complete, typed prediction.
type PredictiveAnalysisService struct {
	llm LLM
}

// PredictionOption is a functional option for PredictiveAnalysisService
type PredictionOption func(*PredictiveAnalysisService)

// PredictionWithLLM sets the language model collaborator
func PredictionWithLLM(llm LLM) PredictionOption {
	return func(s *PredictiveAnalysisService) {
		s.llm = llm
	}
}

// NewPredictiveAnalysisService creates a new predictive analysis service
func NewPredictiveAnalysisService(opts ...PredictionOption) *PredictiveAnalysisService {
	s := &PredictiveAnalysisService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CaseOutcomeRequest describes the case to analyze
type CaseOutcomeRequest struct {
	CaseFacts         string
	LegalIssues       []string
	Jurisdiction      string
	RelevantStatutes  []string
	SimilarCases      []string
	ClientPosition    string
	OpposingArguments string
}

const predictionDisclaimer = "This predictive analysis is AI-generated and should not be considered legal advice. Consult with a qualified legal professional for specific legal guidance."

const predictionSystemPrompt = `You are a legal expert specializing in Canadian case outcome prediction.
Based on the provided case details, predict the likely outcome using similar precedents.
Analyze the strengths and weaknesses of the case from a legal perspective.
Consider the jurisdiction, relevant statutes, and similar cases in your analysis.
Provide a balanced assessment with probability estimates and confidence levels.
Use a SWOT framework (Strengths, Weaknesses, Opportunities, Threats) for part of your analysis.
Your analysis should be data-driven, citing relevant precedents and their outcomes.`

// AnalyzeCaseOutcome asks the collaborator for a case analysis and extracts
// a structured prediction from the reply. A collaborator failure is returned
// to the caller; a reply the extractor cannot structure degrades to defaults
// with the raw reply preserved.
func (s *PredictiveAnalysisService) AnalyzeCaseOutcome(ctx context.Context, req CaseOutcomeRequest) (*models.CaseOutcomePrediction, error) {
	if s.llm == nil {
		return nil, ErrLLMNotSet
	}

	reply, err := s.llm.Generate(ctx, predictionSystemPrompt, buildCasePrompt(req))
	if err != nil {
		return nil, err
	}

	return ExtractOutcomePrediction(reply), nil
}

func buildCasePrompt(req CaseOutcomeRequest) string {
	var builder strings.Builder
	builder.WriteString("Please analyze the following case and predict the likely outcome:\n\n")
	builder.WriteString("Case Facts:\n")
	builder.WriteString(req.CaseFacts)
	builder.WriteString("\n\nLegal Issues:\n")
	for _, issue := range req.LegalIssues {
		builder.WriteString("- " + issue + "\n")
	}
	builder.WriteString("\nJurisdiction: " + req.Jurisdiction + "\n")
	if len(req.RelevantStatutes) > 0 {
		builder.WriteString("\nRelevant Statutes:\n")
		for _, statute := range req.RelevantStatutes {
			builder.WriteString("- " + statute + "\n")
		}
	}
	if len(req.SimilarCases) > 0 {
		builder.WriteString("\nSimilar Cases:\n")
		for _, c := range req.SimilarCases {
			builder.WriteString("- " + c + "\n")
		}
	}
	builder.WriteString("\nClient Position:\n" + req.ClientPosition + "\n")
	if req.OpposingArguments != "" {
		builder.WriteString("\nOpposing Arguments:\n" + req.OpposingArguments + "\n")
	}
	builder.WriteString(`
Please provide:
1. A brief summary of the case
2. Outcome prediction with percentage of favorable outcome and confidence level
3. Similar precedents that influence your prediction
4. SWOT analysis (Strengths, Weaknesses, Opportunities, Threats)
5. Recommended legal strategies
6. Alternative outcomes with their probabilities

Format your response in a structured way that can be parsed into sections.`)
	return builder.String()
}

// ExtractOutcomePrediction recovers a structured prediction from one large
// free-text reply. Total by construction: every extractor below defaults on
// a miss, so the worst a hostile reply produces is a prediction made
// entirely of defaults carrying the raw text.
func ExtractOutcomePrediction(reply string) (prediction *models.CaseOutcomePrediction) {
	defer func() {
		if r := recover(); r != nil {
			prediction = buildFallbackPrediction(reply)
		}
	}()

	prediction = &models.CaseOutcomePrediction{
		CaseSummary:                strings.TrimSpace(textparse.ExtractSection(reply, "Case summary", "Outcome prediction")),
		FavorableOutcomePercentage: textparse.ExtractPercentage(reply),
		ConfidenceLevel:            models.ConfidenceLevel(textparse.ExtractConfidenceLevel(reply)),
		PredictionRationale:        strings.TrimSpace(textparse.ExtractSection(reply, "Outcome prediction", "Similar precedents")),
		SimilarPrecedents:          extractPrecedents(reply),
		Strengths:                  textparse.ExtractSectionBulletPoints(reply, "Strengths", ""),
		Weaknesses:                 textparse.ExtractSectionBulletPoints(reply, "Weaknesses", ""),
		Opportunities:              textparse.ExtractSectionBulletPoints(reply, "Opportunities", ""),
		Threats:                    textparse.ExtractSectionBulletPoints(reply, "Threats", ""),
		RecommendedStrategies:      textparse.ExtractSectionBulletPoints(reply, "Recommended legal strategies", "Alternative outcomes"),
		AlternativeOutcomes:        extractAlternativeOutcomes(reply),
		Disclaimer:                 predictionDisclaimer,
	}

	if prediction.CaseSummary == "" && prediction.PredictionRationale == "" {
		// Nothing structured could be recovered; keep the raw reply around
		prediction.CaseSummary = "Analysis could not be fully structured."
		prediction.PredictionRationale = "See full analysis for details."
		prediction.RawAnalysis = reply
	}

	return prediction
}

var (
	precedentSplit  = regexp.MustCompile(`\n\s*[-*]\s+|\n\s*\d+\.\s+|\n\n`)
	citationPattern = regexp.MustCompile(`([\w\s]+v\.?\s+[\w\s]+)\s*\(?(\d{4})\)?`)
	factorsPattern  = regexp.MustCompile(`(?i)factors?:([^\n]*(?:\n[^\n]+)*)`)
	factorSplit     = regexp.MustCompile(`[,;]|\n\s*[-*]\s+`)
	sentenceSplit   = regexp.MustCompile(`\.\s+`)
)

// extractPrecedents splits the precedents section on bullet and blank-line
// boundaries and recovers a citation, outcome, relevance, and key factors
// from each block.
func extractPrecedents(reply string) []models.PrecedentCase {
	section := textparse.ExtractSection(reply, "Similar precedents", "SWOT analysis")
	if section == "" {
		section = textparse.ExtractSection(reply, "Similar precedents", "Strengths")
	}
	if section == "" {
		return []models.PrecedentCase{}
	}

	precedents := make([]models.PrecedentCase, 0)
	// Leading newline so a bullet on the first line splits like the rest
	for _, block := range precedentSplit.Split("\n"+section, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		citation := "Unnamed precedent"
		if m := citationPattern.FindString(block); m != "" {
			citation = strings.TrimSpace(m)
		}

		precedents = append(precedents, models.PrecedentCase{
			CaseCitation:   citation,
			RelevanceScore: relevanceScore(block),
			Outcome:        classifyPrecedentOutcome(block),
			KeyFactors:     extractKeyFactors(block),
		})
	}
	return precedents
}

func classifyPrecedentOutcome(block string) models.PrecedentOutcome {
	lower := strings.ToLower(block)
	switch {
	case strings.Contains(lower, "ruled in favor") || strings.Contains(lower, "found for") || strings.Contains(lower, "successful"):
		// "unsuccessful" contains "successful"; check it first
		if strings.Contains(lower, "unsuccessful") {
			return models.OutcomeUnfavorable
		}
		return models.OutcomeFavorable
	case strings.Contains(lower, "ruled against") || strings.Contains(lower, "found against"):
		return models.OutcomeUnfavorable
	default:
		return models.OutcomeMixed
	}
}

func relevanceScore(block string) int {
	lower := strings.ToLower(block)
	switch {
	case strings.Contains(lower, "highly relevant") || strings.Contains(lower, "directly applicable"):
		return 90
	case strings.Contains(lower, "somewhat relevant") || strings.Contains(lower, "partially applicable"):
		return 60
	case strings.Contains(lower, "tangentially") || strings.Contains(lower, "indirectly"):
		return 40
	case strings.Contains(lower, "relevant") || strings.Contains(lower, "similar"):
		return 75
	default:
		return 50
	}
}

// extractKeyFactors prefers an explicit "factors:" line; failing that it
// takes up to two qualifying sentences after the first.
func extractKeyFactors(block string) []string {
	factors := make([]string, 0)

	if m := factorsPattern.FindStringSubmatch(block); m != nil {
		for _, factor := range factorSplit.Split(m[1], -1) {
			factor = strings.TrimSpace(factor)
			if factor != "" {
				factors = append(factors, factor)
			}
		}
	}

	if len(factors) == 0 {
		sentences := sentenceSplit.Split(block, -1)
		for _, sentence := range sentences[1:] { // skip the citation sentence
			sentence = strings.TrimSpace(sentence)
			if len(sentence) <= 15 || strings.HasPrefix(sentence, "The court") || strings.Contains(strings.ToLower(sentence), "ruled") {
				continue
			}
			factors = append(factors, strings.TrimSuffix(sentence, ".")+".")
			if len(factors) >= 2 {
				break
			}
		}
	}

	if len(factors) == 0 {
		factors = append(factors, "See full analysis for details")
	}
	return factors
}

var (
	outcomeSplit    = regexp.MustCompile(`\n\s*[-*]\s+|\n\s*\d+\.\s+`)
	scenarioPattern = regexp.MustCompile(`^([^:.]*)[:.]?`)
)

// extractAlternativeOutcomes recovers alternative resolution scenarios. When
// no outcomes can be found, a single default settlement entry is synthesized.
func extractAlternativeOutcomes(reply string) []models.AlternativeOutcome {
	section := textparse.ExtractSection(reply, "Alternative outcomes", "Disclaimer")
	if section == "" {
		section = textparse.ExtractSection(reply, "Alternative outcomes", "")
	}

	outcomes := make([]models.AlternativeOutcome, 0)
	for _, block := range outcomeSplit.Split("\n"+section, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		scenario := block
		if m := scenarioPattern.FindStringSubmatch(block); m != nil {
			scenario = strings.TrimSpace(m[1])
		}
		if len(scenario) <= 5 {
			continue
		}

		outcomes = append(outcomes, models.AlternativeOutcome{
			Scenario:    scenario,
			Probability: textparse.FirstPercent(block, 0),
			Impact:      impactLabel(block),
		})
	}

	if len(outcomes) == 0 {
		outcomes = append(outcomes, models.AlternativeOutcome{
			Scenario:    "Alternative resolution through settlement",
			Probability: 30,
			Impact:      "Moderate impact",
		})
	}
	return outcomes
}

func impactLabel(block string) string {
	lower := strings.ToLower(block)
	switch {
	case strings.Contains(lower, "significant") || strings.Contains(lower, "severe") || strings.Contains(lower, "major"):
		return "High impact"
	case strings.Contains(lower, "moderate") || strings.Contains(lower, "medium"):
		return "Moderate impact"
	case strings.Contains(lower, "minor") || strings.Contains(lower, "minimal") || strings.Contains(lower, "small"):
		return "Low impact"
	default:
		return "Undetermined impact"
	}
}

// buildFallbackPrediction returns a prediction made entirely of defaults
// with the raw reply preserved. Used when extraction fails outright.
func buildFallbackPrediction(reply string) *models.CaseOutcomePrediction {
	return &models.CaseOutcomePrediction{
		CaseSummary:                "Analysis could not be fully structured.",
		FavorableOutcomePercentage: 50,
		ConfidenceLevel:            models.ConfidenceMedium,
		PredictionRationale:        "See full analysis for details.",
		SimilarPrecedents:          []models.PrecedentCase{},
		Strengths:                  []string{},
		Weaknesses:                 []string{},
		Opportunities:              []string{},
		Threats:                    []string{},
		RecommendedStrategies:      []string{},
		AlternativeOutcomes:        []models.AlternativeOutcome{},
		RawAnalysis:                reply,
		Disclaimer:                 predictionDisclaimer,
	}
}
