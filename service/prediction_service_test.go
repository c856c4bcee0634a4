package service

import (
	"context"
	"testing"

	"lawpath-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const predictionReply = `Case summary:
An employee was dismissed without notice after eight years of service.

Outcome prediction:
We estimate a favorable outcome probability of 70% with high confidence based on the merits of the dismissal claim.

Similar precedents:
- Smith v. Jones (2019). The court ruled in favor of the employee. This case is highly relevant because the facts align closely.
- Doe v. Acme (2015). The claim was unsuccessful. Factors: short service period, signed release

SWOT analysis:
Strengths:
- Long service period
- Clean disciplinary record

Weaknesses:
- No written employment contract

Opportunities:
- Early settlement leverage

Threats:
- Employer may allege cause

Recommended legal strategies:
- File a wrongful dismissal claim promptly
- Preserve all employment records

Alternative outcomes:
- Settlement before trial: 40% probability with moderate financial impact
- Dismissal of claim: 10% probability, minor impact

Disclaimer: For planning only.`

func TestExtractOutcomePrediction(t *testing.T) {
	prediction := ExtractOutcomePrediction(predictionReply)

	assert.Equal(t, "An employee was dismissed without notice after eight years of service.", prediction.CaseSummary)
	assert.Equal(t, 70, prediction.FavorableOutcomePercentage)
	assert.Equal(t, models.ConfidenceHigh, prediction.ConfidenceLevel)
	assert.Contains(t, prediction.PredictionRationale, "merits of the dismissal claim")
	assert.Empty(t, prediction.RawAnalysis)

	require.Len(t, prediction.SimilarPrecedents, 2)

	smith := prediction.SimilarPrecedents[0]
	assert.Contains(t, smith.CaseCitation, "Smith v. Jones")
	assert.Equal(t, models.OutcomeFavorable, smith.Outcome)
	assert.Equal(t, 90, smith.RelevanceScore)
	assert.Equal(t, []string{"This case is highly relevant because the facts align closely."}, smith.KeyFactors)

	doe := prediction.SimilarPrecedents[1]
	assert.Contains(t, doe.CaseCitation, "Doe v. Acme")
	assert.Equal(t, models.OutcomeUnfavorable, doe.Outcome)
	assert.Equal(t, 50, doe.RelevanceScore)
	assert.Equal(t, []string{"short service period", "signed release"}, doe.KeyFactors)

	assert.Equal(t, []string{"Long service period", "Clean disciplinary record"}, prediction.Strengths)
	assert.Equal(t, []string{"No written employment contract"}, prediction.Weaknesses)
	assert.Equal(t, []string{"Early settlement leverage"}, prediction.Opportunities)
	assert.Equal(t, []string{"Employer may allege cause"}, prediction.Threats)
	assert.Equal(t, []string{
		"File a wrongful dismissal claim promptly",
		"Preserve all employment records",
	}, prediction.RecommendedStrategies)

	assert.Equal(t, []models.AlternativeOutcome{
		{Scenario: "Settlement before trial", Probability: 40, Impact: "Moderate impact"},
		{Scenario: "Dismissal of claim", Probability: 10, Impact: "Low impact"},
	}, prediction.AlternativeOutcomes)

	assert.Equal(t, predictionDisclaimer, prediction.Disclaimer)
}

func TestExtractOutcomePredictionUnstructuredReply(t *testing.T) {
	reply := "The analysis was inconclusive and no sections were produced."

	prediction := ExtractOutcomePrediction(reply)

	assert.Equal(t, "Analysis could not be fully structured.", prediction.CaseSummary)
	assert.Equal(t, "See full analysis for details.", prediction.PredictionRationale)
	assert.Equal(t, reply, prediction.RawAnalysis)
	assert.Equal(t, 50, prediction.FavorableOutcomePercentage)
	assert.Equal(t, models.ConfidenceMedium, prediction.ConfidenceLevel)
	assert.Empty(t, prediction.SimilarPrecedents)

	// With no outcomes found a single settlement scenario is synthesized
	assert.Equal(t, []models.AlternativeOutcome{
		{Scenario: "Alternative resolution through settlement", Probability: 30, Impact: "Moderate impact"},
	}, prediction.AlternativeOutcomes)
}

func TestAnalyzeCaseOutcome(t *testing.T) {
	var seenPrompt string
	llm := llmFunc(func(ctx context.Context, instructions, content string) (string, error) {
		seenPrompt = content
		return predictionReply, nil
	})

	svc := NewPredictiveAnalysisService(PredictionWithLLM(llm))

	prediction, err := svc.AnalyzeCaseOutcome(context.Background(), CaseOutcomeRequest{
		CaseFacts:         "Employee dismissed without notice after eight years.",
		LegalIssues:       []string{"Wrongful dismissal", "Notice period"},
		Jurisdiction:      "Ontario",
		RelevantStatutes:  []string{"Employment Standards Act, 2000"},
		ClientPosition:    "Seeking damages in lieu of notice.",
		OpposingArguments: "Employer alleges just cause.",
	})
	require.NoError(t, err)

	assert.Contains(t, seenPrompt, "Employee dismissed without notice after eight years.")
	assert.Contains(t, seenPrompt, "- Wrongful dismissal")
	assert.Contains(t, seenPrompt, "Jurisdiction: Ontario")
	assert.Contains(t, seenPrompt, "Employment Standards Act, 2000")
	assert.Contains(t, seenPrompt, "Opposing Arguments:")

	assert.Equal(t, 70, prediction.FavorableOutcomePercentage)
	assert.Equal(t, models.ConfidenceHigh, prediction.ConfidenceLevel)
}

func TestAnalyzeCaseOutcomeNoLLM(t *testing.T) {
	svc := NewPredictiveAnalysisService()

	_, err := svc.AnalyzeCaseOutcome(context.Background(), CaseOutcomeRequest{CaseFacts: "x"})
	assert.ErrorIs(t, err, ErrLLMNotSet)
}
