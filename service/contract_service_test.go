package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"lawpath-backend/models"
	"lawpath-backend/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// llmFunc adapts a function to the LLM interface for tests
type llmFunc func(ctx context.Context, instructions, content string) (string, error)

func (f llmFunc) Generate(ctx context.Context, instructions, content string) (string, error) {
	return f(ctx, instructions, content)
}

// memoryTemplateStore is an in-memory TemplateStore for tests
type memoryTemplateStore struct {
	templates map[string]*models.StandardTemplate
}

func (m *memoryTemplateStore) Get(ctx context.Context, templateID string) (*models.StandardTemplate, error) {
	template, ok := m.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("template %q: %w", templateID, repository.ErrTemplateNotFound)
	}
	return template, nil
}

func (m *memoryTemplateStore) Put(ctx context.Context, template *models.StandardTemplate) (string, error) {
	m.templates[template.ID] = template
	return template.ID, nil
}

const analysisReply = `Alternative wording: Cap indemnification at fees paid in the prior twelve months.

Provincial differences: Quebec applies civil law rules to indemnity obligations.

Legal concerns:
- Unlimited exposure
- No reciprocity`

const summaryReply = `Title: Master Services Agreement
Parties:
- Acme Corp
- Widget Inc

Effective date: January 1, 2025
Termination date: 12/31/2026

Key points:
- Net 30 payment terms
- Annual renewal

Missing clauses:
- force majeure`

func scriptedAnalysisLLM(clausesJSON string) llmFunc {
	return func(ctx context.Context, instructions, content string) (string, error) {
		switch {
		case strings.Contains(content, "Extract all clauses"):
			return "```json\n" + clausesJSON + "\n```", nil
		case strings.Contains(content, "analyze this"):
			return analysisReply, nil
		case strings.Contains(content, "provide a summary"):
			return summaryReply, nil
		case strings.Contains(content, "determine their similarity"):
			return "Similarity score: 0.82\n\nKey differences: the template caps liability at fees paid.", nil
		default:
			return "", fmt.Errorf("unexpected prompt: %s", content)
		}
	}
}

func TestAnalyzeContract(t *testing.T) {
	clausesJSON := `[
		{"title": "Indemnification", "text": "INDEM TEXT", "category": "indemnification", "risk_level": "high_risk", "risk_explanation": "one-sided"},
		{"title": "Payment", "text": "PAY TEXT", "category": "payment", "risk_level": "low_risk", "risk_explanation": "standard"}
	]`

	svc := NewContractAnalysisService(AnalysisWithLLM(scriptedAnalysisLLM(clausesJSON)))

	result, err := svc.AnalyzeContract(context.Background(), ContractAnalysisRequest{
		ContractName: "MSA",
		ContractType: "services",
		ContractText: "INTRO. INDEM TEXT. PAY TEXT.",
		Jurisdiction: "Ontario",
	})
	require.NoError(t, err)

	// Clauses come back in extraction order
	require.Len(t, result.Clauses, 2)
	indem := result.Clauses[0]
	assert.Equal(t, "Indemnification", indem.Clause.Title)
	assert.Equal(t, models.CategoryIndemnification, indem.Clause.Category)
	assert.Equal(t, models.RiskHigh, indem.Clause.RiskLevel)
	assert.Equal(t, strings.Index("INTRO. INDEM TEXT. PAY TEXT.", "INDEM TEXT"), indem.Clause.Position.Start)
	require.NotNil(t, indem.AlternativeWording)
	assert.Equal(t, "Cap indemnification at fees paid in the prior twelve months.", *indem.AlternativeWording)
	assert.Equal(t, map[string]string{"general": "Quebec applies civil law rules to indemnity obligations."}, indem.ProvincialDifferences)
	assert.Equal(t, []string{"Unlimited exposure", "No reciprocity"}, indem.LegalConcerns)

	// Summary fields recovered from the labeled reply
	assert.Equal(t, "Master Services Agreement", result.Summary.Title)
	assert.Equal(t, []string{"Acme Corp", "Widget Inc"}, result.Summary.Parties)
	require.NotNil(t, result.Summary.EffectiveDate)
	assert.Equal(t, "January 1, 2025", *result.Summary.EffectiveDate)
	require.NotNil(t, result.Summary.TerminationDate)
	assert.Equal(t, "12/31/2026", *result.Summary.TerminationDate)
	assert.Equal(t, []string{"Net 30 payment terms", "Annual renewal"}, result.Summary.KeyPoints)
	assert.Equal(t, []string{"force majeure"}, result.Summary.MissingClauses)

	// Exactly one high-risk clause puts the contract at medium overall
	assert.Equal(t, models.RiskMedium, result.OverallRiskLevel)
	assert.Contains(t, result.OverallRiskExplanation, "Indemnification")
	assert.Equal(t, 79, result.OverallScore)

	assert.Equal(t, []string{
		"Revise the Indemnification clause with more favorable language.",
		"Add a missing force majeure clause to the contract.",
	}, result.Recommendations)

	assert.Equal(t, "services", result.Metadata["contract_type"])
	assert.Equal(t, "Ontario", result.Metadata["jurisdiction"])
	assert.Equal(t, "1.0", result.Metadata["analysis_version"])
}

func TestAnalyzeContractUnparseableClauseReply(t *testing.T) {
	llm := llmFunc(func(ctx context.Context, instructions, content string) (string, error) {
		if strings.Contains(content, "Extract all clauses") {
			return "I could not produce structured output for this contract.", nil
		}
		return "No structured analysis available.", nil
	})

	svc := NewContractAnalysisService(AnalysisWithLLM(llm))

	result, err := svc.AnalyzeContract(context.Background(), ContractAnalysisRequest{
		ContractText: "Some contract text.",
	})
	require.NoError(t, err)

	require.Len(t, result.Clauses, 1)
	clause := result.Clauses[0].Clause
	assert.Equal(t, "Full Contract", clause.Title)
	assert.Equal(t, models.CategoryOther, clause.Category)
	assert.Equal(t, models.RiskMedium, clause.RiskLevel)
	assert.Equal(t, -1, clause.Position.Start)

	assert.Equal(t, "Unnamed Contract", result.Summary.Title)
	assert.Equal(t, "General Contract", result.Summary.ContractType)
	assert.Equal(t, []string{"Unknown"}, result.Summary.Parties)
	assert.Equal(t, "Unknown", result.Metadata["contract_type"])

	// No high-risk clauses and no missing clauses leaves only the generic advice
	assert.Equal(t, []string{genericRecommendation}, result.Recommendations)
}

func TestAnalyzeContractNoLLM(t *testing.T) {
	svc := NewContractAnalysisService()

	_, err := svc.AnalyzeContract(context.Background(), ContractAnalysisRequest{ContractText: "x"})
	assert.ErrorIs(t, err, ErrLLMNotSet)
}

func TestAnalyzeContractTemplateComparison(t *testing.T) {
	clausesJSON := `[
		{"title": "Indemnification", "text": "INDEM TEXT", "category": "indemnification", "risk_level": "medium_risk"},
		{"title": "Payment", "text": "PAY TEXT", "category": "payment", "risk_level": "low_risk"}
	]`

	store := &memoryTemplateStore{templates: map[string]*models.StandardTemplate{
		"std-1": {
			ID:   "std-1",
			Name: "Standard Services Template",
			Clauses: models.TemplateClauses{
				models.CategoryIndemnification: "Mutual indemnification capped at fees paid.",
			},
		},
	}}

	svc := NewContractAnalysisService(
		AnalysisWithLLM(scriptedAnalysisLLM(clausesJSON)),
		AnalysisWithTemplateStore(store),
	)

	result, err := svc.AnalyzeContract(context.Background(), ContractAnalysisRequest{
		ContractText:          "INDEM TEXT. PAY TEXT.",
		ComparisonTemplateIDs: []string{"std-1", "missing-template"},
	})
	require.NoError(t, err)

	require.Len(t, result.Clauses, 2)

	// Template has an indemnification clause; the match carries the parsed score
	matches := result.Clauses[0].TemplateMatches
	require.Len(t, matches, 1)
	assert.Equal(t, "std-1", matches[0].TemplateID)
	assert.Equal(t, "Standard Services Template", matches[0].TemplateName)
	assert.InDelta(t, 0.82, matches[0].SimilarityScore, 0.0001)
	assert.Contains(t, matches[0].Differences, "differences")

	// Template has no payment clause, so the payment clause has no matches
	assert.Empty(t, result.Clauses[1].TemplateMatches)
}

func riskAnalyses(levels ...models.RiskLevel) []models.ClauseAnalysis {
	analyses := make([]models.ClauseAnalysis, 0, len(levels))
	for i, level := range levels {
		analyses = append(analyses, models.ClauseAnalysis{
			Clause: models.ContractClause{
				Title:     fmt.Sprintf("Clause %d", i+1),
				Category:  models.CategoryOther,
				RiskLevel: level,
			},
		})
	}
	return analyses
}

func TestAssessOverallRiskLevels(t *testing.T) {
	settings := models.DefaultRiskSettings()

	tests := []struct {
		name   string
		levels []models.RiskLevel
		want   models.RiskLevel
	}{
		{"single critical dominates", []models.RiskLevel{models.RiskLow, models.RiskCritical}, models.RiskCritical},
		{"two highs escalate to high", []models.RiskLevel{models.RiskHigh, models.RiskHigh}, models.RiskHigh},
		{"one high only reaches medium", []models.RiskLevel{models.RiskHigh, models.RiskLow}, models.RiskMedium},
		{"three mediums reach medium", []models.RiskLevel{models.RiskMedium, models.RiskMedium, models.RiskMedium}, models.RiskMedium},
		{"two mediums stay low", []models.RiskLevel{models.RiskMedium, models.RiskMedium}, models.RiskLow},
		{"single low stays low", []models.RiskLevel{models.RiskLow}, models.RiskLow},
		{"no clauses stay low", nil, models.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, explanation, score := AssessOverallRisk(riskAnalyses(tt.levels...), settings)
			assert.Equal(t, tt.want, level)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
			assert.Contains(t, explanation, fmt.Sprintf("%d/100", score))
		})
	}
}

func TestAssessOverallRiskOrderIndependent(t *testing.T) {
	settings := models.DefaultRiskSettings()

	levelA, _, scoreA := AssessOverallRisk(riskAnalyses(models.RiskHigh, models.RiskLow, models.RiskMedium), settings)
	levelB, _, scoreB := AssessOverallRisk(riskAnalyses(models.RiskMedium, models.RiskHigh, models.RiskLow), settings)

	assert.Equal(t, levelA, levelB)
	assert.Equal(t, scoreA, scoreB)
}

func TestAssessOverallRiskNoWeights(t *testing.T) {
	// No weights and no clauses leaves nothing to score against
	level, _, score := AssessOverallRisk(nil, models.RiskAssessmentSettings{})
	assert.Equal(t, models.RiskLow, level)
	assert.Equal(t, 50, score)
}

func TestGenerateRecommendations(t *testing.T) {
	wording := "More favorable wording."
	analyses := []models.ClauseAnalysis{
		{
			Clause:             models.ContractClause{Title: "Indemnification", RiskLevel: models.RiskCritical},
			AlternativeWording: &wording,
		},
		{
			Clause: models.ContractClause{Title: "Termination", RiskLevel: models.RiskHigh},
		},
		{
			Clause: models.ContractClause{Title: "Payment", RiskLevel: models.RiskLow},
		},
	}
	summary := &models.ContractSummary{MissingClauses: []string{"dispute resolution"}}

	recommendations := GenerateRecommendations(analyses, summary)
	assert.Equal(t, []string{
		"Revise the Indemnification clause with more favorable language.",
		"Review and potentially renegotiate the Termination clause.",
		"Add a missing dispute resolution clause to the contract.",
	}, recommendations)
}

func TestGenerateRecommendationsGenericFallback(t *testing.T) {
	recommendations := GenerateRecommendations(nil, &models.ContractSummary{})
	assert.Equal(t, []string{genericRecommendation}, recommendations)
}

func TestCompareContracts(t *testing.T) {
	clausesAJSON := `[
		{"title": "Termination", "text": "TERM A", "category": "termination", "risk_level": "medium_risk"},
		{"title": "Payment", "text": "PAY SAME", "category": "payment", "risk_level": "low_risk"}
	]`
	clausesBJSON := `[
		{"title": "Termination", "text": "TERM B", "category": "termination", "risk_level": "medium_risk"},
		{"title": "Payment", "text": "PAY SAME", "category": "payment", "risk_level": "low_risk"},
		{"title": "Warranty", "text": "WARRANTY W", "category": "warranty", "risk_level": "low_risk"}
	]`

	llm := llmFunc(func(ctx context.Context, instructions, content string) (string, error) {
		switch {
		case strings.Contains(content, "Extract all clauses") && strings.Contains(content, "ALPHA"):
			return clausesAJSON, nil
		case strings.Contains(content, "Extract all clauses") && strings.Contains(content, "BRAVO"):
			return clausesBJSON, nil
		case strings.Contains(content, "explain the significance"):
			return "Significance level: high_risk\n\nThe legal implications of these differences include a much shorter notice period.", nil
		default:
			return "", fmt.Errorf("unexpected prompt: %s", content)
		}
	})

	svc := NewContractAnalysisService(AnalysisWithLLM(llm))

	result, err := svc.CompareContracts(context.Background(), ContractComparisonRequest{
		ContractAText: "ALPHA CONTRACT. TERM A. PAY SAME.",
		ContractBText: "BRAVO CONTRACT. TERM B. PAY SAME. WARRANTY W.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Contract A", result.ContractAName)
	assert.Equal(t, "Contract B", result.ContractBName)

	assert.Equal(t, []models.ClauseCategory{models.CategoryPayment, models.CategoryTermination}, result.CommonClauses)
	assert.Empty(t, result.UniqueToA)
	assert.Equal(t, []models.ClauseCategory{models.CategoryWarranty}, result.UniqueToB)

	// Identical payment clauses are skipped; only termination differs
	require.Len(t, result.Differences, 1)
	diff := result.Differences[0]
	assert.Equal(t, models.CategoryTermination, diff.Category)
	assert.Equal(t, "TERM A", diff.ContractAText)
	assert.Equal(t, "TERM B", diff.ContractBText)
	assert.Equal(t, models.RiskHigh, diff.Significance)
	assert.Contains(t, diff.Explanation, "legal implications")

	assert.Equal(t,
		"Pay close attention to significant differences in the following clauses: termination. "+
			"Contract B contains these clauses not found in Contract A: warranty. "+
			comparisonDisclaimer,
		result.Recommendation)
}

func TestCompareContractsFocusFilter(t *testing.T) {
	clausesJSON := func(suffix string) string {
		return fmt.Sprintf(`[
			{"title": "Termination", "text": "TERM %s", "category": "termination", "risk_level": "medium_risk"},
			{"title": "Payment", "text": "PAY %s", "category": "payment", "risk_level": "low_risk"}
		]`, suffix, suffix)
	}

	llm := llmFunc(func(ctx context.Context, instructions, content string) (string, error) {
		switch {
		case strings.Contains(content, "Extract all clauses") && strings.Contains(content, "ALPHA"):
			return clausesJSON("A"), nil
		case strings.Contains(content, "Extract all clauses") && strings.Contains(content, "BRAVO"):
			return clausesJSON("B"), nil
		case strings.Contains(content, "explain the significance"):
			return "Significance level: low_risk\n\nMinor drafting differences only.", nil
		default:
			return "", fmt.Errorf("unexpected prompt: %s", content)
		}
	})

	svc := NewContractAnalysisService(AnalysisWithLLM(llm))

	result, err := svc.CompareContracts(context.Background(), ContractComparisonRequest{
		ContractAText:   "ALPHA. TERM A. PAY A.",
		ContractBText:   "BRAVO. TERM B. PAY B.",
		FocusCategories: []models.ClauseCategory{models.CategoryPayment},
	})
	require.NoError(t, err)

	// Both categories differ but only the focused one is analyzed
	require.Len(t, result.Differences, 1)
	assert.Equal(t, models.CategoryPayment, result.Differences[0].Category)
	assert.Equal(t, models.RiskLow, result.Differences[0].Significance)
}

func TestParseClauseReplyDefaults(t *testing.T) {
	clauses := parseClauseReply("zzz alpha zzz", `[{"text": "alpha"}]`)

	require.Len(t, clauses, 1)
	assert.Equal(t, "Clause 1", clauses[0].Title)
	assert.Equal(t, models.CategoryOther, clauses[0].Category)
	assert.Equal(t, models.RiskLow, clauses[0].RiskLevel)
	assert.Equal(t, 4, clauses[0].Position.Start)
	assert.Equal(t, 9, clauses[0].Position.End)
}

func TestFallbackClauseTruncation(t *testing.T) {
	long := strings.Repeat("a", 1500)
	clause := fallbackClause(long)

	assert.Equal(t, 1003, len(clause.Text))
	assert.True(t, strings.HasSuffix(clause.Text, "..."))
}
