package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func caseInfo() map[string]string {
	return map[string]string{
		"case_name": "R. v. Oakes",
		"year":      "1986",
		"volume":    "1",
		"reporter":  "SCR",
		"page":      "103",
		"court":     "Supreme Court of Canada",
	}
}

func TestFormatCaseCitationDefaultsToMcGill(t *testing.T) {
	var seenInstructions string
	llm := llmFunc(func(ctx context.Context, instructions, content string) (string, error) {
		seenInstructions = instructions
		return "R v Oakes, [1986] 1 SCR 103.", nil
	})

	svc := NewCitationFormatterService(CitationWithLLM(llm))

	citation, err := svc.FormatCaseCitation(context.Background(), caseInfo(), "")
	require.NoError(t, err)

	assert.Equal(t, "mcgill", citation.Style.ID)
	assert.True(t, citation.Style.IsDefault)
	assert.Contains(t, seenInstructions, "McGill Guide")
	assert.Equal(t, "R v Oakes, [1986] 1 SCR 103.", citation.FormattedCitation)
	assert.Equal(t, caseInfo(), citation.SourceInfo)
}

func TestFormatCaseCitationStripsQuotes(t *testing.T) {
	llm := llmFunc(func(ctx context.Context, instructions, content string) (string, error) {
		return "  \"R v Oakes, [1986] 1 SCR 103.\"  ", nil
	})

	svc := NewCitationFormatterService(CitationWithLLM(llm))

	citation, err := svc.FormatCaseCitation(context.Background(), caseInfo(), "bluebook")
	require.NoError(t, err)
	assert.Equal(t, "R v Oakes, [1986] 1 SCR 103.", citation.FormattedCitation)
}

func TestFormatCaseCitationUnknownStyle(t *testing.T) {
	svc := NewCitationFormatterService(CitationWithLLM(llmFunc(nil)))

	_, err := svc.FormatCaseCitation(context.Background(), caseInfo(), "oscola")
	assert.ErrorIs(t, err, ErrStyleNotFound)
}

func TestFormatCaseCitationMissingFields(t *testing.T) {
	svc := NewCitationFormatterService(CitationWithLLM(llmFunc(nil)))

	info := caseInfo()
	delete(info, "volume")
	info["page"] = ""

	_, err := svc.FormatCaseCitation(context.Background(), info, "mcgill")
	require.ErrorIs(t, err, ErrMissingCitationField)
	assert.Contains(t, err.Error(), "volume")
	assert.Contains(t, err.Error(), "page")
}

func TestFormatLegislationCitation(t *testing.T) {
	llm := llmFunc(func(ctx context.Context, instructions, content string) (string, error) {
		return "Employment Standards Act, 2000, SO 2000, c 41.", nil
	})

	svc := NewCitationFormatterService(CitationWithLLM(llm))

	citation, err := svc.FormatLegislationCitation(context.Background(), map[string]string{
		"title":        "Employment Standards Act, 2000",
		"jurisdiction": "Ontario",
		"year":         "2000",
		"chapter":      "41",
	}, "mcgill")
	require.NoError(t, err)
	assert.Equal(t, "Employment Standards Act, 2000, SO 2000, c 41.", citation.FormattedCitation)
}

func TestFormatLegislationCitationMissingFields(t *testing.T) {
	svc := NewCitationFormatterService(CitationWithLLM(llmFunc(nil)))

	_, err := svc.FormatLegislationCitation(context.Background(), map[string]string{
		"title": "Employment Standards Act, 2000",
	}, "")
	assert.ErrorIs(t, err, ErrMissingCitationField)
}

func TestParseCitation(t *testing.T) {
	llm := llmFunc(func(ctx context.Context, instructions, content string) (string, error) {
		return "This is a case citation. Case name: R v Oakes. Year: 1986.", nil
	})

	svc := NewCitationFormatterService(CitationWithLLM(llm))

	parsed, err := svc.ParseCitation(context.Background(), "R v Oakes, [1986] 1 SCR 103")
	require.NoError(t, err)
	assert.Equal(t, "R v Oakes, [1986] 1 SCR 103", parsed.OriginalCitation)
	assert.Contains(t, parsed.ParsedResult, "R v Oakes")
}

func TestCitationServiceNoLLM(t *testing.T) {
	svc := NewCitationFormatterService()

	_, err := svc.FormatCaseCitation(context.Background(), caseInfo(), "")
	assert.ErrorIs(t, err, ErrLLMNotSet)

	_, err = svc.FormatLegislationCitation(context.Background(), map[string]string{}, "")
	assert.ErrorIs(t, err, ErrLLMNotSet)

	_, err = svc.ParseCitation(context.Background(), "x")
	assert.ErrorIs(t, err, ErrLLMNotSet)
}

func TestListStyles(t *testing.T) {
	svc := NewCitationFormatterService()

	styles := svc.ListStyles()
	require.Len(t, styles, 3)
	assert.Equal(t, "mcgill", styles[0].ID)
	assert.Equal(t, "bluebook", styles[1].ID)
	assert.Equal(t, "apa", styles[2].ID)
	assert.True(t, styles[0].IsDefault)
	assert.False(t, styles[1].IsDefault)
}
