package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"lawpath-backend/models"
	"lawpath-backend/repository"
	"lawpath-backend/textparse"

	"github.com/google/uuid"
)

var (
	ErrLLMNotSet           = errors.New("language model collaborator not set")
	ErrTemplateStoreNotSet = errors.New("template store not set")
)

// TemplateStore is the standard-template collaborator: single-key get/put
// with no transactional semantics.
type TemplateStore interface {
	Get(ctx context.Context, templateID string) (*models.StandardTemplate, error)
	Put(ctx context.Context, template *models.StandardTemplate) (string, error)
}

// ContractAnalysisService analyzes contracts: clause extraction, per-clause
// risk analysis, template matching, risk aggregation, and comparison.
type ContractAnalysisService struct {
	llm          LLM
	templates    TemplateStore
	riskSettings models.RiskAssessmentSettings
}

// AnalysisOption is a functional option for ContractAnalysisService
type AnalysisOption func(*ContractAnalysisService)

// AnalysisWithLLM sets the language model collaborator
func AnalysisWithLLM(llm LLM) AnalysisOption {
	return func(s *ContractAnalysisService) {
		s.llm = llm
	}
}

// AnalysisWithTemplateStore sets the standard template store
func AnalysisWithTemplateStore(store TemplateStore) AnalysisOption {
	return func(s *ContractAnalysisService) {
		s.templates = store
	}
}

// AnalysisWithRiskSettings overrides the default risk weighting profile
func AnalysisWithRiskSettings(settings models.RiskAssessmentSettings) AnalysisOption {
	return func(s *ContractAnalysisService) {
		s.riskSettings = settings
	}
}

// NewContractAnalysisService creates a new contract analysis service
func NewContractAnalysisService(opts ...AnalysisOption) *ContractAnalysisService {
	s := &ContractAnalysisService{
		riskSettings: models.DefaultRiskSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ContractAnalysisRequest represents a request to analyze a contract
type ContractAnalysisRequest struct {
	ContractName          string
	ContractType          string
	ContractText          string
	Jurisdiction          string
	ComparisonTemplateIDs []string
}

// ContractComparisonRequest represents a request to compare two contracts
type ContractComparisonRequest struct {
	ContractAName   string
	ContractBName   string
	ContractAText   string
	ContractBText   string
	FocusCategories []models.ClauseCategory
}

const analysisSystemPrompt = "You are a legal expert specializing in contract analysis for Canadian jurisdictions."

// AnalyzeContract analyzes a contract and returns a detailed analysis result.
// Collaborator failures propagate; malformed replies degrade to documented
// fallbacks without error.
func (s *ContractAnalysisService) AnalyzeContract(ctx context.Context, req ContractAnalysisRequest) (*models.ContractAnalysisResult, error) {
	if s.llm == nil {
		return nil, ErrLLMNotSet
	}

	clauses, err := s.extractClauses(ctx, req.ContractText)
	if err != nil {
		return nil, err
	}

	analyses, err := s.analyzeClauses(ctx, clauses, req.Jurisdiction, req.ComparisonTemplateIDs)
	if err != nil {
		return nil, err
	}

	summary, err := s.generateSummary(ctx, req, clauses)
	if err != nil {
		return nil, err
	}

	overallRisk, explanation, score := AssessOverallRisk(analyses, s.riskSettings)
	recommendations := GenerateRecommendations(analyses, summary)

	contractType := req.ContractType
	if contractType == "" {
		contractType = "Unknown"
	}
	jurisdiction := req.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = "Unknown"
	}

	return &models.ContractAnalysisResult{
		Summary:                *summary,
		Clauses:                analyses,
		OverallRiskLevel:       overallRisk,
		OverallRiskExplanation: explanation,
		OverallScore:           score,
		Recommendations:        recommendations,
		Metadata: map[string]string{
			"contract_type":    contractType,
			"jurisdiction":     jurisdiction,
			"analysis_version": "1.0",
		},
	}, nil
}

// analyzeClauses fans out per-clause analysis. Each clause is independent,
// so the collaborator calls run concurrently; results join back in the
// original clause order.
func (s *ContractAnalysisService) analyzeClauses(
	ctx context.Context,
	clauses []models.ContractClause,
	jurisdiction string,
	templateIDs []string,
) ([]models.ClauseAnalysis, error) {
	analyses := make([]models.ClauseAnalysis, len(clauses))
	errs := make([]error, len(clauses))

	var wg sync.WaitGroup
	for i, clause := range clauses {
		wg.Add(1)
		go func(i int, clause models.ContractClause) {
			defer wg.Done()

			analysis, err := s.analyzeClause(ctx, clause, jurisdiction)
			if err != nil {
				errs[i] = err
				return
			}

			if len(templateIDs) > 0 {
				matches, err := s.compareToTemplates(ctx, clause, templateIDs)
				if err != nil {
					errs[i] = err
					return
				}
				analysis.TemplateMatches = matches
			}
			analyses[i] = *analysis
		}(i, clause)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return analyses, nil
}

// clausePayload mirrors the JSON objects the model is asked to emit
type clausePayload struct {
	Title           string `json:"title"`
	Text            string `json:"text"`
	Category        string `json:"category"`
	RiskLevel       string `json:"risk_level"`
	RiskExplanation string `json:"risk_explanation"`
}

// extractClauses asks the model to break the contract into categorized
// clauses. A reply that is not a valid JSON array degrades to a single
// whole-document pseudo-clause rather than an error.
func (s *ContractAnalysisService) extractClauses(ctx context.Context, contractText string) ([]models.ContractClause, error) {
	categories := make([]string, 0, len(models.AllClauseCategories))
	for _, c := range models.AllClauseCategories {
		categories = append(categories, string(c))
	}

	prompt := fmt.Sprintf(`Extract all clauses from the following contract.
For each clause:
1. Identify a descriptive title
2. Categorize the clause into one of these categories: %s
3. Determine the risk level: no_risk, low_risk, medium_risk, high_risk, critical_risk
4. Provide a brief explanation for the risk assessment

Contract text:
%s

Output a JSON list of clauses, with each clause having: title, text, category, risk_level, and risk_explanation.`,
		strings.Join(categories, ", "), contractText)

	reply, err := s.llm.Generate(ctx, analysisSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	return parseClauseReply(contractText, reply), nil
}

// parseClauseReply turns the model reply into clauses, falling back to one
// whole-document clause when the reply is not valid structured data.
func parseClauseReply(contractText, reply string) []models.ContractClause {
	var payloads []clausePayload
	raw := textparse.FirstJSONArray(reply)
	if raw == "" || json.Unmarshal([]byte(raw), &payloads) != nil {
		return []models.ContractClause{fallbackClause(contractText)}
	}

	clauses := make([]models.ContractClause, 0, len(payloads))
	for idx, p := range payloads {
		title := p.Title
		if title == "" {
			title = fmt.Sprintf("Clause %d", idx+1)
		}

		clause := models.ContractClause{
			ID:              uuid.New(),
			Title:           title,
			Text:            p.Text,
			Category:        models.ParseClauseCategory(p.Category),
			RiskLevel:       models.ParseRiskLevel(p.RiskLevel, models.RiskLow),
			RiskExplanation: p.RiskExplanation,
			Position:        models.ClausePosition{Start: -1},
		}

		// Locate the clause verbatim in the source text (first occurrence)
		if p.Text != "" {
			if start := strings.Index(contractText, p.Text); start >= 0 {
				clause.Position = models.ClausePosition{Start: start, End: start + len(p.Text)}
			}
		}

		clauses = append(clauses, clause)
	}
	return clauses
}

// fallbackClause covers the whole document when clause extraction fails
func fallbackClause(contractText string) models.ContractClause {
	text := contractText
	if len(text) > 1000 {
		text = text[:1000] + "..."
	}
	return models.ContractClause{
		ID:              uuid.New(),
		Title:           "Full Contract",
		Text:            text,
		Category:        models.CategoryOther,
		RiskLevel:       models.RiskMedium,
		RiskExplanation: "Unable to parse contract into clauses. Manual review recommended.",
		Position:        models.ClausePosition{Start: -1},
	}
}

// analyzeClause recovers alternative wording, provincial differences, and
// legal concerns from a clause-specific model reply. Missing sections yield
// empty fields, never errors.
func (s *ContractAnalysisService) analyzeClause(ctx context.Context, clause models.ContractClause, jurisdiction string) (*models.ClauseAnalysis, error) {
	jurisdictionText := ""
	if jurisdiction != "" {
		jurisdictionText = " in " + jurisdiction
	}

	prompt := fmt.Sprintf(`As a legal expert, analyze this %s clause%s:

%s

Provide:
1. Alternative wording that might be more favorable (if applicable)
2. Provincial differences to consider for Canadian jurisdictions (if applicable)
3. Key legal concerns with this clause (bullet points)`,
		clause.Category, jurisdictionText, clause.Text)

	reply, err := s.llm.Generate(ctx, analysisSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	analysis := &models.ClauseAnalysis{
		Clause:        clause,
		LegalConcerns: []string{},
	}

	for _, part := range strings.Split(reply, "\n\n") {
		trimmed := strings.TrimSpace(part)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "alternative wording"):
			wording := textparse.ExtractSection(trimmed, "Alternative wording", "")
			if wording != "" {
				analysis.AlternativeWording = &wording
			}
		case strings.HasPrefix(lower, "provincial differences"):
			notes := textparse.ExtractSection(trimmed, "Provincial differences", "")
			if notes != "" {
				analysis.ProvincialDifferences = map[string]string{"general": notes}
			}
		case strings.HasPrefix(lower, "legal concerns"), strings.HasPrefix(lower, "key legal concerns"):
			analysis.LegalConcerns = textparse.ExtractBulletPoints(trimmed)
		}
	}

	return analysis, nil
}

// compareToTemplates compares a clause against stored standard templates.
// Templates without a clause of the same category are skipped; match order
// follows the input template-ID order.
func (s *ContractAnalysisService) compareToTemplates(ctx context.Context, clause models.ContractClause, templateIDs []string) ([]models.TemplateMatch, error) {
	if s.templates == nil {
		return nil, ErrTemplateStoreNotSet
	}

	matches := make([]models.TemplateMatch, 0)
	for _, templateID := range templateIDs {
		template, err := s.templates.Get(ctx, templateID)
		if err != nil {
			if errors.Is(err, repository.ErrTemplateNotFound) {
				continue
			}
			return nil, err
		}

		templateClauseText, ok := template.Clauses[clause.Category]
		if !ok {
			continue
		}

		prompt := fmt.Sprintf(`Compare these two %s clauses and determine their similarity on a scale of 0.0 to 1.0:

Clause 1:
%s

Standard Template Clause:
%s

Provide:
1. A similarity score between 0.0 and 1.0 (where 1.0 is identical)
2. A brief explanation of key differences`,
			clause.Category, clause.Text, templateClauseText)

		reply, err := s.llm.Generate(ctx, analysisSystemPrompt, prompt)
		if err != nil {
			return nil, err
		}

		differences := textparse.FirstParagraphContaining(reply, "differences")
		if differences == "" {
			differences = "Unknown differences"
		}

		matches = append(matches, models.TemplateMatch{
			TemplateID:      templateID,
			TemplateName:    template.Name,
			SimilarityScore: textparse.ExtractSimilarityScore(reply),
			Differences:     differences,
		})
	}
	return matches, nil
}

var summaryDatePattern = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\w+ \d{1,2},? \d{4})\b`)

// generateSummary extracts headline contract facts from a model reply
func (s *ContractAnalysisService) generateSummary(ctx context.Context, req ContractAnalysisRequest, clauses []models.ContractClause) (*models.ContractSummary, error) {
	contractText := req.ContractText
	if len(contractText) > 5000 {
		contractText = contractText[:5000] + "..."
	}

	prompt := fmt.Sprintf(`As a legal expert, provide a summary of this contract:

%s

Extract:
1. Contract title/type
2. All parties involved
3. Effective date (if available)
4. Termination date (if available)
5. 3-5 key points of the agreement
6. Any important clauses that appear to be missing

Label each item clearly, e.g. "Title:", "Parties:", "Key points:", "Missing clauses:".`, contractText)

	reply, err := s.llm.Generate(ctx, analysisSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	summary := &models.ContractSummary{
		Title:          req.ContractName,
		ContractType:   req.ContractType,
		KeyPoints:      []string{},
		MissingClauses: []string{},
	}
	if summary.Title == "" {
		summary.Title = "Unnamed Contract"
	}
	if summary.ContractType == "" {
		summary.ContractType = "General Contract"
	}

	if title := labeledValue(reply, "Contract title", "Title"); title != "" {
		summary.Title = title
	}
	if contractType := labeledValue(reply, "Contract type", "Type"); contractType != "" {
		summary.ContractType = contractType
	}

	if parties := textparse.ExtractSectionBulletPoints(reply, "Parties", ""); len(parties) > 0 {
		summary.Parties = parties
	} else if line := firstLine(textparse.ExtractSection(reply, "Parties", "")); line != "" {
		summary.Parties = []string{line}
	}
	if len(summary.Parties) == 0 {
		summary.Parties = []string{"Unknown"}
	}

	summary.KeyPoints = textparse.ExtractSectionBulletPoints(reply, "Key points", "")
	summary.MissingClauses = textparse.ExtractSectionBulletPoints(reply, "Missing clauses", "")

	if section := textparse.ExtractSection(reply, "Effective date", ""); section != "" {
		if date := summaryDatePattern.FindString(firstLine(section)); date != "" {
			summary.EffectiveDate = &date
		}
	}
	if section := textparse.ExtractSection(reply, "Termination date", ""); section != "" {
		if date := summaryDatePattern.FindString(firstLine(section)); date != "" {
			summary.TerminationDate = &date
		}
	}

	return summary, nil
}

// labeledValue finds the first "<label>: value" line under any of the labels
func labeledValue(text string, labels ...string) string {
	for _, label := range labels {
		section := textparse.ExtractSection(text, label, "")
		if section == "" {
			continue
		}
		if line := firstLine(section); line != "" {
			return line
		}
	}
	return ""
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}

// AssessOverallRisk aggregates per-clause risk levels into a single overall
// level, explanation, and normalized 0-100 score. Pure function; clause
// order does not affect the result.
//
// The level decision is evaluated strictly in priority order: one critical
// clause outweighs any number of smaller ones.
func AssessOverallRisk(analyses []models.ClauseAnalysis, settings models.RiskAssessmentSettings) (models.RiskLevel, string, int) {
	weighted := make(map[models.RiskLevel]float64, len(models.AllRiskLevels))
	counts := make(map[models.RiskLevel]int, len(models.AllRiskLevels))

	for _, analysis := range analyses {
		clause := analysis.Clause
		weight, ok := settings.RiskWeights[clause.Category]
		if !ok {
			weight = 1.0
		}
		weighted[clause.RiskLevel] += weight
		counts[clause.RiskLevel]++
	}

	current := 0.0
	for level, sum := range weighted {
		current += sum * float64(level.Ordinal())
	}

	maxPossible := 0.0
	for _, weight := range settings.RiskWeights {
		maxPossible += weight
	}
	maxPossible *= 4
	if len(settings.RiskWeights) == 0 {
		maxPossible = float64(len(analyses)) * 4
	}

	score := 50
	if maxPossible > 0 {
		score = 100 - int(current/maxPossible*100+0.5)
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
	}

	overall := models.RiskLow
	switch {
	case counts[models.RiskCritical] > 0:
		overall = models.RiskCritical
	case counts[models.RiskHigh] > 1:
		overall = models.RiskHigh
	case counts[models.RiskMedium] > 2 || counts[models.RiskHigh] == 1:
		overall = models.RiskMedium
	}

	highRiskTitles := make([]string, 0)
	for _, analysis := range analyses {
		if analysis.Clause.RiskLevel == models.RiskHigh || analysis.Clause.RiskLevel == models.RiskCritical {
			highRiskTitles = append(highRiskTitles, analysis.Clause.Title)
		}
	}

	var explanation string
	if len(highRiskTitles) > 0 {
		explanation = fmt.Sprintf("This contract has %d high or critical risk clauses that require attention: %s. ",
			len(highRiskTitles), strings.Join(highRiskTitles, ", "))
	} else {
		explanation = "This contract has no high or critical risk clauses. "
	}
	explanation += fmt.Sprintf("Overall contract risk score: %d/100. ", score)

	return overall, explanation, score
}

const genericRecommendation = "This contract appears to have reasonable terms, but a thorough review by qualified legal counsel is always recommended."

// GenerateRecommendations applies the deterministic recommendation rules in
// order: high/critical clause revisions, then missing clauses, then a single
// generic recommendation when nothing else fired.
func GenerateRecommendations(analyses []models.ClauseAnalysis, summary *models.ContractSummary) []string {
	recommendations := make([]string, 0)

	for _, analysis := range analyses {
		level := analysis.Clause.RiskLevel
		if level != models.RiskHigh && level != models.RiskCritical {
			continue
		}
		if analysis.AlternativeWording != nil {
			recommendations = append(recommendations,
				fmt.Sprintf("Revise the %s clause with more favorable language.", analysis.Clause.Title))
		} else {
			recommendations = append(recommendations,
				fmt.Sprintf("Review and potentially renegotiate the %s clause.", analysis.Clause.Title))
		}
	}

	for _, missing := range summary.MissingClauses {
		recommendations = append(recommendations,
			fmt.Sprintf("Add a missing %s clause to the contract.", missing))
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, genericRecommendation)
	}

	return recommendations
}

// CompareContracts compares two contracts clause-by-clause and identifies
// significant differences. When multiple clauses share a category the later
// one wins; categories are iterated in sorted order for deterministic output.
func (s *ContractAnalysisService) CompareContracts(ctx context.Context, req ContractComparisonRequest) (*models.ContractComparisonResult, error) {
	if s.llm == nil {
		return nil, ErrLLMNotSet
	}

	clausesA, err := s.extractClauses(ctx, req.ContractAText)
	if err != nil {
		return nil, err
	}
	clausesB, err := s.extractClauses(ctx, req.ContractBText)
	if err != nil {
		return nil, err
	}

	groupedA := groupClausesByCategory(clausesA)
	groupedB := groupClausesByCategory(clausesB)

	common := make([]models.ClauseCategory, 0)
	uniqueToA := make([]models.ClauseCategory, 0)
	uniqueToB := make([]models.ClauseCategory, 0)
	for category := range groupedA {
		if _, ok := groupedB[category]; ok {
			common = append(common, category)
		} else {
			uniqueToA = append(uniqueToA, category)
		}
	}
	for category := range groupedB {
		if _, ok := groupedA[category]; !ok {
			uniqueToB = append(uniqueToB, category)
		}
	}
	sortCategories(common)
	sortCategories(uniqueToA)
	sortCategories(uniqueToB)

	focus := make(map[models.ClauseCategory]bool, len(req.FocusCategories))
	for _, category := range req.FocusCategories {
		focus[category] = true
	}

	differences := make([]models.ClauseDifference, 0)
	for _, category := range common {
		if len(focus) > 0 && !focus[category] {
			continue
		}

		clauseA := groupedA[category]
		clauseB := groupedB[category]
		if clauseA.Text == clauseB.Text {
			continue
		}

		diff, err := s.analyzeDifference(ctx, clauseA, clauseB)
		if err != nil {
			return nil, err
		}
		differences = append(differences, *diff)
	}

	contractAName := req.ContractAName
	if contractAName == "" {
		contractAName = "Contract A"
	}
	contractBName := req.ContractBName
	if contractBName == "" {
		contractBName = "Contract B"
	}

	return &models.ContractComparisonResult{
		ContractAName:  contractAName,
		ContractBName:  contractBName,
		CommonClauses:  common,
		UniqueToA:      uniqueToA,
		UniqueToB:      uniqueToB,
		Differences:    differences,
		Recommendation: comparisonRecommendation(differences, uniqueToA, uniqueToB),
	}, nil
}

// groupClausesByCategory keeps the last clause per category when duplicates
// share one. A documented simplification carried over for behavioral parity.
func groupClausesByCategory(clauses []models.ContractClause) map[models.ClauseCategory]models.ContractClause {
	grouped := make(map[models.ClauseCategory]models.ContractClause, len(clauses))
	for _, clause := range clauses {
		grouped[clause.Category] = clause
	}
	return grouped
}

func sortCategories(categories []models.ClauseCategory) {
	sort.Slice(categories, func(i, j int) bool {
		return categories[i] < categories[j]
	})
}

const defaultDifferenceExplanation = "There are notable differences between these clauses that may affect legal rights and obligations."

// analyzeDifference rates the significance of a same-category divergence
func (s *ContractAnalysisService) analyzeDifference(ctx context.Context, clauseA, clauseB models.ContractClause) (*models.ClauseDifference, error) {
	prompt := fmt.Sprintf(`Compare these two %s clauses and explain the significance of their differences:

Clause A:
%s

Clause B:
%s

Provide:
1. Significance level (no_risk, low_risk, medium_risk, high_risk, critical_risk)
2. Brief explanation of the legal implications of these differences`,
		clauseA.Category, clauseA.Text, clauseB.Text)

	reply, err := s.llm.Generate(ctx, analysisSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	explanation := textparse.FirstParagraphContaining(reply, "implication", "explanation")
	if explanation == "" {
		explanation = defaultDifferenceExplanation
	}

	return &models.ClauseDifference{
		Category:      clauseA.Category,
		Title:         clauseA.Title,
		ContractAText: clauseA.Text,
		ContractBText: clauseB.Text,
		Significance:  models.RiskLevelFromText(reply),
		Explanation:   explanation,
	}, nil
}

const comparisonDisclaimer = "For a complete legal assessment, consult with qualified legal counsel in the relevant jurisdiction."

// comparisonRecommendation builds the overall comparison recommendation from
// the deterministic rules: high/critical differences, then clauses unique to
// each side, then the standing disclaimer.
func comparisonRecommendation(differences []models.ClauseDifference, uniqueToA, uniqueToB []models.ClauseCategory) string {
	highRisk := make([]string, 0)
	for _, diff := range differences {
		if diff.Significance == models.RiskHigh || diff.Significance == models.RiskCritical {
			highRisk = append(highRisk, string(diff.Category))
		}
	}

	parts := make([]string, 0)
	if len(highRisk) > 0 {
		parts = append(parts, fmt.Sprintf("Pay close attention to significant differences in the following clauses: %s.",
			strings.Join(highRisk, ", ")))
	}
	if len(uniqueToA) > 0 {
		parts = append(parts, fmt.Sprintf("Contract A contains these clauses not found in Contract B: %s.",
			joinCategories(uniqueToA)))
	}
	if len(uniqueToB) > 0 {
		parts = append(parts, fmt.Sprintf("Contract B contains these clauses not found in Contract A: %s.",
			joinCategories(uniqueToB)))
	}
	if len(parts) == 0 {
		parts = append(parts, "Both contracts are substantially similar in their legal provisions.")
	}
	parts = append(parts, comparisonDisclaimer)

	return strings.Join(parts, " ")
}

func joinCategories(categories []models.ClauseCategory) string {
	values := make([]string, 0, len(categories))
	for _, category := range categories {
		values = append(values, string(category))
	}
	return strings.Join(values, ", ")
}

// AddTemplate stores a standard template for later comparison
func (s *ContractAnalysisService) AddTemplate(ctx context.Context, template *models.StandardTemplate) (string, error) {
	if s.templates == nil {
		return "", ErrTemplateStoreNotSet
	}
	return s.templates.Put(ctx, template)
}

// GetTemplate retrieves a standard template by ID
func (s *ContractAnalysisService) GetTemplate(ctx context.Context, templateID string) (*models.StandardTemplate, error) {
	if s.templates == nil {
		return nil, ErrTemplateStoreNotSet
	}
	return s.templates.Get(ctx, templateID)
}
