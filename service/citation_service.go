package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStyleNotFound        = errors.New("citation style not found")
	ErrMissingCitationField = errors.New("missing required citation field")
)

// CitationStyle describes one supported citation style
type CitationStyle struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	IsDefault   bool   `json:"is_default"`
}

// CitationFormatterService formats legal citations according to Canadian
// standards using the language model collaborator.
type CitationFormatterService struct {
	llm    LLM
	styles map[string]CitationStyle
}

// CitationOption is a functional option for CitationFormatterService
type CitationOption func(*CitationFormatterService)

// CitationWithLLM sets the language model collaborator
func CitationWithLLM(llm LLM) CitationOption {
	return func(s *CitationFormatterService) {
		s.llm = llm
	}
}

// NewCitationFormatterService creates a new citation formatter service
func NewCitationFormatterService(opts ...CitationOption) *CitationFormatterService {
	s := &CitationFormatterService{
		styles: map[string]CitationStyle{
			"mcgill": {
				ID:          "mcgill",
				Name:        "McGill Guide",
				Description: "Canadian Guide to Uniform Legal Citation (McGill Guide)",
				Version:     "9th Edition",
				IsDefault:   true,
			},
			"bluebook": {
				ID:          "bluebook",
				Name:        "Bluebook",
				Description: "The Bluebook: A Uniform System of Citation",
				Version:     "21st Edition",
			},
			"apa": {
				ID:          "apa",
				Name:        "APA",
				Description: "American Psychological Association Style",
				Version:     "7th Edition",
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FormattedCitation is the result of formatting a citation
type FormattedCitation struct {
	Style             CitationStyle     `json:"style"`
	SourceInfo        map[string]string `json:"source_info"`
	FormattedCitation string            `json:"formatted_citation"`
}

// resolveStyle validates the requested style, defaulting to McGill
func (s *CitationFormatterService) resolveStyle(styleID string) (CitationStyle, error) {
	if styleID == "" {
		styleID = "mcgill"
	}
	style, ok := s.styles[styleID]
	if !ok {
		return CitationStyle{}, fmt.Errorf("citation style %q: %w", styleID, ErrStyleNotFound)
	}
	return style, nil
}

func requireFields(info map[string]string, fields ...string) error {
	missing := make([]string, 0)
	for _, field := range fields {
		if info[field] == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCitationField, strings.Join(missing, ", "))
	}
	return nil
}

// FormatCaseCitation formats a case citation according to the given style
func (s *CitationFormatterService) FormatCaseCitation(ctx context.Context, caseInfo map[string]string, styleID string) (*FormattedCitation, error) {
	if s.llm == nil {
		return nil, ErrLLMNotSet
	}

	style, err := s.resolveStyle(styleID)
	if err != nil {
		return nil, err
	}
	if err := requireFields(caseInfo, "case_name", "year", "volume", "reporter", "page"); err != nil {
		return nil, err
	}

	instructions := fmt.Sprintf(`You are a legal citation expert specializing in the %s (%s).
Format the provided case information according to the %s citation style.
Provide only the formatted citation without any additional text or explanation.`,
		style.Name, style.Version, style.Name)

	var builder strings.Builder
	fmt.Fprintf(&builder, "Please format the following case information according to the %s citation style:\n\n", style.Name)
	fmt.Fprintf(&builder, "Case Name: %s\n", caseInfo["case_name"])
	fmt.Fprintf(&builder, "Year: %s\n", caseInfo["year"])
	fmt.Fprintf(&builder, "Volume: %s\n", caseInfo["volume"])
	fmt.Fprintf(&builder, "Reporter: %s\n", caseInfo["reporter"])
	fmt.Fprintf(&builder, "Page: %s\n", caseInfo["page"])
	if court := caseInfo["court"]; court != "" {
		fmt.Fprintf(&builder, "Court: %s\n", court)
	}
	if jurisdiction := caseInfo["jurisdiction"]; jurisdiction != "" {
		fmt.Fprintf(&builder, "Jurisdiction: %s\n", jurisdiction)
	}
	builder.WriteString("\nProvide only the formatted citation without any additional text.")

	reply, err := s.llm.Generate(ctx, instructions, builder.String())
	if err != nil {
		return nil, err
	}

	return &FormattedCitation{
		Style:             style,
		SourceInfo:        caseInfo,
		FormattedCitation: cleanCitation(reply),
	}, nil
}

// FormatLegislationCitation formats a legislation citation according to the
// given style
func (s *CitationFormatterService) FormatLegislationCitation(ctx context.Context, legislationInfo map[string]string, styleID string) (*FormattedCitation, error) {
	if s.llm == nil {
		return nil, ErrLLMNotSet
	}

	style, err := s.resolveStyle(styleID)
	if err != nil {
		return nil, err
	}
	if err := requireFields(legislationInfo, "title", "jurisdiction", "year", "chapter"); err != nil {
		return nil, err
	}

	instructions := fmt.Sprintf(`You are a legal citation expert specializing in the %s (%s).
Format the provided legislation information according to the %s citation style.
Provide only the formatted citation without any additional text or explanation.`,
		style.Name, style.Version, style.Name)

	var builder strings.Builder
	fmt.Fprintf(&builder, "Please format the following legislation information according to the %s citation style:\n\n", style.Name)
	fmt.Fprintf(&builder, "Title: %s\n", legislationInfo["title"])
	fmt.Fprintf(&builder, "Jurisdiction: %s\n", legislationInfo["jurisdiction"])
	fmt.Fprintf(&builder, "Year: %s\n", legislationInfo["year"])
	fmt.Fprintf(&builder, "Chapter: %s\n", legislationInfo["chapter"])
	if volume := legislationInfo["statute_volume"]; volume != "" {
		fmt.Fprintf(&builder, "Statute Volume: %s\n", volume)
	}
	if sections := legislationInfo["sections"]; sections != "" {
		fmt.Fprintf(&builder, "Sections: %s\n", sections)
	}
	builder.WriteString("\nProvide only the formatted citation without any additional text.")

	reply, err := s.llm.Generate(ctx, instructions, builder.String())
	if err != nil {
		return nil, err
	}

	return &FormattedCitation{
		Style:             style,
		SourceInfo:        legislationInfo,
		FormattedCitation: cleanCitation(reply),
	}, nil
}

// ParsedCitation is the result of parsing a citation into components
type ParsedCitation struct {
	OriginalCitation string `json:"original_citation"`
	ParsedResult     string `json:"parsed_result"`
}

// ParseCitation asks the collaborator to break a citation into components
func (s *CitationFormatterService) ParseCitation(ctx context.Context, citationText string) (*ParsedCitation, error) {
	if s.llm == nil {
		return nil, ErrLLMNotSet
	}

	instructions := `You are a legal citation expert.
Parse the provided citation into its components.
Identify whether it's a case citation or legislation citation.
Extract all relevant components and return them in a structured format.`

	prompt := fmt.Sprintf(`Please parse the following citation into its components:

Citation: %s

First, determine if this is a case citation or legislation citation.
Extract the case name or title, year, volume, reporter, page, court, and
jurisdiction as applicable, and format your response as a structured
analysis of the citation components.`, citationText)

	reply, err := s.llm.Generate(ctx, instructions, prompt)
	if err != nil {
		return nil, err
	}

	return &ParsedCitation{
		OriginalCitation: citationText,
		ParsedResult:     reply,
	}, nil
}

// ListStyles returns all available citation styles
func (s *CitationFormatterService) ListStyles() []CitationStyle {
	styles := make([]CitationStyle, 0, len(s.styles))
	for _, id := range []string{"mcgill", "bluebook", "apa"} {
		styles = append(styles, s.styles[id])
	}
	return styles
}

// cleanCitation strips stray quoting the model sometimes adds
func cleanCitation(reply string) string {
	citation := strings.TrimSpace(reply)
	if strings.HasPrefix(citation, `"`) && strings.HasSuffix(citation, `"`) && len(citation) > 1 {
		citation = citation[1 : len(citation)-1]
	}
	return strings.TrimSpace(citation)
}
