package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClauseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  ClauseCategory
	}{
		{"indemnification", CategoryIndemnification},
		{"Intellectual Property", CategoryIntellectualProperty},
		{"FORCE-MAJEURE", CategoryForceMajeure},
		{"  governing_law  ", CategoryGoverningLaw},
		{"something else entirely", CategoryOther},
		{"", CategoryOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseClauseCategory(tt.input), "input %q", tt.input)
	}
}

func TestParseRiskLevel(t *testing.T) {
	assert.Equal(t, RiskHigh, ParseRiskLevel("high_risk", RiskLow))
	assert.Equal(t, RiskHigh, ParseRiskLevel("High_Risk", RiskLow))
	assert.Equal(t, RiskLow, ParseRiskLevel("not a level", RiskLow))
	assert.Equal(t, RiskMedium, ParseRiskLevel("", RiskMedium))
}

func TestRiskLevelOrdinal(t *testing.T) {
	assert.Equal(t, 0, RiskNone.Ordinal())
	assert.Equal(t, 1, RiskLow.Ordinal())
	assert.Equal(t, 2, RiskMedium.Ordinal())
	assert.Equal(t, 3, RiskHigh.Ordinal())
	assert.Equal(t, 4, RiskCritical.Ordinal())
}

func TestRiskLevelFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want RiskLevel
	}{
		{"explicit critical", "this is a critical_risk divergence", RiskCritical},
		{"earlier level wins on multiple mentions", "no_risk here, despite critical_risk wording later", RiskNone},
		{"no mention defaults to medium", "the clauses differ in notice periods", RiskMedium},
		{"high risk", "Significance: high_risk", RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskLevelFromText(tt.text))
		})
	}
}

func TestDefaultRiskSettings(t *testing.T) {
	settings := DefaultRiskSettings()

	assert.Equal(t, "Canada", settings.Jurisdiction)
	assert.InDelta(t, 1.5, settings.RiskWeights[CategoryIndemnification], 0.0001)
	assert.InDelta(t, 1.5, settings.RiskWeights[CategoryLiability], 0.0001)
	assert.InDelta(t, 1.2, settings.RiskWeights[CategoryTermination], 0.0001)
	assert.InDelta(t, 1.0, settings.RiskWeights[CategoryConfidentiality], 0.0001)
	assert.InDelta(t, 1.3, settings.RiskWeights[CategoryIntellectualProperty], 0.0001)
}
