package handlers

import (
	"net/http"

	"lawpath-backend/service"

	"github.com/gin-gonic/gin"
)

// PredictionHandler handles HTTP requests for case outcome prediction
type PredictionHandler struct {
	predictionService *service.PredictiveAnalysisService
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(predictionService *service.PredictiveAnalysisService) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
	}
}

// PredictCaseOutcomeRequest represents the request body for predicting a
// case outcome
type PredictCaseOutcomeRequest struct {
	CaseFacts         string   `json:"case_facts" binding:"required"`
	LegalIssues       []string `json:"legal_issues" binding:"required"`
	Jurisdiction      string   `json:"jurisdiction" binding:"required"`
	RelevantStatutes  []string `json:"relevant_statutes"`
	SimilarCases      []string `json:"similar_cases"`
	ClientPosition    string   `json:"client_position" binding:"required"`
	OpposingArguments string   `json:"opposing_arguments"`
}

// PredictCaseOutcome handles POST /api/predictions/case-outcome
func (h *PredictionHandler) PredictCaseOutcome(c *gin.Context) {
	var req PredictCaseOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	serviceReq := service.CaseOutcomeRequest{
		CaseFacts:         req.CaseFacts,
		LegalIssues:       req.LegalIssues,
		Jurisdiction:      req.Jurisdiction,
		RelevantStatutes:  req.RelevantStatutes,
		SimilarCases:      req.SimilarCases,
		ClientPosition:    req.ClientPosition,
		OpposingArguments: req.OpposingArguments,
	}

	result, err := h.predictionService.AnalyzeCaseOutcome(c.Request.Context(), serviceReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PREDICTION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
