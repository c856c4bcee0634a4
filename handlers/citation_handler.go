package handlers

import (
	"errors"
	"net/http"

	"lawpath-backend/service"

	"github.com/gin-gonic/gin"
)

// CitationHandler handles HTTP requests for citation formatting
type CitationHandler struct {
	citationService *service.CitationFormatterService
}

// NewCitationHandler creates a new citation handler
func NewCitationHandler(citationService *service.CitationFormatterService) *CitationHandler {
	return &CitationHandler{
		citationService: citationService,
	}
}

// FormatCaseCitationRequest represents the request body for formatting a
// case citation
type FormatCaseCitationRequest struct {
	CaseInfo map[string]string `json:"case_info" binding:"required"`
	StyleID  string            `json:"style_id"`
}

// FormatCaseCitation handles POST /api/citations/case
func (h *CitationHandler) FormatCaseCitation(c *gin.Context) {
	var req FormatCaseCitationRequest
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

	result, err := h.citationService.FormatCaseCitation(c.Request.Context(), req.CaseInfo, req.StyleID)
	if err != nil {
		h.writeCitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// FormatLegislationCitationRequest represents the request body for
// formatting a legislation citation
type FormatLegislationCitationRequest struct {
	LegislationInfo map[string]string `json:"legislation_info" binding:"required"`
	StyleID         string            `json:"style_id"`
}

// FormatLegislationCitation handles POST /api/citations/legislation
func (h *CitationHandler) FormatLegislationCitation(c *gin.Context) {
	var req FormatLegislationCitationRequest
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

	result, err := h.citationService.FormatLegislationCitation(c.Request.Context(), req.LegislationInfo, req.StyleID)
	if err != nil {
		h.writeCitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// ParseCitationRequest represents the request body for parsing a citation
type ParseCitationRequest struct {
	Citation string `json:"citation" binding:"required"`
}

// ParseCitation handles POST /api/citations/parse
func (h *CitationHandler) ParseCitation(c *gin.Context) {
	var req ParseCitationRequest
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

	result, err := h.citationService.ParseCitation(c.Request.Context(), req.Citation)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PARSE_FAILED",
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

// ListStyles handles GET /api/citations/styles
func (h *CitationHandler) ListStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.citationService.ListStyles(),
	})
}

func (h *CitationHandler) writeCitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStyleNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STYLE_NOT_FOUND",
				"message": err.Error(),
			},
		})
	case errors.Is(err, service.ErrMissingCitationField):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FIELD",
				"message": err.Error(),
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORMATTING_FAILED",
				"message": err.Error(),
			},
		})
	}
}
