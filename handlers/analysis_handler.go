package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"lawpath-backend/models"
	"lawpath-backend/repository"
	"lawpath-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalysisHandler handles HTTP requests for contract analysis
type AnalysisHandler struct {
	analysisService *service.ContractAnalysisService
	jobService      *service.AnalysisJobService
	templateRepo    *repository.TemplateRepository
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(
	analysisService *service.ContractAnalysisService,
	jobService *service.AnalysisJobService,
	templateRepo *repository.TemplateRepository,
) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		jobService:      jobService,
		templateRepo:    templateRepo,
	}
}

// AnalyzeContractRequest represents the request body for analyzing a contract
type AnalyzeContractRequest struct {
	ContractName          string   `json:"contract_name"`
	ContractType          string   `json:"contract_type"`
	ContractText          string   `json:"contract_text" binding:"required"`
	Jurisdiction          string   `json:"jurisdiction"`
	ComparisonTemplateIDs []string `json:"comparison_template_ids"`
}

// AnalyzeContract handles POST /api/contracts/analyze
func (h *AnalysisHandler) AnalyzeContract(c *gin.Context) {
	var req AnalyzeContractRequest
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

	serviceReq := service.ContractAnalysisRequest{
		ContractName:          req.ContractName,
		ContractType:          req.ContractType,
		ContractText:          req.ContractText,
		Jurisdiction:          req.Jurisdiction,
		ComparisonTemplateIDs: req.ComparisonTemplateIDs,
	}

	result, err := h.analysisService.AnalyzeContract(c.Request.Context(), serviceReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
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

// AnalyzeDocumentRequest represents the request body for analyzing an
// uploaded document in the background
type AnalyzeDocumentRequest struct {
	DocumentID            string   `json:"document_id" binding:"required"`
	ContractName          string   `json:"contract_name"`
	ContractType          string   `json:"contract_type"`
	Jurisdiction          string   `json:"jurisdiction"`
	ComparisonTemplateIDs []string `json:"comparison_template_ids"`
}

// AnalyzeDocument handles POST /api/contracts/analyze-async
func (h *AnalysisHandler) AnalyzeDocument(c *gin.Context) {
	var req AnalyzeDocumentRequest
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

	documentID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DOCUMENT_ID",
				"message": "Invalid document_id format",
			},
		})
		return
	}

	params := service.AnalysisParameters{
		ContractName:          req.ContractName,
		ContractType:          req.ContractType,
		Jurisdiction:          req.Jurisdiction,
		ComparisonTemplateIDs: req.ComparisonTemplateIDs,
	}

	// Create job (synchronous, fast)
	result, err := h.jobService.StartAnalysis(c.Request.Context(), service.StartAnalysisRequest{
		DocumentID: documentID,
		Parameters: params,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Document not found",
				},
			})
			return
		}
		if errors.Is(err, service.ErrDocumentNotReadable) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_DOCUMENT",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "JOB_CREATION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	// Spawn background goroutine for actual processing
	// Use background context (not request context) to avoid cancellation
	go func() {
		bgCtx := context.Background()
		if err := h.jobService.ProcessAnalysis(bgCtx, result.JobID, params); err != nil {
			// Error is stored in job.ErrorMessage; clients poll status
			log.Printf("Analysis job %s failed: %v", result.JobID, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"job_id":  result.JobID,
			"status":  "pending",
			"message": "Analysis job created. Poll /api/jobs/:id for updates.",
		},
	})
}

// GetJobStatus handles GET /api/jobs/:id
func (h *AnalysisHandler) GetJobStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid job ID format",
			},
		})
		return
	}

	result, err := h.jobService.GetJobStatus(c.Request.Context(), service.GetJobStatusRequest{JobID: id})
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Analysis job not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Job,
	})
}

// CompareContractsRequest represents the request body for comparing contracts
type CompareContractsRequest struct {
	ContractAName   string   `json:"contract_a_name"`
	ContractBName   string   `json:"contract_b_name"`
	ContractAText   string   `json:"contract_a_text" binding:"required"`
	ContractBText   string   `json:"contract_b_text" binding:"required"`
	FocusCategories []string `json:"focus_categories"`
}

// CompareContracts handles POST /api/contracts/compare
func (h *AnalysisHandler) CompareContracts(c *gin.Context) {
	var req CompareContractsRequest
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

	focus := make([]models.ClauseCategory, 0, len(req.FocusCategories))
	for _, category := range req.FocusCategories {
		focus = append(focus, models.ParseClauseCategory(category))
	}

	serviceReq := service.ContractComparisonRequest{
		ContractAName:   req.ContractAName,
		ContractBName:   req.ContractBName,
		ContractAText:   req.ContractAText,
		ContractBText:   req.ContractBText,
		FocusCategories: focus,
	}

	result, err := h.analysisService.CompareContracts(c.Request.Context(), serviceReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "COMPARISON_FAILED",
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

// AddTemplateRequest represents the request body for storing a template
type AddTemplateRequest struct {
	ID      string            `json:"id"`
	Name    string            `json:"name" binding:"required"`
	Clauses map[string]string `json:"clauses" binding:"required"`
}

// AddTemplate handles POST /api/templates
func (h *AnalysisHandler) AddTemplate(c *gin.Context) {
	var req AddTemplateRequest
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

	clauses := make(models.TemplateClauses, len(req.Clauses))
	for category, text := range req.Clauses {
		clauses[models.ParseClauseCategory(category)] = text
	}

	template := &models.StandardTemplate{
		ID:      req.ID,
		Name:    req.Name,
		Clauses: clauses,
	}

	templateID, err := h.analysisService.AddTemplate(c.Request.Context(), template)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CREATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"template_id": templateID,
		},
	})
}

// GetTemplate handles GET /api/templates/:id
func (h *AnalysisHandler) GetTemplate(c *gin.Context) {
	template, err := h.analysisService.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Template not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    template,
	})
}

// ListTemplates handles GET /api/templates
func (h *AnalysisHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templateRepo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    templates,
	})
}

// DeleteTemplate handles DELETE /api/templates/:id
func (h *AnalysisHandler) DeleteTemplate(c *gin.Context) {
	err := h.templateRepo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Template not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DELETE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
