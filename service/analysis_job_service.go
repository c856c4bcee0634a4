package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"lawpath-backend/models"
	"lawpath-backend/repository"
	"lawpath-backend/storage"

	"github.com/google/uuid"
)

var (
	ErrJobRepositoryNotSet = errors.New("analysis job repository not set")
	ErrDocumentStoreNotSet = errors.New("document storage not set")
	ErrAnalysisNotSet      = errors.New("contract analysis service not set")
	ErrJobCreationFailed   = errors.New("failed to create analysis job")
	ErrJobNotFound         = errors.New("analysis job not found")
	ErrDocumentNotReadable = errors.New("document is not a plain-text contract")
)

// Step names reported while an analysis job runs. The frontend polls job
// status and renders these verbatim.
const (
	stepExtractingClauses = "Extracting Clauses"
	stepAnalyzingClauses  = "Analyzing Clauses"
	stepGeneratingSummary = "Generating Summary"
	stepAssessingRisk     = "Assessing Risk"
)

// AnalysisJobService runs contract analyses as background jobs over uploaded
// documents, tracking per-step progress in the database.
type AnalysisJobService struct {
	jobRepo  *repository.AnalysisJobRepository
	docRepo  *repository.DocumentRepository
	store    storage.Storage
	analysis *ContractAnalysisService
}

// JobServiceOption is a functional option for AnalysisJobService
type JobServiceOption func(*AnalysisJobService)

// JobWithRepository sets the analysis job repository
func JobWithRepository(repo *repository.AnalysisJobRepository) JobServiceOption {
	return func(s *AnalysisJobService) {
		s.jobRepo = repo
	}
}

// JobWithDocumentRepository sets the document repository
func JobWithDocumentRepository(repo *repository.DocumentRepository) JobServiceOption {
	return func(s *AnalysisJobService) {
		s.docRepo = repo
	}
}

// JobWithStorage sets the document storage backend
func JobWithStorage(store storage.Storage) JobServiceOption {
	return func(s *AnalysisJobService) {
		s.store = store
	}
}

// JobWithAnalysisService sets the contract analysis service
func JobWithAnalysisService(analysis *ContractAnalysisService) JobServiceOption {
	return func(s *AnalysisJobService) {
		s.analysis = analysis
	}
}

// NewAnalysisJobService creates a new analysis job service
func NewAnalysisJobService(opts ...JobServiceOption) *AnalysisJobService {
	s := &AnalysisJobService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalysisParameters carries the analysis inputs that are not part of the
// stored document itself.
type AnalysisParameters struct {
	ContractName          string
	ContractType          string
	Jurisdiction          string
	ComparisonTemplateIDs []string
}

// StartAnalysisRequest represents a request to start a background analysis
type StartAnalysisRequest struct {
	DocumentID uuid.UUID
	Parameters AnalysisParameters
}

// StartAnalysisResult represents the result of creating an analysis job
type StartAnalysisResult struct {
	JobID uuid.UUID
}

// GetJobStatusRequest represents a request to get job status
type GetJobStatusRequest struct {
	JobID uuid.UUID
}

// GetJobStatusResult represents the result of getting job status
type GetJobStatusResult struct {
	Job *models.AnalysisJob
}

// StartAnalysis validates the document and creates a pending analysis job.
// It returns immediately; ProcessAnalysis performs the actual work.
func (s *AnalysisJobService) StartAnalysis(ctx context.Context, req StartAnalysisRequest) (*StartAnalysisResult, error) {
	if s.jobRepo == nil {
		return nil, ErrJobRepositoryNotSet
	}
	if s.docRepo == nil {
		return nil, ErrDocumentStoreNotSet
	}

	doc, err := s.docRepo.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(doc.MimeType, "text/") {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotReadable, doc.MimeType)
	}

	documentID := doc.ID
	job := &models.AnalysisJob{
		DocumentID: &documentID,
		Status:     models.JobStatusPending,
		Steps:      initialAnalysisSteps(),
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, ErrJobCreationFailed
	}

	return &StartAnalysisResult{JobID: job.ID}, nil
}

// GetJobStatus retrieves the status of an analysis job
func (s *AnalysisJobService) GetJobStatus(ctx context.Context, req GetJobStatusRequest) (*GetJobStatusResult, error) {
	if s.jobRepo == nil {
		return nil, ErrJobRepositoryNotSet
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, ErrJobNotFound
	}

	return &GetJobStatusResult{Job: job}, nil
}

func initialAnalysisSteps() models.AnalysisSteps {
	names := []string{
		stepExtractingClauses,
		stepAnalyzingClauses,
		stepGeneratingSummary,
		stepAssessingRisk,
	}

	steps := make(models.AnalysisSteps, 0, len(names))
	for _, name := range names {
		steps = append(steps, models.AnalysisStep{
			Name:   name,
			Status: "pending",
		})
	}
	return steps
}

// ProcessAnalysis performs the analysis work in the background. It runs in a
// goroutine and can take tens of seconds for long contracts.
func (s *AnalysisJobService) ProcessAnalysis(ctx context.Context, jobID uuid.UUID, params AnalysisParameters) error {
	if s.jobRepo == nil {
		return ErrJobRepositoryNotSet
	}
	if s.docRepo == nil || s.store == nil {
		return ErrDocumentStoreNotSet
	}
	if s.analysis == nil {
		return ErrAnalysisNotSet
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load analysis job: %w", err)
	}
	if job.DocumentID == nil {
		s.markJobFailed(ctx, jobID, "analysis job has no document")
		return errors.New("analysis job has no document")
	}

	contractText, doc, err := s.loadDocumentText(ctx, *job.DocumentID)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to load document: "+err.Error())
		return err
	}

	if err := s.jobRepo.UpdateStatus(ctx, jobID, models.JobStatusInProgress); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	contractName := params.ContractName
	if contractName == "" {
		contractName = doc.Filename
	}
	req := ContractAnalysisRequest{
		ContractName:          contractName,
		ContractType:          params.ContractType,
		ContractText:          contractText,
		Jurisdiction:          params.Jurisdiction,
		ComparisonTemplateIDs: params.ComparisonTemplateIDs,
	}

	// Run the pipeline stage by stage so the job record reflects progress.
	if err := s.updateStepStatus(ctx, jobID, stepExtractingClauses, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}
	clauses, err := s.analysis.extractClauses(ctx, req.ContractText)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to extract clauses: "+err.Error())
		return err
	}
	if err := s.updateStepStatus(ctx, jobID, stepExtractingClauses, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	if err := s.updateStepStatus(ctx, jobID, stepAnalyzingClauses, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}
	analyses, err := s.analysis.analyzeClauses(ctx, clauses, req.Jurisdiction, req.ComparisonTemplateIDs)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to analyze clauses: "+err.Error())
		return err
	}
	if err := s.updateStepStatus(ctx, jobID, stepAnalyzingClauses, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	if err := s.updateStepStatus(ctx, jobID, stepGeneratingSummary, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}
	summary, err := s.analysis.generateSummary(ctx, req, clauses)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to generate summary: "+err.Error())
		return err
	}
	if err := s.updateStepStatus(ctx, jobID, stepGeneratingSummary, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	if err := s.updateStepStatus(ctx, jobID, stepAssessingRisk, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}
	overallRisk, explanation, score := AssessOverallRisk(analyses, s.analysis.riskSettings)
	recommendations := GenerateRecommendations(analyses, summary)
	if err := s.updateStepStatus(ctx, jobID, stepAssessingRisk, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	contractType := req.ContractType
	if contractType == "" {
		contractType = "Unknown"
	}
	jurisdiction := req.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = "Unknown"
	}

	result := &models.AnalysisJobResult{
		Analysis: &models.ContractAnalysisResult{
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
		},
	}

	if err := s.jobRepo.Complete(ctx, jobID, result); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	return nil
}

// loadDocumentText fetches a document record and reads its full text from
// storage.
func (s *AnalysisJobService) loadDocumentText(ctx context.Context, documentID uuid.UUID) (string, *models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return "", nil, err
	}

	reader, err := s.store.Download(ctx, doc.StoragePath)
	if err != nil {
		return "", nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, err
	}

	return string(data), doc, nil
}

// updateStepStatus updates the status of a specific step in the analysis job
func (s *AnalysisJobService) updateStepStatus(ctx context.Context, jobID uuid.UUID, stepName, status string) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	steps := job.Steps
	var currentStep string
	if job.CurrentStep != nil {
		currentStep = *job.CurrentStep
	}

	for i := range steps {
		if steps[i].Name == stepName {
			steps[i].Status = status
			if status == "in_progress" {
				currentStep = stepName
			}
			break
		}
	}

	return s.jobRepo.UpdateProgress(ctx, jobID, currentStep, steps)
}

// markJobFailed marks a job as failed with an error message
func (s *AnalysisJobService) markJobFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) {
	if err := s.jobRepo.Fail(ctx, jobID, errorMessage); err != nil {
		log.Printf("Failed to mark job %s as failed: %v", jobID, err)
	}
}
